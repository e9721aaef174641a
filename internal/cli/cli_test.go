package cli

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/pkg/config"
	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/output"
	"github.com/sdejongh/mountsync/pkg/sync"
)

// execute runs the command tree against an in-memory filesystem
func execute(t *testing.T, fsys afero.Fs, env config.Environment, args ...string) (string, string, error) {
	t.Helper()

	prevFs, prevEnv := syncFs, syncEnv
	syncFs = fsys
	syncEnv = func() config.Environment { return env }
	t.Cleanup(func() {
		syncFs, syncEnv = prevFs, prevEnv
	})

	var stdout, stderr bytes.Buffer
	root := NewRootCommand()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, fsys afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
}

func newSyncFixture(t *testing.T) afero.Fs {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "/cfg/sync.json", `{"files": ["/a.txt"], "clean": ["/old.log"], "mountdirs": ["/m1/", "/m2/"]}`)
	writeFile(t, fsys, "/src/a.txt", "alpha")
	writeFile(t, fsys, "/dst/m1/old.log", "old")
	writeFile(t, fsys, "/dst/m1/keep", "keep")
	return fsys
}

var fixtureEnv = config.Environment{"EV_BASE": "/src", "MOUNTDIR": "/dst"}

func TestSyncCommand(t *testing.T) {
	fsys := newSyncFixture(t)

	stdout, _, err := execute(t, fsys, fixtureEnv,
		"sync", "--config", "/cfg/sync.json",
		"--report-file", "/logs/synced.txt", "--clean-report-file", "/logs/cleaned.txt")
	require.NoError(t, err)

	assert.Contains(t, stdout, " SUCCESSFUL (1)\n")
	assert.Contains(t, stdout, " /dst/m1/a.txt\n")
	assert.Contains(t, stdout, " Copied 1\n")

	data, err := afero.ReadFile(fsys, "/dst/m1/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))

	gone, err := afero.Exists(fsys, "/dst/m1/old.log")
	require.NoError(t, err)
	assert.False(t, gone)

	report, err := afero.ReadFile(fsys, "/logs/synced.txt")
	require.NoError(t, err)
	assert.Contains(t, string(report), " FAILED (0)\n")
}

func TestSyncCommandDryRunJSON(t *testing.T) {
	fsys := newSyncFixture(t)

	stdout, _, err := execute(t, fsys, fixtureEnv,
		"sync", "--config", "/cfg/sync.json", "--dry-run", "--no-report", "--output", "json")
	require.NoError(t, err)

	var summary output.JSONReportData
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "success", summary.Status)
	assert.True(t, summary.DryRun.Copy)
	assert.True(t, summary.DryRun.Clean)
	assert.Equal(t, []string{"/dst/m1/old.log"}, summary.Cleaned)
	assert.Equal(t, []string{"/m1/"}, summary.Mounts.Valid)
	require.Len(t, summary.Mounts.Dropped, 1)
	assert.Equal(t, "/m2/", summary.Mounts.Dropped[0].MountDir)

	still, err := afero.Exists(fsys, "/dst/m1/old.log")
	require.NoError(t, err)
	assert.True(t, still)

	copied, err := afero.Exists(fsys, "/dst/m1/a.txt")
	require.NoError(t, err)
	assert.False(t, copied)
}

func TestSyncCommandPartialExitCode(t *testing.T) {
	fsys := newSyncFixture(t)
	writeFile(t, fsys, "/cfg/sync.json", `{"files": ["/a.txt", "/missing.txt"], "mountdirs": ["/m1/"]}`)

	_, _, err := execute(t, fsys, fixtureEnv, "sync", "--config", "/cfg/sync.json", "--no-report", "-q")

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
}

func TestSyncCommandMissingConfig(t *testing.T) {
	stdout, stderr, err := execute(t, afero.NewMemMapFs(), fixtureEnv, "sync", "--config", "/cfg/none.json", "--no-report")
	require.NoError(t, err)

	assert.Contains(t, stdout, " No operations performed.\n")
	assert.Contains(t, stderr, "Missing or unreadable config file")
}

func TestSyncCommandInvalidFlags(t *testing.T) {
	tests := [][]string{
		{"sync", "--output", "xml"},
		{"sync", "--bandwidth", "fast"},
		{"sync", "--report-file", ""},
	}

	for _, args := range tests {
		t.Run(args[1], func(t *testing.T) {
			_, _, err := execute(t, afero.NewMemMapFs(), fixtureEnv, args...)
			require.Error(t, err)
			var exitErr *ExitError
			assert.False(t, errors.As(err, &exitErr))
		})
	}
}

func TestCheckCommand(t *testing.T) {
	fsys := newSyncFixture(t)

	stdout, _, err := execute(t, fsys, fixtureEnv, "check", "--config", "/cfg/sync.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "/m1/")
	assert.Contains(t, stdout, "directory does not exist")

	_, _, err = execute(t, fsys, fixtureEnv, "check", "--config", "/cfg/sync.json", "--dest-base", "/nowhere")
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.Code)
}

func TestConfigCommands(t *testing.T) {
	fsys := afero.NewMemMapFs()

	stdout, _, err := execute(t, fsys, fixtureEnv, "config", "init", "/cfg/new.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "/cfg/new.yaml")

	_, _, err = execute(t, fsys, fixtureEnv, "config", "init", "/cfg/new.yaml")
	require.Error(t, err)

	_, _, err = execute(t, fsys, fixtureEnv, "config", "init", "/cfg/new.yaml", "--force")
	require.NoError(t, err)

	stdout, _, err = execute(t, fsys, fixtureEnv, "config", "show", "--config", "/cfg/new.yaml")
	require.NoError(t, err)
	assert.Contains(t, stdout, "source_base: /src")
	assert.Contains(t, stdout, "dest_base: /dst")
	assert.Contains(t, stdout, "ready: true")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, afero.NewMemMapFs(), nil, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", stdout)
}

func TestCheckCommandConfigErrors(t *testing.T) {
	t.Run("mountdirs listed without files", func(t *testing.T) {
		fsys := newSyncFixture(t)
		writeFile(t, fsys, "/cfg/mounts.json", `{"mountdirs": ["/m1/", "/m2/"]}`)

		stdout, _, err := execute(t, fsys, fixtureEnv, "check", "--config", "/cfg/mounts.json")
		require.NoError(t, err)
		assert.Contains(t, stdout, "/m1/")
		assert.Contains(t, stdout, "/m2/")
	})

	t.Run("missing mountdirs", func(t *testing.T) {
		fsys := newSyncFixture(t)
		writeFile(t, fsys, "/cfg/files.json", `{"files": ["/a.txt"]}`)

		_, _, err := execute(t, fsys, fixtureEnv, "check", "--config", "/cfg/files.json")
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.Code)
		assert.True(t, errors.Is(exitErr.Err, config.ErrMissingMountDirs))
	})

	t.Run("unreadable config", func(t *testing.T) {
		_, _, err := execute(t, newSyncFixture(t), fixtureEnv, "check", "--config", "/cfg/absent.json")
		var exitErr *ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.True(t, errors.Is(exitErr.Err, config.ErrConfigLoad))
	})
}

func TestWriteCheckResultAlignsColoredColumns(t *testing.T) {
	result := &sync.ValidationResult{
		Valid:   []string{"/m1/", "/longer-mount/"},
		Dropped: []models.DroppedTarget{{MountDir: "/m2/", Path: "/dst/m2/", Reason: models.DropMissing}},
	}

	var buf bytes.Buffer
	require.NoError(t, writeCheckResult(&buf, "/dst", result, true))
	assert.Contains(t, buf.String(), "\x1b[")

	plain := regexp.MustCompile(`\x1b\[[0-9;]*m`).ReplaceAllString(buf.String(), "")
	lines := strings.Split(strings.TrimRight(plain, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Destination base: /dst", lines[0])

	column := strings.Index(lines[1], "/dst/m1/")
	require.Positive(t, column)
	assert.Equal(t, column, strings.Index(lines[2], "/dst/longer-mount/"))
	assert.Equal(t, column, strings.Index(lines[3], "/dst/m2/"))
	assert.Equal(t, strings.Index(lines[1], "/m1/"), strings.Index(lines[3], "/m2/"))
}
