package sync

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/storage"
)

// newFS builds an in-memory tree from path -> content. A path ending in "/"
// becomes an empty directory.
func newFS(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for path, content := range files {
		if path[len(path)-1] == '/' {
			require.NoError(t, fsys.MkdirAll(path, 0755))
			continue
		}
		require.NoError(t, afero.WriteFile(fsys, path, []byte(content), 0644))
	}
	return fsys
}

func exists(t *testing.T, fsys afero.Fs, path string) bool {
	t.Helper()
	ok, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	return ok
}

var errMutation = errors.Base("mutation during dry run")

// readOnlyBackend fails the test on any mutating call
type readOnlyBackend struct {
	storage.Backend
	t *testing.T
}

func (b readOnlyBackend) Copy(ctx context.Context, src, dst string) error {
	b.t.Errorf("unexpected Copy(%s, %s)", src, dst)
	return errMutation
}

func (b readOnlyBackend) Remove(ctx context.Context, path string) error {
	b.t.Errorf("unexpected Remove(%s)", path)
	return errMutation
}

func (b readOnlyBackend) MkdirAll(ctx context.Context, path string) error {
	b.t.Errorf("unexpected MkdirAll(%s)", path)
	return errMutation
}

// brokenCopyBackend reports success from Copy without writing anything
type brokenCopyBackend struct {
	storage.Backend
}

func (brokenCopyBackend) Copy(ctx context.Context, src, dst string) error {
	return nil
}

// stubbornBackend never removes anything
type stubbornBackend struct {
	storage.Backend
}

func (stubbornBackend) Remove(ctx context.Context, path string) error {
	return nil
}

// recordingReporter keeps everything the engine sends to the reporter
type recordingReporter struct {
	notes     []string
	planned   []string
	cleans    int
	emitted   []*models.RunReport
	emitError error
}

func (r *recordingReporter) Note(line string) {
	r.notes = append(r.notes, line)
}

func (r *recordingReporter) BeginClean() error {
	r.cleans++
	return nil
}

func (r *recordingReporter) PlannedRemoval(path string) error {
	r.planned = append(r.planned, path)
	return nil
}

func (r *recordingReporter) Emit(report *models.RunReport) error {
	r.emitted = append(r.emitted, report)
	return r.emitError
}
