package config

import (
	"os"
	"strings"

	"github.com/sdejongh/mountsync/pkg/models"
)

// File is the sync configuration object, as loaded from disk or injected.
// A nil list means the key was absent; an empty list was supplied empty.
type File struct {
	Files     []string `json:"files" yaml:"files" hcl:"files,optional"`
	Clean     []string `json:"clean,omitempty" yaml:"clean,omitempty" hcl:"clean,optional"`
	MountDirs []string `json:"mountdirs" yaml:"mountdirs" hcl:"mountdirs,optional"`
	FileBase  string   `json:"filebase,omitempty" yaml:"filebase,omitempty" hcl:"filebase,optional"`
	MountBase string   `json:"mountbase,omitempty" yaml:"mountbase,omitempty" hcl:"mountbase,optional"`
}

// Sample returns a starter configuration for `config init`
func Sample() *File {
	return &File{
		Files:     []string{"/index.html", "/assets/app.js"},
		Clean:     []string{"/old.log"},
		MountDirs: []string{"/dev/", "/staging/"},
	}
}

// Defaults holds the settings a run falls back on when nothing overrides them
type Defaults struct {
	// ConfigFile is loaded when no --config flag is given
	ConfigFile string

	// ReportFile receives the sync report, rewritten every run
	ReportFile string

	// CleanReportFile receives the clean report, rewritten every run
	CleanReportFile string

	// SourceEnv names the environment variable holding the source base
	SourceEnv string

	// MountEnv names the environment variable holding the destination base
	MountEnv string

	// SourceBase and MountBase override everything else when non-empty
	SourceBase string
	MountBase  string

	// Flags are the stage toggles
	Flags models.RunFlags
}

// Default returns the default settings
func Default() *Defaults {
	return &Defaults{
		ConfigFile:      "./configs/syncfiles.json",
		ReportFile:      "./logs/synced.txt",
		CleanReportFile: "./logs/cleaned.txt",
		SourceEnv:       "EV_BASE",
		MountEnv:        "MOUNTDIR",
		Flags:           models.DefaultRunFlags(),
	}
}

// Environment is an injected view of the process environment
type Environment map[string]string

// OSEnvironment snapshots the process environment
func OSEnvironment() Environment {
	env := make(Environment)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// Lookup returns the value of key and whether it is defined at all
func (e Environment) Lookup(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v, ok := e[key]
	return v, ok
}
