package config

import (
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrConfigLoad indicates the config file is missing, unreadable or unparseable
	ErrConfigLoad = errors.Base("config load error")

	// ErrMissingFilesList indicates the config has no "files" list
	ErrMissingFilesList = errors.Base("missing files list")

	// ErrMissingMountDirs indicates the config has no "mountdirs" list
	ErrMissingMountDirs = errors.Base("missing mountdirs")

	// ErrMissingBasePath indicates a base path fell back to the empty string
	ErrMissingBasePath = errors.Base("missing base path")
)

// LoadError describes a config file that could not be loaded
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return "loading config " + e.Path + ": " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes every LoadError match ErrConfigLoad
func (e *LoadError) Is(target error) bool {
	return target == ErrConfigLoad
}
