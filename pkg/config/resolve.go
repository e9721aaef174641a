package config

import (
	"context"

	"github.com/spf13/afero"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/logging"
	"github.com/sdejongh/mountsync/pkg/models"
)

// Resolver assembles a RunConfig from defaults, the environment and a config object.
// The environment is always injected; the resolver never reads os.Getenv itself.
type Resolver struct {
	defaults *Defaults
	env      Environment
	logger   logging.Logger
}

// NewResolver creates a resolver
func NewResolver(defaults *Defaults, env Environment, logger logging.Logger) *Resolver {
	if defaults == nil {
		defaults = Default()
	}
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Resolver{defaults: defaults, env: env, logger: logger}
}

// Load reads the config file at path. A failure is logged and returned as
// an error matching ErrConfigLoad.
func (r *Resolver) Load(ctx context.Context, fsys afero.Fs, path string) (*File, error) {
	expanded, err := platform.ExpandHome(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	cfg, err := Load(fsys, expanded, r.env)
	if err != nil {
		r.logger.Error(ctx, "Missing or unreadable config file", err, logging.Fields{"path": expanded})
		return nil, err
	}
	return cfg, nil
}

// LoadAndResolve loads path and resolves it. A load failure still yields a
// RunConfig (with undefined lists) so the run can report that it did nothing.
func (r *Resolver) LoadAndResolve(ctx context.Context, fsys afero.Fs, path string) (*models.RunConfig, error) {
	file, err := r.Load(ctx, fsys, path)
	if err != nil {
		cfg, _ := r.Resolve(ctx, nil)
		return cfg, err
	}
	return r.Resolve(ctx, file)
}

// Resolve merges file with the defaults and environment.
//
// The returned RunConfig is never nil. A missing "files" list leaves every
// list undefined and returns ErrMissingFilesList; a missing "mountdirs" list
// leaves MountDirs undefined and returns ErrMissingMountDirs. Both degrade
// the run instead of failing it. Missing base paths and blank list entries
// only log a warning.
func (r *Resolver) Resolve(ctx context.Context, file *File) (*models.RunConfig, error) {
	var fileBase, mountBase string
	if file != nil {
		fileBase, mountBase = file.FileBase, file.MountBase
	}

	cfg := &models.RunConfig{
		SourceBase: r.basePath(ctx, "filebase", r.defaults.SourceBase, fileBase, r.defaults.SourceEnv),
		DestBase:   r.basePath(ctx, "mountbase", r.defaults.MountBase, mountBase, r.defaults.MountEnv),
	}

	if file == nil {
		r.logger.Error(ctx, "No configuration supplied", ErrConfigLoad, nil)
		return cfg, ErrConfigLoad
	}

	if file.Files == nil {
		r.logger.Error(ctx, `No files to sync identified in the config (missing the "files" list)`, ErrMissingFilesList, nil)
		return cfg, ErrMissingFilesList
	}

	// Blank entries are reported per item by the engine, not here.
	lists := &models.RunConfig{Files: file.Files, CleanPaths: file.Clean}
	if err := lists.Validate(); err != nil {
		r.logger.Warn(ctx, "Configuration contains a blank entry", logging.Fields{"error": err.Error()})
	}

	cfg.Files = append([]string{}, file.Files...)
	if file.Clean != nil {
		cfg.CleanPaths = append([]string{}, file.Clean...)
	}

	if file.MountDirs == nil {
		r.logger.Error(ctx, `No directories to mount to identified in the config (missing the "mountdirs" list)`, ErrMissingMountDirs, nil)
		return cfg, ErrMissingMountDirs
	}
	cfg.MountDirs = append([]string{}, file.MountDirs...)

	return cfg, nil
}

// basePath picks override, then the config field, then the environment
func (r *Resolver) basePath(ctx context.Context, field, override, fromFile, envKey string) string {
	value := override
	if value == "" {
		value = fromFile
	}
	if value == "" {
		var ok bool
		value, ok = r.env.Lookup(envKey)
		if !ok {
			r.logger.Warn(ctx, envKey+" is not defined in your environment", logging.Fields{
				"field": field,
				"error": ErrMissingBasePath.Error(),
			})
			return ""
		}
	}

	expanded, err := platform.ExpandHome(value)
	if err != nil {
		r.logger.Warn(ctx, "Could not expand home directory", logging.Fields{"field": field, "path": value})
		return value
	}
	return expanded
}
