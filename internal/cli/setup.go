package cli

import (
	"context"
	"io"

	"github.com/spf13/afero"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/config"
	"github.com/sdejongh/mountsync/pkg/logging"
	"github.com/sdejongh/mountsync/pkg/models"
)

// createLogger builds the console logger and, with --log-file, a file logger
func createLogger(stderr io.Writer) (logging.Logger, error) {
	level := logging.ParseLevel(globalFlags.LogLevel)
	consoleLevel := level
	switch {
	case globalFlags.Verbose:
		consoleLevel = logging.DebugLevel
	case globalFlags.Quiet && consoleLevel < logging.WarnLevel:
		consoleLevel = logging.WarnLevel
	}

	console := logging.NewConsoleLogger(stderr, consoleLevel, false)
	if globalFlags.LogFile == "" {
		return console, nil
	}

	path, err := platform.ExpandHome(globalFlags.LogFile)
	if err != nil {
		return nil, err
	}

	// Parse log format
	var format logging.Format
	switch globalFlags.LogFormat {
	case "json":
		format = logging.FormatJSON
	default:
		format = logging.FormatText
	}

	file, err := logging.NewFileLogger(logging.FileLoggerConfig{
		Path:       path,
		Format:     format,
		Level:      level,
		MaxSize:    10 * 1024 * 1024, // 10 MB
		MaxBackups: 5,
	})
	if err != nil {
		return nil, err
	}

	return logging.Multi(console, file), nil
}

// configPath returns the sync file to load
func configPath(defaults *config.Defaults) string {
	if globalFlags.ConfigFile != "" {
		return globalFlags.ConfigFile
	}
	return defaults.ConfigFile
}

// resolveRunConfig loads and resolves the sync file. Load and list errors are
// logged by the resolver and leave the config not ready; they are not fatal.
func resolveRunConfig(ctx context.Context, fsys afero.Fs, defaults *config.Defaults, env config.Environment, logger logging.Logger) *models.RunConfig {
	resolver := config.NewResolver(defaults, env, logger)
	cfg, err := resolver.LoadAndResolve(ctx, fsys, configPath(defaults))
	if err != nil {
		logger.Debug(ctx, "Configuration incomplete", logging.Fields{"error": err.Error()})
	}
	return cfg
}
