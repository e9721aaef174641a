package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/config"
	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/output"
	"github.com/sdejongh/mountsync/pkg/ratelimit"
	"github.com/sdejongh/mountsync/pkg/storage"
	"github.com/sdejongh/mountsync/pkg/sync"
)

// SyncFlags holds sync command flags
type SyncFlags struct {
	NoCopy          bool
	NoClean         bool
	DryRun          bool
	DryRunCopy      bool
	DryRunClean     bool
	NoReport        bool
	ReportFile      string
	CleanReportFile string
	SourceBase      string
	DestBase        string
	Bandwidth       string
	Progress        bool
	Output          string
}

var syncFlags SyncFlags

// testing hooks
var (
	syncFs  afero.Fs = afero.NewOsFs()
	syncEnv          = config.OSEnvironment
)

// NewSyncCommand creates the sync command
func NewSyncCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Clean and copy files to the mounted destinations",
		Long: `Validate the configured mount dirs, remove the clean paths under every
mounted destination, then copy every configured file into them.

Base paths come from --source-base/--dest-base, then the sync file
(filebase/mountbase), then the EV_BASE and MOUNTDIR environment variables.`,
		Args: cobra.NoArgs,
		RunE: runSync,
	}

	defaults := config.Default()

	// Stage toggles
	cmd.Flags().BoolVar(&syncFlags.NoCopy, "no-copy", false, "skip the copy stage")
	cmd.Flags().BoolVar(&syncFlags.NoClean, "no-clean", false, "skip the clean stage")
	cmd.Flags().BoolVar(&syncFlags.DryRun, "dry-run", false, "record planned copies and removals without touching anything")
	cmd.Flags().BoolVar(&syncFlags.DryRunCopy, "dry-run-copy", false, "dry run the copy stage only")
	cmd.Flags().BoolVar(&syncFlags.DryRunClean, "dry-run-clean", false, "dry run the clean stage only")

	// Reports
	cmd.Flags().BoolVar(&syncFlags.NoReport, "no-report", false, "do not write the report files")
	cmd.Flags().StringVar(&syncFlags.ReportFile, "report-file", defaults.ReportFile, "sync report path")
	cmd.Flags().StringVar(&syncFlags.CleanReportFile, "clean-report-file", defaults.CleanReportFile, "clean report path")

	// Paths
	cmd.Flags().StringVar(&syncFlags.SourceBase, "source-base", "", "source base path (overrides filebase and $EV_BASE)")
	cmd.Flags().StringVar(&syncFlags.DestBase, "dest-base", "", "destination base path (overrides mountbase and $MOUNTDIR)")

	// Transfer
	cmd.Flags().StringVarP(&syncFlags.Bandwidth, "bandwidth", "b", "", "bandwidth limit (e.g., \"10M\", \"512K\")")
	cmd.Flags().BoolVar(&syncFlags.Progress, "progress", false, "show a progress bar per copied file")
	cmd.Flags().StringVarP(&syncFlags.Output, "output", "o", "human", "output format: human, json")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Validate flags
	if err := validateSyncFlags(); err != nil {
		return err
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()

	// Create logger
	logger, err := createLogger(stderr)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	defaults := syncDefaults()
	cfg := resolveRunConfig(ctx, syncFs, defaults, syncEnv(), logger)
	flags := defaults.Flags

	reporter, err := createReporter(defaults, flags, stdout)
	if err != nil {
		return err
	}

	backend, err := createBackend(stderr, flags)
	if err != nil {
		return err
	}
	defer backend.Close()

	engine := sync.NewEngine(backend, reporter, sync.WithLogger(logger))

	// Run sync
	report, runErr := engine.Run(ctx, cfg, flags)

	if syncFlags.Output == "json" {
		if err := output.WriteJSON(stdout, report); err != nil {
			logger.Error(ctx, "Failed to write JSON summary", err, nil)
		}
	}

	// Exit with appropriate code
	if code := report.Status.ExitCode(); code != 0 {
		return &ExitError{Code: code, Err: runErr}
	}
	return nil
}

// validateSyncFlags validates the sync command flags
func validateSyncFlags() error {
	switch syncFlags.Output {
	case "human", "json":
	default:
		return fmt.Errorf("invalid output format: %s (valid: human, json)", syncFlags.Output)
	}

	if syncFlags.Bandwidth != "" {
		if _, err := ratelimit.ParseBandwidth(syncFlags.Bandwidth); err != nil {
			return fmt.Errorf("invalid bandwidth limit: %w", err)
		}
	}

	if !syncFlags.NoReport {
		for _, path := range []string{syncFlags.ReportFile, syncFlags.CleanReportFile} {
			if err := platform.ValidatePath(path); err != nil {
				return fmt.Errorf("report file: %w (use --no-report to disable reports)", err)
			}
		}
	}

	return nil
}

// syncDefaults applies the command-line flags to the default settings
func syncDefaults() *config.Defaults {
	defaults := config.Default()

	defaults.ReportFile = syncFlags.ReportFile
	defaults.CleanReportFile = syncFlags.CleanReportFile
	defaults.SourceBase = syncFlags.SourceBase
	defaults.MountBase = syncFlags.DestBase

	defaults.Flags = models.RunFlags{
		PerformCopy:       !syncFlags.NoCopy,
		PerformClean:      !syncFlags.NoClean,
		DryRunCopy:        syncFlags.DryRun || syncFlags.DryRunCopy,
		DryRunClean:       syncFlags.DryRun || syncFlags.DryRunClean,
		Quiet:             globalFlags.Quiet,
		WriteReportToFile: !syncFlags.NoReport,
	}

	return defaults
}

// createReporter builds the reporter. The console mirror is off in quiet
// mode and when the JSON summary owns stdout.
func createReporter(defaults *config.Defaults, flags models.RunFlags, stdout io.Writer) (*output.Reporter, error) {
	reportFile, err := platform.ExpandHome(defaults.ReportFile)
	if err != nil {
		return nil, err
	}
	cleanFile, err := platform.ExpandHome(defaults.CleanReportFile)
	if err != nil {
		return nil, err
	}

	var console io.Writer
	if !flags.Quiet && syncFlags.Output != "json" {
		console = stdout
	}

	return output.NewReporter(output.ReporterConfig{
		Fs:              syncFs,
		ReportFile:      reportFile,
		CleanReportFile: cleanFile,
		WriteToFile:     flags.WriteReportToFile,
		Console:         console,
		Color:           console != nil && output.IsTerminal(console),
	}), nil
}

// createBackend builds the filesystem backend with the transfer options
func createBackend(stderr io.Writer, flags models.RunFlags) (*storage.Local, error) {
	var opts []storage.LocalOption

	if syncFlags.Bandwidth != "" {
		bps, err := ratelimit.ParseBandwidth(syncFlags.Bandwidth)
		if err != nil {
			return nil, fmt.Errorf("invalid bandwidth limit: %w", err)
		}
		if limiter := ratelimit.NewLimiter(bps); limiter != nil {
			opts = append(opts, storage.WithLimiter(limiter))
		}
	}

	if syncFlags.Progress && !flags.Quiet && !flags.DryRunCopy && output.IsTerminal(stderr) {
		opts = append(opts, storage.WithObserver(output.NewProgressBars(stderr)))
	}

	return storage.NewLocal(syncFs, opts...), nil
}
