package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/config"
	"github.com/sdejongh/mountsync/pkg/output"
	"github.com/sdejongh/mountsync/pkg/storage"
	"github.com/sdejongh/mountsync/pkg/sync"
)

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	var destBase string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check which mount dirs are usable",
		Long: `Resolve the sync file and validate every mount dir without cleaning or
copying anything. Exits with status 1 when no destination is usable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, destBase)
		},
	}

	cmd.Flags().StringVar(&destBase, "dest-base", "", "destination base path (overrides mountbase and $MOUNTDIR)")

	return cmd
}

func runCheck(cmd *cobra.Command, destBase string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := createLogger(cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	defaults := config.Default()
	defaults.MountBase = destBase

	// Only mountdirs matter here, so a missing files list is not fatal.
	resolver := config.NewResolver(defaults, syncEnv(), logger)
	file, err := resolver.Load(ctx, syncFs, configPath(defaults))
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	cfg, err := resolver.Resolve(ctx, file)
	if errors.Is(err, config.ErrMissingMountDirs) || file.MountDirs == nil {
		return &ExitError{Code: 1, Err: config.ErrMissingMountDirs}
	}

	backend := storage.NewLocal(syncFs)
	defer backend.Close()

	result := sync.NewValidator(backend, logger).Validate(ctx, cfg.DestBase, file.MountDirs)

	out := cmd.OutOrStdout()
	if err := writeCheckResult(out, cfg.DestBase, result, output.IsTerminal(out)); err != nil {
		return err
	}

	if len(result.Valid) == 0 {
		return &ExitError{Code: 1}
	}
	return nil
}

const checkLabelWidth = len("dropped")

// writeCheckResult prints one aligned row per mount dir. Labels are padded
// before they are coloured so escape sequences never count towards a column.
func writeCheckResult(w io.Writer, destBase string, result *sync.ValidationResult, colored bool) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)
	if colored {
		ok.EnableColor()
		bad.EnableColor()
	} else {
		ok.DisableColor()
		bad.DisableColor()
	}

	width := 0
	for _, dir := range result.Valid {
		width = max(width, len(dir))
	}
	for _, d := range result.Dropped {
		width = max(width, len(d.MountDir))
	}

	label := func(c *color.Color, text string) string {
		return c.Sprint(fmt.Sprintf("%-*s", checkLabelWidth, text))
	}

	if _, err := fmt.Fprintf(w, "Destination base: %s\n", destBase); err != nil {
		return err
	}
	for _, dir := range result.Valid {
		if _, err := fmt.Fprintf(w, "  %s  %-*s  %s\n", label(ok, "ok"), width, dir, platform.Concat(destBase, dir)); err != nil {
			return err
		}
	}
	for _, d := range result.Dropped {
		if _, err := fmt.Fprintf(w, "  %s  %-*s  %s (%s)\n", label(bad, "dropped"), width, d.MountDir, d.Path, d.Reason); err != nil {
			return err
		}
	}
	return nil
}
