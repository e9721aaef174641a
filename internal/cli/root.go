package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// ExitError asks main to exit with Code. The message, if any, was already reported.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit status " + strconv.Itoa(e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewRootCommand builds the mountsync command tree
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mountsync",
		Short: "Push files to mounted network shares",
		Long: `mountsync copies a configured list of local files into one or more
mounted destination directories, pruning stale paths first.

Destinations that are missing or look unmounted (an empty listing) are
skipped. Every run rewrites a plain-text sync report and clean report.`,
		Version:       Version + " (commit: " + Commit + ", built: " + BuildDate + ")",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add global flags
	AddGlobalFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewCheckCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}
