package main

import (
	"fmt"
	"os"

	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
}

func run() error {
	cli.Version = version
	cli.Commit = commit
	cli.BuildDate = date

	rootCmd := cli.NewRootCommand()

	return rootCmd.Execute()
}
