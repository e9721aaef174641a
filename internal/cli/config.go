package cli

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the sync file",
		Long:  `Show the resolved sync configuration or create a starter sync file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

// resolvedView is what `config show` prints
type resolvedView struct {
	Config     string   `yaml:"config"`
	SourceBase string   `yaml:"source_base"`
	DestBase   string   `yaml:"dest_base"`
	Files      []string `yaml:"files"`
	Clean      []string `yaml:"clean"`
	MountDirs  []string `yaml:"mountdirs"`
	Ready      bool     `yaml:"ready"`
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			cfg := resolveRunConfig(ctx, syncFs, defaults, syncEnv(), logger)

			data, err := yaml.Marshal(resolvedView{
				Config:     configPath(defaults),
				SourceBase: cfg.SourceBase,
				DestBase:   cfg.DestBase,
				Files:      cfg.Files,
				Clean:      cfg.CleanPaths,
				MountDirs:  cfg.MountDirs,
				Ready:      cfg.Ready(),
			})
			if err != nil {
				return fmt.Errorf("failed to render configuration: %w", err)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create a starter sync file",
		Long: `Write a sample sync file. The format follows the extension:
.json (default), .yaml/.yml or .hcl.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(config.Default())
			if len(args) == 1 {
				path = args[0]
			}

			path, err := platform.ExpandHome(path)
			if err != nil {
				return err
			}

			exists, err := afero.Exists(syncFs, path)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			if err := config.Save(syncFs, config.Sample(), path); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Sync file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}
