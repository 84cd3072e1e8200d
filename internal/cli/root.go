package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/app"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/logging"
	"github.com/tgienger/todo/internal/ui"
)

// options shared by every command
type rootOptions struct {
	configPath string
	verbose    bool
}

// NewRootCmd builds the command tree
func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "todo",
		Short: "todo - a personal task list",
		Long: `todo keeps a personal task list with categories, priorities and due dates.

Run without a subcommand to open the interactive list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				return ui.Run(ctx, s)
			})
		},
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (default: $XDG_CONFIG_HOME/todo/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newDoneCmd(opts),
		newEditCmd(opts),
		newRemoveCmd(opts),
		newClearCmd(opts),
		newStatsCmd(opts),
		newProfileCmd(opts),
		newThemeCmd(opts),
		newResetCmd(opts),
		newConfigCmd(opts),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(out(cmd), "todo", version)
			},
		},
	)
	return rootCmd
}

// Execute runs the root command
func Execute(version string) error {
	rootCmd := NewRootCmd(version)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// withSession loads config, opens storage and runs fn with the open session
func withSession(cmd *cobra.Command, opts *rootOptions, fn func(context.Context, *app.Session) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.verbose {
		cfg.Log.Level = "debug"
	}
	logger, closeLog, err := logging.Open(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(ctx, s)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
