package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/app"
	"github.com/tgienger/todo/internal/config"
	"github.com/tgienger/todo/internal/models"
)

func newThemeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [light|dark|system]",
		Short:     "Show or set the color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(models.ThemeLight), string(models.ThemeDark), string(models.ThemeSystem)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				if len(args) == 0 {
					fmt.Fprintln(out(cmd), s.Preferences.Theme(ctx))
					return nil
				}
				mode, err := models.ParseThemeMode(args[0])
				if err != nil {
					return err
				}
				if err := s.Preferences.SetTheme(ctx, mode); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "Theme set to %s\n", mode)
				return nil
			})
		},
	}
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all tasks, the profile and preferences",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("this deletes all local data; pass --yes to confirm")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				if err := s.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), "All local data cleared.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm")
	return cmd
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath(opts)
			if path == "" {
				return errors.New("cannot determine config directory")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; pass --force to overwrite", path)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(out(cmd), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(out(cmd), configPath(opts))
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func configPath(opts *rootOptions) string {
	if opts.configPath != "" {
		return opts.configPath
	}
	return config.DefaultPath()
}
