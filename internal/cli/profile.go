package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tgienger/todo/internal/app"
	"github.com/tgienger/todo/internal/profile"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or change your profile",
	}
	cmd.AddCommand(newProfileShowCmd(opts), newProfileSetCmd(opts))
	return cmd
}

func newProfileShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				p, ok := s.Profile.Current()
				if !ok {
					fmt.Fprintln(out(cmd), "No profile saved.")
					return nil
				}
				fmt.Fprintf(out(cmd), "Name:  %s\nEmail: %s\nPhone: %s\n", p.Name, p.Email, p.Phone)
				return nil
			})
		},
	}
}

func newProfileSetCmd(opts *rootOptions) *cobra.Command {
	var name, email, phone string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save profile fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *app.Session) error {
				p, _ := s.Profile.Current()
				if cmd.Flags().Changed("name") {
					p.Name = name
				}
				if cmd.Flags().Changed("email") {
					p.Email = email
				}
				if cmd.Flags().Changed("phone") {
					p.Phone = phone
				}
				if err := profile.Validate(p); err != nil {
					return err
				}
				if err := s.Profile.Update(ctx, p); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), "Profile saved.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number")
	return cmd
}
