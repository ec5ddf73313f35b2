package cli

import (
	"errors"
	"fmt"

	"brainquest/internal/config"
	"brainquest/internal/domain"

	"github.com/spf13/cobra"
)

// NewLoginCmd authenticates an administrator and stores the access token.
func NewLoginCmd(cfg *config.Config) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as administrator",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := buildDeps(ctx, *cfg)
			defer d.close()

			out := cmd.OutOrStdout()
			in := newLineReader(cmd.InOrStdin())
			var err error
			if username == "" {
				if username, err = in.ask(out, "Username: "); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = in.ask(out, "Password: "); err != nil {
					return err
				}
			}
			if err := d.adminGate().Login(ctx, username, password); err != nil {
				return errors.New(userMessage(err))
			}
			fmt.Fprintln(out, "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "admin password")
	return cmd
}

// NewLogoutCmd forgets the stored access token.
func NewLogoutCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored admin login",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := buildDeps(cmd.Context(), *cfg)
			defer d.close()
			if err := d.adminGate().Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// NewAdminCmd opens the admin area when a valid login is stored.
func NewAdminCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "admin",
		Short: "Open the admin area",
		RunE: func(cmd *cobra.Command, args []string) error {
			d := buildDeps(cmd.Context(), *cfg)
			defer d.close()

			user, err := d.adminGate().Authorize(cmd.Context())
			if errors.Is(err, domain.ErrUnauthenticated) {
				return errors.New("not logged in, run `brainquest login` first")
			}
			if err != nil {
				return err
			}
			if user == "" {
				user = "administrator"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s. The admin panel is not available in this client yet.\n", user)
			return nil
		},
	}
}
