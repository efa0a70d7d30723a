package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLoginCommand signs in as a username, defaulting to the configured
// identity.
func NewLoginCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Sign in to the U-Fund server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			username := app.Config.Identity.Username
			if len(args) > 0 {
				username = args[0]
			}
			if username == "" {
				return fmt.Errorf("no username given and none configured")
			}
			user := app.Session.Login(cmd.Context(), username)
			if user == nil {
				return nil
			}
			if user.IsAdmin() {
				fmt.Fprintf(app.Out, "Signed in as %s (administrator).\n", user.Username)
			} else {
				fmt.Fprintf(app.Out, "Signed in as %s.\n", user.Username)
			}
			return nil
		},
	}
}

// NewSignupCommand registers a new supporter account.
func NewSignupCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "signup <username>",
		Short: "Create a supporter account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if user := app.Session.Signup(cmd.Context(), args[0]); user != nil {
				fmt.Fprintf(app.Out, "Welcome, %s! Your account is ready.\n", user.Username)
			}
			return nil
		},
	}
}

// NewLogoutCommand ends the current server session.
func NewLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the U-Fund server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app.Reset()
			if app.Session.Logout(cmd.Context()) {
				fmt.Fprintln(app.Out, "Signed out.")
			}
			return nil
		},
	}
}
