package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/xolta-token/internal/app"
)

var (
	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "Authentication management commands",
		Long: `Manage the cached Xolta token.

Use 'auth login' to force a new browser login, 'auth status' to inspect
the cached token and 'auth logout' to remove it.`,
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authLoginCmd = &cobra.Command{
		Use:   "login",
		Short: "Log in to Xolta and cache a new token",
		Long: `Starts a headless browser, signs in with the configured credentials and
caches the intercepted token, replacing any cached one.

The login process:
1. The browser opens the Xolta web application
2. The application redirects to the sign-in page
3. The configured e-mail and password are submitted
4. The credential check and the token response are captured

Use --headful to watch the browser while it works.`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthLoginCommand(cmd.Context(), appConfig)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authStatusCmd = &cobra.Command{
		Use:              "status",
		Short:            "Show the cached token state",
		Long:             `Prints a YAML report of the cached token without logging in.`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthStatusCommand(cmd.Context(), appConfig)
		},
	}

	//nolint:gochecknoglobals // Cobra command requires a global definition.
	authLogoutCmd = &cobra.Command{
		Use:   "logout",
		Short: "Remove the cached token",
		Long: `Removes the cached token from disk.

The token is not revoked: it stays valid at Xolta until it expires.`,
		Args:             cobra.NoArgs,
		PersistentPreRun: initConfig,
		Run: func(cmd *cobra.Command, _ []string) {
			app.ExecuteAuthLogoutCommand(cmd.Context(), appConfig)
		},
	}
)

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	authCmd.AddCommand(authLoginCmd, authStatusCmd, authLogoutCmd)

	rootCmd.AddCommand(authCmd)
}
