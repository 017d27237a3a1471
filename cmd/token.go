package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/xolta-token/internal/app"
)

//nolint:gochecknoglobals // Cobra command requires a global definition.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a valid bearer token",
	Long: `Prints a valid bearer token to stdout.

The cached token is reused while it is valid. An expired token is removed
and a new one is obtained through a headless browser login.`,
	Args:             cobra.NoArgs,
	PersistentPreRun: initConfig,
	Run: func(cmd *cobra.Command, _ []string) {
		asHeader, _ := cmd.Flags().GetBool("header")

		app.ExecuteTokenCommand(cmd.Context(), appConfig, asHeader)
	},
}

//nolint:gochecknoinits // Cobra requires the init function to set up commands.
func init() {
	tokenCmd.Flags().BoolP(
		"header",
		"H",
		false,
		"print the token as an 'Authorization: Bearer' header line.")

	rootCmd.AddCommand(tokenCmd)
}
