package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oshokin/xolta-token/internal/config"
	"github.com/oshokin/xolta-token/internal/logger"
)

var (
	//nolint:gochecknoglobals // It is required for configuration initialization before the application starts.
	configFilenameFromFlag string

	//nolint:gochecknoglobals,lll // It is initialized once during the application's startup and shared across the command execution logic.
	appConfig *config.Config

	//nolint:gochecknoglobals,lll // Cobra command requires a global definition for proper command-line parsing and execution.
	rootCmd = &cobra.Command{
		Use:   "xolta-token",
		Short: "Acquire and cache bearer tokens for the Xolta energy API.",
		Long: `Xolta Token obtains a bearer token for the Xolta battery monitoring API.

Xolta has no public token endpoint, so the token is captured from the network traffic
of a headless browser signing in to the web application. The token is cached on disk
and reused until it expires, so the browser is only started when needed.

Print a token for use in scripts:
  xolta-token token
  curl -H "$(xolta-token token --header)" https://...`,
		SilenceUsage: true,
	}
)

// shutdownGracePeriod is how long a signalled command may take to release the browser.
const shutdownGracePeriod = 10 * time.Second

// Execute executes the root command.
func Execute() {
	signals := []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
	ctx, stop := signal.NotifyContext(context.Background(), signals...)

	defer func() {
		_ = logger.Logger().Sync()
	}()

	defer stop()

	done := make(chan struct{})

	go func() {
		defer close(done)
		defer stop()

		err := rootCmd.ExecuteContext(ctx)
		cobra.CheckErr(err)
	}()

	<-ctx.Done()

	// A second signal terminates the process immediately.
	stop()

	if !waitForShutdown(done, shutdownGracePeriod) {
		logger.Warnf(ctx, "Command did not finish within %s after the signal", shutdownGracePeriod)
	}
}

// waitForShutdown waits for done, at most grace. It reports whether done was closed in time.
func waitForShutdown(done <-chan struct{}, grace time.Duration) bool {
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return true
	case <-timer.C:
		return false
	}
}

//nolint:gochecknoinits // Cobra requires the init function to set up flags before the command is executed.
func init() {
	persistentFlags := rootCmd.PersistentFlags()

	persistentFlags.StringVarP(
		&configFilenameFromFlag,
		"config",
		"c",
		"",
		fmt.Sprintf("path to the configuration file (default is '%s')",
			config.DefaultConfigFilename))

	persistentFlags.String(
		"log-level",
		"",
		"log level: debug, info, warn, error.")

	persistentFlags.Bool(
		"headful",
		false,
		"show the browser window during login (useful for debugging).")
}

func initConfig(cmd *cobra.Command, _ []string) {
	cfg, err := config.LoadConfig(configFilenameFromFlag)
	if err != nil {
		logger.Fatalf(cmd.Context(), "Failed to load configuration: %v", err)
	}

	if err = bindFlagsToConfig(cmd.Flags(), cfg); err != nil {
		logger.Fatalf(cmd.Context(), "Invalid configuration: %v", err)
	}

	logger.SetLevel(cfg.ParsedLogLevel)

	appConfig = cfg
}

func bindFlagsToConfig(flags *pflag.FlagSet, cfg *config.Config) error {
	if flag := flags.Lookup("log-level"); flag != nil && flag.Changed {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if flag := flags.Lookup("headful"); flag != nil && flag.Changed {
		headful, _ := flags.GetBool("headful")
		cfg.Headless = !headful
	}

	return config.ValidateConfig(cfg)
}
