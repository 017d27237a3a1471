package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/xolta-token/internal/config"
	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/service/tokencache"
	"github.com/oshokin/xolta-token/internal/utils"
)

// spinnerInterval is how often the login spinner advances.
const spinnerInterval = 100 * time.Millisecond

// statusReport is the YAML document printed by the status command.
type statusReport struct {
	Username    string `yaml:"username"`
	CacheKey    string `yaml:"cache_key"`
	CacheFile   string `yaml:"cache_file,omitempty"`
	Cached      bool   `yaml:"cached"`
	Expired     bool   `yaml:"expired"`
	ExpiresAt   string `yaml:"expires_at,omitempty"`
	ExpiresIn   string `yaml:"expires_in,omitempty"`
	AccessToken string `yaml:"access_token,omitempty"`
}

// ExecuteAuthLoginCommand forces a fresh browser login and caches the new token.
func ExecuteAuthLoginCommand(ctx context.Context, cfg *config.Config) {
	if err := mustRunner(ctx, cfg).Login(ctx); err != nil {
		logger.Fatalf(ctx, "Authentication failed: %v", err)
	}
}

// ExecuteAuthStatusCommand prints the state of the cached token.
func ExecuteAuthStatusCommand(ctx context.Context, cfg *config.Config) {
	if err := mustRunner(ctx, cfg).Status(ctx); err != nil {
		logger.Fatalf(ctx, "Failed to inspect token cache: %v", err)
	}
}

// ExecuteAuthLogoutCommand forgets the cached token.
func ExecuteAuthLogoutCommand(ctx context.Context, cfg *config.Config) {
	if err := mustRunner(ctx, cfg).Logout(ctx); err != nil {
		logger.Fatalf(ctx, "Failed to remove cached token: %v", err)
	}
}

// Login replaces the cached token with a freshly acquired one.
func (r *Runner) Login(ctx context.Context) error {
	logger.InfoKV(ctx, "Starting authentication process", "username", r.credential.Username)

	stop := r.startSpinner("Logging in to Xolta")

	token, err := r.cache.Renew(ctx, r.credential)

	stop()

	if err != nil {
		return err
	}

	logger.Infof(ctx, "Authentication complete, token is valid until %s",
		token.ExpiresAt.Local().Format(time.DateTime))

	return nil
}

// Status writes a YAML report of the cached token to stdout.
func (r *Runner) Status(ctx context.Context) error {
	status, err := r.cache.Inspect(ctx, r.credential)
	if err != nil {
		return err
	}

	report := r.buildReport(status)

	encoder := yaml.NewEncoder(r.stdout)
	encoder.SetIndent(2)

	if err = encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to write status report: %w", err)
	}

	return encoder.Close()
}

// Logout deletes the cached token. The token stays valid at the provider until it expires.
func (r *Runner) Logout(ctx context.Context) error {
	if err := r.cache.Invalidate(ctx, r.credential); err != nil {
		return err
	}

	logger.Info(ctx, "Cached token removed")

	return nil
}

func (r *Runner) buildReport(status *tokencache.Status) *statusReport {
	report := &statusReport{
		Username: r.credential.Username,
		CacheKey: status.Key.String(),
		Cached:   status.Cached,
		Expired:  status.Expired,
	}

	if r.records != nil {
		report.CacheFile = r.records.Path(status.Key.String())
	}

	if !status.Cached {
		return report
	}

	report.ExpiresAt = status.ExpiresAt.Local().Format(time.RFC3339)
	report.ExpiresIn = humanize.RelTime(status.ExpiresAt, r.clock.Now(), "ago", "from now")
	report.AccessToken = utils.MaskSecret(status.AccessToken)

	return report
}

// startSpinner shows an indeterminate progress spinner on stderr until the returned function is called.
// Nothing is shown when info output is disabled.
func (r *Runner) startSpinner(description string) func() {
	if r.stderr == nil || logger.Level() > zap.InfoLevel {
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(r.stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish())

	done := make(chan struct{})
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		ticker := r.clock.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.Chan():
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-stopped

		_ = bar.Finish()
	}
}
