package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jonboulle/clockwork"

	"github.com/oshokin/xolta-token/internal/config"
	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/service/auth"
	"github.com/oshokin/xolta-token/internal/service/tokencache"
	"github.com/oshokin/xolta-token/internal/store"
	transport "github.com/oshokin/xolta-token/internal/transport/http"
	"github.com/oshokin/xolta-token/internal/utils"
)

// RecordLocator resolves the location of a stored token record.
type RecordLocator interface {
	Path(key string) string
}

// Runner performs the token commands for one configured credential.
type Runner struct {
	cache      tokencache.TokenCache
	credential auth.Credential
	records    RecordLocator
	clock      clockwork.Clock
	stdout     io.Writer
	stderr     io.Writer
}

// NewRunner creates a runner. records may be nil.
func NewRunner(
	cache tokencache.TokenCache,
	credential auth.Credential,
	records RecordLocator,
	clock clockwork.Clock,
	stdout, stderr io.Writer,
) *Runner {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &Runner{
		cache:      cache,
		credential: credential,
		records:    records,
		clock:      clock,
		stdout:     stdout,
		stderr:     stderr,
	}
}

// newRunner builds the whole dependency graph from a validated configuration.
func newRunner(ctx context.Context, cfg *config.Config) (*Runner, error) {
	if cfg.LogFile != "" {
		logger.EnableFileOutput(cfg.LogFile, cfg.ParsedLogFileMaxSizeMB)
	}

	tokenStore, err := store.NewDiskStore(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	logger.Debugf(ctx, "Using token cache directory %s", cfg.CacheDir)

	clock := clockwork.NewRealClock()
	userAgentProvider := utils.NewStaticUserAgentProvider(transport.DefaultUserAgent)
	sessions := auth.NewRodSessionFactory(transport.NewClient(userAgentProvider))
	authenticator := auth.NewBrowserAuthenticator(auth.OptionsFromConfig(cfg), sessions, clock)

	cache, err := tokencache.NewTokenCache(
		tokencache.Options{Validity: cfg.ParsedTokenValidity},
		authenticator,
		tokenStore,
		clock)
	if err != nil {
		return nil, fmt.Errorf("failed to create token cache: %w", err)
	}

	return NewRunner(cache, credentialFromConfig(cfg), tokenStore, clock, os.Stdout, os.Stderr), nil
}

func credentialFromConfig(cfg *config.Config) auth.Credential {
	return auth.Credential{
		Username: cfg.Credentials.Username,
		Password: cfg.Credentials.Password,
	}
}

// mustRunner builds a runner or terminates the process.
func mustRunner(ctx context.Context, cfg *config.Config) *Runner {
	runner, err := newRunner(ctx, cfg)
	if err != nil {
		logger.Fatalf(ctx, "Failed to initialize token cache: %v", err)
	}

	return runner
}
