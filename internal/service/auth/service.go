package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/oshokin/xolta-token/internal/config"
	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/utils"
)

//go:generate $MOCKGEN -source=service.go -destination=mocks/service_mock.go

// Authenticator performs interactive-less logins against the identity provider.
type Authenticator interface {
	// Login signs in with credential and reports the outcome.
	// It never returns a nil result and never panics.
	Login(ctx context.Context, credential Credential) *Result
}

// Options control the login flow.
type Options struct {
	// AppURL is the page that redirects to the sign-in form.
	AppURL string
	// CredentialCheckPath identifies the credential-verification response.
	CredentialCheckPath string
	// TokenPath identifies the OAuth2 token response.
	TokenPath string
	// UsernameSelector, PasswordSelector and SubmitSelector locate the sign-in form controls.
	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string
	// StepTimeout bounds each wait of the flow.
	StepTimeout time.Duration
	// SettleDelay is how long the submit control must stay still before it is clicked.
	SettleDelay time.Duration
	// LoginBudget bounds the whole attempt.
	LoginBudget time.Duration
	// Headless hides the browser window.
	Headless bool
	// BrowserPath is an explicit browser binary.
	BrowserPath string
}

// OptionsFromConfig builds login options from a validated configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AppURL:              cfg.AppURL,
		CredentialCheckPath: cfg.CredentialCheckPath,
		TokenPath:           cfg.TokenPath,
		UsernameSelector:    cfg.UsernameSelector,
		PasswordSelector:    cfg.PasswordSelector,
		SubmitSelector:      cfg.SubmitSelector,
		StepTimeout:         cfg.ParsedStepTimeout,
		SettleDelay:         cfg.ParsedSettleDelay,
		LoginBudget:         cfg.ParsedLoginBudget,
		Headless:            cfg.Headless,
		BrowserPath:         cfg.BrowserPath,
	}
}

// BrowserAuthenticator logs in through a browser session and reads the tokens
// from the intercepted identity provider responses.
type BrowserAuthenticator struct {
	opts     Options
	sessions SessionFactory
	clock    clockwork.Clock
}

// NewBrowserAuthenticator creates a new browser authenticator.
// Missing timings fall back to the configuration defaults.
func NewBrowserAuthenticator(opts Options, sessions SessionFactory, clock clockwork.Clock) *BrowserAuthenticator {
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = config.DefaultStepTimeout
	}

	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}

	if opts.LoginBudget <= 0 {
		opts.LoginBudget = config.DeriveLoginBudget(opts.StepTimeout, opts.SettleDelay)
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	return &BrowserAuthenticator{
		opts:     opts,
		sessions: sessions,
		clock:    clock,
	}
}

// Login signs in with credential in a fresh browser session.
// Every failure, including a panic, is reported as a result with StatusInternalError,
// except a provider rejection, which keeps the provider's own status and message.
func (a *BrowserAuthenticator) Login(ctx context.Context, credential Credential) (result *Result) {
	startTime := a.clock.Now()

	ctx = logger.WithKV(ctx, "attempt_id", uuid.NewString())

	defer func() {
		if r := recover(); r != nil {
			result = failure(fmt.Errorf("%w: recovered panic: %v", ErrBrowser, r))
		}

		result.Duration = a.clock.Since(startTime)

		a.logOutcome(ctx, result)
	}()

	logger.InfoKV(ctx, "Starting browser login", "username", credential.Username)

	ctx, cancel := context.WithTimeout(ctx, a.opts.LoginBudget)
	defer cancel()

	session, err := a.sessions.Open(ctx, SessionOptions{
		WatchedPaths: []string{a.opts.CredentialCheckPath, a.opts.TokenPath},
		Headless:     a.opts.Headless,
		BrowserPath:  a.opts.BrowserPath,
	})
	if err != nil {
		return failure(classify(ctx, "launch browser", err))
	}

	// Deferred after recover so the browser is gone before the result is finalized.
	defer func() {
		if closeErr := session.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.Warnf(ctx, "Failed to close browser session: %v", closeErr)
		}
	}()

	return a.run(ctx, session, credential)
}

// run performs the sign-in steps in an open session.
func (a *BrowserAuthenticator) run(ctx context.Context, session Session, credential Credential) *Result {
	err := a.step(ctx, "open application", a.opts.StepTimeout, func(stepCtx context.Context) error {
		return session.Navigate(stepCtx, a.opts.AppURL)
	})
	if err != nil {
		return failure(err)
	}

	// The password field is on the same form, it shares the bound of the username wait.
	err = a.step(ctx, "fill login form", a.opts.StepTimeout, func(stepCtx context.Context) error {
		if fillErr := session.Fill(stepCtx, a.opts.UsernameSelector, credential.Username); fillErr != nil {
			return fmt.Errorf("username field: %w", fillErr)
		}

		if fillErr := session.Fill(stepCtx, a.opts.PasswordSelector, credential.Password); fillErr != nil {
			return fmt.Errorf("password field: %w", fillErr)
		}

		return nil
	})
	if err != nil {
		return failure(err)
	}

	err = a.step(ctx, "submit login form", a.opts.StepTimeout+a.opts.SettleDelay, func(stepCtx context.Context) error {
		return session.Click(stepCtx, a.opts.SubmitSelector, a.opts.SettleDelay)
	})
	if err != nil {
		return failure(err)
	}

	check, err := a.awaitCredentialCheck(ctx, session)
	if err != nil {
		return failure(err)
	}

	if check.Status != StatusOK {
		logger.DebugKV(ctx, "Credentials rejected", "status", check.Status, "error_code", check.ErrorCode)

		return &Result{
			Status:    check.Status,
			Message:   check.Message,
			ErrorCode: check.ErrorCode,
			Cause:     ErrProviderRejected,
		}
	}

	grant, err := a.awaitTokenGrant(ctx, session)
	if err != nil {
		return failure(err)
	}

	return &Result{
		Status:       check.Status,
		Message:      check.Message,
		ErrorCode:    check.ErrorCode,
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
	}
}

func (a *BrowserAuthenticator) awaitCredentialCheck(ctx context.Context, session Session) (*credentialCheck, error) {
	var check *credentialCheck

	err := a.step(ctx, "await credential check", a.opts.StepTimeout, func(stepCtx context.Context) error {
		exchange, err := session.WaitForMatchingExchange(stepCtx, a.opts.CredentialCheckPath)
		if err != nil {
			return err
		}

		check, err = parseCredentialCheck(exchange)

		return err
	})

	return check, err
}

func (a *BrowserAuthenticator) awaitTokenGrant(ctx context.Context, session Session) (*tokenGrant, error) {
	var grant *tokenGrant

	err := a.step(ctx, "await token response", a.opts.StepTimeout, func(stepCtx context.Context) error {
		exchange, err := session.WaitForMatchingExchange(stepCtx, a.opts.TokenPath)
		if err != nil {
			return err
		}

		grant, err = parseTokenGrant(exchange)

		return err
	})

	return grant, err
}

// step runs one bounded part of the flow and classifies its failure.
func (a *BrowserAuthenticator) step(
	ctx context.Context,
	name string,
	timeout time.Duration,
	fn func(stepCtx context.Context) error,
) error {
	logger.Debugf(ctx, "Login step: %s", name)

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := fn(stepCtx); err != nil {
		return classify(stepCtx, name, err)
	}

	return nil
}

// classify maps a step failure onto the package sentinels.
// A failure observed after the step deadline passed is a timeout whatever the driver reported.
func classify(ctx context.Context, name string, err error) error {
	switch {
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrLoginTimeout), errors.Is(err, ErrBrowser):
		return fmt.Errorf("%s: %w", name, err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %s: %w", ErrLoginTimeout, name, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%s: %w", name, err)
	default:
		return fmt.Errorf("%w: %s: %w", ErrBrowser, name, err)
	}
}

func (a *BrowserAuthenticator) logOutcome(ctx context.Context, result *Result) {
	if result.IsSuccess() {
		logger.InfoKV(ctx, "Browser login succeeded",
			"duration", result.Duration,
			"access_token", utils.MaskSecret(result.AccessToken))

		return
	}

	logger.WarnKV(ctx, "Browser login failed",
		"status", result.Status,
		"message", result.Message,
		"error_code", result.ErrorCode,
		"duration", result.Duration)
}
