package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/utils"
)

const (
	// browserSlowMotionDelay is the delay between browser actions for visibility during debugging.
	browserSlowMotionDelay = 200 * time.Millisecond

	// browserCleanupDelay is the delay to wait for Chrome to release file locks before cleanup.
	browserCleanupDelay = 500 * time.Millisecond

	// exchangeBufferSize is the number of captured exchanges kept per watched path.
	exchangeBufferSize = 8

	// profileDirPattern is the name pattern of the temporary browser profile directory.
	profileDirPattern = "xolta-token-*"
)

// ErrPathNotWatched is returned when waiting for a path the session was not opened with.
var ErrPathNotWatched = errors.New("path is not watched by this session")

// RodSessionFactory launches isolated Chrome instances driven through go-rod.
type RodSessionFactory struct {
	// client replays intercepted requests so their responses can be read.
	client *http.Client
}

// NewRodSessionFactory creates a factory whose sessions replay intercepted requests with client.
func NewRodSessionFactory(client *http.Client) *RodSessionFactory {
	return &RodSessionFactory{client: client}
}

// captured is an intercepted exchange or the reason it could not be read.
type captured struct {
	exchange *Exchange
	err      error
}

// rodSession is a Session backed by one browser process and one stealth page.
type rodSession struct {
	// ctx is the login attempt's context. Replayed requests run on it and capture logs through it.
	ctx        context.Context //nolint:containedctx // Hijack handlers have no context of their own.
	client     *http.Client
	launcher   *launcher.Launcher
	browser    *rod.Browser
	page       *rod.Page
	router     *rod.HijackRouter
	profileDir string
	watched    []string
	exchanges  map[string]chan captured
	closeOnce  sync.Once
	closeErr   error
}

// Open launches a browser with a fresh profile and starts intercepting the watched paths.
func (f *RodSessionFactory) Open(ctx context.Context, opts SessionOptions) (Session, error) {
	// A fresh profile per attempt: nothing leaks between logins.
	profileDir, err := os.MkdirTemp("", profileDirPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary profile directory: %w", err)
	}

	logger.Debugf(ctx, "Using temporary profile directory: %s", profileDir)

	s := &rodSession{
		ctx:        ctx,
		client:     f.client,
		profileDir: profileDir,
		watched:    opts.WatchedPaths,
		exchanges:  make(map[string]chan captured, len(opts.WatchedPaths)),
	}

	for _, path := range opts.WatchedPaths {
		s.exchanges[path] = make(chan captured, exchangeBufferSize)
	}

	if err = s.start(ctx, opts); err != nil {
		if closeErr := s.Close(ctx); closeErr != nil {
			logger.Debugf(ctx, "Cleanup after failed launch: %v", closeErr)
		}

		return nil, err
	}

	return s, nil
}

func (s *rodSession) start(ctx context.Context, opts SessionOptions) error {
	s.launcher = launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		UserDataDir(s.profileDir).
		NoSandbox(true).
		Set("disable-gpu").
		Set("disable-dev-shm-usage")

	switch {
	case opts.BrowserPath != "":
		s.launcher = s.launcher.Bin(opts.BrowserPath)
	default:
		if chromePath, exists := launcher.LookPath(); exists {
			logger.Debugf(ctx, "Using system Chrome installation at: %s", chromePath)

			s.launcher = s.launcher.Bin(chromePath)
		} else {
			logger.Info(ctx, "System Chrome not found, downloading Chromium")
		}
	}

	controlURL, err := s.launcher.Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.Debugf(ctx, "Browser launched at: %s", controlURL)

	browser := rod.New().ControlURL(controlURL)

	// Enable trace and slow motion only in debug mode.
	if logger.IsDebugLevel() {
		browser = browser.Trace(true).SlowMotion(browserSlowMotionDelay)
	}

	if err = browser.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	s.browser = browser

	// Create a stealth-enabled page to evade bot detection.
	s.page, err = stealth.Page(s.browser)
	if err != nil {
		return fmt.Errorf("failed to create page: %w", err)
	}

	if err = s.unmaskUserAgent(); err != nil {
		return err
	}

	s.router = s.page.HijackRequests()

	for _, path := range s.watched {
		if err = s.router.Add("*"+path+"*", "", s.capture); err != nil {
			return fmt.Errorf("failed to intercept %q: %w", path, err)
		}
	}

	go s.router.Run()

	return nil
}

// unmaskUserAgent makes a headless browser send the User-Agent of a desktop one.
func (s *rodSession) unmaskUserAgent() error {
	browserVersion, err := proto.BrowserGetVersion{}.Call(s.browser)
	if err != nil {
		return fmt.Errorf("failed to get browser version: %w", err)
	}

	if !utils.IsHeadlessUserAgent(browserVersion.UserAgent) {
		return nil
	}

	override := proto.NetworkSetUserAgentOverride{
		UserAgent: utils.UnmaskHeadlessUserAgent(browserVersion.UserAgent),
	}

	if err = override.Call(s.page); err != nil {
		return fmt.Errorf("failed to override user agent: %w", err)
	}

	return nil
}

// capture replays an intercepted request, hands the response back to the page
// and queues it for every watched path its URL matches.
func (s *rodSession) capture(h *rod.Hijack) {
	requestURL := h.Request.URL().String()

	h.Request.SetContext(s.ctx)
	s.attachCookies(h)

	var result captured

	if err := h.LoadResponse(s.client, true); err != nil {
		h.Response.Fail(proto.NetworkErrorReasonFailed)

		result.err = fmt.Errorf("failed to load %s: %w", requestURL, err)
	} else {
		raw := h.Response.RawResponse
		result.exchange = &Exchange{
			URL:        requestURL,
			StatusCode: raw.StatusCode,
			Header:     raw.Header.Clone(),
			Body:       []byte(h.Response.Body()),
		}
	}

	s.deliver(requestURL, result)
}

// deliver queues result for every watched path requestURL matches.
func (s *rodSession) deliver(requestURL string, result captured) {
	for _, path := range s.watched {
		if !matchesPath(requestURL, path) {
			continue
		}

		select {
		case s.exchanges[path] <- result:
			logger.Debugf(s.ctx, "Captured response for %s", path)
		default:
			logger.Debugf(s.ctx, "Dropped response for %s: buffer is full", path)
		}
	}
}

// attachCookies adds the browser's cookies to a replayed request that carries none.
func (s *rodSession) attachCookies(h *rod.Hijack) {
	req := h.Request.Req()
	if req.Header.Get("Cookie") != "" {
		return
	}

	cookies, err := s.page.Cookies([]string{req.URL.String()})
	if err != nil || len(cookies) == 0 {
		return
	}

	pairs := make([]string, 0, len(cookies))
	for _, cookie := range cookies {
		pairs = append(pairs, cookie.Name+"="+cookie.Value)
	}

	req.Header.Set("Cookie", strings.Join(pairs, "; "))
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}

	return nil
}

func (s *rodSession) Fill(ctx context.Context, selector, value string) error {
	element, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %s not found: %w", selector, err)
	}

	if err = element.WaitVisible(); err != nil {
		return fmt.Errorf("element %s is not visible: %w", selector, err)
	}

	// Selecting the current text makes the input replace it.
	if err = element.SelectAllText(); err != nil {
		return fmt.Errorf("failed to clear %s: %w", selector, err)
	}

	if err = element.Input(value); err != nil {
		return fmt.Errorf("failed to type into %s: %w", selector, err)
	}

	return nil
}

func (s *rodSession) Click(ctx context.Context, selector string, settle time.Duration) error {
	element, err := s.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %s not found: %w", selector, err)
	}

	if err = element.WaitVisible(); err != nil {
		return fmt.Errorf("element %s is not visible: %w", selector, err)
	}

	if err = element.WaitEnabled(); err != nil {
		return fmt.Errorf("element %s is not enabled: %w", selector, err)
	}

	if _, err = element.WaitInteractable(); err != nil {
		return fmt.Errorf("element %s is not interactable: %w", selector, err)
	}

	if settle > 0 {
		if err = element.WaitStable(settle); err != nil {
			return fmt.Errorf("element %s did not settle: %w", selector, err)
		}
	}

	if err = element.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click %s: %w", selector, err)
	}

	return nil
}

func (s *rodSession) WaitForMatchingExchange(ctx context.Context, pathPattern string) (*Exchange, error) {
	exchanges, ok := s.exchanges[pathPattern]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathNotWatched, pathPattern)
	}

	select {
	case result := <-exchanges:
		return result.exchange, result.err
	case <-ctx.Done():
		return nil, fmt.Errorf("no response for %s: %w", pathPattern, ctx.Err())
	}
}

func (s *rodSession) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		var errs []error

		if s.router != nil {
			if err := s.router.Stop(); err != nil {
				logger.Debugf(ctx, "Hijack router stop error (expected): %v", err)
			}
		}

		if s.browser != nil {
			// Close browser and wait for it to fully terminate.
			if err := s.browser.Close(); err != nil {
				logger.Debugf(ctx, "Browser close error (expected): %v", err)
			}
		}

		// The process is killed even when the protocol connection is already gone.
		if s.launcher != nil {
			s.launcher.Kill()
		}

		if s.profileDir != "" {
			// Give Chrome a moment to release file locks.
			time.Sleep(browserCleanupDelay)

			if err := os.RemoveAll(s.profileDir); err != nil {
				errs = append(errs, fmt.Errorf("failed to remove profile directory %s: %w", s.profileDir, err))
			}
		}

		s.closeErr = errors.Join(errs...)
	})

	return s.closeErr
}
