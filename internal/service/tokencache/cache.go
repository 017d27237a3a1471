package tokencache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/oshokin/xolta-token/internal/logger"
	"github.com/oshokin/xolta-token/internal/service/auth"
	"github.com/oshokin/xolta-token/internal/store"
	"github.com/oshokin/xolta-token/internal/utils"
)

//go:generate $MOCKGEN -source=cache.go -destination=mocks/cache_mock.go

const (
	// DefaultValidity is how long a freshly acquired token is reused.
	DefaultValidity = 2 * time.Hour

	// DefaultMemoSize is the number of credentials remembered per instance.
	DefaultMemoSize = 64
)

// Names of coalesced operations.
const (
	flightGetToken            = "get"
	flightGetTokenWithRenewal = "renewal"
	flightRenew               = "renew"
)

// TokenCache serves bearer tokens for credentials, logging in only when needed.
type TokenCache interface {
	// GetToken returns a token for credential. Once it has returned a token in this
	// instance, it keeps returning the same one without checking its expiry.
	GetToken(ctx context.Context, credential auth.Credential) (string, error)
	// GetTokenWithRenewal returns an unexpired token from storage, replacing an expired one first.
	GetTokenWithRenewal(ctx context.Context, credential auth.Credential) (string, error)
	// Renew forces a fresh login and stores the new token.
	Renew(ctx context.Context, credential auth.Credential) (*store.CachedToken, error)
	// Invalidate forgets the cached token of credential.
	Invalidate(ctx context.Context, credential auth.Credential) error
	// Inspect reports the cached token state without logging in or changing anything.
	Inspect(ctx context.Context, credential auth.Credential) (*Status, error)
}

// Status describes the cached token of one credential.
type Status struct {
	// Key is the cache key of the credential.
	Key CacheKey
	// Cached reports whether a durable record exists.
	Cached bool
	// ExpiresAt is the expiry time of the durable record.
	ExpiresAt time.Time
	// Expired reports whether the durable record is no longer valid.
	Expired bool
	// Remaining is the validity left, zero when expired.
	Remaining time.Duration
	// Memoized reports whether this instance remembers a token for the credential.
	Memoized bool
	// AccessToken is the stored token.
	AccessToken string
}

// Options configure a TokenCacheImpl.
type Options struct {
	// Validity is how long a freshly acquired token is reused.
	Validity time.Duration
	// MemoSize is the number of credentials remembered per instance.
	MemoSize int
}

// TokenCacheImpl is the TokenCache backed by a Store and an Authenticator.
type TokenCacheImpl struct {
	authenticator auth.Authenticator
	store         store.Store
	clock         clockwork.Clock
	validity      time.Duration
	memo          *lru.Cache[CacheKey, store.CachedToken]
	flights       flightGroup
	locks         sync.Map
}

// NewTokenCache creates a token cache.
func NewTokenCache(
	opts Options,
	authenticator auth.Authenticator,
	tokenStore store.Store,
	clock clockwork.Clock,
) (*TokenCacheImpl, error) {
	if opts.Validity <= 0 {
		opts.Validity = DefaultValidity
	}

	if opts.MemoSize <= 0 {
		opts.MemoSize = DefaultMemoSize
	}

	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	memo, err := lru.New[CacheKey, store.CachedToken](opts.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create token memo: %w", err)
	}

	return &TokenCacheImpl{
		authenticator: authenticator,
		store:         tokenStore,
		clock:         clock,
		validity:      opts.Validity,
		memo:          memo,
	}, nil
}

// GetToken returns the remembered token, an unexpired stored token, or a freshly acquired one.
func (c *TokenCacheImpl) GetToken(ctx context.Context, credential auth.Credential) (string, error) {
	key := NewCacheKey(credential)

	return coalesce(ctx, &c.flights, flightGetToken, key, func(ctx context.Context) (string, error) {
		unlock := c.lock(key)
		defer unlock()

		return c.getToken(ctx, key, credential)
	})
}

// GetTokenWithRenewal returns an unexpired stored token, bypassing the memo.
// An expired record is deleted before a new token is requested.
func (c *TokenCacheImpl) GetTokenWithRenewal(ctx context.Context, credential auth.Credential) (string, error) {
	key := NewCacheKey(credential)

	return coalesce(ctx, &c.flights, flightGetTokenWithRenewal, key, func(ctx context.Context) (string, error) {
		unlock := c.lock(key)
		defer unlock()

		cached, err := c.load(ctx, key)
		if err != nil {
			return "", err
		}

		if cached != nil {
			if !cached.IsExpired(c.clock.Now()) {
				logger.Debug(ctx, "Reusing stored token")

				return cached.AccessToken, nil
			}

			logger.InfoKV(ctx, "Stored token expired, purging it", "expired_at", cached.ExpiresAt)

			if err = c.store.Delete(ctx, key.String()); err != nil {
				return "", err
			}

			// The memo would otherwise hand back the token that just expired.
			c.memo.Remove(key)
		}

		return c.getToken(ctx, key, credential)
	})
}

// Renew forgets any cached token and logs in again.
func (c *TokenCacheImpl) Renew(ctx context.Context, credential auth.Credential) (*store.CachedToken, error) {
	key := NewCacheKey(credential)

	return coalesce(ctx, &c.flights, flightRenew, key, func(ctx context.Context) (*store.CachedToken, error) {
		unlock := c.lock(key)
		defer unlock()

		if err := c.forget(ctx, key); err != nil {
			return nil, err
		}

		return c.login(ctx, key, credential)
	})
}

// Invalidate drops the remembered token and deletes the stored record.
// The token itself stays valid at the provider.
func (c *TokenCacheImpl) Invalidate(ctx context.Context, credential auth.Credential) error {
	key := NewCacheKey(credential)

	unlock := c.lock(key)
	defer unlock()

	return c.forget(ctx, key)
}

// Inspect reports the state of the stored token.
func (c *TokenCacheImpl) Inspect(ctx context.Context, credential auth.Credential) (*Status, error) {
	key := NewCacheKey(credential)

	unlock := c.lock(key)
	defer unlock()

	status := &Status{
		Key:      key,
		Memoized: c.memo.Contains(key),
	}

	cached, err := c.load(ctx, key)
	if err != nil {
		return nil, err
	}

	if cached == nil {
		return status, nil
	}

	now := c.clock.Now()

	status.Cached = true
	status.ExpiresAt = cached.ExpiresAt
	status.Expired = cached.IsExpired(now)
	status.AccessToken = cached.AccessToken

	if !status.Expired {
		status.Remaining = cached.ExpiresAt.Sub(now)
	}

	return status, nil
}

// getToken must be called with the key locked.
func (c *TokenCacheImpl) getToken(ctx context.Context, key CacheKey, credential auth.Credential) (string, error) {
	if remembered, ok := c.memo.Get(key); ok {
		return remembered.AccessToken, nil
	}

	cached, err := c.load(ctx, key)
	if err != nil {
		return "", err
	}

	if cached != nil && !cached.IsExpired(c.clock.Now()) {
		logger.Info(ctx, "Reusing cached token")

		c.memo.Add(key, *cached)

		return cached.AccessToken, nil
	}

	token, err := c.login(ctx, key, credential)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// login must be called with the key locked. Nothing is stored when the login fails.
func (c *TokenCacheImpl) login(
	ctx context.Context,
	key CacheKey,
	credential auth.Credential,
) (*store.CachedToken, error) {
	logger.Info(ctx, "Generating new token")

	result := c.authenticator.Login(ctx, credential)
	if err := result.Err(); err != nil {
		return nil, err
	}

	token := store.CachedToken{
		AccessToken: result.AccessToken,
		ExpiresAt:   c.clock.Now().Add(c.validity),
	}

	if err := c.store.Save(ctx, key.String(), token); err != nil {
		return nil, err
	}

	c.memo.Add(key, token)

	logger.InfoKV(ctx, "Token cached",
		"access_token", utils.MaskSecret(token.AccessToken),
		"expires_at", token.ExpiresAt)

	return &token, nil
}

// load returns the stored record, or nil when there is none.
func (c *TokenCacheImpl) load(ctx context.Context, key CacheKey) (*store.CachedToken, error) {
	cached, err := c.store.Load(ctx, key.String())

	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, store.ErrNotFound):
		return nil, nil //nolint:nilnil // A missing record is not an error.
	default:
		return nil, err
	}
}

// forget must be called with the key locked.
func (c *TokenCacheImpl) forget(ctx context.Context, key CacheKey) error {
	c.memo.Remove(key)

	return c.store.Delete(ctx, key.String())
}

// lock serializes the read-check-delete-write sequences of one key.
func (c *TokenCacheImpl) lock(key CacheKey) func() {
	value, _ := c.locks.LoadOrStore(key, &sync.Mutex{})

	mu, _ := value.(*sync.Mutex)
	mu.Lock()

	return mu.Unlock
}
