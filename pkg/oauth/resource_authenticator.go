package oauth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// KeyResolver looks up API keys. *idsdk.Application implements it.
type KeyResolver interface {
	GetAPIKey(ctx context.Context, id string, opts ...idsdk.APIKeyOption) (*idsdk.APIKey, error)
}

// Option configures an authenticator.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Result is a successfully authenticated resource request.
type Result struct {
	APIKey *idsdk.APIKey
	Scope  ScopeSet
}

// Account is the enabled account owning the API key.
func (r *Result) Account() *idsdk.Account {
	return r.APIKey.Account
}

// ResourceRequestAuthenticator validates bearer access tokens issued for the
// tenant's API key and resolves the API key they name.
type ResourceRequestAuthenticator struct {
	verifier jwtx.Verifier
	now      func() time.Time
}

// NewResourceRequestAuthenticator verifies tokens with the secret of creds.
func NewResourceRequestAuthenticator(creds idsdk.Credentials, opts ...Option) (*ResourceRequestAuthenticator, error) {
	if creds.Secret == "" {
		return nil, errors.New("oauth: api key secret is required")
	}

	o := buildOptions(opts)
	return &ResourceRequestAuthenticator{
		verifier: jwtx.NewVerifierHS256([]byte(creds.Secret)),
		now:      o.now,
	}, nil
}

// Authenticate extracts the bearer token from r and validates it.
func (a *ResourceRequestAuthenticator) Authenticate(ctx context.Context, app KeyResolver, r *http.Request) (*Result, error) {
	token, err := BearerToken(r)
	if err != nil {
		return nil, err
	}
	return a.AuthenticateToken(ctx, app, token)
}

// AuthenticateToken validates token and resolves its API key through app.
// Every rejection is an *Error; a failed lookup against the service is
// returned wrapped as-is since it says nothing about the token.
func (a *ResourceRequestAuthenticator) AuthenticateToken(ctx context.Context, app KeyResolver, token string) (*Result, error) {
	log := slogx.FromContext(ctx)

	// 1. Signature
	var claims jwtx.AccessClaims
	if err := a.verifier.Verify(token, &claims); err != nil {
		log.Debug("access token rejected", slog.Any("err", err))
		return nil, ErrInvalidAccessToken.wrap(err)
	}

	// 2. Expiry
	if err := claims.ValidateExpiry(a.now()); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken.wrap(err)
	}

	// 3. API key and account
	if claims.Subject == "" {
		return nil, ErrInvalidAccessToken.wrap(jwtx.ErrMissingClaim)
	}

	key, err := resolveEnabledKey(ctx, app, claims.Subject)
	if err != nil {
		return nil, err
	}

	// 4. Scope
	scope := ParseScope(claims.Scope)

	log.Debug("access token accepted",
		slog.String("api_key_id", key.ID),
		slog.String("scope", scope.String()),
	)

	return &Result{APIKey: key, Scope: scope}, nil
}

// resolveEnabledKey fetches the API key with its account expanded and applies
// the status checks shared by both authenticators.
func resolveEnabledKey(ctx context.Context, app KeyResolver, id string) (*idsdk.APIKey, error) {
	log := slogx.FromContext(ctx)

	key, err := app.GetAPIKey(ctx, id, idsdk.WithAccount())
	if err != nil {
		if idsdk.IsNotFound(err) {
			return nil, ErrInvalidClient.wrap(err)
		}
		return nil, fmt.Errorf("oauth: lookup api key %s: %w", id, err)
	}
	if key == nil {
		log.Info("api key not found", slog.String("api_key_id", id))
		return nil, ErrInvalidClient
	}
	if !key.IsEnabled() {
		log.Info("api key disabled", slog.String("api_key_id", id))
		return nil, ErrInvalidClient
	}
	if key.Account == nil || key.Account.Href == "" {
		return nil, ErrInvalidClient
	}

	acct, err := key.GetAccount(ctx)
	if err != nil {
		if idsdk.IsNotFound(err) {
			return nil, ErrInvalidClient.wrap(err)
		}
		return nil, fmt.Errorf("oauth: load account of api key %s: %w", id, err)
	}
	if !acct.IsEnabled() {
		log.Info("api key account not enabled",
			slog.String("api_key_id", id),
			slog.String("account_status", string(acct.Status)),
		)
		return nil, ErrInvalidClient
	}

	return key, nil
}

// Authenticator adapts a to httpx.AuthnMiddleware. The identity subject is
// the API key id and its Value is the *Result.
func (a *ResourceRequestAuthenticator) Authenticator(app KeyResolver) httpx.Authenticator {
	return func(r *http.Request) (httpx.Identity, error) {
		res, err := a.Authenticate(r.Context(), app, r)
		if err != nil {
			return httpx.Identity{}, err
		}
		return httpx.Identity{
			Subject: res.APIKey.ID,
			Scopes:  res.Scope.Slice(),
			Value:   res,
		}, nil
	}
}

// ResultFromContext returns the result stored by a middleware built from
// Authenticator.
func ResultFromContext(ctx context.Context) (*Result, bool) {
	id, ok := httpx.IdentityFromContext(ctx)
	if !ok {
		return nil, false
	}
	res, ok := id.Value.(*Result)
	return res, ok
}
