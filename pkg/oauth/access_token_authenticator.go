package oauth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

const grantTypeClientCredentials = "client_credentials"

// ScopeFactory decides which of the requested scopes key is granted. It may
// return an *Error to reject the request outright.
type ScopeFactory func(key *idsdk.APIKey, requested ScopeSet) (ScopeSet, error)

// AllowScopes grants the requested scopes that appear in allowed.
func AllowScopes(allowed ...string) ScopeFactory {
	set := ParseScope(strings.Join(allowed, " "))
	return func(_ *idsdk.APIKey, requested ScopeSet) (ScopeSet, error) {
		return requested.Intersect(set), nil
	}
}

// TokenResponse is the JSON body of a successful token request.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope,omitempty"`
}

// AccessTokenResult is an issued token together with what it was issued to.
type AccessTokenResult struct {
	APIKey *idsdk.APIKey
	Scope  ScopeSet
	Token  TokenResponse
}

// AccessTokenAuthenticator exchanges API key credentials for an access token
// using the client_credentials grant. Issued tokens are accepted by a
// ResourceRequestAuthenticator built from the same credentials.
type AccessTokenAuthenticator struct {
	// Issuer is put in the iss claim, normally the application href.
	Issuer string
	// TTL defaults to jwtx.DefaultAccessTokenTTL.
	TTL time.Duration
	// ScopeFactory defaults to granting no scopes.
	ScopeFactory ScopeFactory

	signer jwtx.Signer
	now    func() time.Time
}

// NewAccessTokenAuthenticator signs tokens with the secret of creds.
func NewAccessTokenAuthenticator(creds idsdk.Credentials, issuer string, opts ...Option) (*AccessTokenAuthenticator, error) {
	signer, err := jwtx.NewSignerHS256(creds.ID, []byte(creds.Secret))
	if err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	return &AccessTokenAuthenticator{
		Issuer: issuer,
		TTL:    jwtx.DefaultAccessTokenTTL,
		signer: signer,
		now:    o.now,
	}, nil
}

// Authenticate validates a token request and issues a token.
//
//	POST /oauth/token
//	Authorization: Basic base64(apiKeyId:apiKeySecret)
//	Content-Type: application/x-www-form-urlencoded
//
//	grant_type=client_credentials&scope=a+b
func (a *AccessTokenAuthenticator) Authenticate(ctx context.Context, app KeyResolver, r *http.Request) (*AccessTokenResult, error) {
	log := slogx.FromContext(ctx)

	if r.Method != http.MethodPost || !isFormBody(r) {
		return nil, ErrInvalidRequest
	}
	if err := r.ParseForm(); err != nil {
		return nil, ErrInvalidRequest.wrap(err)
	}

	switch r.PostForm.Get("grant_type") {
	case grantTypeClientCredentials:
	case "":
		return nil, ErrInvalidRequest
	default:
		return nil, ErrUnsupportedGrantType
	}

	id, secret, ok := r.BasicAuth()
	if !ok || id == "" || secret == "" {
		return nil, ErrInvalidClient
	}

	key, err := resolveEnabledKey(ctx, app, id)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(key.Secret)) != 1 {
		log.Info("api key secret mismatch", slog.String("api_key_id", id))
		return nil, ErrInvalidClient
	}

	requested := ParseScope(r.PostForm.Get("scope"))
	granted := make(ScopeSet)
	if a.ScopeFactory != nil {
		granted, err = a.ScopeFactory(key, requested)
		if err != nil {
			var oe *Error
			if errors.As(err, &oe) {
				return nil, err
			}
			return nil, ErrInvalidRequest.wrap(err)
		}
	}

	ttl := a.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultAccessTokenTTL
	}

	claims := jwtx.NewAccessClaims(key.ID, a.Issuer, granted.Slice(), ttl, a.now())
	token, err := a.signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	log.Info("access token issued",
		slog.String("api_key_id", key.ID),
		slog.String("scope", granted.String()),
	)

	return &AccessTokenResult{
		APIKey: key,
		Scope:  granted,
		Token: TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int(ttl.Seconds()),
			Scope:       granted.String(),
		},
	}, nil
}
