package idsite

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/aussiebroadwan/idkit/pkg/nonce"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// DefaultNonceTTL is how long a response id is remembered. It comfortably
// outlives the validity of a response token.
const DefaultNonceTTL = time.Hour

// NonceStore remembers response ids that have been accepted.
type NonceStore interface {
	HasNonce(ctx context.Context, nonce string) (bool, error)
	PutNonce(ctx context.Context, nonce string, ttl time.Duration) error
}

// NonceClaimer is implemented by stores that can check and store in one
// atomic step. The handler uses it when available.
type NonceClaimer interface {
	ClaimNonce(ctx context.Context, nonce string, ttl time.Duration) (fresh bool, err error)
}

// AccountResolver loads an account by href. *idsdk.Client implements it.
type AccountResolver interface {
	GetAccount(ctx context.Context, href string) (*idsdk.Account, error)
}

// Status is the outcome reported by the hosted page.
type Status string

const (
	StatusAuthenticated Status = "AUTHENTICATED"
	StatusRegistered    Status = "REGISTERED"
	StatusLogout        Status = "LOGOUT"
)

// AccountResult is a verified callback.
type AccountResult struct {
	// Account is nil for a logout that names no subject.
	Account      *idsdk.Account
	IsNewAccount bool
	State        string
	Status       Status
}

// ResultListener is notified after a callback has been verified.
type ResultListener interface {
	OnAuthenticated(ctx context.Context, res *AccountResult)
	OnRegistered(ctx context.Context, res *AccountResult)
	OnLogout(ctx context.Context, res *AccountResult)
}

// ListenerFuncs adapts plain functions to ResultListener. Nil fields are
// skipped.
type ListenerFuncs struct {
	Authenticated func(ctx context.Context, res *AccountResult)
	Registered    func(ctx context.Context, res *AccountResult)
	Logout        func(ctx context.Context, res *AccountResult)
}

func (l ListenerFuncs) OnAuthenticated(ctx context.Context, res *AccountResult) {
	if l.Authenticated != nil {
		l.Authenticated(ctx, res)
	}
}

func (l ListenerFuncs) OnRegistered(ctx context.Context, res *AccountResult) {
	if l.Registered != nil {
		l.Registered(ctx, res)
	}
}

func (l ListenerFuncs) OnLogout(ctx context.Context, res *AccountResult) {
	if l.Logout != nil {
		l.Logout(ctx, res)
	}
}

// Option configures a CallbackHandler.
type Option func(*CallbackHandler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(h *CallbackHandler) { h.now = now }
}

// CallbackHandler verifies the signed response the hosted page redirects
// back with.
type CallbackHandler struct {
	apiKeyID string
	verifier jwtx.Verifier
	resolver AccountResolver

	nonces   NonceStore
	nonceTTL time.Duration
	listener ResultListener
	now      func() time.Time
}

// NewCallbackHandler verifies responses signed for creds and loads accounts
// through resolver. Nonces are kept in a nonce.MemoryStore until
// SetNonceStore is called.
func NewCallbackHandler(creds idsdk.Credentials, resolver AccountResolver, opts ...Option) (*CallbackHandler, error) {
	if creds.ID == "" || creds.Secret == "" {
		return nil, errors.New("idsite: api key id and secret are required")
	}
	if resolver == nil {
		return nil, errors.New("idsite: account resolver is required")
	}

	h := &CallbackHandler{
		apiKeyID: creds.ID,
		verifier: jwtx.NewVerifierHS256([]byte(creds.Secret)),
		resolver: resolver,
		nonces:   nonce.NewMemoryStore(),
		nonceTTL: DefaultNonceTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// SetNonceStore replaces the store used for replay protection.
func (h *CallbackHandler) SetNonceStore(ns NonceStore) error {
	if ns == nil {
		return errors.New("idsite: nonce store cannot be nil")
	}
	h.nonces = ns
	return nil
}

// SetNonceTTL changes how long response ids are remembered.
func (h *CallbackHandler) SetNonceTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("idsite: nonce ttl must be positive")
	}
	h.nonceTTL = ttl
	return nil
}

// SetResultListener sets the listener; nil disables notification.
func (h *CallbackHandler) SetResultListener(l ResultListener) {
	h.listener = l
}

// AccountResult verifies the jwtResponse parameter of r.
func (h *CallbackHandler) AccountResult(ctx context.Context, r *http.Request) (*AccountResult, error) {
	token := r.URL.Query().Get(ResponseParam)
	if token == "" {
		return nil, ErrMissingResponse
	}
	return h.AccountResultFromToken(ctx, token)
}

// AccountResultFromToken verifies a response token and resolves its account.
func (h *CallbackHandler) AccountResultFromToken(ctx context.Context, token string) (*AccountResult, error) {
	log := slogx.FromContext(ctx)

	// 1. Signature
	var claims jwtx.IDSiteResponseClaims
	if err := h.verifier.Verify(token, &claims); err != nil {
		log.Debug("idsite response rejected", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	// 2. Audience and expiry
	if err := claims.ValidateAudience(h.apiKeyID); err != nil || len(claims.Audience) == 0 {
		return nil, ErrAudience
	}
	if err := claims.ValidateExpiry(h.now()); err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return nil, ErrExpiredResponse
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}

	// 3. Replay. Error responses are single use too.
	if claims.ResponseTo == "" {
		return nil, ErrMissingNonce
	}
	if err := h.claimNonce(ctx, claims.ResponseTo); err != nil {
		return nil, err
	}

	// 4. Error reported by the hosted page
	if claims.Err != nil {
		return nil, newError(claims.Err)
	}

	// 5. Result
	status, err := resolveStatus(claims.Status, claims.IsNewSubject)
	if err != nil {
		return nil, err
	}

	res := &AccountResult{
		IsNewAccount: claims.IsNewSubject,
		State:        claims.State,
		Status:       status,
	}

	if claims.Subject != "" {
		acct, err := h.resolver.GetAccount(ctx, claims.Subject)
		if err != nil {
			return nil, fmt.Errorf("idsite: load account: %w", err)
		}
		res.Account = acct
	} else if status != StatusLogout {
		return nil, fmt.Errorf("%w: missing sub", ErrInvalidResponse)
	}

	log.Debug("idsite response accepted",
		slog.String("status", string(status)),
		slog.String("account", claims.Subject),
	)

	h.notify(ctx, res)
	return res, nil
}

func (h *CallbackHandler) claimNonce(ctx context.Context, id string) error {
	if c, ok := h.nonces.(NonceClaimer); ok {
		fresh, err := c.ClaimNonce(ctx, id, h.nonceTTL)
		if err != nil {
			return fmt.Errorf("idsite: nonce store: %w", err)
		}
		if !fresh {
			return ErrNonceReused
		}
		return nil
	}

	seen, err := h.nonces.HasNonce(ctx, id)
	if err != nil {
		return fmt.Errorf("idsite: nonce store: %w", err)
	}
	if seen {
		return ErrNonceReused
	}
	if err := h.nonces.PutNonce(ctx, id, h.nonceTTL); err != nil {
		return fmt.Errorf("idsite: nonce store: %w", err)
	}
	return nil
}

func (h *CallbackHandler) notify(ctx context.Context, res *AccountResult) {
	if h.listener == nil {
		return
	}

	switch res.Status {
	case StatusAuthenticated:
		h.listener.OnAuthenticated(ctx, res)
	case StatusRegistered:
		h.listener.OnRegistered(ctx, res)
	case StatusLogout:
		h.listener.OnLogout(ctx, res)
	}
}

// resolveStatus maps the status claim. Older hosted pages omit it, in which
// case isNewSub decides between registered and authenticated.
func resolveStatus(s string, isNew bool) (Status, error) {
	switch Status(s) {
	case StatusAuthenticated, StatusRegistered, StatusLogout:
		return Status(s), nil
	case "":
		if isNew {
			return StatusRegistered, nil
		}
		return StatusAuthenticated, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}
