package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/idsite"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultSSORequestMaxAge bounds how old a jwtRequest may be when the
	// hosted page first sees it.
	DefaultSSORequestMaxAge = 10 * time.Minute

	SSOStatusAuthenticated = "AUTHENTICATED"
	SSOStatusRegistered    = "REGISTERED"
	SSOStatusLogout        = "LOGOUT"
)

var ErrInvalidSSORequest = errors.New("invalid sso request")

// SSOService is the signing side of the hosted login page. Requests and
// responses are HS256 tokens keyed by the tenant API key secret.
type SSOService struct {
	keyID       string
	signer      jwtx.Signer
	verifier    jwtx.Verifier
	MaxAge      time.Duration
	ResponseTTL time.Duration
	Now         func() time.Time
}

func NewSSOService(tenant idsdk.Credentials) (*SSOService, error) {
	signer, err := jwtx.NewSignerHS256("", []byte(tenant.Secret))
	if err != nil {
		return nil, err
	}
	return &SSOService{
		keyID:       tenant.ID,
		signer:      signer,
		verifier:    jwtx.NewVerifierHS256([]byte(tenant.Secret)),
		MaxAge:      DefaultSSORequestMaxAge,
		ResponseTTL: jwtx.DefaultIDSiteResponseTTL,
		Now:         time.Now,
	}, nil
}

// ParseRequest verifies a jwtRequest. The issuer must be the tenant key id
// and the subject the application href.
func (s *SSOService) ParseRequest(token string) (jwtx.IDSiteRequestClaims, error) {
	var c jwtx.IDSiteRequestClaims
	if err := s.verifier.Verify(token, &c); err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidSSORequest, err)
	}

	switch {
	case c.Issuer != s.keyID:
		return c, fmt.Errorf("%w: unknown issuer", ErrInvalidSSORequest)
	case c.Subject == "":
		return c, fmt.Errorf("%w: missing application", ErrInvalidSSORequest)
	case c.ID == "":
		return c, fmt.Errorf("%w: missing jti", ErrInvalidSSORequest)
	case c.IssuedAt == nil || s.Now().Sub(c.IssuedAt.Time) > s.MaxAge:
		return c, fmt.Errorf("%w: request is stale", ErrInvalidSSORequest)
	}

	cb, err := url.Parse(c.CallbackURI)
	if err != nil || !cb.IsAbs() {
		return c, fmt.Errorf("%w: callback uri must be absolute", ErrInvalidSSORequest)
	}
	return c, nil
}

// SSOResponse describes the outcome sent back to the callback.
type SSOResponse struct {
	Issuer      string // hosted page base URL
	AccountHref string // empty on logout
	Status      string
	IsNew       bool
	Err         *jwtx.IDSiteErrorClaim
}

// RedirectURL signs resp as the answer to req and returns the callback URL
// carrying it.
func (s *SSOService) RedirectURL(req jwtx.IDSiteRequestClaims, resp SSOResponse) (string, error) {
	now := s.Now()
	claims := jwtx.IDSiteResponseClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    resp.Issuer,
			Subject:   resp.AccountHref,
			Audience:  jwt.ClaimStrings{s.keyID},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ResponseTTL)),
			ID:        jwtx.NewJTI(),
		},
		ResponseTo:   req.ID,
		State:        req.State,
		IsNewSubject: resp.IsNew,
		Status:       resp.Status,
		Err:          resp.Err,
	}

	token, err := s.signer.Sign(claims)
	if err != nil {
		return "", err
	}

	cb, err := url.Parse(req.CallbackURI)
	if err != nil {
		return "", err
	}
	q := cb.Query()
	q.Set(idsite.ResponseParam, token)
	cb.RawQuery = q.Encode()
	return cb.String(), nil
}
