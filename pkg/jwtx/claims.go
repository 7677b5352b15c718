package jwtx

import (
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// DefaultAccessTokenTTL is the lifetime of access tokens minted by the
	// client_credentials exchange.
	DefaultAccessTokenTTL = time.Hour

	// DefaultIDSiteResponseTTL is how long the hosted login page signs its
	// callback messages for. Nonces must be remembered for longer than this.
	DefaultIDSiteResponseTTL = time.Minute
)

// AccessClaims are the claims of an OAuth access token. The subject is the
// API key id the token was issued to and the issuer is the application href.
type AccessClaims struct {
	jwt.RegisteredClaims

	// Scope is a space-delimited list of granted scopes, e.g. "read write".
	Scope string `json:"scope,omitempty"`
}

// NewAccessClaims builds claims for a token issued to apiKeyID by the
// application at issuer.
func NewAccessClaims(apiKeyID, issuer string, scopes []string, ttl time.Duration, now time.Time) AccessClaims {
	return AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   apiKeyID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Scope: strings.Join(scopes, " "),
	}
}

// ValidateExpiry reports ErrMissingClaim when exp is absent and ErrExpired
// once now has reached it.
func (c *AccessClaims) ValidateExpiry(now time.Time) error {
	return checkExpiry(c.ExpiresAt, now)
}

// IDSiteRequestClaims are signed by the SDK and carried to the hosted login
// page in the jwtRequest parameter.
type IDSiteRequestClaims struct {
	jwt.RegisteredClaims

	CallbackURI string `json:"cb_uri"`
	State       string `json:"state,omitempty"`
	Path        string `json:"path,omitempty"`

	// Organization options; nil means let the hosted page decide.
	OrganizationNameKey   string `json:"onk,omitempty"`
	UseSubdomain          *bool  `json:"usd,omitempty"`
	ShowOrganizationField *bool  `json:"sof,omitempty"`
}

// IDSiteErrorClaim is present on a callback message when the hosted page
// could not complete the flow.
type IDSiteErrorClaim struct {
	Code             int    `json:"code"`
	Status           int    `json:"status"`
	Message          string `json:"message"`
	DeveloperMessage string `json:"developerMessage,omitempty"`
	MoreInfo         string `json:"moreInfo,omitempty"`
}

// IDSiteResponseClaims are what the hosted login page sends back in the
// jwtResponse parameter.
//
//	iss: hosted page base URL
//	sub: account href (empty on logout)
//	aud: API key id the request was signed with
//	irt: the jti of the request this answers, used as the replay nonce
type IDSiteResponseClaims struct {
	jwt.RegisteredClaims

	ResponseTo   string            `json:"irt"`
	State        string            `json:"state,omitempty"`
	IsNewSubject bool              `json:"isNewSub"`
	Status       string            `json:"status,omitempty"`
	Err          *IDSiteErrorClaim `json:"err,omitempty"`
}

// ValidateExpiry behaves like AccessClaims.ValidateExpiry.
func (c *IDSiteResponseClaims) ValidateExpiry(now time.Time) error {
	return checkExpiry(c.ExpiresAt, now)
}

// ValidateAudience checks if expected is one of the audiences.
func (c *IDSiteResponseClaims) ValidateAudience(expected string) error {
	if expected == "" {
		return nil // nothing to enforce
	}

	if slices.Contains(c.Audience, expected) {
		return nil
	}

	return ErrAudience
}

// NewJTI returns a random identifier for the "jti" claim.
func NewJTI() string {
	return uuid.NewString()
}

// checkExpiry compares at whole-second granularity, the resolution of the
// exp claim itself, so a token is expired from the second it names.
func checkExpiry(exp *jwt.NumericDate, now time.Time) error {
	if exp == nil {
		return ErrMissingClaim
	}

	if now.Unix() >= exp.Unix() {
		return ErrExpired
	}

	return nil
}
