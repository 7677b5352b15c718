package idsite

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ssoPath       = "/sso"
	ssoLogoutPath = "/sso/logout"

	// RequestParam carries the signed request to the hosted page.
	RequestParam = "jwtRequest"
	// ResponseParam carries the signed response back to the callback.
	ResponseParam = "jwtResponse"
)

// URLBuilder builds the signed redirect to the hosted login page. Setters
// return the builder so calls can be chained.
type URLBuilder struct {
	baseURL string
	appHref string
	signer  jwtx.Signer
	now     func() time.Time

	callbackURI string
	state       string
	path        string
	onk         string
	usd         *bool
	sof         *bool
	logout      bool
}

// NewURLBuilder returns a builder for the hosted page at baseURL acting for
// the application at appHref. Requests are signed with creds.
func NewURLBuilder(baseURL, appHref string, creds idsdk.Credentials) (*URLBuilder, error) {
	if baseURL == "" || appHref == "" {
		return nil, errors.New("idsite: base url and application href are required")
	}

	signer, err := jwtx.NewSignerHS256(creds.ID, []byte(creds.Secret))
	if err != nil {
		return nil, err
	}

	return &URLBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		appHref: appHref,
		signer:  signer,
		now:     time.Now,
	}, nil
}

// SetCallbackURI is where the hosted page sends the user back to. Required.
func (b *URLBuilder) SetCallbackURI(uri string) *URLBuilder {
	b.callbackURI = uri
	return b
}

// SetState is echoed back unchanged in the response.
func (b *URLBuilder) SetState(state string) *URLBuilder {
	b.state = state
	return b
}

// SetPath opens the hosted page at a sub-view such as "/#/register".
func (b *URLBuilder) SetPath(path string) *URLBuilder {
	b.path = path
	return b
}

func (b *URLBuilder) SetOrganizationNameKey(key string) *URLBuilder {
	b.onk = key
	return b
}

func (b *URLBuilder) SetUseSubdomain(v bool) *URLBuilder {
	b.usd = &v
	return b
}

func (b *URLBuilder) SetShowOrganizationField(v bool) *URLBuilder {
	b.sof = &v
	return b
}

// ForLogout targets the logout endpoint instead of login.
func (b *URLBuilder) ForLogout() *URLBuilder {
	b.logout = true
	return b
}

// Build signs the request and returns the redirect URL.
func (b *URLBuilder) Build() (string, error) {
	if b.callbackURI == "" {
		return "", errors.New("idsite: callback uri is required")
	}

	claims := jwtx.IDSiteRequestClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       jwtx.NewJTI(),
			IssuedAt: jwt.NewNumericDate(b.now()),
			Issuer:   b.signer.KID(),
			Subject:  b.appHref,
		},
		CallbackURI:           b.callbackURI,
		State:                 b.state,
		Path:                  b.path,
		OrganizationNameKey:   b.onk,
		UseSubdomain:          b.usd,
		ShowOrganizationField: b.sof,
	}

	token, err := b.signer.Sign(claims)
	if err != nil {
		return "", err
	}

	endpoint := ssoPath
	if b.logout {
		endpoint = ssoLogoutPath
	}
	return b.baseURL + endpoint + "?" + url.Values{RequestParam: {token}}.Encode(), nil
}
