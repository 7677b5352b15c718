package idstub_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/idkit/internal/demo"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/nonce"
	"github.com/stretchr/testify/require"
)

// tokenRequest builds a client_credentials request for an API key.
func tokenRequest(t *testing.T, id, secret, scope string) *http.Request {
	t.Helper()

	form := url.Values{"grant_type": {"client_credentials"}, "scope": {scope}}
	r := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.SetBasicAuth(id, secret)
	return r
}

// browser plays a user agent: the demo is served in process, the hosted
// login page comes from the container.
type browser struct {
	t       *testing.T
	demo    http.Handler
	http    *http.Client
	cookies map[string]*http.Cookie
}

func (b *browser) keep(cookies []*http.Cookie) {
	for _, c := range cookies {
		if c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c
	}
}

// demoGet requests a demo path and returns the response.
func (b *browser) demoGet(target string) *httptest.ResponseRecorder {
	b.t.Helper()

	r := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range b.cookies {
		r.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.demo.ServeHTTP(rec, r)
	b.keep(rec.Result().Cookies())
	return rec
}

// hosted sends a request to the hosted page and returns the redirect it
// answers with.
func (b *browser) hosted(req *http.Request) *url.URL {
	b.t.Helper()

	resp, err := b.http.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	require.Equal(b.t, http.StatusFound, resp.StatusCode, string(body))

	u, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(b.t, err)
	return u
}

// submit posts the hosted login form for the jwtRequest in loginURL.
func (b *browser) submit(loginURL string, form url.Values) *url.URL {
	b.t.Helper()

	u, err := url.Parse(loginURL)
	require.NoError(b.t, err)
	form.Set("jwtRequest", u.Query().Get("jwtRequest"))

	req, err := http.NewRequest(http.MethodPost, u.Scheme+"://"+u.Host+u.Path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.hosted(req)
}

// TestIDSiteThroughDemo signs in, registers and logs out through the demo
// app with the stub as the hosted login page, using a SQLite nonce store.
func TestIDSiteThroughDemo(t *testing.T) {
	baseURL := setupStubContainer(t)
	ctx := context.Background()
	app := bootstrapApplication(t, idsdk.NewClient(baseURL, tenant))

	_, err := app.CreateAccount(ctx, idsdk.AccountRequest{
		Username: "kjaneway",
		Email:    "janeway@example.com",
		Password: "Coffee-Black-74656",
	})
	require.NoError(t, err)

	nonces, err := nonce.OpenSQLite("file:" + filepath.Join(t.TempDir(), "nonces.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = nonces.Close() })

	srv, err := demo.NewServer(ctx, demo.Config{
		BaseURL:         baseURL,
		APIKeyID:        tenant.ID,
		APIKeySecret:    tenant.Secret,
		ApplicationHref: app.Href,
		PublicURL:       "http://demo.test",
		NonceTTL:        time.Hour,
		SessionTTL:      time.Hour,
		TokenScopes:     []string{demo.ProfileScope},
	}, nil, nonces)
	require.NoError(t, err)

	b := &browser{t: t, demo: srv, http: noRedirects(), cookies: map[string]*http.Cookie{}}

	t.Run("login", func(t *testing.T) {
		rec := b.demoGet("/login")
		require.Equal(t, http.StatusFound, rec.Code)
		loginURL := rec.Header().Get("Location")
		require.True(t, strings.HasPrefix(loginURL, baseURL+"/sso?"), loginURL)

		page, err := b.http.Get(loginURL)
		require.NoError(t, err)
		html, _ := io.ReadAll(page.Body)
		page.Body.Close()
		require.Equal(t, http.StatusOK, page.StatusCode)
		require.Contains(t, string(html), "e2e-app")

		cb := b.submit(loginURL, url.Values{"login": {"kjaneway"}, "password": {"Coffee-Black-74656"}})
		require.Equal(t, "demo.test", cb.Host)
		require.Equal(t, "/idsite/callback", cb.Path)

		rec = b.demoGet(cb.RequestURI())
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/", rec.Header().Get("Location"))

		home := b.demoGet("/")
		require.Contains(t, home.Body.String(), "Signed in as <strong>kjaneway</strong>")

		replay := b.demoGet(cb.RequestURI())
		require.Equal(t, http.StatusBadRequest, replay.Code)
	})

	t.Run("logout", func(t *testing.T) {
		rec := b.demoGet("/logout")
		require.Equal(t, http.StatusFound, rec.Code)

		req, err := http.NewRequest(http.MethodGet, rec.Header().Get("Location"), nil)
		require.NoError(t, err)
		cb := b.hosted(req)

		rec = b.demoGet(cb.RequestURI())
		require.Equal(t, http.StatusFound, rec.Code)
		require.Contains(t, b.demoGet("/").Body.String(), `href="/login"`)
	})

	t.Run("register", func(t *testing.T) {
		rec := b.demoGet("/register")
		require.Equal(t, http.StatusFound, rec.Code)

		cb := b.submit(rec.Header().Get("Location"), url.Values{
			"action":   {"register"},
			"login":    {"tuvok"},
			"email":    {"tuvok@example.com"},
			"password": {"Logic-Is-The-Beginning"},
		})

		rec = b.demoGet(cb.RequestURI())
		require.Equal(t, http.StatusFound, rec.Code)
		require.Contains(t, b.demoGet("/").Body.String(), "Signed in as <strong>tuvok</strong>")

		_, err := app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "tuvok", Password: "Logic-Is-The-Beginning"})
		require.NoError(t, err)
	})

	t.Run("token endpoint", func(t *testing.T) {
		res, err := app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "kjaneway", Password: "Coffee-Black-74656"})
		require.NoError(t, err)
		acct, err := app.Client().GetAccount(ctx, res.Account.Href)
		require.NoError(t, err)
		key, err := acct.CreateAPIKey(ctx)
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, tokenRequest(t, key.ID, key.Secret, demo.ProfileScope))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Contains(t, rec.Body.String(), `"scope":"profile:read"`)
	})
}
