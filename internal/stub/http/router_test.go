package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	httpapi "github.com/aussiebroadwan/idkit/internal/stub/http"
	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/internal/stub/store/drivers/sqlite"
	"github.com/aussiebroadwan/idkit/pkg/cryptox"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/idsite"
	"github.com/aussiebroadwan/idkit/pkg/oauth"
	"github.com/stretchr/testify/require"
)

const bootstrapToken = "boot-token"

var tenant = idsdk.Credentials{ID: "TENANT", Secret: "tenant-secret-for-stub-tests"}

type env struct {
	srv    *httptest.Server
	client *idsdk.Client
}

func newEnv(t *testing.T, bootToken string) *env {
	t.Helper()

	st, err := sqlite.NewStore("file:" + filepath.Join(t.TempDir(), "stub.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	box, err := cryptox.NewSecretBox([]byte("stub-test-master-key"))
	require.NoError(t, err)
	sso, err := service.NewSSOService(tenant)
	require.NoError(t, err)

	r := httpapi.NewRouter(tenant, "test", st, nil)
	r.AccountService = &service.AccountService{Store: st}
	r.APIKeyService = &service.APIKeyService{Store: st, Box: box}
	r.LoginService = &service.LoginService{Store: st}
	r.PasswordResetService = &service.PasswordResetService{Store: st}
	r.BootstrapService = &service.BootstrapService{Store: st, Token: bootToken}
	r.SSOService = sso
	r.ApplyRoutes()

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &env{
		srv:    srv,
		client: idsdk.NewClient(srv.URL, tenant, idsdk.WithHTTPClient(srv.Client())),
	}
}

func (e *env) bootstrap(t *testing.T, token string, body any) *http.Response {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, e.srv.URL+"/v1/bootstrap", bytes.NewReader(raw))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Bootstrap-Token", token)
	}

	resp, err := e.srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// application bootstraps the service and returns its only application.
func (e *env) application(t *testing.T) *idsdk.Application {
	t.Helper()

	out, err := e.client.Bootstrap(context.Background(), bootstrapToken,
		idsdk.BootstrapRequest{ApplicationName: "demo", DirectoryName: "demo-users"})
	require.NoError(t, err)
	require.NotNil(t, out.Application.Client())
	return &out.Application
}

func requireResourceError(t *testing.T, err error, status, code int) {
	t.Helper()

	var re *idsdk.ResourceError
	require.True(t, errors.As(err, &re), "want *idsdk.ResourceError, got %v", err)
	require.Equal(t, status, re.Status)
	require.Equal(t, code, re.Code)
}

func TestBootstrap(t *testing.T) {
	t.Parallel()

	t.Run("disabled without token", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, "")
		resp := e.bootstrap(t, "anything", idsdk.BootstrapRequest{ApplicationName: "a", DirectoryName: "d"})
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("lifecycle", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, bootstrapToken)
		valid := idsdk.BootstrapRequest{ApplicationName: "demo", DirectoryName: "users"}

		require.Equal(t, http.StatusUnauthorized, e.bootstrap(t, "", valid).StatusCode)
		require.Equal(t, http.StatusUnauthorized, e.bootstrap(t, "wrong", valid).StatusCode)

		resp := e.bootstrap(t, bootstrapToken, idsdk.BootstrapRequest{DirectoryName: "users"})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var verr idsdk.ValidationErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&verr))
		require.Equal(t, idsdk.CodeValidationFailed, verr.Code)
		require.Contains(t, verr.Details, "applicationName")

		resp = e.bootstrap(t, bootstrapToken, valid)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var out idsdk.BootstrapResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		require.Equal(t, "demo", out.Application.Name)
		require.Equal(t, out.Directory.Href, out.Application.DefaultAccountStore.Href)
		require.True(t, strings.HasPrefix(out.Application.Href, e.srv.URL+"/v1/applications/"))

		_, err := e.client.Bootstrap(context.Background(), bootstrapToken, valid)
		requireResourceError(t, err, http.StatusForbidden, idsdk.CodeBootstrapNotAllowed)
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t, bootstrapToken)
		req := idsdk.BootstrapRequest{ApplicationName: "demo", DirectoryName: "users"}

		for range 5 {
			require.Equal(t, http.StatusUnauthorized, e.bootstrap(t, "wrong", req).StatusCode)
		}

		resp := e.bootstrap(t, bootstrapToken, req)
		require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		require.NotEmpty(t, resp.Header.Get("Retry-After"))
	})
}

func TestTenantAuth(t *testing.T) {
	t.Parallel()
	e := newEnv(t, bootstrapToken)
	app := e.application(t)

	bad := idsdk.NewClient(e.srv.URL, idsdk.Credentials{ID: tenant.ID, Secret: "nope"}, idsdk.WithHTTPClient(e.srv.Client()))
	_, err := bad.GetApplication(context.Background(), app.Href)
	requireResourceError(t, err, http.StatusUnauthorized, http.StatusUnauthorized)

	resp, err := e.srv.Client().Get(app.Href)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Basic")
}

func TestAccountsThroughSDK(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t, bootstrapToken)
	app := e.application(t)

	acct, err := app.CreateAccount(ctx, idsdk.AccountRequest{
		Username:  "alice",
		Email:     "alice@example.com",
		Password:  "correct-horse",
		GivenName: "Alice",
		Surname:   "Liddell",
	})
	require.NoError(t, err)
	require.Equal(t, idsdk.AccountStatusEnabled, acct.Status)
	require.Equal(t, "Alice Liddell", acct.FullName())
	require.Equal(t, app.DefaultAccountStore.Href, acct.Directory.Href)

	dir, err := e.client.GetDirectory(ctx, acct.Directory.Href)
	require.NoError(t, err)
	require.Equal(t, "demo-users", dir.Name)

	_, err = app.CreateAccount(ctx, idsdk.AccountRequest{Username: "alice", Email: "other@example.com", Password: "correct-horse"})
	requireResourceError(t, err, http.StatusConflict, idsdk.CodeDuplicateUsername)

	_, err = app.CreateAccount(ctx, idsdk.AccountRequest{Username: "al", Email: "not-an-email", Password: "short"})
	requireResourceError(t, err, http.StatusBadRequest, idsdk.CodeValidationFailed)

	t.Run("login", func(t *testing.T) {
		res, err := app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "alice", Password: "correct-horse"})
		require.NoError(t, err)
		require.Equal(t, acct.Href, res.Account.Href)

		res, err = app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{
			Username:     "alice@example.com",
			Password:     "correct-horse",
			AccountStore: dir,
		})
		require.NoError(t, err)
		require.Equal(t, acct.Href, res.Account.Href)

		_, err = app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "alice", Password: "wrong-password"})
		requireResourceError(t, err, http.StatusBadRequest, idsdk.CodeInvalidLogin)

		foreign := &idsdk.Directory{Href: e.srv.URL + "/v1/directories/elsewhere"}
		_, err = app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "alice", Password: "correct-horse", AccountStore: foreign})
		requireResourceError(t, err, http.StatusBadRequest, idsdk.CodeValidationFailed)
	})

	t.Run("disabled account", func(t *testing.T) {
		bob, err := app.CreateAccount(ctx, idsdk.AccountRequest{Username: "bob", Email: "bob@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		require.NoError(t, bob.SetStatus(ctx, idsdk.AccountStatusDisabled))
		require.Equal(t, idsdk.AccountStatusDisabled, bob.Status)

		_, err = app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "bob", Password: "correct-horse"})
		requireResourceError(t, err, http.StatusBadRequest, idsdk.CodeAccountDisabled)
	})

	t.Run("unknown account", func(t *testing.T) {
		_, err := e.client.GetAccount(ctx, e.srv.URL+"/v1/accounts/missing")
		require.True(t, idsdk.IsNotFound(err))
	})
}

func TestAPIKeysThroughSDK(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t, bootstrapToken)
	app := e.application(t)

	acct, err := app.CreateAccount(ctx, idsdk.AccountRequest{Username: "carol", Email: "carol@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	created, err := acct.CreateAPIKey(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Secret)
	require.True(t, created.IsEnabled())

	key, err := app.GetAPIKey(ctx, created.ID, idsdk.WithAccount())
	require.NoError(t, err)
	require.NotNil(t, key)
	require.Equal(t, created.Secret, key.Secret)
	require.Equal(t, "carol", key.Account.Username)

	key, err = app.GetAPIKey(ctx, created.ID)
	require.NoError(t, err)
	owner, err := key.GetAccount(ctx)
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", owner.Email)

	missing, err := app.GetAPIKey(ctx, "does-not-exist")
	require.NoError(t, err)
	require.Nil(t, missing)

	byHref, err := e.client.GetAPIKeyByHref(ctx, created.Href)
	require.NoError(t, err)
	require.Empty(t, byHref.Secret)

	require.NoError(t, key.SetStatus(ctx, idsdk.APIKeyStatusDisabled))
	require.False(t, key.IsEnabled())

	require.Error(t, key.SetStatus(ctx, idsdk.APIKeyStatus("UNVERIFIED")))
}

func TestAccessTokensAgainstStub(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t, bootstrapToken)
	app := e.application(t)

	acct, err := app.CreateAccount(ctx, idsdk.AccountRequest{Username: "dave", Email: "dave@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	key, err := acct.CreateAPIKey(ctx)
	require.NoError(t, err)

	issuer, err := oauth.NewAccessTokenAuthenticator(tenant, app.Href)
	require.NoError(t, err)
	issuer.ScopeFactory = oauth.AllowScopes("profile:read")

	form := url.Values{"grant_type": {"client_credentials"}, "scope": {"profile:read admin"}}
	req := httptest.NewRequest(http.MethodPost, "/oauth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(key.ID, key.Secret)

	issued, err := issuer.Authenticate(ctx, app, req)
	require.NoError(t, err)
	require.Equal(t, "profile:read", issued.Token.Scope)

	verifier, err := oauth.NewResourceRequestAuthenticator(tenant)
	require.NoError(t, err)

	res, err := verifier.AuthenticateToken(ctx, app, issued.Token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, key.ID, res.APIKey.ID)
	require.Equal(t, "dave", res.Account().Username)
	require.True(t, res.Scope.Has("profile:read"))

	require.NoError(t, acct.SetStatus(ctx, idsdk.AccountStatusDisabled))
	_, err = verifier.AuthenticateToken(ctx, app, issued.Token.AccessToken)
	require.ErrorIs(t, err, oauth.ErrInvalidClient)
}

func TestPasswordResetThroughSDK(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t, bootstrapToken)
	app := e.application(t)

	acct, err := app.CreateAccount(ctx, idsdk.AccountRequest{Username: "erin", Email: "erin@example.com", Password: "old-password"})
	require.NoError(t, err)

	tok, err := app.SendPasswordResetEmail(ctx, "erin@example.com", nil)
	require.NoError(t, err)
	require.Equal(t, acct.Href, tok.Account.Href)
	require.NotEmpty(t, tok.Token())

	got, err := app.VerifyPasswordResetToken(ctx, tok.Token())
	require.NoError(t, err)
	require.Equal(t, "erin", got.Username)

	got, err = app.ResetPassword(ctx, tok.Token(), "new-password")
	require.NoError(t, err)
	require.Equal(t, acct.Href, got.Href)

	_, err = app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "erin", Password: "new-password"})
	require.NoError(t, err)
	_, err = app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "erin", Password: "old-password"})
	requireResourceError(t, err, http.StatusBadRequest, idsdk.CodeInvalidLogin)

	_, err = app.ResetPassword(ctx, tok.Token(), "another-password")
	requireResourceError(t, err, http.StatusNotFound, idsdk.CodeInvalidResetToken)

	_, err = app.VerifyPasswordResetToken(ctx, "bogus")
	requireResourceError(t, err, http.StatusNotFound, idsdk.CodeInvalidResetToken)

	_, err = app.SendPasswordResetEmail(ctx, "nobody@example.com", nil)
	requireResourceError(t, err, http.StatusBadRequest, idsdk.CodeValidationFailed)
}

func TestHealth(t *testing.T) {
	t.Parallel()
	e := newEnv(t, "")

	health, err := e.client.GetLiveness(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", health.Status)
	require.Equal(t, "test", health.Version)

	resp, err := e.srv.Client().Get(e.srv.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

// noRedirect returns a client that hands 3xx replies back to the caller.
func noRedirect(srv *httptest.Server) *http.Client {
	c := *srv.Client()
	c.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	return &c
}

func TestSSO(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	e := newEnv(t, bootstrapToken)
	app := e.application(t)
	hc := noRedirect(e.srv)

	_, err := app.CreateAccount(ctx, idsdk.AccountRequest{Username: "frank", Email: "frank@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	callback, err := idsite.NewCallbackHandler(tenant, e.client)
	require.NoError(t, err)

	newBuilder := func(t *testing.T) *idsite.URLBuilder {
		b, err := idsite.NewURLBuilder(e.srv.URL, app.Href, tenant)
		require.NoError(t, err)
		return b.SetCallbackURI("https://app.example.com/idsite/callback").SetState("xyz")
	}

	jwtRequestOf := func(t *testing.T, target string) string {
		u, err := url.Parse(target)
		require.NoError(t, err)
		return u.Query().Get(idsite.RequestParam)
	}

	submit := func(t *testing.T, form url.Values) *http.Response {
		resp, err := hc.PostForm(e.srv.URL+"/sso", form)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resultOf := func(t *testing.T, resp *http.Response) *idsite.AccountResult {
		require.Equal(t, http.StatusFound, resp.StatusCode)
		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		require.Equal(t, "app.example.com", loc.Host)

		res, err := callback.AccountResultFromToken(ctx, loc.Query().Get(idsite.ResponseParam))
		require.NoError(t, err)
		require.Equal(t, "xyz", res.State)
		return res
	}

	t.Run("login page", func(t *testing.T) {
		target, err := newBuilder(t).Build()
		require.NoError(t, err)

		resp, err := hc.Get(target)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, string(body), "demo")
		require.NotContains(t, string(body), `name="email"`)
	})

	t.Run("login", func(t *testing.T) {
		target, err := newBuilder(t).Build()
		require.NoError(t, err)
		jwtReq := jwtRequestOf(t, target)

		resp := submit(t, url.Values{"jwtRequest": {jwtReq}, "login": {"frank"}, "password": {"wrong-password"}})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		require.Contains(t, string(body), "Invalid username or password.")

		res := resultOf(t, submit(t, url.Values{"jwtRequest": {jwtReq}, "login": {"frank"}, "password": {"correct-horse"}}))
		require.Equal(t, idsite.StatusAuthenticated, res.Status)
		require.False(t, res.IsNewAccount)
		require.Equal(t, "frank", res.Account.Username)
	})

	t.Run("register", func(t *testing.T) {
		target, err := newBuilder(t).SetPath("/#/register").Build()
		require.NoError(t, err)

		resp, err := hc.Get(target)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		require.Contains(t, string(body), `name="email"`)

		res := resultOf(t, submit(t, url.Values{
			"jwtRequest": {jwtRequestOf(t, target)},
			"action":     {"register"},
			"login":      {"grace"},
			"email":      {"grace@example.com"},
			"password":   {"correct-horse"},
		}))
		require.Equal(t, idsite.StatusRegistered, res.Status)
		require.True(t, res.IsNewAccount)
		require.Equal(t, "grace@example.com", res.Account.Email)
	})

	t.Run("logout", func(t *testing.T) {
		target, err := newBuilder(t).ForLogout().Build()
		require.NoError(t, err)

		resp, err := hc.Get(target)
		require.NoError(t, err)
		defer resp.Body.Close()

		res := resultOf(t, resp)
		require.Equal(t, idsite.StatusLogout, res.Status)
		require.Nil(t, res.Account)
	})

	t.Run("unknown application", func(t *testing.T) {
		b, err := idsite.NewURLBuilder(e.srv.URL, e.srv.URL+"/v1/applications/missing", tenant)
		require.NoError(t, err)
		target, err := b.SetCallbackURI("https://app.example.com/idsite/callback").Build()
		require.NoError(t, err)

		resp, err := hc.Get(target)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusFound, resp.StatusCode)

		loc, err := url.Parse(resp.Header.Get("Location"))
		require.NoError(t, err)
		_, err = callback.AccountResultFromToken(ctx, loc.Query().Get(idsite.ResponseParam))
		var ide *idsite.Error
		require.ErrorAs(t, err, &ide)
	})

	t.Run("rejects forged request", func(t *testing.T) {
		forged, err := idsite.NewURLBuilder(e.srv.URL, app.Href, idsdk.Credentials{ID: tenant.ID, Secret: "not-the-secret"})
		require.NoError(t, err)
		target, err := forged.SetCallbackURI("https://evil.example.com/cb").Build()
		require.NoError(t, err)

		resp, err := hc.Get(target)
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
