package cli_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/idkit/internal/cli"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/idsdk/idsdktest"
	"github.com/aussiebroadwan/idkit/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func globals(baseURL, appHref string) []string {
	return []string{
		"--base-url", baseURL,
		"--api-key-id", idsdktest.TenantKeyID,
		"--api-key-secret", idsdktest.TenantKeySecret,
		"--app", appHref,
	}
}

func run(t *testing.T, fake *idsdktest.Server, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCmd(cli.WithHTTPClient(fake.Server.Client()))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, globals(fake.URL, fake.AppHref())...))
	err := cmd.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, fake *idsdktest.Server, dst any, args ...string) {
	t.Helper()

	out, err := run(t, fake, append(args, "--json")...)
	require.NoError(t, err, out)
	require.NoError(t, json.Unmarshal([]byte(out), dst), out)
}

func TestAccountCommands(t *testing.T) {
	t.Parallel()

	fake := idsdktest.NewServer(t)
	acct := fake.AddAccount("alice", "alice@example.com", "password1", idsdk.AccountStatusEnabled)

	t.Run("get", func(t *testing.T) {
		out, err := run(t, fake, "account", "get", acct.Href)
		require.NoError(t, err)
		require.Contains(t, out, "alice@example.com")
		require.Contains(t, out, "ENABLED")

		var got idsdk.Account
		runJSON(t, fake, &got, "account", "get", acct.Href)
		require.Equal(t, acct.Href, got.Href)
		require.Equal(t, "alice", got.Username)
	})

	t.Run("create then login", func(t *testing.T) {
		var created idsdk.Account
		runJSON(t, fake, &created, "account", "create",
			"--username", "bob", "--email", "bob@example.com", "--password", "hunter22", "--given-name", "Bob")
		require.Equal(t, "bob", created.Username)
		require.Equal(t, idsdk.AccountStatusEnabled, created.Status)

		out, err := run(t, fake, "login", "bob", "--password", "hunter22")
		require.NoError(t, err)
		require.Contains(t, out, created.Href)

		_, err = run(t, fake, "login", "bob", "--password", "wrong")
		require.EqualError(t, err, "invalid username or password")
	})

	t.Run("set status", func(t *testing.T) {
		other := fake.AddAccount("carol", "carol@example.com", "password3", idsdk.AccountStatusEnabled)

		var got idsdk.Account
		runJSON(t, fake, &got, "account", "set-status", other.Href, "disabled")
		require.Equal(t, idsdk.AccountStatusDisabled, got.Status)

		_, err := run(t, fake, "login", "carol", "--password", "password3")
		require.Error(t, err)

		_, err = run(t, fake, "account", "set-status", other.Href, "LOCKED")
		require.ErrorContains(t, err, "unknown account status")
	})
}

func TestAPIKeyCommands(t *testing.T) {
	t.Parallel()

	fake := idsdktest.NewServer(t)
	acct := fake.AddAccount("alice", "alice@example.com", "password1", idsdk.AccountStatusEnabled)

	var created idsdk.APIKey
	runJSON(t, fake, &created, "apikey", "create", acct.Href)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.Secret)

	var got idsdk.APIKey
	runJSON(t, fake, &got, "apikey", "get", created.ID)
	require.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.Account)
	require.Equal(t, acct.Href, got.Account.Href)

	var disabled idsdk.APIKey
	runJSON(t, fake, &disabled, "apikey", "set-status", created.ID, "DISABLED")
	require.Equal(t, idsdk.APIKeyStatusDisabled, disabled.Status)
	require.Empty(t, disabled.Secret)

	_, err := run(t, fake, "apikey", "get", "NOPE")
	require.EqualError(t, err, "api key NOPE not found")
}

func TestResetCommands(t *testing.T) {
	t.Parallel()

	fake := idsdktest.NewServer(t)
	acct := fake.AddAccount("alice", "alice@example.com", "password1", idsdk.AccountStatusEnabled)

	out, err := run(t, fake, "reset", "send", "alice@example.com")
	require.NoError(t, err)
	token := fake.ResetTokenFor("alice@example.com")
	require.NotEmpty(t, token)
	require.Contains(t, out, token)

	var verified idsdk.Account
	runJSON(t, fake, &verified, "reset", "verify", token)
	require.Equal(t, acct.Href, verified.Href)

	_, err = run(t, fake, "reset", "apply", token, "--password", "brandnew1")
	require.NoError(t, err)
	require.Equal(t, "brandnew1", fake.PasswordOf(acct.Href))

	_, err = run(t, fake, "reset", "verify", token)
	require.Error(t, err)
}

func TestTokenVerify(t *testing.T) {
	t.Parallel()

	fake := idsdktest.NewServer(t)
	acct := fake.AddAccount("alice", "alice@example.com", "password1", idsdk.AccountStatusEnabled)
	key := fake.AddAPIKey(acct.Href, idsdk.APIKeyStatusEnabled)

	s, err := jwtx.NewSignerHS256(idsdktest.TenantKeyID, []byte(idsdktest.TenantKeySecret))
	require.NoError(t, err)

	sign := func(exp time.Time) string {
		tok, err := s.Sign(jwtx.AccessClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   key.ID,
				IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
				ExpiresAt: jwt.NewNumericDate(exp),
			},
			Scope: "read write",
		})
		require.NoError(t, err)
		return tok
	}

	var got struct {
		APIKeyID string   `json:"apiKeyId"`
		Scope    []string `json:"scope"`
		Account  string   `json:"account"`
	}
	runJSON(t, fake, &got, "token", "verify", sign(time.Now().Add(time.Hour)))
	require.Equal(t, key.ID, got.APIKeyID)
	require.Equal(t, []string{"read", "write"}, got.Scope)
	require.Equal(t, acct.Href, got.Account)

	_, err = run(t, fake, "token", "verify", sign(time.Now().Add(-time.Minute)))
	require.ErrorContains(t, err, "expired_access_token")
}

func TestIDSiteURL(t *testing.T) {
	t.Parallel()

	fake := idsdktest.NewServer(t)

	tests := []struct {
		name     string
		args     []string
		endpoint string
		path     string
	}{
		{"login", nil, "/sso", ""},
		{"register", []string{"--path", "/#/register"}, "/sso", "/#/register"},
		{"logout", []string{"--logout"}, "/sso/logout", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"idsite", "url", "--callback", "https://app.example.com/cb", "--state", "xyz"}, tt.args...)
			out, err := run(t, fake, args...)
			require.NoError(t, err)

			u, err := url.Parse(strings.TrimSpace(out))
			require.NoError(t, err)
			require.Equal(t, tt.endpoint, u.Path)

			var claims jwtx.IDSiteRequestClaims
			v := jwtx.NewVerifierHS256([]byte(idsdktest.TenantKeySecret))
			require.NoError(t, v.Verify(u.Query().Get("jwtRequest"), &claims))
			require.Equal(t, "https://app.example.com/cb", claims.CallbackURI)
			require.Equal(t, "xyz", claims.State)
			require.Equal(t, tt.path, claims.Path)
			require.Equal(t, fake.AppHref(), claims.Subject)
		})
	}

	t.Run("callback required", func(t *testing.T) {
		_, err := run(t, fake, "idsite", "url")
		require.EqualError(t, err, "--callback is required")
	})
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/livez" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok","version":"v1.2.3","uptime":"5s"}`))
	}))
	t.Cleanup(srv.Close)

	cmd := cli.NewRootCmd(cli.WithHTTPClient(srv.Client()))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(append([]string{"health"}, globals(srv.URL, srv.URL+"/v1/applications/app")...))
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "ok")
	require.Contains(t, out.String(), "v1.2.3")
}

func TestMissingConfiguration(t *testing.T) {
	for _, k := range []string{"IDKIT_BASE_URL", "IDKIT_API_KEY_ID", "IDKIT_API_KEY_SECRET", "IDKIT_APPLICATION_HREF", "IDKIT_IDSITE_URL"} {
		t.Setenv(k, "")
	}

	cmd := cli.NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"account", "get", "https://id.example.com/v1/accounts/x"})

	err := cmd.Execute()
	require.ErrorContains(t, err, "invalid configuration")
	require.ErrorContains(t, err, "apikeyid (required)")
}

func TestMalformedEnvironment(t *testing.T) {
	fake := idsdktest.NewServer(t)

	t.Setenv("IDKIT_BASE_URL", fake.URL)
	t.Setenv("IDKIT_API_KEY_ID", idsdktest.TenantKeyID)
	t.Setenv("IDKIT_API_KEY_SECRET", idsdktest.TenantKeySecret)
	t.Setenv("IDKIT_APPLICATION_HREF", fake.AppHref())
	t.Setenv("IDKIT_TIMEOUT", "soon")

	cmd := cli.NewRootCmd(cli.WithHTTPClient(fake.Server.Client()))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"health"})

	err := cmd.Execute()
	require.ErrorContains(t, err, "invalid environment")
	require.ErrorContains(t, err, "Timeout")
}

func TestEnvironmentDefaults(t *testing.T) {
	fake := idsdktest.NewServer(t)
	acct := fake.AddAccount("alice", "alice@example.com", "password1", idsdk.AccountStatusEnabled)

	t.Setenv("IDKIT_BASE_URL", fake.URL)
	t.Setenv("IDKIT_API_KEY_ID", idsdktest.TenantKeyID)
	t.Setenv("IDKIT_API_KEY_SECRET", idsdktest.TenantKeySecret)
	t.Setenv("IDKIT_APPLICATION_HREF", fake.AppHref())

	cmd := cli.NewRootCmd(cli.WithHTTPClient(fake.Server.Client()))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"account", "get", acct.Href})
	require.NoError(t, cmd.Execute())
	require.Contains(t, out.String(), "alice")
}
