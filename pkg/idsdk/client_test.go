package idsdk_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/idsdk/idsdktest"
	"github.com/stretchr/testify/require"
)

func newApp(t *testing.T) (*idsdktest.Server, *idsdk.Application) {
	t.Helper()

	srv := idsdktest.NewServer(t)
	app, err := srv.Client().GetApplication(context.Background(), srv.AppHref())
	require.NoError(t, err)
	return srv, app
}

func TestGetApplication(t *testing.T) {
	t.Parallel()

	srv, app := newApp(t)
	require.Equal(t, srv.AppHref(), app.Href)
	require.Equal(t, "test-app", app.Name)
	require.Equal(t, idsdk.ApplicationStatusEnabled, app.Status)
	require.NotNil(t, app.Client())
}

func TestClientRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	srv := idsdktest.NewServer(t)
	c := idsdk.NewClient(srv.URL, idsdk.Credentials{ID: "nope", Secret: "nope"})

	_, err := c.GetApplication(context.Background(), srv.AppHref())
	var re *idsdk.ResourceError
	require.ErrorAs(t, err, &re)
	require.Equal(t, http.StatusUnauthorized, re.Status)
}

func TestGetAPIKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, app := newApp(t)
	acct := srv.AddAccount("alice", "alice@example.com", "password1", idsdk.AccountStatusEnabled)
	key := srv.AddAPIKey(acct.Href, idsdk.APIKeyStatusEnabled)

	t.Run("expanded account", func(t *testing.T) {
		got, err := app.GetAPIKey(ctx, key.ID, idsdk.WithAccount())
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, key.ID, got.ID)
		require.True(t, got.IsEnabled())
		require.Equal(t, "alice", got.Account.Username)
		require.Contains(t, srv.LastAPIKeyQuery.Load(), "expand=account")
	})

	t.Run("lazy account", func(t *testing.T) {
		got, err := app.GetAPIKey(ctx, key.ID)
		require.NoError(t, err)
		require.Empty(t, got.Account.Username)

		loaded, err := got.GetAccount(ctx)
		require.NoError(t, err)
		require.Equal(t, "alice", loaded.Username)
		require.True(t, loaded.IsEnabled())
		require.Same(t, loaded, got.Account)
	})

	t.Run("unknown id", func(t *testing.T) {
		got, err := app.GetAPIKey(ctx, "MISSING", idsdk.WithAccount())
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := app.GetAPIKey(ctx, "")
		require.Error(t, err)
	})
}

func TestAuthenticateAccount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, app := newApp(t)
	srv.AddAccount("bob", "bob@example.com", "hunter22", idsdk.AccountStatusEnabled)

	t.Run("valid credentials", func(t *testing.T) {
		res, err := app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "bob", Password: "hunter22"})
		require.NoError(t, err)
		require.NotNil(t, res.Account)
		require.NotEmpty(t, res.Account.Href)

		acct, err := srv.Client().GetAccount(ctx, res.Account.Href)
		require.NoError(t, err)
		require.Equal(t, "bob@example.com", acct.Email)
	})

	t.Run("bad password", func(t *testing.T) {
		_, err := app.AuthenticateAccount(ctx, idsdk.UsernamePasswordRequest{Username: "bob", Password: "wrong"})
		var re *idsdk.ResourceError
		require.ErrorAs(t, err, &re)
		require.Equal(t, idsdk.CodeInvalidLogin, re.Code)
		require.Equal(t, http.StatusBadRequest, re.Status)
	})
}

func TestPasswordResetFlow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv, app := newApp(t)
	acct := srv.AddAccount("carol", "carol@example.com", "old-password", idsdk.AccountStatusEnabled)

	tok, err := app.SendPasswordResetEmail(ctx, "carol@example.com", nil)
	require.NoError(t, err)
	require.Equal(t, "carol@example.com", tok.Email)
	require.NotEmpty(t, tok.Token())

	verified, err := app.VerifyPasswordResetToken(ctx, tok.Token())
	require.NoError(t, err)
	require.Equal(t, acct.Href, verified.Href)
	require.Equal(t, "carol", verified.Username)

	updated, err := app.ResetPassword(ctx, tok.Token(), "new-password")
	require.NoError(t, err)
	require.Equal(t, acct.Href, updated.Href)
	require.Equal(t, "new-password", srv.PasswordOf(acct.Href))

	_, err = app.VerifyPasswordResetToken(ctx, tok.Token())
	require.True(t, idsdk.IsNotFound(err))
}

func TestAccountAndKeyStatus(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	_, app := newApp(t)

	acct, err := app.CreateAccount(ctx, idsdk.AccountRequest{
		Username: "dave",
		Email:    "dave@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	require.True(t, acct.IsEnabled())

	key, err := acct.CreateAPIKey(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, key.Secret)

	require.NoError(t, key.SetStatus(ctx, idsdk.APIKeyStatusDisabled))
	require.False(t, key.IsEnabled())

	require.NoError(t, acct.SetStatus(ctx, idsdk.AccountStatusDisabled))
	require.False(t, acct.IsEnabled())

	fetched, err := app.GetAPIKey(ctx, key.ID, idsdk.WithAccount())
	require.NoError(t, err)
	require.Equal(t, idsdk.APIKeyStatusDisabled, fetched.Status)
	require.Equal(t, idsdk.AccountStatusDisabled, fetched.Account.Status)

	_, err = app.CreateAccount(ctx, idsdk.AccountRequest{Username: "dave", Email: "x@example.com", Password: "password123"})
	var re *idsdk.ResourceError
	require.ErrorAs(t, err, &re)
	require.Equal(t, idsdk.CodeDuplicateUsername, re.Code)
}

func TestParseErrorFallback(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	t.Cleanup(ts.Close)

	c := idsdk.NewClient(ts.URL, idsdk.Credentials{ID: "a", Secret: "b"})
	_, err := c.GetAccount(context.Background(), "/v1/accounts/x")

	var re *idsdk.ResourceError
	require.ErrorAs(t, err, &re)
	require.Equal(t, http.StatusBadGateway, re.Status)
	require.Equal(t, "Bad Gateway", re.Message)
	require.False(t, idsdk.IsNotFound(err))
}
