package idsdk

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
)

// Application is a registered client application. Logins, API key lookups
// and password resets are all scoped to one.
type Application struct {
	Href                string            `json:"href"`
	Name                string            `json:"name"`
	Description         string            `json:"description,omitempty"`
	Status              ApplicationStatus `json:"status"`
	DefaultAccountStore *Link             `json:"defaultAccountStore,omitempty"`

	client *Client
}

func (a *Application) bind(c *Client) {
	if a != nil {
		a.client = c
	}
}

// Client returns the client the application was loaded through.
func (a *Application) Client() *Client { return a.client }

// GetAPIKey looks up an API key by its id among the keys of accounts that can
// log into this application. A missing key returns (nil, nil).
func (a *Application) GetAPIKey(ctx context.Context, id string, opts ...APIKeyOption) (*APIKey, error) {
	if a.client == nil {
		return nil, errUnbound
	}
	if id == "" {
		return nil, errors.New("idsdk: api key id is required")
	}

	var page Collection[APIKey]
	if err := a.client.getJSON(ctx, a.Href+"/apiKeys", apiKeyQuery(id, opts), &page); err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, nil
	}

	key := page.Items[0]
	key.bind(a.client)
	return &key, nil
}

// UsernamePasswordRequest is a basic login attempt.
type UsernamePasswordRequest struct {
	Username string
	Password string

	// AccountStore optionally restricts which store is searched.
	AccountStore AccountStore
}

// AuthenticateAccount submits a login attempt. Bad credentials come back as
// a *ResourceError with Code CodeInvalidLogin.
func (a *Application) AuthenticateAccount(ctx context.Context, req UsernamePasswordRequest) (*AuthenticationResult, error) {
	if a.client == nil {
		return nil, errUnbound
	}

	body := LoginAttemptRequest{
		Type:  "basic",
		Value: base64.StdEncoding.EncodeToString([]byte(req.Username + ":" + req.Password)),
	}
	if req.AccountStore != nil {
		body.AccountStore = &Link{Href: req.AccountStore.AccountStoreHref()}
	}

	var props map[string]json.RawMessage
	if err := a.client.postJSON(ctx, a.Href+"/loginAttempts", body, &props); err != nil {
		return nil, err
	}

	helper, err := newAuthenticationResultHelper(a.client, props)
	if err != nil {
		return nil, err
	}
	result := helper.AuthenticationResult()
	if result == nil || result.Account == nil {
		return nil, errors.New("idsdk: login attempt returned no account")
	}
	return result, nil
}

// CreateAccount registers a new account in the application's default
// account store.
func (a *Application) CreateAccount(ctx context.Context, req AccountRequest) (*Account, error) {
	if a.client == nil {
		return nil, errUnbound
	}

	var acct Account
	if err := a.client.postJSON(ctx, a.Href+"/accounts", req, &acct); err != nil {
		return nil, err
	}
	acct.bind(a.client)
	return &acct, nil
}

// SendPasswordResetEmail starts a reset for the account with email. store
// may be nil to search every store mapped to the application.
func (a *Application) SendPasswordResetEmail(ctx context.Context, email string, store AccountStore) (*PasswordResetToken, error) {
	tok := (&PasswordResetToken{}).SetEmail(email).SetAccountStore(store)
	return a.CreatePasswordResetToken(ctx, tok)
}

// CreatePasswordResetToken posts a prepared token.
func (a *Application) CreatePasswordResetToken(ctx context.Context, tok *PasswordResetToken) (*PasswordResetToken, error) {
	if a.client == nil {
		return nil, errUnbound
	}

	var created PasswordResetToken
	if err := a.client.postJSON(ctx, a.Href+"/passwordResetTokens", tok.request(), &created); err != nil {
		return nil, err
	}
	created.Account.bind(a.client)
	return &created, nil
}

// VerifyPasswordResetToken checks that token is still valid and returns the
// account it was issued for.
func (a *Application) VerifyPasswordResetToken(ctx context.Context, token string) (*Account, error) {
	if a.client == nil {
		return nil, errUnbound
	}

	var tok PasswordResetToken
	if err := a.client.getJSON(ctx, a.resetTokenHref(token), nil, &tok); err != nil {
		return nil, err
	}
	return tok.GetAccount(ctx, a.client)
}

// ResetPassword consumes token and sets the account's password. The token
// cannot be used again afterwards.
func (a *Application) ResetPassword(ctx context.Context, token, newPassword string) (*Account, error) {
	if a.client == nil {
		return nil, errUnbound
	}

	req := (&PasswordResetToken{}).SetPassword(newPassword).request()

	var tok PasswordResetToken
	if err := a.client.postJSON(ctx, a.resetTokenHref(token), req, &tok); err != nil {
		return nil, err
	}
	return tok.GetAccount(ctx, a.client)
}

func (a *Application) resetTokenHref(token string) string {
	return a.Href + "/passwordResetTokens/" + url.PathEscape(token)
}
