package idsdk

import (
	"context"
	"strings"
)

// PasswordResetToken is created when a reset email is requested and later
// consumed with a new password. The token value is the last segment of the
// href and is what ends up in the emailed link.
type PasswordResetToken struct {
	Href    string   `json:"href,omitempty"`
	Email   string   `json:"email"`
	Account *Account `json:"account,omitempty"`

	accountStore AccountStore
	password     string
}

// SetEmail sets the address the reset email goes to.
func (t *PasswordResetToken) SetEmail(email string) *PasswordResetToken {
	t.Email = email
	return t
}

// SetAccountStore restricts the lookup of Email to one account store.
func (t *PasswordResetToken) SetAccountStore(store AccountStore) *PasswordResetToken {
	t.accountStore = store
	return t
}

// SetPassword sets the new password applied when the token is consumed.
func (t *PasswordResetToken) SetPassword(password string) *PasswordResetToken {
	t.password = password
	return t
}

// Token returns the opaque token value.
func (t *PasswordResetToken) Token() string {
	if i := strings.LastIndex(t.Href, "/"); i >= 0 {
		return t.Href[i+1:]
	}
	return t.Href
}

// GetAccount returns the account the token belongs to, loading it when only
// the href came back.
func (t *PasswordResetToken) GetAccount(ctx context.Context, c *Client) (*Account, error) {
	if t.Account == nil || t.Account.Href == "" {
		return nil, &ResourceError{Status: 404, Code: CodeInvalidResetToken, Message: "token has no account"}
	}
	if !t.Account.isLink() {
		t.Account.bind(c)
		return t.Account, nil
	}

	acct, err := c.GetAccount(ctx, t.Account.Href)
	if err != nil {
		return nil, err
	}
	t.Account = acct
	return acct, nil
}

func (t *PasswordResetToken) request() PasswordResetRequest {
	req := PasswordResetRequest{Email: t.Email, Password: t.password}
	if t.accountStore != nil {
		req.AccountStore = &Link{Href: t.accountStore.AccountStoreHref()}
	}
	return req
}
