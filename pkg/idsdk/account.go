package idsdk

import (
	"context"
	"errors"
)

// Account is a user identity held in a directory.
type Account struct {
	Href      string        `json:"href"`
	Username  string        `json:"username,omitempty"`
	Email     string        `json:"email,omitempty"`
	GivenName string        `json:"givenName,omitempty"`
	Surname   string        `json:"surname,omitempty"`
	Status    AccountStatus `json:"status,omitempty"`
	Directory *Link         `json:"directory,omitempty"`
	APIKeys   *Link         `json:"apiKeys,omitempty"`

	client *Client
}

func (a *Account) bind(c *Client) {
	if a != nil {
		a.client = c
	}
}

// IsEnabled reports whether the account may authenticate.
func (a *Account) IsEnabled() bool {
	return a != nil && a.Status == AccountStatusEnabled
}

// isLink reports whether only the href was returned, i.e. the account was
// referenced but not expanded.
func (a *Account) isLink() bool {
	return a.Status == "" && a.Username == "" && a.Email == ""
}

// FullName joins given name and surname.
func (a *Account) FullName() string {
	switch {
	case a.GivenName == "":
		return a.Surname
	case a.Surname == "":
		return a.GivenName
	default:
		return a.GivenName + " " + a.Surname
	}
}

// SetStatus changes the account status on the service.
func (a *Account) SetStatus(ctx context.Context, status AccountStatus) error {
	if a.client == nil {
		return errUnbound
	}

	var updated Account
	if err := a.client.postJSON(ctx, a.Href, StatusUpdateRequest{Status: string(status)}, &updated); err != nil {
		return err
	}
	a.Status = updated.Status
	return nil
}

// CreateAPIKey mints a new API key owned by this account. The returned key
// carries its secret; the service never returns it in plain form again.
func (a *Account) CreateAPIKey(ctx context.Context) (*APIKey, error) {
	if a.client == nil {
		return nil, errUnbound
	}

	var key APIKey
	if err := a.client.postJSON(ctx, a.Href+"/apiKeys", struct{}{}, &key); err != nil {
		return nil, err
	}
	key.bind(a.client)
	return &key, nil
}

var errUnbound = errors.New("idsdk: resource is not bound to a client")
