package idsdk

import (
	"context"
	"errors"
	"net/url"
)

// APIKey is a credential pair owned by an account. Access tokens name the
// key id as their subject.
type APIKey struct {
	Href    string       `json:"href"`
	ID      string       `json:"id"`
	Secret  string       `json:"secret,omitempty"`
	Status  APIKeyStatus `json:"status"`
	Account *Account     `json:"account,omitempty"`

	client *Client
}

func (k *APIKey) bind(c *Client) {
	if k == nil {
		return
	}
	k.client = c
	k.Account.bind(c)
}

// IsEnabled reports whether the key may be used.
func (k *APIKey) IsEnabled() bool {
	return k != nil && k.Status == APIKeyStatusEnabled
}

// GetAccount returns the owning account. When the key was fetched without
// expansion the account is loaded on first call and kept on the key.
func (k *APIKey) GetAccount(ctx context.Context) (*Account, error) {
	if k.Account == nil || k.Account.Href == "" {
		return nil, errors.New("idsdk: api key has no account")
	}
	if !k.Account.isLink() {
		return k.Account, nil
	}
	if k.client == nil {
		return nil, errUnbound
	}

	acct, err := k.client.GetAccount(ctx, k.Account.Href)
	if err != nil {
		return nil, err
	}
	k.Account = acct
	return acct, nil
}

// SetStatus enables or disables the key on the service.
func (k *APIKey) SetStatus(ctx context.Context, status APIKeyStatus) error {
	if k.client == nil {
		return errUnbound
	}

	var updated APIKey
	if err := k.client.postJSON(ctx, k.Href, StatusUpdateRequest{Status: string(status)}, &updated); err != nil {
		return err
	}
	k.Status = updated.Status
	return nil
}

// APIKeyOption tunes an API key lookup.
type APIKeyOption func(*apiKeyOptions)

type apiKeyOptions struct {
	expandAccount bool
}

// WithAccount asks the service to expand the owning account in the same
// response, saving a round trip when the account status must be checked.
func WithAccount() APIKeyOption {
	return func(o *apiKeyOptions) { o.expandAccount = true }
}

func apiKeyQuery(id string, opts []APIKeyOption) url.Values {
	var o apiKeyOptions
	for _, opt := range opts {
		opt(&o)
	}

	q := url.Values{}
	if id != "" {
		q.Set("id", id)
	}
	if o.expandAccount {
		q.Set("expand", "account")
	}
	return q
}
