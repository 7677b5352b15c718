package idsdk

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// AuthenticationResult is the outcome of a successful login attempt.
type AuthenticationResult struct {
	Account *Account `json:"account"`
}

// authenticationResultKey is the property the helper keeps the wrapped
// result under.
const authenticationResultKey = "authenticationResult"

// authenticationResultHelper adapts the loginAttempts reply. The service
// answers with the account at the top level ({"account": {...}}); the helper
// lifts that property into an AuthenticationResult stored under
// authenticationResultKey.
type authenticationResultHelper struct {
	properties map[string]any
}

func newAuthenticationResultHelper(c *Client, props map[string]json.RawMessage) (*authenticationResultHelper, error) {
	h := &authenticationResultHelper{properties: make(map[string]any)}
	if len(props) == 0 {
		return h, nil
	}

	result := &AuthenticationResult{}
	if raw, ok := props["account"]; ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var acct Account
		if err := json.Unmarshal(raw, &acct); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		acct.bind(c)
		result.Account = &acct
	}

	h.properties[authenticationResultKey] = result
	return h, nil
}

// AuthenticationResult returns the wrapped result or nil when the reply was
// empty.
func (h *authenticationResultHelper) AuthenticationResult() *AuthenticationResult {
	r, _ := h.properties[authenticationResultKey].(*AuthenticationResult)
	return r
}
