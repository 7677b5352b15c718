package idsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// BootstrapTokenHeader carries the one-time bootstrap token.
const BootstrapTokenHeader = "X-Bootstrap-Token"

// Bootstrap seeds a fresh service with its first application and directory.
// It needs no tenant credentials; the service accepts it once.
func (c *Client) Bootstrap(ctx context.Context, token string, req BootstrapRequest) (*BootstrapResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/v1/bootstrap", nil, bytes.NewReader(body), map[string]string{
		"Content-Type":       "application/json",
		BootstrapTokenHeader: token,
	})
	if err != nil {
		return nil, err
	}

	var out BootstrapResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	out.Application.bind(c)
	return &out, nil
}
