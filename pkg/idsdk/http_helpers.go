package idsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// url resolves an href or a service-relative path. Resource hrefs are
// absolute, so they are used as-is.
func (c *Client) url(ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return c.BaseURL + ref
}

// doRequest performs an HTTP request authenticated with the tenant API key.
func (c *Client) doRequest(
	ctx context.Context,
	method, ref string,
	query url.Values,
	body io.Reader,
	headers map[string]string,
) (*http.Response, error) {
	target := c.url(ref)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if !c.Credentials.IsZero() {
		req.SetBasicAuth(c.Credentials.ID, c.Credentials.Secret)
	}
	req.Header.Set("Accept", "application/json")

	// Set custom headers
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	c.Logger.DebugContext(ctx, "idsdk request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
	)

	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, ref string, query url.Values, target any) error {
	resp, err := c.doRequest(ctx, http.MethodGet, ref, query, nil, nil)
	if err != nil {
		return err
	}
	return decodeJSON(resp, target, http.StatusOK)
}

// postJSON posts payload as JSON. Creates answer 201, updates 200; both are
// accepted since the caller only cares about the resulting resource.
func (c *Client) postJSON(ctx context.Context, ref string, payload, target any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, ref, nil, bytes.NewReader(buf), map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return err
	}

	expected := http.StatusOK
	if resp.StatusCode == http.StatusCreated {
		expected = http.StatusCreated
	}
	return decodeJSON(resp, target, expected)
}

// decodeJSON decodes a JSON response into the target interface.
// Returns a *ResourceError if the response indicates an error.
func decodeJSON(resp *http.Response, target any, expectedStatus int) error {
	defer resp.Body.Close()

	// Read body once for both error parsing and success decoding
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != expectedStatus {
		return parseErrorResponse(resp, bodyBytes)
	}

	if target == nil {
		return nil
	}

	if err := json.Unmarshal(bodyBytes, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
