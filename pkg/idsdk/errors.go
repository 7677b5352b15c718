package idsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ResourceError is returned for every non-success reply from the service.
// Status mirrors the HTTP status; Code is the service's numeric error code.
type ResourceError struct {
	Status           int    `json:"status"`
	Code             int    `json:"code"`
	Message          string `json:"message"`
	DeveloperMessage string `json:"developerMessage,omitempty"`
	MoreInfo         string `json:"moreInfo,omitempty"`
}

// Error implements the error interface.
func (e *ResourceError) Error() string {
	msg := e.DeveloperMessage
	if msg == "" {
		msg = e.Message
	}
	return fmt.Sprintf("HTTP %d, code %d: %s", e.Status, e.Code, msg)
}

// Service error codes the SDK reacts to.
const (
	CodeResourceNotFound    = 404
	CodeInvalidLogin        = 7100
	CodeValidationFailed    = 2000
	CodeInvalidResetToken   = 7104
	CodeAccountDisabled     = 7101
	CodeDuplicateUsername   = 2001
	CodeBootstrapNotAllowed = 4030
)

// IsNotFound reports whether err is a 404 from the service.
func IsNotFound(err error) bool {
	var re *ResourceError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// parseErrorResponse turns an error reply into a *ResourceError. Bodies that
// are not in the service's error shape still produce one from the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var re ResourceError
	if err := json.Unmarshal(body, &re); err == nil && re.Message != "" {
		if re.Status == 0 {
			re.Status = resp.StatusCode
		}
		return &re
	}

	// Fallback: create generic error from status code
	return &ResourceError{
		Status:  resp.StatusCode,
		Code:    resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}
}
