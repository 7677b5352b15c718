package oauth

import (
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/idkit/pkg/httpx"
)

// ============================================================================
// Error Codes
// ============================================================================

const (
	ErrorCodeInvalidAccessToken   = "invalid_access_token"
	ErrorCodeExpiredAccessToken   = "expired_access_token"
	ErrorCodeInvalidClient        = "invalid_client"
	ErrorCodeInvalidRequest       = "invalid_request"
	ErrorCodeUnsupportedGrantType = "unsupported_grant_type"
	ErrorCodeServerError          = "server_error"

	// errorCodeInvalidToken is the RFC 6750 code put in WWW-Authenticate for
	// every token or client failure.
	errorCodeInvalidToken = "invalid_token"
)

// ============================================================================
// Error
// ============================================================================

// Error is the single error family returned by the authenticators. Compare
// with errors.Is against the sentinels below; two errors match when their
// codes match.
type Error struct {
	// StatusCode is the HTTP status code for this error
	StatusCode int `json:"-"`

	Code        string `json:"error"`
	Description string `json:"error_description"`

	cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Description, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func (e *Error) Unwrap() error { return e.cause }

// WriteError writes e as a JSON body with no-cache headers.
func (e *Error) WriteError(w http.ResponseWriter) {
	httpx.WriteOAuthError(w, e.StatusCode, e.Code, e.Description)
}

// Challenge maps e onto an RFC 6750 bearer challenge. Request errors keep
// their code; everything else is reported as invalid_token.
func (e *Error) Challenge() (status int, code, description string) {
	switch e.Code {
	case ErrorCodeInvalidRequest:
		return e.StatusCode, e.Code, e.Description
	default:
		return e.StatusCode, errorCodeInvalidToken, e.Code + ": " + e.Description
	}
}

// wrap returns a copy of e carrying cause for logging. The copy still
// matches e under errors.Is.
func (e *Error) wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// ============================================================================
// Predefined Errors
// ============================================================================

var (
	// ErrInvalidAccessToken covers a missing, malformed or badly signed token
	// and tokens without the claims a resource request needs.
	ErrInvalidAccessToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidAccessToken,
		Description: "access token is invalid",
	}

	// ErrExpiredAccessToken is returned once the exp claim has passed.
	ErrExpiredAccessToken = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeExpiredAccessToken,
		Description: "access token has expired",
	}

	// ErrInvalidClient is returned when the API key is unknown or disabled,
	// or when its account is not enabled.
	ErrInvalidClient = &Error{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidClient,
		Description: "invalid client",
	}

	ErrInvalidRequest = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request is malformed or missing required parameters",
	}

	ErrUnsupportedGrantType = &Error{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeUnsupportedGrantType,
		Description: "grant type not supported",
	}

	// ErrServerError is only written by handlers; the authenticators return
	// transport failures as plain errors.
	ErrServerError = &Error{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)
