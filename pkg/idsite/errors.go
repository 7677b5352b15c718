package idsite

import (
	"errors"
	"fmt"

	"github.com/aussiebroadwan/idkit/pkg/jwtx"
)

var (
	ErrMissingResponse = errors.New("idsite: missing jwtResponse parameter")
	ErrInvalidResponse = errors.New("idsite: invalid response token")
	ErrExpiredResponse = errors.New("idsite: response token expired")
	ErrAudience        = errors.New("idsite: response was not issued for this api key")
	ErrMissingNonce    = errors.New("idsite: response has no irt claim")
	ErrNonceReused     = errors.New("idsite: response token already used")
	ErrUnknownStatus   = errors.New("idsite: unknown status")
)

// Error is a failure reported by the hosted login page in the err claim of a
// signed response, for example an expired session or a cancelled login.
type Error struct {
	Code             int
	Status           int
	Message          string
	DeveloperMessage string
	MoreInfo         string
}

func (e *Error) Error() string {
	return fmt.Sprintf("idsite: %d (%d): %s", e.Code, e.Status, e.Message)
}

func newError(c *jwtx.IDSiteErrorClaim) *Error {
	return &Error{
		Code:             c.Code,
		Status:           c.Status,
		Message:          c.Message,
		DeveloperMessage: c.DeveloperMessage,
		MoreInfo:         c.MoreInfo,
	}
}
