package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/idkit/internal/stub/service"
	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

func writeError(w http.ResponseWriter, status, code int, msg string) {
	httpx.WriteJSON(w, status, idsdk.ResourceError{Status: status, Code: code, Message: msg})
}

// writeServiceError maps service sentinels to resource errors. Anything
// unrecognised is logged and reported as a 500 without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, idsdk.CodeResourceNotFound, "The requested resource does not exist.")
	case errors.Is(err, service.ErrInvalidLogin):
		writeError(w, http.StatusBadRequest, idsdk.CodeInvalidLogin, "Invalid username or password.")
	case errors.Is(err, service.ErrAccountDisabled):
		writeError(w, http.StatusBadRequest, idsdk.CodeAccountDisabled, "Login attempt failed because the account is not enabled.")
	case errors.Is(err, service.ErrDuplicateAccount):
		writeError(w, http.StatusConflict, idsdk.CodeDuplicateUsername, "An account with that username or email already exists.")
	case errors.Is(err, service.ErrInvalidResetToken):
		writeError(w, http.StatusNotFound, idsdk.CodeInvalidResetToken, "The password reset token is invalid or has expired.")
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrForeignStore):
		writeError(w, http.StatusBadRequest, idsdk.CodeValidationFailed, err.Error())
	default:
		slogx.FromContext(r.Context()).Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, http.StatusInternalServerError, "An internal error occurred.")
	}
}
