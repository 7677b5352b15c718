package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// ErrorBody is the RFC 6749 section 5.2 error document.
type ErrorBody struct {
	Error       string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// WriteJSON encodes v as the response body with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// NoCache marks a response as never cacheable. Token responses and
// anything carrying account data use it.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// WriteOAuthError writes an uncacheable OAuth error document.
func WriteOAuthError(w http.ResponseWriter, status int, code, desc string) {
	NoCache(w)
	WriteJSON(w, status, ErrorBody{Error: code, Description: desc})
}

// writeBearerChallenge sets a WWW-Authenticate Bearer challenge built from
// key/value pairs and writes the matching error body.
func writeBearerChallenge(w http.ResponseWriter, status int, code, desc string, extra ...string) {
	params := []string{"error=" + strconv.Quote(code)}
	if desc != "" {
		params = append(params, "error_description="+strconv.Quote(desc))
	}
	for i := 0; i+1 < len(extra); i += 2 {
		params = append(params, extra[i]+"="+strconv.Quote(extra[i+1]))
	}
	w.Header().Set("WWW-Authenticate", "Bearer "+strings.Join(params, ", "))
	WriteOAuthError(w, status, code, desc)
}
