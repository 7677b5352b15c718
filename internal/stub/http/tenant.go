package http

import (
	"crypto/subtle"
	"net/http"

	"github.com/aussiebroadwan/idkit/pkg/httpx"
	"github.com/aussiebroadwan/idkit/pkg/idsdk"
)

// TenantAuth requires HTTP Basic credentials matching the tenant API key.
// The authenticated key id is stored as the request identity.
func TenantAuth(tenant idsdk.Credentials) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, secret, ok := r.BasicAuth()
			if !ok ||
				subtle.ConstantTimeCompare([]byte(id), []byte(tenant.ID)) != 1 ||
				subtle.ConstantTimeCompare([]byte(secret), []byte(tenant.Secret)) != 1 {
				w.Header().Set("WWW-Authenticate", `Basic realm="idstub"`)
				writeError(w, http.StatusUnauthorized, http.StatusUnauthorized, "authentication required")
				return
			}

			ctx := httpx.ContextWithIdentity(r.Context(), httpx.Identity{Subject: id})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
