package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// RequireAnyScope admits callers holding at least one of required.
// It must run after AuthnMiddleware.
func RequireAnyScope(required ...string) Middleware {
	return requireScopes(required, func(have []string) bool {
		return slices.ContainsFunc(required, func(s string) bool { return slices.Contains(have, s) })
	})
}

// RequireAllScopes admits callers holding every scope in required.
func RequireAllScopes(required ...string) Middleware {
	return requireScopes(required, func(have []string) bool {
		for _, s := range required {
			if !slices.Contains(have, s) {
				return false
			}
		}
		return true
	})
}

func requireScopes(required []string, allowed func(have []string) bool) Middleware {
	scope := strings.Join(required, " ")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed(scopesFromCtx(r.Context())) {
				writeBearerChallenge(w, http.StatusForbidden, "insufficient_scope", "requires scope: "+scope, "scope", scope)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
