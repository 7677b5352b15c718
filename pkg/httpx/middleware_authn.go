package httpx

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/idkit/pkg/slogx"
)

// Authenticator resolves the caller of a request.
type Authenticator func(r *http.Request) (Identity, error)

// Challenger is implemented by authentication errors that map onto an
// RFC 6750 challenge. Errors that don't implement it are treated as
// server failures and answered with 500.
type Challenger interface {
	Challenge() (status int, code, description string)
}

// AuthnMiddleware runs authn and stores the resulting Identity in the
// request context for downstream handlers and RequireAnyScope.
func AuthnMiddleware(authn Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			id, err := authn(r)
			if err != nil {
				var ch Challenger
				if errors.As(err, &ch) {
					status, code, desc := ch.Challenge()
					log.Debug("bearer authentication failed", "code", code, "err", err)
					writeBearerChallenge(w, status, code, desc)
					return
				}

				log.Error("bearer authentication error", "err", err)
				WriteOAuthError(w, http.StatusInternalServerError, "server_error", "unable to authenticate request")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, id)))
		})
	}
}
