package httpx

import "context"

type ctxKey string

const (
	CtxKeyUserID   ctxKey = "user_id"
	CtxKeyScopes   ctxKey = "scopes"
	CtxKeyIdentity ctxKey = "identity" // full Identity incl. authenticator value
)

// Identity is what an Authenticator resolved the caller to.
type Identity struct {
	// Subject is the caller id, e.g. an API key id or account href.
	Subject string
	Scopes  []string

	// Value is the authenticator's own result type.
	Value any
}

// IdentityFromContext returns the identity stored by AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(Identity)
	return id, ok
}

// ContextWithIdentity stores id the way AuthnMiddleware does.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, id.Subject)
	ctx = context.WithValue(ctx, CtxKeyScopes, id.Scopes)
	ctx = context.WithValue(ctx, CtxKeyIdentity, id)
	return ctx
}

func scopesFromCtx(ctx context.Context) []string {
	if v, ok := ctx.Value(CtxKeyScopes).([]string); ok {
		return v
	}
	return nil
}
