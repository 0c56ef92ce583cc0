package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tether/pkg/jwtx"
	"github.com/aussiebroadwan/tether/pkg/slogx"
)

// SessionAuthenticator verifies a presented session token end to end,
// signature plus server-side session state, and returns the claims along
// with the backing session record id.
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, rawToken string) (jwtx.Claims, string, error)
}

// AuthnMiddleware rejects requests without a live session token. Stateless
// JWT validity alone is not enough; the authenticator consults the session
// store so a logged-out token fails even before its expiry.
func AuthnMiddleware(a SessionAuthenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, sessionID, err := a.Authenticate(ctx, raw)
			if err != nil {
				writeBearerError(w, "token verification failed")
				log.Warn("session token rejected", "err", err)
				return
			}

			// Inject into context for downstream handlers.
			ctx = contextWithAuth(ctx, claims, sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.Claims, sessionID string) context.Context {
	ctx = context.WithValue(ctx, CtxKeyAccountID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeySessionID, sessionID)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-style WWW-Authenticate header plus the structured error body
// clients branch on.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "token_invalid",
		"error_description": desc,
	})
}
