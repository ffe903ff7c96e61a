package middleware

import (
	"net/http"

	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

// Session attaches the signed-in principal to the request context when the
// request carries a valid token for a live session. Anything else continues
// anonymously; guards in pkg/rbac decide whether that is acceptable.
func Session(resolver auth.SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := auth.TokenFromRequest(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := auth.ParseToken(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			p, err := resolver.Resolve(r.Context(), claims)
			if err != nil || p == nil {
				logger.WithCtx(r.Context()).Debug("session rejected", "session_id", claims.SessionID(), "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.WithPrincipal(r.Context(), p)
			ctx = logger.InjectLogger(ctx, logger.WithCtx(ctx).With("user_id", p.UserID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
