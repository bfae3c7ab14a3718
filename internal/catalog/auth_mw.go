package catalog

import (
	"context"
	"net/http"

	"Storefront/pkg/kit"
)

type ctxKey string

const adminKey ctxKey = "admin"

// AdminFromContext returns the subject of the verified admin token.
func AdminFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(adminKey).(string)
	return sub, ok
}

func RequireAdmin(tokens *TokenMaker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok, ok := kit.BearerToken(r)
			if !ok {
				kit.WriteError(w, r, http.StatusUnauthorized, "missing token", nil)
				return
			}

			claims, err := tokens.Parse(tok)
			if err != nil {
				kit.WriteError(w, r, http.StatusUnauthorized, "invalid token", nil)
				return
			}
			if claims.Role != RoleAdmin {
				kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
