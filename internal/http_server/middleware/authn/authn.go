// Package authn gates routes behind the x-auth-token session token and,
// optionally, an admin level.
package authn

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	resp "ucp_service/internal/lib/api/response"
	"ucp_service/internal/lib/jwt"
)

type ctxKey struct{}

// HeaderName carries the session token, matching what the UCP frontend
// sends.
const HeaderName = "x-auth-token"

// New validates the session token and stores its claims in the request
// context. Absent and invalid tokens are both 401; the reason is not
// disclosed.
func New(log *slog.Logger, tokenSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(HeaderName)
			if token == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Token not found, authorization denied."))

				return
			}

			claims, err := jwt.ParseToken(token, tokenSecret)
			if err != nil {
				log.Info("rejected session token", slog.String("remote", r.RemoteAddr))

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid token."))

				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), ctxKey{}, claims),
			))
		})
	}
}

// RequireAdmin allows only admin level >= 1. Must run after New.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := FromContext(r.Context())
		if !ok || claims.Admin < 1 {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("401 Not Authorized."))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func FromContext(ctx context.Context) (jwt.Claims, bool) {
	claims, ok := ctx.Value(ctxKey{}).(jwt.Claims)

	return claims, ok
}
