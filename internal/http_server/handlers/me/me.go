package me

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"ucp_service/internal/http_server/middleware/authn"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
)

// Response is the account view for the panel header. The password hash
// never leaves the service.
type Response struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Admin         int    `json:"admin"`
	Helper        int    `json:"helper"`
	Status        int    `json:"status"`
	RegisteredAt  int64  `json:"registered_at"`
	LastLogin     int64  `json:"lastlogin"`
}

type UserProvider interface {
	UserByID(ctx context.Context, id int64) (models.User, error)
}

// New handles GET /api/v1/auth: the account behind the session token.
func New(log *slog.Logger, users UserProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.me.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, _ := authn.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := users.UserByID(ctx, claims.UserID)
		if err != nil {
			log.Error("failed to get user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, Response{
			ID:            user.ID,
			Name:          user.Name,
			Email:         user.Email,
			EmailVerified: user.EmailVerified,
			Admin:         user.Admin,
			Helper:        user.Helper,
			Status:        user.Status,
			RegisteredAt:  user.RegisteredAt,
			LastLogin:     user.LastLogin,
		})
	}
}
