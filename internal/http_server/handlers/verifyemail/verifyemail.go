// Package verifyemail issues and confirms the email verification link
// for the logged-in account.
package verifyemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"ucp_service/internal/http_server/middleware/authn"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/users"
	"ucp_service/internal/verification"
)

type EmailVerifier interface {
	RequestEmailVerification(ctx context.Context, userID int64) (models.User, string, error)
	ConfirmEmailVerification(ctx context.Context, userID int64, code string) error
}

// New handles POST /api/v1/users/email/verification: mails the
// verification link to the account's own address.
func New(
	log *slog.Logger,
	usersService EmailVerifier,
	pub verification.Publisher,
	baseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verifyemail.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, _ := authn.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, code, err := usersService.RequestEmailVerification(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, users.ErrAlreadyVerified) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Your email is already verified."))

				return
			}

			log.Error("failed to request email verification", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		if err := verification.SendVerificationLink(ctx, pub, baseURL, user.Email, code); err != nil {
			log.Error("failed to publish verification mail", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("We've sent the verification link to your email."))
	}
}

// NewConfirm handles PUT /api/v1/users/email/verification/{code}. The
// code must belong to the account behind the token.
func NewConfirm(log *slog.Logger, usersService EmailVerifier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verifyemail.NewConfirm"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		claims, _ := authn.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := usersService.ConfirmEmailVerification(ctx, claims.UserID, chi.URLParam(r, "code"))
		if err != nil {
			if errors.Is(err, users.ErrInvalidCode) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The link doesn't seem right. We couldn't help you to verify your email."))

				return
			}

			log.Error("failed to confirm email verification", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("Your email has been verified."))
	}
}
