// Package reset drives the forgot-password flow: request a link, probe
// it, then confirm with a new password.
package reset

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/auth"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/verification"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type ConfirmRequest struct {
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type PasswordResetter interface {
	RequestPasswordReset(ctx context.Context, email string) (models.User, string, error)
	CheckResetCode(ctx context.Context, code string) error
	ResetPassword(ctx context.Context, code, newPassword string) error
}

// New handles POST /api/v1/auth/reset: mails a one-time reset link to a
// verified address.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authService PasswordResetter,
	pub verification.Publisher,
	baseURL string,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reset.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request Request

		err := render.DecodeJSON(r.Body, &request)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request."))

			return
		}

		if err := validate.Struct(request); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, code, err := authService.RequestPasswordReset(ctx, request.Email)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserNotFound):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The email address that you've entered does not exist."))

				return
			case errors.Is(err, auth.ErrEmailNotVerified):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("That email is not verified yet."))

				return
			}

			log.Error("failed to request password reset", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		if err := verification.SendResetLink(ctx, pub, baseURL, user.Email, code); err != nil {
			log.Error("failed to publish reset mail", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("We've sent the link to reset your password to your email."))
	}
}

// NewCheck handles GET /api/v1/auth/reset/{code}: the reset page probes
// its link before showing the form. The code stays valid.
func NewCheck(log *slog.Logger, authService PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reset.NewCheck"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err := authService.CheckResetCode(ctx, chi.URLParam(r, "code"))
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCode) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The page link is invalid or session has been expired."))

				return
			}

			log.Error("failed to check reset code", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OK())
	}
}

// NewConfirm handles PUT /api/v1/auth/reset/{code}: applies the new
// password and consumes the code.
func NewConfirm(log *slog.Logger, validate *validator.Validate, authService PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.reset.NewConfirm"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request ConfirmRequest

		err := render.DecodeJSON(r.Body, &request)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request."))

			return
		}

		if err := validate.Struct(request); err != nil {
			validateErr := err.(validator.ValidationErrors)

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.ValidationError(validateErr))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		err = authService.ResetPassword(ctx, chi.URLParam(r, "code"), request.Password)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCode) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The page link is invalid or session has been expired."))

				return
			}

			log.Error("failed to reset password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("Your password has been changed successfully."))
	}
}
