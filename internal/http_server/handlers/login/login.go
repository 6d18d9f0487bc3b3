package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/auth"
	req "ucp_service/internal/lib/api/request"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
)

type Request struct {
	Usermail string `json:"usermail" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type Response struct {
	Token string `json:"token"`
}

type Authenticator interface {
	Login(ctx context.Context, usermail, password, ip string) (string, error)
	LoginAdmin(ctx context.Context, usermail, password, ip string) (string, error)
}

// New handles POST /api/v1/auth: password login against either the
// account name or the email address.
func New(log *slog.Logger, validate *validator.Validate, authService Authenticator) http.HandlerFunc {
	return handle(log, validate, "handlers.login.New", authService.Login)
}

// NewAdmin handles POST /api/v1/auth/admin: same flow, but accounts
// without an admin level are turned away before the password check.
func NewAdmin(log *slog.Logger, validate *validator.Validate, authService Authenticator) http.HandlerFunc {
	return handle(log, validate, "handlers.login.NewAdmin", authService.LoginAdmin)
}

func handle(
	log *slog.Logger,
	validate *validator.Validate,
	op string,
	login func(ctx context.Context, usermail, password, ip string) (string, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
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

		token, err := login(ctx, request.Usermail, request.Password, req.ClientIP(r))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserNotFound):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The username or email address that you've entered does not exist."))

				return
			case errors.Is(err, auth.ErrInvalidCredentials):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The password that you've entered is incorrect."))

				return
			case errors.Is(err, auth.ErrNotAuthorized):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("You're not authorized to access this page."))

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Token: token})
	}
}
