package register

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
	Username string `json:"username" validate:"required,min=3,max=20,handle"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=20"`
}

type Response struct {
	Token string `json:"token"`
}

type Registrar interface {
	Register(ctx context.Context, username, email, password, ip string) (string, error)
}

// New handles POST /api/v1/auth/new: account creation with an immediate
// session token.
func New(log *slog.Logger, validate *validator.Validate, authService Registrar) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		token, err := authService.Register(ctx, request.Username, request.Email, request.Password, req.ClientIP(r))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrUserExists):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The username that you've entered is already exist."))

				return
			case errors.Is(err, auth.ErrEmailExists):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The email address that you've entered is already exist."))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{Token: token})
	}
}
