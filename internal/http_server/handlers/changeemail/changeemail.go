package changeemail

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/http_server/middleware/authn"
	req "ucp_service/internal/lib/api/request"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/users"
	"ucp_service/internal/verification"
)

type Request struct {
	Email string `json:"email" validate:"required,email"`
}

type EmailChanger interface {
	ChangeEmail(ctx context.Context, userID int64, newEmail string) (models.User, error)
}

// New handles PUT /api/v1/users/email. The swap drops the verified flag;
// the notice goes to the previous address so its owner sees the change.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	usersService EmailChanger,
	pub verification.Publisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.changeemail.New"

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

		claims, _ := authn.FromContext(r.Context())

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		user, err := usersService.ChangeEmail(ctx, claims.UserID, request.Email)
		if err != nil {
			if errors.Is(err, users.ErrEmailExists) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The email that you've entered is already exist."))

				return
			}

			log.Error("failed to change email", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		err = verification.SendEmailChangedNotice(ctx, pub, user.Email, request.Email, req.ClientIP(r), r.UserAgent())
		if err != nil {
			log.Error("failed to publish email change notice", sl.Err(err))
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("Your email has been changed successfully. Please verify your new email."))
	}
}
