package changepassword

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
	OldPassword string `json:"old_password" validate:"required"`
	Password    string `json:"password" validate:"required,min=6,max=20"`
}

type PasswordChanger interface {
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (models.User, error)
}

// New handles PUT /api/v1/users/password. The notification mail is best
// effort; a queue hiccup must not roll back an applied change.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	usersService PasswordChanger,
	pub verification.Publisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.changepassword.New"

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

		user, err := usersService.ChangePassword(ctx, claims.UserID, request.OldPassword, request.Password)
		if err != nil {
			if errors.Is(err, users.ErrWrongOldPassword) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("Incorrect old password."))

				return
			}

			log.Error("failed to change password", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		err = verification.SendPasswordChangedNotice(ctx, pub, user.Email, req.ClientIP(r), r.UserAgent())
		if err != nil {
			log.Error("failed to publish password change notice", sl.Err(err))
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("Your password has been changed successfully."))
	}
}
