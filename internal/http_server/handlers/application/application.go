// Package application covers the whitelist quiz applications: players
// submit, admins list and review.
package application

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/http_server/middleware/authn"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/users"
	"ucp_service/internal/verification"
)

type SubmitRequest struct {
	QuizID int64  `json:"quiz_id" validate:"required"`
	Score  int    `json:"score" validate:"min=0,max=100"`
	Answer string `json:"answer" validate:"required"`
}

type ReviewRequest struct {
	Status int    `json:"status" validate:"required,min=2,max=3"`
	Reason string `json:"reason"`
}

type ApplicationService interface {
	SubmitApplication(ctx context.Context, userID, quizID int64, score int, answer string) error
	ReviewApplication(ctx context.Context, appID, adminID int64, status int) (models.User, error)
}

type ApplicationLister interface {
	Applications(ctx context.Context) ([]models.UserApp, error)
}

// New handles POST /api/v1/users/application: stores the quiz result and
// moves the account into the pending queue.
func New(log *slog.Logger, validate *validator.Validate, svc ApplicationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.application.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request SubmitRequest

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

		err = svc.SubmitApplication(ctx, claims.UserID, request.QuizID, request.Score, request.Answer)
		if err != nil {
			log.Error("failed to submit application", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("Your application has been submitted."))
	}
}

// NewList handles GET /api/v1/users/applications for the admin panel.
func NewList(log *slog.Logger, apps ApplicationLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.application.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := apps.Applications(ctx)
		if err != nil {
			log.Error("failed to list applications", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, list)
	}
}

// NewReview handles PUT /api/v1/users/applications/{id}: records the
// verdict and mails the applicant. The mail is best effort.
func NewReview(
	log *slog.Logger,
	validate *validator.Validate,
	svc ApplicationService,
	pub verification.Publisher,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.application.NewReview"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		appID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid application id."))

			return
		}

		var request ReviewRequest

		err = render.DecodeJSON(r.Body, &request)
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

		applicant, err := svc.ReviewApplication(ctx, appID, claims.UserID, request.Status)
		if err != nil {
			if errors.Is(err, users.ErrApplicationNotFound) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The id of user application you've selected does not exist."))

				return
			}

			log.Error("failed to review application", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		err = verification.SendApplicationStatus(ctx, pub, applicant.Email, request.Status, request.Reason)
		if err != nil {
			log.Error("failed to publish application status mail", sl.Err(err))
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The application has been reviewed."))
	}
}
