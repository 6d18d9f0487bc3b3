// Package quiz holds the admin catalog behind the whitelist quiz:
// questions, their types and the answer pool.
package quiz

import (
	"context"
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
)

type CreateRequest struct {
	TypeID   int64  `json:"type_id" validate:"required"`
	Title    string `json:"title" validate:"required,min=3,max=100"`
	Question string `json:"question" validate:"required"`
	Image    string `json:"image"`
}

type TypeRequest struct {
	Name   string `json:"name" validate:"required,min=3,max=50"`
	Active bool   `json:"active"`
}

type AnswersRequest struct {
	QuizID  int64 `json:"quiz_id" validate:"required"`
	Answers []struct {
		Answer        string `json:"answer" validate:"required"`
		CorrectAnswer bool   `json:"correct_answer"`
	} `json:"answers" validate:"required,min=1,dive"`
}

type QuizStore interface {
	SaveQuiz(ctx context.Context, quiz models.Quiz) (int64, error)
	QuizTypes(ctx context.Context) ([]models.QuizType, error)
	SaveQuizType(ctx context.Context, qt models.QuizType) (int64, error)
	UpdateQuizType(ctx context.Context, qt models.QuizType) error
	DeleteQuizType(ctx context.Context, id int64) error
	SaveQuizAnswers(ctx context.Context, answers []models.QuizAnswer) error
	DeleteQuizAnswer(ctx context.Context, id int64) error
}

// NewCreate handles POST /api/v1/quiz.
func NewCreate(log *slog.Logger, validate *validator.Validate, store QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewCreate"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request CreateRequest

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

		id, err := store.SaveQuiz(ctx, models.Quiz{
			TypeID:    request.TypeID,
			Title:     request.Title,
			Question:  request.Question,
			Image:     request.Image,
			CreatedBy: claims.UserID,
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			log.Error("failed to save quiz", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		log.Info("quiz created", slog.Int64("id", id))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The quiz has been created."))
	}
}

// NewTypes handles GET /api/v1/quiz/type.
func NewTypes(log *slog.Logger, store QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewTypes"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		types, err := store.QuizTypes(ctx)
		if err != nil {
			log.Error("failed to list quiz types", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, types)
	}
}

// NewCreateType handles POST /api/v1/quiz/type.
func NewCreateType(log *slog.Logger, validate *validator.Validate, store QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewCreateType"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request TypeRequest

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

		_, err = store.SaveQuizType(ctx, models.QuizType{
			Name:      request.Name,
			Active:    request.Active,
			CreatedBy: claims.UserID,
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			log.Error("failed to save quiz type", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The quiz type has been created."))
	}
}

// NewUpdateType handles PUT /api/v1/quiz/type/{id}.
func NewUpdateType(log *slog.Logger, validate *validator.Validate, store QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewUpdateType"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid quiz type id."))

			return
		}

		var request TypeRequest

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

		err = store.UpdateQuizType(ctx, models.QuizType{
			ID:        id,
			Name:      request.Name,
			Active:    request.Active,
			UpdatedBy: claims.UserID,
			UpdatedAt: time.Now().Unix(),
		})
		if err != nil {
			log.Error("failed to update quiz type", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The quiz type has been updated."))
	}
}

// NewDeleteType handles DELETE /api/v1/quiz/type/{id}.
func NewDeleteType(log *slog.Logger, store QuizStore) http.HandlerFunc {
	return deleteByID(log, "handlers.quiz.NewDeleteType", "Invalid quiz type id.",
		"The quiz type has been deleted.", store.DeleteQuizType)
}

// NewSaveAnswers handles POST /api/v1/quiz/answer: upserts the answer
// pool of one question.
func NewSaveAnswers(log *slog.Logger, validate *validator.Validate, store QuizStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.quiz.NewSaveAnswers"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var request AnswersRequest

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
		now := time.Now().Unix()

		answers := make([]models.QuizAnswer, 0, len(request.Answers))
		for _, a := range request.Answers {
			answers = append(answers, models.QuizAnswer{
				QuizID:        request.QuizID,
				Answer:        a.Answer,
				CorrectAnswer: a.CorrectAnswer,
				CreatedBy:     claims.UserID,
				CreatedAt:     now,
			})
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.SaveQuizAnswers(ctx, answers); err != nil {
			log.Error("failed to save quiz answers", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The answers have been saved."))
	}
}

// NewDeleteAnswer handles DELETE /api/v1/quiz/answer/{id}.
func NewDeleteAnswer(log *slog.Logger, store QuizStore) http.HandlerFunc {
	return deleteByID(log, "handlers.quiz.NewDeleteAnswer", "Invalid answer id.",
		"The answer has been deleted.", store.DeleteQuizAnswer)
}

func deleteByID(
	log *slog.Logger,
	op, invalidMsg, okMsg string,
	del func(ctx context.Context, id int64) error,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error(invalidMsg))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := del(ctx, id); err != nil {
			log.Error("failed to delete", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, resp.OKMsg(okMsg))
	}
}
