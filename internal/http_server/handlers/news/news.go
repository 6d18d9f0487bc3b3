// Package news serves the public news feed and the admin CRUD behind it.
package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"ucp_service/internal/http_server/middleware/authn"
	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
	"ucp_service/internal/storage"
)

type Request struct {
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Content string `json:"content" validate:"required"`
	Image   string `json:"image"`
}

type NewsStore interface {
	News(ctx context.Context) ([]models.News, error)
	HeadlineNews(ctx context.Context) ([]models.News, error)
	NewsBySlug(ctx context.Context, slug string) (models.News, error)
	NewsByID(ctx context.Context, id int64) (models.News, error)
	SaveNews(ctx context.Context, news models.News) (int64, error)
	UpdateNews(ctx context.Context, news models.News) error
	DeleteNews(ctx context.Context, id int64) error
}

// NewList handles GET /api/v1/news, newest first.
func NewList(log *slog.Logger, store NewsStore) http.HandlerFunc {
	return list(log, "handlers.news.NewList", store.News)
}

// NewHeadline handles GET /api/v1/news/headline: the five most recent
// entries for the landing page.
func NewHeadline(log *slog.Logger, store NewsStore) http.HandlerFunc {
	return list(log, "handlers.news.NewHeadline", store.HeadlineNews)
}

func list(
	log *slog.Logger,
	op string,
	fetch func(ctx context.Context) ([]models.News, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entries, err := fetch(ctx)
		if err != nil {
			log.Error("failed to list news", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, entries)
	}
}

// NewDetail handles GET /api/v1/news/{slug}.
func NewDetail(log *slog.Logger, store NewsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.NewDetail"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		entry, err := store.NewsBySlug(ctx, chi.URLParam(r, "slug"))
		if err != nil {
			if errors.Is(err, storage.ErrNewsNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, resp.Error("The news that you're looking for does not exist."))

				return
			}

			log.Error("failed to get news", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, entry)
	}
}

// NewCreate handles POST /api/v1/news (admin).
func NewCreate(log *slog.Logger, validate *validator.Validate, store NewsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.NewCreate"

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

		id, err := store.SaveNews(ctx, models.News{
			Title:     request.Title,
			Slug:      slugify(request.Title),
			Content:   request.Content,
			Image:     request.Image,
			CreatedBy: claims.UserID,
			CreatedAt: time.Now().Unix(),
		})
		if err != nil {
			log.Error("failed to save news", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		log.Info("news created", slog.Int64("id", id))

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The news has been published."))
	}
}

// NewUpdate handles PUT /api/v1/news/{id} (admin). The slug follows the
// new title.
func NewUpdate(log *slog.Logger, validate *validator.Validate, store NewsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.NewUpdate"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid news id."))

			return
		}

		var request Request

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

		if _, err := store.NewsByID(ctx, id); err != nil {
			if errors.Is(err, storage.ErrNewsNotFound) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Error("The news that you're looking for does not exist."))

				return
			}

			log.Error("failed to get news", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		err = store.UpdateNews(ctx, models.News{
			ID:        id,
			Title:     request.Title,
			Slug:      slugify(request.Title),
			Content:   request.Content,
			Image:     request.Image,
			UpdatedBy: claims.UserID,
			UpdatedAt: time.Now().Unix(),
		})
		if err != nil {
			log.Error("failed to update news", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, resp.OKMsg("The news has been updated."))
	}
}

// NewDelete handles DELETE /api/v1/news/{id} (admin).
func NewDelete(log *slog.Logger, store NewsStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.news.NewDelete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid news id."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.DeleteNews(ctx, id); err != nil {
			log.Error("failed to delete news", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, resp.OKMsg("The news has been deleted."))
	}
}

// slugify flattens a title to lowercase ASCII words joined by hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true

	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	return strings.TrimSuffix(b.String(), "-")
}
