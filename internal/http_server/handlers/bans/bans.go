// Package bans exposes the in-game ban list to the admin panel.
package bans

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/models"
)

type BanStore interface {
	Bans(ctx context.Context) ([]models.Ban, error)
	DeleteBan(ctx context.Context, id int64) error
}

// NewList handles GET /api/v1/bans (admin), newest first.
func NewList(log *slog.Logger, store BanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bans.NewList"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := store.Bans(ctx)
		if err != nil {
			log.Error("failed to list bans", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, list)
	}
}

// NewDelete handles DELETE /api/v1/bans/{id} (admin): lifts a ban.
func NewDelete(log *slog.Logger, store BanStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bans.NewDelete"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Invalid ban id."))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := store.DeleteBan(ctx, id); err != nil {
			log.Error("failed to delete ban", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		log.Info("ban lifted", slog.Int64("id", id))

		render.JSON(w, r, resp.OKMsg("The ban has been removed."))
	}
}
