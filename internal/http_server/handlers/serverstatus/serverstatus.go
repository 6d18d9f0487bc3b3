// Package serverstatus relays the open.mp query document as-is.
package serverstatus

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	resp "ucp_service/internal/lib/api/response"
	sl "ucp_service/internal/lib/logger"
)

type StatusProvider interface {
	Status(ctx context.Context) ([]byte, error)
}

// New handles GET /api/v1/server. The upstream document is passed
// through untouched so the frontend tracks the query API shape.
func New(log *slog.Logger, server StatusProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.serverstatus.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		payload, err := server.Status(ctx)
		if err != nil {
			log.Error("failed to get server status", sl.Err(err))

			render.Status(r, http.StatusBadGateway)
			render.JSON(w, r, resp.Error("The game server status is unavailable right now."))

			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(payload) //nolint:errcheck
	}
}
