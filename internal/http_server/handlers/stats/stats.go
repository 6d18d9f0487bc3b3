// Package stats serves the row counts shown on the server page.
package stats

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

type Response struct {
	Count int64 `json:"count"`
}

type Counter interface {
	CountUsers(ctx context.Context) (int64, error)
	CountOwnedVehicles(ctx context.Context) (int64, error)
	CountOwnedProperties(ctx context.Context) (int64, error)
}

// NewUsers handles GET /api/v1/server/stats/users.
func NewUsers(log *slog.Logger, counter Counter) http.HandlerFunc {
	return count(log, "handlers.stats.NewUsers", counter.CountUsers)
}

// NewVehicles handles GET /api/v1/server/stats/player_vehicles.
func NewVehicles(log *slog.Logger, counter Counter) http.HandlerFunc {
	return count(log, "handlers.stats.NewVehicles", counter.CountOwnedVehicles)
}

// NewProperties handles GET /api/v1/server/stats/player_properties.
func NewProperties(log *slog.Logger, counter Counter) http.HandlerFunc {
	return count(log, "handlers.stats.NewProperties", counter.CountOwnedProperties)
}

func count(
	log *slog.Logger,
	op string,
	fetch func(ctx context.Context) (int64, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		n, err := fetch(ctx)
		if err != nil {
			log.Error("failed to count", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		render.JSON(w, r, Response{Count: n})
	}
}
