package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

func NewRouter(s store.Store, e *ranking.Engine, sc *scheduler.Scheduler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))

	rankings := NewRankingsHandler(s, sc)
	weights := NewWeightsHandler(e, sc)
	snapshots := NewSnapshotsHandler(s, sc)
	chefs := NewChefsHandler(s, e)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rankings", rankings.List)
		r.Post("/rankings/recalculate", rankings.Recalculate)

		r.Get("/weights", weights.Get)
		r.Put("/weights", weights.Update)

		r.Get("/snapshots", snapshots.List)
		r.Post("/snapshots", snapshots.Create)
		r.Get("/snapshots/{month}", snapshots.Get)

		r.Get("/chefs/{id}/breakdown", chefs.Breakdown)
		r.Get("/chefs/{id}/history", chefs.History)
	})

	return r
}

func NewMetricsRouter() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}
