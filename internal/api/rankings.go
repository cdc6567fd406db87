package api

import (
	"net/http"
	"sort"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

type RankingsHandler struct {
	store     store.Store
	scheduler *scheduler.Scheduler
}

func NewRankingsHandler(s store.Store, sc *scheduler.Scheduler) *RankingsHandler {
	return &RankingsHandler{store: s, scheduler: sc}
}

// List returns active chefs in rank order as persisted by the last batch.
// Chefs not yet ranked come last.
// GET /api/v1/rankings
func (h *RankingsHandler) List(w http.ResponseWriter, r *http.Request) {
	chefs, err := h.store.ListActiveChefs(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	sort.SliceStable(chefs, func(i, j int) bool {
		a, b := chefs[i].Rank, chefs[j].Rank
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	if chefs == nil {
		chefs = []*store.Chef{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rankings": chefs,
		"count":    len(chefs),
	})
}

// Recalculate runs a batch now and returns the fresh ranking.
// POST /api/v1/rankings/recalculate
func (h *RankingsHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	res, err := h.scheduler.Recalculate(r.Context(), metrics.TriggerAPI)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
