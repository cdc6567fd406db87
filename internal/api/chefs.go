package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

type ChefsHandler struct {
	store  store.Store
	engine *ranking.Engine
}

func NewChefsHandler(s store.Store, e *ranking.Engine) *ChefsHandler {
	return &ChefsHandler{store: s, engine: e}
}

// Breakdown scores one chef live under the current weights.
// GET /api/v1/chefs/{id}/breakdown
func (h *ChefsHandler) Breakdown(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chef id"})
		return
	}

	ex, err := h.engine.Explain(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// History returns the chef's entry in every snapshot, oldest month first.
// GET /api/v1/chefs/{id}/history
func (h *ChefsHandler) History(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid chef id"})
		return
	}

	chef, err := h.store.GetChef(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	history, err := h.store.ListChefSnapshotHistory(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if history == nil {
		history = []*store.ChefSnapshotEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"chef":    chef,
		"history": history,
	})
}
