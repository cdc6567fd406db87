package api

import (
	"encoding/json"
	"net/http"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
)

type WeightsHandler struct {
	engine    *ranking.Engine
	scheduler *scheduler.Scheduler
}

func NewWeightsHandler(e *ranking.Engine, sc *scheduler.Scheduler) *WeightsHandler {
	return &WeightsHandler{engine: e, scheduler: sc}
}

// UpdateWeightsRequest carries any subset of categories; the rest keep their
// current value.
type UpdateWeightsRequest struct {
	Weights map[string]float64 `json:"weights" validate:"required,min=1,dive,keys,oneof=formalAccolades careerTrack publicSignals peerStanding,endkeys,gte=0,lte=1"`
}

// Get returns the effective weights and any advisory warnings.
// GET /api/v1/weights
func (h *WeightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ws, err := h.engine.Weights(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weights":  ws,
		"sum":      ws.Sum(),
		"warnings": ws.Warnings(),
	})
}

// Update stores weights and recalculates all rankings under them.
// PUT /api/v1/weights
func (h *WeightsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateWeightsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ws, res, err := h.scheduler.UpdateWeights(r.Context(), req.Weights, metrics.TriggerAPI)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"weights":  ws,
		"sum":      ws.Sum(),
		"warnings": ws.Warnings(),
		"ranked":   len(res.Chefs),
	})
}
