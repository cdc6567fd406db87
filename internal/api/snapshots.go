package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scheduler"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

type SnapshotsHandler struct {
	store     store.Store
	scheduler *scheduler.Scheduler
}

func NewSnapshotsHandler(s store.Store, sc *scheduler.Scheduler) *SnapshotsHandler {
	return &SnapshotsHandler{store: s, scheduler: sc}
}

type CreateSnapshotRequest struct {
	Month string `json:"month" validate:"required,yearmonth"`
	Notes string `json:"notes" validate:"max=2000"`
}

// List returns snapshot headers, newest month first.
// GET /api/v1/snapshots
func (h *SnapshotsHandler) List(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.store.ListSnapshots(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if snaps == nil {
		snaps = []*store.MonthlySnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// Create recalculates and publishes the snapshot for a month. Publishing an
// existing month replaces its entries.
// POST /api/v1/snapshots
func (h *SnapshotsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := validateRequest(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res, err := h.scheduler.PublishSnapshot(r.Context(), req.Month, req.Notes, metrics.TriggerAPI)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if res.Republished {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// Get returns one month's snapshot with its entries in rank order.
// GET /api/v1/snapshots/{month}
func (h *SnapshotsHandler) Get(w http.ResponseWriter, r *http.Request) {
	month := chi.URLParam(r, "month")
	if err := ranking.ValidateMonth(month); err != nil {
		writeError(w, err)
		return
	}

	snap, err := h.store.FindSnapshotByMonth(r.Context(), month)
	if err != nil {
		writeError(w, err)
		return
	}
	if snap == nil {
		writeError(w, fmt.Errorf("snapshot %s: %w", month, store.ErrNotFound))
		return
	}
	entries, err := h.store.ListSnapshotEntries(r.Context(), snap.ID)
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []*store.SnapshotEntry{}
	}
	writeJSON(w, http.StatusOK, snapshotDetail{MonthlySnapshot: snap, Entries: entries})
}

// snapshotDetail always carries the entries key, even for an empty roster.
// Its Entries field shadows the embedded omitempty one.
type snapshotDetail struct {
	*store.MonthlySnapshot
	Entries []*store.SnapshotEntry `json:"entries"`
}
