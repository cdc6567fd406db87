package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// ValidateMonth accepts zero-padded YYYY-MM. Beyond the shape it also
// requires a calendar month of 01-12, so "2026-00" and "2026-13" are
// rejected with a ValidationError.
func ValidateMonth(month string) error {
	if !monthPattern.MatchString(month) {
		return &ValidationError{Field: "month", Value: month, Reason: "expected YYYY-MM"}
	}
	if m, _ := strconv.Atoi(month[5:]); m < 1 || m > 12 {
		return &ValidationError{Field: "month", Value: month, Reason: "month out of range"}
	}
	return nil
}

// SnapshotResult describes a published snapshot.
type SnapshotResult struct {
	SnapshotID  uuid.UUID `json:"snapshot_id"`
	Month       string    `json:"month"`
	PriorMonth  string    `json:"prior_month,omitempty"`
	Entries     int       `json:"entries"`
	Republished bool      `json:"republished"`
	Batch       *Result   `json:"-"`
}

// CreateSnapshot recalculates every chef and records the resulting ranking
// under month. Publishing a month again replaces its entries. Each entry's
// delta is the prior snapshot rank minus the current rank, or nil when the
// chef was absent from the prior snapshot.
func (e *Engine) CreateSnapshot(ctx context.Context, month, notes string) (*SnapshotResult, error) {
	if err := ValidateMonth(month); err != nil {
		return nil, err
	}

	batch, err := e.Recalculate(ctx)
	if err != nil {
		return nil, err
	}

	prior, err := e.store.FindLatestSnapshotBefore(ctx, month)
	if err != nil {
		return nil, storeErr("find prior snapshot", err)
	}
	priorRanks := make(map[uuid.UUID]int)
	res := &SnapshotResult{Month: month, Batch: batch}
	if prior != nil {
		res.PriorMonth = prior.Month
		for _, pe := range prior.Entries {
			priorRanks[pe.ChefID] = pe.Rank
		}
	}

	existing, err := e.store.FindSnapshotByMonth(ctx, month)
	if err != nil {
		return nil, storeErr("find snapshot", err)
	}
	res.Republished = existing != nil

	err = e.store.WithTx(ctx, func(tx store.Store) error {
		id, err := tx.UpsertSnapshot(ctx, month, notes, e.now())
		if err != nil {
			return storeErr("upsert snapshot", err)
		}
		res.SnapshotID = id

		if err := tx.DeleteSnapshotEntries(ctx, id); err != nil {
			return storeErr("delete snapshot entries", err)
		}

		for _, r := range batch.Chefs {
			breakdown, err := json.Marshal(r.Breakdown)
			if err != nil {
				return fmt.Errorf("encode breakdown for chef %s: %w", r.ChefID, err)
			}
			entry := &store.SnapshotEntry{
				SnapshotID: id,
				ChefID:     r.ChefID,
				Rank:       r.Rank,
				TotalScore: r.TotalScore,
				Breakdown:  breakdown,
			}
			if priorRank, ok := priorRanks[r.ChefID]; ok {
				delta := priorRank - r.Rank
				entry.Delta = &delta
			}
			if err := tx.CreateSnapshotEntry(ctx, entry); err != nil {
				return storeErr("create snapshot entry for chef "+r.ChefID.String(), err)
			}
		}
		res.Entries = len(batch.Chefs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("snapshot published", "month", month, "snapshot_id", res.SnapshotID,
		"entries", res.Entries, "prior_month", res.PriorMonth, "republished", res.Republished)
	return res, nil
}
