package ranking

import (
	"bytes"
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/ChefRank/internal/scoring"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

// RankedChef is one chef's result within a batch.
type RankedChef struct {
	ChefID     uuid.UUID         `json:"chef_id"`
	Name       string            `json:"name"`
	Rank       int               `json:"rank"`
	TotalScore float64           `json:"total_score"`
	Breakdown  scoring.Breakdown `json:"breakdown"`
}

// Result is the outcome of one recalculation batch. Chefs are in rank order.
type Result struct {
	Weights    scoring.WeightSet `json:"weights"`
	Chefs      []RankedChef      `json:"chefs"`
	ComputedAt time.Time         `json:"computed_at"`
}

// Engine recalculates scores and ranks and builds monthly snapshots. It holds
// no lock: callers that may run batches concurrently must serialise them.
type Engine struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

func NewEngine(s store.Store, logger *slog.Logger) *Engine {
	return &Engine{store: s, logger: logger, now: time.Now}
}

// SetClock overrides the reference time used for the rolling window.
func (e *Engine) SetClock(now func() time.Time) { e.now = now }

// Weights returns the effective weight set: stored rows over the defaults.
func (e *Engine) Weights(ctx context.Context) (scoring.WeightSet, error) {
	rows, err := e.store.ListScoringWeights(ctx)
	if err != nil {
		return scoring.WeightSet{}, storeErr("list scoring weights", err)
	}
	w := scoring.WeightsFromRows(rows)
	if err := w.Validate(); err != nil {
		e.logger.Warn("scoring weights out of range", "error", err)
	}
	return w, nil
}

// RecalculateAll scores every active chef under w, assigns dense 1-based ranks
// by total descending (ties by chef id ascending) and persists score and rank.
//
// Any failure reading records aborts before anything is written. The writes
// run in one store transaction, so a failed write leaves the previous ranking
// in place where the store supports rollback.
func (e *Engine) RecalculateAll(ctx context.Context, w scoring.WeightSet) (*Result, error) {
	start := e.now()

	chefs, err := e.store.ListActiveChefs(ctx)
	if err != nil {
		return nil, storeErr("list active chefs", err)
	}

	ranked := make([]RankedChef, 0, len(chefs))
	for _, c := range chefs {
		rec, err := e.store.GetChefWithRecords(ctx, c.ID)
		if err != nil {
			return nil, storeErr("get records for chef "+c.ID.String(), err)
		}
		b := scoring.CalculateBreakdown(rec, start)
		ranked = append(ranked, RankedChef{
			ChefID:     c.ID,
			Name:       c.Name,
			TotalScore: scoring.CalculateTotalScore(b, w),
			Breakdown:  b,
		})
	}

	sortByScore(ranked)
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	err = e.store.WithTx(ctx, func(tx store.Store) error {
		for _, r := range ranked {
			if err := tx.UpdateChefScoreAndRank(ctx, r.ChefID, r.TotalScore, r.Rank); err != nil {
				return storeErr("update score for chef "+r.ChefID.String(), err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("rankings recalculated", "chefs", len(ranked), "duration", e.now().Sub(start))
	return &Result{Weights: w, Chefs: ranked, ComputedAt: start}, nil
}

// Recalculate fetches the effective weights once and runs RecalculateAll.
func (e *Engine) Recalculate(ctx context.Context) (*Result, error) {
	w, err := e.Weights(ctx)
	if err != nil {
		return nil, err
	}
	return e.RecalculateAll(ctx, w)
}

func sortByScore(ranked []RankedChef) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].TotalScore != ranked[j].TotalScore {
			return ranked[i].TotalScore > ranked[j].TotalScore
		}
		return bytes.Compare(ranked[i].ChefID[:], ranked[j].ChefID[:]) < 0
	})
}
