package ranking

import (
	"context"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/ChefRank/internal/scoring"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

// Explanation is a live scoring of one chef under the current weights, next to
// the score and rank persisted by the last batch.
type Explanation struct {
	Chef         *store.Chef       `json:"chef"`
	Weights      scoring.WeightSet `json:"weights"`
	Window       scoring.Window    `json:"window"`
	Score        scoring.Result    `json:"score"`
	StoredScore  *float64          `json:"stored_score,omitempty"`
	StoredRank   *int              `json:"stored_rank,omitempty"`
	WeightIssues []string          `json:"weight_issues,omitempty"`
}

// Explain scores one chef without persisting anything. Unknown chef ids
// return an error matching store.ErrNotFound.
func (e *Engine) Explain(ctx context.Context, chefID uuid.UUID) (*Explanation, error) {
	chef, err := e.store.GetChef(ctx, chefID)
	if err != nil {
		return nil, storeErr("get chef", err)
	}
	rec, err := e.store.GetChefWithRecords(ctx, chefID)
	if err != nil {
		return nil, storeErr("get chef records", err)
	}
	w, err := e.Weights(ctx)
	if err != nil {
		return nil, err
	}

	now := e.now()
	return &Explanation{
		Chef:         chef,
		Weights:      w,
		Window:       scoring.NewWindow(now),
		Score:        scoring.Score(rec, w, now),
		StoredScore:  chef.TotalScore,
		StoredRank:   chef.Rank,
		WeightIssues: w.Warnings(),
	}, nil
}
