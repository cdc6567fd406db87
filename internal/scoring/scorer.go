package scoring

import (
	"time"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

// Contribution captures one category's share of a chef's total score.
type Contribution struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	Weight   float64 `json:"weight"`
	Weighted float64 `json:"weighted"`
}

// Result is the complete scoring output for a single chef.
type Result struct {
	Breakdown     Breakdown      `json:"breakdown"`
	Contributions []Contribution `json:"contributions"`
	TotalScore    float64        `json:"total_score"`
}

// CalculateTotalScore is the weighted sum of the category scores rounded to
// one decimal place. Weights are applied exactly as given.
func CalculateTotalScore(b Breakdown, w WeightSet) float64 {
	return round1(weightedSum(b, w))
}

func weightedSum(b Breakdown, w WeightSet) float64 {
	return b.FormalAccolades*w.FormalAccolades +
		b.CareerTrack*w.CareerTrack +
		b.PublicSignals*w.PublicSignals +
		b.PeerStanding*w.PeerStanding
}

// Contributions lists each category's score, weight and weighted share in
// display order. Weighted values are unrounded.
func Contributions(b Breakdown, w WeightSet) []Contribution {
	out := make([]Contribution, 0, len(Categories))
	for _, c := range Categories {
		score, _ := b.Get(c)
		weight, _ := w.Get(c)
		out = append(out, Contribution{
			Category: c,
			Score:    score,
			Weight:   weight,
			Weighted: score * weight,
		})
	}
	return out
}

// Score runs the full pipeline for one chef: window filter, category scores
// and weighted total.
func Score(rec *store.ChefRecords, w WeightSet, now time.Time) Result {
	b := CalculateBreakdown(rec, now)
	return Result{
		Breakdown:     b,
		Contributions: Contributions(b, w),
		TotalScore:    CalculateTotalScore(b, w),
	}
}
