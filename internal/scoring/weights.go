package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

// WeightSet defines the relative importance of each scoring category.
// Weights are expected to sum to 1.0 but this is advisory: nothing in the
// scoring path rejects or rescales a set that does not.
type WeightSet struct {
	FormalAccolades float64 `json:"formalAccolades"`
	CareerTrack     float64 `json:"careerTrack"`
	PublicSignals   float64 `json:"publicSignals"`
	PeerStanding    float64 `json:"peerStanding"`
}

// Categories lists the scoring categories in display order.
var Categories = []string{
	store.CategoryFormalAccolades,
	store.CategoryCareerTrack,
	store.CategoryPublicSignals,
	store.CategoryPeerStanding,
}

// DefaultWeights returns the weights used for any category without a stored row.
func DefaultWeights() WeightSet {
	return WeightSet{
		FormalAccolades: 0.35,
		CareerTrack:     0.25,
		PublicSignals:   0.15,
		PeerStanding:    0.25,
	}
}

// WeightsFromRows overlays stored rows on the defaults. Rows for unknown
// categories are ignored, so the result always has all four categories.
func WeightsFromRows(rows []*store.ScoringWeight) WeightSet {
	w := DefaultWeights()
	for _, row := range rows {
		if row == nil {
			continue
		}
		w.Set(row.Category, row.Weight)
	}
	return w
}

// Get returns the weight for a category name.
func (w WeightSet) Get(category string) (float64, bool) {
	switch category {
	case store.CategoryFormalAccolades:
		return w.FormalAccolades, true
	case store.CategoryCareerTrack:
		return w.CareerTrack, true
	case store.CategoryPublicSignals:
		return w.PublicSignals, true
	case store.CategoryPeerStanding:
		return w.PeerStanding, true
	}
	return 0, false
}

// Set updates the weight for a category name. Reports false for unknown categories.
func (w *WeightSet) Set(category string, v float64) bool {
	switch category {
	case store.CategoryFormalAccolades:
		w.FormalAccolades = v
	case store.CategoryCareerTrack:
		w.CareerTrack = v
	case store.CategoryPublicSignals:
		w.PublicSignals = v
	case store.CategoryPeerStanding:
		w.PeerStanding = v
	default:
		return false
	}
	return true
}

// Sum returns the total of all weights.
func (w WeightSet) Sum() float64 {
	return w.FormalAccolades + w.CareerTrack + w.PublicSignals + w.PeerStanding
}

// Validate returns the first advisory warning as an error, or nil. Callers
// surface it as a warning; scoring proceeds either way.
func (w WeightSet) Validate() error {
	if warnings := w.Warnings(); len(warnings) > 0 {
		return errors.New(warnings[0])
	}
	return nil
}

// Normalized returns a copy scaled to sum to 1.0. This is opt-in only;
// a zero-sum set is returned unchanged.
func (w WeightSet) Normalized() WeightSet {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return WeightSet{
		FormalAccolades: w.FormalAccolades / sum,
		CareerTrack:     w.CareerTrack / sum,
		PublicSignals:   w.PublicSignals / sum,
		PeerStanding:    w.PeerStanding / sum,
	}
}

// Warnings lists every advisory problem with the set. An empty result means
// the weights are non-negative and sum to 1.0.
func (w WeightSet) Warnings() []string {
	var out []string
	if math.Abs(w.Sum()-1.0) > 0.001 {
		out = append(out, fmt.Sprintf("weights sum to %.4f, expected 1.0", w.Sum()))
	}
	for _, c := range Categories {
		if v, _ := w.Get(c); v < 0 {
			out = append(out, fmt.Sprintf("negative weight for %s: %f", c, v))
		}
	}
	return out
}
