package ranking

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/ChefRank/internal/scoring"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var refNow = time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

func newTestEngine(s store.Store) *Engine {
	e := NewEngine(s, discardLogger())
	e.SetClock(func() time.Time { return refNow })
	return e
}

func newMemoryStore() *store.MemoryStore {
	m := store.NewMemoryStore()
	m.SetClock(func() time.Time { return refNow })
	return m
}

// addChef creates a chef with the given experience and one current role.
func addChef(t *testing.T, m *store.MemoryStore, id uuid.UUID, years int, role string) *store.Chef {
	t.Helper()
	ctx := context.Background()
	c := &store.Chef{ID: id, Name: "chef-" + id.String()[:8], YearsExperience: intPtr(years)}
	require.NoError(t, m.CreateChef(ctx, c))
	require.NoError(t, m.CreateCareerEntry(ctx, &store.CareerEntry{ChefID: c.ID, Role: role, Restaurant: "R", IsCurrent: true}))
	return c
}

// faultyStore fails selected calls on top of a MemoryStore.
type faultyStore struct {
	*store.MemoryStore
	failRecordsFor uuid.UUID
	failUpdateFor  uuid.UUID
	err            error
	updates        int
}

func (f *faultyStore) GetChefWithRecords(ctx context.Context, id uuid.UUID) (*store.ChefRecords, error) {
	if id == f.failRecordsFor {
		return nil, f.err
	}
	return f.MemoryStore.GetChefWithRecords(ctx, id)
}

func (f *faultyStore) UpdateChefScoreAndRank(ctx context.Context, id uuid.UUID, total float64, rank int) error {
	if id == f.failUpdateFor {
		return f.err
	}
	f.updates++
	return f.MemoryStore.UpdateChefScoreAndRank(ctx, id, total, rank)
}

func (f *faultyStore) WithTx(_ context.Context, fn func(tx store.Store) error) error {
	return fn(f)
}

func TestWeightsDefaultsAndOverrides(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	e := newTestEngine(m)

	w, err := e.Weights(ctx)
	require.NoError(t, err)
	assert.Equal(t, scoring.DefaultWeights(), w)

	require.NoError(t, m.UpsertScoringWeight(ctx, store.CategoryPeerStanding, 0.4))
	w, err = e.Weights(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.4, w.PeerStanding)
	assert.Equal(t, 0.35, w.FormalAccolades)
}

func TestRecalculateAllEndToEnd(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	c := addChef(t, m, uuid.New(), 10, "Executive Chef")

	res, err := newTestEngine(m).RecalculateAll(ctx, scoring.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, res.Chefs, 1)

	assert.Equal(t, scoring.Breakdown{CareerTrack: 56.0}, res.Chefs[0].Breakdown)
	assert.Equal(t, 14.0, res.Chefs[0].TotalScore)
	assert.Equal(t, 1, res.Chefs[0].Rank)
	assert.Equal(t, refNow, res.ComputedAt)

	stored, err := m.GetChef(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TotalScore)
	require.NotNil(t, stored.Rank)
	assert.Equal(t, 14.0, *stored.TotalScore)
	assert.Equal(t, 1, *stored.Rank)
}

func TestRecalculateAllDenseRanks(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	low := addChef(t, m, uuid.New(), 1, "Line Cook")
	high := addChef(t, m, uuid.New(), 20, "Head Chef")
	mid := addChef(t, m, uuid.New(), 8, "Sous Chef")
	retired := addChef(t, m, uuid.New(), 30, "Executive Chef")
	require.NoError(t, m.ArchiveChef(ctx, retired.ID))

	res, err := newTestEngine(m).RecalculateAll(ctx, scoring.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, res.Chefs, 3)

	want := []uuid.UUID{high.ID, mid.ID, low.ID}
	for i, r := range res.Chefs {
		assert.Equal(t, want[i], r.ChefID, "position %d", i)
		assert.Equal(t, i+1, r.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, res.Chefs[i-1].TotalScore, r.TotalScore)
		}
	}

	archived, err := m.GetChef(ctx, retired.ID)
	require.NoError(t, err)
	assert.Nil(t, archived.Rank, "archived chefs are not ranked")
}

func TestRecalculateAllTieBreakByChefID(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	second := addChef(t, m, uuid.MustParse("00000000-0000-0000-0000-000000000002"), 5, "Sous Chef")
	first := addChef(t, m, uuid.MustParse("00000000-0000-0000-0000-000000000001"), 5, "Sous Chef")
	third := addChef(t, m, uuid.MustParse("ffffffff-0000-0000-0000-000000000000"), 5, "Sous Chef")

	res, err := newTestEngine(m).RecalculateAll(ctx, scoring.DefaultWeights())
	require.NoError(t, err)
	require.Len(t, res.Chefs, 3)

	assert.Equal(t, first.ID, res.Chefs[0].ChefID)
	assert.Equal(t, second.ID, res.Chefs[1].ChefID)
	assert.Equal(t, third.ID, res.Chefs[2].ChefID)
	assert.Equal(t, res.Chefs[0].TotalScore, res.Chefs[2].TotalScore)
}

func TestRecalculateAllIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	for i := 0; i < 6; i++ {
		addChef(t, m, uuid.New(), i*3, "Chef de Cuisine")
	}
	e := newTestEngine(m)

	first, err := e.RecalculateAll(ctx, scoring.DefaultWeights())
	require.NoError(t, err)
	second, err := e.RecalculateAll(ctx, scoring.DefaultWeights())
	require.NoError(t, err)

	assert.Equal(t, first.Chefs, second.Chefs)
}

func TestRecalculateAllUsesGivenWeights(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	addChef(t, m, uuid.New(), 10, "Executive Chef")
	require.NoError(t, m.UpsertScoringWeight(ctx, store.CategoryCareerTrack, 0.9))

	res, err := newTestEngine(m).RecalculateAll(ctx, scoring.WeightSet{CareerTrack: 1})
	require.NoError(t, err)
	assert.Equal(t, 56.0, res.Chefs[0].TotalScore)
	assert.Equal(t, 1.0, res.Weights.CareerTrack)
}

func TestRecalculateAllEmptyRoster(t *testing.T) {
	res, err := newTestEngine(newMemoryStore()).RecalculateAll(context.Background(), scoring.DefaultWeights())
	require.NoError(t, err)
	assert.Empty(t, res.Chefs)
}

func TestRecalculateAllAbortsOnRecordFetchFailure(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	a := addChef(t, m, uuid.New(), 10, "Executive Chef")
	b := addChef(t, m, uuid.New(), 2, "Line Cook")

	boom := errors.New("connection reset")
	fs := &faultyStore{MemoryStore: m, failRecordsFor: b.ID, err: boom}

	_, err := newTestEngine(fs).RecalculateAll(ctx, scoring.DefaultWeights())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Op, b.ID.String())
	assert.Zero(t, fs.updates, "no chef may be written when a fetch fails")

	stored, _ := m.GetChef(ctx, a.ID)
	assert.Nil(t, stored.Rank)
}

func TestRecalculateAllPropagatesWriteFailure(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	addChef(t, m, uuid.New(), 20, "Executive Chef")
	weak := addChef(t, m, uuid.New(), 0, "Commis")

	boom := errors.New("constraint violation")
	fs := &faultyStore{MemoryStore: m, failUpdateFor: weak.ID, err: boom}

	e := newTestEngine(fs)
	_, err := e.RecalculateAll(ctx, scoring.DefaultWeights())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// A rerun against a healthy store converges.
	res, err := newTestEngine(m).RecalculateAll(ctx, scoring.DefaultWeights())
	require.NoError(t, err)
	stored, _ := m.GetChef(ctx, weak.ID)
	require.NotNil(t, stored.Rank)
	assert.Equal(t, res.Chefs[1].Rank, *stored.Rank)
}

func TestExplain(t *testing.T) {
	ctx := context.Background()
	m := newMemoryStore()
	c := addChef(t, m, uuid.New(), 10, "Executive Chef")
	e := newTestEngine(m)

	_, err := e.Recalculate(ctx)
	require.NoError(t, err)

	ex, err := e.Explain(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 14.0, ex.Score.TotalScore)
	assert.Len(t, ex.Score.Contributions, 4)
	assert.Equal(t, refNow.Year()-scoring.WindowYears, ex.Window.CutoffYear)
	require.NotNil(t, ex.StoredRank)
	assert.Equal(t, 1, *ex.StoredRank)
	assert.Empty(t, ex.WeightIssues)

	_, err = e.Explain(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
