package seed

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

var refNow = time.Date(2026, time.April, 2, 6, 0, 0, 0, time.UTC)

func TestLoadFile(t *testing.T) {
	f, err := LoadFile("testdata/chefs.yaml")
	require.NoError(t, err)
	require.Len(t, f.Chefs, 4)

	ana := f.Chefs[0]
	assert.Equal(t, "Ana Ros", ana.Name)
	require.NotNil(t, ana.YearsExperience)
	assert.Equal(t, 22, *ana.YearsExperience)
	assert.Len(t, ana.Accolades, 2)
	assert.True(t, ana.Career[0].Current)
	require.NotNil(t, ana.Signals[0].Value)
	assert.Equal(t, 250000.0, *ana.Signals[0].Value)

	marco := f.Chefs[3]
	require.NotNil(t, marco.Signals[0].RecordedAt)
	assert.Equal(t, 2012, marco.Signals[0].RecordedAt.Year())
}

func TestLoad_Empty(t *testing.T) {
	f, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Chefs)
}

func TestLoad_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown key", "chefs:\n  - name: A\n    michelin: 3\n"},
		{"missing name", "chefs:\n  - location: Paris\n"},
		{"bad accolade type", "chefs:\n  - name: A\n    accolades:\n      - type: GOLDEN_SPOON\n"},
		{"bad id", "chefs:\n  - name: A\n    id: chef-1\n"},
		{"career without restaurant", "chefs:\n  - name: A\n    career:\n      - role: Cook\n"},
		{"negative signal", "chefs:\n  - name: A\n    signals:\n      - platform: tiktok\n        value: -1\n"},
		{"not yaml", "chefs: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestApply_RanksFixture(t *testing.T) {
	ctx := context.Background()
	f, err := LoadFile("testdata/chefs.yaml")
	require.NoError(t, err)

	m := store.NewMemoryStore()
	m.SetClock(func() time.Time { return refNow })

	sum, err := Apply(ctx, m, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Chefs: 4, Archived: 1, Accolades: 3, Career: 3, Signals: 2, Peers: 2}, sum)

	e := ranking.NewEngine(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
	e.SetClock(func() time.Time { return refNow })
	res, err := e.Recalculate(ctx)
	require.NoError(t, err)
	require.Len(t, res.Chefs, 3, "archived chef is not ranked")

	ana := res.Chefs[0]
	assert.Equal(t, uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001"), ana.ChefID)
	assert.Equal(t, 95.0, ana.Breakdown.FormalAccolades)
	assert.Equal(t, 76.0, ana.Breakdown.CareerTrack)
	assert.Equal(t, 40.0, ana.Breakdown.PublicSignals)
	assert.Equal(t, 47.0, ana.Breakdown.PeerStanding)
	assert.Equal(t, 70.0, ana.TotalScore)

	assert.Equal(t, "Tomas Lindqvist", res.Chefs[1].Name)
	assert.Equal(t, 6.8, res.Chefs[1].TotalScore)

	// Accolade and signal both fall outside the window.
	marco := res.Chefs[2]
	assert.Equal(t, "Marco Bellini", marco.Name)
	assert.Equal(t, 0.0, marco.Breakdown.FormalAccolades)
	assert.Equal(t, 0.0, marco.Breakdown.PublicSignals)
	assert.Equal(t, 3.8, marco.TotalScore)
}

func TestApply_StopsOnWriteError(t *testing.T) {
	ctx := context.Background()
	m := store.NewMemoryStore()

	f := &Fixture{Chefs: []ChefFixture{{
		Name: "Dup",
		Accolades: []AccoladeFixture{
			{Type: "JAMES_BEARD", Detail: "Outstanding Chef"},
			{Type: "JAMES_BEARD", Detail: "Outstanding Chef"},
		},
	}}}

	sum, err := Apply(ctx, m, f)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Contains(t, err.Error(), "Dup")
	assert.Equal(t, 1, sum.Accolades)
}

func TestApply_ReseedKeepsIDsAndConflicts(t *testing.T) {
	ctx := context.Background()
	f, err := LoadFile("testdata/chefs.yaml")
	require.NoError(t, err)

	m := store.NewMemoryStore()
	_, err = Apply(ctx, m, f)
	require.NoError(t, err)

	chef, err := m.GetChef(ctx, uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000002"))
	require.NoError(t, err)
	assert.Equal(t, "Tomas Lindqvist", chef.Name)

	_, err = Apply(ctx, m, f)
	assert.ErrorIs(t, err, store.ErrConflict, "fixture ids are stable, so a second seed does not duplicate chefs")
}
