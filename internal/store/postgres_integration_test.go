//go:build integration

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDatabaseURL prefers DATABASE_URL and otherwise starts a throwaway
// Postgres container for the test.
func testDatabaseURL(t *testing.T) string {
	t.Helper()
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		return dbURL
	}
	if testing.Short() {
		t.Skip("DATABASE_URL not set and short mode requested, skipping integration test")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "chefrank",
				"POSTGRES_USER":     "chefrank",
				"POSTGRES_PASSWORD": "chefrank",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("cannot start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	return fmt.Sprintf("postgres://chefrank:chefrank@%s:%s/chefrank?sslmode=disable", host, port.Port())
}

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := testDatabaseURL(t)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := RunMigrations(dbURL, logger); err != nil {
		t.Fatalf("migrations failed: %v", err)
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE chefs, scoring_weights, monthly_snapshots CASCADE")
		s.Close()
	})

	return s
}

func TestChefWithRecordsRoundTrip(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	chef := &Chef{Name: "Ana Ros", Restaurant: "Hisa Franko", Cuisines: []string{"slovenian"}, YearsExperience: intPtr(20)}
	if err := s.CreateChef(ctx, chef); err != nil {
		t.Fatalf("CreateChef failed: %v", err)
	}
	if chef.ID == uuid.Nil {
		t.Fatal("expected non-nil chef ID after create")
	}

	backdated := time.Now().AddDate(-12, 0, 0).UTC().Truncate(time.Microsecond)
	if err := s.CreateAccolade(ctx, &Accolade{ChefID: chef.ID, Type: AccoladeMichelinStar, Detail: "3 stars", Year: intPtr(2020)}); err != nil {
		t.Fatalf("CreateAccolade failed: %v", err)
	}
	if err := s.CreateCareerEntry(ctx, &CareerEntry{ChefID: chef.ID, Role: "Chef Owner", Restaurant: "Hisa Franko", IsCurrent: true}); err != nil {
		t.Fatalf("CreateCareerEntry failed: %v", err)
	}
	v := 250000.0
	if err := s.UpsertPublicSignal(ctx, &PublicSignal{ChefID: chef.ID, Platform: "instagram", Value: &v, CreatedAt: backdated}); err != nil {
		t.Fatalf("UpsertPublicSignal failed: %v", err)
	}
	if err := s.CreatePeerStanding(ctx, &PeerStanding{ChefID: chef.ID, Type: PeerMentored}); err != nil {
		t.Fatalf("CreatePeerStanding failed: %v", err)
	}

	rec, err := s.GetChefWithRecords(ctx, chef.ID)
	if err != nil {
		t.Fatalf("GetChefWithRecords failed: %v", err)
	}
	if rec.YearsExperience == nil || *rec.YearsExperience != 20 {
		t.Errorf("expected years_experience 20, got %v", rec.YearsExperience)
	}
	if len(rec.Accolades) != 1 || len(rec.CareerEntries) != 1 || len(rec.PublicSignals) != 1 || len(rec.PeerStandings) != 1 {
		t.Fatalf("unexpected record counts: %+v", rec)
	}
	if !rec.PublicSignals[0].CreatedAt.Equal(backdated) {
		t.Errorf("expected backdated created_at %v, got %v", backdated, rec.PublicSignals[0].CreatedAt)
	}
}

func TestDuplicateAccoladeConflict(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	chef := &Chef{Name: "Dup"}
	_ = s.CreateChef(ctx, chef)
	a := &Accolade{ChefID: chef.ID, Type: AccoladeOther, Detail: "Local award"}
	if err := s.CreateAccolade(ctx, a); err != nil {
		t.Fatalf("CreateAccolade failed: %v", err)
	}
	err := s.CreateAccolade(ctx, &Accolade{ChefID: chef.ID, Type: AccoladeOther, Detail: "Local award"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}
}

func TestCreateChefKeepsPresetID(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	id := uuid.MustParse("6f1c2a4e-0000-4000-8000-000000000001")
	chef := &Chef{ID: id, Name: "Preset"}
	if err := s.CreateChef(ctx, chef); err != nil {
		t.Fatalf("CreateChef failed: %v", err)
	}
	if chef.ID != id {
		t.Fatalf("expected id %s, got %s", id, chef.ID)
	}
	got, err := s.GetChef(ctx, id)
	if err != nil {
		t.Fatalf("GetChef failed: %v", err)
	}
	if got.Name != "Preset" {
		t.Errorf("expected Preset, got %q", got.Name)
	}

	if err := s.CreateChef(ctx, &Chef{ID: id, Name: "Again"}); !errors.Is(err, ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate id, got %v", err)
	}

	generated := &Chef{Name: "Generated"}
	if err := s.CreateChef(ctx, generated); err != nil {
		t.Fatalf("CreateChef failed: %v", err)
	}
	if generated.ID == uuid.Nil || generated.ID == id {
		t.Errorf("expected a generated id, got %s", generated.ID)
	}
}

func TestUpdateScoreAndArchive(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	chef := &Chef{Name: "Ranked"}
	_ = s.CreateChef(ctx, chef)
	if err := s.UpdateChefScoreAndRank(ctx, chef.ID, 42.5, 1); err != nil {
		t.Fatalf("UpdateChefScoreAndRank failed: %v", err)
	}
	got, err := s.GetChef(ctx, chef.ID)
	if err != nil {
		t.Fatalf("GetChef failed: %v", err)
	}
	if got.TotalScore == nil || *got.TotalScore != 42.5 || got.Rank == nil || *got.Rank != 1 {
		t.Errorf("score/rank not persisted: %+v", got)
	}

	if err := s.ArchiveChef(ctx, chef.ID); err != nil {
		t.Fatalf("ArchiveChef failed: %v", err)
	}
	active, _ := s.ListActiveChefs(ctx)
	if len(active) != 0 {
		t.Errorf("archived chef still listed as active")
	}

	if err := s.UpdateChefScoreAndRank(ctx, uuid.New(), 1, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScoringWeightsUpsert(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	_ = s.UpsertScoringWeight(ctx, CategoryCareerTrack, 0.3)
	_ = s.UpsertScoringWeight(ctx, CategoryCareerTrack, 0.4)

	rows, err := s.ListScoringWeights(ctx)
	if err != nil {
		t.Fatalf("ListScoringWeights failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Weight != 0.4 {
		t.Errorf("expected one careerTrack row at 0.4, got %+v", rows)
	}
}

func TestSnapshotUpsertAndEntries(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	chef := &Chef{Name: "Snap"}
	_ = s.CreateChef(ctx, chef)

	published := time.Now().UTC()
	febID, err := s.UpsertSnapshot(ctx, "2026-02", "", published)
	if err != nil {
		t.Fatalf("UpsertSnapshot failed: %v", err)
	}
	breakdown := json.RawMessage(`{"formalAccolades":100,"careerTrack":56,"publicSignals":40,"peerStanding":25}`)
	if err := s.CreateSnapshotEntry(ctx, &SnapshotEntry{SnapshotID: febID, ChefID: chef.ID, Rank: 1, TotalScore: 59.9, Breakdown: breakdown}); err != nil {
		t.Fatalf("CreateSnapshotEntry failed: %v", err)
	}

	marID, _ := s.UpsertSnapshot(ctx, "2026-03", "first", published)
	again, _ := s.UpsertSnapshot(ctx, "2026-03", "second", published)
	if again != marID {
		t.Error("same month upsert returned a different id")
	}

	err = s.WithTx(ctx, func(tx Store) error {
		if err := tx.DeleteSnapshotEntries(ctx, marID); err != nil {
			return err
		}
		delta := 0
		return tx.CreateSnapshotEntry(ctx, &SnapshotEntry{SnapshotID: marID, ChefID: chef.ID, Rank: 1, TotalScore: 60, Breakdown: breakdown, Delta: &delta})
	})
	if err != nil {
		t.Fatalf("WithTx failed: %v", err)
	}

	prior, err := s.FindLatestSnapshotBefore(ctx, "2026-03")
	if err != nil || prior == nil {
		t.Fatalf("FindLatestSnapshotBefore: %v %v", prior, err)
	}
	if prior.ID != febID || len(prior.Entries) != 1 || prior.Entries[0].Delta != nil {
		t.Errorf("unexpected prior snapshot: %+v", prior)
	}

	var decoded map[string]float64
	if err := json.Unmarshal(prior.Entries[0].Breakdown, &decoded); err != nil {
		t.Fatalf("breakdown not valid json: %v", err)
	}
	if len(decoded) != 4 || decoded["careerTrack"] != 56 {
		t.Errorf("breakdown did not round-trip: %v", decoded)
	}

	history, _ := s.ListChefSnapshotHistory(ctx, chef.ID)
	if len(history) != 2 || history[0].Month != "2026-02" || history[1].Month != "2026-03" {
		t.Errorf("unexpected history: %+v", history)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	chef := &Chef{Name: "Rollback"}
	_ = s.CreateChef(ctx, chef)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx Store) error {
		if err := tx.UpdateChefScoreAndRank(ctx, chef.ID, 99, 1); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	got, _ := s.GetChef(ctx, chef.ID)
	if got.Rank != nil {
		t.Errorf("expected rank rollback, got %d", *got.Rank)
	}
}
