package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const snapshotColumns = `id, month, published_at, notes, created_at`

const snapshotEntryColumns = `id, snapshot_id, chef_id, rank, total_score, breakdown, delta, created_at`

func scanSnapshot(row pgx.Row) (*MonthlySnapshot, error) {
	snap := &MonthlySnapshot{}
	var notes sql.NullString
	if err := row.Scan(&snap.ID, &snap.Month, &snap.PublishedAt, &notes, &snap.CreatedAt); err != nil {
		return nil, err
	}
	if notes.Valid {
		snap.Notes = notes.String
	}
	return snap, nil
}

// FindSnapshotByMonth returns nil, nil when no snapshot exists for month.
func (s *PostgresStore) FindSnapshotByMonth(ctx context.Context, month string) (*MonthlySnapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+` FROM monthly_snapshots WHERE month = $1`, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return snap, err
}

// FindLatestSnapshotBefore returns the newest snapshot strictly before month,
// with its entries loaded, or nil, nil if there is none. Months are zero-padded
// YYYY-MM so text ordering is chronological.
func (s *PostgresStore) FindLatestSnapshotBefore(ctx context.Context, month string) (*MonthlySnapshot, error) {
	snap, err := scanSnapshot(s.db.QueryRow(ctx, `
		SELECT `+snapshotColumns+` FROM monthly_snapshots
		WHERE month < $1
		ORDER BY month DESC
		LIMIT 1`, month))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	snap.Entries, err = s.ListSnapshotEntries(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context) ([]*MonthlySnapshot, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+snapshotColumns+` FROM monthly_snapshots
		ORDER BY month DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*MonthlySnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func scanSnapshotEntry(row pgx.Row, e *SnapshotEntry) error {
	var breakdown []byte
	if err := row.Scan(&e.ID, &e.SnapshotID, &e.ChefID, &e.Rank, &e.TotalScore, &breakdown, &e.Delta, &e.CreatedAt); err != nil {
		return err
	}
	e.Breakdown = breakdown
	return nil
}

// ListSnapshotEntries returns a snapshot's entries in rank order.
func (s *PostgresStore) ListSnapshotEntries(ctx context.Context, snapshotID uuid.UUID) ([]*SnapshotEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+snapshotEntryColumns+` FROM snapshot_entries
		WHERE snapshot_id = $1
		ORDER BY rank ASC`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*SnapshotEntry
	for rows.Next() {
		e := &SnapshotEntry{}
		if err := scanSnapshotEntry(rows, e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListChefSnapshotHistory returns every snapshot entry for a chef, oldest month first.
func (s *PostgresStore) ListChefSnapshotHistory(ctx context.Context, chefID uuid.UUID) ([]*ChefSnapshotEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.month, e.id, e.snapshot_id, e.chef_id, e.rank, e.total_score, e.breakdown, e.delta, e.created_at
		FROM snapshot_entries e
		JOIN monthly_snapshots m ON m.id = e.snapshot_id
		WHERE e.chef_id = $1
		ORDER BY m.month ASC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*ChefSnapshotEntry
	for rows.Next() {
		h := &ChefSnapshotEntry{}
		var breakdown []byte
		if err := rows.Scan(&h.Month, &h.ID, &h.SnapshotID, &h.ChefID, &h.Rank, &h.TotalScore,
			&breakdown, &h.Delta, &h.CreatedAt); err != nil {
			return nil, err
		}
		h.Breakdown = breakdown
		history = append(history, h)
	}
	return history, rows.Err()
}

// UpsertSnapshot creates the month's snapshot row or refreshes notes and
// published_at on the existing one, returning its id.
func (s *PostgresStore) UpsertSnapshot(ctx context.Context, month, notes string, publishedAt time.Time) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.db.QueryRow(ctx, `
		INSERT INTO monthly_snapshots (month, notes, published_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (month) DO UPDATE SET notes = EXCLUDED.notes, published_at = EXCLUDED.published_at
		RETURNING id`,
		month, nullString(notes), publishedAt,
	).Scan(&id)
	return id, err
}

func (s *PostgresStore) DeleteSnapshotEntries(ctx context.Context, snapshotID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM snapshot_entries WHERE snapshot_id = $1`, snapshotID)
	return err
}

func (s *PostgresStore) CreateSnapshotEntry(ctx context.Context, e *SnapshotEntry) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO snapshot_entries (snapshot_id, chef_id, rank, total_score, breakdown, delta)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		e.SnapshotID, e.ChefID, e.Rank, e.TotalScore, []byte(e.Breakdown), e.Delta,
	).Scan(&e.ID, &e.CreatedAt)
}
