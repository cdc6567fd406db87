package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	pool *pgxpool.Pool
	db   querier
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool, db: pool}, nil
}

func (s *PostgresStore) Close() error {
	if s.inTx() {
		return nil
	}
	s.pool.Close()
	return nil
}

func (s *PostgresStore) inTx() bool {
	_, ok := s.db.(pgx.Tx)
	return ok
}

// WithTx runs fn inside one transaction. Nested calls reuse the outer transaction.
func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx() {
		return fn(s)
	}
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&PostgresStore{pool: s.pool, db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

const chefColumns = `id, name, location, restaurant, cuisines, years_experience, archived,
	total_score, rank, created_at, updated_at`

func scanChef(row pgx.Row) (*Chef, error) {
	c := &Chef{}
	var location, restaurant sql.NullString
	if err := row.Scan(
		&c.ID, &c.Name, &location, &restaurant, &c.Cuisines, &c.YearsExperience, &c.Archived,
		&c.TotalScore, &c.Rank, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if location.Valid {
		c.Location = location.String
	}
	if restaurant.Valid {
		c.Restaurant = restaurant.String
	}
	return c, nil
}

// ListActiveChefs returns non-archived chefs in primary key order.
func (s *PostgresStore) ListActiveChefs(ctx context.Context) ([]*Chef, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+chefColumns+`
		FROM chefs WHERE archived = false
		ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chefs []*Chef
	for rows.Next() {
		c, err := scanChef(rows)
		if err != nil {
			return nil, err
		}
		chefs = append(chefs, c)
	}
	return chefs, rows.Err()
}

func (s *PostgresStore) GetChef(ctx context.Context, id uuid.UUID) (*Chef, error) {
	c, err := scanChef(s.db.QueryRow(ctx, `SELECT `+chefColumns+` FROM chefs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	return c, err
}

func (s *PostgresStore) GetChefWithRecords(ctx context.Context, id uuid.UUID) (*ChefRecords, error) {
	rec := &ChefRecords{ChefID: id}
	err := s.db.QueryRow(ctx, `SELECT years_experience FROM chefs WHERE id = $1`, id).Scan(&rec.YearsExperience)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if rec.Accolades, err = s.listAccolades(ctx, id); err != nil {
		return nil, fmt.Errorf("accolades: %w", err)
	}
	if rec.CareerEntries, err = s.listCareerEntries(ctx, id); err != nil {
		return nil, fmt.Errorf("career entries: %w", err)
	}
	if rec.PublicSignals, err = s.listPublicSignals(ctx, id); err != nil {
		return nil, fmt.Errorf("public signals: %w", err)
	}
	if rec.PeerStandings, err = s.listPeerStandings(ctx, id); err != nil {
		return nil, fmt.Errorf("peer standings: %w", err)
	}
	return rec, nil
}

func (s *PostgresStore) UpdateChefScoreAndRank(ctx context.Context, id uuid.UUID, totalScore float64, rank int) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE chefs SET total_score = $2, rank = $3, updated_at = NOW()
		WHERE id = $1`,
		id, totalScore, rank,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) ListScoringWeights(ctx context.Context) ([]*ScoringWeight, error) {
	rows, err := s.db.Query(ctx, `
		SELECT category, weight, updated_at
		FROM scoring_weights ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var weights []*ScoringWeight
	for rows.Next() {
		w := &ScoringWeight{}
		if err := rows.Scan(&w.Category, &w.Weight, &w.UpdatedAt); err != nil {
			return nil, err
		}
		weights = append(weights, w)
	}
	return weights, rows.Err()
}

func (s *PostgresStore) UpsertScoringWeight(ctx context.Context, category string, weight float64) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO scoring_weights (category, weight, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (category) DO UPDATE SET weight = EXCLUDED.weight, updated_at = NOW()`,
		category, weight,
	)
	return err
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullTime lets callers backdate a record; the zero time defers to the column default.
func nullUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
