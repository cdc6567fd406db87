package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// --- Record readers used by GetChefWithRecords ---

func (s *PostgresStore) listAccolades(ctx context.Context, chefID uuid.UUID) ([]*Accolade, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, chef_id, type, detail, year, source_url, created_at
		FROM accolades WHERE chef_id = $1
		ORDER BY created_at ASC, id ASC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Accolade
	for rows.Next() {
		a := &Accolade{}
		var sourceURL sql.NullString
		if err := rows.Scan(&a.ID, &a.ChefID, &a.Type, &a.Detail, &a.Year, &sourceURL, &a.CreatedAt); err != nil {
			return nil, err
		}
		if sourceURL.Valid {
			a.SourceURL = sourceURL.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *PostgresStore) listCareerEntries(ctx context.Context, chefID uuid.UUID) ([]*CareerEntry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, chef_id, role, restaurant, city, start_year, end_year, is_current, created_at
		FROM career_entries WHERE chef_id = $1
		ORDER BY created_at ASC, id ASC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*CareerEntry
	for rows.Next() {
		e := &CareerEntry{}
		var city sql.NullString
		if err := rows.Scan(&e.ID, &e.ChefID, &e.Role, &e.Restaurant, &city,
			&e.StartYear, &e.EndYear, &e.IsCurrent, &e.CreatedAt); err != nil {
			return nil, err
		}
		if city.Valid {
			e.City = city.String
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) listPublicSignals(ctx context.Context, chefID uuid.UUID) ([]*PublicSignal, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, chef_id, platform, metric, value, created_at
		FROM public_signals WHERE chef_id = $1
		ORDER BY created_at ASC, id ASC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PublicSignal
	for rows.Next() {
		p := &PublicSignal{}
		var metric sql.NullString
		if err := rows.Scan(&p.ID, &p.ChefID, &p.Platform, &metric, &p.Value, &p.CreatedAt); err != nil {
			return nil, err
		}
		if metric.Valid {
			p.Metric = metric.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) listPeerStandings(ctx context.Context, chefID uuid.UUID) ([]*PeerStanding, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, chef_id, type, detail, related_chef_name, created_at
		FROM peer_standings WHERE chef_id = $1
		ORDER BY created_at ASC, id ASC`, chefID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*PeerStanding
	for rows.Next() {
		p := &PeerStanding{}
		var detail, related sql.NullString
		if err := rows.Scan(&p.ID, &p.ChefID, &p.Type, &detail, &related, &p.CreatedAt); err != nil {
			return nil, err
		}
		if detail.Valid {
			p.Detail = detail.String
		}
		if related.Valid {
			p.RelatedChefName = related.String
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// --- Record writers (RecordWriter) ---

// CreateChef keeps a caller-supplied ID and generates one otherwise.
func (s *PostgresStore) CreateChef(ctx context.Context, c *Chef) error {
	cuisines := c.Cuisines
	if cuisines == nil {
		cuisines = []string{}
	}
	err := s.db.QueryRow(ctx, `
		INSERT INTO chefs (id, name, location, restaurant, cuisines, years_experience, archived)
		VALUES (COALESCE($7, gen_random_uuid()), $1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`,
		c.Name, nullString(c.Location), nullString(c.Restaurant), cuisines, c.YearsExperience, c.Archived, nullUUID(c.ID),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("chef %s: %w", c.ID, ErrConflict)
	}
	return err
}

// ArchiveChef excludes a chef from future batches. Score and rank stay frozen.
func (s *PostgresStore) ArchiveChef(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `UPDATE chefs SET archived = true, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) CreateAccolade(ctx context.Context, a *Accolade) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO accolades (chef_id, type, detail, year, source_url, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))
		RETURNING id, created_at`,
		a.ChefID, a.Type, a.Detail, a.Year, nullString(a.SourceURL), nullTime(a.CreatedAt),
	).Scan(&a.ID, &a.CreatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("accolade %s %q: %w", a.Type, a.Detail, ErrConflict)
	}
	return err
}

func (s *PostgresStore) CreateCareerEntry(ctx context.Context, e *CareerEntry) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO career_entries (chef_id, role, restaurant, city, start_year, end_year, is_current, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, NOW()))
		RETURNING id, created_at`,
		e.ChefID, e.Role, e.Restaurant, nullString(e.City), e.StartYear, e.EndYear, e.IsCurrent, nullTime(e.CreatedAt),
	).Scan(&e.ID, &e.CreatedAt)
}

// UpsertPublicSignal overwrites metric and value for an existing (chef, platform) row.
func (s *PostgresStore) UpsertPublicSignal(ctx context.Context, p *PublicSignal) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO public_signals (chef_id, platform, metric, value, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		ON CONFLICT (chef_id, platform) DO UPDATE SET metric = EXCLUDED.metric, value = EXCLUDED.value
		RETURNING id, created_at`,
		p.ChefID, p.Platform, nullString(p.Metric), p.Value, nullTime(p.CreatedAt),
	).Scan(&p.ID, &p.CreatedAt)
}

func (s *PostgresStore) CreatePeerStanding(ctx context.Context, p *PeerStanding) error {
	return s.db.QueryRow(ctx, `
		INSERT INTO peer_standings (chef_id, type, detail, related_chef_name, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		RETURNING id, created_at`,
		p.ChefID, p.Type, nullString(p.Detail), nullString(p.RelatedChefName), nullTime(p.CreatedAt),
	).Scan(&p.ID, &p.CreatedAt)
}
