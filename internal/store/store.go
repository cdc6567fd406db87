package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AccoladeType string

const (
	AccoladeMichelinStar AccoladeType = "MICHELIN_STAR"
	AccoladeJamesBeard   AccoladeType = "JAMES_BEARD"
	AccoladeWorlds50Best AccoladeType = "WORLDS_50_BEST"
	AccoladeBocuseDor    AccoladeType = "BOCUSE_DOR"
	AccoladeOther        AccoladeType = "OTHER"
)

// Peer standing types with scoring weight. Collectors may store other free-form types.
const (
	PeerMentored      = "MENTORED"
	PeerMentoredBy    = "MENTORED_BY"
	PeerCollaboration = "COLLABORATION"
	PeerEndorsement   = "ENDORSEMENT"
)

// Scoring categories, as stored in scoring_weights.category.
const (
	CategoryFormalAccolades = "formalAccolades"
	CategoryCareerTrack     = "careerTrack"
	CategoryPublicSignals   = "publicSignals"
	CategoryPeerStanding    = "peerStanding"
)

type Chef struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Location        string    `json:"location,omitempty"`
	Restaurant      string    `json:"restaurant,omitempty"`
	Cuisines        []string  `json:"cuisines,omitempty"`
	YearsExperience *int      `json:"years_experience,omitempty"`
	Archived        bool      `json:"archived"`

	// Derived, owned by the recalculation batch
	TotalScore *float64 `json:"total_score,omitempty"`
	Rank       *int     `json:"rank,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Accolade struct {
	ID        uuid.UUID    `json:"id"`
	ChefID    uuid.UUID    `json:"chef_id"`
	Type      AccoladeType `json:"type"`
	Detail    string       `json:"detail"`
	Year      *int         `json:"year,omitempty"`
	SourceURL string       `json:"source_url,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}

type CareerEntry struct {
	ID         uuid.UUID `json:"id"`
	ChefID     uuid.UUID `json:"chef_id"`
	Role       string    `json:"role"`
	Restaurant string    `json:"restaurant"`
	City       string    `json:"city,omitempty"`
	StartYear  *int      `json:"start_year,omitempty"`
	EndYear    *int      `json:"end_year,omitempty"`
	IsCurrent  bool      `json:"is_current"`
	CreatedAt  time.Time `json:"created_at"`
}

type PublicSignal struct {
	ID        uuid.UUID `json:"id"`
	ChefID    uuid.UUID `json:"chef_id"`
	Platform  string    `json:"platform"`
	Metric    string    `json:"metric,omitempty"`
	Value     *float64  `json:"value,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type PeerStanding struct {
	ID              uuid.UUID `json:"id"`
	ChefID          uuid.UUID `json:"chef_id"`
	Type            string    `json:"type"`
	Detail          string    `json:"detail,omitempty"`
	RelatedChefName string    `json:"related_chef_name,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ChefRecords is the full record set the breakdown calculator consumes for one chef.
type ChefRecords struct {
	ChefID          uuid.UUID       `json:"chef_id"`
	YearsExperience *int            `json:"years_experience,omitempty"`
	Accolades       []*Accolade     `json:"accolades"`
	CareerEntries   []*CareerEntry  `json:"career_entries"`
	PublicSignals   []*PublicSignal `json:"public_signals"`
	PeerStandings   []*PeerStanding `json:"peer_standings"`
}

type ScoringWeight struct {
	Category  string    `json:"category"`
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MonthlySnapshot struct {
	ID          uuid.UUID        `json:"id"`
	Month       string           `json:"month"`
	PublishedAt *time.Time       `json:"published_at,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	Entries     []*SnapshotEntry `json:"entries,omitempty"`
}

// SnapshotEntry keeps the breakdown as the raw JSON document written at
// snapshot time; decoding it yields the exact breakdown that was ranked.
type SnapshotEntry struct {
	ID         uuid.UUID       `json:"id"`
	SnapshotID uuid.UUID       `json:"snapshot_id"`
	ChefID     uuid.UUID       `json:"chef_id"`
	Rank       int             `json:"rank"`
	TotalScore float64         `json:"total_score"`
	Breakdown  json.RawMessage `json:"breakdown"`
	Delta      *int            `json:"delta"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ChefSnapshotEntry is a snapshot entry joined with its month, for chef history views.
type ChefSnapshotEntry struct {
	Month string `json:"month"`
	SnapshotEntry
}

type Store interface {
	ListActiveChefs(ctx context.Context) ([]*Chef, error)
	GetChef(ctx context.Context, id uuid.UUID) (*Chef, error)
	GetChefWithRecords(ctx context.Context, id uuid.UUID) (*ChefRecords, error)
	UpdateChefScoreAndRank(ctx context.Context, id uuid.UUID, totalScore float64, rank int) error

	ListScoringWeights(ctx context.Context) ([]*ScoringWeight, error)
	UpsertScoringWeight(ctx context.Context, category string, weight float64) error

	// Snapshots
	FindSnapshotByMonth(ctx context.Context, month string) (*MonthlySnapshot, error)
	FindLatestSnapshotBefore(ctx context.Context, month string) (*MonthlySnapshot, error)
	ListSnapshots(ctx context.Context) ([]*MonthlySnapshot, error)
	ListSnapshotEntries(ctx context.Context, snapshotID uuid.UUID) ([]*SnapshotEntry, error)
	ListChefSnapshotHistory(ctx context.Context, chefID uuid.UUID) ([]*ChefSnapshotEntry, error)
	UpsertSnapshot(ctx context.Context, month, notes string, publishedAt time.Time) (uuid.UUID, error)
	DeleteSnapshotEntries(ctx context.Context, snapshotID uuid.UUID) error
	CreateSnapshotEntry(ctx context.Context, e *SnapshotEntry) error

	// WithTx runs fn against a Store bound to one transaction. Implementations
	// without transactions may call fn with themselves.
	WithTx(ctx context.Context, fn func(tx Store) error) error

	Close() error
}

// RecordWriter is the ingestion side: collectors, seeding and manual edits.
// The scoring batch never writes source records.
type RecordWriter interface {
	CreateChef(ctx context.Context, c *Chef) error
	ArchiveChef(ctx context.Context, id uuid.UUID) error
	CreateAccolade(ctx context.Context, a *Accolade) error
	CreateCareerEntry(ctx context.Context, e *CareerEntry) error
	UpsertPublicSignal(ctx context.Context, p *PublicSignal) error
	CreatePeerStanding(ctx context.Context, p *PeerStanding) error
}
