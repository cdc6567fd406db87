package store

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store and RecordWriter. It backs unit tests and
// offline scoring of fixture files. WithTx does not roll back.
type MemoryStore struct {
	mu sync.RWMutex

	now func() time.Time

	chefs         map[uuid.UUID]*Chef
	accolades     map[uuid.UUID][]*Accolade
	careerEntries map[uuid.UUID][]*CareerEntry
	publicSignals map[uuid.UUID][]*PublicSignal
	peerStandings map[uuid.UUID][]*PeerStanding

	weights   map[string]*ScoringWeight
	snapshots map[string]*MonthlySnapshot
	entries   map[uuid.UUID][]*SnapshotEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:           time.Now,
		chefs:         make(map[uuid.UUID]*Chef),
		accolades:     make(map[uuid.UUID][]*Accolade),
		careerEntries: make(map[uuid.UUID][]*CareerEntry),
		publicSignals: make(map[uuid.UUID][]*PublicSignal),
		peerStandings: make(map[uuid.UUID][]*PeerStanding),
		weights:       make(map[string]*ScoringWeight),
		snapshots:     make(map[string]*MonthlySnapshot),
		entries:       make(map[uuid.UUID][]*SnapshotEntry),
	}
}

// SetClock overrides the time source used for created_at stamps.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	m.now = now
	m.mu.Unlock()
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) WithTx(_ context.Context, fn func(tx Store) error) error {
	return fn(m)
}

// --- Chefs ---

func (m *MemoryStore) ListActiveChefs(_ context.Context) ([]*Chef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Chef
	for _, c := range m.chefs {
		if !c.Archived {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})
	return out, nil
}

func (m *MemoryStore) GetChef(_ context.Context, id uuid.UUID) (*Chef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chefs[id]
	if !ok {
		return nil, fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryStore) GetChefWithRecords(_ context.Context, id uuid.UUID) (*ChefRecords, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chefs[id]
	if !ok {
		return nil, fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	return &ChefRecords{
		ChefID:          c.ID,
		YearsExperience: c.YearsExperience,
		Accolades:       append([]*Accolade(nil), m.accolades[id]...),
		CareerEntries:   append([]*CareerEntry(nil), m.careerEntries[id]...),
		PublicSignals:   append([]*PublicSignal(nil), m.publicSignals[id]...),
		PeerStandings:   append([]*PeerStanding(nil), m.peerStandings[id]...),
	}, nil
}

func (m *MemoryStore) UpdateChefScoreAndRank(_ context.Context, id uuid.UUID, totalScore float64, rank int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chefs[id]
	if !ok {
		return fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	c.TotalScore = &totalScore
	c.Rank = &rank
	c.UpdatedAt = m.now()
	return nil
}

// --- Weights ---

func (m *MemoryStore) ListScoringWeights(_ context.Context) ([]*ScoringWeight, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*ScoringWeight, 0, len(m.weights))
	for _, w := range m.weights {
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (m *MemoryStore) UpsertScoringWeight(_ context.Context, category string, weight float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.weights[category] = &ScoringWeight{Category: category, Weight: weight, UpdatedAt: m.now()}
	return nil
}

// --- Snapshots ---

func (m *MemoryStore) FindSnapshotByMonth(_ context.Context, month string) (*MonthlySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap, ok := m.snapshots[month]
	if !ok {
		return nil, nil
	}
	cp := *snap
	return &cp, nil
}

func (m *MemoryStore) FindLatestSnapshotBefore(_ context.Context, month string) (*MonthlySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *MonthlySnapshot
	for k, snap := range m.snapshots {
		if k < month && (latest == nil || k > latest.Month) {
			latest = snap
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	cp.Entries = m.sortedEntries(latest.ID)
	return &cp, nil
}

func (m *MemoryStore) ListSnapshots(_ context.Context) ([]*MonthlySnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*MonthlySnapshot, 0, len(m.snapshots))
	for _, snap := range m.snapshots {
		cp := *snap
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (m *MemoryStore) ListSnapshotEntries(_ context.Context, snapshotID uuid.UUID) ([]*SnapshotEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedEntries(snapshotID), nil
}

func (m *MemoryStore) sortedEntries(snapshotID uuid.UUID) []*SnapshotEntry {
	src := m.entries[snapshotID]
	out := make([]*SnapshotEntry, 0, len(src))
	for _, e := range src {
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rank < out[j].Rank })
	return out
}

func (m *MemoryStore) ListChefSnapshotHistory(_ context.Context, chefID uuid.UUID) ([]*ChefSnapshotEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*ChefSnapshotEntry
	for month, snap := range m.snapshots {
		for _, e := range m.entries[snap.ID] {
			if e.ChefID == chefID {
				out = append(out, &ChefSnapshotEntry{Month: month, SnapshotEntry: *e})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

func (m *MemoryStore) UpsertSnapshot(_ context.Context, month, notes string, publishedAt time.Time) (uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if snap, ok := m.snapshots[month]; ok {
		snap.Notes = notes
		snap.PublishedAt = &publishedAt
		return snap.ID, nil
	}
	snap := &MonthlySnapshot{
		ID:          uuid.New(),
		Month:       month,
		Notes:       notes,
		PublishedAt: &publishedAt,
		CreatedAt:   m.now(),
	}
	m.snapshots[month] = snap
	return snap.ID, nil
}

func (m *MemoryStore) DeleteSnapshotEntries(_ context.Context, snapshotID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, snapshotID)
	return nil
}

func (m *MemoryStore) CreateSnapshotEntry(_ context.Context, e *SnapshotEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.entries[e.SnapshotID] {
		if existing.ChefID == e.ChefID {
			return fmt.Errorf("snapshot entry for chef %s: %w", e.ChefID, ErrConflict)
		}
	}
	e.ID = uuid.New()
	e.CreatedAt = m.now()
	cp := *e
	cp.Breakdown = append([]byte(nil), e.Breakdown...)
	m.entries[e.SnapshotID] = append(m.entries[e.SnapshotID], &cp)
	return nil
}

// --- Record writers (RecordWriter) ---

func (m *MemoryStore) CreateChef(_ context.Context, c *Chef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	} else if _, exists := m.chefs[c.ID]; exists {
		return fmt.Errorf("chef %s: %w", c.ID, ErrConflict)
	}
	now := m.now()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	m.chefs[c.ID] = &cp
	return nil
}

func (m *MemoryStore) ArchiveChef(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.chefs[id]
	if !ok {
		return fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	c.Archived = true
	c.UpdatedAt = m.now()
	return nil
}

func (m *MemoryStore) requireChef(id uuid.UUID) error {
	if _, ok := m.chefs[id]; !ok {
		return fmt.Errorf("chef %s: %w", id, ErrNotFound)
	}
	return nil
}

func (m *MemoryStore) CreateAccolade(_ context.Context, a *Accolade) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireChef(a.ChefID); err != nil {
		return err
	}
	for _, existing := range m.accolades[a.ChefID] {
		if existing.Type == a.Type && existing.Detail == a.Detail && equalIntPtr(existing.Year, a.Year) {
			return fmt.Errorf("accolade %s %q: %w", a.Type, a.Detail, ErrConflict)
		}
	}
	a.ID = uuid.New()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = m.now()
	}
	cp := *a
	m.accolades[a.ChefID] = append(m.accolades[a.ChefID], &cp)
	return nil
}

func (m *MemoryStore) CreateCareerEntry(_ context.Context, e *CareerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireChef(e.ChefID); err != nil {
		return err
	}
	e.ID = uuid.New()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = m.now()
	}
	cp := *e
	m.careerEntries[e.ChefID] = append(m.careerEntries[e.ChefID], &cp)
	return nil
}

func (m *MemoryStore) UpsertPublicSignal(_ context.Context, p *PublicSignal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireChef(p.ChefID); err != nil {
		return err
	}
	for _, existing := range m.publicSignals[p.ChefID] {
		if existing.Platform == p.Platform {
			existing.Metric = p.Metric
			existing.Value = p.Value
			p.ID = existing.ID
			p.CreatedAt = existing.CreatedAt
			return nil
		}
	}
	p.ID = uuid.New()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	cp := *p
	m.publicSignals[p.ChefID] = append(m.publicSignals[p.ChefID], &cp)
	return nil
}

func (m *MemoryStore) CreatePeerStanding(_ context.Context, p *PeerStanding) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.requireChef(p.ChefID); err != nil {
		return err
	}
	p.ID = uuid.New()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = m.now()
	}
	cp := *p
	m.peerStandings[p.ChefID] = append(m.peerStandings[p.ChefID], &cp)
	return nil
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
