// Package seed loads chef record fixtures from YAML and writes them through a
// store.RecordWriter. It backs the operator CLI's seed and offline score
// commands.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

type Fixture struct {
	Chefs []ChefFixture `yaml:"chefs" validate:"dive"`
}

type ChefFixture struct {
	ID              string   `yaml:"id" validate:"omitempty,uuid"`
	Name            string   `yaml:"name" validate:"required"`
	Location        string   `yaml:"location"`
	Restaurant      string   `yaml:"restaurant"`
	Cuisines        []string `yaml:"cuisines"`
	YearsExperience *int     `yaml:"years_experience" validate:"omitempty,gte=0"`
	Archived        bool     `yaml:"archived"`

	Accolades []AccoladeFixture `yaml:"accolades" validate:"dive"`
	Career    []CareerFixture   `yaml:"career" validate:"dive"`
	Signals   []SignalFixture   `yaml:"signals" validate:"dive"`
	Peers     []PeerFixture     `yaml:"peers" validate:"dive"`
}

// RecordedAt backdates a record's creation time. Records without a year fall
// back to it for the rolling window.
type AccoladeFixture struct {
	Type       string     `yaml:"type" validate:"required,oneof=MICHELIN_STAR JAMES_BEARD WORLDS_50_BEST BOCUSE_DOR OTHER"`
	Detail     string     `yaml:"detail"`
	Year       *int       `yaml:"year"`
	SourceURL  string     `yaml:"source_url" validate:"omitempty,url"`
	RecordedAt *time.Time `yaml:"recorded_at"`
}

type CareerFixture struct {
	Role       string     `yaml:"role" validate:"required"`
	Restaurant string     `yaml:"restaurant" validate:"required"`
	City       string     `yaml:"city"`
	StartYear  *int       `yaml:"start_year"`
	EndYear    *int       `yaml:"end_year"`
	Current    bool       `yaml:"current"`
	RecordedAt *time.Time `yaml:"recorded_at"`
}

type SignalFixture struct {
	Platform   string     `yaml:"platform" validate:"required"`
	Metric     string     `yaml:"metric"`
	Value      *float64   `yaml:"value" validate:"omitempty,gte=0"`
	RecordedAt *time.Time `yaml:"recorded_at"`
}

type PeerFixture struct {
	Type        string     `yaml:"type" validate:"required"`
	Detail      string     `yaml:"detail"`
	RelatedChef string     `yaml:"related_chef"`
	RecordedAt  *time.Time `yaml:"recorded_at"`
}

// Summary counts what Apply wrote.
type Summary struct {
	Chefs     int `json:"chefs"`
	Archived  int `json:"archived"`
	Accolades int `json:"accolades"`
	Career    int `json:"career"`
	Signals   int `json:"signals"`
	Peers     int `json:"peers"`
}

func (s Summary) String() string {
	return fmt.Sprintf("%d chefs (%d archived), %d accolades, %d career entries, %d signals, %d peer standings",
		s.Chefs, s.Archived, s.Accolades, s.Career, s.Signals, s.Peers)
}

// Load decodes and validates a fixture. Unknown keys are rejected so typos in
// hand-written fixtures do not silently drop records.
func Load(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid fixture: %w", err)
	}
	return &f, nil
}

func LoadFile(path string) (*Fixture, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}

// Apply writes every chef and its records in fixture order.
func Apply(ctx context.Context, w store.RecordWriter, f *Fixture) (Summary, error) {
	var sum Summary
	for i, cf := range f.Chefs {
		chef := &store.Chef{
			Name:            cf.Name,
			Location:        cf.Location,
			Restaurant:      cf.Restaurant,
			Cuisines:        cf.Cuisines,
			YearsExperience: cf.YearsExperience,
		}
		if cf.ID != "" {
			chef.ID = uuid.MustParse(cf.ID)
		}
		if err := w.CreateChef(ctx, chef); err != nil {
			return sum, fmt.Errorf("chef %d (%s): %w", i, cf.Name, err)
		}
		sum.Chefs++

		if err := applyRecords(ctx, w, chef.ID, cf, &sum); err != nil {
			return sum, fmt.Errorf("chef %d (%s): %w", i, cf.Name, err)
		}

		if cf.Archived {
			if err := w.ArchiveChef(ctx, chef.ID); err != nil {
				return sum, fmt.Errorf("chef %d (%s): archive: %w", i, cf.Name, err)
			}
			sum.Archived++
		}
	}
	return sum, nil
}

func applyRecords(ctx context.Context, w store.RecordWriter, chefID uuid.UUID, cf ChefFixture, sum *Summary) error {
	for _, a := range cf.Accolades {
		err := w.CreateAccolade(ctx, &store.Accolade{
			ChefID:    chefID,
			Type:      store.AccoladeType(a.Type),
			Detail:    a.Detail,
			Year:      a.Year,
			SourceURL: a.SourceURL,
			CreatedAt: recordedAt(a.RecordedAt),
		})
		if err != nil {
			return fmt.Errorf("accolade %s: %w", a.Type, err)
		}
		sum.Accolades++
	}
	for _, c := range cf.Career {
		err := w.CreateCareerEntry(ctx, &store.CareerEntry{
			ChefID:     chefID,
			Role:       c.Role,
			Restaurant: c.Restaurant,
			City:       c.City,
			StartYear:  c.StartYear,
			EndYear:    c.EndYear,
			IsCurrent:  c.Current,
			CreatedAt:  recordedAt(c.RecordedAt),
		})
		if err != nil {
			return fmt.Errorf("career entry %s: %w", c.Role, err)
		}
		sum.Career++
	}
	for _, s := range cf.Signals {
		err := w.UpsertPublicSignal(ctx, &store.PublicSignal{
			ChefID:    chefID,
			Platform:  s.Platform,
			Metric:    s.Metric,
			Value:     s.Value,
			CreatedAt: recordedAt(s.RecordedAt),
		})
		if err != nil {
			return fmt.Errorf("signal %s: %w", s.Platform, err)
		}
		sum.Signals++
	}
	for _, p := range cf.Peers {
		err := w.CreatePeerStanding(ctx, &store.PeerStanding{
			ChefID:          chefID,
			Type:            strings.ToUpper(p.Type),
			Detail:          p.Detail,
			RelatedChefName: p.RelatedChef,
			CreatedAt:       recordedAt(p.RecordedAt),
		})
		if err != nil {
			return fmt.Errorf("peer standing %s: %w", p.Type, err)
		}
		sum.Peers++
	}
	return nil
}

func recordedAt(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}
