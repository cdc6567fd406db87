package scoring

import (
	"time"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

// WindowYears is the length of the rolling window records must fall into to count.
const WindowYears = 10

// Window is the trailing period, relative to a reference time, within which
// records count toward scoring. Both bounds are inclusive.
type Window struct {
	CutoffYear int       `json:"cutoff_year"`
	CutoffDate time.Time `json:"cutoff_date"`
}

// NewWindow returns the rolling window ending at now.
func NewWindow(now time.Time) Window {
	return Window{
		CutoffYear: now.Year() - WindowYears,
		CutoffDate: now.AddDate(-WindowYears, 0, 0),
	}
}

func (w Window) containsYear(year int) bool {
	return year >= w.CutoffYear
}

func (w Window) containsTime(t time.Time) bool {
	return !t.Before(w.CutoffDate)
}

// Accolades keeps accolades whose year is in the window, falling back to
// creation time when the year is unknown.
func (w Window) Accolades(in []*store.Accolade) []*store.Accolade {
	out := make([]*store.Accolade, 0, len(in))
	for _, a := range in {
		if a == nil {
			continue
		}
		if a.Year != nil {
			if w.containsYear(*a.Year) {
				out = append(out, a)
			}
			continue
		}
		if w.containsTime(a.CreatedAt) {
			out = append(out, a)
		}
	}
	return out
}

// CareerEntries keeps current roles unconditionally, otherwise any entry whose
// start year, end year or creation time falls in the window.
func (w Window) CareerEntries(in []*store.CareerEntry) []*store.CareerEntry {
	out := make([]*store.CareerEntry, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		switch {
		case e.IsCurrent,
			e.StartYear != nil && w.containsYear(*e.StartYear),
			e.EndYear != nil && w.containsYear(*e.EndYear),
			w.containsTime(e.CreatedAt):
			out = append(out, e)
		}
	}
	return out
}

func (w Window) PublicSignals(in []*store.PublicSignal) []*store.PublicSignal {
	out := make([]*store.PublicSignal, 0, len(in))
	for _, s := range in {
		if s != nil && w.containsTime(s.CreatedAt) {
			out = append(out, s)
		}
	}
	return out
}

func (w Window) PeerStandings(in []*store.PeerStanding) []*store.PeerStanding {
	out := make([]*store.PeerStanding, 0, len(in))
	for _, p := range in {
		if p != nil && w.containsTime(p.CreatedAt) {
			out = append(out, p)
		}
	}
	return out
}
