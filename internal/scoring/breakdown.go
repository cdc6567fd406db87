package scoring

import (
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

const maxCategoryScore = 100.0

// Formal accolade scoring constants.
const (
	michelinThreeStarScore = 100.0
	michelinTwoStarScore   = 70.0
	michelinOneStarScore   = 40.0
	jamesBeardScore        = 80.0
	worlds50BestScore      = 90.0
	bocuseDorScore         = 85.0

	accoladeMultiplicityStep = 5.0
	accoladeMultiplicityCap  = 20.0
	otherAccoladeBonus       = 0.3 * 30
)

// Career track scoring constants.
const (
	yearScorePerYear   = 2.0
	yearScoreCap       = 40.0
	positionScoreEach  = 6.0
	positionScoreCap   = 30.0
	seniorRoleScore    = 30.0
	nonSeniorRoleScore = 15.0
)

// Public signal and peer standing scoring constants.
const (
	signalScoreEach     = 15.0
	signalValueDivisor  = 10000.0
	signalValueScoreCap = 50.0
	peerScoreEach       = 10.0
	mentoredBonus       = 15.0
	collaborationBonus  = 10.0
	endorsementBonus    = 12.0
)

var seniorRolePattern = regexp.MustCompile(`(?i)chef.*owner|executive|head chef|chef de cuisine`)

// Breakdown holds the four per-category raw scores, each in [0, 100] with one
// decimal place. Its JSON form is the snapshot breakdown document.
type Breakdown struct {
	FormalAccolades float64 `json:"formalAccolades"`
	CareerTrack     float64 `json:"careerTrack"`
	PublicSignals   float64 `json:"publicSignals"`
	PeerStanding    float64 `json:"peerStanding"`
}

// Get returns the score for a category name.
func (b Breakdown) Get(category string) (float64, bool) {
	switch category {
	case store.CategoryFormalAccolades:
		return b.FormalAccolades, true
	case store.CategoryCareerTrack:
		return b.CareerTrack, true
	case store.CategoryPublicSignals:
		return b.PublicSignals, true
	case store.CategoryPeerStanding:
		return b.PeerStanding, true
	}
	return 0, false
}

// CalculateBreakdown scores one chef's records as of now. Records outside the
// rolling window are ignored; missing optional fields count as zero. It has no
// side effects, so identical inputs always produce identical output.
func CalculateBreakdown(rec *store.ChefRecords, now time.Time) Breakdown {
	if rec == nil {
		rec = &store.ChefRecords{}
	}
	w := NewWindow(now)

	years := 0
	if rec.YearsExperience != nil {
		years = *rec.YearsExperience
	}

	return Breakdown{
		FormalAccolades: round1(FormalAccoladesScore(w.Accolades(rec.Accolades))),
		CareerTrack:     round1(CareerTrackScore(years, w.CareerEntries(rec.CareerEntries))),
		PublicSignals:   round1(PublicSignalsScore(w.PublicSignals(rec.PublicSignals))),
		PeerStanding:    round1(PeerStandingScore(w.PeerStandings(rec.PeerStandings))),
	}
}

// FormalAccoladesScore takes the strongest single accolade, adds a bonus for
// holding several and a flat bonus for any OTHER accolade.
func FormalAccoladesScore(accolades []*store.Accolade) float64 {
	if len(accolades) == 0 {
		return 0
	}

	var best float64
	hasOther := false
	for _, a := range accolades {
		switch a.Type {
		case store.AccoladeMichelinStar:
			best = math.Max(best, michelinScore(a.Detail))
		case store.AccoladeJamesBeard:
			best = math.Max(best, jamesBeardScore)
		case store.AccoladeWorlds50Best:
			best = math.Max(best, worlds50BestScore)
		case store.AccoladeBocuseDor:
			best = math.Max(best, bocuseDorScore)
		case store.AccoladeOther:
			hasOther = true
		}
	}

	score := best
	if n := len(accolades); n > 1 {
		score += math.Min(accoladeMultiplicityCap, float64(n-1)*accoladeMultiplicityStep)
	}
	if hasOther {
		score += otherAccoladeBonus
	}
	return clamp(score, 0, maxCategoryScore)
}

// michelinScore reads the star count from free-text detail such as
// "3 stars" or "Two-star (2)". Anything without a recognisable 2 or 3 counts
// as a single star.
func michelinScore(detail string) float64 {
	switch {
	case strings.Contains(detail, "3"):
		return michelinThreeStarScore
	case strings.Contains(detail, "2"):
		return michelinTwoStarScore
	default:
		return michelinOneStarScore
	}
}

// CareerTrackScore combines tenure, number of positions and seniority of role.
func CareerTrackScore(yearsExperience int, entries []*store.CareerEntry) float64 {
	yearScore := math.Min(yearScoreCap, float64(yearsExperience)*yearScorePerYear)
	positionScore := math.Min(positionScoreCap, float64(len(entries))*positionScoreEach)

	roleScore := nonSeniorRoleScore
	for _, e := range entries {
		if seniorRolePattern.MatchString(e.Role) {
			roleScore = seniorRoleScore
			break
		}
	}
	return clamp(yearScore+positionScore+roleScore, 0, maxCategoryScore)
}

// PublicSignalsScore rewards each platform presence plus aggregate reach.
func PublicSignalsScore(signals []*store.PublicSignal) float64 {
	var total float64
	for _, s := range signals {
		if s.Value != nil {
			total += *s.Value
		}
	}
	reach := math.Min(signalValueScoreCap, total/signalValueDivisor)
	return clamp(float64(len(signals))*signalScoreEach+reach, 0, maxCategoryScore)
}

// PeerStandingScore counts every standing, with extra credit for mentoring,
// collaboration and endorsement. A MENTORED row earns both the base and bonus.
func PeerStandingScore(peers []*store.PeerStanding) float64 {
	var mentored, collaborations, endorsements int
	for _, p := range peers {
		switch p.Type {
		case store.PeerMentored:
			mentored++
		case store.PeerCollaboration:
			collaborations++
		case store.PeerEndorsement:
			endorsements++
		}
	}
	score := float64(len(peers))*peerScoreEach +
		float64(mentored)*mentoredBonus +
		float64(collaborations)*collaborationBonus +
		float64(endorsements)*endorsementBonus
	return clamp(score, 0, maxCategoryScore)
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
