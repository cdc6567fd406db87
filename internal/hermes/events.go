package hermes

import "time"

// RecalculateRequestEvent is the optional payload on SubjectRecalculateRequest.
// An empty body is a valid request.
type RecalculateRequestEvent struct {
	Source string `json:"source,omitempty"`
	Reason string `json:"reason,omitempty"`
}

type RankedChefEvent struct {
	ChefID     string  `json:"chef_id"`
	Rank       int     `json:"rank"`
	TotalScore float64 `json:"total_score"`
}

type RankingsRecalculatedEvent struct {
	Trigger    string            `json:"trigger"`
	Chefs      int               `json:"chefs"`
	Top        []RankedChefEvent `json:"top,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	Timestamp  time.Time         `json:"timestamp"`
}

type WeightsUpdatedEvent struct {
	Weights   map[string]float64 `json:"weights"`
	Warnings  []string           `json:"warnings,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

type SnapshotPublishedEvent struct {
	SnapshotID  string    `json:"snapshot_id"`
	Month       string    `json:"month"`
	PriorMonth  string    `json:"prior_month,omitempty"`
	Entries     int       `json:"entries"`
	Republished bool      `json:"republished"`
	Timestamp   time.Time `json:"timestamp"`
}

type SnapshotFailedEvent struct {
	Month     string    `json:"month"`
	Error     string    `json:"error"`
	Timestamp time.Time `json:"timestamp"`
}
