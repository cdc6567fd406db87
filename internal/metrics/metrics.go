// Package metrics exposes Prometheus instrumentation for recalculation
// batches and snapshot publishing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Trigger labels.
const (
	TriggerAPI       = "api"
	TriggerEvent     = "event"
	TriggerScheduler = "scheduler"
	TriggerStartup   = "startup"
	TriggerCLI       = "cli"
)

var (
	// RecalculationsTotal counts batches by trigger and outcome.
	RecalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefrank_recalculations_total",
			Help: "Total number of score recalculation batches",
		},
		[]string{"trigger", "outcome"},
	)

	// RecalculationDuration tracks wall time of successful and failed batches.
	RecalculationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chefrank_recalculation_duration_seconds",
			Help:    "Duration of score recalculation batches in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"trigger"},
	)

	// ChefsRanked is the size of the most recent successful ranking.
	ChefsRanked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chefrank_chefs_ranked",
			Help: "Number of chefs ranked by the last successful batch",
		},
	)

	// LastRecalculation is the unix time of the last successful batch.
	LastRecalculation = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chefrank_last_recalculation_timestamp_seconds",
			Help: "Unix time of the last successful recalculation",
		},
	)

	// SnapshotsPublishedTotal counts snapshot publishes by outcome.
	SnapshotsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chefrank_snapshots_published_total",
			Help: "Total number of monthly snapshot publishes",
		},
		[]string{"outcome"},
	)

	// SnapshotEntriesWritten counts entries written across all snapshots.
	SnapshotEntriesWritten = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chefrank_snapshot_entries_written_total",
			Help: "Total number of snapshot entries written",
		},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordRecalculation records one batch. chefs is ignored on failure.
func RecordRecalculation(trigger string, chefs int, d time.Duration, err error) {
	RecalculationsTotal.WithLabelValues(trigger, outcome(err)).Inc()
	RecalculationDuration.WithLabelValues(trigger).Observe(d.Seconds())
	if err == nil {
		ChefsRanked.Set(float64(chefs))
		LastRecalculation.SetToCurrentTime()
	}
}

// RecordSnapshot records one publish attempt.
func RecordSnapshot(entries int, err error) {
	SnapshotsPublishedTotal.WithLabelValues(outcome(err)).Inc()
	if err == nil {
		SnapshotEntriesWritten.Add(float64(entries))
	}
}
