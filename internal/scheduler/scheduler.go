package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/ChefRank/internal/config"
	"github.com/MikeSquared-Agency/ChefRank/internal/hermes"
	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
	"github.com/MikeSquared-Agency/ChefRank/internal/ranking"
	"github.com/MikeSquared-Agency/ChefRank/internal/scoring"
	"github.com/MikeSquared-Agency/ChefRank/internal/store"
)

// topEventSize is how many leading chefs a recalculated event carries.
const topEventSize = 10

// Scheduler is the only place batches start. Every recalculation, weight
// change and snapshot publish runs under one mutex, so at most one batch is
// ever in flight per process.
type Scheduler struct {
	engine *ranking.Engine
	store  store.Store
	hermes hermes.Client
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time

	batchMu sync.Mutex

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(e *ranking.Engine, s store.Store, h hermes.Client, cfg *config.Config, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		engine: e,
		store:  s,
		hermes: h,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	if !s.cfg.Scheduler.Enabled || s.cfg.CheckInterval() <= 0 {
		s.logger.Info("snapshot loop disabled")
		return
	}
	s.wg.Add(1)
	go s.snapshotLoop(ctx)
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	s.wg.Wait()
}

// Recalculate runs one full batch under the current weights.
func (s *Scheduler) Recalculate(ctx context.Context, trigger string) (*ranking.Result, error) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return s.recalculateLocked(ctx, trigger)
}

func (s *Scheduler) recalculateLocked(ctx context.Context, trigger string) (*ranking.Result, error) {
	start := time.Now()
	res, err := s.engine.Recalculate(ctx)
	elapsed := time.Since(start)

	chefs := 0
	if res != nil {
		chefs = len(res.Chefs)
	}
	metrics.RecordRecalculation(trigger, chefs, elapsed, err)
	if err != nil {
		s.logger.Error("recalculation failed", "trigger", trigger, "error", err)
		return nil, err
	}

	s.publishRecalculated(trigger, res, elapsed)
	return res, nil
}

// UpdateWeights stores the given category weights and then recalculates, so
// the new weights take effect immediately. Unknown categories are rejected
// before anything is written.
func (s *Scheduler) UpdateWeights(ctx context.Context, updates map[string]float64, trigger string) (scoring.WeightSet, *ranking.Result, error) {
	var probe scoring.WeightSet
	for category, v := range updates {
		if !probe.Set(category, v) {
			return scoring.WeightSet{}, nil, &ranking.ValidationError{Field: "category", Value: category, Reason: "unknown scoring category"}
		}
	}

	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	err := s.store.WithTx(ctx, func(tx store.Store) error {
		for _, category := range scoring.Categories {
			v, ok := updates[category]
			if !ok {
				continue
			}
			if err := tx.UpsertScoringWeight(ctx, category, v); err != nil {
				return &ranking.StoreError{Op: "upsert weight " + category, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return scoring.WeightSet{}, nil, err
	}

	w, err := s.engine.Weights(ctx)
	if err != nil {
		return scoring.WeightSet{}, nil, err
	}
	s.logger.Info("scoring weights updated", "weights", w, "sum", w.Sum())
	s.publish(hermes.SubjectWeightsUpdated, hermes.WeightsUpdatedEvent{
		Weights:   weightMap(w),
		Warnings:  w.Warnings(),
		Timestamp: s.now(),
	})

	res, err := s.recalculateLocked(ctx, trigger)
	if err != nil {
		return w, nil, fmt.Errorf("weights saved, recalculation failed: %w", err)
	}
	return w, res, nil
}

// PublishSnapshot builds (or rebuilds) the snapshot for month.
func (s *Scheduler) PublishSnapshot(ctx context.Context, month, notes, trigger string) (*ranking.SnapshotResult, error) {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	start := time.Now()
	res, err := s.engine.CreateSnapshot(ctx, month, notes)
	elapsed := time.Since(start)

	entries := 0
	if res != nil {
		entries = res.Entries
		metrics.RecordRecalculation(trigger, len(res.Batch.Chefs), elapsed, nil)
	}
	metrics.RecordSnapshot(entries, err)

	if err != nil {
		s.logger.Error("snapshot failed", "month", month, "trigger", trigger, "error", err)
		s.publish(hermes.SubjectSnapshotFailed(month), hermes.SnapshotFailedEvent{
			Month:     month,
			Error:     err.Error(),
			Timestamp: s.now(),
		})
		return nil, err
	}

	s.publishRecalculated(trigger, res.Batch, elapsed)
	s.publish(hermes.SubjectSnapshotPublished(month), hermes.SnapshotPublishedEvent{
		SnapshotID:  res.SnapshotID.String(),
		Month:       res.Month,
		PriorMonth:  res.PriorMonth,
		Entries:     res.Entries,
		Republished: res.Republished,
		Timestamp:   s.now(),
	})
	return res, nil
}

func (s *Scheduler) publishRecalculated(trigger string, res *ranking.Result, elapsed time.Duration) {
	evt := hermes.RankingsRecalculatedEvent{
		Trigger:    trigger,
		Chefs:      len(res.Chefs),
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  s.now(),
	}
	for i, c := range res.Chefs {
		if i == topEventSize {
			break
		}
		evt.Top = append(evt.Top, hermes.RankedChefEvent{
			ChefID:     c.ChefID.String(),
			Rank:       c.Rank,
			TotalScore: c.TotalScore,
		})
	}
	s.publish(hermes.SubjectRankingsRecalculated, evt)
}

func (s *Scheduler) publish(subject string, data interface{}) {
	if s.hermes == nil {
		return
	}
	if err := s.hermes.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func weightMap(w scoring.WeightSet) map[string]float64 {
	out := make(map[string]float64, len(scoring.Categories))
	for _, c := range scoring.Categories {
		out[c], _ = w.Get(c)
	}
	return out
}
