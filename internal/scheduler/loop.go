package scheduler

import (
	"context"
	"time"

	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
)

const autoSnapshotNotes = "automatic monthly snapshot"

// CurrentMonth formats t as the snapshot month key.
func CurrentMonth(t time.Time) string {
	return t.UTC().Format("2006-01")
}

func (s *Scheduler) snapshotLoop(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.cfg.CheckInterval())
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkMonthlySnapshot(ctx)
		}
	}
}

// checkMonthlySnapshot publishes the current month once, the first time it
// finds no snapshot for it. Existing snapshots are never republished here.
func (s *Scheduler) checkMonthlySnapshot(ctx context.Context) {
	if !s.cfg.Scheduler.AutoSnapshot {
		return
	}
	month := CurrentMonth(s.now())

	existing, err := s.store.FindSnapshotByMonth(ctx, month)
	if err != nil {
		s.logger.Error("failed to check monthly snapshot", "month", month, "error", err)
		return
	}
	if existing != nil {
		return
	}

	s.logger.Info("publishing monthly snapshot", "month", month)
	if _, err := s.PublishSnapshot(ctx, month, autoSnapshotNotes, metrics.TriggerScheduler); err != nil {
		s.logger.Warn("monthly snapshot will be retried on next check", "month", month, "error", err)
	}
}
