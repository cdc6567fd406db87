package scheduler

import (
	"context"
	"encoding/json"

	"github.com/MikeSquared-Agency/ChefRank/internal/hermes"
	"github.com/MikeSquared-Agency/ChefRank/internal/metrics"
)

// SetupSubscriptions listens for recalculation requests from collectors.
func (s *Scheduler) SetupSubscriptions() error {
	if s.hermes == nil {
		return nil
	}

	return s.hermes.Subscribe(hermes.SubjectRecalculateRequest, func(_ string, data []byte) {
		var req hermes.RecalculateRequestEvent
		if len(data) > 0 {
			if err := json.Unmarshal(data, &req); err != nil {
				s.logger.Warn("invalid recalculate request event", "error", err)
				return
			}
		}
		s.logger.Info("recalculation requested", "source", req.Source, "reason", req.Reason)
		if _, err := s.Recalculate(context.Background(), metrics.TriggerEvent); err != nil {
			s.logger.Error("requested recalculation failed", "source", req.Source, "error", err)
		}
	})
}
