package outbox

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Scheduler struct {
	dispatcher *Dispatcher
	interval   time.Duration
	logger     *zap.Logger
}

func NewScheduler(d *Dispatcher, intervalSec int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		dispatcher: d,
		interval:   time.Duration(intervalSec) * time.Second,
		logger:     logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("outbox scheduler stopped")
				return
			case <-ticker.C:
				n, err := s.dispatcher.DispatchOnce(ctx)
				if err != nil {
					s.logger.Error("outbox dispatch error", zap.Error(err))
				} else if n > 0 {
					s.logger.Debug("outbox dispatch processed messages", zap.Int("count", n))
				}
			}
		}
	}()
}
