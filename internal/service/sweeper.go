package service

import (
	"context"
	"errors"
	"time"

	"umkmorder/pkg/logger"
)

// RunSweeper calls SweepExpired every interval until ctx is done. Reads
// already sweep lazily; this only shortens how long an expired order can sit
// unread in the store.
func (s *OrderService) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return nil
	}

	log := s.logger.Ctx(ctx)
	log.LogAttrs(ctx, logger.InfoLevel, "expiry sweeper started",
		logger.String("interval", interval.String()),
	)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.LogAttrs(ctx, logger.InfoLevel, "expiry sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := s.SweepExpired(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.LogAttrs(ctx, logger.ErrorLevel, "periodic sweep failed",
					logger.Err(err),
				)
			}
		}
	}
}
