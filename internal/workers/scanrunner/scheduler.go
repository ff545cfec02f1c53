package scanrunner

import (
	"context"
	"time"

	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/ports"
)

// Enqueuer queues the monitored pages of one store.
type Enqueuer interface {
	EnqueueStore(ctx context.Context, storeID int, checkType domain.CheckType) ([]domain.ScanJob, error)
}

// Schedule queues a scheduled scan of every store immediately and then once
// per interval until ctx is cancelled.
func Schedule(ctx context.Context, stores ports.SettingsStore, enq Enqueuer, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	logger = logging.OrNop(logger)
	ScheduleOnce(ctx, stores, enq, logger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ScheduleOnce(ctx, stores, enq, logger)
		}
	}
}

// ScheduleOnce queues one round of scheduled scans and returns how many jobs
// were added.
func ScheduleOnce(ctx context.Context, stores ports.SettingsStore, enq Enqueuer, logger *zap.Logger) int {
	logger = logging.OrNop(logger)
	list, err := stores.Stores(ctx)
	if err != nil {
		logger.Error("list stores", zap.Error(err))
		return 0
	}
	total := 0
	for _, st := range list {
		jobs, err := enq.EnqueueStore(ctx, st.ID, domain.CheckScheduled)
		total += len(jobs)
		if err != nil {
			logger.Error("schedule store scans", zap.Int("storeId", st.ID), zap.Error(err))
			continue
		}
		if len(jobs) > 0 {
			logger.Debug("scheduled scans", zap.Int("storeId", st.ID), zap.Int("jobs", len(jobs)))
		}
	}
	return total
}
