package ports

import (
	"context"

	"scriptguard/internal/domain"
)

// JobRepository supports enqueueing, claiming and updating scan jobs.
type JobRepository interface {
	EnqueueJob(ctx context.Context, job *domain.ScanJob) error
	// HasPendingJob reports whether a queued or running job exists for the page.
	HasPendingJob(ctx context.Context, storeID int, pageURL string) (bool, error)
	ClaimNext(ctx context.Context) (job domain.ScanJob, found bool, err error)
	// StartJob moves a specific queued job to running, for inline processing.
	StartJob(ctx context.Context, jobID string) error
	MarkCompleted(ctx context.Context, jobID, logID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	GetJob(ctx context.Context, jobID string) (*domain.ScanJob, error)
}
