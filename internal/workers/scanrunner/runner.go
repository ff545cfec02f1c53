package scanrunner

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/compliance"
)

// Processor performs the scan for a claimed job.
type Processor interface {
	Process(ctx context.Context, job domain.ScanJob) (compliance.ScanOutcome, error)
}

// EngineProcessor runs jobs through the compliance engine with the store's
// configured SRI setting.
type EngineProcessor struct{ Engine *compliance.Engine }

func (p EngineProcessor) Process(ctx context.Context, job domain.ScanJob) (compliance.ScanOutcome, error) {
	return p.Engine.RunConfigured(ctx, job.PageURL, job.StoreID, job.CheckType)
}

// Run claims queued jobs every pollInterval and hands them to concurrency
// workers. It blocks until ctx is cancelled and the workers have drained.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, concurrency int, pollInterval time.Duration, logger *zap.Logger) {
	if concurrency < 1 {
		return
	}
	logger = logging.OrNop(logger)
	jobsCh := make(chan domain.ScanJob, concurrency)

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for job := range jobsCh {
				finish(ctx, repo, processor, job, logger.With(zap.Int("worker", idx)))
			}
		}(i)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
dispatch:
	for {
		select {
		case <-ctx.Done():
			break dispatch
		case <-ticker.C:
			for {
				job, found, err := repo.ClaimNext(ctx)
				if err != nil {
					if ctx.Err() == nil {
						logger.Error("job claim failed", zap.Error(err))
					}
					break
				}
				if !found {
					break
				}
				select {
				case jobsCh <- job:
				case <-ctx.Done():
					_ = repo.MarkFailed(context.WithoutCancel(ctx), job.ID, "runner stopped before processing")
					break dispatch
				}
			}
		}
	}
	close(jobsCh)
	wg.Wait()
}

// ProcessInline starts and processes a specific queued job synchronously using
// the same processor as the background workers.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, job domain.ScanJob, logger *zap.Logger) (compliance.ScanOutcome, error) {
	if err := repo.StartJob(ctx, job.ID); err != nil {
		return compliance.ScanOutcome{}, err
	}
	return finish(ctx, repo, processor, job, logging.OrNop(logger))
}

// finish runs the processor and records the job's final state. A scan that
// produced a log is completed even if alerting afterwards failed.
func finish(ctx context.Context, repo ports.JobRepository, processor Processor, job domain.ScanJob, logger *zap.Logger) (compliance.ScanOutcome, error) {
	log := logger.With(zap.String("jobId", job.ID), zap.Int("storeId", job.StoreID), zap.String("pageUrl", job.PageURL))
	outcome, err := processor.Process(ctx, job)
	// Record state even when the run was cancelled mid-scan.
	bg := context.WithoutCancel(ctx)
	if outcome.Log == nil {
		if err == nil {
			err = errors.New("scan produced no log")
		}
		if ferr := repo.MarkFailed(bg, job.ID, err.Error()); ferr != nil {
			log.Error("mark job failed", zap.Error(ferr))
		}
		log.Warn("scan job failed", zap.Error(err))
		return outcome, err
	}
	if err != nil {
		log.Warn("scan completed with alerting errors", zap.Error(err))
	}
	if cerr := repo.MarkCompleted(bg, job.ID, outcome.Log.ID); cerr != nil {
		log.Error("mark job completed", zap.Error(cerr))
		return outcome, errors.Join(err, cerr)
	}
	log.Info("scan job completed", zap.String("logId", outcome.Log.ID),
		zap.Int("unauthorized", outcome.Log.UnauthorizedScriptsCount))
	return outcome, err
}
