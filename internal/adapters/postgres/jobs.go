package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"scriptguard/internal/domain"
)

const jobColumns = `id, store_id, page_url, check_type, status, attempts, log_id, last_error,
	queued_at, started_at, finished_at`

func scanJob(row pgx.Row) (domain.ScanJob, error) {
	var j domain.ScanJob
	var checkType, status string
	err := row.Scan(&j.ID, &j.StoreID, &j.PageURL, &checkType, &status, &j.Attempts, &j.LogID, &j.LastError,
		&j.QueuedAt, &j.StartedAt, &j.FinishedAt)
	j.CheckType = domain.CheckType(checkType)
	j.Status = domain.JobStatus(status)
	j.QueuedAt = j.QueuedAt.UTC()
	j.StartedAt = utcPtr(j.StartedAt)
	j.FinishedAt = utcPtr(j.FinishedAt)
	return j, err
}

func (db *DB) EnqueueJob(ctx context.Context, job *domain.ScanJob) error {
	if job.Status == "" {
		job.Status = domain.JobQueued
	}
	if job.QueuedAt.IsZero() {
		job.QueuedAt = time.Now().UTC()
	}
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO scan_jobs (id, store_id, page_url, check_type, status, queued_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, job.ID, job.StoreID, job.PageURL, string(job.CheckType), string(job.Status), job.QueuedAt.UTC())
	if err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

func (db *DB) HasPendingJob(ctx context.Context, storeID int, pageURL string) (bool, error) {
	var pending bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM scan_jobs
			WHERE store_id = $1 AND page_url = $2 AND status IN ('queued', 'running')
		)
	`, storeID, pageURL).Scan(&pending)
	if err != nil {
		return false, fmt.Errorf("pending job lookup: %w", err)
	}
	return pending, nil
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job domain.ScanJob, found bool, err error) {
	err = db.inTx(ctx, func(tx pgx.Tx) error {
		j, err := scanJob(tx.QueryRow(ctx, `
			UPDATE scan_jobs SET status = 'running', started_at = now(), attempts = attempts + 1
			WHERE id = (
				SELECT id FROM scan_jobs
				WHERE status = 'queued'
				ORDER BY queued_at
				FOR UPDATE SKIP LOCKED
				LIMIT 1
			)
			RETURNING `+jobColumns))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		job, found = j, true
		return nil
	})
	if err != nil {
		return domain.ScanJob{}, false, fmt.Errorf("claim job: %w", err)
	}
	return job, found, nil
}

// StartJob marks a specific queued job as running.
func (db *DB) StartJob(ctx context.Context, jobID string) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE scan_jobs SET status = 'running', started_at = now(), attempts = attempts + 1
		WHERE id = $1 AND status = 'queued'
	`, jobID)
	if err != nil {
		return fmt.Errorf("start job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("start job %s: not queued: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID, logID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.execOne(ctx, `
		UPDATE scan_jobs SET status = 'completed', log_id = $2, finished_at = now() WHERE id = $1
	`, jobID, logID)
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return db.execOne(ctx, `
		UPDATE scan_jobs SET status = 'failed', last_error = $2, finished_at = now() WHERE id = $1
	`, jobID, reason)
}

func (db *DB) GetJob(ctx context.Context, jobID string) (*domain.ScanJob, error) {
	j, err := scanJob(db.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM scan_jobs WHERE id = $1`, jobID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}
