package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"scriptguard/internal/domain"
)

// JobRepository. SQLite has no SKIP LOCKED; the single connection serialises
// claims instead.

func (s *Store) EnqueueJob(ctx context.Context, job *domain.ScanJob) error {
	if job.Status == "" {
		job.Status = domain.JobQueued
	}
	if job.QueuedAt.IsZero() {
		job.QueuedAt = time.Now().UTC()
	}
	row := jobFromDomain(job)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

func (s *Store) HasPendingJob(ctx context.Context, storeID int, pageURL string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&jobRow{}).
		Where("store_id = ? AND page_url = ? AND status IN ?", storeID, pageURL,
			[]string{string(domain.JobQueued), string(domain.JobRunning)}).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("pending job lookup: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ClaimNext(ctx context.Context) (job domain.ScanJob, found bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []jobRow
		if err := tx.Where("status = ?", string(domain.JobQueued)).
			Order("queued_at ASC").Limit(1).Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		now := time.Now().UTC()
		res := tx.Model(&jobRow{}).Where("id = ? AND status = ?", rows[0].ID, string(domain.JobQueued)).
			Updates(map[string]any{
				"status":     string(domain.JobRunning),
				"started_at": now,
				"attempts":   gorm.Expr("attempts + 1"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		row := rows[0]
		row.Status = string(domain.JobRunning)
		row.StartedAt = &now
		row.Attempts++
		job, found = row.toDomain(), true
		return nil
	})
	if err != nil {
		return domain.ScanJob{}, false, fmt.Errorf("claim job: %w", err)
	}
	return job, found, nil
}

func (s *Store) StartJob(ctx context.Context, jobID string) error {
	res := s.db.WithContext(ctx).Model(&jobRow{}).
		Where("id = ? AND status = ?", jobID, string(domain.JobQueued)).
		Updates(map[string]any{
			"status":     string(domain.JobRunning),
			"started_at": time.Now().UTC(),
			"attempts":   gorm.Expr("attempts + 1"),
		})
	if res.Error != nil {
		return fmt.Errorf("start job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("start job %s: not queued: %w", jobID, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) MarkCompleted(ctx context.Context, jobID, logID string) error {
	return s.finishJob(ctx, jobID, map[string]any{
		"status":      string(domain.JobCompleted),
		"log_id":      logID,
		"finished_at": time.Now().UTC(),
	})
}

func (s *Store) MarkFailed(ctx context.Context, jobID string, reason string) error {
	return s.finishJob(ctx, jobID, map[string]any{
		"status":      string(domain.JobFailed),
		"last_error":  reason,
		"finished_at": time.Now().UTC(),
	})
}

func (s *Store) finishJob(ctx context.Context, jobID string, updates map[string]any) error {
	res := s.db.WithContext(ctx).Model(&jobRow{}).Where("id = ?", jobID).Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("finish job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store) GetJob(ctx context.Context, jobID string) (*domain.ScanJob, error) {
	var row jobRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", jobID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	out := row.toDomain()
	return &out, nil
}
