package scanner

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/compliance"
)

var (
	ErrScanPending    = errors.New("scan already pending for page")
	ErrInvalidPageURL = errors.New("page url must be absolute http(s) or a path")
)

// Service queues page scans for the background runner.
type Service struct {
	jobs     ports.JobRepository
	settings ports.SettingsStore
	logger   *zap.Logger
	now      func() time.Time
}

func New(jobs ports.JobRepository, settings ports.SettingsStore, logger *zap.Logger) *Service {
	return &Service{jobs: jobs, settings: settings, logger: logging.OrNop(logger), now: time.Now}
}

// Enqueue queues one page of a store. Relative pages resolve against the
// store URL. ErrScanPending is returned when the page already has a queued or
// running job.
func (s *Service) Enqueue(ctx context.Context, storeID int, page string, checkType domain.CheckType) (*domain.ScanJob, error) {
	store, err := s.settings.Store(ctx, storeID)
	if err != nil {
		return nil, domain.NewError(domain.KindConfigurationMissing, "load store", err)
	}
	pageURL, err := ResolvePage(store.URL, page)
	if err != nil {
		return nil, err
	}
	return s.enqueue(ctx, storeID, pageURL, checkType)
}

// EnqueueStore queues every monitored page of an enabled store, skipping
// pages that already have a pending job. Disabled stores queue nothing.
func (s *Service) EnqueueStore(ctx context.Context, storeID int, checkType domain.CheckType) ([]domain.ScanJob, error) {
	store, err := s.settings.Store(ctx, storeID)
	if err != nil {
		return nil, domain.NewError(domain.KindConfigurationMissing, "load store", err)
	}
	settings, err := s.settings.Load(ctx, storeID)
	if err != nil {
		return nil, domain.NewError(domain.KindConfigurationMissing, "load store settings", err)
	}
	if !settings.IsEnabled {
		return nil, nil
	}
	var queued []domain.ScanJob
	for _, page := range compliance.PageURLs(store, settings) {
		job, err := s.enqueue(ctx, storeID, page, checkType)
		if errors.Is(err, ErrScanPending) {
			continue
		}
		if err != nil {
			return queued, err
		}
		queued = append(queued, *job)
	}
	return queued, nil
}

func (s *Service) enqueue(ctx context.Context, storeID int, pageURL string, checkType domain.CheckType) (*domain.ScanJob, error) {
	pending, err := s.jobs.HasPendingJob(ctx, storeID, pageURL)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, fmt.Errorf("%w: %s", ErrScanPending, pageURL)
	}
	if checkType == "" {
		checkType = domain.CheckManual
	}
	job := &domain.ScanJob{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		PageURL:   pageURL,
		CheckType: checkType,
		Status:    domain.JobQueued,
		QueuedAt:  s.now().UTC(),
	}
	if err := s.jobs.EnqueueJob(ctx, job); err != nil {
		return nil, err
	}
	s.logger.Debug("scan queued", zap.String("jobId", job.ID), zap.Int("storeId", storeID),
		zap.String("pageUrl", pageURL), zap.String("checkType", string(checkType)))
	return job, nil
}

func (s *Service) Status(ctx context.Context, jobID string) (*domain.ScanJob, error) {
	return s.jobs.GetJob(ctx, jobID)
}

// ResolvePage turns a monitored page entry into an absolute URL. Paths are
// appended to the store URL the same way configured pages are.
func ResolvePage(storeURL, page string) (string, error) {
	page = strings.TrimSpace(page)
	if page == "" {
		return "", ErrInvalidPageURL
	}
	if !strings.Contains(page, "://") {
		if storeURL == "" {
			return "", fmt.Errorf("%w: store has no base url", ErrInvalidPageURL)
		}
		if !strings.HasPrefix(page, "/") {
			page = "/" + page
		}
		page = strings.TrimRight(storeURL, "/") + page
	}
	u, err := url.Parse(page)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPageURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidPageURL
	}
	return u.String(), nil
}
