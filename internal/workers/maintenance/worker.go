// Package maintenance runs the periodic housekeeping pass: expired script
// notices, re-verification of authorized script hashes and retention of
// monitoring logs and resolved alerts.
package maintenance

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/registry"
)

// MaxReverifyPerStore bounds how many overdue scripts are re-hashed per pass.
const MaxReverifyPerStore = 10

// IntegrityRaiser records integrity findings found outside a page scan.
type IntegrityRaiser interface {
	RaiseIntegrityFailure(ctx context.Context, storeID int, scriptURL, subcase string, details map[string]any) (*domain.ComplianceAlert, error)
}

type Deps struct {
	Settings  ports.SettingsStore
	Registry  *registry.Registry
	Alerts    *alerts.Manager
	Integrity IntegrityRaiser
	Logs      ports.MonitoringLogRepository
	AlertRepo ports.AlertRepository
	Logger    *zap.Logger
}

// Worker periodically runs Pass for every configured store.
type Worker struct {
	Deps
	interval time.Duration
	now      func() time.Time
}

func New(d Deps, interval time.Duration) *Worker {
	d.Logger = logging.OrNop(d.Logger)
	return &Worker{Deps: d, interval: interval, now: time.Now}
}

// StoreResult summarises one store's pass.
type StoreResult struct {
	StoreID       int
	Expired       int
	Notified      bool
	Verified      int
	Changed       int
	Unreachable   int
	LogsDeleted   int64
	AlertsDeleted int64
}

// Run starts the worker. It runs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) {
	if w.interval <= 0 {
		w.Logger.Info("maintenance worker disabled")
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Logger.Info("maintenance worker started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("maintenance worker stopped")
			return
		case <-ticker.C:
			if _, err := w.Pass(ctx); err != nil {
				w.Logger.Error("maintenance pass failed", zap.Error(err))
			}
		}
	}
}

// Pass performs one maintenance pass over every enabled store.
func (w *Worker) Pass(ctx context.Context) ([]StoreResult, error) {
	stores, err := w.Settings.Stores(ctx)
	if err != nil {
		return nil, err
	}
	var results []StoreResult
	var errs []error
	for _, st := range stores {
		settings, err := w.Settings.Load(ctx, st.ID)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !settings.IsEnabled {
			continue
		}
		r, err := w.storePass(ctx, st, settings)
		results = append(results, r)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return results, errors.Join(errs...)
}

func (w *Worker) storePass(ctx context.Context, store domain.Store, settings domain.StoreSettings) (StoreResult, error) {
	res := StoreResult{StoreID: store.ID}
	log := w.Logger.With(zap.Int("storeId", store.ID))
	var errs []error

	expired, err := w.Registry.FindExpired(ctx, settings.ExpiredScriptDays, store.ID)
	if err != nil {
		errs = append(errs, err)
	}
	res.Expired = len(expired)
	if len(expired) > 0 {
		res.Notified = w.Alerts.NotifyExpiredScripts(ctx, store, alerts.PolicyFrom(settings), expired)
	}

	for i, s := range expired {
		if i == MaxReverifyPerStore {
			break
		}
		switch outcome, err := w.reverify(ctx, s); {
		case err != nil:
			errs = append(errs, err)
		case outcome == outcomeVerified:
			res.Verified++
		case outcome == outcomeChanged:
			res.Changed++
		case outcome == outcomeUnreachable:
			res.Unreachable++
		}
	}

	now := w.now()
	if settings.LogRetentionDays > 0 {
		n, err := w.Logs.DeleteLogsBefore(ctx, store.ID, now.AddDate(0, 0, -settings.LogRetentionDays))
		if err != nil {
			errs = append(errs, err)
		}
		res.LogsDeleted = n
	}
	if settings.AlertRetentionDays > 0 {
		n, err := w.AlertRepo.DeleteResolvedAlertsBefore(ctx, store.ID, now.AddDate(0, 0, -settings.AlertRetentionDays))
		if err != nil {
			errs = append(errs, err)
		}
		res.AlertsDeleted = n
	}

	log.Info("maintenance pass completed",
		zap.Int("expired", res.Expired), zap.Int("verified", res.Verified),
		zap.Int("changed", res.Changed), zap.Int("unreachable", res.Unreachable),
		zap.Int64("logsDeleted", res.LogsDeleted), zap.Int64("alertsDeleted", res.AlertsDeleted))
	return res, errors.Join(errs...)
}

type reverifyOutcome int

const (
	outcomeVerified reverifyOutcome = iota
	outcomeChanged
	outcomeUnreachable
)

// reverify re-hashes one script. Scripts without a stored hash only need to
// be reachable. Changed content raises a hash-mismatch finding and leaves the
// stored hash for an operator to update.
func (w *Worker) reverify(ctx context.Context, s domain.AuthorizedScript) (reverifyOutcome, error) {
	current, err := w.Registry.GenerateHash(ctx, s.URL, hashing.ParseAlgorithm(s.HashAlgorithm))
	if err != nil {
		w.Logger.Warn("expired script unreachable", zap.String("url", s.URL), zap.Error(err))
		return outcomeUnreachable, nil
	}
	if s.Hash == "" || registry.MatchDigest(s.Hash, current) {
		return outcomeVerified, w.Registry.MarkVerified(ctx, s.ID)
	}
	_, err = w.Integrity.RaiseIntegrityFailure(ctx, s.StoreID, s.URL, domain.IntegrityHashMismatch, map[string]any{
		"scriptId":      s.ID,
		"expectedHash":  s.Hash,
		"currentHash":   current,
		"hashAlgorithm": s.HashAlgorithm,
	})
	return outcomeChanged, err
}
