// Package compliance orchestrates page scans: fetch, classify, verify,
// persist and alert. It also serves the browser monitor's use cases.
package compliance

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/metrics"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/integrity"
	"scriptguard/internal/services/pagescan"
	"scriptguard/internal/services/registry"
	"scriptguard/internal/services/reports"
)

// Deps are the collaborators an Engine drives.
type Deps struct {
	Scanner  *pagescan.Scanner
	Registry *registry.Registry
	Verifier *integrity.Verifier
	Hasher   *hashing.Engine
	Alerts   *alerts.Manager
	Reports  *reports.Service
	Logs     ports.MonitoringLogRepository
	Settings ports.SettingsStore
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

type Engine struct {
	Deps
	cfg      Config
	trusted  hostSet
	gateways hostSet
	logger   *zap.Logger
	now      func() time.Time
}

func New(d Deps, cfg Config) *Engine {
	if cfg.VerifyConcurrency < 1 {
		cfg.VerifyConcurrency = 1
	}
	return &Engine{
		Deps:     d,
		cfg:      cfg,
		trusted:  newHostSet(cfg.TrustedCDNs),
		gateways: newHostSet(cfg.PaymentGateways),
		logger:   logging.OrNop(d.Logger),
		now:      time.Now,
	}
}

// ScanOutcome is everything one scan produced.
type ScanOutcome struct {
	Log *domain.MonitoringLog
	// SRI holds one result per script that declared an integrity value.
	SRI []domain.SRIValidationResult
	// MissingSRI lists trusted-CDN scripts served without integrity.
	MissingSRI      []string
	Alerts          alerts.ScanOutcome
	IntegrityAlerts []domain.ComplianceAlert
}

// Summary is the human-readable result of a manual check.
func (o ScanOutcome) Summary() string {
	if o.Log == nil {
		return "check failed: nothing recorded"
	}
	l := o.Log
	if l.FetchError != "" {
		return fmt.Sprintf("Checked %s: page could not be fetched (%s)", l.PageURL, l.FetchError)
	}
	s := fmt.Sprintf("Checked %s: %d scripts found, %d authorized, %d unauthorized",
		l.PageURL, l.TotalScriptsFound, l.AuthorizedScriptsCount, l.UnauthorizedScriptsCount)
	if len(o.MissingSRI) > 0 {
		s += fmt.Sprintf(", %d missing SRI", len(o.MissingSRI))
	}
	if l.AlertSent {
		s += "; alert email sent"
	}
	return s
}

// RunScan scans pageURL, classifies its scripts, persists the log and
// evaluates alerts. Fetch and parse failures produce an empty log; only
// persistence failures are returned. When alerting fails after the log was
// written the log is returned together with the error.
func (e *Engine) RunScan(ctx context.Context, pageURL string, storeID int, checkType domain.CheckType) (*domain.MonitoringLog, error) {
	out, err := e.run(ctx, pageURL, storeID, checkType, false)
	return out.Log, err
}

// RunScanWithSRI is RunScan plus SRI verification of scripts declaring
// integrity and missing-sri findings for trusted CDN scripts without it.
func (e *Engine) RunScanWithSRI(ctx context.Context, pageURL string, storeID int, checkType domain.CheckType) (ScanOutcome, error) {
	return e.run(ctx, pageURL, storeID, checkType, true)
}

// RunConfigured runs RunScanWithSRI when the store enables SRI validation and
// RunScan otherwise.
func (e *Engine) RunConfigured(ctx context.Context, pageURL string, storeID int, checkType domain.CheckType) (ScanOutcome, error) {
	_, settings := e.storeContext(ctx, storeID)
	return e.run(ctx, pageURL, storeID, checkType, settings.EnableSRIValidation)
}

func (e *Engine) run(ctx context.Context, pageURL string, storeID int, checkType domain.CheckType, withSRI bool) (ScanOutcome, error) {
	start := e.now()
	logger := e.logger.With(zap.Int("storeId", storeID), zap.String("pageUrl", pageURL))
	if checkType == "" {
		checkType = domain.CheckManual
	}

	// Fetching
	res := e.Scanner.Scan(ctx, pageURL)

	// Classifying
	l := &domain.MonitoringLog{
		ID:                  uuid.NewString(),
		StoreID:             storeID,
		PageURL:             pageURL,
		DetectedScripts:     res.Identifiers(),
		UnauthorizedScripts: []string{},
		Headers:             res.Headers,
		CheckType:           checkType,
		CheckedAt:           start,
	}
	if res.Err != nil {
		l.FetchError = res.Err.Error()
	}
	for _, id := range l.DetectedScripts {
		ok, err := e.Registry.IsAuthorized(ctx, id, storeID)
		if err != nil {
			e.Metrics.ObserveScan("persist_failed", time.Since(start).Seconds())
			return ScanOutcome{}, fmt.Errorf("classify %s: %w", id, err)
		}
		if ok {
			l.AuthorizedScriptsCount++
		} else {
			l.UnauthorizedScripts = append(l.UnauthorizedScripts, id)
		}
	}
	l.TotalScriptsFound = len(l.DetectedScripts)
	l.UnauthorizedScriptsCount = len(l.UnauthorizedScripts)
	l.HasUnauthorizedScripts = l.UnauthorizedScriptsCount > 0

	// Verifying
	out := ScanOutcome{Log: l}
	if withSRI && res.Err == nil {
		out.SRI, out.MissingSRI = e.verifyScripts(ctx, res.Scripts)
	}

	// Persisting
	l.DurationMs = time.Since(start).Milliseconds()
	if err := e.Logs.InsertLog(ctx, l); err != nil {
		e.Metrics.ObserveScan("persist_failed", time.Since(start).Seconds())
		logger.Error("monitoring log not persisted", zap.Error(err))
		return ScanOutcome{}, domain.NewError(domain.KindPersistence, "insert monitoring log", err)
	}
	outcome := "ok"
	if res.Err != nil {
		outcome = "fetch_failed"
	}
	e.Metrics.ObserveScan(outcome, time.Since(start).Seconds())
	e.Metrics.CountScripts("authorized", l.AuthorizedScriptsCount)
	e.Metrics.CountScripts("unauthorized", l.UnauthorizedScriptsCount)

	// Alerting
	store, settings := e.storeContext(ctx, storeID)
	policy := alerts.PolicyFrom(settings)
	var alertErr error
	out.Alerts, alertErr = e.Alerts.EvaluateScan(ctx, store, policy, l)
	if alertErr != nil {
		logger.Error("alert evaluation failed", zap.Error(alertErr))
	}
	if withSRI {
		integrityAlerts, err := e.raiseIntegrityFindings(ctx, store, policy, pageURL, out.SRI, out.MissingSRI)
		out.IntegrityAlerts = integrityAlerts
		if err != nil {
			logger.Error("integrity alerts failed", zap.Error(err))
			alertErr = errors.Join(alertErr, err)
		}
	}

	logger.Info("page scan complete",
		zap.String("checkType", string(checkType)),
		zap.Int("total", l.TotalScriptsFound),
		zap.Int("authorized", l.AuthorizedScriptsCount),
		zap.Int("unauthorized", l.UnauthorizedScriptsCount),
		zap.Int("missingSri", len(out.MissingSRI)),
		zap.Bool("alertSent", l.AlertSent),
		zap.Int64("durationMs", l.DurationMs))
	return out, alertErr
}

// storeContext loads the store and its settings. A store without settings
// scans fine but never notifies.
func (e *Engine) storeContext(ctx context.Context, storeID int) (domain.Store, domain.StoreSettings) {
	store := domain.Store{ID: storeID}
	if e.Settings == nil {
		return store, domain.StoreSettings{}
	}
	if s, err := e.Settings.Store(ctx, storeID); err == nil {
		store = s
	}
	settings, err := e.Settings.Load(ctx, storeID)
	if err != nil {
		e.logger.Debug("store settings unavailable", zap.Int("storeId", storeID), zap.Error(err))
		return store, domain.StoreSettings{}
	}
	return store, settings
}

// GenerateReport aggregates the persisted window for a store.
func (e *Engine) GenerateReport(ctx context.Context, storeID int, from, to *time.Time) (domain.ComplianceReport, error) {
	return e.Reports.GenerateReport(ctx, storeID, from, to)
}

// PageURLs joins the store URL with each monitored page path.
func PageURLs(store domain.Store, settings domain.StoreSettings) []string {
	base := strings.TrimRight(store.URL, "/")
	var out []string
	for _, p := range settings.MonitoredPages {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			out = append(out, p)
			continue
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		out = append(out, base+p)
	}
	return out
}

// RunStoreCycle scans every monitored page of a store. Disabled stores and
// empty page lists are skipped. One page failing does not stop the others;
// persistence errors are joined and returned.
func (e *Engine) RunStoreCycle(ctx context.Context, storeID int, checkType domain.CheckType) ([]ScanOutcome, error) {
	if e.Settings == nil {
		return nil, nil
	}
	store, err := e.Settings.Store(ctx, storeID)
	if err != nil {
		return nil, domain.NewError(domain.KindConfigurationMissing, "load store", err)
	}
	settings, err := e.Settings.Load(ctx, storeID)
	if err != nil {
		return nil, domain.NewError(domain.KindConfigurationMissing, "load store settings", err)
	}
	pages := PageURLs(store, settings)
	if !settings.IsEnabled || len(pages) == 0 || store.URL == "" {
		e.logger.Debug("store monitoring skipped", zap.Int("storeId", storeID),
			zap.Bool("enabled", settings.IsEnabled), zap.Int("pages", len(pages)))
		return nil, nil
	}

	outcomes := make([]ScanOutcome, len(pages))
	errs := make([]error, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.VerifyConcurrency)
	for i, page := range pages {
		g.Go(func() error {
			outcomes[i], errs[i] = e.run(gctx, page, storeID, checkType, settings.EnableSRIValidation)
			return nil
		})
	}
	_ = g.Wait()

	var kept []ScanOutcome
	for _, o := range outcomes {
		if o.Log != nil {
			kept = append(kept, o)
		}
	}
	return kept, errors.Join(errs...)
}
