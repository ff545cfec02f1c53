// Package alerts turns compliance findings into a deduplicated alert stream
// and decides when an email is due.
package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/metrics"
	"scriptguard/internal/ports"
)

// Candidate is a finding that may become an alert.
type Candidate struct {
	StoreID   int
	Type      domain.AlertType
	Level     domain.AlertLevel
	ScriptURL string
	PageURL   string
	Message   string
	Details   json.RawMessage
}

// Policy is the notification part of a store's settings.
type Policy struct {
	EnableEmailAlerts      bool
	AlertEmail             string
	MaxAlertFrequencyHours int
}

func PolicyFrom(s domain.StoreSettings) Policy {
	return Policy{
		EnableEmailAlerts:      s.EnableEmailAlerts,
		AlertEmail:             s.AlertEmail,
		MaxAlertFrequencyHours: s.MaxAlertFrequencyHours,
	}
}

func (p Policy) emailConfigured() bool { return p.EnableEmailAlerts && p.AlertEmail != "" }

type Manager struct {
	alerts   ports.AlertRepository
	logs     ports.MonitoringLogRepository
	notifier ports.Notifier
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

func New(alerts ports.AlertRepository, logs ports.MonitoringLogRepository, notifier ports.Notifier, m *metrics.Metrics, logger *zap.Logger) *Manager {
	return &Manager{alerts: alerts, logs: logs, notifier: notifier, metrics: m, logger: logging.OrNop(logger), now: time.Now}
}

// Raise creates an alert for c. It returns nil, nil when an unresolved alert
// already occupies the (store, type, script) slot; that alert is refreshed.
func (m *Manager) Raise(ctx context.Context, c Candidate) (*domain.ComplianceAlert, error) {
	a, created, err := m.Track(ctx, c)
	if err != nil || !created {
		return nil, err
	}
	return a, nil
}

// Track is Raise that also hands back the existing alert on a duplicate.
func (m *Manager) Track(ctx context.Context, c Candidate) (alert *domain.ComplianceAlert, created bool, err error) {
	now := m.now()
	existing, err := m.alerts.FindOpenAlert(ctx, c.StoreID, c.Type, c.ScriptURL)
	if err != nil {
		return nil, false, domain.NewError(domain.KindPersistence, "find open alert", err)
	}
	if existing == nil {
		a := &domain.ComplianceAlert{
			ID:          uuid.NewString(),
			StoreID:     c.StoreID,
			Type:        c.Type,
			Level:       c.Level,
			Message:     c.Message,
			Details:     c.Details,
			ScriptURL:   c.ScriptURL,
			PageURL:     c.PageURL,
			Occurrences: 1,
			LastSeenAt:  now,
			CreatedAt:   now,
		}
		if a.Level == "" {
			a.Level = LevelFor(c.Type, "")
		}
		err = m.alerts.CreateAlert(ctx, a)
		if err == nil {
			m.metrics.AlertRaised(string(c.Type))
			m.logger.Info("compliance alert raised",
				zap.Int("storeId", c.StoreID), zap.String("type", string(c.Type)),
				zap.String("scriptUrl", c.ScriptURL), zap.String("alertId", a.ID))
			return a, true, nil
		}
		if !errors.Is(err, domain.ErrDuplicateAlert) {
			return nil, false, domain.NewError(domain.KindPersistence, "create alert", err)
		}
		// Lost the race to a concurrent scan; fall through to refresh its alert.
		existing, err = m.alerts.FindOpenAlert(ctx, c.StoreID, c.Type, c.ScriptURL)
		if err != nil {
			return nil, false, domain.NewError(domain.KindPersistence, "find open alert", err)
		}
		if existing == nil {
			return nil, false, domain.NewError(domain.KindPersistence, "create alert",
				fmt.Errorf("duplicate reported but no open alert for %s", c.ScriptURL))
		}
	}

	if err := m.alerts.TouchAlert(ctx, existing.ID, now); err != nil {
		return nil, false, domain.NewError(domain.KindPersistence, "refresh alert", err)
	}
	existing.Occurrences++
	existing.LastSeenAt = now
	m.metrics.AlertSuppressed(string(c.Type))
	m.logger.Debug("duplicate alert suppressed",
		zap.Int("storeId", c.StoreID), zap.String("type", string(c.Type)), zap.String("scriptUrl", c.ScriptURL))
	return existing, false, nil
}

// ShouldNotify applies the email policy: enabled, an address configured, and
// no email for the same (type, script) within the frequency window.
func (m *Manager) ShouldNotify(ctx context.Context, p Policy, storeID int, t domain.AlertType, scriptURL string) (bool, error) {
	if !p.emailConfigured() {
		return false, nil
	}
	if p.MaxAlertFrequencyHours <= 0 {
		return true, nil
	}
	last, err := m.alerts.LastEmailSent(ctx, storeID, t, scriptURL)
	if err != nil {
		return false, domain.NewError(domain.KindPersistence, "last email lookup", err)
	}
	if last == nil {
		return true, nil
	}
	window := time.Duration(p.MaxAlertFrequencyHours) * time.Hour
	return m.now().Sub(*last) >= window, nil
}

// ScanOutcome summarises alert handling for one monitoring log.
type ScanOutcome struct {
	Created    []domain.ComplianceAlert
	Suppressed int
	Notified   bool
}

// EvaluateScan raises one unauthorized-script alert per unauthorized
// identifier in l and sends at most one email for the scan.
func (m *Manager) EvaluateScan(ctx context.Context, store domain.Store, p Policy, l *domain.MonitoringLog) (ScanOutcome, error) {
	var out ScanOutcome
	if !l.HasUnauthorizedScripts {
		return out, nil
	}
	var due []string
	for _, scriptURL := range l.UnauthorizedScripts {
		details, _ := json.Marshal(map[string]any{
			"pageUrl":   l.PageURL,
			"checkType": l.CheckType,
			"logId":     l.ID,
		})
		a, created, err := m.Track(ctx, Candidate{
			StoreID:   l.StoreID,
			Type:      domain.AlertUnauthorizedScript,
			Level:     LevelFor(domain.AlertUnauthorizedScript, ""),
			ScriptURL: scriptURL,
			PageURL:   l.PageURL,
			Message:   fmt.Sprintf("Unauthorized script detected on %s: %s", l.PageURL, scriptURL),
			Details:   details,
		})
		if err != nil {
			return out, err
		}
		if created {
			out.Created = append(out.Created, *a)
		} else {
			out.Suppressed++
		}
		ok, err := m.ShouldNotify(ctx, p, l.StoreID, domain.AlertUnauthorizedScript, scriptURL)
		if err != nil {
			return out, err
		}
		if ok {
			due = append(due, a.ID)
		}
	}
	if len(due) == 0 {
		return out, nil
	}

	if err := m.notifier.SendUnauthorizedScriptAlert(ctx, p.AlertEmail, *l, store.Name); err != nil {
		m.metrics.Notification("unauthorized-script", "failed")
		m.logger.Warn("unauthorized script email failed", zap.Int("storeId", l.StoreID), zap.Error(err))
		return out, nil
	}
	m.metrics.Notification("unauthorized-script", "sent")
	if err := m.alerts.MarkAlertsEmailSent(ctx, due, m.now()); err != nil {
		return out, domain.NewError(domain.KindPersistence, "mark alerts emailed", err)
	}
	if err := m.logs.MarkLogAlertSent(ctx, l.ID); err != nil {
		return out, domain.NewError(domain.KindPersistence, "mark log alert sent", err)
	}
	l.AlertSent = true
	out.Notified = true
	return out, nil
}

// NotifyCSPViolation emails a CSP violation report when the policy allows.
func (m *Manager) NotifyCSPViolation(ctx context.Context, store domain.Store, p Policy, a *domain.ComplianceAlert) bool {
	return m.notifyOne(ctx, p, a, "csp-violation", func() error {
		return m.notifier.SendCSPViolationAlert(ctx, p.AlertEmail, string(a.Details), store.Name)
	})
}

// NotifyScriptChange emails that an authorized script's content changed.
func (m *Manager) NotifyScriptChange(ctx context.Context, store domain.Store, p Policy, a *domain.ComplianceAlert) bool {
	return m.notifyOne(ctx, p, a, "script-change", func() error {
		return m.notifier.SendScriptChangeAlert(ctx, p.AlertEmail, a.ScriptURL, store.Name)
	})
}

// NotifyExpiredScripts emails the list of scripts overdue for verification.
// It is not throttled per alert; the maintenance cadence bounds it.
func (m *Manager) NotifyExpiredScripts(ctx context.Context, store domain.Store, p Policy, scripts []domain.AuthorizedScript) bool {
	if len(scripts) == 0 || !p.emailConfigured() {
		return false
	}
	if err := m.notifier.SendExpiredScriptsAlert(ctx, p.AlertEmail, scripts, store.Name); err != nil {
		m.metrics.Notification("expired-scripts", "failed")
		m.logger.Warn("expired scripts email failed", zap.Int("storeId", store.ID), zap.Error(err))
		return false
	}
	m.metrics.Notification("expired-scripts", "sent")
	return true
}

func (m *Manager) notifyOne(ctx context.Context, p Policy, a *domain.ComplianceAlert, kind string, send func() error) bool {
	if a == nil {
		return false
	}
	ok, err := m.ShouldNotify(ctx, p, a.StoreID, a.Type, a.ScriptURL)
	if err != nil {
		m.logger.Warn("notification policy lookup failed", zap.String("alertId", a.ID), zap.Error(err))
		return false
	}
	if !ok {
		return false
	}
	if err := send(); err != nil {
		m.metrics.Notification(kind, "failed")
		m.logger.Warn("alert email failed", zap.String("kind", kind), zap.String("alertId", a.ID), zap.Error(err))
		return false
	}
	m.metrics.Notification(kind, "sent")
	now := m.now()
	if err := m.alerts.MarkAlertsEmailSent(ctx, []string{a.ID}, now); err != nil {
		m.logger.Error("mark alert emailed", zap.String("alertId", a.ID), zap.Error(err))
	}
	a.EmailSent = true
	a.EmailSentAt = &now
	return true
}

// Resolve closes an alert. It returns nil, nil when the alert is absent or
// already resolved.
func (m *Manager) Resolve(ctx context.Context, alertID, resolvedBy string) (*domain.ComplianceAlert, error) {
	a, err := m.alerts.ResolveAlert(ctx, alertID, resolvedBy, m.now())
	if err != nil {
		return nil, domain.NewError(domain.KindPersistence, "resolve alert", err)
	}
	if a != nil {
		m.logger.Info("alert resolved", zap.String("alertId", alertID), zap.String("resolvedBy", resolvedBy))
	}
	return a, nil
}

// LevelFor maps an alert type and integrity sub-case to a severity.
func LevelFor(t domain.AlertType, subcase string) domain.AlertLevel {
	switch t {
	case domain.AlertUnauthorizedScript:
		return domain.LevelCritical
	case domain.AlertIntegrityFailure:
		if subcase == domain.IntegrityHashMismatch {
			return domain.LevelCritical
		}
		return domain.LevelWarning
	case domain.AlertCSPViolation:
		return domain.LevelWarning
	}
	return domain.LevelInfo
}
