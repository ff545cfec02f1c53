package ports

import (
	"context"
	"time"

	"scriptguard/internal/domain"
)

// ScriptFilter narrows allow-list listings. Zero values mean "any".
type ScriptFilter struct {
	StoreID int
	Active  *bool
	Domain  string
}

// ScriptRepository stores the per-store allow-list.
type ScriptRepository interface {
	// CreateScript returns domain.ErrDuplicateScript when the URL already exists for the store.
	CreateScript(ctx context.Context, s *domain.AuthorizedScript) error
	// GetScript returns domain.ErrNotFound when absent.
	GetScript(ctx context.Context, id string) (*domain.AuthorizedScript, error)
	// FindScriptByURL returns nil, nil when no row matches.
	FindScriptByURL(ctx context.Context, storeID int, url string) (*domain.AuthorizedScript, error)
	ListScripts(ctx context.Context, f ScriptFilter) ([]domain.AuthorizedScript, error)
	// ListScriptsVerifiedBefore returns active scripts whose last verification precedes cutoff.
	ListScriptsVerifiedBefore(ctx context.Context, storeID int, cutoff time.Time) ([]domain.AuthorizedScript, error)
	UpdateScriptHash(ctx context.Context, id, hash string, verifiedAt time.Time) error
	TouchScript(ctx context.Context, id string, verifiedAt time.Time) error
	SetScriptActive(ctx context.Context, id string, active bool) error
}

// LogFilter selects monitoring logs; From and To are inclusive.
type LogFilter struct {
	StoreID          int
	From             *time.Time
	To               *time.Time
	OnlyUnauthorized bool
	Limit            int
}

// MonitoringLogRepository is append-only apart from the alert-sent marker.
type MonitoringLogRepository interface {
	InsertLog(ctx context.Context, l *domain.MonitoringLog) error
	MarkLogAlertSent(ctx context.Context, id string) error
	ListLogs(ctx context.Context, f LogFilter) ([]domain.MonitoringLog, error)
	DeleteLogsBefore(ctx context.Context, storeID int, cutoff time.Time) (int64, error)
}

// AlertFilter selects compliance alerts; From and To bound CreatedAt.
type AlertFilter struct {
	StoreID        int
	Type           domain.AlertType
	From           *time.Time
	To             *time.Time
	UnresolvedOnly bool
}

// AlertRepository stores deduplicated compliance alerts. Implementations must
// enforce uniqueness of unresolved alerts per (store, type, script url).
type AlertRepository interface {
	// FindOpenAlert returns nil, nil when no unresolved alert occupies the slot.
	FindOpenAlert(ctx context.Context, storeID int, t domain.AlertType, scriptURL string) (*domain.ComplianceAlert, error)
	// CreateAlert returns domain.ErrDuplicateAlert when an unresolved alert already occupies the slot.
	CreateAlert(ctx context.Context, a *domain.ComplianceAlert) error
	TouchAlert(ctx context.Context, id string, seenAt time.Time) error
	// LastEmailSent returns the most recent email timestamp for the tuple, or nil.
	LastEmailSent(ctx context.Context, storeID int, t domain.AlertType, scriptURL string) (*time.Time, error)
	MarkAlertsEmailSent(ctx context.Context, ids []string, at time.Time) error
	GetAlert(ctx context.Context, id string) (*domain.ComplianceAlert, error)
	// ResolveAlert returns nil, nil when the alert is absent or already resolved.
	ResolveAlert(ctx context.Context, id, resolvedBy string, at time.Time) (*domain.ComplianceAlert, error)
	ListAlerts(ctx context.Context, f AlertFilter) ([]domain.ComplianceAlert, error)
	DeleteResolvedAlertsBefore(ctx context.Context, storeID int, cutoff time.Time) (int64, error)
}

// Store aggregates every repository a storage adapter provides.
type Store interface {
	ScriptRepository
	MonitoringLogRepository
	AlertRepository
	JobRepository
	Close()
}
