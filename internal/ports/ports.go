package ports

import (
	"context"

	"scriptguard/internal/domain"
)

// SettingsStore exposes read-only per-store configuration.
type SettingsStore interface {
	Stores(ctx context.Context) ([]domain.Store, error)
	Store(ctx context.Context, storeID int) (domain.Store, error)
	Load(ctx context.Context, storeID int) (domain.StoreSettings, error)
}

// Notifier delivers alert emails. Callers log and swallow its errors.
type Notifier interface {
	SendUnauthorizedScriptAlert(ctx context.Context, email string, log domain.MonitoringLog, storeName string) error
	SendCSPViolationAlert(ctx context.Context, email string, detailsJSON string, storeName string) error
	SendScriptChangeAlert(ctx context.Context, email string, scriptURL string, storeName string) error
	SendExpiredScriptsAlert(ctx context.Context, email string, scripts []domain.AuthorizedScript, storeName string) error
}
