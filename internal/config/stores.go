package config

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"scriptguard/internal/domain"
)

// Store setting defaults.
const (
	DefaultMonitoredPages         = "/checkout,/onepagecheckout"
	DefaultMaxAlertFrequencyHours = 24
	DefaultLogRetentionDays       = 90
	DefaultAlertRetentionDays     = 30
	DefaultExpiredScriptDays      = 30
	DefaultCSPPolicy              = "script-src 'self' 'unsafe-inline';"
)

// StoreConfig is one monitored store as written in the config file.
type StoreConfig struct {
	ID                     int    `mapstructure:"id"`
	Name                   string `mapstructure:"name"`
	URL                    string `mapstructure:"url"`
	Enabled                *bool  `mapstructure:"enabled"`
	MonitoredPages         string `mapstructure:"monitored_pages"`
	MaxAlertFrequencyHours int    `mapstructure:"max_alert_frequency_hours"`
	EnableEmailAlerts      bool   `mapstructure:"enable_email_alerts"`
	AlertEmail             string `mapstructure:"alert_email"`
	CSPPolicy              string `mapstructure:"csp_policy"`
	EnableSRIValidation    bool   `mapstructure:"enable_sri_validation"`
	LogRetentionDays       int    `mapstructure:"log_retention_days"`
	AlertRetentionDays     int    `mapstructure:"alert_retention_days"`
	ExpiredScriptDays      int    `mapstructure:"expired_script_days"`
}

func (s *StoreConfig) applyDefaults() {
	if s.Enabled == nil {
		enabled := true
		s.Enabled = &enabled
	}
	if strings.TrimSpace(s.MonitoredPages) == "" {
		s.MonitoredPages = DefaultMonitoredPages
	}
	if s.MaxAlertFrequencyHours == 0 {
		s.MaxAlertFrequencyHours = DefaultMaxAlertFrequencyHours
	}
	if s.CSPPolicy == "" {
		s.CSPPolicy = DefaultCSPPolicy
	}
	if s.LogRetentionDays == 0 {
		s.LogRetentionDays = DefaultLogRetentionDays
	}
	if s.AlertRetentionDays == 0 {
		s.AlertRetentionDays = DefaultAlertRetentionDays
	}
	if s.ExpiredScriptDays == 0 {
		s.ExpiredScriptDays = DefaultExpiredScriptDays
	}
	if s.Name == "" {
		s.Name = fmt.Sprintf("store-%d", s.ID)
	}
}

func (s StoreConfig) settings() domain.StoreSettings {
	var pages []string
	for _, p := range strings.Split(s.MonitoredPages, ",") {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	return domain.StoreSettings{
		IsEnabled:              s.Enabled == nil || *s.Enabled,
		MonitoredPages:         pages,
		MaxAlertFrequencyHours: s.MaxAlertFrequencyHours,
		EnableEmailAlerts:      s.EnableEmailAlerts,
		AlertEmail:             strings.TrimSpace(s.AlertEmail),
		CSPPolicy:              s.CSPPolicy,
		EnableSRIValidation:    s.EnableSRIValidation,
		LogRetentionDays:       s.LogRetentionDays,
		AlertRetentionDays:     s.AlertRetentionDays,
		ExpiredScriptDays:      s.ExpiredScriptDays,
	}
}

// SettingsStore serves per-store settings from configuration. It is
// read-only after construction.
type SettingsStore struct {
	stores map[int]StoreConfig
	ids    []int
}

func NewSettingsStore(stores []StoreConfig) *SettingsStore {
	s := &SettingsStore{stores: make(map[int]StoreConfig, len(stores))}
	for _, sc := range stores {
		sc.applyDefaults()
		if _, dup := s.stores[sc.ID]; !dup {
			s.ids = append(s.ids, sc.ID)
		}
		s.stores[sc.ID] = sc
	}
	sort.Ints(s.ids)
	return s
}

func (s *SettingsStore) Stores(ctx context.Context) ([]domain.Store, error) {
	out := make([]domain.Store, 0, len(s.ids))
	for _, id := range s.ids {
		sc := s.stores[id]
		out = append(out, domain.Store{ID: sc.ID, Name: sc.Name, URL: sc.URL})
	}
	return out, nil
}

func (s *SettingsStore) Store(ctx context.Context, storeID int) (domain.Store, error) {
	sc, ok := s.stores[storeID]
	if !ok {
		return domain.Store{}, fmt.Errorf("store %d: %w", storeID, domain.ErrNotFound)
	}
	return domain.Store{ID: sc.ID, Name: sc.Name, URL: sc.URL}, nil
}

func (s *SettingsStore) Load(ctx context.Context, storeID int) (domain.StoreSettings, error) {
	sc, ok := s.stores[storeID]
	if !ok {
		return domain.StoreSettings{}, fmt.Errorf("store %d: %w", storeID, domain.ErrNotFound)
	}
	return sc.settings(), nil
}
