package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"scriptguard/internal/adapters/notify"
	"scriptguard/internal/adapters/postgres"
	"scriptguard/internal/adapters/sqlite"
	"scriptguard/internal/config"
	"scriptguard/internal/metrics"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/compliance"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/integrity"
	"scriptguard/internal/services/pagescan"
	"scriptguard/internal/services/registry"
	"scriptguard/internal/services/reports"
	"scriptguard/internal/services/scanner"
)

const defaultSQLitePath = "scriptguard.db"

// app is the wired object graph shared by serve and the operator commands.
type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    ports.Store
	settings *config.SettingsStore
	metrics  *metrics.Metrics
	hasher   *hashing.Engine
	registry *registry.Registry
	alerts   *alerts.Manager
	engine   *compliance.Engine
	scans    *scanner.Service
}

// openStore connects the configured storage backend. Postgres schemas are
// managed by goose; sqlite migrates itself on open.
func openStore(ctx context.Context, cfg config.Config, migrate bool) (ports.Store, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		dsn := cfg.Database.URL
		if dsn == "" {
			dsn = defaultSQLitePath
		}
		s, err := sqlite.Open(dsn)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		db, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		if migrate {
			if err := db.Migrate(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return db, nil
	}
}

func newHasher(cfg config.Config, m *metrics.Metrics, logger *zap.Logger) *hashing.Engine {
	client := &http.Client{Timeout: cfg.FetchTimeout}
	return hashing.NewEngine(client, hashing.NewCache(cfg.HashCacheTTL, m), cfg.FetchTimeout, logger)
}

func engineConfig(cfg config.Config) compliance.Config {
	ec := compliance.DefaultConfig()
	if len(cfg.TrustedCDNs) > 0 {
		ec.TrustedCDNs = cfg.TrustedCDNs
	}
	if len(cfg.PaymentGateways) > 0 {
		ec.PaymentGateways = cfg.PaymentGateways
	}
	if cfg.VerifyConcurrency > 0 {
		ec.VerifyConcurrency = cfg.VerifyConcurrency
	}
	return ec
}

func newApp(ctx context.Context, cfg config.Config, logger *zap.Logger, migrate bool) (*app, error) {
	store, err := openStore(ctx, cfg, migrate)
	if err != nil {
		return nil, err
	}
	m := metrics.New()
	hasher := newHasher(cfg, m, logger)
	settings := config.NewSettingsStore(cfg.Stores)
	reg := registry.New(store, hasher, logger)
	alertMgr := alerts.New(store, store, notify.New(cfg.SMTP, logger), m, logger)
	engine := compliance.New(compliance.Deps{
		Scanner:  pagescan.New(&http.Client{Timeout: cfg.FetchTimeout}, cfg.FetchTimeout, logger),
		Registry: reg,
		Verifier: integrity.New(hasher, logger),
		Hasher:   hasher,
		Alerts:   alertMgr,
		Reports:  reports.New(store, store, store),
		Logs:     store,
		Settings: settings,
		Metrics:  m,
		Logger:   logger,
	}, engineConfig(cfg))

	return &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		settings: settings,
		metrics:  m,
		hasher:   hasher,
		registry: reg,
		alerts:   alertMgr,
		engine:   engine,
		scans:    scanner.New(store, settings, logger),
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	_ = a.logger.Sync()
}
