package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpadapter "scriptguard/internal/adapters/http"
	"scriptguard/internal/workers/maintenance"
	"scriptguard/internal/workers/scanrunner"
)

func newServeCmd() *cobra.Command {
	var autoMigrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, scan workers, scheduler and maintenance",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "migrate", true, "Apply pending postgres migrations on start")
	return cmd
}

func runServe(parent context.Context, autoMigrate bool) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger, autoMigrate)
	if err != nil {
		return err
	}
	defer a.Close()

	processor := scanrunner.EngineProcessor{Engine: a.engine}
	srv := httpadapter.New(httpadapter.Deps{
		Engine:      a.engine,
		Scans:       a.scans,
		Jobs:        a.store,
		Processor:   processor,
		Alerts:      a.alerts,
		Settings:    a.settings,
		Metrics:     a.metrics,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		ScanWait:    cfg.ScanWaitTimeout,
	})

	if cfg.ScanWorkers > 0 {
		go scanrunner.Run(ctx, a.store, processor, cfg.ScanWorkers, cfg.PollInterval, logger)
		go scanrunner.Schedule(ctx, a.settings, a.scans, cfg.ScanInterval, logger)
		logger.Info("scan workers started", zap.Int("workers", cfg.ScanWorkers), zap.Duration("scanInterval", cfg.ScanInterval))
	} else {
		logger.Info("scan workers disabled; scheduled checks are off and scans run only with wait=true")
	}

	worker := maintenance.New(maintenance.Deps{
		Settings:  a.settings,
		Registry:  a.registry,
		Alerts:    a.alerts,
		Integrity: a.engine,
		Logs:      a.store,
		AlertRepo: a.store,
		Logger:    logger,
	}, cfg.MaintenanceInterval)
	go worker.Run(ctx)

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()
	logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.String("env", cfg.Env))

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	}
}
