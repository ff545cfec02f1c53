package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Apply pending goose migrations on postgres. The sqlite store migrates its
tables whenever it is opened, so for sqlite this only creates the file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			store, err := openStore(context.Background(), cfg, true)
			if err != nil {
				return err
			}
			store.Close()
			logger.Info("schema up to date", zap.String("driver", cfg.Database.Driver))
			return nil
		},
	}
}
