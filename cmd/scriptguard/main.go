// Package main is the scriptguard binary: the compliance API server plus
// operator commands for one-off scans, reports and allow-list management.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"scriptguard/internal/config"
	"scriptguard/internal/logging"
)

var (
	version = "dev"

	configPath string
	logLevel   string
	outputFlag string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "scriptguard",
		Short: "Payment page script monitoring for PCI-DSS 6.4.3 and 11.6.1",
		Long: `scriptguard keeps an inventory of authorized scripts per store, scans
checkout pages for scripts that are not on it, verifies subresource
integrity and raises throttled compliance alerts.`,
		Version:      version,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "Output format: table, json, yaml")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newMigrateCmd())
	rootCmd.AddCommand(newAuthorizeCmd())
	rootCmd.AddCommand(newScriptsCmd())
	rootCmd.AddCommand(newSRICmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config and builds the logger every command shares.
func loadConfig() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return cfg, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}
