package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"scriptguard/internal/config"
	"scriptguard/internal/logging"
	"scriptguard/internal/services/hashing"
)

func newSRICmd() *cobra.Command {
	var algorithm string

	cmd := &cobra.Command{
		Use:   "sri <file|url>",
		Short: "Print the integrity attribute for a local file or a script URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			// Hashing needs no database.
			if err != nil && !errors.Is(err, config.ErrDatabaseURLMissing) {
				return err
			}
			if cfg.FetchTimeout <= 0 {
				cfg.FetchTimeout = 10 * time.Second
			}
			level := cfg.Log.Level
			if logLevel != "" {
				level = logLevel
			}
			logger, err := logging.New(level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			hasher := newHasher(cfg, nil, logger)
			alg := hashing.ParseAlgorithm(algorithm)
			target := args[0]

			var integrity string
			if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
				integrity, err = hasher.FetchFresh(context.Background(), target, alg)
			} else {
				integrity, err = hasher.HashFile(target, alg)
			}
			if err != nil {
				return fmt.Errorf("hash %s: %w", target, err)
			}
			fmt.Fprintf(os.Stdout, "integrity=%q crossorigin=\"anonymous\"\n", integrity)
			return nil
		},
	}
	cmd.Flags().StringVar(&algorithm, "algorithm", string(hashing.DefaultAlgorithm), "Hash algorithm: sha256, sha384, sha512")
	return cmd
}
