package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"scriptguard/internal/domain"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/registry"
)

func newAuthorizeCmd() *cobra.Command {
	var (
		purpose       string
		justification string
		risk          string
		source        string
		by            string
		hash          string
		algorithm     string
		hashNow       bool
	)

	cmd := &cobra.Command{
		Use:   "authorize <storeId> <url>",
		Short: "Add a script to a store's allow-list",
		Long: `Add a script to a store's allow-list. With --hash-now the live script is
fetched and its hash stored, so later maintenance passes detect changes.
--hash accepts a bare base64 digest or an SRI value.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := strconv.Atoi(args[0])
			if err != nil || storeID <= 0 {
				return fmt.Errorf("invalid storeId %q", args[0])
			}
			riskLevel, err := parseRisk(risk)
			if err != nil {
				return err
			}
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			a, err := newApp(ctx, cfg, logger, false)
			if err != nil {
				return err
			}
			defer a.Close()

			script, err := a.registry.Authorize(ctx, registry.AuthorizeRequest{
				StoreID:       storeID,
				URL:           args[1],
				Purpose:       purpose,
				Justification: justification,
				RiskLevel:     riskLevel,
				Source:        domain.ScriptSource(source),
				AuthorizedBy:  by,
				Hash:          hash,
				HashAlgorithm: hashing.ParseAlgorithm(algorithm),
				ComputeHash:   hashNow,
			})
			if err != nil {
				return err
			}
			stored := script.Hash
			if stored == "" {
				stored = "-"
			}
			return printTable(os.Stdout, []string{"ID", "URL", "Domain", "Risk", "Hash"}, [][]string{{
				script.ID, script.URL, script.Domain, script.RiskLevel.String(), stored,
			}})
		},
	}
	cmd.Flags().StringVar(&purpose, "purpose", "", "What the script is for")
	cmd.Flags().StringVar(&justification, "justification", "", "Why it is needed on payment pages")
	cmd.Flags().StringVar(&risk, "risk", "medium", "Risk level: low, medium, high")
	cmd.Flags().StringVar(&source, "source", string(domain.SourceThirdParty), "internal, third-party, payment-gateway, analytics or marketing")
	cmd.Flags().StringVar(&by, "by", os.Getenv("USER"), "Who authorized the script")
	cmd.Flags().StringVar(&hash, "hash", "", "Expected hash of the script content")
	cmd.Flags().StringVar(&algorithm, "algorithm", string(hashing.DefaultAlgorithm), "Hash algorithm: sha256, sha384, sha512")
	cmd.Flags().BoolVar(&hashNow, "hash-now", false, "Fetch the script and store its current hash")
	return cmd
}

func parseRisk(s string) (domain.RiskLevel, error) {
	switch strings.ToLower(s) {
	case "low":
		return domain.RiskLow, nil
	case "medium", "":
		return domain.RiskMedium, nil
	case "high":
		return domain.RiskHigh, nil
	default:
		return 0, fmt.Errorf("unknown risk level %q", s)
	}
}
