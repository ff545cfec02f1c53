package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"scriptguard/internal/domain"
	"scriptguard/internal/services/hashing"
)

// withApp loads config, wires the app and runs fn against it.
func withApp(fn func(ctx context.Context, a *app) error) error {
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
	return fn(ctx, a)
}

func newScriptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scripts",
		Short: "Inspect and maintain a store's authorized scripts",
	}
	cmd.AddCommand(newScriptsListCmd())
	cmd.AddCommand(newScriptsVerifyCmd())
	cmd.AddCommand(newScriptsAcceptHashCmd())
	cmd.AddCommand(newScriptsDeactivateCmd())
	return cmd
}

func newScriptsListCmd() *cobra.Command {
	var (
		host        string
		expiredDays int
	)
	cmd := &cobra.Command{
		Use:   "list <storeId>",
		Short: "List active authorized scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := strconv.Atoi(args[0])
			if err != nil || storeID <= 0 {
				return fmt.Errorf("invalid storeId %q", args[0])
			}
			format, err := parseOutputFormat(outputFlag)
			if err != nil {
				return err
			}
			return withApp(func(ctx context.Context, a *app) error {
				var scripts []domain.AuthorizedScript
				switch {
				case host != "":
					scripts, err = a.registry.FindByDomain(ctx, host, storeID)
				case expiredDays > 0:
					scripts, err = a.registry.FindExpired(ctx, expiredDays, storeID)
				default:
					scripts, err = a.registry.Active(ctx, storeID)
				}
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(scripts))
				for _, s := range scripts {
					verified := "never"
					if !s.LastVerifiedAt.IsZero() {
						verified = s.LastVerifiedAt.Format(time.RFC3339)
					}
					rows = append(rows, []string{s.ID, s.URL, s.RiskLevel.String(), string(s.Source), verified})
				}
				return printOutput(os.Stdout, format, scripts, []string{"ID", "URL", "Risk", "Source", "Last verified"}, rows)
			})
		},
	}
	cmd.Flags().StringVar(&host, "domain", "", "Only scripts served from this host or its subdomains")
	cmd.Flags().IntVar(&expiredDays, "expired-days", 0, "Only scripts not verified within this many days")
	return cmd
}

func newScriptsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <storeId> <url>",
		Short: "Compare a script's live content with its stored hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := strconv.Atoi(args[0])
			if err != nil || storeID <= 0 {
				return fmt.Errorf("invalid storeId %q", args[0])
			}
			return withApp(func(ctx context.Context, a *app) error {
				s, err := a.registry.Lookup(ctx, args[1], storeID)
				if err != nil {
					return err
				}
				if s == nil {
					return fmt.Errorf("%s is not authorized for store %d", args[1], storeID)
				}
				if s.Hash == "" {
					return errors.New("no stored hash; run scripts accept-hash first")
				}
				if !a.registry.ValidateIntegrity(ctx, s.URL, s.Hash, hashing.ParseAlgorithm(s.HashAlgorithm)) {
					fmt.Fprintf(os.Stdout, "CHANGED  %s\n", s.URL)
					return nil
				}
				if err := a.registry.MarkVerified(ctx, s.ID); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "OK       %s\n", s.URL)
				return nil
			})
		},
	}
}

func newScriptsAcceptHashCmd() *cobra.Command {
	var hash string
	cmd := &cobra.Command{
		Use:   "accept-hash <scriptId>",
		Short: "Store a new expected hash, by default the script's current content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				newHash := hash
				if newHash == "" {
					s, err := a.store.GetScript(ctx, args[0])
					if err != nil {
						return err
					}
					newHash, err = a.registry.GenerateHash(ctx, s.URL, hashing.ParseAlgorithm(s.HashAlgorithm))
					if err != nil {
						return err
					}
				}
				if err := a.registry.UpdateHash(ctx, args[0], newHash); err != nil {
					return err
				}
				fmt.Fprintf(os.Stdout, "hash updated: %s\n", newHash)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&hash, "hash", "", "Expected hash (bare digest or SRI value)")
	return cmd
}

func newScriptsDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate <scriptId>",
		Short: "Remove a script from the allow-list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(ctx context.Context, a *app) error {
				return a.registry.Deactivate(ctx, args[0])
			})
		},
	}
}
