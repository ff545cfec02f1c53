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
	"scriptguard/internal/workers/scanrunner"
)

func newScanCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "scan <storeId> [pageUrl]",
		Short: "Run a manual check and print the summary",
		Long: `Run a manual check of one page, or of every monitored page of the store
when pageUrl is omitted. pageUrl may be absolute or a path that is appended
to the store URL, e.g. /checkout. Results are recorded like any other check
and alerts are raised as usual.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := strconv.Atoi(args[0])
			if err != nil || storeID <= 0 {
				return fmt.Errorf("invalid storeId %q", args[0])
			}
			if len(args) == 1 {
				return runStoreScan(storeID, timeout)
			}
			return runScan(storeID, args[1], timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Give up after this long")
	return cmd
}

type scanResult struct {
	Summary    string                       `json:"summary" yaml:"summary"`
	Log        *domain.MonitoringLog        `json:"log" yaml:"log"`
	SRI        []domain.SRIValidationResult `json:"sri,omitempty" yaml:"sri,omitempty"`
	MissingSRI []string                     `json:"missingSri,omitempty" yaml:"missingSri,omitempty"`
}

func runScan(storeID int, page string, timeout time.Duration) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := newApp(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := a.scans.Enqueue(ctx, storeID, page, domain.CheckManual)
	if err != nil {
		return err
	}
	outcome, err := scanrunner.ProcessInline(ctx, a.store, scanrunner.EngineProcessor{Engine: a.engine}, *job, logger)
	if outcome.Log == nil {
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		return errors.New("check failed")
	}

	format, ferr := parseOutputFormat(outputFlag)
	if ferr != nil {
		return ferr
	}
	if format != outputTable {
		return printOutput(os.Stdout, format, scanResult{
			Summary:    outcome.Summary(),
			Log:        outcome.Log,
			SRI:        outcome.SRI,
			MissingSRI: outcome.MissingSRI,
		}, nil, nil)
	}
	fmt.Fprintln(os.Stdout, outcome.Summary())
	if len(outcome.Log.UnauthorizedScripts) > 0 {
		rows := make([][]string, 0, len(outcome.Log.UnauthorizedScripts))
		for _, s := range outcome.Log.UnauthorizedScripts {
			rows = append(rows, []string{s})
		}
		fmt.Fprintln(os.Stdout)
		if perr := printTable(os.Stdout, []string{"Unauthorized script"}, rows); perr != nil {
			return perr
		}
	}
	for _, r := range outcome.SRI {
		if !r.IsValid {
			fmt.Fprintf(os.Stdout, "SRI: %s: %s\n", r.ScriptURL, r.Error)
		}
	}
	if err != nil {
		return fmt.Errorf("check recorded but alerting failed: %w", err)
	}
	return nil
}

func runStoreScan(storeID int, timeout time.Duration) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a, err := newApp(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer a.Close()

	outcomes, err := a.engine.RunStoreCycle(ctx, storeID, domain.CheckManual)
	if len(outcomes) == 0 && err == nil {
		fmt.Fprintln(os.Stdout, "Nothing to check: store disabled or no monitored pages")
		return nil
	}
	for _, o := range outcomes {
		if o.Log != nil {
			fmt.Fprintln(os.Stdout, o.Summary())
		}
	}
	return err
}
