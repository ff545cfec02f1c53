package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"scriptguard/internal/domain"
)

func newReportCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "report <storeId>",
		Short: "Print the compliance report for a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storeID, err := strconv.Atoi(args[0])
			if err != nil || storeID <= 0 {
				return fmt.Errorf("invalid storeId %q", args[0])
			}
			return runReport(storeID, days)
		},
	}
	cmd.Flags().IntVar(&days, "days", 30, "Report window in days; 0 covers all history")
	return cmd
}

func runReport(storeID, days int) error {
	format, err := parseOutputFormat(outputFlag)
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

	var from *time.Time
	if days > 0 {
		t := time.Now().UTC().AddDate(0, 0, -days)
		from = &t
	}
	report, err := a.engine.GenerateReport(ctx, storeID, from, nil)
	if err != nil {
		return err
	}
	return printOutput(os.Stdout, format, report, []string{"Metric", "Value"}, reportRows(report))
}

func reportRows(r domain.ComplianceReport) [][]string {
	lastCheck := "never"
	if !r.LastCheckDate.IsZero() {
		lastCheck = r.LastCheckDate.Format(time.RFC3339)
	}
	rows := [][]string{
		{"Compliance score", fmt.Sprintf("%.2f%%", r.ComplianceScore)},
		{"Scripts monitored", strconv.Itoa(r.TotalScriptsMonitored)},
		{"Authorized", strconv.Itoa(r.AuthorizedScriptsCount)},
		{"Unauthorized", strconv.Itoa(r.UnauthorizedScriptsCount)},
		{"Checks performed", strconv.Itoa(r.TotalChecksPerformed)},
		{"Failed checks", strconv.Itoa(r.FailedChecks)},
		{"Alerts generated", strconv.Itoa(r.AlertsGenerated)},
		{"Open alerts", strconv.Itoa(r.OpenAlerts)},
		{"Average scan", r.AverageScanDuration.Round(time.Millisecond).String()},
		{"Last check", lastCheck},
	}
	for i, s := range r.MostCommonUnauthorizedScripts {
		rows = append(rows, []string{fmt.Sprintf("Top unauthorized #%d", i+1), s})
	}
	for _, d := range r.TopUnauthorizedDomains {
		rows = append(rows, []string{"Unauthorized domain", fmt.Sprintf("%s (%d)", d.Domain, d.Count)})
	}
	types := make([]string, 0, len(r.AlertsByType))
	for t := range r.AlertsByType {
		types = append(types, string(t))
	}
	sort.Strings(types)
	for _, t := range types {
		rows = append(rows, []string{"Alerts: " + t, strconv.Itoa(r.AlertsByType[domain.AlertType(t)])})
	}
	return rows
}
