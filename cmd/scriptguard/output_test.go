package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/domain"
)

func TestParseOutputFormat(t *testing.T) {
	for in, want := range map[string]outputFormat{"": outputTable, "TABLE": outputTable, "json": outputJSON, "yaml": outputYAML} {
		got, err := parseOutputFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := parseOutputFormat("xml")
	assert.Error(t, err)
}

func TestPrintOutput(t *testing.T) {
	report := domain.ComplianceReport{StoreID: 3, ComplianceScore: 87.5, AlertsByType: map[domain.AlertType]int{
		domain.AlertCSPViolation:       1,
		domain.AlertUnauthorizedScript: 2,
	}}

	var buf bytes.Buffer
	require.NoError(t, printOutput(&buf, outputTable, report, []string{"Metric", "Value"}, reportRows(report)))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "METRIC"))
	assert.Contains(t, out, "87.50%")
	assert.Contains(t, out, "never")
	assert.Less(t, strings.Index(out, "csp-violation"), strings.Index(out, "unauthorized-script"))

	buf.Reset()
	require.NoError(t, printOutput(&buf, outputYAML, report, nil, nil))
	assert.Contains(t, buf.String(), "complianceScore: 87.5")

	buf.Reset()
	require.NoError(t, printOutput(&buf, outputJSON, report, nil, nil))
	assert.Contains(t, buf.String(), `"storeId": 3`)
}

func TestReportRows_LastCheck(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rows := reportRows(domain.ComplianceReport{LastCheckDate: at, AverageScanDuration: 1234567 * time.Microsecond})
	values := map[string]string{}
	for _, r := range rows {
		values[r[0]] = r[1]
	}
	assert.Equal(t, "2025-03-01T12:00:00Z", values["Last check"])
	assert.Equal(t, "1.235s", values["Average scan"])
}

func TestReportRows_RoundsScoreForDisplay(t *testing.T) {
	rows := reportRows(domain.ComplianceReport{ComplianceScore: 200.0 / 3})
	values := map[string]string{}
	for _, r := range rows {
		values[r[0]] = r[1]
	}
	assert.Equal(t, "66.67%", values["Compliance score"])
}

func TestParseRisk(t *testing.T) {
	r, err := parseRisk("HIGH")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskHigh, r)
	r, err = parseRisk("")
	require.NoError(t, err)
	assert.Equal(t, domain.RiskMedium, r)
	_, err = parseRisk("extreme")
	assert.Error(t, err)
}
