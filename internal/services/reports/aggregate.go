// Package reports folds monitoring logs and alerts into compliance reports.
// Everything here except Service is pure.
package reports

import (
	"fmt"
	"net/url"
	"sort"
	"time"

	"scriptguard/internal/domain"
	"scriptguard/internal/services/pagescan"
	"scriptguard/internal/services/registry"
)

// TopN bounds the ranked lists in a report.
const TopN = 10

// Input is the window a report is computed over.
type Input struct {
	StoreID int
	From    *time.Time
	To      *time.Time
	Logs    []domain.MonitoringLog
	Alerts  []domain.ComplianceAlert
	Scripts []domain.AuthorizedScript
}

// Aggregate builds a report. With no scripts seen the score is 100 and
// LastCheckDate is the zero time.
func Aggregate(in Input) domain.ComplianceReport {
	r := domain.ComplianceReport{
		StoreID:                       in.StoreID,
		From:                          in.From,
		To:                            in.To,
		TotalChecksPerformed:          len(in.Logs),
		MostCommonUnauthorizedScripts: RankUnauthorized(in.Logs, TopN),
		TopUnauthorizedDomains:        TopDomains(in.Logs, TopN),
		AlertsByType:                  AlertDistribution(in.Alerts),
		History:                       DailyHistory(in.Logs),
		RiskBreakdown:                 RiskBreakdown(in.Scripts),
	}
	var totalDuration int64
	for _, l := range in.Logs {
		r.TotalScriptsMonitored += l.TotalScriptsFound
		r.AuthorizedScriptsCount += l.AuthorizedScriptsCount
		r.UnauthorizedScriptsCount += l.UnauthorizedScriptsCount
		if l.HasUnauthorizedScripts {
			r.AlertsGenerated++
		}
		if l.FetchError != "" {
			r.FailedChecks++
		}
		if l.CheckedAt.After(r.LastCheckDate) {
			r.LastCheckDate = l.CheckedAt
		}
		totalDuration += l.DurationMs
	}
	if n := len(in.Logs); n > 0 {
		r.AverageScanDuration = time.Duration(totalDuration/int64(n)) * time.Millisecond
	}
	for _, a := range in.Alerts {
		if !a.IsResolved {
			r.OpenAlerts++
		}
	}
	r.ComplianceScore = Score(r.AuthorizedScriptsCount, r.TotalScriptsMonitored)
	return r
}

// Score is authorized/total as a percentage, and 100 when nothing was seen.
// It is not rounded; renderers format it.
func Score(authorized, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(authorized) / float64(total) * 100
}

type counted struct {
	key string
	n   int
}

func rank(counts map[string]int, limit int) []counted {
	out := make([]counted, 0, len(counts))
	for k, n := range counts {
		out = append(out, counted{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// RankUnauthorized renders the most frequent unauthorized identifiers as
// "<url> (<n> times)".
func RankUnauthorized(logs []domain.MonitoringLog, limit int) []string {
	counts := make(map[string]int)
	for _, l := range logs {
		for _, s := range l.UnauthorizedScripts {
			counts[s]++
		}
	}
	ranked := rank(counts, limit)
	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, fmt.Sprintf("%s (%d times)", c.key, c.n))
	}
	return out
}

// TopDomains ranks the registrable domains serving unauthorized external
// scripts. Inline scripts have no domain and are skipped.
func TopDomains(logs []domain.MonitoringLog, limit int) []domain.DomainCount {
	counts := make(map[string]int)
	for _, l := range logs {
		for _, s := range l.UnauthorizedScripts {
			if pagescan.IsInlineID(s) {
				continue
			}
			u, err := url.Parse(s)
			if err != nil || u.Hostname() == "" {
				continue
			}
			counts[registry.RegistrableDomain(u.Hostname())]++
		}
	}
	var out []domain.DomainCount
	for _, c := range rank(counts, limit) {
		out = append(out, domain.DomainCount{Domain: c.key, Count: c.n})
	}
	return out
}

func AlertDistribution(alerts []domain.ComplianceAlert) map[domain.AlertType]int {
	if len(alerts) == 0 {
		return nil
	}
	out := make(map[domain.AlertType]int)
	for _, a := range alerts {
		out[a.Type]++
	}
	return out
}

// DailyHistory buckets logs by UTC day in ascending order.
func DailyHistory(logs []domain.MonitoringLog) []domain.DailyCompliance {
	byDay := make(map[time.Time]*domain.DailyCompliance)
	for _, l := range logs {
		t := l.CheckedAt.UTC()
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		d, ok := byDay[day]
		if !ok {
			d = &domain.DailyCompliance{Date: day}
			byDay[day] = d
		}
		d.Checks++
		if l.HasUnauthorizedScripts {
			d.IssuesFound++
		}
		d.TotalScripts += l.TotalScriptsFound
		d.AuthorizedScripts += l.AuthorizedScriptsCount
		d.UnauthorizedScripts += l.UnauthorizedScriptsCount
	}
	out := make([]domain.DailyCompliance, 0, len(byDay))
	for _, d := range byDay {
		d.ComplianceScore = Score(d.AuthorizedScripts, d.TotalScripts)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// RiskBreakdown counts active authorized scripts per risk level.
func RiskBreakdown(scripts []domain.AuthorizedScript) map[string]int {
	if len(scripts) == 0 {
		return nil
	}
	out := make(map[string]int)
	for _, s := range scripts {
		if s.IsActive {
			out[s.RiskLevel.String()]++
		}
	}
	return out
}
