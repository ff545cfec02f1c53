// Package metrics holds the prometheus collectors for scans, alerts and the
// hash cache. All timings are measured, never synthesized.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Registry *prometheus.Registry

	Scans            *prometheus.CounterVec
	ScanDuration     prometheus.Histogram
	ScriptsDetected  *prometheus.CounterVec
	AlertsRaised     *prometheus.CounterVec
	AlertsSuppressed *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	HashCacheLookups *prometheus.CounterVec
}

// New registers all collectors on a fresh registry so tests and multiple
// engines in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scriptguard",
			Name:      "scans_total",
			Help:      "Page scans by outcome (ok, fetch_failed, persist_failed).",
		}, []string{"outcome"}),
		ScanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "scriptguard",
			Name:      "scan_duration_seconds",
			Help:      "Wall time of a page scan from fetch to persistence.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ScriptsDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scriptguard",
			Name:      "scripts_detected_total",
			Help:      "Scripts classified during scans by status.",
		}, []string{"status"}),
		AlertsRaised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scriptguard",
			Name:      "alerts_raised_total",
			Help:      "Compliance alerts created.",
		}, []string{"type"}),
		AlertsSuppressed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scriptguard",
			Name:      "alerts_suppressed_total",
			Help:      "Alert candidates folded into an existing unresolved alert.",
		}, []string{"type"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scriptguard",
			Name:      "notifications_total",
			Help:      "Notification attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),
		HashCacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "scriptguard",
			Name:      "hash_cache_lookups_total",
			Help:      "Hash cache lookups by result (hit, miss).",
		}, []string{"result"}),
	}
	reg.MustRegister(m.Scans, m.ScanDuration, m.ScriptsDetected, m.AlertsRaised,
		m.AlertsSuppressed, m.Notifications, m.HashCacheLookups)
	return m
}

// The helpers below are nil-safe so components can run without metrics.

func (m *Metrics) ObserveScan(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.Scans.WithLabelValues(outcome).Inc()
	m.ScanDuration.Observe(seconds)
}

func (m *Metrics) CountScripts(status string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.ScriptsDetected.WithLabelValues(status).Add(float64(n))
}

func (m *Metrics) AlertRaised(alertType string) {
	if m == nil {
		return
	}
	m.AlertsRaised.WithLabelValues(alertType).Inc()
}

func (m *Metrics) AlertSuppressed(alertType string) {
	if m == nil {
		return
	}
	m.AlertsSuppressed.WithLabelValues(alertType).Inc()
}

func (m *Metrics) Notification(kind, outcome string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.HashCacheLookups.WithLabelValues(result).Inc()
}
