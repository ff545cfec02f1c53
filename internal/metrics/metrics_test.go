package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.Scans.WithLabelValues("ok").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Scans.WithLabelValues("ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Scans.WithLabelValues("ok")))

	families, err := a.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestHelpers_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveScan("ok", 1)
		m.CountScripts("authorized", 2)
		m.AlertRaised("unauthorized-script")
		m.AlertSuppressed("unauthorized-script")
		m.Notification("unauthorized", "sent")
		m.CacheLookup(true)
	})
}

func TestCacheLookup_Labels(t *testing.T) {
	m := New()
	m.CacheLookup(true)
	m.CacheLookup(false)
	m.CacheLookup(false)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HashCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.HashCacheLookups.WithLabelValues("miss")))
}
