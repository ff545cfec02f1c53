package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/domain"
	"scriptguard/internal/ports"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func newScript(storeID int, url string) *domain.AuthorizedScript {
	now := time.Now()
	return &domain.AuthorizedScript{
		ID:             uuid.NewString(),
		StoreID:        storeID,
		URL:            url,
		Domain:         "cdn.example.com",
		RiskLevel:      domain.RiskLow,
		IsActive:       true,
		Source:         domain.SourceThirdParty,
		AuthorizedBy:   "admin",
		AuthorizedAt:   now,
		LastVerifiedAt: now,
	}
}

func newAlert(storeID int, scriptURL string) *domain.ComplianceAlert {
	now := time.Now()
	return &domain.ComplianceAlert{
		ID:          uuid.NewString(),
		StoreID:     storeID,
		Type:        domain.AlertUnauthorizedScript,
		Level:       domain.LevelCritical,
		Message:     "unauthorized script",
		Details:     json.RawMessage(`{"k":"v"}`),
		ScriptURL:   scriptURL,
		Occurrences: 1,
		LastSeenAt:  now,
		CreatedAt:   now,
	}
}

func TestScripts_UniquePerStoreAndURL(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateScript(ctx, newScript(1, "https://cdn.example.com/a.js")))
	err := s.CreateScript(ctx, newScript(1, "https://cdn.example.com/a.js"))
	assert.ErrorIs(t, err, domain.ErrDuplicateScript)
	require.NoError(t, s.CreateScript(ctx, newScript(2, "https://cdn.example.com/a.js")))

	got, err := s.FindScriptByURL(ctx, 1, "https://cdn.example.com/a.js")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsActive)
	assert.Equal(t, domain.RiskLow, got.RiskLevel)

	missing, err := s.FindScriptByURL(ctx, 1, "https://cdn.example.com/b.js")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestScripts_DeactivateAndFilter(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := newScript(1, "https://cdn.example.com/a.js")
	b := newScript(1, "https://cdn.example.com/b.js")
	require.NoError(t, s.CreateScript(ctx, a))
	require.NoError(t, s.CreateScript(ctx, b))

	require.NoError(t, s.SetScriptActive(ctx, b.ID, false))
	active := true
	list, err := s.ListScripts(ctx, ports.ScriptFilter{StoreID: 1, Active: &active})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	got, err := s.GetScript(ctx, b.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = s.GetScript(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, s.SetScriptActive(ctx, "missing", true), domain.ErrNotFound)
}

func TestScripts_VerifiedBeforeAndHashUpdate(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	old := newScript(1, "https://cdn.example.com/old.js")
	old.LastVerifiedAt = time.Now().Add(-40 * 24 * time.Hour)
	fresh := newScript(1, "https://cdn.example.com/fresh.js")
	require.NoError(t, s.CreateScript(ctx, old))
	require.NoError(t, s.CreateScript(ctx, fresh))

	cutoff := time.Now().Add(-30 * 24 * time.Hour)
	expired, err := s.ListScriptsVerifiedBefore(ctx, 1, cutoff)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, old.ID, expired[0].ID)

	require.NoError(t, s.UpdateScriptHash(ctx, old.ID, "newdigest", time.Now()))
	expired, err = s.ListScriptsVerifiedBefore(ctx, 1, cutoff)
	require.NoError(t, err)
	assert.Empty(t, expired)

	got, err := s.GetScript(ctx, old.ID)
	require.NoError(t, err)
	assert.Equal(t, "newdigest", got.Hash)
}

func TestLogs_RoundTripAndRetention(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	now := time.Now()

	l := &domain.MonitoringLog{
		ID:                       uuid.NewString(),
		StoreID:                  1,
		PageURL:                  "https://shop.example.com/checkout",
		DetectedScripts:          []string{"https://a/x.js", "inline-script-0123456789abcdef"},
		UnauthorizedScripts:      []string{"inline-script-0123456789abcdef"},
		Headers:                  map[string]string{"X-Frame-Options": "DENY", "Referrer-Policy": ""},
		TotalScriptsFound:        2,
		AuthorizedScriptsCount:   1,
		UnauthorizedScriptsCount: 1,
		HasUnauthorizedScripts:   true,
		CheckType:                domain.CheckScheduled,
		CheckedAt:                now,
	}
	stale := &domain.MonitoringLog{ID: uuid.NewString(), StoreID: 1, PageURL: "p", CheckType: domain.CheckManual, CheckedAt: now.Add(-100 * 24 * time.Hour)}
	require.NoError(t, s.InsertLog(ctx, l))
	require.NoError(t, s.InsertLog(ctx, stale))
	require.NoError(t, s.MarkLogAlertSent(ctx, l.ID))

	from := now.Add(-time.Hour)
	logs, err := s.ListLogs(ctx, ports.LogFilter{StoreID: 1, From: &from})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	got := logs[0]
	assert.Equal(t, l.DetectedScripts, got.DetectedScripts)
	assert.Equal(t, l.UnauthorizedScripts, got.UnauthorizedScripts)
	assert.Equal(t, "DENY", got.Headers["X-Frame-Options"])
	v, ok := got.Headers["Referrer-Policy"]
	assert.True(t, ok)
	assert.Equal(t, "", v)
	assert.True(t, got.AlertSent)

	n, err := s.DeleteLogsBefore(ctx, 1, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	logs, err = s.ListLogs(ctx, ports.LogFilter{StoreID: 1})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestAlerts_OneUnresolvedPerTuple(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	first := newAlert(1, "https://evil.example/x.js")
	require.NoError(t, s.CreateAlert(ctx, first))
	err := s.CreateAlert(ctx, newAlert(1, "https://evil.example/x.js"))
	assert.ErrorIs(t, err, domain.ErrDuplicateAlert)

	// Other store, other script, other type each get their own slot.
	require.NoError(t, s.CreateAlert(ctx, newAlert(2, "https://evil.example/x.js")))
	require.NoError(t, s.CreateAlert(ctx, newAlert(1, "https://evil.example/y.js")))
	csp := newAlert(1, "https://evil.example/x.js")
	csp.Type = domain.AlertCSPViolation
	require.NoError(t, s.CreateAlert(ctx, csp))

	open, err := s.FindOpenAlert(ctx, 1, domain.AlertUnauthorizedScript, "https://evil.example/x.js")
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, first.ID, open.ID)
	assert.JSONEq(t, `{"k":"v"}`, string(open.Details))

	require.NoError(t, s.TouchAlert(ctx, first.ID, time.Now()))
	got, err := s.GetAlert(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Occurrences)

	resolved, err := s.ResolveAlert(ctx, first.ID, "admin", time.Now())
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.True(t, resolved.IsResolved)
	assert.Equal(t, "admin", resolved.ResolvedBy)

	again, err := s.ResolveAlert(ctx, first.ID, "admin", time.Now())
	require.NoError(t, err)
	assert.Nil(t, again)
	absent, err := s.ResolveAlert(ctx, "missing", "admin", time.Now())
	require.NoError(t, err)
	assert.Nil(t, absent)

	// Resolution frees the slot.
	require.NoError(t, s.CreateAlert(ctx, newAlert(1, "https://evil.example/x.js")))
	unresolved, err := s.ListAlerts(ctx, ports.AlertFilter{StoreID: 1, UnresolvedOnly: true})
	require.NoError(t, err)
	assert.Len(t, unresolved, 3)
}

func TestAlerts_EmailSentTracking(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	a := newAlert(1, "https://evil.example/x.js")
	require.NoError(t, s.CreateAlert(ctx, a))

	last, err := s.LastEmailSent(ctx, 1, domain.AlertUnauthorizedScript, "https://evil.example/x.js")
	require.NoError(t, err)
	assert.Nil(t, last)

	sentAt := time.Now().Add(-time.Hour)
	require.NoError(t, s.MarkAlertsEmailSent(ctx, []string{a.ID}, sentAt))
	last, err = s.LastEmailSent(ctx, 1, domain.AlertUnauthorizedScript, "https://evil.example/x.js")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, sentAt, *last, time.Second)
}

func TestAlerts_DeleteResolvedBefore(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	old := newAlert(1, "https://evil.example/old.js")
	old.CreatedAt = time.Now().Add(-60 * 24 * time.Hour)
	openOld := newAlert(1, "https://evil.example/open.js")
	openOld.CreatedAt = old.CreatedAt
	require.NoError(t, s.CreateAlert(ctx, old))
	require.NoError(t, s.CreateAlert(ctx, openOld))
	_, err := s.ResolveAlert(ctx, old.ID, "admin", time.Now())
	require.NoError(t, err)

	n, err := s.DeleteResolvedAlertsBefore(ctx, 1, time.Now().Add(-30*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.GetAlert(ctx, openOld.ID)
	assert.NoError(t, err)
}

func TestJobs_ClaimLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, found, err := s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	job := &domain.ScanJob{ID: uuid.NewString(), StoreID: 1, PageURL: "https://shop/checkout", CheckType: domain.CheckScheduled}
	require.NoError(t, s.EnqueueJob(ctx, job))
	pending, err := s.HasPendingJob(ctx, 1, "https://shop/checkout")
	require.NoError(t, err)
	assert.True(t, pending)

	claimed, found, err := s.ClaimNext(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, job.ID, claimed.ID)
	assert.Equal(t, domain.JobRunning, claimed.Status)
	assert.Equal(t, 1, claimed.Attempts)

	_, found, err = s.ClaimNext(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.MarkCompleted(ctx, job.ID, "log-1"))
	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, got.Status)
	assert.Equal(t, "log-1", got.LogID)
	assert.NotNil(t, got.FinishedAt)

	pending, err = s.HasPendingJob(ctx, 1, "https://shop/checkout")
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestJobs_StartSpecificJob(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	job := &domain.ScanJob{ID: uuid.NewString(), StoreID: 1, PageURL: "p", CheckType: domain.CheckManual}
	require.NoError(t, s.EnqueueJob(ctx, job))

	require.NoError(t, s.StartJob(ctx, job.ID))
	assert.ErrorIs(t, s.StartJob(ctx, job.ID), domain.ErrNotFound)

	require.NoError(t, s.MarkFailed(ctx, job.ID, "boom"))
	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, got.Status)
	assert.Equal(t, "boom", got.LastError)

	_, err = s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
