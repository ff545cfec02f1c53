package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/adapters/sqlite"
	"scriptguard/internal/domain"
	"scriptguard/internal/ports"
)

type recordingNotifier struct {
	mu           sync.Mutex
	unauthorized int
	csp          int
	changes      int
	expired      int
	fail         bool
}

func (n *recordingNotifier) SendUnauthorizedScriptAlert(ctx context.Context, email string, log domain.MonitoringLog, storeName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errors.New("smtp down")
	}
	n.unauthorized++
	return nil
}

func (n *recordingNotifier) SendCSPViolationAlert(ctx context.Context, email, detailsJSON, storeName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.csp++
	return nil
}

func (n *recordingNotifier) SendScriptChangeAlert(ctx context.Context, email, scriptURL, storeName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes++
	return nil
}

func (n *recordingNotifier) SendExpiredScriptsAlert(ctx context.Context, email string, scripts []domain.AuthorizedScript, storeName string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired++
	return nil
}

var testStore = domain.Store{ID: 1, Name: "Demo Shop", URL: "https://shop.example.com"}

var emailPolicy = Policy{EnableEmailAlerts: true, AlertEmail: "sec@example.com", MaxAlertFrequencyHours: 24}

func setupManager(t *testing.T) (*Manager, *sqlite.Store, *recordingNotifier) {
	t.Helper()
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)
	n := &recordingNotifier{}
	return New(store, store, n, nil, nil), store, n
}

func unauthorizedCandidate(scriptURL string) Candidate {
	return Candidate{StoreID: 1, Type: domain.AlertUnauthorizedScript, ScriptURL: scriptURL, PageURL: "https://shop.example.com/checkout"}
}

func scanLog(t *testing.T, store *sqlite.Store, unauthorized ...string) *domain.MonitoringLog {
	t.Helper()
	l := &domain.MonitoringLog{
		ID:                       uuid.NewString(),
		StoreID:                  1,
		PageURL:                  "https://shop.example.com/checkout",
		DetectedScripts:          unauthorized,
		UnauthorizedScripts:      unauthorized,
		TotalScriptsFound:        len(unauthorized),
		UnauthorizedScriptsCount: len(unauthorized),
		HasUnauthorizedScripts:   len(unauthorized) > 0,
		CheckType:                domain.CheckScheduled,
		CheckedAt:                time.Now(),
	}
	require.NoError(t, store.InsertLog(context.Background(), l))
	return l
}

func TestRaise_DeduplicatesUnresolved(t *testing.T) {
	m, store, _ := setupManager(t)
	ctx := context.Background()

	first, err := m.Raise(ctx, unauthorizedCandidate("https://evil.example/x.js"))
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, domain.LevelCritical, first.Level)

	second, err := m.Raise(ctx, unauthorizedCandidate("https://evil.example/x.js"))
	require.NoError(t, err)
	assert.Nil(t, second)

	all, err := store.ListAlerts(ctx, ports.AlertFilter{StoreID: 1})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 2, all[0].Occurrences)

	// After resolution a new detection opens a fresh alert.
	resolved, err := m.Resolve(ctx, first.ID, "admin")
	require.NoError(t, err)
	require.NotNil(t, resolved)
	third, err := m.Raise(ctx, unauthorizedCandidate("https://evil.example/x.js"))
	require.NoError(t, err)
	assert.NotNil(t, third)
}

func TestRaise_ConcurrentDetectionsCreateOneAlert(t *testing.T) {
	m, store, _ := setupManager(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Raise(ctx, unauthorizedCandidate("https://evil.example/x.js"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := store.ListAlerts(ctx, ports.AlertFilter{StoreID: 1, UnresolvedOnly: true})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 8, all[0].Occurrences)
}

func TestResolve_AbsentOrAlreadyResolved(t *testing.T) {
	m, _, _ := setupManager(t)
	ctx := context.Background()
	a, err := m.Raise(ctx, unauthorizedCandidate("https://evil.example/x.js"))
	require.NoError(t, err)

	_, err = m.Resolve(ctx, a.ID, "admin")
	require.NoError(t, err)
	again, err := m.Resolve(ctx, a.ID, "admin")
	require.NoError(t, err)
	assert.Nil(t, again)
	missing, err := m.Resolve(ctx, "nope", "admin")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestEvaluateScan_ThrottlesEmailWithinWindow(t *testing.T) {
	m, store, n := setupManager(t)
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	l1 := scanLog(t, store, "https://evil.example/x.js")
	out, err := m.EvaluateScan(ctx, testStore, emailPolicy, l1)
	require.NoError(t, err)
	assert.Len(t, out.Created, 1)
	assert.True(t, out.Notified)
	assert.True(t, l1.AlertSent)

	now = now.Add(time.Hour)
	l2 := scanLog(t, store, "https://evil.example/x.js")
	out, err = m.EvaluateScan(ctx, testStore, emailPolicy, l2)
	require.NoError(t, err)
	assert.Empty(t, out.Created)
	assert.Equal(t, 1, out.Suppressed)
	assert.False(t, out.Notified)
	assert.Equal(t, 1, n.unauthorized)

	// Once the window has passed the same script may email again.
	now = now.Add(24 * time.Hour)
	out, err = m.EvaluateScan(ctx, testStore, emailPolicy, scanLog(t, store, "https://evil.example/x.js"))
	require.NoError(t, err)
	assert.True(t, out.Notified)
	assert.Equal(t, 2, n.unauthorized)
}

func TestEvaluateScan_ThrottleSurvivesResolution(t *testing.T) {
	m, store, n := setupManager(t)
	ctx := context.Background()
	now := time.Now()
	m.now = func() time.Time { return now }

	out, err := m.EvaluateScan(ctx, testStore, emailPolicy, scanLog(t, store, "https://evil.example/x.js"))
	require.NoError(t, err)
	_, err = m.Resolve(ctx, out.Created[0].ID, "admin")
	require.NoError(t, err)

	now = now.Add(time.Hour)
	out, err = m.EvaluateScan(ctx, testStore, emailPolicy, scanLog(t, store, "https://evil.example/x.js"))
	require.NoError(t, err)
	assert.Len(t, out.Created, 1)
	assert.False(t, out.Notified)
	assert.Equal(t, 1, n.unauthorized)
}

func TestEvaluateScan_OneEmailPerScan(t *testing.T) {
	m, store, n := setupManager(t)
	ctx := context.Background()
	l := scanLog(t, store, "https://evil.example/x.js", "inline-script-0123456789abcdef")

	out, err := m.EvaluateScan(ctx, testStore, emailPolicy, l)
	require.NoError(t, err)
	assert.Len(t, out.Created, 2)
	assert.True(t, out.Notified)
	assert.Equal(t, 1, n.unauthorized)

	all, err := store.ListAlerts(ctx, ports.AlertFilter{StoreID: 1})
	require.NoError(t, err)
	for _, a := range all {
		assert.True(t, a.EmailSent)
		assert.NotNil(t, a.EmailSentAt)
	}
}

func TestEvaluateScan_PolicyGates(t *testing.T) {
	m, store, n := setupManager(t)
	ctx := context.Background()

	for _, p := range []Policy{
		{EnableEmailAlerts: false, AlertEmail: "sec@example.com", MaxAlertFrequencyHours: 24},
		{EnableEmailAlerts: true, AlertEmail: "", MaxAlertFrequencyHours: 24},
	} {
		out, err := m.EvaluateScan(ctx, testStore, p, scanLog(t, store, "https://evil.example/x.js"))
		require.NoError(t, err)
		assert.False(t, out.Notified)
	}
	assert.Equal(t, 0, n.unauthorized)

	clean, err := m.EvaluateScan(ctx, testStore, emailPolicy, scanLog(t, store))
	require.NoError(t, err)
	assert.Empty(t, clean.Created)
	assert.False(t, clean.Notified)
}

func TestEvaluateScan_NotifierFailureIsSwallowed(t *testing.T) {
	m, store, n := setupManager(t)
	n.fail = true
	ctx := context.Background()
	l := scanLog(t, store, "https://evil.example/x.js")

	out, err := m.EvaluateScan(ctx, testStore, emailPolicy, l)
	require.NoError(t, err)
	assert.False(t, out.Notified)
	assert.False(t, l.AlertSent)

	// The failed send does not start the throttle window.
	n.fail = false
	out, err = m.EvaluateScan(ctx, testStore, emailPolicy, scanLog(t, store, "https://evil.example/x.js"))
	require.NoError(t, err)
	assert.True(t, out.Notified)
}

func TestNotifyCSPViolation_Throttled(t *testing.T) {
	m, _, n := setupManager(t)
	ctx := context.Background()
	c := Candidate{StoreID: 1, Type: domain.AlertCSPViolation, ScriptURL: "https://evil.example/x.js", Details: []byte(`{"blockedURI":"https://evil.example/x.js"}`)}

	a, err := m.Raise(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelWarning, a.Level)
	assert.True(t, m.NotifyCSPViolation(ctx, testStore, emailPolicy, a))
	assert.True(t, a.EmailSent)

	dup, _, err := m.Track(ctx, c)
	require.NoError(t, err)
	assert.False(t, m.NotifyCSPViolation(ctx, testStore, emailPolicy, dup))
	assert.Equal(t, 1, n.csp)
}

func TestNotifyExpiredScripts(t *testing.T) {
	m, _, n := setupManager(t)
	ctx := context.Background()
	assert.False(t, m.NotifyExpiredScripts(ctx, testStore, emailPolicy, nil))
	assert.True(t, m.NotifyExpiredScripts(ctx, testStore, emailPolicy, []domain.AuthorizedScript{{URL: "https://cdn.example.com/a.js"}}))
	assert.Equal(t, 1, n.expired)
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, domain.LevelCritical, LevelFor(domain.AlertIntegrityFailure, domain.IntegrityHashMismatch))
	assert.Equal(t, domain.LevelWarning, LevelFor(domain.AlertIntegrityFailure, domain.IntegrityMissingSRI))
	assert.Equal(t, domain.LevelWarning, LevelFor(domain.AlertCSPViolation, ""))
}
