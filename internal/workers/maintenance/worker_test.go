package maintenance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/adapters/sqlite"
	"scriptguard/internal/config"
	"scriptguard/internal/domain"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/registry"
)

type expiredNotifier struct {
	mu      sync.Mutex
	batches [][]domain.AuthorizedScript
}

func (n *expiredNotifier) SendUnauthorizedScriptAlert(context.Context, string, domain.MonitoringLog, string) error {
	return nil
}
func (n *expiredNotifier) SendCSPViolationAlert(context.Context, string, string, string) error {
	return nil
}
func (n *expiredNotifier) SendScriptChangeAlert(context.Context, string, string, string) error {
	return nil
}
func (n *expiredNotifier) SendExpiredScriptsAlert(_ context.Context, _ string, scripts []domain.AuthorizedScript, _ string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.batches = append(n.batches, scripts)
	return nil
}

type raised struct {
	storeID   int
	scriptURL string
	subcase   string
	details   map[string]any
}

type fakeRaiser struct{ calls []raised }

func (f *fakeRaiser) RaiseIntegrityFailure(_ context.Context, storeID int, scriptURL, subcase string, details map[string]any) (*domain.ComplianceAlert, error) {
	f.calls = append(f.calls, raised{storeID, scriptURL, subcase, details})
	return &domain.ComplianceAlert{StoreID: storeID, ScriptURL: scriptURL}, nil
}

func TestPass(t *testing.T) {
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/same.js":
			_, _ = w.Write([]byte("a()"))
		case "/changed.js":
			_, _ = w.Write([]byte("new()"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer site.Close()

	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()
	now := time.Now()
	stale := now.AddDate(0, 0, -60)

	add := func(path, hash string, verified time.Time) *domain.AuthorizedScript {
		s := &domain.AuthorizedScript{
			ID: uuid.NewString(), StoreID: 1, URL: site.URL + path, Domain: "127.0.0.1",
			Hash: hash, HashAlgorithm: string(hashing.SHA384), RiskLevel: domain.RiskLow,
			IsActive: true, Source: domain.SourceThirdParty, AuthorizedAt: stale, LastVerifiedAt: verified,
		}
		require.NoError(t, store.CreateScript(ctx, s))
		return s
	}
	same := add("/same.js", hashing.Hash([]byte("a()"), hashing.SHA384), stale)
	changed := add("/changed.js", hashing.Hash([]byte("old()"), hashing.SHA384), stale)
	add("/gone.js", "", stale)
	add("/fresh.js", "", now)

	require.NoError(t, store.InsertLog(ctx, &domain.MonitoringLog{ID: uuid.NewString(), StoreID: 1, PageURL: "p", CheckType: domain.CheckScheduled, CheckedAt: now.AddDate(0, 0, -100)}))
	require.NoError(t, store.InsertLog(ctx, &domain.MonitoringLog{ID: uuid.NewString(), StoreID: 1, PageURL: "p", CheckType: domain.CheckScheduled, CheckedAt: now}))

	old := &domain.ComplianceAlert{ID: uuid.NewString(), StoreID: 1, Type: domain.AlertCSPViolation, Level: domain.LevelWarning,
		ScriptURL: "https://x", Occurrences: 1, LastSeenAt: now.AddDate(0, 0, -40), CreatedAt: now.AddDate(0, 0, -40)}
	require.NoError(t, store.CreateAlert(ctx, old))
	_, err = store.ResolveAlert(ctx, old.ID, "admin", now.AddDate(0, 0, -35))
	require.NoError(t, err)

	settings := config.NewSettingsStore([]config.StoreConfig{
		{ID: 1, Name: "Shop", URL: site.URL, EnableEmailAlerts: true, AlertEmail: "sec@example.com"},
	})
	hasher := hashing.NewEngine(site.Client(), hashing.NewCache(time.Hour, nil), time.Second, nil)
	notifier := &expiredNotifier{}
	raiser := &fakeRaiser{}
	w := New(Deps{
		Settings:  settings,
		Registry:  registry.New(store, hasher, nil),
		Alerts:    alerts.New(store, store, notifier, nil, nil),
		Integrity: raiser,
		Logs:      store,
		AlertRepo: store,
	}, time.Hour)

	results, err := w.Pass(ctx)
	require.NoError(t, err)
	require.Len(t, results, 1)
	r := results[0]
	assert.Equal(t, 3, r.Expired)
	assert.True(t, r.Notified)
	assert.Equal(t, 1, r.Verified)
	assert.Equal(t, 1, r.Changed)
	assert.Equal(t, 1, r.Unreachable)
	assert.Equal(t, int64(1), r.LogsDeleted)
	assert.Equal(t, int64(1), r.AlertsDeleted)

	require.Len(t, notifier.batches, 1)
	assert.Len(t, notifier.batches[0], 3)

	require.Len(t, raiser.calls, 1)
	assert.Equal(t, changed.URL, raiser.calls[0].scriptURL)
	assert.Equal(t, domain.IntegrityHashMismatch, raiser.calls[0].subcase)
	assert.Equal(t, hashing.Hash([]byte("new()"), hashing.SHA384), raiser.calls[0].details["currentHash"])

	// The stored hash is left for an operator; only the matching script is refreshed.
	got, err := store.GetScript(ctx, changed.ID)
	require.NoError(t, err)
	assert.Equal(t, changed.Hash, got.Hash)
	got, err = store.GetScript(ctx, same.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), got.LastVerifiedAt, time.Minute)
}

func TestPass_SkipsDisabledStores(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	off := false
	w := New(Deps{
		Settings:  config.NewSettingsStore([]config.StoreConfig{{ID: 1, URL: "https://shop", Enabled: &off}}),
		Registry:  registry.New(store, hashing.NewEngine(http.DefaultClient, hashing.NewCache(time.Hour, nil), time.Second, nil), nil),
		Alerts:    alerts.New(store, store, &expiredNotifier{}, nil, nil),
		Integrity: &fakeRaiser{},
		Logs:      store,
		AlertRepo: store,
	}, time.Hour)

	results, err := w.Pass(context.Background())
	require.NoError(t, err)
	assert.Empty(t, results)
}
