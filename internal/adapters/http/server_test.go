package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/adapters/notify"
	"scriptguard/internal/adapters/sqlite"
	"scriptguard/internal/config"
	"scriptguard/internal/metrics"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/compliance"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/integrity"
	"scriptguard/internal/services/pagescan"
	"scriptguard/internal/services/registry"
	"scriptguard/internal/services/reports"
	"scriptguard/internal/services/scanner"
	"scriptguard/internal/workers/scanrunner"
)

const checkoutPage = `<html><head>
<script src="/assets/app.js"></script>
<script src="https://evil.example/skim.js"></script>
</head><body></body></html>`

type testAPI struct {
	handler  http.Handler
	site     *httptest.Server
	registry *registry.Registry
	store    *sqlite.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	site := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/checkout":
			_, _ = w.Write([]byte(checkoutPage))
		case "/assets/app.js":
			_, _ = w.Write([]byte("app()"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(site.Close)

	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(store.Close)

	settings := config.NewSettingsStore([]config.StoreConfig{{
		ID: 1, Name: "Demo Shop", URL: site.URL, MonitoredPages: "/checkout",
		EnableEmailAlerts: true, AlertEmail: "sec@example.com",
	}})
	m := metrics.New()
	hasher := hashing.NewEngine(site.Client(), hashing.NewCache(time.Hour, m), time.Second, nil)
	reg := registry.New(store, hasher, nil)
	alertMgr := alerts.New(store, store, notify.NewLog(nil), m, nil)
	engine := compliance.New(compliance.Deps{
		Scanner:  pagescan.New(site.Client(), time.Second, nil),
		Registry: reg,
		Verifier: integrity.New(hasher, nil),
		Hasher:   hasher,
		Alerts:   alertMgr,
		Reports:  reports.New(store, store, store),
		Logs:     store,
		Settings: settings,
		Metrics:  m,
	}, compliance.DefaultConfig())

	srv := New(Deps{
		Engine:    engine,
		Scans:     scanner.New(store, settings, nil),
		Jobs:      store,
		Processor: scanrunner.EngineProcessor{Engine: engine},
		Alerts:    alertMgr,
		Settings:  settings,
		Metrics:   m,
		ScanWait:  5 * time.Second,
	})
	return &testAPI{handler: srv.Routes(), site: site, registry: reg, store: store}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec.Code, out
}

func TestHealthzAndMetrics(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestValidateScript(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.registry.Authorize(context.Background(), registry.AuthorizeRequest{StoreID: 1, URL: "https://cdn.example.com/a.js"})
	require.NoError(t, err)

	code, body := api.do(t, http.MethodPost, "/api/stores/1/ValidateScript", map[string]string{"scriptUrl": "https://cdn.example.com/a.js"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["isAuthorized"])

	_, body = api.do(t, http.MethodPost, "/api/stores/1/ValidateScript", map[string]string{"scriptUrl": "https://evil.example/x.js"})
	assert.Equal(t, false, body["isAuthorized"])

	code, body = api.do(t, http.MethodPost, "/api/stores/1/ValidateScript", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, _ = api.do(t, http.MethodPost, "/api/stores/7/ValidateScript", map[string]string{"scriptUrl": "https://x"})
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = api.do(t, http.MethodPost, "/api/stores/abc/ValidateScript", map[string]string{"scriptUrl": "https://x"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestValidateScriptWithSRI_MissingIntegrity(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(t, http.MethodPost, "/api/stores/1/ValidateScriptWithSRI",
		map[string]string{"scriptUrl": api.site.URL + "/assets/app.js"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["isAuthorized"])
	assert.Equal(t, false, body["hasValidSRI"])
	assert.Equal(t, integrity.ReasonMissing, body["sriError"])
}

func TestReportScriptsAndViolations(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(t, http.MethodPost, "/api/stores/1/ReportScripts", map[string]any{
		"scripts": []string{"https://evil.example/x.js"}, "pageUrl": "https://shop/checkout",
		"userAgent": "test", "timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["unauthorizedCount"])

	violation := map[string]any{"violationType": "missing-sri-hash", "scriptUrl": "https://cdn.example.com/lib.js", "pageUrl": "https://shop/checkout"}
	code, body = api.do(t, http.MethodPost, "/api/stores/1/ReportViolation", violation)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, body["alertId"])
	_, body = api.do(t, http.MethodPost, "/api/stores/1/ReportViolation", violation)
	assert.Equal(t, true, body["duplicate"])

	code, body = api.do(t, http.MethodPost, "/api/stores/1/ReportViolation", map[string]any{"violationType": "nope"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])

	code, body = api.do(t, http.MethodPost, "/api/stores/1/ReportCSPViolation", map[string]any{
		"violation": map[string]any{"blockedURI": "https://evil.example/x.js", "violatedDirective": "script-src"},
		"pageUrl":   "https://shop/checkout",
	})
	assert.Equal(t, http.StatusOK, code)
	alertID, _ := body["alertId"].(string)
	require.NotEmpty(t, alertID)

	code, body = api.do(t, http.MethodPost, "/api/alerts/"+alertID+"/resolve", map[string]string{"resolvedBy": "admin"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["alert"].(map[string]any)["isResolved"])
	code, _ = api.do(t, http.MethodPost, "/api/alerts/"+alertID+"/resolve", map[string]string{"resolvedBy": "admin"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestScans_WaitAndStatus(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.registry.Authorize(context.Background(), registry.AuthorizeRequest{StoreID: 1, URL: api.site.URL + "/assets/app.js"})
	require.NoError(t, err)

	code, body := api.do(t, http.MethodPost, "/api/stores/1/scans?wait=true", map[string]string{"pageUrl": "/checkout"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body["summary"], "2 scripts found, 1 authorized, 1 unauthorized")
	jobID := body["jobId"].(string)

	code, body = api.do(t, http.MethodGet, "/api/scans/"+jobID, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "completed", body["job"].(map[string]any)["status"])

	code, body = api.do(t, http.MethodPost, "/api/stores/1/events/order-placed", map[string]string{})
	assert.Equal(t, http.StatusAccepted, code)
	assert.NotEmpty(t, body["jobId"])
	code, _ = api.do(t, http.MethodPost, "/api/stores/1/events/order-placed", map[string]string{})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = api.do(t, http.MethodGet, "/api/scans/missing", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestScans_UnreachablePageIsNotAnError(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(t, http.MethodPost, "/api/stores/1/scans?wait=true", map[string]string{"pageUrl": "/gone"})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["summary"], "could not be fetched")
}

func TestReportAndCSP(t *testing.T) {
	api := newTestAPI(t)
	_, err := api.registry.Authorize(context.Background(), registry.AuthorizeRequest{StoreID: 1, URL: "https://cdn.example.com/a.js"})
	require.NoError(t, err)

	code, body := api.do(t, http.MethodGet, "/api/stores/1/report?from=2024-01-01T00:00:00Z&to=2030-01-01T00:00:00Z", nil)
	assert.Equal(t, http.StatusOK, code)
	report := body["report"].(map[string]any)
	assert.Equal(t, float64(100), report["complianceScore"])

	code, _ = api.do(t, http.MethodGet, "/api/stores/1/report?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(t, http.MethodGet, "/api/stores/1/csp", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "script-src https://cdn.example.com 'self' 'unsafe-inline';", body["policy"])
}

func TestGenerateSRI_NotApplicable(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(t, http.MethodPost, "/api/stores/1/GenerateSRI", map[string]string{"scriptUrl": "https://js.stripe.com/v3/"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, false, body["success"])
}

func TestMalformedRequestsUseFailureEnvelope(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/stores/1/ValidateScript", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"success":false`)

	code, body := api.do(t, http.MethodPost, "/api/stores/1/scans?wait=maybe", map[string]string{"pageUrl": "/checkout"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "wait")

	code, body = api.do(t, http.MethodGet, "/api/stores/9/csp", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "unknown store", body["message"])

	code, body = api.do(t, http.MethodPost, "/api/stores/1/GenerateSRI", map[string]string{"scriptUrl": " "})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "scriptUrl is required", body["message"])

	code, _ = api.do(t, http.MethodPost, "/api/alerts/whatever/resolve", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestOrderPlaced_WaitReturnsResult(t *testing.T) {
	api := newTestAPI(t)
	code, body := api.do(t, http.MethodPost, "/api/stores/1/events/order-placed?wait=true&timeout=5", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["jobId"])
	log := body["log"].(map[string]any)
	assert.Equal(t, float64(2), log["totalScriptsFound"])
	assert.Len(t, log["unauthorizedScripts"], 2)
}
