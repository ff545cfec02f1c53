package compliance

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/config"
	"scriptguard/internal/domain"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/integrity"
	"scriptguard/internal/services/registry"
)

func TestValidateScript(t *testing.T) {
	f := newFixture(t, DefaultConfig(), nil)
	ctx := context.Background()
	_, err := f.registry.Authorize(ctx, registry.AuthorizeRequest{StoreID: 1, URL: "https://cdn.example.com/a.js"})
	require.NoError(t, err)

	ok, err := f.engine.ValidateScript(ctx, 1, " https://cdn.example.com/a.js ")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.engine.ValidateScript(ctx, 1, "https://cdn.example.com/b.js")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestValidateScriptWithSRI(t *testing.T) {
	f := newFixture(t, DefaultConfig(), nil)
	ctx := context.Background()
	f.setAsset("/a.js", "a()")
	scriptURL := f.site.URL + "/a.js"
	_, err := f.registry.Authorize(ctx, registry.AuthorizeRequest{StoreID: 1, URL: scriptURL})
	require.NoError(t, err)

	good := hashing.SRIString(hashing.SHA384, hashing.Hash([]byte("a()"), hashing.SHA384))
	res, err := f.engine.ValidateScriptWithSRI(ctx, 1, scriptURL, good)
	require.NoError(t, err)
	assert.True(t, res.IsAuthorized)
	assert.True(t, res.HasValidSRI)
	assert.Empty(t, res.SRIError)

	res, err = f.engine.ValidateScriptWithSRI(ctx, 1, scriptURL, "")
	require.NoError(t, err)
	assert.True(t, res.IsAuthorized)
	assert.False(t, res.HasValidSRI)
	assert.Equal(t, integrity.ReasonMissing, res.SRIError)

	// Store 2 has no allow-list entry for the script.
	res, err = f.engine.ValidateScriptWithSRI(ctx, 2, scriptURL, good)
	require.NoError(t, err)
	assert.False(t, res.IsAuthorized)
	assert.True(t, res.HasValidSRI)
}

func TestProcessClientReport(t *testing.T) {
	f := newFixture(t, DefaultConfig(), nil)
	ctx := context.Background()
	_, err := f.registry.Authorize(ctx, registry.AuthorizeRequest{StoreID: 1, URL: "https://cdn.example.com/a.js"})
	require.NoError(t, err)

	res, err := f.engine.ProcessClientReport(ctx, 1, ClientReport{
		Scripts:   []string{"https://cdn.example.com/a.js", "https://evil.example/x.js", "https://evil.example/x.js", ""},
		PageURL:   "https://shop.example.com/checkout",
		UserAgent: "test",
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.UnauthorizedCount)
	assert.Equal(t, []string{"https://evil.example/x.js"}, res.UnauthorizedScripts)

	logs, err := f.store.ListLogs(ctx, ports.LogFilter{StoreID: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, domain.CheckClientReport, logs[0].CheckType)
	assert.Equal(t, 2, logs[0].TotalScriptsFound)

	open, err := f.store.ListAlerts(ctx, ports.AlertFilter{StoreID: 1, UnresolvedOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestReportViolation_MapsTypes(t *testing.T) {
	f := newFixture(t, DefaultConfig(), nil)
	ctx := context.Background()

	cases := []struct {
		violation string
		alertType domain.AlertType
		level     domain.AlertLevel
		subtype   string
	}{
		{ViolationUnauthorizedScript, domain.AlertUnauthorizedScript, domain.LevelCritical, ""},
		{ViolationMissingSRI, domain.AlertIntegrityFailure, domain.LevelWarning, domain.IntegrityMissingSRI},
	}
	for i, c := range cases {
		a, err := f.engine.ReportViolation(ctx, 1, Violation{
			Type:      c.violation,
			ScriptURL: "https://evil.example/" + string(rune('a'+i)) + ".js",
			PageURL:   "https://shop.example.com/checkout",
			Timestamp: time.Now(),
		})
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, c.alertType, a.Type)
		assert.Equal(t, c.level, a.Level)
		if c.subtype != "" {
			var details map[string]any
			require.NoError(t, json.Unmarshal(a.Details, &details))
			assert.Equal(t, c.subtype, details["subtype"])
		}
	}

	// Same script reported twice is already tracked.
	v := Violation{Type: ViolationInvalidSRIFormat, ScriptURL: "https://evil.example/z.js"}
	first, err := f.engine.ReportViolation(ctx, 1, v)
	require.NoError(t, err)
	assert.NotNil(t, first)
	second, err := f.engine.ReportViolation(ctx, 1, v)
	require.NoError(t, err)
	assert.Nil(t, second)

	_, err = f.engine.ReportViolation(ctx, 1, Violation{Type: "bogus"})
	assert.ErrorIs(t, err, ErrUnknownViolation)
}

func TestReportCSPViolation(t *testing.T) {
	f := newFixture(t, DefaultConfig(), nil)
	ctx := context.Background()
	report := CSPReport{
		Violation: CSPViolation{
			BlockedURI:         "https://evil.example/x.js",
			ViolatedDirective:  "script-src",
			EffectiveDirective: "script-src-elem",
			SourceFile:         "https://shop.example.com/checkout",
			LineNumber:         12,
		},
		PageURL:   "https://shop.example.com/checkout",
		Timestamp: time.Now(),
	}

	a, err := f.engine.ReportCSPViolation(ctx, 1, report)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, domain.AlertCSPViolation, a.Type)
	assert.Equal(t, "https://evil.example/x.js", a.ScriptURL)
	var details CSPReport
	require.NoError(t, json.Unmarshal(a.Details, &details))
	assert.Equal(t, 12, details.Violation.LineNumber)

	dup, err := f.engine.ReportCSPViolation(ctx, 1, report)
	require.NoError(t, err)
	assert.Nil(t, dup)
	assert.Equal(t, 1, f.notifier.csp)
}

func TestBuildCSP(t *testing.T) {
	f := newFixture(t, DefaultConfig(), func(sc *config.StoreConfig) {
		sc.CSPPolicy = "default-src 'self'; script-src 'self';"
	})
	ctx := context.Background()
	for _, u := range []string{"https://cdn.example.com/a.js", "https://cdn.example.com/b.js", "https://js.stripe.com/v3/"} {
		_, err := f.registry.Authorize(ctx, registry.AuthorizeRequest{StoreID: 1, URL: u})
		require.NoError(t, err)
	}
	policy, err := f.engine.BuildCSP(ctx, 1)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(policy, "default-src 'self'; script-src https://"), policy)
	assert.True(t, strings.HasSuffix(policy, " 'self';"), policy)
	assert.Equal(t, 1, strings.Count(policy, "https://cdn.example.com"))
	assert.Contains(t, policy, "https://js.stripe.com")
}

func TestMergeScriptSources(t *testing.T) {
	assert.Equal(t,
		"script-src https://a.example 'self' 'unsafe-inline';",
		MergeScriptSources(DefaultCSPPolicy, []string{"https://a.example", "https://a.example"}))
	assert.Equal(t,
		"default-src 'self'; script-src 'self' 'unsafe-inline' https://a.example;",
		MergeScriptSources("default-src 'self';", []string{"https://a.example"}))
	assert.Equal(t,
		"script-src 'self' https://a.example;",
		MergeScriptSources("script-src 'self' https://a.example;;", []string{"https://a.example"}))
	assert.Equal(t, DefaultCSPPolicy, MergeScriptSources(DefaultCSPPolicy, nil))

	// An origin allowed by another directive still has to reach script-src.
	assert.Equal(t,
		"default-src 'self'; connect-src https://cdn.example.com; script-src https://cdn.example.com 'self';",
		MergeScriptSources("default-src 'self'; connect-src https://cdn.example.com; script-src 'self';", []string{"https://cdn.example.com"}))
	// script-src-elem is a different directive.
	assert.Equal(t,
		"script-src-elem 'self'; script-src https://a.example 'self';",
		MergeScriptSources("script-src-elem 'self'; script-src 'self';", []string{"https://a.example"}))
	assert.Equal(t,
		"script-src-elem 'self'; script-src 'self' 'unsafe-inline' https://a.example;",
		MergeScriptSources("script-src-elem 'self'", []string{"https://a.example"}))
}

func TestGenerateSRI_Eligibility(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TrustedCDNs = append(cfg.TrustedCDNs, "127.0.0.1")
	f := newFixture(t, cfg, nil)
	ctx := context.Background()
	f.setAsset("/lib.js", "lib()")

	issue, err := f.engine.GenerateSRI(ctx, f.site.URL+"/lib.js", hashing.SHA384)
	require.NoError(t, err)
	assert.Equal(t, hashing.SRIString(hashing.SHA384, hashing.Hash([]byte("lib()"), hashing.SHA384)), issue.Integrity)
	assert.Equal(t, "anonymous", issue.CrossOrigin)

	_, err = f.engine.GenerateSRI(ctx, "https://js.stripe.com/v3/", hashing.SHA384)
	assert.ErrorIs(t, err, ErrSRINotApplicable)
	_, err = f.engine.GenerateSRI(ctx, "https://random.example/x.js", hashing.SHA384)
	assert.ErrorIs(t, err, ErrSRINotApplicable)

	assert.True(t, f.engine.ShouldApplySRI("https://cdnjs.cloudflare.com/ajax/libs/jquery.js"))
	assert.True(t, f.engine.IsPaymentGateway("https://js.stripe.com/v3/"))
}
