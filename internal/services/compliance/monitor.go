package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/integrity"
)

// Browser-reported violation types.
const (
	ViolationUnauthorizedScript = "unauthorized-script"
	ViolationMissingSRI         = "missing-sri-hash"
	ViolationInvalidSRIFormat   = "invalid-sri-format"
)

var ErrUnknownViolation = errors.New("unknown violation type")

// ValidateScript answers whether scriptURL is on the store's allow-list.
func (e *Engine) ValidateScript(ctx context.Context, storeID int, scriptURL string) (bool, error) {
	return e.Registry.IsAuthorized(ctx, strings.TrimSpace(scriptURL), storeID)
}

// SRICheck is the combined authorization and integrity verdict for one script.
type SRICheck struct {
	IsAuthorized bool   `json:"isAuthorized"`
	HasValidSRI  bool   `json:"hasValidSRI"`
	SRIError     string `json:"sriError,omitempty"`
}

// ValidateScriptWithSRI checks authorization and, independently, the declared
// integrity of scriptURL for the given store.
func (e *Engine) ValidateScriptWithSRI(ctx context.Context, storeID int, scriptURL, declared string) (SRICheck, error) {
	scriptURL = strings.TrimSpace(scriptURL)
	ok, err := e.Registry.IsAuthorized(ctx, scriptURL, storeID)
	if err != nil {
		return SRICheck{}, err
	}
	res := e.Verifier.Verify(ctx, scriptURL, declared)
	return SRICheck{IsAuthorized: ok, HasValidSRI: res.IsValid, SRIError: res.Error}, nil
}

// ClientReport is the script inventory the browser monitor observed.
type ClientReport struct {
	Scripts   []string
	PageURL   string
	UserAgent string
	Timestamp time.Time
}

type ClientReportResult struct {
	UnauthorizedCount   int      `json:"unauthorizedCount"`
	UnauthorizedScripts []string `json:"unauthorizedScripts"`
	LogID               string   `json:"logId,omitempty"`
}

// ProcessClientReport classifies browser-observed scripts, records them as a
// client-report log and raises alerts for the unauthorized ones.
func (e *Engine) ProcessClientReport(ctx context.Context, storeID int, r ClientReport) (ClientReportResult, error) {
	now := e.now()
	l := &domain.MonitoringLog{
		ID:                  uuid.NewString(),
		StoreID:             storeID,
		PageURL:             r.PageURL,
		DetectedScripts:     []string{},
		UnauthorizedScripts: []string{},
		Headers:             map[string]string{},
		CheckType:           domain.CheckClientReport,
		CheckedAt:           now,
	}
	seen := make(map[string]bool, len(r.Scripts))
	for _, s := range r.Scripts {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		l.DetectedScripts = append(l.DetectedScripts, s)
		ok, err := e.Registry.IsAuthorized(ctx, s, storeID)
		if err != nil {
			return ClientReportResult{}, err
		}
		if ok {
			l.AuthorizedScriptsCount++
		} else {
			l.UnauthorizedScripts = append(l.UnauthorizedScripts, s)
		}
	}
	l.TotalScriptsFound = len(l.DetectedScripts)
	l.UnauthorizedScriptsCount = len(l.UnauthorizedScripts)
	l.HasUnauthorizedScripts = l.UnauthorizedScriptsCount > 0
	l.DurationMs = time.Since(now).Milliseconds()

	if err := e.Logs.InsertLog(ctx, l); err != nil {
		return ClientReportResult{}, domain.NewError(domain.KindPersistence, "insert client report log", err)
	}
	out := ClientReportResult{
		UnauthorizedCount:   l.UnauthorizedScriptsCount,
		UnauthorizedScripts: l.UnauthorizedScripts,
		LogID:               l.ID,
	}
	store, settings := e.storeContext(ctx, storeID)
	if _, err := e.Alerts.EvaluateScan(ctx, store, alerts.PolicyFrom(settings), l); err != nil {
		return out, err
	}
	if l.HasUnauthorizedScripts {
		e.logger.Info("client reported unauthorized scripts",
			zap.Int("storeId", storeID), zap.String("pageUrl", r.PageURL),
			zap.Int("unauthorized", l.UnauthorizedScriptsCount), zap.String("userAgent", r.UserAgent))
	}
	return out, nil
}

// Violation is a single finding reported by the browser monitor.
type Violation struct {
	Type      string
	ScriptURL string
	PageURL   string
	Timestamp time.Time
	UserAgent string
}

// ReportViolation maps a browser violation onto the alert taxonomy. It
// returns nil when the violation is already tracked by an unresolved alert.
func (e *Engine) ReportViolation(ctx context.Context, storeID int, v Violation) (*domain.ComplianceAlert, error) {
	details := map[string]any{
		"violationType": v.Type,
		"pageUrl":       v.PageURL,
		"userAgent":     v.UserAgent,
		"reportedAt":    v.Timestamp,
	}
	var c alerts.Candidate
	switch v.Type {
	case ViolationUnauthorizedScript:
		c = alerts.Candidate{
			Type:    domain.AlertUnauthorizedScript,
			Level:   alerts.LevelFor(domain.AlertUnauthorizedScript, ""),
			Message: fmt.Sprintf("Browser reported unauthorized script on %s: %s", v.PageURL, v.ScriptURL),
		}
	case ViolationMissingSRI:
		details["subtype"] = domain.IntegrityMissingSRI
		details["reason"] = integrity.ReasonMissing
		c = alerts.Candidate{
			Type:    domain.AlertIntegrityFailure,
			Level:   alerts.LevelFor(domain.AlertIntegrityFailure, domain.IntegrityMissingSRI),
			Message: fmt.Sprintf("Script integrity check failed (%s): %s", domain.IntegrityMissingSRI, v.ScriptURL),
		}
	case ViolationInvalidSRIFormat:
		details["subtype"] = domain.IntegrityInvalidSRIFormat
		details["reason"] = integrity.ReasonInvalidFormat
		c = alerts.Candidate{
			Type:    domain.AlertIntegrityFailure,
			Level:   alerts.LevelFor(domain.AlertIntegrityFailure, domain.IntegrityInvalidSRIFormat),
			Message: fmt.Sprintf("Script integrity check failed (%s): %s", domain.IntegrityInvalidSRIFormat, v.ScriptURL),
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownViolation, v.Type)
	}
	c.StoreID = storeID
	c.ScriptURL = strings.TrimSpace(v.ScriptURL)
	c.PageURL = v.PageURL
	c.Details, _ = json.Marshal(details)
	return e.Alerts.Raise(ctx, c)
}

// CSPViolation mirrors the browser's csp-report body.
type CSPViolation struct {
	BlockedURI         string `json:"blockedURI"`
	ViolatedDirective  string `json:"violatedDirective"`
	EffectiveDirective string `json:"effectiveDirective"`
	SourceFile         string `json:"sourceFile,omitempty"`
	LineNumber         int    `json:"lineNumber,omitempty"`
	ColumnNumber       int    `json:"columnNumber,omitempty"`
}

type CSPReport struct {
	Violation CSPViolation `json:"violation"`
	PageURL   string       `json:"pageUrl"`
	Timestamp time.Time    `json:"timestamp"`
	UserAgent string       `json:"userAgent"`
}

// ReportCSPViolation records a csp-violation alert keyed by the blocked URI
// and emails it subject to the frequency window. It returns nil when the
// violation was already tracked.
func (e *Engine) ReportCSPViolation(ctx context.Context, storeID int, r CSPReport) (*domain.ComplianceAlert, error) {
	details, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode csp report: %w", err)
	}
	directive := r.Violation.EffectiveDirective
	if directive == "" {
		directive = r.Violation.ViolatedDirective
	}
	a, created, err := e.Alerts.Track(ctx, alerts.Candidate{
		StoreID:   storeID,
		Type:      domain.AlertCSPViolation,
		Level:     alerts.LevelFor(domain.AlertCSPViolation, ""),
		ScriptURL: r.Violation.BlockedURI,
		PageURL:   r.PageURL,
		Message:   fmt.Sprintf("CSP violation on %s: %s blocked %s", r.PageURL, directive, r.Violation.BlockedURI),
		Details:   details,
	})
	if err != nil {
		return nil, err
	}
	store, settings := e.storeContext(ctx, storeID)
	e.Alerts.NotifyCSPViolation(ctx, store, alerts.PolicyFrom(settings), a)
	if !created {
		return nil, nil
	}
	return a, nil
}
