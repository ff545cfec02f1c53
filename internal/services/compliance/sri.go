package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"scriptguard/internal/domain"
	"scriptguard/internal/services/alerts"
	"scriptguard/internal/services/hashing"
	"scriptguard/internal/services/integrity"
	"scriptguard/internal/services/pagescan"
)

var ErrSRINotApplicable = errors.New("script is not eligible for automatic SRI")

// verifyScripts checks every external script that declares integrity and
// lists trusted CDN scripts that should but do not.
func (e *Engine) verifyScripts(ctx context.Context, scripts []pagescan.Script) ([]domain.SRIValidationResult, []string) {
	var declared []pagescan.Script
	var missing []string
	for _, s := range scripts {
		if s.Inline {
			continue
		}
		if s.Integrity != "" {
			declared = append(declared, s)
			continue
		}
		if e.ShouldApplySRI(s.Src) {
			missing = append(missing, s.Src)
		}
	}

	results := make([]domain.SRIValidationResult, len(declared))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.VerifyConcurrency)
	for i, s := range declared {
		g.Go(func() error {
			results[i] = e.Verifier.Verify(gctx, s.Src, s.Integrity)
			return nil
		})
	}
	_ = g.Wait()
	return results, missing
}

// raiseIntegrityFindings turns failed verifications and missing SRI into
// integrity-failure alerts. Verifications that failed only because the
// script could not be fetched are not findings.
func (e *Engine) raiseIntegrityFindings(ctx context.Context, store domain.Store, p alerts.Policy, pageURL string, results []domain.SRIValidationResult, missing []string) ([]domain.ComplianceAlert, error) {
	var created []domain.ComplianceAlert
	var errs []error
	raise := func(scriptURL, subcase, reason string, extra map[string]any) {
		details := map[string]any{"subtype": subcase, "pageUrl": pageURL, "reason": reason}
		for k, v := range extra {
			details[k] = v
		}
		a, err := e.raiseIntegrity(ctx, store, p, scriptURL, pageURL, subcase, details)
		if err != nil {
			errs = append(errs, err)
			return
		}
		if a != nil {
			created = append(created, *a)
		}
	}

	for _, r := range results {
		switch {
		case r.IsValid:
		case r.Error == integrity.ReasonMismatch:
			raise(r.ScriptURL, domain.IntegrityHashMismatch, r.Error,
				map[string]any{"expectedHash": r.ExpectedHash, "currentHash": r.CurrentHash})
		case integrity.IsFormatError(r):
			raise(r.ScriptURL, domain.IntegrityInvalidSRIFormat, r.Error,
				map[string]any{"expectedHash": r.ExpectedHash})
		default:
			e.logger.Warn("sri verification inconclusive",
				zap.String("scriptUrl", r.ScriptURL), zap.String("reason", r.Error))
		}
	}
	for _, u := range missing {
		raise(u, domain.IntegrityMissingSRI, integrity.ReasonMissing, nil)
	}
	return created, errors.Join(errs...)
}

// raiseIntegrity records an integrity-failure alert and, for hash mismatches,
// emails a script change notice subject to the usual throttle.
func (e *Engine) raiseIntegrity(ctx context.Context, store domain.Store, p alerts.Policy, scriptURL, pageURL, subcase string, details map[string]any) (*domain.ComplianceAlert, error) {
	blob, _ := json.Marshal(details)
	a, created, err := e.Alerts.Track(ctx, alerts.Candidate{
		StoreID:   store.ID,
		Type:      domain.AlertIntegrityFailure,
		Level:     alerts.LevelFor(domain.AlertIntegrityFailure, subcase),
		ScriptURL: scriptURL,
		PageURL:   pageURL,
		Message:   fmt.Sprintf("Script integrity check failed (%s): %s", subcase, scriptURL),
		Details:   blob,
	})
	if err != nil {
		return nil, err
	}
	if subcase == domain.IntegrityHashMismatch {
		e.Alerts.NotifyScriptChange(ctx, store, p, a)
	}
	if !created {
		return nil, nil
	}
	return a, nil
}

// RaiseIntegrityFailure records an integrity finding outside a page scan,
// e.g. when re-verification of an authorized script finds changed content.
func (e *Engine) RaiseIntegrityFailure(ctx context.Context, storeID int, scriptURL, subcase string, details map[string]any) (*domain.ComplianceAlert, error) {
	store, settings := e.storeContext(ctx, storeID)
	if details == nil {
		details = map[string]any{}
	}
	details["subtype"] = subcase
	return e.raiseIntegrity(ctx, store, alerts.PolicyFrom(settings), scriptURL, "", subcase, details)
}

// ShouldApplySRI reports whether scriptURL is served from a trusted CDN and
// not from a payment gateway.
func (e *Engine) ShouldApplySRI(scriptURL string) bool {
	u, err := url.Parse(scriptURL)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := u.Hostname()
	return e.trusted.contains(host) && !e.gateways.contains(host)
}

// IsPaymentGateway reports whether scriptURL belongs to a payment provider.
func (e *Engine) IsPaymentGateway(scriptURL string) bool {
	u, err := url.Parse(scriptURL)
	if err != nil {
		return false
	}
	return e.gateways.contains(u.Hostname())
}

// SRIIssue is the attribute pair to add to a script tag.
type SRIIssue struct {
	Integrity   string `json:"integrity"`
	CrossOrigin string `json:"crossorigin"`
}

// GenerateSRI computes the integrity attribute for an eligible script.
func (e *Engine) GenerateSRI(ctx context.Context, scriptURL string, alg hashing.Algorithm) (SRIIssue, error) {
	if !e.ShouldApplySRI(scriptURL) {
		return SRIIssue{}, ErrSRINotApplicable
	}
	sri, err := e.Hasher.FetchAndHash(ctx, scriptURL, alg)
	if err != nil {
		return SRIIssue{}, err
	}
	return SRIIssue{Integrity: sri, CrossOrigin: "anonymous"}, nil
}
