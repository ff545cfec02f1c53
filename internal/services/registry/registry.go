// Package registry is the per-store allow-list of authorized scripts.
package registry

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/ports"
	"scriptguard/internal/services/hashing"
)

var ErrInvalidScriptURL = errors.New("script url must be an absolute http(s) url")

type Registry struct {
	scripts ports.ScriptRepository
	hasher  *hashing.Engine
	logger  *zap.Logger
	now     func() time.Time
}

func New(scripts ports.ScriptRepository, hasher *hashing.Engine, logger *zap.Logger) *Registry {
	return &Registry{scripts: scripts, hasher: hasher, logger: logging.OrNop(logger), now: time.Now}
}

// IsAuthorized reports whether an active entry exists for exactly this URL.
// Matching is scheme and path sensitive; domains are never trusted wholesale.
func (r *Registry) IsAuthorized(ctx context.Context, scriptURL string, storeID int) (bool, error) {
	s, err := r.Lookup(ctx, scriptURL, storeID)
	if err != nil {
		return false, err
	}
	return s != nil, nil
}

// Lookup returns the active entry for scriptURL, or nil.
func (r *Registry) Lookup(ctx context.Context, scriptURL string, storeID int) (*domain.AuthorizedScript, error) {
	s, err := r.scripts.FindScriptByURL(ctx, storeID, scriptURL)
	if err != nil {
		return nil, domain.NewError(domain.KindPersistence, "lookup authorized script", err)
	}
	if s == nil || !s.IsActive {
		return nil, nil
	}
	return s, nil
}

// FindByDomain lists active scripts served from host or any of its subdomains.
func (r *Registry) FindByDomain(ctx context.Context, host string, storeID int) ([]domain.AuthorizedScript, error) {
	host = strings.ToLower(strings.TrimSpace(host))
	active := true
	all, err := r.scripts.ListScripts(ctx, ports.ScriptFilter{StoreID: storeID, Active: &active})
	if err != nil {
		return nil, err
	}
	var out []domain.AuthorizedScript
	for _, s := range all {
		if s.Domain == host || strings.HasSuffix(s.Domain, "."+host) {
			out = append(out, s)
		}
	}
	return out, nil
}

// FindExpired lists active scripts not verified within the last days.
func (r *Registry) FindExpired(ctx context.Context, days int, storeID int) ([]domain.AuthorizedScript, error) {
	cutoff := r.now().AddDate(0, 0, -days)
	return r.scripts.ListScriptsVerifiedBefore(ctx, storeID, cutoff)
}

func (r *Registry) Active(ctx context.Context, storeID int) ([]domain.AuthorizedScript, error) {
	active := true
	return r.scripts.ListScripts(ctx, ports.ScriptFilter{StoreID: storeID, Active: &active})
}

// GenerateHash fetches scriptURL and returns its bare base64 digest.
func (r *Registry) GenerateHash(ctx context.Context, scriptURL string, alg hashing.Algorithm) (string, error) {
	sri, err := r.hasher.FetchFresh(ctx, scriptURL, alg)
	if err != nil {
		return "", err
	}
	_, digest, _ := hashing.ParseSRI(sri)
	return digest, nil
}

// ValidateIntegrity compares the live content hash with expected, which may be
// a bare digest or an SRI string. Fetch failures count as invalid.
func (r *Registry) ValidateIntegrity(ctx context.Context, scriptURL, expected string, alg hashing.Algorithm) bool {
	if a, _, ok := hashing.ParseSRI(expected); ok {
		alg = a
	}
	current, err := r.GenerateHash(ctx, scriptURL, alg)
	if err != nil {
		r.logger.Warn("integrity check could not hash script", zap.String("url", scriptURL), zap.Error(err))
		return false
	}
	return MatchDigest(expected, current)
}

// MatchDigest compares an expected digest (bare or SRI) with a bare digest.
func MatchDigest(expected, current string) bool {
	if _, d, ok := hashing.ParseSRI(expected); ok {
		expected = d
	}
	return expected != "" && strings.EqualFold(strings.TrimSpace(expected), current)
}

// UpdateHash stores a new declared hash and marks the script verified.
func (r *Registry) UpdateHash(ctx context.Context, scriptID, newHash string) error {
	s, err := r.scripts.GetScript(ctx, scriptID)
	if err != nil {
		return err
	}
	if _, d, ok := hashing.ParseSRI(newHash); ok {
		newHash = d
	}
	if err := r.scripts.UpdateScriptHash(ctx, scriptID, newHash, r.now()); err != nil {
		return err
	}
	r.hasher.Invalidate(s.URL)
	r.logger.Info("script hash updated", zap.String("scriptId", scriptID), zap.String("url", s.URL))
	return nil
}

// MarkVerified bumps last-verified-at without touching the hash.
func (r *Registry) MarkVerified(ctx context.Context, scriptID string) error {
	return r.scripts.TouchScript(ctx, scriptID, r.now())
}

// AuthorizeRequest describes a new allow-list entry.
type AuthorizeRequest struct {
	StoreID       int
	URL           string
	Purpose       string
	Justification string
	RiskLevel     domain.RiskLevel
	Source        domain.ScriptSource
	AuthorizedBy  string
	// Hash is an optional declared digest (bare or SRI). When empty and
	// ComputeHash is set, the live content is hashed.
	Hash          string
	HashAlgorithm hashing.Algorithm
	ComputeHash   bool
}

// Authorize adds a script to the store's allow-list.
func (r *Registry) Authorize(ctx context.Context, req AuthorizeRequest) (*domain.AuthorizedScript, error) {
	host, err := ScriptHost(req.URL)
	if err != nil {
		return nil, err
	}
	alg := hashing.ParseAlgorithm(string(req.HashAlgorithm))
	hash := strings.TrimSpace(req.Hash)
	if a, d, ok := hashing.ParseSRI(hash); ok {
		alg, hash = a, d
	}
	if hash == "" && req.ComputeHash {
		if hash, err = r.GenerateHash(ctx, req.URL, alg); err != nil {
			return nil, fmt.Errorf("hash %s: %w", req.URL, err)
		}
	}
	risk := req.RiskLevel
	if risk == 0 {
		risk = domain.RiskMedium
	}
	source := req.Source
	if source == "" {
		source = domain.SourceThirdParty
	}
	now := r.now()
	s := &domain.AuthorizedScript{
		ID:             uuid.NewString(),
		StoreID:        req.StoreID,
		URL:            req.URL,
		Domain:         host,
		Hash:           hash,
		HashAlgorithm:  string(alg),
		Purpose:        req.Purpose,
		Justification:  req.Justification,
		RiskLevel:      risk,
		IsActive:       true,
		Source:         source,
		AuthorizedBy:   req.AuthorizedBy,
		AuthorizedAt:   now,
		LastVerifiedAt: now,
	}
	if err := r.scripts.CreateScript(ctx, s); err != nil {
		return nil, err
	}
	r.logger.Info("script authorized",
		zap.Int("storeId", s.StoreID), zap.String("url", s.URL), zap.String("risk", risk.String()))
	return s, nil
}

func (r *Registry) Deactivate(ctx context.Context, scriptID string) error {
	return r.scripts.SetScriptActive(ctx, scriptID, false)
}

// ActiveOrigins returns the distinct scheme://host origins of active scripts
// in authorization order.
func (r *Registry) ActiveOrigins(ctx context.Context, storeID int) ([]string, error) {
	scripts, err := r.Active(ctx, storeID)
	if err != nil {
		return nil, err
	}
	var out []string
	seen := make(map[string]bool, len(scripts))
	for _, s := range scripts {
		o, ok := Origin(s.URL)
		if !ok || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out, nil
}

// ScriptHost validates an absolute http(s) URL and returns its lower-cased host.
func ScriptHost(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return "", ErrInvalidScriptURL
	}
	return strings.ToLower(u.Hostname()), nil
}

// Origin returns scheme://host[:port] of an absolute URL.
func Origin(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme + "://" + u.Host), true
}

// RegistrableDomain reduces a host to its eTLD+1, or returns it unchanged.
func RegistrableDomain(host string) string {
	host = strings.ToLower(host)
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return d
}
