// Package integrity checks declared Subresource Integrity values against the
// content a script host currently serves.
package integrity

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
	"scriptguard/internal/services/hashing"
)

const (
	ReasonMissing       = "no integrity attribute present"
	ReasonMismatch      = "hash mismatch - content may have changed"
	ReasonInvalidFormat = "invalid integrity format"
)

type Verifier struct {
	hasher *hashing.Engine
	logger *zap.Logger
}

func New(hasher *hashing.Engine, logger *zap.Logger) *Verifier {
	return &Verifier{hasher: hasher, logger: logging.OrNop(logger)}
}

// Verify never fails: every problem is reported as an invalid result with a
// reason. An empty declaration is invalid, not "not applicable".
func (v *Verifier) Verify(ctx context.Context, scriptURL, declared string) domain.SRIValidationResult {
	res := domain.SRIValidationResult{ScriptURL: scriptURL, ExpectedHash: strings.TrimSpace(declared)}
	if res.ExpectedHash == "" {
		res.Error = ReasonMissing
		return res
	}

	// A declaration may list several hashes; any match is enough.
	type token struct {
		alg    hashing.Algorithm
		digest string
	}
	var tokens []token
	for _, f := range strings.Fields(res.ExpectedHash) {
		if alg, digest, ok := hashing.ParseSRI(f); ok {
			tokens = append(tokens, token{alg, digest})
		}
	}
	if len(tokens) == 0 {
		res.Error = ReasonInvalidFormat
		return res
	}

	for i, t := range tokens {
		// The first hash refetches; further algorithms reuse that fetch's
		// freshly emptied cache slot.
		fetch := v.hasher.FetchAndHash
		if i == 0 {
			fetch = v.hasher.FetchFresh
		}
		current, err := fetch(ctx, scriptURL, t.alg)
		if err != nil {
			v.logger.Warn("sri verification could not hash script",
				zap.String("url", scriptURL), zap.Error(err))
			res.Error = fmt.Sprintf("could not generate hash for script: %v", err)
			return res
		}
		if res.CurrentHash == "" {
			res.CurrentHash = current
		}
		if strings.EqualFold(current, hashing.SRIString(t.alg, t.digest)) {
			res.CurrentHash = current
			res.IsValid = true
			return res
		}
	}
	res.Error = ReasonMismatch
	return res
}

// IsFormatError reports whether a result failed because the declaration
// could not be parsed.
func IsFormatError(r domain.SRIValidationResult) bool {
	return !r.IsValid && r.Error == ReasonInvalidFormat
}
