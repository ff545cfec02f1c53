// Package hashing computes content digests and Subresource Integrity strings
// for local files and remotely fetched scripts.
package hashing

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"strings"
)

type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"

	DefaultAlgorithm = SHA384
)

// ParseAlgorithm normalises an algorithm name. Unknown names fall back to
// sha384 rather than failing.
func ParseAlgorithm(s string) Algorithm {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case SHA256:
		return SHA256
	case SHA512:
		return SHA512
	default:
		return SHA384
	}
}

// Hash returns the base64 digest of content.
func Hash(content []byte, alg Algorithm) string {
	switch ParseAlgorithm(string(alg)) {
	case SHA256:
		sum := sha256.Sum256(content)
		return base64.StdEncoding.EncodeToString(sum[:])
	case SHA512:
		sum := sha512.Sum512(content)
		return base64.StdEncoding.EncodeToString(sum[:])
	default:
		sum := sha512.Sum384(content)
		return base64.StdEncoding.EncodeToString(sum[:])
	}
}

// SRIString formats "algorithm-digest".
func SRIString(alg Algorithm, digest string) string {
	return string(ParseAlgorithm(string(alg))) + "-" + digest
}

// ParseSRI splits one integrity token into algorithm and digest. Options
// after '?' are dropped. Only sha256/384/512 are accepted.
func ParseSRI(token string) (Algorithm, string, bool) {
	token = strings.TrimSpace(token)
	if i := strings.IndexByte(token, '?'); i >= 0 {
		token = token[:i]
	}
	name, digest, ok := strings.Cut(token, "-")
	if !ok || digest == "" {
		return "", "", false
	}
	switch alg := Algorithm(strings.ToLower(name)); alg {
	case SHA256, SHA384, SHA512:
		if _, err := base64.StdEncoding.DecodeString(digest); err != nil {
			return "", "", false
		}
		return alg, digest, true
	default:
		return "", "", false
	}
}
