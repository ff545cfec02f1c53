package integrity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"scriptguard/internal/services/hashing"
)

func newVerifier() *Verifier {
	return New(hashing.NewEngine(nil, nil, time.Second, nil), nil)
}

func scriptServer(body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func TestVerify_MissingIntegrityIsInvalid(t *testing.T) {
	res := newVerifier().Verify(context.Background(), "https://cdn.example.com/a.js", "")
	assert.False(t, res.IsValid)
	assert.Equal(t, ReasonMissing, res.Error)
}

func TestVerify_Match(t *testing.T) {
	srv := scriptServer("var ok = true;")
	defer srv.Close()
	declared := hashing.SRIString(hashing.SHA384, hashing.Hash([]byte("var ok = true;"), hashing.SHA384))

	res := newVerifier().Verify(context.Background(), srv.URL+"/a.js", declared)
	assert.True(t, res.IsValid)
	assert.Empty(t, res.Error)
	assert.Equal(t, declared, res.CurrentHash)
	assert.Equal(t, declared, res.ExpectedHash)
}

func TestVerify_AnyOfSeveralHashes(t *testing.T) {
	srv := scriptServer("x")
	defer srv.Close()
	declared := "sha256-" + hashing.Hash([]byte("other"), hashing.SHA256) +
		" sha512-" + hashing.Hash([]byte("x"), hashing.SHA512)

	res := newVerifier().Verify(context.Background(), srv.URL, declared)
	assert.True(t, res.IsValid)
}

func TestVerify_Mismatch(t *testing.T) {
	srv := scriptServer("changed")
	defer srv.Close()
	declared := hashing.SRIString(hashing.SHA384, hashing.Hash([]byte("original"), hashing.SHA384))

	res := newVerifier().Verify(context.Background(), srv.URL, declared)
	assert.False(t, res.IsValid)
	assert.Equal(t, ReasonMismatch, res.Error)
	assert.NotEqual(t, res.ExpectedHash, res.CurrentHash)
}

func TestVerify_InvalidFormat(t *testing.T) {
	res := newVerifier().Verify(context.Background(), "https://cdn.example.com/a.js", "md5-abc")
	assert.False(t, res.IsValid)
	assert.True(t, IsFormatError(res))
}

func TestVerify_FetchFailure(t *testing.T) {
	srv := scriptServer("")
	target := srv.URL
	srv.Close()

	res := newVerifier().Verify(context.Background(), target, "sha384-"+hashing.Hash([]byte("x"), hashing.SHA384))
	assert.False(t, res.IsValid)
	assert.Contains(t, res.Error, "could not generate hash for script")
}

func TestVerify_SeesContentChangedAfterCaching(t *testing.T) {
	var body atomic.Value
	body.Store("var ok = true;")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	defer srv.Close()

	hasher := hashing.NewEngine(srv.Client(), hashing.NewCache(time.Hour, nil), time.Second, nil)
	v := New(hasher, nil)
	declared := hashing.SRIString(hashing.SHA384, hashing.Hash([]byte("var ok = true;"), hashing.SHA384))

	// Warm the cache the way SRI issuance does.
	_, err := hasher.FetchAndHash(context.Background(), srv.URL+"/a.js", hashing.SHA384)
	assert.NoError(t, err)
	assert.True(t, v.Verify(context.Background(), srv.URL+"/a.js", declared).IsValid)

	body.Store("steal(card)")
	res := v.Verify(context.Background(), srv.URL+"/a.js", declared)
	assert.False(t, res.IsValid)
	assert.Equal(t, ReasonMismatch, res.Error)
}
