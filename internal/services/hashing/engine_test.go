package hashing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scriptguard/internal/domain"
)

func TestEngine_FetchAndHash_CachesResult(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("console.log('ok')"))
	}))
	defer srv.Close()

	e := NewEngine(srv.Client(), NewCache(0, nil), time.Second, nil)
	ctx := context.Background()

	sri, err := e.FetchAndHash(ctx, srv.URL+"/a.js", SHA384)
	require.NoError(t, err)
	assert.Equal(t, SRIString(SHA384, Hash([]byte("console.log('ok')"), SHA384)), sri)

	again, err := e.FetchAndHash(ctx, srv.URL+"/a.js", SHA384)
	require.NoError(t, err)
	assert.Equal(t, sri, again)
	assert.Equal(t, int32(1), hits.Load())

	_, err = e.FetchFresh(ctx, srv.URL+"/a.js", SHA384)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestEngine_FetchAndHash_NonSuccessIsFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewEngine(srv.Client(), nil, time.Second, nil)
	_, err := e.FetchAndHash(context.Background(), srv.URL+"/missing.js", SHA256)
	require.Error(t, err)
	assert.Equal(t, domain.KindTransientFetch, domain.KindOf(err))
}

func TestEngine_FetchAndHash_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/a.js"
	srv.Close()

	e := NewEngine(nil, nil, 500*time.Millisecond, nil)
	_, err := e.FetchAndHash(context.Background(), url, SHA384)
	require.Error(t, err)
	assert.Equal(t, domain.KindTransientFetch, domain.KindOf(err))
}

func TestEngine_FetchAndHash_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	e := NewEngine(srv.Client(), nil, 50*time.Millisecond, nil)
	_, err := e.FetchAndHash(context.Background(), srv.URL, SHA384)
	require.Error(t, err)
	assert.Equal(t, domain.KindTransientFetch, domain.KindOf(err))
}

func TestEngine_HashFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "monitor.js")
	require.NoError(t, os.WriteFile(path, []byte("var a = 1;"), 0o644))

	e := NewEngine(nil, nil, 0, nil)
	sri, err := e.HashFile(path, SHA512)
	require.NoError(t, err)
	assert.Equal(t, SRIString(SHA512, Hash([]byte("var a = 1;"), SHA512)), sri)

	_, err = e.HashFile(filepath.Join(dir, "missing.js"), SHA512)
	require.Error(t, err)
	assert.Equal(t, domain.KindHashCompute, domain.KindOf(err))
}
