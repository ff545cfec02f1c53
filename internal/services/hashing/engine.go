package hashing

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
)

const maxScriptBytes = 10 << 20

// Engine hashes local files and remote scripts, caching SRI strings.
type Engine struct {
	client  *http.Client
	timeout time.Duration
	cache   *Cache
	logger  *zap.Logger
}

func NewEngine(client *http.Client, cache *Cache, timeout time.Duration, logger *zap.Logger) *Engine {
	if client == nil {
		client = http.DefaultClient
	}
	if cache == nil {
		cache = NewCache(0, nil)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Engine{client: client, timeout: timeout, cache: cache, logger: logging.OrNop(logger)}
}

// FetchAndHash fetches url and returns its SRI string, served from cache when
// possible. Fetch failures come back as *domain.Error; callers treat them as
// "SRI unavailable".
func (e *Engine) FetchAndHash(ctx context.Context, url string, alg Algorithm) (string, error) {
	alg = ParseAlgorithm(string(alg))
	return e.cache.GetOrCompute(ctx, url, alg, func(ctx context.Context) (string, error) {
		return e.fetch(ctx, url, alg)
	})
}

// FetchFresh ignores any cached value for url, refetches and refreshes the
// cache. Every algorithm's entry is dropped, so later FetchAndHash calls for
// other algorithms also see the new content.
func (e *Engine) FetchFresh(ctx context.Context, url string, alg Algorithm) (string, error) {
	alg = ParseAlgorithm(string(alg))
	e.cache.Invalidate(url)
	return e.FetchAndHash(ctx, url, alg)
}

func (e *Engine) fetch(ctx context.Context, url string, alg Algorithm) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", domain.NewError(domain.KindTransientFetch, "build script request", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Warn("script fetch failed", zap.String("url", url), zap.Error(err))
		return "", domain.NewError(domain.KindTransientFetch, "fetch script", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Warn("script fetch returned non-success status",
			zap.String("url", url), zap.Int("status", resp.StatusCode))
		return "", domain.NewError(domain.KindTransientFetch, "fetch script",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxScriptBytes))
	if err != nil {
		return "", domain.NewError(domain.KindHashCompute, "read script body", err)
	}
	return SRIString(alg, Hash(body, alg)), nil
}

// HashFile returns the SRI string of a local file, cached by path.
func (e *Engine) HashFile(path string, alg Algorithm) (string, error) {
	alg = ParseAlgorithm(string(alg))
	return e.cache.GetOrCompute(context.Background(), path, alg, func(context.Context) (string, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", domain.NewError(domain.KindHashCompute, "read file", err)
		}
		return SRIString(alg, Hash(content, alg)), nil
	})
}

// Invalidate drops cached hashes for one source, e.g. after its declared hash changed.
func (e *Engine) Invalidate(source string) { e.cache.Invalidate(source) }

func (e *Engine) Clear() { e.cache.Clear() }
