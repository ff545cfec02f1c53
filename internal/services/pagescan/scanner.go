// Package pagescan fetches a page and inventories the scripts it serves and
// the security headers it sends.
package pagescan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"scriptguard/internal/domain"
	"scriptguard/internal/logging"
)

const (
	maxPageBytes   = 5 << 20
	inlinePrefix   = "inline-script-"
	inlineIDLength = 16
)

// SecurityHeaders is the fixed set of response headers captured on every scan.
var SecurityHeaders = []string{
	"Content-Security-Policy",
	"X-Content-Type-Options",
	"X-Frame-Options",
	"X-XSS-Protection",
	"Strict-Transport-Security",
	"Referrer-Policy",
}

// Script is one script reference found on a page.
type Script struct {
	// ID is the absolute URL for external scripts and inline-script-<hex> for
	// inline blocks.
	ID          string
	Src         string
	Inline      bool
	Integrity   string
	CrossOrigin string
}

// Result is the outcome of one scan. Err is set when the page could not be
// fetched or parsed; Scripts is then empty and Headers still carries every key.
type Result struct {
	PageURL    string
	Scripts    []Script
	Headers    map[string]string
	StatusCode int
	Duration   time.Duration
	Err        error
}

// Identifiers returns the script identifiers in page order.
func (r Result) Identifiers() []string {
	out := make([]string, 0, len(r.Scripts))
	for _, s := range r.Scripts {
		out = append(out, s.ID)
	}
	return out
}

type Scanner struct {
	client  *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

func New(client *http.Client, timeout time.Duration, logger *zap.Logger) *Scanner {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Scanner{client: client, timeout: timeout, logger: logging.OrNop(logger)}
}

// Scan issues a single GET for pageURL. It never returns an error: failures
// are reported in Result.Err with an empty script set.
func (s *Scanner) Scan(ctx context.Context, pageURL string) (res Result) {
	start := time.Now()
	res = Result{PageURL: pageURL, Headers: emptyHeaders()}
	defer func() { res.Duration = time.Since(start) }()

	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		if err == nil {
			err = fmt.Errorf("page url %q is not absolute", pageURL)
		}
		res.Err = domain.NewError(domain.KindTransientFetch, "parse page url", err)
		s.logger.Warn("invalid page url", zap.String("pageUrl", pageURL), zap.Error(err))
		return res
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		res.Err = domain.NewError(domain.KindTransientFetch, "build page request", err)
		return res
	}
	req.Header.Set("User-Agent", "scriptguard/1.0")
	resp, err := s.client.Do(req)
	if err != nil {
		res.Err = domain.NewError(domain.KindTransientFetch, "fetch page", err)
		s.logger.Warn("page fetch failed", zap.String("pageUrl", pageURL), zap.Error(err))
		return res
	}
	defer resp.Body.Close()
	res.StatusCode = resp.StatusCode
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Err = domain.NewError(domain.KindTransientFetch, "fetch page",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
		s.logger.Warn("page fetch returned non-success status",
			zap.String("pageUrl", pageURL), zap.Int("status", resp.StatusCode))
		return res
	}

	res.Headers = ExtractSecurityHeaders(resp.Header)
	scripts, err := ExtractScripts(io.LimitReader(resp.Body, maxPageBytes), base)
	if err != nil {
		res.Err = domain.NewError(domain.KindParse, "parse page", err)
		s.logger.Warn("page parse failed", zap.String("pageUrl", pageURL), zap.Error(err))
		return res
	}
	res.Scripts = scripts
	return res
}

func emptyHeaders() map[string]string {
	out := make(map[string]string, len(SecurityHeaders))
	for _, h := range SecurityHeaders {
		out[h] = ""
	}
	return out
}

// ExtractSecurityHeaders returns every key of SecurityHeaders; absent headers
// map to "".
func ExtractSecurityHeaders(h http.Header) map[string]string {
	out := emptyHeaders()
	for _, name := range SecurityHeaders {
		out[name] = strings.Join(h.Values(name), ", ")
	}
	return out
}

// ExtractScripts walks the parsed document and returns its scripts in order,
// collapsing duplicates. External sources are resolved against base.
func ExtractScripts(r io.Reader, base *url.URL) ([]Script, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	var scripts []Script
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "script" {
			if s, ok := scriptFromNode(n, base); ok && seen.Add(s.ID) {
				scripts = append(scripts, s)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return scripts, nil
}

func scriptFromNode(n *html.Node, base *url.URL) (Script, bool) {
	var src, typ, integrity, crossOrigin string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "src":
			src = strings.TrimSpace(a.Val)
		case "type":
			typ = strings.TrimSpace(a.Val)
		case "integrity":
			integrity = strings.TrimSpace(a.Val)
		case "crossorigin":
			crossOrigin = a.Val
		}
	}
	if !isJavaScriptType(typ) {
		return Script{}, false
	}
	if src != "" {
		abs, ok := ResolveScriptURL(src, base)
		if !ok {
			return Script{}, false
		}
		return Script{ID: abs, Src: abs, Integrity: integrity, CrossOrigin: crossOrigin}, true
	}

	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	content := strings.TrimSpace(b.String())
	if content == "" {
		return Script{}, false
	}
	return Script{ID: InlineID(content), Inline: true}, true
}

// isJavaScriptType reports whether a script type attribute denotes executable
// code. Data blocks such as application/ld+json are not scripts.
func isJavaScriptType(t string) bool {
	t = strings.ToLower(t)
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	switch t {
	case "", "module", "text/javascript", "application/javascript", "application/ecmascript",
		"text/ecmascript", "application/x-javascript", "text/jscript":
		return true
	}
	return false
}

// ResolveScriptURL normalizes a script src to an absolute URL. Protocol
// relative sources get https.
func ResolveScriptURL(src string, base *url.URL) (string, bool) {
	if strings.HasPrefix(src, "//") {
		src = "https:" + src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return "", false
	}
	if !ref.IsAbs() {
		if base == nil {
			return "", false
		}
		ref = base.ResolveReference(ref)
	}
	switch ref.Scheme {
	case "http", "https":
		return ref.String(), true
	}
	return "", false
}

// InlineID derives the stable identifier of an inline script without retaining
// its content.
func InlineID(content string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(content)))
	return inlinePrefix + hex.EncodeToString(sum[:])[:inlineIDLength]
}

// IsInlineID reports whether id names an inline script.
func IsInlineID(id string) bool { return strings.HasPrefix(id, inlinePrefix) }
