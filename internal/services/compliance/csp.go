package compliance

import (
	"context"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// BuildCSP returns the store's policy with every active authorized script
// origin added to script-src.
func (e *Engine) BuildCSP(ctx context.Context, storeID int) (string, error) {
	_, settings := e.storeContext(ctx, storeID)
	base := strings.TrimSpace(settings.CSPPolicy)
	if base == "" {
		base = DefaultCSPPolicy
	}
	origins, err := e.Registry.ActiveOrigins(ctx, storeID)
	if err != nil {
		return "", err
	}
	return MergeScriptSources(base, origins), nil
}

// MergeScriptSources unions origins into the script-src directive of base,
// appending a directive when base has none. Only sources already listed in
// script-src count as present. The result is normalised to "a; b;" form.
func MergeScriptSources(base string, origins []string) string {
	directives := parsePolicy(base)

	idx := -1
	for i, d := range directives {
		if strings.EqualFold(d[0], "script-src") {
			idx = i
			break
		}
	}
	var present mapset.Set[string]
	if idx >= 0 {
		present = mapset.NewThreadUnsafeSet[string](directives[idx][1:]...)
	} else {
		present = mapset.NewThreadUnsafeSet[string]("'self'", "'unsafe-inline'")
	}

	var add []string
	for _, o := range origins {
		if present.Add(o) {
			add = append(add, o)
		}
	}
	if len(add) > 0 {
		if idx >= 0 {
			d := directives[idx]
			merged := append([]string{d[0]}, add...)
			directives[idx] = append(merged, d[1:]...)
		} else {
			directives = append(directives, append([]string{"script-src", "'self'", "'unsafe-inline'"}, add...))
		}
	}
	return renderPolicy(directives)
}

// parsePolicy splits a policy into directives, each a name followed by its
// sources. Empty directives are dropped.
func parsePolicy(policy string) [][]string {
	var out [][]string
	for _, part := range strings.Split(policy, ";") {
		if fields := strings.Fields(part); len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}

func renderPolicy(directives [][]string) string {
	if len(directives) == 0 {
		return ""
	}
	parts := make([]string, len(directives))
	for i, d := range directives {
		parts[i] = strings.Join(d, " ")
	}
	return strings.Join(parts, "; ") + ";"
}
