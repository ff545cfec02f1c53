package compliance

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// DefaultCSPPolicy is used when a store has no policy configured.
const DefaultCSPPolicy = "script-src 'self' 'unsafe-inline';"

// Config is everything the engine needs beyond per-store settings.
type Config struct {
	// TrustedCDNs are hosts whose scripts are expected to carry SRI.
	TrustedCDNs []string
	// PaymentGateways are hosts that rotate content and must never be pinned.
	PaymentGateways []string
	// VerifyConcurrency bounds parallel SRI checks within one scan.
	VerifyConcurrency int
}

func DefaultConfig() Config {
	return Config{
		TrustedCDNs: []string{
			"cdnjs.cloudflare.com",
			"cdn.jsdelivr.net",
			"unpkg.com",
			"ajax.googleapis.com",
			"code.jquery.com",
			"stackpath.bootstrapcdn.com",
			"maxcdn.bootstrapcdn.com",
			"cdn.datatables.net",
			"use.fontawesome.com",
			"cdn.plot.ly",
			"d3js.org",
		},
		PaymentGateways: []string{
			"js.stripe.com",
			"www.paypalobjects.com",
			"js.braintreegateway.com",
			"pay.google.com",
			"applepay.cdn-apple.com",
			"sdk.amazonaws.com",
		},
		VerifyConcurrency: 4,
	}
}

type hostSet struct{ hosts mapset.Set[string] }

func newHostSet(hosts []string) hostSet {
	s := mapset.NewSet[string]()
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			s.Add(h)
		}
	}
	return hostSet{hosts: s}
}

// contains matches host exactly or as a subdomain of a listed host.
func (s hostSet) contains(host string) bool {
	host = strings.ToLower(host)
	if s.hosts.Contains(host) {
		return true
	}
	for i := strings.IndexByte(host, '.'); i >= 0; i = strings.IndexByte(host, '.') {
		host = host[i+1:]
		if s.hosts.Contains(host) {
			return true
		}
	}
	return false
}
