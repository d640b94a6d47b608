// Package urlnorm implements the crawler's URL normalizer: the pure,
// context-free transform every discovered link passes through before it is
// scored, deduplicated, or pushed to the frontier.
package urlnorm

import (
	"net/url"

	"github.com/kowhai-tools/nzcrawl/pkg/urlutil"
)

// Normalize parses raw and reduces it to canonical form: scheme, host, and
// path preserved; query and fragment stripped. On parse failure it returns
// raw unchanged and false, so callers can treat the second value as "this
// URL is usable."
func Normalize(raw string) (string, bool) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw, false
	}
	canonical := urlutil.Canonicalize(*parsed)
	return canonical.String(), true
}

// Minimize reduces a normalized URL string to the dedup key: lowercase
// host with a single leading "www." stripped, no scheme, no trailing
// slash on a non-root path. On parse failure it returns the input
// unchanged.
func Minimize(normalized string) string {
	parsed, err := url.Parse(normalized)
	if err != nil {
		return normalized
	}
	return urlutil.Minimize(*parsed)
}

// Resolve joins a possibly-relative href against base and normalizes the
// result. It returns ok=false if href cannot be parsed or resolved.
func Resolve(base *url.URL, href string) (string, bool) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	resolved := base.ResolveReference(ref)
	canonical := urlutil.Canonicalize(*resolved)
	return canonical.String(), true
}
