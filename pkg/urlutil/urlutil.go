package urlutil

import (
	"net/url"
	"strings"
)

// TargetTLDSuffix is the only top-level domain suffix this crawler will
// follow links within.
const TargetTLDSuffix = ".nz"

// blacklistedSuffixes is the case-insensitive set of path suffixes that
// disqualify a URL from the frontier regardless of its host.
var blacklistedSuffixes = []string{
	".jpg", ".jpeg", ".png", ".gif", ".bmp", ".svg", ".pdf", ".doc", ".docx",
	".xls", ".xlsx", ".ppt", ".txt", ".zip", ".rar", ".tar", ".gz", ".7z",
	".bz2", ".mp3", ".wav", ".ogg", ".aac", ".flac", ".mp4", ".avi", ".mov",
	".mkv", ".webm", ".exe", ".bin", ".dll", ".msi", ".sh", ".iso", ".css",
	".js", ".json", ".xml", ".rss", ".ico", ".ttf", ".woff", ".woff2",
	".eot", ".swf", ".flv", ".fla", ".php", ".aspx", ".cgi", ".py", ".pl",
	".rb", ".jsp", ".dat", ".log", ".bak",
}

// SecondLabelWhitelist is the set of second-level labels (the label
// immediately preceding the target TLD suffix) that receive the lenient
// second-label priority curve.
var SecondLabelWhitelist = map[string]bool{
	"govt": true, "org": true, "ac": true, "co": true, "cri": true,
	"health": true, "com": true, "net": true, "edu": true, "mil": true,
	"info": true, "biz": true, "int": true, "ai": true, "io": true,
	"tech": true, "xyz": true,
}

// Canonicalize applies a deterministic normalization to a URL, producing a
// canonical form.
//
// The normalization follows these rules:
//   - Scheme and host are lowercased
//   - Path is cleaned (trailing slashes removed, except for root "/")
//   - Fragments are removed
//   - Query parameters are removed
//
// Properties:
//   - Pure: no state, no memory
//   - Deterministic: same input always produces same output
//   - Idempotent: Canonicalize(Canonicalize(url)) == Canonicalize(url)
//   - Context-free: does not depend on crawl history
func Canonicalize(sourceURL url.URL) url.URL {
	canonical := sourceURL

	canonical.Scheme = lowerASCII(canonical.Scheme)
	canonical.Host = lowerASCII(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// Minimize reduces an already-canonical URL to the key used for dedup
// equality: lowercase host with a single leading "www." stripped, no
// scheme, and no trailing slash on a non-root path.
func Minimize(canonical url.URL) string {
	host := lowerASCII(canonical.Hostname())
	host = strings.TrimPrefix(host, "www.")

	path := canonical.Path
	if len(path) > 1 {
		path = stripTrailingSlash(path)
	}
	if path == "" {
		path = "/"
	}

	return host + path
}

// IsTargetTLD reports whether host ends with TargetTLDSuffix.
func IsTargetTLD(host string) bool {
	host = lowerASCII(host)
	return strings.HasSuffix(host, TargetTLDSuffix)
}

// SecondLabel extracts the DNS label immediately preceding the target TLD
// suffix, e.g. "co" from "example.co.nz". Returns "" if host does not carry
// the target suffix or has no further label.
func SecondLabel(host string) string {
	host = lowerASCII(host)
	if !strings.HasSuffix(host, TargetTLDSuffix) {
		return ""
	}
	trimmed := strings.TrimSuffix(host, TargetTLDSuffix)
	trimmed = strings.TrimSuffix(trimmed, ".")
	if trimmed == "" {
		return ""
	}
	labels := strings.Split(trimmed, ".")
	return labels[len(labels)-1]
}

// HasBlacklistedSuffix reports whether path ends with any disqualifying
// extension, checked case-insensitively.
func HasBlacklistedSuffix(path string) bool {
	lowered := lowerASCII(path)
	for _, suffix := range blacklistedSuffixes {
		if strings.HasSuffix(lowered, suffix) {
			return true
		}
	}
	return false
}

// IsValid reports whether a URL passes the crawl's validity filter: its
// host carries the target TLD suffix and its path does not end with a
// blacklisted suffix.
func IsValid(u url.URL) bool {
	return IsTargetTLD(u.Hostname()) && !HasBlacklistedSuffix(u.Path)
}

// lowerASCII converts ASCII characters to lowercase without allocating when
// the input is already lowercase. Faster than strings.ToLower for the
// ASCII-only hostnames and extensions this package deals with.
func lowerASCII(s string) string {
	var needsLower bool
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			needsLower = true
			break
		}
	}
	if !needsLower {
		return s
	}
	b := make([]byte, len(s))
	copy(b, s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}

// stripTrailingSlash removes trailing slashes from a path, preserving root.
func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
