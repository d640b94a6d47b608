package linkextract_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/kowhai-tools/nzcrawl/internal/linkextract"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return *u
}

func TestExtractFindsAbsoluteAndRelativeLinks(t *testing.T) {
	body := []byte(`
		<html><body>
			<a href="/about">About</a>
			<a href="https://other.nz/page">Other</a>
			<a href="contact.html">Contact</a>
		</body></html>
	`)
	base := mustParse(t, "https://example.nz/docs/")

	links := linkextract.Extract(base, body, time.Second)

	want := map[string]bool{
		"https://example.nz/about":       true,
		"https://other.nz/page":          true,
		"https://example.nz/docs/contact.html": true,
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
	}
	for _, l := range links {
		if !want[l] {
			t.Errorf("unexpected link %q", l)
		}
	}
}

func TestExtractDeduplicatesLinks(t *testing.T) {
	body := []byte(`
		<html><body>
			<a href="/a">one</a>
			<a href="/a">two</a>
		</body></html>
	`)
	base := mustParse(t, "https://example.nz/")

	links := linkextract.Extract(base, body, time.Second)
	if len(links) != 1 {
		t.Errorf("expected a deduplicated single link, got %v", links)
	}
}

func TestExtractIgnoresHrefLessAnchors(t *testing.T) {
	body := []byte(`<html><body><a name="top">no href</a></body></html>`)
	base := mustParse(t, "https://example.nz/")

	links := linkextract.Extract(base, body, time.Second)
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}

func TestExtractMalformedHTMLYieldsEmptySet(t *testing.T) {
	body := []byte(`not even close to html <<<`)
	base := mustParse(t, "https://example.nz/")

	links := linkextract.Extract(base, body, time.Second)
	if links == nil {
		t.Error("expected a non-nil empty slice")
	}
}

func TestExtractRespectsBudget(t *testing.T) {
	body := []byte(`<html><body><a href="/a">a</a></body></html>`)
	base := mustParse(t, "https://example.nz/")

	start := time.Now()
	links := linkextract.Extract(base, body, 1*time.Nanosecond)
	elapsed := time.Since(start)

	if elapsed > 200*time.Millisecond {
		t.Errorf("expected Extract to return promptly when budget expires, took %v", elapsed)
	}
	if links == nil {
		t.Error("expected a non-nil slice even on budget expiry")
	}
}
