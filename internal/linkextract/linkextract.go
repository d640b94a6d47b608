// Package linkextract pulls every href out of a fetched HTML body and
// resolves it against the page's URL. Parsing runs under a bounded time
// budget; a page that cannot be parsed within it yields an empty link set
// rather than blocking a worker indefinitely.
package linkextract

import (
	"bytes"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/kowhai-tools/nzcrawl/internal/urlnorm"
)

// maxParseBytes bounds how much of the body is handed to the HTML parser,
// independent of the parse-time budget, so pathologically large pages
// can't dominate a worker's time budget just by being large.
const maxParseBytes = 5 * 1024 * 1024

// Extract returns every distinct normalized link discovered in body,
// resolved against base. If parsing does not complete within budget, it
// returns an empty, non-nil slice rather than blocking past the budget.
func Extract(base url.URL, body []byte, budget time.Duration) []string {
	if len(body) > maxParseBytes {
		body = body[:maxParseBytes]
	}

	type outcome struct {
		links []string
	}
	resultCh := make(chan outcome, 1)

	go func() {
		resultCh <- outcome{links: extractNow(base, body)}
	}()

	select {
	case result := <-resultCh:
		return result.links
	case <-time.After(budget):
		return []string{}
	}
}

func extractNow(base url.URL, body []byte) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return []string{}
	}

	seen := make(map[string]struct{})
	links := []string{}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, exists := sel.Attr("href")
		if !exists || href == "" {
			return
		}

		resolved, ok := urlnorm.Resolve(&base, href)
		if !ok {
			return
		}
		if _, dup := seen[resolved]; dup {
			return
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
	})

	return links
}
