// Package robots decides, per host, whether a URL may be fetched. It caches
// a permissive-or-restrictive ruleSet per host for the lifetime of a crawl,
// fetching and parsing robots.txt at most once per host absent deserialize
// failures.
package robots

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/kowhai-tools/nzcrawl/internal/metadata"
	"github.com/kowhai-tools/nzcrawl/internal/robots/cache"
)

// maxBodyBytes caps how much of a robots.txt body is read before parsing.
const maxBodyBytes = 500 * 1024

// Policy answers MayFetch for a target URL, backed by a host-scoped cache
// of parsed robots.txt rule sets.
type Policy struct {
	httpClient *http.Client
	userAgent  string
	cache      cache.Cache
	sink       metadata.MetadataSink
}

// NewPolicy returns a Policy that fetches robots.txt with connectTimeout
// for the dial and readTimeout bounding the whole round trip.
func NewPolicy(userAgent string, connectTimeout, readTimeout time.Duration, c cache.Cache, sink metadata.MetadataSink) *Policy {
	return &Policy{
		httpClient: &http.Client{
			Timeout: readTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: connectTimeout,
				}).DialContext,
			},
		},
		userAgent: userAgent,
		cache:     c,
		sink:      sink,
	}
}

func cacheKey(scheme, host string) string {
	return fmt.Sprintf("%s://%s/robots.txt", scheme, host)
}

// MayFetch reports whether target may be fetched under its host's
// robots.txt, as evaluated against the Policy's user agent. Any failure to
// obtain or parse robots.txt resolves permissively: the crawl proceeds as
// though no restriction exists, and the failure is only recorded for
// observability.
func (p *Policy) MayFetch(ctx context.Context, target url.URL) bool {
	key := cacheKey(target.Scheme, target.Host)

	if cached, found := p.cache.Get(key); found {
		if rs, err := deserializeRuleSet(cached); err == nil {
			return rs.Allows(target.Path)
		}
	}

	rs, robotsErr := p.fetchRuleSet(ctx, target.Scheme, target.Host)
	if robotsErr != nil {
		rs = permissiveRuleSet()
		p.recordFailure(target, robotsErr)
	}

	if serialized, err := serializeRuleSet(rs); err == nil {
		p.cache.Put(key, serialized)
	}

	return rs.Allows(target.Path)
}

func (p *Policy) fetchRuleSet(ctx context.Context, scheme, host string) (ruleSet, *RobotsError) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return ruleSet{}, &RobotsError{
			Message:   fmt.Sprintf("failed to create request: %v", err),
			Retryable: false,
			Cause:     ErrCausePreFetchFailure,
		}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/plain,text/html,*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return ruleSet{}, &RobotsError{
			Message:   fmt.Sprintf("failed to fetch robots.txt: %v", err),
			Retryable: true,
			Cause:     ErrCauseHTTPFetchFailure,
		}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
		if err != nil {
			return ruleSet{}, &RobotsError{
				Message:   fmt.Sprintf("failed to read robots.txt body: %v", err),
				Retryable: true,
				Cause:     ErrCauseParseError,
			}
		}
		if len(body) > maxBodyBytes {
			body = body[:maxBodyBytes]
		}
		return parseRobotsTxt(string(body), p.userAgent), nil

	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// No robots.txt published: no restriction applies.
		return permissiveRuleSet(), nil

	case resp.StatusCode >= 500:
		return ruleSet{}, &RobotsError{
			Message:   fmt.Sprintf("server error (%d) fetching %s", resp.StatusCode, robotsURL),
			Retryable: true,
			Cause:     ErrCauseHTTPServerError,
		}

	default:
		return ruleSet{}, &RobotsError{
			Message:   fmt.Sprintf("unexpected status %d fetching %s", resp.StatusCode, robotsURL),
			Retryable: true,
			Cause:     ErrCauseHTTPFetchFailure,
		}
	}
}

func (p *Policy) recordFailure(target url.URL, robotsErr *RobotsError) {
	if p.sink == nil {
		return
	}
	p.sink.RecordError(
		time.Now(),
		"robots",
		"fetch",
		mapRobotsErrorToMetadataCause(robotsErr),
		robotsErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrHost, target.Host),
			metadata.NewAttr(metadata.AttrURL, target.String()),
		},
	)
}
