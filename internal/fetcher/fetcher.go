// Package fetcher performs the single HTTP GET that resolves a frontier
// entry: it applies connect/read timeouts, classifies the outcome into a
// status tag, and computes a content fingerprint for HTML bodies. There is
// no retry; every non-numeric outcome is a terminal classification for
// that URL.
package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kowhai-tools/nzcrawl/pkg/hashutil"
)

// maxBodyBytes caps how much of a fetched page is read into memory.
const maxBodyBytes = 20 * 1024 * 1024

// Status tags for non-numeric outcomes, exactly as recorded in the visit
// log and histogram.
const (
	StatusRobots            = "Robots"
	StatusMIMETypeNotHTML   = "MIME Type Not HTML"
	StatusTimeout           = "Timeout"
	StatusConnectionFailure = "Connection Failure"
	StatusUnexpectedFailure = "Unexpected Failure"
)

// Result is everything the orchestrator needs to record a visit and, on
// success, extract links.
type Result struct {
	Status      string // numeric HTTP status as a string, or one of the Status* tags
	Body        []byte
	SizeBytes   int
	Fingerprint string
	RedirectURL string // set when the final URL differs from the request URL
}

// Fetcher performs bounded HTTP GETs with a fixed user agent.
type Fetcher struct {
	userAgent      string
	connectTimeout time.Duration
	readTimeout    time.Duration
}

// New returns a Fetcher whose requests dial within connectTimeout and
// whose total round trip is bounded by readTimeout.
func New(userAgent string, connectTimeout, readTimeout time.Duration) *Fetcher {
	return &Fetcher{
		userAgent:      userAgent,
		connectTimeout: connectTimeout,
		readTimeout:    readTimeout,
	}
}

// Fetch performs the GET. It never returns a Go error for ordinary fetch
// failures; those are folded into Result.Status per the crawl's closed
// error taxonomy, since a single-URL failure must never abort the crawl.
func (f *Fetcher) Fetch(ctx context.Context, target url.URL) Result {
	client := &http.Client{
		Timeout: f.readTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: f.connectTimeout,
			}).DialContext,
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return Result{Status: StatusUnexpectedFailure}
	}
	applyBrowserHeaders(req, f.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return Result{Status: StatusTimeout}
		}
		return Result{Status: StatusConnectionFailure}
	}
	defer resp.Body.Close()

	var redirectURL string
	if resp.Request != nil && resp.Request.URL != nil && resp.Request.URL.String() != target.String() {
		redirectURL = resp.Request.URL.String()
	}

	if !isHTMLContent(resp.Header.Get("Content-Type")) {
		return Result{Status: StatusMIMETypeNotHTML, RedirectURL: redirectURL}
	}

	body, err := readBody(resp)
	if err != nil {
		return Result{Status: StatusUnexpectedFailure, RedirectURL: redirectURL}
	}
	if len(body) > maxBodyBytes {
		body = body[:maxBodyBytes]
	}

	fingerprint, err := hashutil.HashBytes(body, hashutil.HashAlgoBLAKE3)
	if err != nil {
		fingerprint = ""
	}

	return Result{
		Status:      strconv.Itoa(resp.StatusCode),
		Body:        body,
		SizeBytes:   len(body),
		Fingerprint: fingerprint,
		RedirectURL: redirectURL,
	}
}

func applyBrowserHeaders(req *http.Request, userAgent string) {
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
}

func isHTMLContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.Contains(contentType, "text/html") ||
		strings.Contains(contentType, "application/xhtml")
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func readBody(resp *http.Response) ([]byte, error) {
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
}
