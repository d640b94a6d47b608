package fetcher_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/kowhai-tools/nzcrawl/internal/fetcher"
)

func mustParse(t *testing.T, raw string) url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return *u
}

func TestFetchSuccessfulHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html><body>hi</body></html>"))
	}))
	defer srv.Close()

	f := fetcher.New("nzcrawl", time.Second, time.Second)
	result := f.Fetch(context.Background(), mustParse(t, srv.URL))

	if result.Status != "200" {
		t.Errorf("expected status 200, got %q", result.Status)
	}
	if result.SizeBytes == 0 {
		t.Error("expected non-zero size")
	}
	if result.Fingerprint == "" {
		t.Error("expected a content fingerprint")
	}
}

func TestFetchNonHTMLContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	f := fetcher.New("nzcrawl", time.Second, time.Second)
	result := f.Fetch(context.Background(), mustParse(t, srv.URL))

	if result.Status != fetcher.StatusMIMETypeNotHTML {
		t.Errorf("expected MIME type tag, got %q", result.Status)
	}
}

func TestFetchConnectionFailure(t *testing.T) {
	f := fetcher.New("nzcrawl", 50*time.Millisecond, 50*time.Millisecond)
	result := f.Fetch(context.Background(), mustParse(t, "http://127.0.0.1:1/"))

	if result.Status != fetcher.StatusConnectionFailure && result.Status != fetcher.StatusTimeout {
		t.Errorf("expected a connection-failure or timeout tag, got %q", result.Status)
	}
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte("too slow"))
	}))
	defer srv.Close()

	f := fetcher.New("nzcrawl", time.Second, 20*time.Millisecond)
	result := f.Fetch(context.Background(), mustParse(t, srv.URL))

	if result.Status != fetcher.StatusTimeout {
		t.Errorf("expected timeout tag, got %q", result.Status)
	}
}

func TestFetchReportsRedirectTarget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/end", http.StatusFound)
	})
	mux.HandleFunc("/end", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := fetcher.New("nzcrawl", time.Second, time.Second)
	result := f.Fetch(context.Background(), mustParse(t, srv.URL+"/start"))

	if result.RedirectURL == "" {
		t.Error("expected a redirect target to be reported")
	}
	if result.Status != "200" {
		t.Errorf("expected the final response's status, got %q", result.Status)
	}
}
