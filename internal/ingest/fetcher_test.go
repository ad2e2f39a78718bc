package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/cache"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

func httpConfig() model.FetchConfig {
	return model.FetchConfig{
		Backend:           "http",
		Timeout:           2 * time.Second,
		UserAgent:         "pulsegraph/0.1",
		MaxBodyBytes:      1 << 20,
		RequestsPerSecond: 100,
		Burst:             10,
	}
}

const samplePage = `<html>
<head><title>NVIDIA Q3 Recap</title></head>
<body>
  <script>var tracking = true;</script>
  <style>.x { color: red }</style>
  <h1>Earnings</h1>
  <p>Data center revenue grew 41% year over year.</p>
</body>
</html>`

func TestHTTPFetcher_ExtractsTitleAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	cfg := httpConfig()
	cfg.RespectRobots = true
	fetcher := NewHTTPFetcher(cfg, nil, logger.Nop())

	doc, err := fetcher.Fetch(context.Background(), srv.URL+"/article")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Title != "NVIDIA Q3 Recap" {
		t.Errorf("title = %q", doc.Title)
	}
	if want := "Data center revenue grew 41% year over year."; !strings.Contains(doc.BodyText, want) {
		t.Errorf("body text missing %q: %q", want, doc.BodyText)
	}
	if strings.Contains(doc.BodyText, "tracking") || strings.Contains(doc.BodyText, "color: red") {
		t.Errorf("script/style content leaked into body: %q", doc.BodyText)
	}
}

func TestHTTPFetcher_RobotsDisallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked/\n"))
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	cfg := httpConfig()
	cfg.RespectRobots = true
	fetcher := NewHTTPFetcher(cfg, nil, logger.Nop())

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/blocked/page")
	if !errors.Is(err, ErrRobotsDisallowed) {
		t.Errorf("expected ErrRobotsDisallowed, got %v", err)
	}
}

func TestHTTPFetcher_EmptyBodyIsMissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><script>x()</script></head><body></body></html>"))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(httpConfig(), nil, logger.Nop())
	_, err := fetcher.Fetch(context.Background(), srv.URL+"/empty")
	if !errors.Is(err, ErrMissingContent) {
		t.Errorf("expected ErrMissingContent, got %v", err)
	}
}

func TestHTTPFetcher_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(httpConfig(), nil, logger.Nop())
	if _, err := fetcher.Fetch(context.Background(), srv.URL+"/gone"); err == nil {
		t.Error("non-2xx status must fail the fetch")
	}
}

func TestHTTPFetcher_UsesCache(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	store := cache.NewMemoryCache(time.Minute, time.Minute)
	fetcher := NewHTTPFetcher(httpConfig(), store, logger.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := fetcher.Fetch(ctx, srv.URL+"/article"); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1 (cache should absorb repeats)", hits)
	}
}
