package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

func unlockerConfig(endpoint string) model.FetchConfig {
	return model.FetchConfig{
		Backend:      "unlocker",
		Endpoint:     endpoint,
		APIKey:       "test-key",
		UnlockerZone: "unlocker_zone",
		Country:      "us",
		Timeout:      2 * time.Second,
	}
}

func TestUnlockerFetcher_RequiresCredentials(t *testing.T) {
	cfg := unlockerConfig("http://unused")
	cfg.APIKey = ""
	if _, err := NewUnlockerFetcher(cfg, nil, logger.Nop()); err == nil {
		t.Error("missing api_key should be rejected")
	}

	cfg = unlockerConfig("http://unused")
	cfg.UnlockerZone = ""
	if _, err := NewUnlockerFetcher(cfg, nil, logger.Nop()); err == nil {
		t.Error("missing unlocker_zone should be rejected")
	}
}

func TestUnlockerFetcher_ReturnsMarkdown(t *testing.T) {
	var gotReq unlockerRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": "# NVIDIA Q3 Recap\n\nRevenue beat expectations.",
		})
	}))
	defer srv.Close()

	fetcher, err := NewUnlockerFetcher(unlockerConfig(srv.URL), nil, logger.Nop())
	if err != nil {
		t.Fatalf("new fetcher: %v", err)
	}

	doc, err := fetcher.Fetch(context.Background(), "https://blocked.example.com/article")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.Title != "NVIDIA Q3 Recap" {
		t.Errorf("title = %q", doc.Title)
	}
	if gotReq.DataFormat != "markdown" || gotReq.Zone != "unlocker_zone" {
		t.Errorf("request payload wrong: %+v", gotReq)
	}
	if gotReq.URL != "https://blocked.example.com/article" {
		t.Errorf("target URL not forwarded: %q", gotReq.URL)
	}
}

func TestUnlockerFetcher_AlternateContentKeys(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": "body under the content key",
		})
	}))
	defer srv.Close()

	fetcher, _ := NewUnlockerFetcher(unlockerConfig(srv.URL), nil, logger.Nop())
	doc, err := fetcher.Fetch(context.Background(), "https://example.com/a")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if doc.BodyText != "body under the content key" {
		t.Errorf("content key not handled: %q", doc.BodyText)
	}
}

func TestUnlockerFetcher_MissingContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	}))
	defer srv.Close()

	fetcher, _ := NewUnlockerFetcher(unlockerConfig(srv.URL), nil, logger.Nop())
	_, err := fetcher.Fetch(context.Background(), "https://example.com/a")
	if !errors.Is(err, ErrMissingContent) {
		t.Errorf("expected ErrMissingContent, got %v", err)
	}
}

func TestNew_SelectsBackend(t *testing.T) {
	if _, err := New(httpConfig(), nil, logger.Nop()); err != nil {
		t.Errorf("http backend: %v", err)
	}
	if _, err := New(unlockerConfig("http://x"), nil, logger.Nop()); err != nil {
		t.Errorf("unlocker backend: %v", err)
	}
	bad := httpConfig()
	bad.Backend = "carrier-pigeon"
	if _, err := New(bad, nil, logger.Nop()); err == nil {
		t.Error("unknown backend must be rejected")
	}
}
