package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pulsegraph/pulsegraph/internal/cache"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// UnlockerFetcher fetches pages through a Bright Data style unlocker REST
// API, which renders and converts the page to markdown server-side. Used
// for publishers that block direct crawlers.
type UnlockerFetcher struct {
	cfg        model.FetchConfig
	httpClient *http.Client
	store      cache.Cache
	log        *logger.Logger
}

// NewUnlockerFetcher validates credentials and builds the backend.
func NewUnlockerFetcher(cfg model.FetchConfig, store cache.Cache, log *logger.Logger) (*UnlockerFetcher, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ingest: unlocker backend requires api_key")
	}
	if cfg.UnlockerZone == "" {
		return nil, fmt.Errorf("ingest: unlocker backend requires unlocker_zone")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &UnlockerFetcher{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		store:      store,
		log:        log.With("component", "ingest.unlocker"),
	}, nil
}

type unlockerRequest struct {
	Zone       string `json:"zone"`
	URL        string `json:"url"`
	Format     string `json:"format"`
	Method     string `json:"method"`
	Country    string `json:"country"`
	DataFormat string `json:"data_format"`
}

// Fetch retrieves rawURL as markdown through the unlocker API.
func (f *UnlockerFetcher) Fetch(ctx context.Context, rawURL string) (*model.Document, error) {
	if doc, ok := f.cached(rawURL); ok {
		f.log.Debug("cache hit", "url", rawURL)
		return doc, nil
	}

	body, err := json.Marshal(unlockerRequest{
		Zone:       f.cfg.UnlockerZone,
		URL:        rawURL,
		Format:     "json",
		Method:     http.MethodGet,
		Country:    f.cfg.Country,
		DataFormat: "markdown",
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ingest: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+f.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ingest: unlocker request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ingest: unlocker status %d for %s", resp.StatusCode, rawURL)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("ingest: decode unlocker response: %w", err)
	}

	markdown := unlockerContent(payload)
	if strings.TrimSpace(markdown) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingContent, rawURL)
	}

	doc := &model.Document{
		Title:    markdownTitle(markdown),
		BodyText: markdown,
	}
	f.remember(rawURL, doc)
	return doc, nil
}

// unlockerContent probes the keys the API is known to embed content under.
func unlockerContent(payload map[string]any) string {
	for _, key := range []string{"data", "content", "markdown", "result", "body"} {
		if val, ok := payload[key].(string); ok && strings.TrimSpace(val) != "" {
			return val
		}
	}
	return ""
}

func (f *UnlockerFetcher) cached(rawURL string) (*model.Document, bool) {
	if f.store == nil {
		return nil, false
	}
	data, ok := f.store.Get(cache.Key(rawURL))
	if !ok {
		return nil, false
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (f *UnlockerFetcher) remember(rawURL string, doc *model.Document) {
	if f.store == nil {
		return
	}
	if data, err := json.Marshal(doc); err == nil {
		_ = f.store.Set(cache.Key(rawURL), data, 0)
	}
}
