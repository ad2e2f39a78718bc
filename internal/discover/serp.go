package discover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// SERPClient discovers URLs through a Bright Data style SERP REST API:
// POST the target Google search URL with brd_json=1 and parse the
// structured SERP it returns.
type SERPClient struct {
	cfg        model.DiscoveryConfig
	httpClient *http.Client
	log        *logger.Logger
}

// NewSERPClient validates credentials and builds the client.
func NewSERPClient(cfg model.DiscoveryConfig, log *logger.Logger) (*SERPClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("discover: serp backend requires api_key")
	}
	if cfg.SERPZone == "" {
		return nil, fmt.Errorf("discover: serp backend requires serp_zone")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &SERPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.With("component", "discover.serp"),
	}, nil
}

type serpRequest struct {
	Zone   string `json:"zone"`
	URL    string `json:"url"`
	Format string `json:"format"`
}

// Discover runs the query and returns up to maxResults candidates in SERP
// rank order. A news hint switches the search to the news vertical.
func (c *SERPClient) Discover(ctx context.Context, query string, maxResults int, hint []model.SourceCategory) ([]model.Candidate, error) {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	target := fmt.Sprintf("https://www.google.com/search?q=%s&gl=%s&hl=%s&brd_json=1",
		url.QueryEscape(query), c.cfg.Country, c.cfg.Language)
	if hasCategory(hint, model.CategoryNews) {
		target += "&tbm=nws"
	}

	body, err := json.Marshal(serpRequest{
		Zone:   c.cfg.SERPZone,
		URL:    target,
		Format: "raw",
	})
	if err != nil {
		return nil, fmt.Errorf("discover: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("discover: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discover: serp request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discover: serp status %d", resp.StatusCode)
	}

	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	candidates, err := parseSERP(payload, maxResults)
	if err != nil {
		return nil, err
	}
	c.log.Debug("serp discovery complete", "query", query, "candidates", len(candidates))
	return candidates, nil
}

// parseSERP pulls organic results out of the response. Field names vary by
// engine and format, so it probes the known container and link keys.
func parseSERP(payload map[string]any, maxResults int) ([]model.Candidate, error) {
	var items []any
	for _, key := range []string{"organic", "organic_results", "results", "search_results"} {
		if v, ok := payload[key].([]any); ok {
			items = v
			break
		}
	}
	if items == nil {
		return nil, fmt.Errorf("%w: no result list found", ErrMalformedResponse)
	}

	// Scan past maxResults to survive junk entries.
	limit := maxResults * 2
	if limit > len(items) {
		limit = len(items)
	}

	var out []model.Candidate
	for _, raw := range items[:limit] {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		var link string
		for _, key := range []string{"link", "url", "href"} {
			if s, ok := item[key].(string); ok && s != "" {
				link = s
				break
			}
		}
		// Relative links are SERP navigation, not results.
		if link == "" || link[0] == '/' {
			continue
		}

		candidate := model.Candidate{URL: link, Rank: len(out) + 1}
		if title, ok := item["title"].(string); ok {
			candidate.Title = title
		}
		for _, key := range []string{"description", "snippet"} {
			if desc, ok := item[key].(string); ok && desc != "" {
				candidate.Description = desc
				break
			}
		}
		out = append(out, candidate)
		if len(out) >= maxResults {
			break
		}
	}
	return dedupe(out), nil
}
