// Package discover turns a company and earnings period into a ranked list
// of candidate URLs worth fetching. Two backends exist: a SERP REST API
// and a credential-free news feed.
package discover

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// ErrMalformedResponse is returned when a discovery backend replies with a
// shape no known result key can be parsed out of.
var ErrMalformedResponse = errors.New("discover: malformed backend response")

// Service discovers candidate URLs for a query. hint, when non-empty,
// names the stale source categories the caller wants refilled; backends
// may bias results toward them. A failure here is fatal to a refresh run:
// with no candidates there is nothing downstream to do.
type Service interface {
	Discover(ctx context.Context, query string, maxResults int, hint []model.SourceCategory) ([]model.Candidate, error)
}

// hasCategory reports whether the hint set names the category.
func hasCategory(hint []model.SourceCategory, category model.SourceCategory) bool {
	for _, c := range hint {
		if c == category {
			return true
		}
	}
	return false
}

// Query builds the discovery query for a company and period.
func Query(companyName, period string) string {
	return fmt.Sprintf("%s %s earnings recap guidance revenue EPS reaction", companyName, period)
}

// New selects a backend from config. "serp" requires an API key and zone;
// anything else falls back to the feed backend.
func New(cfg model.DiscoveryConfig, log *logger.Logger) (Service, error) {
	switch strings.ToLower(cfg.Backend) {
	case "serp":
		return NewSERPClient(cfg, log)
	case "", "feed":
		return NewFeedClient(cfg, log), nil
	default:
		return nil, fmt.Errorf("discover: unknown backend %q", cfg.Backend)
	}
}

// dedupe drops repeated URLs, keeping first occurrence so rank order
// survives.
func dedupe(in []model.Candidate) []model.Candidate {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, c := range in {
		if seen[c.URL] {
			continue
		}
		seen[c.URL] = true
		out = append(out, c)
	}
	return out
}
