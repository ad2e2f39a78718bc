// Package ingest fetches candidate URLs and normalizes them into
// documents for extraction. Two backends exist: direct HTTP fetching with
// robots/rate-limit hygiene, and a Bright Data style unlocker API for
// pages that block plain crawlers.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pulsegraph/pulsegraph/internal/cache"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

var (
	// ErrMissingContent is returned when a fetch succeeds but yields no
	// usable body text. Such documents are skipped, not merged.
	ErrMissingContent = errors.New("ingest: document has no usable content")

	// ErrRobotsDisallowed is returned when robots.txt forbids the fetch.
	ErrRobotsDisallowed = errors.New("ingest: disallowed by robots.txt")
)

// Fetcher turns a URL into a normalized document.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*model.Document, error)
}

// New selects a fetch backend from config.
func New(cfg model.FetchConfig, store cache.Cache, log *logger.Logger) (Fetcher, error) {
	switch strings.ToLower(cfg.Backend) {
	case "unlocker":
		return NewUnlockerFetcher(cfg, store, log)
	case "", "http":
		return NewHTTPFetcher(cfg, store, log), nil
	default:
		return nil, fmt.Errorf("ingest: unknown backend %q", cfg.Backend)
	}
}
