package model

import "time"

// CategoryFetch is one row of the latest-fetch-per-category graph query:
// the most recent ingestion timestamp for a source category, or nil if that
// category has never been fetched for the company/period.
type CategoryFetch struct {
	Category      SourceCategory `json:"source_type"`
	LastFetchedAt *time.Time     `json:"last_fetched"`
}

// CategoryDetail explains one category's freshness evaluation.
type CategoryDetail struct {
	Category       SourceCategory `json:"source_type"`
	LastFetchedAt  *time.Time     `json:"last_fetched"`
	ThresholdHours float64        `json:"threshold_hours"`
	Stale          bool           `json:"stale"`
}

// FreshnessResult is the outcome of a staleness evaluation. EvaluatedAt is
// captured once per call so every category was compared against the same
// instant.
type FreshnessResult struct {
	IsStale         bool             `json:"was_stale"`
	StaleCategories []SourceCategory `json:"stale_types"`
	Details         []CategoryDetail `json:"details"`
	EvaluatedAt     time.Time        `json:"checked_at"`
}

// ItemError records a per-candidate failure during a refresh run. The run is
// never aborted by one candidate failing; errors are collected instead.
type ItemError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}

// RunSummary is the result of one refresh run for a (company, period).
// Errors is a bounded sample in discovery order; TotalErrors is the full
// count.
type RunSummary struct {
	Company         string      `json:"company"`
	Period          string      `json:"period"`
	Query           string      `json:"query"`
	DiscoveredCount int         `json:"discovered_urls"`
	FetchedCount    int         `json:"fetched_docs"`
	UpsertedCount   int         `json:"upserted_sources"`
	ClaimCount      int         `json:"upserted_claims"`
	Errors          []ItemError `json:"errors"`
	TotalErrors     int         `json:"total_errors"`
	CompletedAt     time.Time   `json:"refreshed_at"`
}
