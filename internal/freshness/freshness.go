// Package freshness decides whether cached knowledge about a company/period
// is stale. It is a pure policy layer: callers read the latest ingestion
// timestamps per source category from the graph and hand them in; no I/O
// happens here.
package freshness

import (
	"sort"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// Evaluator applies per-category maximum-age thresholds. A category is
// stale when it has never been fetched or when the elapsed time since its
// latest fetch strictly exceeds its threshold: elapsed == threshold is
// still fresh.
type Evaluator struct {
	thresholds map[model.SourceCategory]time.Duration
	fallback   time.Duration

	// now is injectable for tests; defaults to time.Now in UTC.
	now func() time.Time
}

// NewEvaluator builds an evaluator from the configured hour thresholds.
func NewEvaluator(cfg model.FreshnessConfig) *Evaluator {
	thresholds := make(map[model.SourceCategory]time.Duration, len(cfg.ThresholdHours))
	for category, hours := range cfg.ThresholdHours {
		thresholds[model.SourceCategory(category)] = hoursToDuration(hours)
	}
	fallback := hoursToDuration(cfg.DefaultHours)
	if fallback <= 0 {
		fallback = 24 * time.Hour
	}
	return &Evaluator{
		thresholds: thresholds,
		fallback:   fallback,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock. Tests use this to pin "now".
func (e *Evaluator) WithNow(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Threshold returns the maximum age for a category, falling back to the
// default for unconfigured categories.
func (e *Evaluator) Threshold(category model.SourceCategory) time.Duration {
	if d, ok := e.thresholds[category]; ok {
		return d
	}
	return e.fallback
}

// Evaluate decides staleness per category. The evaluation timestamp is
// captured once and reused for every comparison, so the result is
// internally consistent even if evaluation takes nonzero wall time.
func (e *Evaluator) Evaluate(latest []model.CategoryFetch) model.FreshnessResult {
	now := e.now()

	staleSet := make(map[model.SourceCategory]bool)
	details := make([]model.CategoryDetail, 0, len(latest))

	for _, row := range latest {
		category := row.Category
		if category == "" {
			category = model.CategoryOther
		}
		threshold := e.Threshold(category)

		stale := row.LastFetchedAt == nil || now.Sub(*row.LastFetchedAt) > threshold
		if stale {
			staleSet[category] = true
		}

		details = append(details, model.CategoryDetail{
			Category:       category,
			LastFetchedAt:  row.LastFetchedAt,
			ThresholdHours: threshold.Hours(),
			Stale:          stale,
		})
	}

	stale := make([]model.SourceCategory, 0, len(staleSet))
	for category := range staleSet {
		stale = append(stale, category)
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i] < stale[j] })

	return model.FreshnessResult{
		IsStale:         len(stale) > 0,
		StaleCategories: stale,
		Details:         details,
		EvaluatedAt:     now,
	}
}

func hoursToDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}
