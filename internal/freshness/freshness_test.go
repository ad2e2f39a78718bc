package freshness

import (
	"testing"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

var fixedNow = time.Date(2025, 11, 21, 12, 0, 0, 0, time.UTC)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(model.DefaultConfig().Freshness).
		WithNow(func() time.Time { return fixedNow })
}

func fetchedAgo(d time.Duration) *time.Time {
	ts := fixedNow.Add(-d)
	return &ts
}

func TestEvaluate_NoPriorFetchIsStale(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate([]model.CategoryFetch{
		{Category: model.CategoryNews, LastFetchedAt: nil},
	})

	if !result.IsStale {
		t.Error("expected stale when category has never been fetched")
	}
	if len(result.StaleCategories) != 1 || result.StaleCategories[0] != model.CategoryNews {
		t.Errorf("expected stale categories [news], got %v", result.StaleCategories)
	}
	if !result.EvaluatedAt.Equal(fixedNow) {
		t.Errorf("evaluatedAt = %v, want %v", result.EvaluatedAt, fixedNow)
	}
}

func TestEvaluate_WithinThresholdIsFresh(t *testing.T) {
	e := newTestEvaluator()

	// Forum threshold is 6h; fetched 3h ago.
	result := e.Evaluate([]model.CategoryFetch{
		{Category: model.CategoryForum, LastFetchedAt: fetchedAgo(3 * time.Hour)},
	})

	if result.IsStale {
		t.Errorf("forum fetched 3h ago should be fresh, stale=%v", result.StaleCategories)
	}
	if len(result.Details) != 1 {
		t.Fatalf("expected 1 detail row, got %d", len(result.Details))
	}
	if result.Details[0].ThresholdHours != 6 {
		t.Errorf("forum threshold = %v hours, want 6", result.Details[0].ThresholdHours)
	}
}

func TestEvaluate_ExactlyAtThresholdIsFresh(t *testing.T) {
	e := newTestEvaluator()

	// Staleness requires strictly greater than the threshold.
	result := e.Evaluate([]model.CategoryFetch{
		{Category: model.CategoryNews, LastFetchedAt: fetchedAgo(24 * time.Hour)},
	})
	if result.IsStale {
		t.Error("elapsed time exactly equal to threshold must not be stale")
	}

	result = e.Evaluate([]model.CategoryFetch{
		{Category: model.CategoryNews, LastFetchedAt: fetchedAgo(24*time.Hour + time.Second)},
	})
	if !result.IsStale {
		t.Error("one second past the threshold must be stale")
	}
}

func TestEvaluate_PerCategoryThresholds(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		category model.SourceCategory
		age      time.Duration
		stale    bool
	}{
		{model.CategoryNews, 12 * time.Hour, false},
		{model.CategoryNews, 30 * time.Hour, true},
		{model.CategoryBlog, 30 * time.Hour, false},
		{model.CategoryBlog, 49 * time.Hour, true},
		{model.CategorySocial, 5 * time.Hour, false},
		{model.CategorySocial, 7 * time.Hour, true},
		{model.CategoryDocs, 47 * time.Hour, false},
		{model.CategoryOther, 25 * time.Hour, true},
	}
	for _, tt := range tests {
		result := e.Evaluate([]model.CategoryFetch{
			{Category: tt.category, LastFetchedAt: fetchedAgo(tt.age)},
		})
		if result.IsStale != tt.stale {
			t.Errorf("%s aged %v: stale=%v, want %v", tt.category, tt.age, result.IsStale, tt.stale)
		}
	}
}

func TestEvaluate_UnknownCategoryUsesDefault(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate([]model.CategoryFetch{
		{Category: "newsletter", LastFetchedAt: fetchedAgo(23 * time.Hour)},
	})
	if result.IsStale {
		t.Error("unconfigured category within the 24h default must be fresh")
	}

	result = e.Evaluate([]model.CategoryFetch{
		{Category: "newsletter", LastFetchedAt: fetchedAgo(25 * time.Hour)},
	})
	if !result.IsStale {
		t.Error("unconfigured category past the 24h default must be stale")
	}
}

func TestEvaluate_EmptyCategoryTreatedAsOther(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate([]model.CategoryFetch{
		{Category: "", LastFetchedAt: nil},
	})
	if len(result.StaleCategories) != 1 || result.StaleCategories[0] != model.CategoryOther {
		t.Errorf("empty category should be reported as %q, got %v", model.CategoryOther, result.StaleCategories)
	}
}

func TestEvaluate_MixedCategoriesSortedAndDeduplicated(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate([]model.CategoryFetch{
		{Category: model.CategorySocial, LastFetchedAt: nil},
		{Category: model.CategoryForum, LastFetchedAt: fetchedAgo(2 * time.Hour)},
		{Category: model.CategoryNews, LastFetchedAt: fetchedAgo(48 * time.Hour)},
		{Category: model.CategorySocial, LastFetchedAt: fetchedAgo(8 * time.Hour)},
	})

	want := []model.SourceCategory{model.CategoryNews, model.CategorySocial}
	if len(result.StaleCategories) != len(want) {
		t.Fatalf("stale categories = %v, want %v", result.StaleCategories, want)
	}
	for i := range want {
		if result.StaleCategories[i] != want[i] {
			t.Fatalf("stale categories = %v, want %v", result.StaleCategories, want)
		}
	}
	if len(result.Details) != 4 {
		t.Errorf("expected one detail row per input, got %d", len(result.Details))
	}
}

func TestEvaluate_NoInputIsFresh(t *testing.T) {
	e := newTestEvaluator()

	result := e.Evaluate(nil)
	if result.IsStale {
		t.Error("no categories means nothing to refresh; must not be stale")
	}
	if len(result.StaleCategories) != 0 {
		t.Errorf("expected no stale categories, got %v", result.StaleCategories)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newTestEvaluator()

	input := []model.CategoryFetch{
		{Category: model.CategoryNews, LastFetchedAt: fetchedAgo(30 * time.Hour)},
		{Category: model.CategoryBlog, LastFetchedAt: fetchedAgo(10 * time.Hour)},
	}
	a := e.Evaluate(input)
	b := e.Evaluate(input)

	if a.IsStale != b.IsStale || len(a.StaleCategories) != len(b.StaleCategories) {
		t.Error("evaluation with a fixed clock must be deterministic")
	}
}
