package graph

import (
	"context"
	"testing"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// tickClock returns a clock that advances one second per call, so
// last_updated_at ordering is deterministic in tests.
func tickClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

var testStart = time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)

func seedCompanyEvent(t *testing.T, store *MemStore) (companyID, eventID string) {
	t.Helper()
	ctx := context.Background()

	companyID, err := store.MergeCompany(ctx, "NVIDIA", "NVDA")
	if err != nil {
		t.Fatalf("merge company: %v", err)
	}
	eventID, err = store.MergeEvent(ctx, companyID, "earnings", "Q3-2025", nil)
	if err != nil {
		t.Fatalf("merge event: %v", err)
	}
	return companyID, eventID
}

func mergeDoc(t *testing.T, store *MemStore, url string, category model.SourceCategory, fetchedAt time.Time) string {
	t.Helper()
	id, err := store.MergeSource(context.Background(), model.SourceDoc{
		URL:       url,
		Title:     "doc",
		RawText:   "body",
		Category:  category,
		FetchedAt: fetchedAt,
	})
	if err != nil {
		t.Fatalf("merge source: %v", err)
	}
	return id
}

func TestMergeCompany_Idempotent(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()

	a, err := store.MergeCompany(ctx, "NVIDIA", "NVDA")
	if err != nil {
		t.Fatalf("first merge: %v", err)
	}
	b, err := store.MergeCompany(ctx, "NVIDIA", "NVDA")
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	if a != b {
		t.Errorf("merge returned different ids: %s vs %s", a, b)
	}
	if counts := store.Counts(); counts.Companies != 1 {
		t.Errorf("expected 1 company after double merge, got %d", counts.Companies)
	}
}

func TestMergeCompany_UpdatesMutableFieldsKeepsCreatedAt(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()

	id, _ := store.MergeCompany(ctx, "NVIDIA", "NVDA")
	created := store.companies[id].createdAt

	if _, err := store.MergeCompany(ctx, "NVIDIA", "NVDA"); err != nil {
		t.Fatalf("remerge: %v", err)
	}
	rec := store.companies[id]
	if !rec.createdAt.Equal(created) {
		t.Error("created_at must be immutable once set")
	}
	if !rec.updatedAt.After(created) {
		t.Error("last_updated_at must be refreshed on every merge")
	}
}

func TestMergeEvent_OnePerCompanyTypePeriod(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, _ := seedCompanyEvent(t, store)

	// Same (company, type, period) merges into the same event.
	again, err := store.MergeEvent(ctx, companyID, "earnings", "Q3-2025", nil)
	if err != nil {
		t.Fatalf("remerge event: %v", err)
	}
	if store.Counts().Events != 1 {
		t.Errorf("expected 1 event, got %d", store.Counts().Events)
	}

	// A different period is a different event.
	other, err := store.MergeEvent(ctx, companyID, "earnings", "Q2-2025", nil)
	if err != nil {
		t.Fatalf("merge other period: %v", err)
	}
	if other == again {
		t.Error("different periods must produce different event ids")
	}
	if store.Counts().Events != 2 {
		t.Errorf("expected 2 events, got %d", store.Counts().Events)
	}
}

func TestMergeSource_CoalesceSemantics(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()

	first := model.SourceDoc{
		URL:       "https://example.com/recap",
		Title:     "Original title",
		Category:  model.CategoryNews,
		SiteName:  "Example News",
		FetchedAt: testStart,
	}
	id, _ := store.MergeSource(ctx, first)

	// Re-merge with an empty title: the stored title survives.
	later := testStart.Add(time.Hour)
	update := model.SourceDoc{
		URL:       "https://example.com/recap",
		Category:  model.CategoryNews,
		FetchedAt: later,
	}
	id2, _ := store.MergeSource(ctx, update)
	if id != id2 {
		t.Fatalf("same URL produced different source ids")
	}

	rec := store.sources[id]
	if rec.doc.Title != "Original title" {
		t.Errorf("empty update must not clear title, got %q", rec.doc.Title)
	}
	if !rec.doc.FetchedAt.Equal(later) {
		t.Errorf("fetched_at should advance on re-merge, got %v", rec.doc.FetchedAt)
	}
	if store.Counts().Sources != 1 {
		t.Errorf("expected 1 source, got %d", store.Counts().Sources)
	}
}

func TestMergeClaim_RequiresParents(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()

	claim := model.Claim{
		CompanyName: "NVIDIA", Period: "Q3-2025",
		Text: "Guidance was raised.", Type: model.ClaimTypeGuidance,
		Direction: model.DirectionUp, Confidence: 0.9, Evidence: "raised guidance",
	}

	if _, err := store.MergeClaim(ctx, "missing", "missing", "missing", claim); err == nil {
		t.Error("merging a claim against unknown parents must fail: it indicates an orchestrator sequencing bug")
	}
}

func TestMergeClaim_IdempotentAndRelinks(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)
	sourceID := mergeDoc(t, store, "https://example.com/a", model.CategoryNews, testStart)

	claim := model.Claim{
		CompanyName: "NVIDIA", Period: "Q3-2025",
		Text: "Guidance was raised.", Type: model.ClaimTypeGuidance,
		Direction: model.DirectionUp, Confidence: 0.85, Evidence: "raised its guidance",
	}

	a, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim)
	if err != nil {
		t.Fatalf("first claim merge: %v", err)
	}
	edgesAfterFirst := store.EdgeCount()

	b, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim)
	if err != nil {
		t.Fatalf("second claim merge: %v", err)
	}
	if a != b {
		t.Errorf("identical claims produced different ids")
	}
	if store.Counts().Claims != 1 {
		t.Errorf("expected 1 claim, got %d", store.Counts().Claims)
	}
	if store.EdgeCount() != edgesAfterFirst {
		t.Errorf("re-applying the same relationship must leave exactly one edge; %d -> %d",
			edgesAfterFirst, store.EdgeCount())
	}

	// The same claim re-extracted from a second source keeps one claim
	// node and gains a second SUPPORTS edge.
	source2 := mergeDoc(t, store, "https://example.com/b", model.CategoryBlog, testStart)
	c, err := store.MergeClaim(ctx, companyID, eventID, source2, claim)
	if err != nil {
		t.Fatalf("third claim merge: %v", err)
	}
	if c != a {
		t.Error("source must not participate in claim identity")
	}
	if store.Counts().Claims != 1 {
		t.Errorf("expected 1 claim after second source, got %d", store.Counts().Claims)
	}
	if len(store.claimSources[a]) != 2 {
		t.Errorf("expected 2 supporting sources, got %d", len(store.claimSources[a]))
	}
}

func TestMergeClaim_ChangedTextIsNewClaim(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)
	sourceID := mergeDoc(t, store, "https://example.com/a", model.CategoryNews, testStart)

	claim := model.Claim{
		CompanyName: "NVIDIA", Period: "Q3-2025",
		Text: "Guidance was raised.", Type: model.ClaimTypeGuidance,
		Direction: model.DirectionUp, Confidence: 0.85, Evidence: "x",
	}
	if _, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim); err != nil {
		t.Fatal(err)
	}

	claim.Text = "Guidance was raised sharply."
	if _, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim); err != nil {
		t.Fatal(err)
	}
	if store.Counts().Claims != 2 {
		t.Errorf("changed claim text must yield a new claim node, got %d claims", store.Counts().Claims)
	}
}

func TestMergeSignal_OnePerEventTypeWindow(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)

	sig := model.Signal{
		CompanyID: companyID, EventID: eventID,
		Type: "sentiment", Score: 0.62, Volume: 1200, Window: "post_earnings_7d",
	}
	a, err := store.MergeSignal(ctx, sig)
	if err != nil {
		t.Fatalf("merge signal: %v", err)
	}

	sig.Score = 0.70
	b, err := store.MergeSignal(ctx, sig)
	if err != nil {
		t.Fatalf("remerge signal: %v", err)
	}
	if a != b {
		t.Error("same (event, type, window) must merge into one signal")
	}
	if store.Counts().Signals != 1 {
		t.Errorf("expected 1 signal, got %d", store.Counts().Signals)
	}

	got, err := store.GetSignal(ctx, companyID, "Q3-2025", "post_earnings_7d", "sentiment")
	if err != nil {
		t.Fatalf("get signal: %v", err)
	}
	if got == nil || got.Score != 0.70 {
		t.Errorf("expected refreshed score 0.70, got %+v", got)
	}
}

func TestFindCompanyByName_CaseInsensitive(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	seedCompanyEvent(t, store)

	company, err := store.FindCompanyByName(ctx, "nvidia")
	if err != nil {
		t.Fatalf("find company: %v", err)
	}
	if company == nil || company.Ticker != "NVDA" {
		t.Errorf("expected NVIDIA/NVDA, got %+v", company)
	}

	missing, err := store.FindCompanyByName(ctx, "Cerebras")
	if err != nil {
		t.Fatalf("find missing company: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown company, got %+v", missing)
	}
}

func TestLatestFetchByCategory(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)

	older := testStart.Add(-48 * time.Hour)
	newer := testStart.Add(-2 * time.Hour)
	newsOld := mergeDoc(t, store, "https://example.com/news-old", model.CategoryNews, older)
	newsNew := mergeDoc(t, store, "https://example.com/news-new", model.CategoryNews, newer)
	blog := mergeDoc(t, store, "https://example.com/blog", model.CategoryBlog, older)

	claim := model.Claim{
		CompanyName: "NVIDIA", Period: "Q3-2025",
		Type: model.ClaimTypeDemand, Direction: model.DirectionUp,
		Confidence: 0.8, Evidence: "strong demand",
	}
	for i, sourceID := range []string{newsOld, newsNew, blog} {
		claim.Text = []string{"Demand was strong.", "Data center demand grew.", "Channel checks look healthy."}[i]
		if _, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim); err != nil {
			t.Fatalf("merge claim %d: %v", i, err)
		}
	}

	rows, err := store.LatestFetchByCategory(ctx, companyID, "Q3-2025")
	if err != nil {
		t.Fatalf("latest fetch: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 categories, got %d: %+v", len(rows), rows)
	}
	// rows are sorted by category: blog, news
	if rows[0].Category != model.CategoryBlog || !rows[0].LastFetchedAt.Equal(older) {
		t.Errorf("blog row wrong: %+v", rows[0])
	}
	if rows[1].Category != model.CategoryNews || !rows[1].LastFetchedAt.Equal(newer) {
		t.Errorf("news row should carry the most recent fetch: %+v", rows[1])
	}
}

func TestClaimsWithSources_OrderingStable(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)
	sourceID := mergeDoc(t, store, "https://example.com/a", model.CategoryNews, testStart)

	base := model.Claim{
		CompanyName: "NVIDIA", Period: "Q3-2025",
		Type: model.ClaimTypeOther, Direction: model.DirectionUnknown, Evidence: "x",
	}

	// Merge in a deliberate order: the tick clock gives each a distinct
	// last_updated_at. "newer" is merged after "older".
	older := base
	older.Text = "older claim"
	older.Confidence = 0.8
	newer := base
	newer.Text = "newer claim"
	newer.Confidence = 0.8
	top := base
	top.Text = "top claim"
	top.Confidence = 0.95

	for _, c := range []model.Claim{older, newer, top} {
		if _, err := store.MergeClaim(ctx, companyID, eventID, sourceID, c); err != nil {
			t.Fatal(err)
		}
	}

	for run := 0; run < 3; run++ {
		rows, err := store.ClaimsWithSources(ctx, companyID, "Q3-2025", 10)
		if err != nil {
			t.Fatalf("claims query: %v", err)
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 claims, got %d", len(rows))
		}
		if rows[0].Text != "top claim" {
			t.Errorf("highest confidence must rank first, got %q", rows[0].Text)
		}
		if rows[1].Text != "newer claim" || rows[2].Text != "older claim" {
			t.Errorf("equal confidence must tie-break by most recent update: got %q, %q",
				rows[1].Text, rows[2].Text)
		}
		if len(rows[0].Sources) != 1 || rows[0].Sources[0].URL != "https://example.com/a" {
			t.Errorf("expected supporting source attached, got %+v", rows[0].Sources)
		}
	}
}

func TestClaimsWithSources_FullTieIsDeterministic(t *testing.T) {
	// A frozen clock makes every claim tie on both confidence and
	// last_updated_at; the order must still be identical across queries.
	store := NewMemStore().WithNow(func() time.Time { return testStart })
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)
	sourceID := mergeDoc(t, store, "https://example.com/a", model.CategoryNews, testStart)

	for _, text := range []string{"alpha claim", "bravo claim", "charlie claim", "delta claim"} {
		claim := model.Claim{
			CompanyName: "NVIDIA", Period: "Q3-2025",
			Text: text, Type: model.ClaimTypeOther,
			Direction: model.DirectionUnknown, Confidence: 0.5, Evidence: "x",
		}
		if _, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim); err != nil {
			t.Fatal(err)
		}
	}

	first, err := store.ClaimsWithSources(ctx, companyID, "Q3-2025", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 4 {
		t.Fatalf("expected 4 claims, got %d", len(first))
	}
	for i := 1; i < len(first); i++ {
		if first[i-1].ID >= first[i].ID {
			t.Fatalf("full ties must fall back to id order: %q !< %q", first[i-1].ID, first[i].ID)
		}
	}
	for run := 0; run < 5; run++ {
		rows, err := store.ClaimsWithSources(ctx, companyID, "Q3-2025", 10)
		if err != nil {
			t.Fatal(err)
		}
		for i := range rows {
			if rows[i].ID != first[i].ID {
				t.Fatalf("run %d: row %d changed order: %q vs %q", run, i, rows[i].ID, first[i].ID)
			}
		}
	}
}

func TestClaimsWithSources_Limit(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, eventID := seedCompanyEvent(t, store)
	sourceID := mergeDoc(t, store, "https://example.com/a", model.CategoryNews, testStart)

	for i := 0; i < 5; i++ {
		claim := model.Claim{
			CompanyName: "NVIDIA", Period: "Q3-2025",
			Text: string(rune('a'+i)) + " claim", Type: model.ClaimTypeOther,
			Direction: model.DirectionUnknown, Confidence: 0.5, Evidence: "x",
		}
		if _, err := store.MergeClaim(ctx, companyID, eventID, sourceID, claim); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := store.ClaimsWithSources(ctx, companyID, "Q3-2025", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Errorf("expected limit to cap rows at 2, got %d", len(rows))
	}
}

func TestSentimentDelta(t *testing.T) {
	store := NewMemStore().WithNow(tickClock(testStart))
	ctx := context.Background()
	companyID, _ := seedCompanyEvent(t, store)

	evPrev, err := store.MergeEvent(ctx, companyID, "earnings", "Q2-2025", nil)
	if err != nil {
		t.Fatal(err)
	}
	evLatest, err := store.MergeEvent(ctx, companyID, "earnings", "Q3-2025", nil)
	if err != nil {
		t.Fatal(err)
	}

	// Before any signals exist, the delta is nil with a note.
	delta, err := SentimentDelta(ctx, store, companyID, "Q3-2025", "Q2-2025", "post_earnings_7d")
	if err != nil {
		t.Fatal(err)
	}
	if delta.Delta != nil || delta.Note == "" {
		t.Errorf("expected nil delta with note, got %+v", delta)
	}

	for _, sig := range []model.Signal{
		{CompanyID: companyID, EventID: evLatest, Type: "sentiment", Score: 0.62, Volume: 1200, Window: "post_earnings_7d"},
		{CompanyID: companyID, EventID: evPrev, Type: "sentiment", Score: 0.41, Volume: 900, Window: "post_earnings_7d"},
	} {
		if _, err := store.MergeSignal(ctx, sig); err != nil {
			t.Fatal(err)
		}
	}

	delta, err = SentimentDelta(ctx, store, companyID, "Q3-2025", "Q2-2025", "post_earnings_7d")
	if err != nil {
		t.Fatal(err)
	}
	if delta.Delta == nil {
		t.Fatal("expected a delta once both signals exist")
	}
	if got := *delta.Delta; got < 0.2099 || got > 0.2101 {
		t.Errorf("delta = %v, want 0.21", got)
	}
}
