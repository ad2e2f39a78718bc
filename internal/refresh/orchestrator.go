// Package refresh orchestrates one end-to-end refresh run: discover
// candidate URLs for a company/period, fetch and extract them on a bounded
// worker pool, merge everything into the graph, and recompute the
// sentiment signal.
package refresh

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/discover"
	"github.com/pulsegraph/pulsegraph/internal/extract"
	"github.com/pulsegraph/pulsegraph/internal/graph"
	"github.com/pulsegraph/pulsegraph/internal/ingest"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
	"github.com/pulsegraph/pulsegraph/internal/signal"
	"github.com/pulsegraph/pulsegraph/internal/worker"
)

// Request names the company/period to refresh. Ticker is optional and only
// used when the company node does not exist yet. StaleCategories, when
// set, is forwarded to discovery as a source hint so the backend can bias
// results toward the categories that went stale.
type Request struct {
	CompanyName     string
	Ticker          string
	Period          string
	StaleCategories []model.SourceCategory
}

// Orchestrator wires the pipeline stages together. It owns no policy of
// its own beyond sequencing: parents merge before children, one candidate
// failing never aborts the run, and discovery failing always does.
type Orchestrator struct {
	store      graph.Store
	discoverer discover.Service
	fetcher    ingest.Fetcher
	extractor  extract.Service
	classifier *discover.Classifier
	cfg        model.RefreshConfig
	log        *logger.Logger
	now        func() time.Time
}

// New builds an orchestrator.
func New(
	store graph.Store,
	discoverer discover.Service,
	fetcher ingest.Fetcher,
	extractor extract.Service,
	classifier *discover.Classifier,
	cfg model.RefreshConfig,
	log *logger.Logger,
) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		store:      store,
		discoverer: discoverer,
		fetcher:    fetcher,
		extractor:  extractor,
		classifier: classifier,
		cfg:        cfg,
		log:        log.With("component", "refresh"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithNow overrides the clock for tests.
func (o *Orchestrator) WithNow(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// candidateResult is what one candidate's job produces. rank preserves
// discovery order so error samples are deterministic regardless of which
// worker finished first.
type candidateResult struct {
	rank     int
	url      string
	fetched  bool
	upserted bool
	claims   []model.Claim
	err      error
}

func (r *candidateResult) Err() error { return r.err }

type candidateJob struct {
	o         *Orchestrator
	candidate model.Candidate
	rank      int
	companyID string
	eventID   string
	req       Request
	query     string
}

func (j *candidateJob) Execute(ctx context.Context) worker.Result {
	return j.o.processCandidate(ctx, j)
}

// Run performs a full refresh and returns its summary. A discovery failure
// is fatal; everything after that degrades per-candidate.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*model.RunSummary, error) {
	query := discover.Query(req.CompanyName, req.Period)
	log := o.log.With("company", req.CompanyName, "period", req.Period)

	hint := req.StaleCategories
	if len(hint) == 0 {
		// Earnings coverage is news first; an unhinted run asks for it.
		hint = []model.SourceCategory{model.CategoryNews}
	}
	candidates, err := o.discoverer.Discover(ctx, query, 0, hint)
	if err != nil {
		return nil, fmt.Errorf("refresh: discovery failed: %w", err)
	}
	log.Info("discovery complete", "candidates", len(candidates))

	// Parents first: claims can only attach to an existing company/event.
	companyID, err := o.store.MergeCompany(ctx, req.CompanyName, req.Ticker)
	if err != nil {
		return nil, fmt.Errorf("refresh: merge company: %w", err)
	}
	eventID, err := o.store.MergeEvent(ctx, companyID, "earnings", req.Period, nil)
	if err != nil {
		return nil, fmt.Errorf("refresh: merge event: %w", err)
	}

	workers := o.cfg.Workers
	if workers <= 0 {
		workers = 3
	}
	pool := worker.NewPool(workers)
	pool.Start()
	for i, candidate := range candidates {
		pool.Submit(&candidateJob{
			o: o, candidate: candidate, rank: i,
			companyID: companyID, eventID: eventID,
			req: req, query: query,
		})
	}
	results := pool.Wait()

	summary := o.summarize(req, query, len(candidates), results)

	// Recompute sentiment only when this run produced claims; a run that
	// found nothing must not zero out an existing signal.
	if claims := collectClaims(results); len(claims) > 0 {
		sig := signal.Sentiment(companyID, eventID, o.cfg.SignalWindow, claims, o.now())
		if _, err := o.store.MergeSignal(ctx, sig); err != nil {
			log.Warn("signal merge failed", "error", err)
		} else {
			log.Info("sentiment recomputed", "score", sig.Score, "volume", sig.Volume)
		}
	}

	log.Info("refresh complete",
		"discovered", summary.DiscoveredCount,
		"fetched", summary.FetchedCount,
		"upserted", summary.UpsertedCount,
		"claims", summary.ClaimCount,
		"errors", summary.TotalErrors)
	return summary, nil
}

// processCandidate runs fetch, source merge, extraction, and claim merges
// for one candidate. The first failing stage stops the candidate; stages
// already applied stay applied, which is safe because every merge is
// idempotent.
func (o *Orchestrator) processCandidate(ctx context.Context, j *candidateJob) *candidateResult {
	res := &candidateResult{rank: j.rank, url: j.candidate.URL}

	doc, err := o.fetcher.Fetch(ctx, j.candidate.URL)
	if err != nil {
		res.err = err
		return res
	}
	res.fetched = true

	title := doc.Title
	if title == "" {
		title = j.candidate.Title
	}
	if title == "" {
		title = j.candidate.URL
	}

	sourceDoc := model.SourceDoc{
		URL:       j.candidate.URL,
		Title:     title,
		RawText:   doc.BodyText,
		Category:  o.classifier.Classify(j.candidate.URL),
		FetchedAt: o.now(),
		Query:     j.query,
	}

	sourceID, err := o.store.MergeSource(ctx, sourceDoc)
	if err != nil {
		res.err = fmt.Errorf("merge source: %w", err)
		return res
	}
	if err := o.store.LinkSourceMentionsCompany(ctx, sourceID, j.companyID); err != nil {
		res.err = err
		return res
	}
	res.upserted = true

	claims, err := o.extractor.Extract(ctx, extract.Request{
		CompanyName: j.req.CompanyName,
		Period:      j.req.Period,
		SourceURL:   j.candidate.URL,
		SourceTitle: title,
		Text:        doc.BodyText,
	})
	if err != nil {
		res.err = fmt.Errorf("extract: %w", err)
		return res
	}

	for _, claim := range claims {
		if _, err := o.store.MergeClaim(ctx, j.companyID, j.eventID, sourceID, claim); err != nil {
			res.err = fmt.Errorf("merge claim: %w", err)
			return res
		}
		res.claims = append(res.claims, claim)
	}
	return res
}

// summarize folds per-candidate results into a run summary. Errors are
// sampled in discovery-rank order.
func (o *Orchestrator) summarize(req Request, query string, discovered int, results []worker.Result) *model.RunSummary {
	summary := &model.RunSummary{
		Company:         req.CompanyName,
		Period:          req.Period,
		Query:           query,
		DiscoveredCount: discovered,
		Errors:          []model.ItemError{},
		CompletedAt:     o.now(),
	}

	var failed []*candidateResult
	for _, raw := range results {
		res, ok := raw.(*candidateResult)
		if !ok {
			continue
		}
		if res.fetched {
			summary.FetchedCount++
		}
		if res.upserted {
			summary.UpsertedCount++
		}
		summary.ClaimCount += len(res.claims)
		if res.err != nil {
			failed = append(failed, res)
		}
	}

	sort.Slice(failed, func(i, j int) bool { return failed[i].rank < failed[j].rank })
	summary.TotalErrors = len(failed)

	sample := o.cfg.ErrorSample
	if sample <= 0 {
		sample = 3
	}
	for _, res := range failed {
		if len(summary.Errors) >= sample {
			break
		}
		summary.Errors = append(summary.Errors, model.ItemError{
			URL:   res.url,
			Error: res.err.Error(),
		})
	}
	return summary
}

func collectClaims(results []worker.Result) []model.Claim {
	var out []model.Claim
	for _, raw := range results {
		if res, ok := raw.(*candidateResult); ok {
			out = append(out, res.claims...)
		}
	}
	return out
}
