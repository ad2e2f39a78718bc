// Package graph is the persistent entity/relationship store. Every write is
// an identity-keyed merge: create-if-absent with initial timestamps,
// update-if-present overwriting only the supplied fields and refreshing
// last_updated_at. Applying the same merge twice leaves the store in the
// same observable state as applying it once, which is what lets refresh
// runs repeat safely without external locking.
package graph

import (
	"context"
	"errors"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// ErrCompanyNotFound marks lookups for companies that are not in the graph
// yet. Callers distinguish it from transport errors to map it to a 404.
var ErrCompanyNotFound = errors.New("graph: company not found")

// Store is the merge/query contract consumed by the orchestrator, the API
// layer, and the seeding command. Neo4jStore is the production
// implementation; MemStore backs tests and offline runs.
type Store interface {
	MergeCompany(ctx context.Context, name, ticker string) (string, error)
	MergeEvent(ctx context.Context, companyID, eventType, period string, eventDate *time.Time) (string, error)
	MergeSource(ctx context.Context, doc model.SourceDoc) (string, error)
	LinkSourceMentionsCompany(ctx context.Context, sourceID, companyID string) error
	MergeClaim(ctx context.Context, companyID, eventID, sourceID string, claim model.Claim) (string, error)
	MergeSignal(ctx context.Context, signal model.Signal) (string, error)

	FindCompanyByName(ctx context.Context, name string) (*model.Company, error)
	LatestFetchByCategory(ctx context.Context, companyID, period string) ([]model.CategoryFetch, error)
	ClaimsWithSources(ctx context.Context, companyID, period string, limit int) ([]model.RankedClaim, error)
	GetSignal(ctx context.Context, companyID, period, window, signalType string) (*model.Signal, error)
}

// SentimentDelta compares the sentiment score between two periods for the
// same window. A missing signal on either side yields a nil delta with an
// explanatory note rather than an error.
func SentimentDelta(ctx context.Context, store Store, companyID, periodA, periodB, window string) (*model.SentimentDelta, error) {
	a, err := store.GetSignal(ctx, companyID, periodA, window, "sentiment")
	if err != nil {
		return nil, err
	}
	b, err := store.GetSignal(ctx, companyID, periodB, window, "sentiment")
	if err != nil {
		return nil, err
	}

	delta := &model.SentimentDelta{
		PeriodA: periodA,
		PeriodB: periodB,
		Window:  window,
		A:       a,
		B:       b,
	}
	if a == nil || b == nil {
		delta.Note = "missing signal for one or both periods"
		return delta, nil
	}
	d := a.Score - b.Score
	delta.Delta = &d
	return delta, nil
}
