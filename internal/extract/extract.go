// Package extract turns fetched documents into structured earnings claims
// via an LLM, then validates the model's output before anything reaches
// the graph.
package extract

import (
	"context"
	"errors"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// ErrMalformedClaims is returned when the model's payload violates the
// claim contract in a way validation cannot repair, such as a claim with
// no evidence quote. The whole document is rejected: partial trust in a
// response that broke the contract is worse than skipping the source.
var ErrMalformedClaims = errors.New("extract: malformed claims payload")

// Request carries one document through extraction.
type Request struct {
	CompanyName string
	Period      string
	SourceURL   string
	SourceTitle string
	Text        string
}

// Service extracts claims from a document. Implementations must return
// validated claims only.
type Service interface {
	Extract(ctx context.Context, req Request) ([]model.Claim, error)
}
