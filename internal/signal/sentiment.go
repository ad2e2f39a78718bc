// Package signal derives per-event signals from the claims a refresh run
// merged. The only signal currently computed is sentiment.
package signal

import (
	"time"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// SentimentScore reduces a claim set to a confidence-weighted score in
// [-1, 1]. Upward claims pull positive, downward claims negative; flat
// and mixed claims contribute weight without direction, which dampens the
// score. Unknown-direction claims are excluded entirely.
func SentimentScore(claims []model.Claim) float64 {
	var weighted, total float64
	for _, c := range claims {
		w := c.Confidence
		if w <= 0 {
			continue
		}
		switch c.Direction {
		case model.DirectionUp:
			weighted += w
			total += w
		case model.DirectionDown:
			weighted -= w
			total += w
		case model.DirectionFlat, model.DirectionMixed:
			total += w
		}
	}
	if total == 0 {
		return 0
	}
	return weighted / total
}

// Sentiment builds the sentiment signal for an event from its claims.
// Volume is the claim count, a cheap proxy for coverage breadth.
func Sentiment(companyID, eventID, window string, claims []model.Claim, computedAt time.Time) model.Signal {
	return model.Signal{
		CompanyID:  companyID,
		EventID:    eventID,
		Type:       "sentiment",
		Score:      SentimentScore(claims),
		Volume:     len(claims),
		Window:     window,
		ComputedAt: computedAt,
	}
}
