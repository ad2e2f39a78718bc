package extract

import (
	"fmt"
	"strings"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// claimOut mirrors the JSON shape the model is instructed to produce.
type claimOut struct {
	Text       string   `json:"text"`
	ClaimType  string   `json:"claim_type"`
	Direction  string   `json:"direction"`
	Timeframe  string   `json:"timeframe,omitempty"`
	Value      *float64 `json:"value,omitempty"`
	Unit       string   `json:"unit,omitempty"`
	Confidence float64  `json:"confidence"`
	Evidence   string   `json:"evidence"`
}

type claimsPayload struct {
	Claims []claimOut `json:"claims"`
}

// validatePayload converts the raw payload into claims, repairing what it
// can and rejecting what it cannot.
//
// Repairable: out-of-range confidence is clamped, unknown enum values fall
// back to their defaults, claims beyond maxClaims are dropped.
// Not repairable: a claim with empty text or empty evidence fails the whole
// payload with ErrMalformedClaims.
func validatePayload(payload claimsPayload, req Request, maxClaims int) ([]model.Claim, error) {
	if maxClaims <= 0 {
		maxClaims = 10
	}

	out := make([]model.Claim, 0, len(payload.Claims))
	for i, raw := range payload.Claims {
		if len(out) >= maxClaims {
			break
		}

		text := strings.TrimSpace(raw.Text)
		evidence := strings.TrimSpace(raw.Evidence)
		if text == "" {
			return nil, fmt.Errorf("%w: claim %d has empty text", ErrMalformedClaims, i)
		}
		if evidence == "" {
			return nil, fmt.Errorf("%w: claim %d (%q) has no evidence quote", ErrMalformedClaims, i, text)
		}

		claimType := model.ClaimType(raw.ClaimType)
		if !model.ValidClaimType(claimType) {
			claimType = model.ClaimTypeOther
		}
		direction := model.Direction(raw.Direction)
		if !model.ValidDirection(direction) {
			direction = model.DirectionUnknown
		}

		confidence := raw.Confidence
		if confidence < 0 {
			confidence = 0
		}
		if confidence > 1 {
			confidence = 1
		}

		out = append(out, model.Claim{
			CompanyName: req.CompanyName,
			Period:      req.Period,
			Text:        text,
			Type:        claimType,
			Direction:   direction,
			Timeframe:   strings.TrimSpace(raw.Timeframe),
			Value:       raw.Value,
			Unit:        strings.TrimSpace(raw.Unit),
			Confidence:  confidence,
			Evidence:    evidence,
			SourceURL:   req.SourceURL,
			SourceTitle: req.SourceTitle,
		})
	}
	return out, nil
}
