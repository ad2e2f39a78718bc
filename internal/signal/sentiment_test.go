package signal

import (
	"math"
	"testing"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

func claim(direction model.Direction, confidence float64) model.Claim {
	return model.Claim{Direction: direction, Confidence: confidence}
}

func TestSentimentScore(t *testing.T) {
	cases := []struct {
		name   string
		claims []model.Claim
		want   float64
	}{
		{"no claims", nil, 0},
		{"all up", []model.Claim{claim(model.DirectionUp, 0.8), claim(model.DirectionUp, 0.6)}, 1},
		{"all down", []model.Claim{claim(model.DirectionDown, 0.9)}, -1},
		{
			"up outweighs down by confidence",
			[]model.Claim{claim(model.DirectionUp, 0.9), claim(model.DirectionDown, 0.3)},
			(0.9 - 0.3) / 1.2,
		},
		{
			"flat dampens",
			[]model.Claim{claim(model.DirectionUp, 0.5), claim(model.DirectionFlat, 0.5)},
			0.5,
		},
		{
			"unknown excluded",
			[]model.Claim{claim(model.DirectionUp, 0.5), claim(model.DirectionUnknown, 0.9)},
			1,
		},
		{"only unknown", []model.Claim{claim(model.DirectionUnknown, 0.9)}, 0},
		{"zero confidence ignored", []model.Claim{claim(model.DirectionUp, 0)}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := SentimentScore(tc.claims)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("SentimentScore = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSentimentScore_Bounds(t *testing.T) {
	claims := []model.Claim{
		claim(model.DirectionUp, 0.9),
		claim(model.DirectionDown, 0.2),
		claim(model.DirectionMixed, 0.7),
		claim(model.DirectionFlat, 0.4),
	}
	score := SentimentScore(claims)
	if score < -1 || score > 1 {
		t.Errorf("score %v outside [-1, 1]", score)
	}
}

func TestSentiment_BuildsSignal(t *testing.T) {
	now := time.Date(2025, 11, 21, 0, 0, 0, 0, time.UTC)
	claims := []model.Claim{
		claim(model.DirectionUp, 0.8),
		claim(model.DirectionUnknown, 0.5),
	}

	sig := Sentiment("comp-1", "ev-1", "post_earnings_7d", claims, now)
	if sig.Type != "sentiment" || sig.Window != "post_earnings_7d" {
		t.Errorf("signal identity wrong: %+v", sig)
	}
	if sig.Volume != 2 {
		t.Errorf("volume should count all claims, got %d", sig.Volume)
	}
	if sig.Score != 1 {
		t.Errorf("score = %v, want 1", sig.Score)
	}
	if !sig.ComputedAt.Equal(now) {
		t.Errorf("computed_at not stamped: %v", sig.ComputedAt)
	}
}
