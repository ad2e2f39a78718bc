package model

import "time"

// Company is a graph entity created lazily on first reference and kept
// indefinitely.
type Company struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Ticker        string `json:"ticker,omitempty"`
	LastUpdatedAt string `json:"last_updated_at,omitempty"`
}

// Event is one earnings event per (company, type, period).
type Event struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"` // "earnings"
	Period        string     `json:"period"`
	EventDate     *time.Time `json:"event_date,omitempty"`
	LastUpdatedAt string     `json:"last_updated_at,omitempty"`
}

// Signal is a derived metric for one (event, signal type, window), e.g. the
// aggregate sentiment over the seven days after an earnings call.
type Signal struct {
	ID         string    `json:"id,omitempty"`
	CompanyID  string    `json:"-"`
	EventID    string    `json:"-"`
	Type       string    `json:"signal_type"` // "sentiment"
	Score      float64   `json:"score"`
	Volume     int       `json:"volume"`
	Window     string    `json:"window"` // e.g. "post_earnings_7d"
	ComputedAt time.Time `json:"computed_at"`
}

// SentimentDelta compares a signal score across two periods.
type SentimentDelta struct {
	PeriodA string   `json:"period_a"`
	PeriodB string   `json:"period_b"`
	Window  string   `json:"window"`
	Delta   *float64 `json:"delta"`
	A       *Signal  `json:"a,omitempty"`
	B       *Signal  `json:"b,omitempty"`
	Note    string   `json:"note,omitempty"`
}
