package model

// ClaimType categorizes the nature of an earnings claim
type ClaimType string

const (
	ClaimTypeRevenue     ClaimType = "revenue"
	ClaimTypeEPS         ClaimType = "eps"
	ClaimTypeGuidance    ClaimType = "guidance"
	ClaimTypeMargin      ClaimType = "margin"
	ClaimTypeCashFlow    ClaimType = "cash_flow"
	ClaimTypeCapex       ClaimType = "capex"
	ClaimTypeDemand      ClaimType = "demand"
	ClaimTypeSupply      ClaimType = "supply"
	ClaimTypePricing     ClaimType = "pricing"
	ClaimTypeProduct     ClaimType = "product"
	ClaimTypeCompetition ClaimType = "competition"
	ClaimTypeRisk        ClaimType = "risk"
	ClaimTypeRegulatory  ClaimType = "regulatory"
	ClaimTypeMacro       ClaimType = "macro"
	ClaimTypeOther       ClaimType = "other"
)

// ValidClaimType reports whether t is a member of the closed claim type enum.
func ValidClaimType(t ClaimType) bool {
	switch t {
	case ClaimTypeRevenue, ClaimTypeEPS, ClaimTypeGuidance, ClaimTypeMargin,
		ClaimTypeCashFlow, ClaimTypeCapex, ClaimTypeDemand, ClaimTypeSupply,
		ClaimTypePricing, ClaimTypeProduct, ClaimTypeCompetition, ClaimTypeRisk,
		ClaimTypeRegulatory, ClaimTypeMacro, ClaimTypeOther:
		return true
	}
	return false
}

// Direction is the directional reading of a claim. Unknown is a valid
// terminal value, never an error.
type Direction string

const (
	DirectionUp      Direction = "up"
	DirectionDown    Direction = "down"
	DirectionFlat    Direction = "flat"
	DirectionMixed   Direction = "mixed"
	DirectionUnknown Direction = "unknown"
)

// ValidDirection reports whether d is a member of the direction enum.
func ValidDirection(d Direction) bool {
	switch d {
	case DirectionUp, DirectionDown, DirectionFlat, DirectionMixed, DirectionUnknown:
		return true
	}
	return false
}

// Claim is a single structured claim extracted from a source document.
//
// This is the contract between LLM extraction, the graph merge layer, and
// any claim comparison logic. Its identity is a pure function of
// (company, period, type, timeframe, text), so re-extracting the same claim
// merges rather than duplicates.
type Claim struct {
	CompanyName string `json:"company_name"`
	Period      string `json:"period"` // e.g. "Q3-2025"

	Text      string    `json:"text"`
	Type      ClaimType `json:"claim_type"`
	Direction Direction `json:"direction"`
	Timeframe string    `json:"timeframe,omitempty"` // e.g. "next quarter", "FY2026"

	// Optional quantitative fields
	Value *float64 `json:"value,omitempty"`
	Unit  string   `json:"unit,omitempty"` // "USD", "%", "bps"

	Confidence float64 `json:"confidence"` // clamped to [0,1]

	// Evidence is a verbatim excerpt from the supporting source. Required.
	Evidence string `json:"evidence"`

	// Traceability
	SourceURL   string `json:"source_url,omitempty"`
	SourceTitle string `json:"source_title,omitempty"`
}

// RankedClaim is a claim row returned by the claims-with-sources query,
// joined with its supporting sources and ordered by confidence then recency.
type RankedClaim struct {
	ID            string      `json:"id"`
	Text          string      `json:"text"`
	Type          ClaimType   `json:"claim_type"`
	Direction     Direction   `json:"direction,omitempty"`
	Confidence    float64     `json:"confidence"`
	LastUpdatedAt string      `json:"last_updated_at,omitempty"`
	Sources       []SourceRef `json:"sources"`
}

// SourceRef is the compact source projection attached to a RankedClaim.
type SourceRef struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"source_type,omitempty"`
	PublishedAt string `json:"published_at,omitempty"`
	FetchedAt   string `json:"fetched_at,omitempty"`
}
