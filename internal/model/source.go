package model

import "time"

// SourceCategory classifies where a document came from. Freshness thresholds
// are keyed by category.
type SourceCategory string

const (
	CategoryNews   SourceCategory = "news"
	CategoryBlog   SourceCategory = "blog"
	CategoryForum  SourceCategory = "forum"
	CategorySocial SourceCategory = "social"
	CategoryDocs   SourceCategory = "docs"
	CategoryOther  SourceCategory = "other"
)

// SourceDoc is a normalized document produced by ingestion.
//
// Everything downstream (extraction, graph merges) depends on this shape,
// never on a discovery or fetch backend's raw response format.
type SourceDoc struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	RawText string `json:"raw_text"`

	Category  SourceCategory `json:"source_type"`
	FetchedAt time.Time      `json:"fetched_at"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	Query       string     `json:"query,omitempty"` // discovery query that surfaced this doc

	// Optional traceability fields
	SiteName string `json:"site_name,omitempty"`
	Author   string `json:"author,omitempty"`
	Language string `json:"language,omitempty"`
}

// Candidate is a discovery result: a URL worth fetching, with whatever
// metadata the discovery backend happened to return.
type Candidate struct {
	URL         string `json:"url"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank,omitempty"`
}

// Document is the normalized output of a fetch: title plus visible body text.
type Document struct {
	Title    string
	BodyText string
}
