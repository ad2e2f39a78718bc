package discover

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
)

// FeedClient discovers candidates from the Google News RSS search feed.
// It needs no credentials, which makes it the default backend and the one
// local development runs on.
type FeedClient struct {
	cfg    model.DiscoveryConfig
	parser *gofeed.Parser
	log    *logger.Logger
}

// NewFeedClient builds the feed backend.
func NewFeedClient(cfg model.DiscoveryConfig, log *logger.Logger) *FeedClient {
	if log == nil {
		log = logger.Nop()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = "pulsegraph/0.1"
	return &FeedClient{
		cfg:    cfg,
		parser: parser,
		log:    log.With("component", "discover.feed"),
	}
}

func (c *FeedClient) feedURL(query string) string {
	lang := c.cfg.Language
	if lang == "" {
		lang = "en"
	}
	country := strings.ToUpper(c.cfg.Country)
	if country == "" {
		country = "US"
	}
	return fmt.Sprintf("https://news.google.com/rss/search?q=%s&hl=%s-%s&gl=%s&ceid=%s:%s",
		url.QueryEscape(query), lang, country, country, country, lang)
}

// Discover fetches and parses the search feed, returning up to maxResults
// candidates in feed order. The hint is accepted but has nothing to bias:
// the feed is already the news vertical.
func (c *FeedClient) Discover(ctx context.Context, query string, maxResults int, _ []model.SourceCategory) ([]model.Candidate, error) {
	if maxResults <= 0 {
		maxResults = c.cfg.MaxResults
	}

	feed, err := c.parser.ParseURLWithContext(c.feedURL(query), ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: parse feed: %w", err)
	}

	var out []model.Candidate
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		out = append(out, model.Candidate{
			URL:         item.Link,
			Title:       item.Title,
			Description: item.Description,
			Rank:        len(out) + 1,
		})
		if len(out) >= maxResults {
			break
		}
	}
	out = dedupe(out)
	c.log.Debug("feed discovery complete", "query", query, "candidates", len(out))
	return out, nil
}
