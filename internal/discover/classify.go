package discover

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

// Classifier assigns a source category to a URL from configured domain
// lists and path patterns. The category drives the freshness thresholds,
// so the same URL must always classify the same way.
type Classifier struct {
	domains      map[string]model.SourceCategory
	pathPatterns []compiledPattern
}

type compiledPattern struct {
	re       *regexp.Regexp
	category model.SourceCategory
}

// NewClassifier compiles the category config. Invalid path patterns are
// skipped rather than failing the whole classifier.
func NewClassifier(cfg model.CategoriesConfig) *Classifier {
	c := &Classifier{domains: make(map[string]model.SourceCategory)}

	add := func(domains []string, category model.SourceCategory) {
		for _, d := range domains {
			c.domains[strings.ToLower(d)] = category
		}
	}
	add(cfg.NewsDomains, model.CategoryNews)
	add(cfg.BlogDomains, model.CategoryBlog)
	add(cfg.ForumDomains, model.CategoryForum)
	add(cfg.SocialDomains, model.CategorySocial)
	add(cfg.DocsDomains, model.CategoryDocs)

	for _, p := range cfg.PathPatterns {
		re, err := regexp.Compile(p.Pattern)
		if err != nil {
			continue
		}
		c.pathPatterns = append(c.pathPatterns, compiledPattern{
			re:       re,
			category: model.SourceCategory(p.Category),
		})
	}
	return c
}

// Classify maps a URL to its source category. Unparseable and unmatched
// URLs land in "other".
func (c *Classifier) Classify(rawURL string) model.SourceCategory {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return model.CategoryOther
	}

	host := strings.ToLower(parsed.Hostname())
	if category, ok := c.domains[host]; ok {
		return category
	}
	// Subdomains inherit the parent domain's category.
	for domain, category := range c.domains {
		if strings.HasSuffix(host, "."+domain) {
			return category
		}
	}

	path := strings.ToLower(parsed.Path)
	for _, p := range c.pathPatterns {
		if p.re.MatchString(path) {
			return p.category
		}
	}
	return model.CategoryOther
}
