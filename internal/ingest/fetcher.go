package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pulsegraph/pulsegraph/internal/cache"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
	"github.com/pulsegraph/pulsegraph/internal/util"
	"github.com/pulsegraph/pulsegraph/internal/worker"
)

// HTTPFetcher fetches pages directly. Before each request it checks
// robots.txt, waits on the per-host rate limiter, and consults the cache;
// after a fetch it extracts title and visible text from the HTML.
type HTTPFetcher struct {
	cfg        model.FetchConfig
	httpClient *http.Client
	robots     *util.RobotsChecker
	limiter    *worker.Limiter
	store      cache.Cache
	log        *logger.Logger
}

// NewHTTPFetcher builds the direct fetch backend. store may be nil to
// disable caching.
func NewHTTPFetcher(cfg model.FetchConfig, store cache.Cache, log *logger.Logger) *HTTPFetcher {
	if log == nil {
		log = logger.Nop()
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
	}
	client := &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 3 {
				return fmt.Errorf("stopped after 3 redirects")
			}
			return nil
		},
	}

	return &HTTPFetcher{
		cfg:        cfg,
		httpClient: client,
		robots:     util.NewRobotsChecker(util.NormalizeUserAgent(cfg.UserAgent), cfg.Timeout),
		limiter:    worker.NewLimiter(cfg.RequestsPerSecond, cfg.Burst),
		store:      store,
		log:        log.With("component", "ingest.http"),
	}
}

// Fetch retrieves rawURL and returns the normalized document.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*model.Document, error) {
	if doc, ok := f.cached(rawURL); ok {
		f.log.Debug("cache hit", "url", rawURL)
		return doc, nil
	}

	if f.cfg.RespectRobots {
		allowed, crawlDelay, err := f.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, rawURL)
		}
		if crawlDelay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(crawlDelay):
			}
		}
	}

	if err := f.limiter.Wait(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	title, text := parseHTML(string(body))
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingContent, rawURL)
	}

	doc := &model.Document{Title: title, BodyText: text}
	f.remember(rawURL, doc)
	return doc, nil
}

func (f *HTTPFetcher) cached(rawURL string) (*model.Document, bool) {
	if f.store == nil {
		return nil, false
	}
	data, ok := f.store.Get(cache.Key(rawURL))
	if !ok {
		return nil, false
	}
	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false
	}
	return &doc, true
}

func (f *HTTPFetcher) remember(rawURL string, doc *model.Document) {
	if f.store == nil {
		return
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return
	}
	if err := f.store.Set(cache.Key(rawURL), data, 0); err != nil {
		f.log.Warn("cache write failed", "url", rawURL, "error", err)
	}
}
