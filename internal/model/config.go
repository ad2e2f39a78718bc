package model

import "time"

// Config is the complete PulseGraph configuration, populated from defaults,
// the config file, PULSEGRAPH_* environment variables, and CLI flags.
type Config struct {
	Graph      GraphConfig      `yaml:"graph" mapstructure:"graph"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Freshness  FreshnessConfig  `yaml:"freshness" mapstructure:"freshness"`
	Refresh    RefreshConfig    `yaml:"refresh" mapstructure:"refresh"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
}

// GraphConfig configures the Neo4j connection. URI is required unless the
// in-memory store is selected.
type GraphConfig struct {
	URI            string `yaml:"uri" mapstructure:"uri"`
	User           string `yaml:"user" mapstructure:"user"`
	Password       string `yaml:"password" mapstructure:"password"`
	Database       string `yaml:"database" mapstructure:"database"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxPoolSize    int    `yaml:"max_pool_size" mapstructure:"max_pool_size"`
}

// DiscoveryConfig configures candidate URL discovery.
// Backend "serp" uses a Bright Data-style SERP REST API and requires APIKey
// and SERPZone; backend "feed" uses the Google News RSS feed and needs no
// credentials.
type DiscoveryConfig struct {
	Backend    string        `yaml:"backend" mapstructure:"backend"`
	Endpoint   string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey     string        `yaml:"api_key" mapstructure:"api_key"`
	SERPZone   string        `yaml:"serp_zone" mapstructure:"serp_zone"`
	Country    string        `yaml:"country" mapstructure:"country"`
	Language   string        `yaml:"language" mapstructure:"language"`
	MaxResults int           `yaml:"max_results" mapstructure:"max_results"`
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// FetchConfig configures content fetching. Backend "http" fetches pages
// directly; backend "unlocker" proxies through a Bright Data unlocker zone.
type FetchConfig struct {
	Backend           string        `yaml:"backend" mapstructure:"backend"`
	Endpoint          string        `yaml:"endpoint" mapstructure:"endpoint"`
	APIKey            string        `yaml:"api_key" mapstructure:"api_key"`
	UnlockerZone      string        `yaml:"unlocker_zone" mapstructure:"unlocker_zone"`
	Country           string        `yaml:"country" mapstructure:"country"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int           `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy" mapstructure:"https_proxy"`
	NoProxy           string        `yaml:"no_proxy" mapstructure:"no_proxy"`
}

// ExtractConfig configures LLM claim extraction.
type ExtractConfig struct {
	Model       string        `yaml:"model" mapstructure:"model"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	MaxChars    int           `yaml:"max_chars" mapstructure:"max_chars"`
	MaxClaims   int           `yaml:"max_claims" mapstructure:"max_claims"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// FreshnessConfig maps source categories to maximum-age thresholds in hours.
// Categories absent from the map fall back to DefaultHours.
type FreshnessConfig struct {
	ThresholdHours map[string]float64 `yaml:"threshold_hours" mapstructure:"threshold_hours"`
	DefaultHours   float64            `yaml:"default_hours" mapstructure:"default_hours"`
}

// RefreshConfig configures the refresh orchestrator.
type RefreshConfig struct {
	Workers      int    `yaml:"workers" mapstructure:"workers"`
	ErrorSample  int    `yaml:"error_sample" mapstructure:"error_sample"`
	SignalWindow string `yaml:"signal_window" mapstructure:"signal_window"`
}

// CacheConfig configures the layered fetch cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// CategoriesConfig drives source category classification by domain and URL
// path patterns.
type CategoriesConfig struct {
	NewsDomains   []string          `yaml:"news_domains" mapstructure:"news_domains"`
	BlogDomains   []string          `yaml:"blog_domains" mapstructure:"blog_domains"`
	ForumDomains  []string          `yaml:"forum_domains" mapstructure:"forum_domains"`
	SocialDomains []string          `yaml:"social_domains" mapstructure:"social_domains"`
	DocsDomains   []string          `yaml:"docs_domains" mapstructure:"docs_domains"`
	PathPatterns  []CategoryPattern `yaml:"path_patterns" mapstructure:"path_patterns"`
}

// CategoryPattern maps a URL regexp to a source category.
type CategoryPattern struct {
	Pattern  string `yaml:"pattern" mapstructure:"pattern"`
	Category string `yaml:"category" mapstructure:"category"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
	Mode string `yaml:"mode" mapstructure:"mode"` // "dev" or "prod"
}

// DefaultConfig returns the built-in defaults. Thresholds mirror the
// freshness policy: news 24h, blog 48h, forum/social 6h, docs 48h, with a
// 24h fallback for anything unconfigured.
func DefaultConfig() *Config {
	return &Config{
		Graph: GraphConfig{
			User:           "neo4j",
			TimeoutSeconds: 10,
			MaxPoolSize:    50,
		},
		Discovery: DiscoveryConfig{
			Backend:    "feed",
			Endpoint:   "https://api.brightdata.com/request",
			Country:    "us",
			Language:   "en",
			MaxResults: 8,
			Timeout:    90 * time.Second,
		},
		Fetch: FetchConfig{
			Backend:           "http",
			Endpoint:          "https://api.brightdata.com/request",
			Country:           "us",
			Timeout:           2 * time.Minute,
			UserAgent:         "PulseGraph/0.1 (+https://github.com/pulsegraph/pulsegraph)",
			MaxBodyBytes:      2_000_000,
			RespectRobots:     true,
			RequestsPerSecond: 1,
			Burst:             3,
		},
		Extract: ExtractConfig{
			Model:       "gpt-4o-mini",
			MaxChars:    12000,
			MaxClaims:   10,
			MaxTokens:   900,
			Temperature: 0.2,
			Timeout:     60 * time.Second,
		},
		Freshness: FreshnessConfig{
			ThresholdHours: map[string]float64{
				string(CategoryNews):   24,
				string(CategoryBlog):   48,
				string(CategoryForum):  6,
				string(CategorySocial): 6,
				string(CategoryDocs):   48,
				string(CategoryOther):  24,
			},
			DefaultHours: 24,
		},
		Refresh: RefreshConfig{
			Workers:      3,
			ErrorSample:  3,
			SignalWindow: "post_earnings_7d",
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Categories: CategoriesConfig{
			NewsDomains: []string{
				"reuters.com", "bloomberg.com", "cnbc.com", "ft.com", "wsj.com",
				"finance.yahoo.com", "marketwatch.com", "barrons.com",
				"investors.com", "fool.com", "businessinsider.com",
			},
			BlogDomains: []string{
				"medium.com", "substack.com", "seekingalpha.com", "wordpress.com",
			},
			ForumDomains: []string{
				"reddit.com", "news.ycombinator.com", "stocktwits.com",
			},
			SocialDomains: []string{
				"twitter.com", "x.com", "linkedin.com", "threads.net",
			},
			DocsDomains: []string{
				"sec.gov", "investor.gov", "annualreports.com",
			},
			PathPatterns: []CategoryPattern{
				{Pattern: `/blog/`, Category: "blog"},
				{Pattern: `/forum/|/community/`, Category: "forum"},
				{Pattern: `/ir/|/investor-relations/|10-[kq]`, Category: "docs"},
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "dev",
		},
	}
}
