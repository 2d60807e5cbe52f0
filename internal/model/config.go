package model

import "time"

// Config is the complete Veridex configuration
type Config struct {
	API         APIConfig         `yaml:"api"`
	HTTP        HTTPConfig        `yaml:"http"`
	Cache       CacheConfig       `yaml:"cache"`
	History     HistoryConfig     `yaml:"history"`
	Local       LocalConfig       `yaml:"local"`
	News        NewsConfig        `yaml:"news"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Output      OutputConfig      `yaml:"output"`
}

// APIConfig configures the remote analysis backend
type APIConfig struct {
	BaseURL       string        `yaml:"base_url"`       // e.g. http://localhost:8000
	APIKey        string        `yaml:"api_key"`        // Bearer token, optional
	Timeout       time.Duration `yaml:"timeout"`        // Per-request timeout
	HealthTimeout time.Duration `yaml:"health_timeout"` // Shorter timeout for health checks
	ModelVersion  string        `yaml:"model_version"`  // Requested backend model
	RatePerSecond float64       `yaml:"rate_per_second"`
	RateBurst     int           `yaml:"rate_burst"`
}

// HTTPConfig configures outbound HTTP behavior for local fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	InsecureTLS  bool          `yaml:"insecure_tls"`
	HTTPProxy    string        `yaml:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy"`
	NoProxy      string        `yaml:"no_proxy"`
}

// CacheConfig configures the layered response cache
type CacheConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Dir          string        `yaml:"dir"` // Disk layer location; empty disables disk layer
	MemoryTTL    time.Duration `yaml:"memory_ttl"`
	FactCheckTTL time.Duration `yaml:"fact_check_ttl"`
	ExtractTTL   time.Duration `yaml:"extract_ttl"`
	NewsTTL      time.Duration `yaml:"news_ttl"`
}

// HistoryConfig configures the bounded result history
type HistoryConfig struct {
	Capacity int    `yaml:"capacity"`
	Path     string `yaml:"path"` // SQLite file; empty keeps history in memory only
}

// LocalConfig configures the local fallback predictor
type LocalConfig struct {
	Provider  string        `yaml:"provider"` // "", "rules", "openai"
	Model     string        `yaml:"model"`
	APIKey    string        `yaml:"api_key"`
	BaseURL   string        `yaml:"base_url"` // Custom endpoint for OpenAI-compatible APIs
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
}

// NewsConfig configures the news feed client
type NewsConfig struct {
	PageSize      int     `yaml:"page_size"`
	RSSFallback   bool    `yaml:"rss_fallback"` // Fetch feeds directly when the backend is down
	RatePerSecond float64 `yaml:"rate_per_second"`
	RateBurst     int     `yaml:"rate_burst"`
}

// ConcurrencyConfig configures worker pools
type ConcurrencyConfig struct {
	Workers int `yaml:"workers"` // Batch check workers
}

// OutputConfig configures presentation
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
	JSON    bool `yaml:"json"`
}

// DefaultConfig returns the built-in defaults. Values mirror the backend's
// own cache TTLs so client and server expire entries together.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:       "http://localhost:8000",
			Timeout:       30 * time.Second,
			HealthTimeout: 5 * time.Second,
			ModelVersion:  "sonar-pro",
			RatePerSecond: 5,
			RateBurst:     5,
		},
		HTTP: HTTPConfig{
			Timeout:      30 * time.Second,
			UserAgent:    "Veridex/0.1 (+https://github.com/veridex/veridex)",
			MaxBodyBytes: 2_000_000,
		},
		Cache: CacheConfig{
			Enabled:      true,
			MemoryTTL:    time.Hour,
			FactCheckTTL: 24 * time.Hour,
			ExtractTTL:   6 * time.Hour,
			NewsTTL:      time.Hour,
		},
		History: HistoryConfig{
			Capacity: 20,
		},
		Local: LocalConfig{
			Provider:  "",
			Timeout:   30 * time.Second,
			MaxTokens: 1000,
		},
		News: NewsConfig{
			PageSize:      20,
			RSSFallback:   true,
			RatePerSecond: 1,
			RateBurst:     2,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Output: OutputConfig{},
	}
}
