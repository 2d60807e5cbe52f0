package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/analysis"
	"github.com/veridex/veridex/internal/api"
	"github.com/veridex/veridex/internal/cache"
	"github.com/veridex/veridex/internal/connectivity"
	"github.com/veridex/veridex/internal/extractor"
	"github.com/veridex/veridex/internal/history"
	"github.com/veridex/veridex/internal/local"
	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/news"
	"github.com/veridex/veridex/internal/worker"
)

// app holds the wired services behind every command.
type app struct {
	cfg     *model.Config
	client  *api.Client
	service *analysis.Service
	news    *news.Service
	store   history.Store
	logger  *zap.Logger

	closers []func() error
}

func (a *app) Close() {
	for _, close := range a.closers {
		_ = close()
	}
	_ = a.logger.Sync()
}

// loadConfig builds the effective configuration: defaults overlaid with
// config file and VERIDEX_* environment values read through viper.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	set := func(key string, apply func()) {
		if viper.IsSet(key) {
			apply()
		}
	}

	set("api.base_url", func() { cfg.API.BaseURL = viper.GetString("api.base_url") })
	set("api.api_key", func() { cfg.API.APIKey = viper.GetString("api.api_key") })
	set("api.timeout", func() { cfg.API.Timeout = viper.GetDuration("api.timeout") })
	set("api.health_timeout", func() { cfg.API.HealthTimeout = viper.GetDuration("api.health_timeout") })
	set("api.model_version", func() { cfg.API.ModelVersion = viper.GetString("api.model_version") })
	set("http.timeout", func() { cfg.HTTP.Timeout = viper.GetDuration("http.timeout") })
	set("http.user_agent", func() { cfg.HTTP.UserAgent = viper.GetString("http.user_agent") })
	set("http.insecure_tls", func() { cfg.HTTP.InsecureTLS = viper.GetBool("http.insecure_tls") })
	set("cache.enabled", func() { cfg.Cache.Enabled = viper.GetBool("cache.enabled") })
	set("cache.dir", func() { cfg.Cache.Dir = viper.GetString("cache.dir") })
	set("history.capacity", func() { cfg.History.Capacity = viper.GetInt("history.capacity") })
	set("history.path", func() { cfg.History.Path = viper.GetString("history.path") })
	set("local.provider", func() { cfg.Local.Provider = viper.GetString("local.provider") })
	set("local.model", func() { cfg.Local.Model = viper.GetString("local.model") })
	set("local.base_url", func() { cfg.Local.BaseURL = viper.GetString("local.base_url") })
	set("news.page_size", func() { cfg.News.PageSize = viper.GetInt("news.page_size") })
	set("news.rss_fallback", func() { cfg.News.RSSFallback = viper.GetBool("news.rss_fallback") })
	set("concurrency.workers", func() { cfg.Concurrency.Workers = viper.GetInt("concurrency.workers") })

	cfg.Output.Verbose = verbose
	return cfg
}

// newApp wires the full service graph from configuration.
func newApp(cfg *model.Config) (*app, error) {
	logger := newLogger()
	client := api.NewClient(cfg.API, cfg.HTTP, logger)

	a := &app{cfg: cfg, client: client, logger: logger}

	var store history.Store
	if cfg.History.Path != "" {
		sqlStore, err := history.NewSQLiteStore(cfg.History.Path, cfg.History.Capacity)
		if err != nil {
			return nil, fmt.Errorf("open history: %w", err)
		}
		a.closers = append(a.closers, sqlStore.Close)
		store = sqlStore
	} else {
		store = history.NewMemoryStore(cfg.History.Capacity)
	}
	a.store = store

	probe := connectivity.NewProbe(healthCheck(client, cfg.API.HealthTimeout), 0, logger)

	opts := []analysis.Option{
		analysis.WithProbe(probe),
		analysis.WithExtractor(extractor.New(cfg.HTTP, logger)),
	}

	var responseCache cache.Cache
	if cfg.Cache.Enabled {
		responseCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.FactCheckTTL)
		opts = append(opts, analysis.WithCache(responseCache, cacheTTLs(cfg)))
	}

	if predictor, err := newPredictor(cfg); err != nil {
		return nil, err
	} else if predictor != nil {
		opts = append(opts, analysis.WithPredictor(predictor))
	}

	a.service = analysis.NewService(client, store, logger, opts...)

	newsOpts := []news.Option{}
	if responseCache != nil {
		newsOpts = append(newsOpts, news.WithCache(responseCache, cacheTTLs(cfg)))
	}
	if cfg.News.RSSFallback {
		limiter := worker.NewLimiter(cfg.News.RatePerSecond, cfg.News.RateBurst)
		fetcher := news.NewFeedFetcher(nil, cfg.HTTP.UserAgent, cfg.HTTP.Timeout, limiter)
		newsOpts = append(newsOpts, news.WithFallback(fetcher))
	}
	a.news = news.NewService(client, cfg.News.PageSize, logger, newsOpts...)

	return a, nil
}

// healthCheck probes the backend healthz endpoint.
func healthCheck(client *api.Client, timeout time.Duration) connectivity.CheckFunc {
	return func(ctx context.Context) bool {
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		health, err := client.HealthCheck(ctx)
		return err == nil && health.Healthy()
	}
}

func cacheTTLs(cfg *model.Config) cache.TTLs {
	ttls := cache.DefaultTTLs()
	if cfg.Cache.FactCheckTTL > 0 {
		ttls.FactChecks = cfg.Cache.FactCheckTTL
	}
	if cfg.Cache.ExtractTTL > 0 {
		ttls.Extracted = cfg.Cache.ExtractTTL
	}
	if cfg.Cache.NewsTTL > 0 {
		ttls.News = cfg.Cache.NewsTTL
	}
	return ttls
}

// newPredictor resolves the local fallback strategy, pulling API keys
// from the environment when the config leaves them blank.
func newPredictor(cfg *model.Config) (local.Predictor, error) {
	if cfg.Local.Provider != "" && cfg.Local.APIKey == "" {
		switch cfg.Local.Provider {
		case "openai":
			cfg.Local.APIKey = os.Getenv("OPENAI_API_KEY")
		case "perplexity":
			cfg.Local.APIKey = os.Getenv("PERPLEXITY_API_KEY")
		}
	}
	return local.NewPredictor(cfg.Local)
}

// newLogger builds the debug logger. Quiet runs get a nop logger; user
// facing output always goes through fmt to stderr instead.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
