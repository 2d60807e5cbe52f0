// Package news serves headline feeds, preferring the backend aggregator
// and falling back to direct RSS fetches when it is unreachable.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/api"
	"github.com/veridex/veridex/internal/cache"
	"github.com/veridex/veridex/internal/model"
)

// Backend is the aggregator surface the service consumes.
type Backend interface {
	TopHeadlines(ctx context.Context, category string, page, pageSize int) (*model.NewsFeed, error)
	SearchNews(ctx context.Context, q, sortBy string, page, pageSize int) (*model.NewsFeed, error)
}

// Service fetches news feeds with caching and RSS fallback.
type Service struct {
	backend  Backend
	fetcher  *FeedFetcher
	cache    cache.Cache
	ttls     cache.TTLs
	pageSize int
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache attaches a response cache.
func WithCache(c cache.Cache, ttls cache.TTLs) Option {
	return func(s *Service) {
		s.cache = c
		s.ttls = ttls
	}
}

// WithFallback attaches a direct RSS fetcher used when the backend
// is unavailable.
func WithFallback(f *FeedFetcher) Option {
	return func(s *Service) { s.fetcher = f }
}

// NewService creates a news service over a backend.
func NewService(backend Backend, pageSize int, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	s := &Service{
		backend:  backend,
		ttls:     cache.DefaultTTLs(),
		pageSize: pageSize,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TopHeadlines returns a page of headlines for a category. Cached
// responses are served first; on backend unavailability the direct
// RSS fetcher takes over if one is configured.
func (s *Service) TopHeadlines(ctx context.Context, category string, page int) (*model.NewsFeed, error) {
	if page < 1 {
		page = 1
	}
	key := cache.Key(cache.BucketNews, "headlines", category, strconv.Itoa(page), strconv.Itoa(s.pageSize))
	if feed, ok := s.cachedFeed(key); ok {
		return feed, nil
	}

	feed, err := s.backend.TopHeadlines(ctx, category, page, s.pageSize)
	if err != nil {
		if !api.IsUnavailability(err) || s.fetcher == nil {
			return nil, err
		}
		s.logger.Debug("news backend unavailable, using rss fallback",
			zap.String("category", category), zap.Error(err))
		feed = s.fallbackFeed(ctx, category, page)
	}

	s.storeFeed(key, feed)
	return feed, nil
}

// Search queries headlines by keyword. There is no offline fallback
// for search; the RSS feeds carry no query surface.
func (s *Service) Search(ctx context.Context, query, sortBy string, page int) (*model.NewsFeed, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if page < 1 {
		page = 1
	}
	key := cache.Key(cache.BucketNews, "search", query, sortBy, strconv.Itoa(page), strconv.Itoa(s.pageSize))
	if feed, ok := s.cachedFeed(key); ok {
		return feed, nil
	}

	feed, err := s.backend.SearchNews(ctx, query, sortBy, page, s.pageSize)
	if err != nil {
		return nil, err
	}

	s.storeFeed(key, feed)
	return feed, nil
}

// fallbackFeed assembles a page directly from RSS sources, newest first.
func (s *Service) fallbackFeed(ctx context.Context, category string, page int) *model.NewsFeed {
	perSource := s.pageSize
	articles := s.fetcher.FetchCategory(ctx, category, perSource)

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	start := (page - 1) * s.pageSize
	if start > len(articles) {
		start = len(articles)
	}
	end := start + s.pageSize
	if end > len(articles) {
		end = len(articles)
	}

	if category == "" {
		category = "general"
	}
	return &model.NewsFeed{
		Articles:   articles[start:end],
		TotalCount: len(articles),
		Category:   category,
		HasMore:    end < len(articles),
	}
}

func (s *Service) cachedFeed(key string) (*model.NewsFeed, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(key)
	if !ok {
		return nil, false
	}
	var feed model.NewsFeed
	if err := json.Unmarshal(data, &feed); err != nil {
		_ = s.cache.Delete(key)
		return nil, false
	}
	return &feed, true
}

func (s *Service) storeFeed(key string, feed *model.NewsFeed) {
	if s.cache == nil || feed == nil || len(feed.Articles) == 0 {
		return
	}
	data, err := json.Marshal(feed)
	if err != nil {
		return
	}
	ttl := s.ttls.For(cache.BucketNews)
	if ttl == 0 {
		ttl = time.Hour
	}
	_ = s.cache.Set(key, data, ttl)
}
