package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/worker"
)

// Source is one RSS publisher with optional per-category feeds.
type Source struct {
	Name        string
	FeedURL     string
	Credibility float64
	CategoryURL map[string]string
}

// DefaultSources are the feeds used when the backend's aggregator is
// unreachable. Mirrors the backend's own source list.
func DefaultSources() []Source {
	return []Source{
		{
			Name:        "Times of India",
			FeedURL:     "https://timesofindia.indiatimes.com/rssfeedstopstories.cms",
			Credibility: 0.8,
			CategoryURL: map[string]string{
				"business":   "https://timesofindia.indiatimes.com/rssfeeds/1898055.cms",
				"sports":     "https://timesofindia.indiatimes.com/rssfeeds/4719148.cms",
				"technology": "https://timesofindia.indiatimes.com/rssfeeds/5880659.cms",
			},
		},
		{
			Name:        "The Hindu",
			FeedURL:     "https://www.thehindu.com/news/national/feeder/default.rss",
			Credibility: 0.9,
			CategoryURL: map[string]string{
				"business":   "https://www.thehindu.com/business/feeder/default.rss",
				"sports":     "https://www.thehindu.com/sport/feeder/default.rss",
				"technology": "https://www.thehindu.com/sci-tech/technology/feeder/default.rss",
			},
		},
		{
			Name:        "Indian Express",
			FeedURL:     "https://indianexpress.com/print/front-page/feed/",
			Credibility: 0.85,
			CategoryURL: map[string]string{
				"business":   "https://indianexpress.com/section/business/feed/",
				"sports":     "https://indianexpress.com/section/sports/feed/",
				"technology": "https://indianexpress.com/section/technology/feed/",
			},
		},
	}
}

// rssDocument is the subset of RSS 2.0 we consume
type rssDocument struct {
	Channel struct {
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	Enclosure   struct {
		URL string `xml:"url,attr"`
	} `xml:"enclosure"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// FeedFetcher downloads and parses RSS feeds directly, rate limited per
// publisher domain.
type FeedFetcher struct {
	httpClient *http.Client
	limiter    *worker.Limiter
	userAgent  string
	sources    []Source
}

// NewFeedFetcher creates a fetcher over the given sources
func NewFeedFetcher(sources []Source, userAgent string, timeout time.Duration, limiter *worker.Limiter) *FeedFetcher {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &FeedFetcher{
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		userAgent:  userAgent,
		sources:    sources,
	}
}

// FetchCategory pulls articles for a category from every source that
// carries it. Individual feed failures are skipped, not fatal.
func (f *FeedFetcher) FetchCategory(ctx context.Context, category string, perSource int) []model.NewsArticle {
	var articles []model.NewsArticle

	for _, source := range f.sources {
		feedURL := source.FeedURL
		if category != "" && category != "general" {
			url, ok := source.CategoryURL[category]
			if !ok {
				continue
			}
			feedURL = url
		}

		items, err := f.fetchFeed(ctx, feedURL)
		if err != nil {
			continue
		}

		if perSource > 0 && len(items) > perSource {
			items = items[:perSource]
		}
		for _, item := range items {
			articles = append(articles, toArticle(item, source, category))
		}
	}

	return articles
}

func (f *FeedFetcher) fetchFeed(ctx context.Context, feedURL string) ([]rssItem, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, feedURL); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4_000_000))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var doc rssDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	return doc.Channel.Items, nil
}

func toArticle(item rssItem, source Source, category string) model.NewsArticle {
	if category == "" {
		category = "general"
	}
	return model.NewsArticle{
		ID:               uuid.NewString(),
		Title:            strings.TrimSpace(item.Title),
		Summary:          cleanSummary(item.Description),
		Source:           source.Name,
		ImageURL:         item.Enclosure.URL,
		URL:              strings.TrimSpace(item.Link),
		PublishedAt:      parsePubDate(item.PubDate),
		Category:         category,
		CredibilityScore: source.Credibility,
	}
}

// cleanSummary strips embedded markup and truncates long descriptions.
func cleanSummary(description string) string {
	text := htmlTagPattern.ReplaceAllString(description, " ")
	text = strings.Join(strings.Fields(text), " ")
	// Truncate on rune boundaries; feeds carry Devanagari and other
	// multi-byte text.
	if runes := []rune(text); len(runes) > 300 {
		text = string(runes[:300]) + "..."
	}
	return text
}

func parsePubDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
