// Package extractor pulls readable article text out of a URL locally.
// It is the fallback path for URL extraction when the backend's crawler
// is unreachable.
package extractor

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/util"
)

// minContentLength guards against pages that parsed to nothing useful.
const minContentLength = 100

// Extractor fetches a page and reduces it to readable text, honoring
// robots.txt.
type Extractor struct {
	fetcher *Fetcher
	robots  *util.RobotsChecker
	logger  *zap.Logger
}

// New creates an extractor from HTTP configuration. A nil logger
// disables logging.
func New(cfg model.HTTPConfig, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		fetcher: NewFetcher(cfg),
		robots:  util.NewRobotsChecker(cfg.UserAgent, 10*time.Second),
		logger:  logger,
	}
}

// Extract downloads the URL and returns its title and body text.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*model.ExtractedContent, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid URL: %q", rawURL)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme: %s", parsed.Scheme)
	}

	allowed, crawlDelay, err := e.robots.CanFetch(ctx, rawURL)
	if err == nil && !allowed {
		return nil, fmt.Errorf("robots.txt disallows fetching %s", rawURL)
	}
	if crawlDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(crawlDelay):
		}
	}

	fetched, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}

	title, text, err := ExtractText(fetched.HTML)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	if len(strings.TrimSpace(text)) < minContentLength {
		return nil, fmt.Errorf("extracted content too short for %s", rawURL)
	}

	e.logger.Debug("extracted locally",
		zap.String("url", rawURL),
		zap.Int("content_length", len(text)))

	extracted := text
	if title != "" {
		extracted = title + "\n\n" + text
	}

	return &model.ExtractedContent{
		ExtractedText: extracted,
		Metadata: map[string]string{
			"title":          title,
			"url":            fetched.FinalURL,
			"domain":         parsed.Host,
			"content_length": strconv.Itoa(len(text)),
			"extractor":      "local",
		},
	}, nil
}
