// Package api is the typed HTTP client for the Veridex analysis backend.
// Each operation is a single request/response with a fixed timeout; retry
// and fallback policy live in the analysis facade, not here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/util"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	analyzePath  = "/api/v1/fact-check/analyze"
	extractPath  = "/api/v1/fact-check/extract"
	headlinePath = "/api/v1/news/top-headlines"
	searchPath   = "/api/v1/news/everything"
	chatPath     = "/api/v1/chat/continue"
	healthPath   = "/healthz"
)

// Client talks to a WP-FactCheck-compatible backend.
type Client struct {
	baseURL      string
	apiKey       string
	modelVersion string
	userAgent    string
	httpClient   *http.Client
	healthClient *http.Client
	limiter      *rate.Limiter
	logger       *zap.Logger
}

// NewClient creates a client from configuration. A nil logger disables
// logging.
func NewClient(cfg model.APIConfig, httpCfg model.HTTPConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	healthTimeout := cfg.HealthTimeout
	if healthTimeout == 0 {
		healthTimeout = 5 * time.Second
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
	}

	ratePerSecond := cfg.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 5
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:       cfg.APIKey,
		modelVersion: cfg.ModelVersion,
		userAgent:    httpCfg.UserAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		healthClient: &http.Client{
			Timeout:   healthTimeout,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		logger:  logger,
	}
}

// Wire formats. The backend speaks camelCase for results; requests use
// snake_case.

type analyzeRequest struct {
	Text         string `json:"text"`
	SourceURL    string `json:"source_url,omitempty"`
	ModelVersion string `json:"model_version,omitempty"`
}

type analyzeResponse struct {
	ID              string   `json:"id"`
	InputText       string   `json:"inputText"`
	SourceURL       string   `json:"sourceUrl"`
	Verdict         string   `json:"verdict"`
	ConfidenceScore float64  `json:"confidenceScore"`
	Explanation     string   `json:"explanation"`
	Sources         []string `json:"sources"`
	KeyPoints       []string `json:"keyPoints"`
	AnalyzedAt      string   `json:"analyzedAt"`
	IsFromCache     bool     `json:"isFromCache"`
	ModelVersion    string   `json:"modelVersion"`
}

type extractRequest struct {
	URL string `json:"url"`
}

type extractResponse struct {
	ExtractedText    string                 `json:"extracted_text"`
	ExtractedTextAlt string                 `json:"extractedText"`
	Metadata         map[string]interface{} `json:"metadata"`
}

type chatResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
	Timestamp      string `json:"timestamp"`
	ContextUsed    bool   `json:"contextUsed"`
}

// AnalyzeText submits a claim for remote analysis.
func (c *Client) AnalyzeText(ctx context.Context, text, sourceURL string) (*model.AnalysisResult, error) {
	body := analyzeRequest{
		Text:         text,
		SourceURL:    sourceURL,
		ModelVersion: c.modelVersion,
	}

	var resp analyzeResponse
	if err := c.post(ctx, "analyze", analyzePath, body, &resp); err != nil {
		return nil, err
	}

	result := &model.AnalysisResult{
		ID:              resp.ID,
		InputText:       resp.InputText,
		SourceURL:       resp.SourceURL,
		Verdict:         model.ParseVerdict(resp.Verdict),
		ConfidenceScore: normalizeConfidence(resp.ConfidenceScore),
		Explanation:     resp.Explanation,
		Sources:         resp.Sources,
		KeyPoints:       resp.KeyPoints,
		AnalyzedAt:      parseTimestamp(resp.AnalyzedAt),
		IsFromCache:     resp.IsFromCache,
		ModelVersion:    resp.ModelVersion,
	}
	if result.InputText == "" {
		result.InputText = text
	}
	if result.SourceURL == "" {
		result.SourceURL = sourceURL
	}
	return result, nil
}

// ExtractText asks the backend to pull article text out of a URL.
func (c *Client) ExtractText(ctx context.Context, rawURL string) (*model.ExtractedContent, error) {
	var resp extractResponse
	if err := c.post(ctx, "extract", extractPath, extractRequest{URL: rawURL}, &resp); err != nil {
		var srvErr *ServerError
		if errors.As(err, &srvErr) && !srvErr.Transient() {
			return nil, &CrawlerError{URL: rawURL, Err: err}
		}
		return nil, err
	}

	text := resp.ExtractedText
	if text == "" {
		text = resp.ExtractedTextAlt
	}

	metadata := make(map[string]string, len(resp.Metadata))
	for k, v := range resp.Metadata {
		metadata[k] = fmt.Sprint(v)
	}

	if failed, ok := resp.Metadata["extraction_failed"].(bool); ok && failed {
		return nil, &CrawlerError{URL: rawURL, Err: errors.New(metadata["error"])}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &CrawlerError{URL: rawURL, Err: errors.New("empty extraction result")}
	}

	return &model.ExtractedContent{ExtractedText: text, Metadata: metadata}, nil
}

// TopHeadlines fetches a page of headlines for a category.
func (c *Client) TopHeadlines(ctx context.Context, category string, page, pageSize int) (*model.NewsFeed, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	var feed model.NewsFeed
	if err := c.get(ctx, "news", headlinePath+"?"+query.Encode(), c.httpClient, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// SearchNews searches articles by query.
func (c *Client) SearchNews(ctx context.Context, q, sortBy string, page, pageSize int) (*model.NewsFeed, error) {
	query := url.Values{}
	query.Set("q", q)
	if sortBy != "" {
		query.Set("sortBy", sortBy)
	}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set("pageSize", strconv.Itoa(pageSize))
	}

	var feed model.NewsFeed
	if err := c.get(ctx, "news", searchPath+"?"+query.Encode(), c.httpClient, &feed); err != nil {
		return nil, err
	}
	return &feed, nil
}

// ContinueChat sends a follow-up question about a fact-check result.
func (c *Client) ContinueChat(ctx context.Context, req model.ChatRequest) (*model.ChatResponse, error) {
	var resp chatResponse
	if err := c.post(ctx, "chat", chatPath, req, &resp); err != nil {
		return nil, err
	}

	return &model.ChatResponse{
		Message:        resp.Message,
		ConversationID: resp.ConversationID,
		Timestamp:      parseTimestamp(resp.Timestamp),
		ContextUsed:    resp.ContextUsed,
	}, nil
}

// HealthCheck probes the backend. Uses the short health timeout.
func (c *Client) HealthCheck(ctx context.Context) (*model.HealthStatus, error) {
	var status model.HealthStatus
	if err := c.get(ctx, "health", healthPath, c.healthClient, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(op, req, c.httpClient, out)
}

func (c *Client) get(ctx context.Context, op, path string, client *http.Client, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create %s request: %w", op, err)
	}
	return c.do(op, req, client, out)
}

func (c *Client) do(op string, req *http.Request, client *http.Client, out interface{}) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("op", op),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("request completed",
		zap.String("op", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return c.statusError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// statusError maps a non-2xx response to the closed error taxonomy.
func (c *Client) statusError(op string, resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return &AuthenticationError{Op: op}
	case http.StatusTooManyRequests:
		return &RateLimitedError{Op: op, RetryAfter: resp.Header.Get("Retry-After")}
	default:
		return &ServerError{Op: op, StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
}

// errorMessage pulls the backend's error envelope message, if any.
func errorMessage(body io.Reader) string {
	var envelope struct {
		Message string `json:"message"`
		Detail  struct {
			Message string `json:"message"`
		} `json:"detail"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Detail.Message
}

// normalizeConfidence maps backends that report percentages (0-100) onto
// the 0.0-1.0 scale.
func normalizeConfidence(score float64) float64 {
	if score > 1 {
		score = score / 100
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// parseTimestamp accepts RFC3339 and the bare ISO format Python emits.
func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Now().UTC()
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}
