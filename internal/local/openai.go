package local

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sashabaranov/go-openai"

	"github.com/veridex/veridex/internal/model"
)

// OpenAIPredictor analyzes claims directly through an OpenAI-compatible
// chat completions API (OpenAI itself, or Perplexity via BaseURL). Used
// when the Veridex backend is down but the machine still has internet.
type OpenAIPredictor struct {
	client *openai.Client
	cfg    model.LocalConfig
}

// NewOpenAIPredictor creates the predictor. An API key is required.
func NewOpenAIPredictor(cfg model.LocalConfig) (*OpenAIPredictor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required for the %s provider", cfg.Provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIPredictor{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

// Name returns the predictor name
func (p *OpenAIPredictor) Name() string { return "openai" }

// IsAvailable checks the API is reachable with the configured key.
func (p *OpenAIPredictor) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := p.client.ListModels(ctx)
	return err == nil
}

// verdictPayload is the JSON shape the model is instructed to return.
type verdictPayload struct {
	Verdict         string   `json:"verdict"`
	ConfidenceScore float64  `json:"confidence_score"`
	Explanation     string   `json:"explanation"`
	KeyPoints       []string `json:"key_points"`
	Sources         []string `json:"sources"`
}

// Predict analyzes the claim with a single chat completion.
func (p *OpenAIPredictor) Predict(ctx context.Context, text string) (*model.AnalysisResult, error) {
	chatModel := p.cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	maxTokens := p.cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	timeout := p.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are an expert fact-checker. Be conservative: use UNVERIFIED " +
					"whenever evidence is insufficient, and never invent sources.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(text),
			},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in completion response")
	}

	payload, err := parseVerdictJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse verdict: %w", err)
	}

	confidence := payload.ConfidenceScore
	if confidence > 1 {
		confidence = confidence / 100
	}
	// Direct LLM verdicts never reach full certainty
	if confidence > 0.95 {
		confidence = 0.95
	}

	return &model.AnalysisResult{
		ID:              uuid.NewString(),
		InputText:       text,
		Verdict:         model.ParseVerdict(payload.Verdict),
		ConfidenceScore: confidence,
		Explanation:     payload.Explanation,
		Sources:         payload.Sources,
		KeyPoints:       payload.KeyPoints,
		AnalyzedAt:      time.Now().UTC(),
		IsFromCache:     false,
		ModelVersion:    "direct-" + chatModel,
	}, nil
}

func buildPrompt(text string) string {
	return fmt.Sprintf(`Analyze this claim for factual accuracy: %q

Respond with ONLY this JSON format:
{
  "verdict": "TRUE|FALSE|PARTIALLY_TRUE|MISLEADING|UNVERIFIED|SATIRE",
  "confidence_score": 0.85,
  "explanation": "150-200 word analysis explaining the verdict",
  "key_points": ["point 1", "point 2"],
  "sources": ["https://credible-source.example"]
}

Use UNVERIFIED when evidence is insufficient. Cite only sources you are
certain exist.`, text)
}

// parseVerdictJSON extracts the JSON object from the completion text,
// which models often wrap in prose or code fences.
func parseVerdictJSON(content string) (*verdictPayload, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var payload verdictPayload
	if err := json.Unmarshal([]byte(content[start:end+1]), &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}
