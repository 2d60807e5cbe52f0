// Package local holds the fallback analysis strategies used when the
// remote backend is unreachable. A Predictor is an injected strategy, so
// a real on-device model can replace the built-in ones without touching
// facade logic.
package local

import (
	"context"
	"fmt"
	"strings"

	"github.com/veridex/veridex/internal/model"
)

// Predictor produces a local analysis result for a claim.
type Predictor interface {
	// Name returns the predictor name
	Name() string

	// Predict analyzes the claim locally
	Predict(ctx context.Context, text string) (*model.AnalysisResult, error)

	// IsAvailable checks whether the predictor can run right now
	IsAvailable(ctx context.Context) bool
}

// NewPredictor creates a predictor from configuration. An empty provider
// returns nil (local prediction disabled; the facade then uses its fixed
// placeholder result).
func NewPredictor(cfg model.LocalConfig) (Predictor, error) {
	switch strings.ToLower(cfg.Provider) {
	case "rules":
		return NewRulePredictor(), nil

	case "openai", "perplexity":
		return NewOpenAIPredictor(cfg)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown local provider: %s (supported: rules, openai, perplexity)", cfg.Provider)
	}
}
