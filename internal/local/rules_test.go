package local

import (
	"context"
	"testing"

	"github.com/veridex/veridex/internal/model"
)

func TestRulePredictor_ConservativeDefault(t *testing.T) {
	p := NewRulePredictor()

	result, err := p.Predict(context.Background(), "The new highway between Pune and Nashik opened in March.")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Verdict != model.VerdictUnverified {
		t.Errorf("Expected unverified for neutral claim, got %s", result.Verdict)
	}
	if result.ConfidenceScore != 0.5 {
		t.Errorf("Expected confidence 0.5, got %f", result.ConfidenceScore)
	}
	if result.ModelVersion != RuleModelVersion {
		t.Errorf("Expected model version %s, got %s", RuleModelVersion, result.ModelVersion)
	}
	if result.ID == "" {
		t.Error("Expected generated ID")
	}
}

func TestRulePredictor_SuspiciousPatterns(t *testing.T) {
	p := NewRulePredictor()

	result, err := p.Predict(context.Background(),
		"BREAKING news: the shocking hidden truth they deleted, urgent please share before it is deleted")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	if result.Verdict != model.VerdictMisleading {
		t.Errorf("Expected misleading for multi-pattern claim, got %s", result.Verdict)
	}
	if result.ConfidenceScore >= 0.5 {
		t.Errorf("Expected lowered confidence, got %f", result.ConfidenceScore)
	}
}

func TestRulePredictor_TopicDetection(t *testing.T) {
	p := NewRulePredictor()

	result, err := p.Predict(context.Background(), "The RBI kept the repo rate unchanged while inflation eased.")
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}

	found := false
	for _, point := range result.KeyPoints {
		if point == "Topic detected: economy" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected economy topic key point, got %v", result.KeyPoints)
	}
}

func TestRulePredictor_CanceledContext(t *testing.T) {
	p := NewRulePredictor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Predict(ctx, "some claim text of adequate length"); err == nil {
		t.Error("Expected error for canceled context")
	}
}

func TestNewPredictor_Factory(t *testing.T) {
	cfg := model.DefaultConfig().Local

	p, err := NewPredictor(cfg)
	if err != nil || p != nil {
		t.Errorf("Expected nil predictor for empty provider, got %v / %v", p, err)
	}

	cfg.Provider = "rules"
	p, err = NewPredictor(cfg)
	if err != nil || p == nil || p.Name() != "rules" {
		t.Errorf("Expected rules predictor, got %v / %v", p, err)
	}

	cfg.Provider = "openai"
	if _, err := NewPredictor(cfg); err == nil {
		t.Error("Expected error for openai provider without API key")
	}

	cfg.Provider = "something-else"
	if _, err := NewPredictor(cfg); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestParseVerdictJSON_Fenced(t *testing.T) {
	content := "Here is my analysis:\n```json\n{\"verdict\": \"FALSE\", \"confidence_score\": 0.8, \"explanation\": \"x\"}\n```"

	payload, err := parseVerdictJSON(content)
	if err != nil {
		t.Fatalf("parseVerdictJSON failed: %v", err)
	}
	if payload.Verdict != "FALSE" || payload.ConfidenceScore != 0.8 {
		t.Errorf("Unexpected payload: %+v", payload)
	}
}

func TestParseVerdictJSON_NoJSON(t *testing.T) {
	if _, err := parseVerdictJSON("I cannot analyze this claim."); err == nil {
		t.Error("Expected error for response without JSON")
	}
}
