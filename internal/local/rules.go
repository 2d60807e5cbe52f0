package local

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veridex/veridex/internal/model"
)

// RuleModelVersion identifies results produced by the rule predictor.
const RuleModelVersion = "rules-offline-v1"

// RulePredictor is a conservative, fully offline analysis. It scores
// known misinformation phrasings and tags topical context, but it tends
// toward unverified: without sources it cannot assert truth.
type RulePredictor struct {
	suspicious []*regexp.Regexp
	topics     map[string][]string
}

// NewRulePredictor creates the rule-based predictor
func NewRulePredictor() *RulePredictor {
	return &RulePredictor{
		suspicious: []*regexp.Regexp{
			regexp.MustCompile(`(?i)breaking.*news`),
			regexp.MustCompile(`(?i)shocking.*truth`),
			regexp.MustCompile(`(?i)doctors hate this`),
			regexp.MustCompile(`(?i)you won'?t believe`),
			regexp.MustCompile(`(?i)secret.*revealed`),
			regexp.MustCompile(`(?i)urgent.*share`),
			regexp.MustCompile(`(?i)before.*deleted`),
		},
		topics: map[string][]string{
			"government": {"parliament", "ministry", "government", "policy", "bill"},
			"politics":   {"election", "vote", "party", "minister", "campaign"},
			"economy":    {"rupee", "rbi", "gst", "budget", "gdp", "inflation", "sensex"},
			"health":     {"vaccine", "virus", "pandemic", "hospital", "who"},
			"science":    {"study", "research", "scientists", "journal"},
			"technology": {"startup", "ai", "digital", "upi", "app"},
		},
	}
}

// Name returns the predictor name
func (p *RulePredictor) Name() string { return "rules" }

// IsAvailable always succeeds: the rules ship with the binary.
func (p *RulePredictor) IsAvailable(ctx context.Context) bool { return true }

// Predict analyzes the claim with pattern rules.
func (p *RulePredictor) Predict(ctx context.Context, text string) (*model.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lower := strings.ToLower(text)

	suspicionScore := 0
	for _, pattern := range p.suspicious {
		if pattern.MatchString(lower) {
			suspicionScore++
		}
	}

	var categories []string
	for category, keywords := range p.topics {
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) {
				categories = append(categories, category)
				break
			}
		}
	}
	sort.Strings(categories)

	verdict := model.VerdictUnverified
	confidence := 0.5
	explanation := "Offline analysis could not verify this claim against live sources. " +
		"Treat the verdict as provisional and re-check once connectivity returns."

	if suspicionScore >= 2 {
		verdict = model.VerdictMisleading
		confidence = 0.35
		explanation = "The claim matches several phrasings common in viral misinformation " +
			"(sensational framing, urgency to share). Offline analysis cannot confirm the " +
			"underlying facts; verify against primary sources."
	} else if suspicionScore == 1 {
		confidence = 0.4
		explanation = "The claim uses phrasing often seen in viral misinformation. Offline " +
			"analysis cannot verify it; re-check against live sources."
	}

	keyPoints := []string{"Analyzed offline without access to live sources"}
	if suspicionScore > 0 {
		keyPoints = append(keyPoints, fmt.Sprintf("Matched %d suspicious phrasing pattern(s)", suspicionScore))
	}
	for _, category := range categories {
		keyPoints = append(keyPoints, "Topic detected: "+category)
	}

	return &model.AnalysisResult{
		ID:              uuid.NewString(),
		InputText:       text,
		Verdict:         verdict,
		ConfidenceScore: confidence,
		Explanation:     explanation,
		Sources:         []string{},
		KeyPoints:       keyPoints,
		AnalyzedAt:      time.Now().UTC(),
		IsFromCache:     false,
		ModelVersion:    RuleModelVersion,
	}, nil
}
