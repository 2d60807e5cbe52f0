package model

import (
	"strings"
	"time"
)

// Verdict is the closed classification of a fact-check outcome
type Verdict string

const (
	VerdictTrue          Verdict = "true"           // Claim is accurate
	VerdictFalse         Verdict = "false"          // Claim is inaccurate
	VerdictPartiallyTrue Verdict = "partially_true" // Mix of accurate and inaccurate elements
	VerdictMisleading    Verdict = "misleading"     // Technically accurate but presented deceptively
	VerdictUnverified    Verdict = "unverified"     // Insufficient evidence either way
	VerdictSatire        Verdict = "satire"         // Intentional parody, not a factual claim
)

// ParseVerdict normalizes the spellings used by analysis backends
// (e.g. "TRUE", "true_", "PARTIALLY_TRUE") into a Verdict.
// Unknown values map to VerdictUnverified.
func ParseVerdict(s string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.Trim(normalized, "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	normalized = strings.ReplaceAll(normalized, " ", "_")

	switch normalized {
	case "true", "real":
		return VerdictTrue
	case "false", "fake":
		return VerdictFalse
	case "partially_true", "partial":
		return VerdictPartiallyTrue
	case "misleading":
		return VerdictMisleading
	case "satire":
		return VerdictSatire
	default:
		return VerdictUnverified
	}
}

// AnalysisRequest is a claim submitted for fact-checking
type AnalysisRequest struct {
	Text      string `json:"text"`                 // Claim text, 10-5000 chars after sanitization
	SourceURL string `json:"source_url,omitempty"` // Where the claim was seen (optional)
}

// AnalysisResult is the outcome of one fact-check, remote or local.
// Results are immutable once created; the history store never updates
// an entry in place.
type AnalysisResult struct {
	ID              string    `json:"id"`                      // Unique result ID
	InputText       string    `json:"input_text"`              // Sanitized claim text
	SourceURL       string    `json:"source_url,omitempty"`    // Claim origin, if provided
	Verdict         Verdict   `json:"verdict"`                 // Classification
	ConfidenceScore float64   `json:"confidence_score"`        // 0.0 - 1.0
	Explanation     string    `json:"explanation"`             // Human-readable reasoning
	Sources         []string  `json:"sources"`                 // Cited source URLs, ordered
	KeyPoints       []string  `json:"key_points"`              // Supporting points, ordered
	AnalyzedAt      time.Time `json:"analyzed_at"`             // When the analysis ran
	IsFromCache     bool      `json:"is_from_cache"`           // True when served from the response cache
	ModelVersion    string    `json:"model_version,omitempty"` // Backend or local model identifier
}

// ExtractedContent is the text pulled out of an article URL
type ExtractedContent struct {
	ExtractedText string            `json:"extracted_text"`
	Metadata      map[string]string `json:"metadata,omitempty"` // title, domain, content_length, ...
}

// HealthStatus is the backend health report
type HealthStatus struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

// Healthy reports whether the backend considers itself usable
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}
