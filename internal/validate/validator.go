package validate

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// MinLength is the minimum claim length accepted for analysis
	MinLength = 10
	// MaxLength is the maximum claim length accepted for analysis
	MaxLength = 5000
)

// Reason classifies why a claim was rejected
type Reason string

const (
	ReasonTooShort       Reason = "too_short"
	ReasonTooLong        Reason = "too_long"
	ReasonHarmfulContent Reason = "harmful_content"
	ReasonLikelySpam     Reason = "likely_spam"
)

// Error is a validation rejection. The rejected text is never included,
// so errors are safe to log.
type Error struct {
	Reason Reason
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid claim: %s (%s)", e.Reason, e.Detail)
}

var (
	// Patterns that indicate script injection attempts
	harmfulPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<\s*script`),
		regexp.MustCompile(`(?i)javascript\s*:`),
		regexp.MustCompile(`(?i)vbscript\s*:`),
		regexp.MustCompile(`(?i)data\s*:\s*text/html`),
		regexp.MustCompile(`(?i)\bon(?:click|error|load|mouseover)\s*=`),
	}

	// Promotional phrases common in spam forwards
	spamPhrases = []string{
		"buy now",
		"click here",
		"limited offer",
		"act now",
		"100% free",
		"earn money fast",
		"forward to everyone",
	}

	repeatedCharPattern = regexp.MustCompile(`(.)\1{7,}`)
	exclamationRun      = regexp.MustCompile(`!{4,}`)

	htmlTagPattern    = regexp.MustCompile(`<[^>]*>`)
	unsafeCharPattern = regexp.MustCompile("[^\\p{L}\\p{M}\\p{N}\\p{Zs}.,;:'\"!?()\\[\\]%/@&+=_‐-―-]")
	whitespaceRun     = regexp.MustCompile(`\s+`)
)

// Validate checks whether text is acceptable for fact-checking.
// It is side-effect free and never logs the text it inspects.
func Validate(text string) error {
	length := len([]rune(text))
	if length < MinLength {
		return &Error{Reason: ReasonTooShort, Detail: fmt.Sprintf("minimum %d characters", MinLength)}
	}
	if length > MaxLength {
		return &Error{Reason: ReasonTooLong, Detail: fmt.Sprintf("maximum %d characters", MaxLength)}
	}

	for _, pattern := range harmfulPatterns {
		if pattern.MatchString(text) {
			return &Error{Reason: ReasonHarmfulContent, Detail: "unsafe markup or URI scheme"}
		}
	}

	if reason := spamSignal(text); reason != "" {
		return &Error{Reason: ReasonLikelySpam, Detail: reason}
	}

	return nil
}

// spamSignal applies cheap spam heuristics and returns a description of
// the first one that fires, or "" when the text looks legitimate.
func spamSignal(text string) string {
	if repeatedCharPattern.MatchString(text) {
		return "repeated character run"
	}
	if exclamationRun.MatchString(text) {
		return "excessive exclamation marks"
	}

	lower := strings.ToLower(text)
	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			return "promotional phrase"
		}
	}

	// Mostly-uppercase text is a strong shouting/forward signal. Only
	// meaningful once there are enough letters to measure.
	var letters, uppers int
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			letters++
		} else if r >= 'A' && r <= 'Z' {
			letters++
			uppers++
		}
	}
	if letters >= 20 && float64(uppers)/float64(letters) > 0.7 {
		return "excessive capitalization"
	}

	return ""
}

// Sanitize strips HTML tags, removes characters outside the safe set and
// collapses whitespace. Sanitize is idempotent: applying it twice yields
// the same result as applying it once.
func Sanitize(text string) string {
	text = htmlTagPattern.ReplaceAllString(text, " ")
	text = unsafeCharPattern.ReplaceAllString(text, " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
