package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/veridex/veridex/internal/model"
)

// Checker fact-checks a single claim. Satisfied by the analysis service.
type Checker interface {
	Check(ctx context.Context, text, sourceURL string, forceLocal bool) (*model.AnalysisResult, error)
}

// CheckJob fact-checks one claim from a batch
type CheckJob struct {
	Claim      string
	ForceLocal bool
	Checker    Checker
}

// Execute runs the check
func (j *CheckJob) Execute(ctx context.Context) Result {
	result, err := j.Checker.Check(ctx, j.Claim, "", j.ForceLocal)
	return &CheckResult{
		Claim:  j.Claim,
		Result: result,
		Err:    err,
	}
}

// CheckResult is the outcome of one batch claim check
type CheckResult struct {
	Claim  string
	Result *model.AnalysisResult
	Err    error
}

// GetError returns the error from the check, if any
func (r *CheckResult) GetError() error {
	return r.Err
}

// BatchProcessor fact-checks many claims concurrently
type BatchProcessor struct {
	checker     Checker
	concurrency int
	forceLocal  bool
}

// NewBatchProcessor creates a batch processor
func NewBatchProcessor(checker Checker, concurrency int, forceLocal bool) *BatchProcessor {
	return &BatchProcessor{
		checker:     checker,
		concurrency: concurrency,
		forceLocal:  forceLocal,
	}
}

// ProcessClaims checks all claims through the worker pool
func (b *BatchProcessor) ProcessClaims(ctx context.Context, claims []string) []*CheckResult {
	if len(claims) == 0 {
		return []*CheckResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	// Submit concurrently with draining: a batch larger than the pool's
	// channel buffers must not block submission.
	go func() {
		defer pool.Close()
		for _, claim := range claims {
			pool.Submit(&CheckJob{
				Claim:      claim,
				ForceLocal: b.forceLocal,
				Checker:    b.checker,
			})
		}
	}()

	checkResults := make([]*CheckResult, 0, len(claims))
	for result := range pool.Results() {
		checkResults = append(checkResults, result.(*CheckResult))
	}
	return checkResults
}

// ProcessFile reads claims from a file (one per line) and checks them
func (b *BatchProcessor) ProcessFile(ctx context.Context, path string) ([]*CheckResult, error) {
	claims, err := ReadClaimsFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return b.ProcessClaims(ctx, claims), nil
}

// ReadClaimsFromFile reads one claim per line, skipping blanks, comments
// and duplicates.
func ReadClaimsFromFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var claims []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 64*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			claims = append(claims, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return claims, nil
}
