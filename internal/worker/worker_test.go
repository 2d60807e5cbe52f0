package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veridex/veridex/internal/model"
)

type countJob struct {
	counter *atomic.Int64
}

type countResult struct{ err error }

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	j.counter.Add(1)
	return &countResult{}
}

// drainPool submits jobs concurrently with consumption and fails the
// test if the pool does not finish within the deadline.
func drainPool(t *testing.T, pool *Pool, jobs []Job, deadline time.Duration) []Result {
	t.Helper()

	go func() {
		defer pool.Close()
		for _, job := range jobs {
			pool.Submit(job)
		}
	}()

	var results []Result
	done := make(chan struct{})
	go func() {
		defer close(done)
		for result := range pool.Results() {
			results = append(results, result)
		}
	}()

	select {
	case <-done:
		return results
	case <-time.After(deadline):
		t.Fatal("pool did not finish before deadline")
		return nil
	}
}

func TestPool_ExecutesAllJobs(t *testing.T) {
	pool := NewPool(context.Background(), 4)
	pool.Start()

	var counter atomic.Int64
	jobs := make([]Job, 20)
	for i := range jobs {
		jobs[i] = &countJob{counter: &counter}
	}

	results := drainPool(t, pool, jobs, 5*time.Second)

	if counter.Load() != 20 {
		t.Errorf("Expected 20 executions, got %d", counter.Load())
	}
	if len(results) != 20 {
		t.Errorf("Expected 20 results, got %d", len(results))
	}
}

func TestPool_ZeroWorkersClamped(t *testing.T) {
	pool := NewPool(context.Background(), 0)
	pool.Start()

	var counter atomic.Int64
	results := drainPool(t, pool, []Job{&countJob{counter: &counter}}, 5*time.Second)

	if len(results) != 1 {
		t.Errorf("Expected 1 result, got %d", len(results))
	}
}

func TestPool_BacklogLargerThanBuffers(t *testing.T) {
	// A single worker leaves the pipeline only a few slots of slack;
	// a much larger backlog must still drain completely.
	pool := NewPool(context.Background(), 1)
	pool.Start()

	var counter atomic.Int64
	jobs := make([]Job, 64)
	for i := range jobs {
		jobs[i] = &countJob{counter: &counter}
	}

	results := drainPool(t, pool, jobs, 10*time.Second)

	if counter.Load() != 64 {
		t.Errorf("Expected 64 executions, got %d", counter.Load())
	}
	if len(results) != 64 {
		t.Errorf("Expected 64 results, got %d", len(results))
	}
}

func TestPool_CancelUnblocksSubmission(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()
	cancel()

	var counter atomic.Int64
	jobs := make([]Job, 32)
	for i := range jobs {
		jobs[i] = &countJob{counter: &counter}
	}

	// Exact counts are racy around cancellation; the contract is that
	// draining terminates instead of blocking on a dead pool.
	drainPool(t, pool, jobs, 5*time.Second)
}

type fakeChecker struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeChecker) Check(ctx context.Context, text, sourceURL string, forceLocal bool) (*model.AnalysisResult, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, fmt.Errorf("check failed")
	}
	return &model.AnalysisResult{ID: text, Verdict: model.VerdictUnverified}, nil
}

func TestBatchProcessor_ProcessClaims(t *testing.T) {
	checker := &fakeChecker{}
	processor := NewBatchProcessor(checker, 3, false)

	claims := []string{"claim one text here", "claim two text here", "claim three text here"}
	results := processor.ProcessClaims(context.Background(), claims)

	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}
	if checker.calls.Load() != 3 {
		t.Errorf("Expected 3 checker calls, got %d", checker.calls.Load())
	}
	for _, r := range results {
		if r.GetError() != nil {
			t.Errorf("Unexpected error for %q: %v", r.Claim, r.Err)
		}
	}
}

func TestBatchProcessor_LargeBatchCompletes(t *testing.T) {
	// Far more claims than the pool's channel buffers can hold at the
	// default worker count.
	checker := &fakeChecker{}
	processor := NewBatchProcessor(checker, 4, false)

	claims := make([]string, 50)
	for i := range claims {
		claims[i] = fmt.Sprintf("claim number %d with enough length", i)
	}

	done := make(chan []*CheckResult, 1)
	go func() { done <- processor.ProcessClaims(context.Background(), claims) }()

	select {
	case results := <-done:
		if len(results) != 50 {
			t.Errorf("Expected 50 results, got %d", len(results))
		}
		if checker.calls.Load() != 50 {
			t.Errorf("Expected 50 checker calls, got %d", checker.calls.Load())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("batch did not complete; submission blocked ahead of result draining")
	}
}

func TestBatchProcessor_CancelledContextReturns(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&fakeChecker{}, 2, false)
	claims := make([]string, 30)
	for i := range claims {
		claims[i] = fmt.Sprintf("claim number %d with enough length", i)
	}

	done := make(chan []*CheckResult, 1)
	go func() { done <- processor.ProcessClaims(ctx, claims) }()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cancelled batch did not return")
	}
}

func TestBatchProcessor_ErrorsSurfaced(t *testing.T) {
	processor := NewBatchProcessor(&fakeChecker{fail: true}, 2, false)

	results := processor.ProcessClaims(context.Background(), []string{"claim one text here"})
	if len(results) != 1 || results[0].GetError() == nil {
		t.Errorf("Expected surfaced error, got %+v", results)
	}
}

func TestReadClaimsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "claims.txt")
	content := "first claim with enough length\n\n# a comment line\nsecond claim with enough length\nfirst claim with enough length\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	claims, err := ReadClaimsFromFile(path)
	if err != nil {
		t.Fatalf("ReadClaimsFromFile failed: %v", err)
	}

	if len(claims) != 2 {
		t.Fatalf("Expected 2 deduplicated claims, got %d: %v", len(claims), claims)
	}
	if claims[0] != "first claim with enough length" {
		t.Errorf("Unexpected first claim: %q", claims[0])
	}
}

func TestLimiter_AllowRespectsBurst(t *testing.T) {
	limiter := NewLimiter(1, 1)

	if !limiter.Allow("https://example.com/a") {
		t.Fatal("Expected first request allowed")
	}
	if limiter.Allow("https://example.com/b") {
		t.Error("Expected second immediate request denied")
	}
	// A different domain has its own budget
	if !limiter.Allow("https://other.example.org/a") {
		t.Error("Expected separate domain to be allowed")
	}
}

func TestLimiter_WaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	_ = limiter.Allow("https://example.com/") // Exhaust the burst

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, "https://example.com/"); err == nil {
		t.Error("Expected context deadline error")
	}
}
