// Package analysis is the fact-check facade. It strings together
// validation, connectivity, the response cache, the remote backend and
// the offline fallback, and records completed checks in history.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veridex/veridex/internal/api"
	"github.com/veridex/veridex/internal/cache"
	"github.com/veridex/veridex/internal/history"
	"github.com/veridex/veridex/internal/local"
	"github.com/veridex/veridex/internal/model"
	"github.com/veridex/veridex/internal/validate"
)

// Phase is the observable stage of a check.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseValidating
	PhaseDispatching
	PhaseFallingBack
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseValidating:
		return "validating"
	case PhaseDispatching:
		return "dispatching"
	case PhaseFallingBack:
		return "falling_back"
	case PhaseCompleted:
		return "completed"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Remote is the backend surface the facade dispatches to.
type Remote interface {
	AnalyzeText(ctx context.Context, text, sourceURL string) (*model.AnalysisResult, error)
	ExtractText(ctx context.Context, rawURL string) (*model.ExtractedContent, error)
}

// Connectivity reports whether the backend is reachable.
type Connectivity interface {
	Online() bool
}

// URLExtractor is the local crawler used when remote extraction is
// unavailable.
type URLExtractor interface {
	Extract(ctx context.Context, rawURL string) (*model.ExtractedContent, error)
}

// Service coordinates one fact-check at a time per call. All deps are
// injected; nil cache, probe, predictor and extractor are tolerated and
// simply disable the corresponding behavior.
type Service struct {
	remote    Remote
	probe     Connectivity
	cache     cache.Cache
	ttls      cache.TTLs
	history   history.Store
	predictor local.Predictor
	extractor URLExtractor
	logger    *zap.Logger

	mu      sync.Mutex
	phase   Phase
	onPhase func(Phase)
}

// Option configures a Service.
type Option func(*Service)

// WithProbe attaches a connectivity probe. Without one the facade
// assumes the backend is reachable.
func WithProbe(p Connectivity) Option {
	return func(s *Service) { s.probe = p }
}

// WithCache attaches a response cache.
func WithCache(c cache.Cache, ttls cache.TTLs) Option {
	return func(s *Service) {
		s.cache = c
		s.ttls = ttls
	}
}

// WithPredictor attaches a local fallback predictor. Without one the
// fallback path synthesizes a fixed unverified placeholder.
func WithPredictor(p local.Predictor) Option {
	return func(s *Service) { s.predictor = p }
}

// WithExtractor attaches a local crawler used when remote extraction
// is unavailable.
func WithExtractor(e URLExtractor) Option {
	return func(s *Service) { s.extractor = e }
}

// WithPhaseHook registers a callback invoked on every phase transition.
func WithPhaseHook(fn func(Phase)) Option {
	return func(s *Service) { s.onPhase = fn }
}

// NewService creates the facade over a remote backend and history store.
func NewService(remote Remote, store history.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = history.NewMemoryStore(history.DefaultCapacity)
	}
	s := &Service{
		remote:  remote,
		history: store,
		ttls:    cache.DefaultTTLs(),
		logger:  logger,
		phase:   PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase returns the phase of the most recent transition.
func (s *Service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// History returns the underlying result history.
func (s *Service) History() history.Store {
	return s.history
}

func (s *Service) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	hook := s.onPhase
	s.mu.Unlock()
	if hook != nil {
		hook(p)
	}
}

// Check runs one fact-check. forceLocal skips the backend entirely.
// Validation failures and non-transient backend errors surface as
// errors and leave history untouched; offline and transient server
// failures degrade to a local result that is still recorded.
func (s *Service) Check(ctx context.Context, text, sourceURL string, forceLocal bool) (*model.AnalysisResult, error) {
	s.setPhase(PhaseValidating)
	if err := validate.Validate(text); err != nil {
		s.setPhase(PhaseFailed)
		return nil, err
	}
	sanitized := validate.Sanitize(text)

	// An explicit local request bypasses the cache too: the caller
	// asked for a fresh local analysis, not a stored remote one.
	if forceLocal {
		return s.fallBack(ctx, sanitized, sourceURL)
	}

	if result, ok := s.cachedResult(sanitized, sourceURL); ok {
		s.logger.Debug("check served from cache", zap.String("id", result.ID))
		return s.complete(ctx, result)
	}

	if s.probe != nil && !s.probe.Online() {
		return s.fallBack(ctx, sanitized, sourceURL)
	}

	s.setPhase(PhaseDispatching)
	result, err := s.remote.AnalyzeText(ctx, sanitized, sourceURL)
	if err != nil {
		if api.IsUnavailability(err) {
			s.logger.Debug("backend unavailable, degrading to local result", zap.Error(err))
			return s.fallBack(ctx, sanitized, sourceURL)
		}
		s.setPhase(PhaseFailed)
		return nil, err
	}

	s.storeResult(sanitized, sourceURL, result)
	return s.complete(ctx, result)
}

// ExtractURL pulls article text for a URL, falling back to the local
// crawler when the backend is unreachable.
func (s *Service) ExtractURL(ctx context.Context, rawURL string) (*model.ExtractedContent, error) {
	if content, ok := s.cachedContent(rawURL); ok {
		return content, nil
	}

	useLocal := s.probe != nil && !s.probe.Online()
	if !useLocal {
		content, err := s.remote.ExtractText(ctx, rawURL)
		if err == nil {
			s.storeContent(rawURL, content)
			return content, nil
		}
		if !api.IsUnavailability(err) || s.extractor == nil {
			return nil, err
		}
		s.logger.Debug("remote extraction unavailable, crawling locally", zap.Error(err))
	} else if s.extractor == nil {
		return nil, &api.NetworkError{Op: "extract", Err: fmt.Errorf("offline and no local extractor configured")}
	}

	content, err := s.extractor.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	s.storeContent(rawURL, content)
	return content, nil
}

// fallBack produces a local result. A configured, available predictor
// is consulted first; otherwise a fixed unverified placeholder stands
// in. The result is recorded like any completed check.
func (s *Service) fallBack(ctx context.Context, sanitized, sourceURL string) (*model.AnalysisResult, error) {
	s.setPhase(PhaseFallingBack)

	if s.predictor != nil && s.predictor.IsAvailable(ctx) {
		result, err := s.predictor.Predict(ctx, sanitized)
		if err == nil && result != nil {
			result.SourceURL = sourceURL
			return s.complete(ctx, result)
		}
		if ctx.Err() != nil {
			s.setPhase(PhaseFailed)
			return nil, &api.NetworkError{Op: "analyze", Err: ctx.Err()}
		}
		s.logger.Debug("local predictor failed, using placeholder",
			zap.String("predictor", s.predictor.Name()), zap.Error(err))
	}

	return s.complete(ctx, placeholderResult(sanitized, sourceURL))
}

// complete records a result and finishes the check. A cancelled context
// fails the check instead; history is never mutated after cancellation.
func (s *Service) complete(ctx context.Context, result *model.AnalysisResult) (*model.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		s.setPhase(PhaseFailed)
		return nil, &api.NetworkError{Op: "analyze", Err: err}
	}
	if err := s.history.Insert(*result); err != nil {
		s.logger.Warn("history insert failed", zap.Error(err))
	}
	s.setPhase(PhaseCompleted)
	return result, nil
}

func placeholderResult(sanitized, sourceURL string) *model.AnalysisResult {
	return &model.AnalysisResult{
		ID:              uuid.NewString(),
		InputText:       sanitized,
		SourceURL:       sourceURL,
		Verdict:         model.VerdictUnverified,
		ConfidenceScore: 0.5,
		Explanation:     "This claim could not be verified because the analysis service is unreachable. Reconnect and try again for a full analysis.",
		AnalyzedAt:      time.Now().UTC(),
		IsFromCache:     false,
		ModelVersion:    "offline-fallback",
	}
}

func (s *Service) cachedResult(sanitized, sourceURL string) (*model.AnalysisResult, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(cache.Key(cache.BucketFactChecks, sanitized, sourceURL))
	if !ok {
		return nil, false
	}
	var result model.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = s.cache.Delete(cache.Key(cache.BucketFactChecks, sanitized, sourceURL))
		return nil, false
	}
	result.IsFromCache = true
	return &result, true
}

func (s *Service) storeResult(sanitized, sourceURL string, result *model.AnalysisResult) {
	if s.cache == nil || result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	_ = s.cache.Set(cache.Key(cache.BucketFactChecks, sanitized, sourceURL), data, s.ttls.For(cache.BucketFactChecks))
}

func (s *Service) cachedContent(rawURL string) (*model.ExtractedContent, bool) {
	if s.cache == nil {
		return nil, false
	}
	data, ok := s.cache.Get(cache.Key(cache.BucketExtracted, rawURL))
	if !ok {
		return nil, false
	}
	var content model.ExtractedContent
	if err := json.Unmarshal(data, &content); err != nil {
		return nil, false
	}
	return &content, true
}

func (s *Service) storeContent(rawURL string, content *model.ExtractedContent) {
	if s.cache == nil || content == nil {
		return
	}
	data, err := json.Marshal(content)
	if err != nil {
		return
	}
	_ = s.cache.Set(cache.Key(cache.BucketExtracted, rawURL), data, s.ttls.For(cache.BucketExtracted))
}
