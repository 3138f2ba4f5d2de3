// Package summarizing turns raw resume text into a structured Summary.
//
// Unlike link classification, every failure here is returned to the caller:
// there is no safe default summary to fall back to.
package summarizing

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/cache"
	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/metrics"
	"github.com/jonathan/cold-message-generator/internal/prompts"
	"github.com/jonathan/cold-message-generator/internal/schemas"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// Temperature used for summary extraction.
const Temperature = 0.1

// CacheNamespace prefixes summary cache keys.
const CacheNamespace = "summary"

// Summarizer extracts a Summary with one text-generation call per resume.
type Summarizer struct {
	newClient llm.Factory
	cache     cache.Cache
	ttl       time.Duration
	logger    *zap.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithCache enables the summary cache. Entries expire after ttl (zero keeps them).
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Summarizer) {
		s.cache = c
		s.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Summarizer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(factory llm.Factory, opts ...Option) *Summarizer {
	s := &Summarizer{
		newClient: factory,
		cache:     cache.Noop{},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("component", "summarizer"))
	return s
}

// Summarize extracts a Summary from resumeText.
//
// Errors: ErrEmptyResume for blank input, *credentials.ConfigurationError when no API key
// is configured, *ExtractionError when the request fails or the response is not JSON,
// and *ValidationError when the JSON does not satisfy the Summary schema.
func (s *Summarizer) Summarize(ctx context.Context, resumeText string) (*types.Summary, error) {
	if strings.TrimSpace(resumeText) == "" {
		return nil, ErrEmptyResume
	}

	client, err := s.newClient(ctx)
	if err != nil {
		var cfgErr *credentials.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, &ExtractionError{Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	key := cache.Key(CacheNamespace, resumeText)
	if summary, ok := s.fromCache(ctx, key); ok {
		return summary, nil
	}

	prompt := BuildPrompt(resumeText)
	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierStandard, llm.WithTemperature(Temperature))
	if err != nil {
		return nil, &ExtractionError{Message: "failed to generate content", Cause: err}
	}

	summary, known, err := ParseSummary(responseText)
	if err != nil {
		s.logger.Error("summary rejected", zap.Int("response_len", len(responseText)), zap.Error(err))
		return nil, err
	}
	if !known {
		s.logger.Warn("career level outside the known set", zap.String("career_level", string(summary.CareerLevel)))
	}

	s.toCache(ctx, key, summary)
	return summary, nil
}

// BuildPrompt renders the extraction prompt for resumeText.
func BuildPrompt(resumeText string) string {
	template := prompts.MustGet("summarizing.json", "extract-resume-summary")
	return prompts.Format(template, map[string]string{
		"Schema":     schemas.MustSource(schemas.Summary),
		"ResumeText": resumeText,
	})
}

func (s *Summarizer) fromCache(ctx context.Context, key string) (*types.Summary, bool) {
	data, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		metrics.SummaryCache.WithLabelValues(metrics.CacheError).Inc()
		s.logger.Warn("summary cache read failed", zap.Error(err))
		return nil, false
	case !ok:
		metrics.SummaryCache.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, false
	}

	summary, _, err := ParseSummary(string(data))
	if err != nil {
		metrics.SummaryCache.WithLabelValues(metrics.CacheError).Inc()
		s.logger.Warn("discarding invalid cached summary", zap.Error(err))
		return nil, false
	}
	metrics.SummaryCache.WithLabelValues(metrics.CacheHit).Inc()
	s.logger.Debug("summary served from cache")
	return summary, true
}

func (s *Summarizer) toCache(ctx context.Context, key string, summary *types.Summary) {
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("summary cache write failed", zap.Error(err))
	}
}
