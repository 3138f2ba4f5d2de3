package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/metrics"
)

// Instrumented wraps a Client with structured logging and prometheus metrics.
type Instrumented struct {
	inner  Client
	logger *zap.Logger
}

// NewInstrumented wraps client. A nil logger discards log output.
func NewInstrumented(client Client, logger *zap.Logger) *Instrumented {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Instrumented{
		inner:  client,
		logger: logger.With(zap.String("component", "llm"), zap.String("provider", string(client.Provider()))),
	}
}

// GenerateContent delegates to the wrapped client.
func (c *Instrumented) GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.observe(ctx, "content", prompt, tier, opts, c.inner.GenerateContent)
}

// GenerateJSON delegates to the wrapped client.
func (c *Instrumented) GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error) {
	return c.observe(ctx, "json", prompt, tier, opts, c.inner.GenerateJSON)
}

type generateFunc func(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)

func (c *Instrumented) observe(ctx context.Context, kind, prompt string, tier ModelTier, opts []Option, call generateFunc) (string, error) {
	provider := string(c.inner.Provider())
	o := ResolveOptions(opts...)
	log := c.logger.With(
		zap.String("kind", kind),
		zap.String("model", c.inner.GetModel(tier)),
		zap.String("tier", string(tier)),
	)
	log.Debug("llm request",
		zap.Float32("temperature", o.Temperature),
		zap.Int("prompt_len", len(prompt)),
	)

	start := time.Now()
	text, err := call(ctx, prompt, tier, opts...)
	elapsed := time.Since(start)
	metrics.LLMRequestDuration.WithLabelValues(provider, string(tier)).Observe(elapsed.Seconds())

	if err != nil {
		metrics.LLMRequests.WithLabelValues(provider, string(tier), metrics.OutcomeError).Inc()
		log.Error("llm request failed", zap.Duration("duration", elapsed), zap.Error(err))
		return "", err
	}

	metrics.LLMRequests.WithLabelValues(provider, string(tier), metrics.OutcomeSuccess).Inc()
	log.Info("llm request completed",
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Int("response_len", len(text)),
	)
	return text, nil
}

// GetModel delegates to the wrapped client.
func (c *Instrumented) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Provider delegates to the wrapped client.
func (c *Instrumented) Provider() Provider {
	return c.inner.Provider()
}

// Close delegates to the wrapped client.
func (c *Instrumented) Close() error {
	return c.inner.Close()
}
