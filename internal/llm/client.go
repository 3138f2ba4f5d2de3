package llm

import (
	"context"
	"fmt"
)

// DefaultTemperature is used when a call does not set one.
const DefaultTemperature = 0.1

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free-form text using the specified model tier
	GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)
	// GenerateJSON generates a JSON document using the specified model tier
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...Option) (string, error)
	// GetModel returns the underlying provider model for a tier
	GetModel(tier ModelTier) string
	// Provider names the backing provider
	Provider() Provider
	// Close releases any resources held by the client
	Close() error
}

// Options tune a single generation call.
type Options struct {
	Temperature float32
}

// Option mutates Options.
type Option func(*Options)

// WithTemperature sets the sampling temperature for one call.
func WithTemperature(t float32) Option {
	return func(o *Options) {
		o.Temperature = t
	}
}

// ResolveOptions applies opts over the defaults.
func ResolveOptions(opts ...Option) Options {
	o := Options{Temperature: DefaultTemperature}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderGroq, ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported provider %q", config.Provider)
	}
}
