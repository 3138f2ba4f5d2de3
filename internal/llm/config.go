// Package llm provides centralized LLM configuration and client abstractions.
// A Client hides the provider (Groq, OpenAI, Gemini) behind a single prompt-in, text-out call.
package llm

import (
	"fmt"
	"strings"
)

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for simple tasks: link classification
	TierLite ModelTier = "lite"
	// TierStandard is for structured output: resume summarization
	TierStandard ModelTier = "standard"
	// TierAdvanced is for free-form writing: outreach messages
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGroq is Groq's OpenAI-compatible endpoint
	ProviderGroq Provider = "groq"
	// ProviderOpenAI is the OpenAI API
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
)

// GroqBaseURL is the OpenAI-compatible Groq endpoint.
const GroqBaseURL = "https://api.groq.com/openai/v1"

// Providers lists the supported providers.
var Providers = []Provider{ProviderGroq, ProviderOpenAI, ProviderGemini}

// ParseProvider returns the provider with the given name (case-insensitive).
func ParseProvider(name string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Providers {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown provider %q (want one of groq, openai, gemini)", name)
}

// EnvKeys returns the environment variables that may hold the provider's API key.
func (p Provider) EnvKeys() []string {
	switch p {
	case ProviderGemini:
		return []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	case ProviderOpenAI:
		return []string{"OPENAI_API_KEY"}
	}
	return []string{"GROQ_API_KEY"}
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	// BaseURL overrides the provider endpoint for OpenAI-compatible providers.
	BaseURL string
	Models  map[ModelTier]string
}

// DefaultConfig returns the default configuration (Groq)
func DefaultConfig() *Config {
	return DefaultGroqConfig()
}

// DefaultGroqConfig returns the default Groq configuration
func DefaultGroqConfig() *Config {
	return &Config{
		Provider: ProviderGroq,
		BaseURL:  GroqBaseURL,
		Models: map[ModelTier]string{
			TierLite:     "llama-3.1-8b-instant",
			TierStandard: "llama-3.3-70b-versatile",
			TierAdvanced: "llama-3.3-70b-versatile",
		},
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
	}
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// ConfigFor returns the default configuration for a provider.
func ConfigFor(p Provider) *Config {
	switch p {
	case ProviderOpenAI:
		return DefaultOpenAIConfig()
	case ProviderGemini:
		return DefaultGeminiConfig()
	}
	return DefaultGroqConfig()
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[ModelTier]string),
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}
