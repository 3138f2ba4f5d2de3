// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/jonathan/cold-message-generator/internal/llm"
)

// EnvPrefix prefixes every environment variable read by FromEnv.
const EnvPrefix = "COLD_MESSAGE"

// Config is the application configuration. It can come from a JSON or YAML
// file, COLD_MESSAGE_* environment variables and CLI flags.
type Config struct {
	// Text generation
	Provider string            `mapstructure:"provider" json:"provider,omitempty"`
	APIKey   string            `mapstructure:"api_key" json:"api_key,omitempty"`
	BaseURL  string            `mapstructure:"base_url" json:"base_url,omitempty"`
	Models   map[string]string `mapstructure:"models" json:"models,omitempty"` // tier -> model

	// Logging
	LogLevel  string `mapstructure:"log_level" json:"log_level,omitempty"`
	LogFormat string `mapstructure:"log_format" json:"log_format,omitempty"` // json or console

	// Storage
	RedisURL    string        `mapstructure:"redis_url" json:"redis_url,omitempty"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl" json:"cache_ttl,omitempty"`
	DatabaseURL string        `mapstructure:"database_url" json:"database_url,omitempty"`
	S3Region    string        `mapstructure:"s3_region" json:"s3_region,omitempty"`
	S3Endpoint  string        `mapstructure:"s3_endpoint" json:"s3_endpoint,omitempty"`

	// Behavior
	Port               int           `mapstructure:"port" json:"port,omitempty"`
	StrictPlaceholders bool          `mapstructure:"strict_placeholders" json:"strict_placeholders,omitempty"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout" json:"request_timeout,omitempty"` // 0 means none
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Provider:  string(llm.ProviderGroq),
		LogLevel:  "info",
		LogFormat: "console",
		CacheTTL:  24 * time.Hour,
		Port:      8080,
	}
}

var keys = []string{
	"provider", "api_key", "base_url",
	"log_level", "log_format",
	"redis_url", "cache_ttl", "database_url", "s3_region", "s3_endpoint",
	"port", "strict_placeholders", "request_timeout",
}

// LoadConfig loads configuration from a JSON or YAML file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}
	return &cfg, nil
}

// FromEnv reads COLD_MESSAGE_* variables (COLD_MESSAGE_PROVIDER, COLD_MESSAGE_PORT,
// COLD_MESSAGE_MODEL_LITE, ...). When no API key is set that way, the provider's
// own variable (GROQ_API_KEY, OPENAI_API_KEY, GEMINI_API_KEY) is used.
func FromEnv() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode environment: %w", err)
	}

	for _, tier := range []llm.ModelTier{llm.TierLite, llm.TierStandard, llm.TierAdvanced} {
		name := EnvPrefix + "_MODEL_" + strings.ToUpper(string(tier))
		if model := os.Getenv(name); model != "" {
			if cfg.Models == nil {
				cfg.Models = map[string]string{}
			}
			cfg.Models[string(tier)] = model
		}
	}

	if cfg.APIKey == "" {
		provider := cfg.Provider
		if provider == "" {
			provider = Defaults().Provider
		}
		if p, err := llm.ParseProvider(provider); err == nil {
			for _, name := range p.EnvKeys() {
				if key := os.Getenv(name); key != "" {
					cfg.APIKey = key
					break
				}
			}
		}
	}
	return &cfg, nil
}

// Load merges, from highest to lowest precedence, the environment, the optional
// config file at path and the defaults.
func Load(path string) (*Config, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged := cfg.MergeWithDefaults(*fileCfg)
		cfg = &merged
	}
	merged := cfg.MergeWithDefaults(Defaults())
	return &merged, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Provider != "" {
		if _, err := llm.ParseProvider(c.Provider); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q (want lite, standard or advanced)", tier)
		}
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("config error: 'cache_ttl' must be non-negative")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config error: 'request_timeout' must be non-negative")
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("config error: 'log_format' must be json or console")
	}
	if c.RedisURL != "" {
		if _, err := redis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("config error: invalid 'redis_url': %w", err)
		}
	}
	return nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
// CLI flags are applied as c, so they always win.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	pick := func(field *string, def string) {
		if *field == "" {
			*field = def
		}
	}
	pick(&result.Provider, defaults.Provider)
	pick(&result.APIKey, defaults.APIKey)
	pick(&result.BaseURL, defaults.BaseURL)
	pick(&result.LogLevel, defaults.LogLevel)
	pick(&result.LogFormat, defaults.LogFormat)
	pick(&result.RedisURL, defaults.RedisURL)
	pick(&result.DatabaseURL, defaults.DatabaseURL)
	pick(&result.S3Region, defaults.S3Region)
	pick(&result.S3Endpoint, defaults.S3Endpoint)

	if result.CacheTTL == 0 {
		result.CacheTTL = defaults.CacheTTL
	}
	if result.RequestTimeout == 0 {
		result.RequestTimeout = defaults.RequestTimeout
	}
	if result.Port == 0 {
		result.Port = defaults.Port
	}

	if len(defaults.Models) > 0 {
		models := make(map[string]string, len(defaults.Models)+len(result.Models))
		for tier, model := range defaults.Models {
			models[tier] = model
		}
		for tier, model := range result.Models {
			models[tier] = model
		}
		result.Models = models
	}

	// Bools cannot distinguish unset from false; true anywhere wins.
	result.StrictPlaceholders = result.StrictPlaceholders || defaults.StrictPlaceholders

	return result
}

// LLMConfig builds the provider configuration: the provider defaults with the
// base URL and per-tier model overrides applied.
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider := llm.ProviderGroq
	if c.Provider != "" {
		p, err := llm.ParseProvider(c.Provider)
		if err != nil {
			return nil, err
		}
		provider = p
	}

	cfg := llm.ConfigFor(provider)
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	return cfg, nil
}
