package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes the environment variables read by LoadConfig.
const EnvPrefix = "COLD_MESSAGE_RATE_LIMIT"

// EndpointConfig is the limit applied to one method and path. A path ending
// in "/" matches every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // requests per window
	Window time.Duration
	Burst  int // bucket capacity, Limit when zero
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTimeout     time.Duration // buckets unused this long are dropped
	Whitelist       map[string]bool
	Blacklist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// DefaultConfig returns the limits used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTimeout:     time.Hour,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// LoadConfig reads COLD_MESSAGE_RATE_LIMIT_* environment variables
// (ENABLED, DEFAULT_LIMIT, DEFAULT_WINDOW, CLEANUP_INTERVAL, WHITELIST,
// BLACKLIST) on top of DefaultConfig. Limits and intervals must be positive.
func LoadConfig() (*Config, error) {
	defaults := DefaultConfig()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetDefault("enabled", defaults.Enabled)
	v.SetDefault("default_limit", defaults.DefaultLimit)
	v.SetDefault("default_window", defaults.DefaultWindow)
	v.SetDefault("cleanup_interval", defaults.CleanupInterval)
	v.SetDefault("whitelist", "")
	v.SetDefault("blacklist", "")

	if !v.GetBool("enabled") {
		return &Config{Enabled: false}, nil
	}

	cfg := defaults
	cfg.DefaultLimit = v.GetInt("default_limit")
	cfg.DefaultWindow = v.GetDuration("default_window")
	cfg.CleanupInterval = v.GetDuration("cleanup_interval")
	cfg.Whitelist = parseIPList(v.GetString("whitelist"))
	cfg.Blacklist = parseIPList(v.GetString("blacklist"))

	if cfg.DefaultLimit <= 0 {
		return nil, fmt.Errorf("rate limit config: default_limit must be positive, got %d", cfg.DefaultLimit)
	}
	if cfg.DefaultWindow <= 0 {
		return nil, fmt.Errorf("rate limit config: default_window must be positive, got %s", cfg.DefaultWindow)
	}
	if cfg.CleanupInterval <= 0 {
		return nil, fmt.Errorf("rate limit config: cleanup_interval must be positive, got %s", cfg.CleanupInterval)
	}
	return cfg, nil
}

// DefaultEndpointConfigs returns the per-endpoint limits. Endpoints that
// call the text-generation provider get the strictest limits.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		// Provider-backed
		{Path: "/links/classify", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/summaries", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/templates", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},
		{Path: "/sessions", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},
		{Path: "/sessions/", Method: http.MethodPost, Limit: 60, Window: time.Hour, Burst: 5},

		// Local writes
		{Path: "/messages", Method: http.MethodPost, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/credentials", Method: http.MethodPut, Limit: 20, Window: time.Minute, Burst: 5},
		{Path: "/sessions/", Method: http.MethodPut, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/sessions/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},
		{Path: "/runs/", Method: http.MethodDelete, Limit: 100, Window: time.Minute, Burst: 10},

		// Reads fall through to the default limit; /health and /metrics are unlimited.
	}
}

func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
