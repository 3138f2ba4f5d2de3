package ratelimit

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket_TakeAndRefill(t *testing.T) {
	b := newBucket(3, 20) // one token every 50ms

	for i := 0; i < 3; i++ {
		allowed, remaining, _ := b.take()
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 2-i, remaining)
	}
	allowed, _, resetTime := b.take()
	assert.False(t, allowed)
	assert.True(t, resetTime.After(time.Now()))
	assert.Positive(t, b.retryAfter())

	time.Sleep(70 * time.Millisecond)
	allowed, _, _ = b.take()
	assert.True(t, allowed, "a token should have refilled")
}

func TestLimiter_DefaultLimit(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/sessions/abc", http.MethodGet)
		require.True(t, allowed, "request %d", i+1)
		assert.Equal(t, 10, info.Limit)
		assert.Equal(t, 9-i, info.Remaining)
	}

	allowed, info := limiter.Allow("127.0.0.1", "/sessions/abc", http.MethodGet)
	assert.False(t, allowed)
	assert.Equal(t, 0, info.Remaining)
	assert.Positive(t, info.RetryAfter)

	allowed, _ = limiter.Allow("10.0.0.2", "/sessions/abc", http.MethodGet)
	assert.True(t, allowed, "other clients have their own bucket")
}

func TestLimiter_WhitelistBlacklistDisabled(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1,
		DefaultWindow: time.Minute,
		Whitelist:     map[string]bool{"127.0.0.1": true},
		Blacklist:     map[string]bool{"192.168.1.1": true},
	})
	defer limiter.Stop()

	for i := 0; i < 20; i++ {
		allowed, info := limiter.Allow("127.0.0.1", "/templates", http.MethodPost)
		require.True(t, allowed)
		assert.Zero(t, info.Limit)
	}
	allowed, _ := limiter.Allow("192.168.1.1", "/health", http.MethodGet)
	assert.False(t, allowed)

	disabled := NewLimiter(&Config{Enabled: false})
	defer disabled.Stop()
	for i := 0; i < 20; i++ {
		allowed, _ := disabled.Allow("10.0.0.1", "/summaries", http.MethodPost)
		require.True(t, allowed)
	}
}

func TestLimiter_PrefixRuleSharesBucket(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled:       true,
		DefaultLimit:  1000,
		DefaultWindow: time.Minute,
		EndpointConfigs: []EndpointConfig{
			{Path: "/sessions/", Method: http.MethodPost, Limit: 2, Window: time.Hour},
		},
	})
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/sessions/a/template", http.MethodPost)
	require.True(t, allowed)
	assert.Equal(t, 2, info.Limit)
	allowed, _ = limiter.Allow("127.0.0.1", "/sessions/b/template", http.MethodPost)
	require.True(t, allowed)
	allowed, _ = limiter.Allow("127.0.0.1", "/sessions/c/template", http.MethodPost)
	assert.False(t, allowed, "a fresh session ID must not reset the limit")

	allowed, info = limiter.Allow("127.0.0.1", "/sessions/a", http.MethodGet)
	assert.True(t, allowed)
	assert.Equal(t, 1000, info.Limit)
}

func TestLimiter_UnlimitedEndpoints(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 10; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/health", http.MethodGet)
		require.True(t, allowed)
		allowed, _ = limiter.Allow("127.0.0.1", "/metrics", http.MethodGet)
		require.True(t, allowed)
	}
}

func TestLimiter_Burst(t *testing.T) {
	limiter := NewLimiter(&Config{
		Enabled: true,
		EndpointConfigs: []EndpointConfig{
			{Path: "/summaries", Method: http.MethodPost, Limit: 10, Window: time.Minute, Burst: 3},
		},
	})
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Allow("127.0.0.1", "/summaries", http.MethodPost)
		require.True(t, allowed)
	}
	allowed, _ := limiter.Allow("127.0.0.1", "/summaries", http.MethodPost)
	assert.False(t, allowed)
}

func TestLimiter_Concurrent(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 100, DefaultWindow: time.Hour})
	defer limiter.Stop()

	var wg sync.WaitGroup
	var allowedCount atomic.Int32
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := limiter.Allow("127.0.0.1", "/runs", http.MethodGet); ok {
				allowedCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(100), allowedCount.Load())
}

func TestLimiter_RemoveIdle(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 10, DefaultWindow: time.Minute})
	defer limiter.Stop()

	for i := 0; i < 5; i++ {
		limiter.Allow(fmt.Sprintf("10.0.0.%d", i), "/runs", http.MethodGet)
	}
	require.Equal(t, 5, limiter.Len())

	assert.Zero(t, limiter.removeIdle(time.Now().Add(-time.Minute)))
	assert.Equal(t, 5, limiter.removeIdle(time.Now().Add(time.Second)))
	assert.Zero(t, limiter.Len())
}

func TestLimiter_StopTwice(t *testing.T) {
	limiter := NewLimiter(&Config{Enabled: true, DefaultLimit: 1, DefaultWindow: time.Minute, CleanupInterval: time.Millisecond})
	limiter.Stop()
	assert.NotPanics(t, limiter.Stop)
}

func TestNewLimiter_NilConfig(t *testing.T) {
	limiter := NewLimiter(nil)
	defer limiter.Stop()

	allowed, info := limiter.Allow("127.0.0.1", "/templates", http.MethodPost)
	assert.True(t, allowed)
	assert.Equal(t, DefaultConfig().DefaultLimit, info.Limit)
}

func TestMatchEndpoint(t *testing.T) {
	configs := DefaultEndpointConfigs()

	tests := []struct {
		name      string
		path      string
		method    string
		wantPath  string
		wantLimit int
		wantNil   bool
	}{
		{name: "exact session upload", path: "/sessions", method: http.MethodPost, wantPath: "/sessions", wantLimit: 30},
		{name: "prefix session action", path: "/sessions/x/template", method: http.MethodPost, wantPath: "/sessions/", wantLimit: 60},
		{name: "session edit", path: "/sessions/x/summary", method: http.MethodPut, wantPath: "/sessions/", wantLimit: 100},
		{name: "health unlimited", path: "/health", method: http.MethodGet, wantLimit: 0},
		{name: "read falls back to default", path: "/sessions/x", method: http.MethodGet, wantNil: true},
		{name: "method must match", path: "/summaries", method: http.MethodGet, wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchEndpoint(tt.path, tt.method, configs)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantPath, got.Path)
			assert.Equal(t, tt.wantLimit, got.Limit)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("COLD_MESSAGE_RATE_LIMIT_DEFAULT_LIMIT", "42")
	t.Setenv("COLD_MESSAGE_RATE_LIMIT_DEFAULT_WINDOW", "30s")
	t.Setenv("COLD_MESSAGE_RATE_LIMIT_WHITELIST", "127.0.0.1, 10.0.0.1 ,")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 42, cfg.DefaultLimit)
	assert.Equal(t, 30*time.Second, cfg.DefaultWindow)
	assert.Equal(t, map[string]bool{"127.0.0.1": true, "10.0.0.1": true}, cfg.Whitelist)
	assert.NotEmpty(t, cfg.EndpointConfigs)

	t.Setenv("COLD_MESSAGE_RATE_LIMIT_ENABLED", "false")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.Enabled)
}

func TestLoadConfig_RejectsNonPositiveValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"zero limit", "COLD_MESSAGE_RATE_LIMIT_DEFAULT_LIMIT", "0"},
		{"negative window", "COLD_MESSAGE_RATE_LIMIT_DEFAULT_WINDOW", "-1m"},
		{"zero cleanup", "COLD_MESSAGE_RATE_LIMIT_CLEANUP_INTERVAL", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			cfg, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
