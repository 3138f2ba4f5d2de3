// Package cache stores derived artifacts (resume summaries) keyed by content hash.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented key/value store with expiry.
type Cache interface {
	// Get returns the value and true on a hit, false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl. A zero ttl keeps the value until evicted.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Noop is a Cache that never stores anything.
type Noop struct{}

// Get always misses.
func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }

// Set discards value.
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

// Key builds a namespaced key from the sha256 of content.
func Key(namespace, content string) string {
	sum := sha256.Sum256([]byte(content))
	return namespace + ":" + hex.EncodeToString(sum[:])
}
