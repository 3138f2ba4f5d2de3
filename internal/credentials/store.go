// Package credentials holds the process-wide API key used to reach the text-generation provider.
package credentials

import (
	"os"
	"sync"
)

// Store is a concurrency-safe holder for a single API key.
// An unset key is distinct from a key set to the empty string; both count as not configured.
type Store struct {
	mu  sync.RWMutex
	key string
	set bool
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Default is the process-wide store used by the CLI and server.
var Default = NewStore()

// Set stores the key, replacing any previous value.
func (s *Store) Set(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = key
	s.set = true
}

// Get returns the stored key and whether Set has been called.
func (s *Store) Get() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key, s.set
}

// Configured reports whether a non-empty key is present.
func (s *Store) Configured() bool {
	key, ok := s.Get()
	return ok && key != ""
}

// Clear forgets the stored key.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = ""
	s.set = false
}

// Require returns the key or a *ConfigurationError when it is missing or empty.
func (s *Store) Require() (string, error) {
	key, ok := s.Get()
	if !ok {
		return "", &ConfigurationError{Message: "API key is not set"}
	}
	if key == "" {
		return "", &ConfigurationError{Message: "API key is empty"}
	}
	return key, nil
}

// LoadFromEnv sets the key from the first non-empty environment variable in names.
// It reports whether a key was found. The store is left untouched otherwise.
func (s *Store) LoadFromEnv(names ...string) bool {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			s.Set(v)
			return true
		}
	}
	return false
}
