package credentials

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UnsetVersusEmpty(t *testing.T) {
	s := NewStore()

	key, ok := s.Get()
	assert.False(t, ok)
	assert.Empty(t, key)
	assert.False(t, s.Configured())

	s.Set("")
	key, ok = s.Get()
	assert.True(t, ok, "empty string is still a set value")
	assert.Empty(t, key)
	assert.False(t, s.Configured())
}

func TestStore_Require(t *testing.T) {
	s := NewStore()

	_, err := s.Require()
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "not set")

	s.Set("")
	_, err = s.Require()
	require.True(t, errors.As(err, &cfgErr))
	assert.Contains(t, err.Error(), "empty")

	s.Set("gsk_test")
	key, err := s.Require()
	require.NoError(t, err)
	assert.Equal(t, "gsk_test", key)
	assert.True(t, s.Configured())
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Set("gsk_test")
	s.Clear()

	_, ok := s.Get()
	assert.False(t, ok)
}

func TestStore_LoadFromEnv(t *testing.T) {
	t.Setenv("COLD_MESSAGE_TEST_EMPTY", "")
	t.Setenv("COLD_MESSAGE_TEST_KEY", "from-env")

	s := NewStore()
	assert.False(t, s.LoadFromEnv("COLD_MESSAGE_TEST_MISSING", "COLD_MESSAGE_TEST_EMPTY"))
	_, ok := s.Get()
	assert.False(t, ok)

	assert.True(t, s.LoadFromEnv("COLD_MESSAGE_TEST_EMPTY", "COLD_MESSAGE_TEST_KEY"))
	key, _ := s.Get()
	assert.Equal(t, "from-env", key)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Set("k")
		}()
		go func() {
			defer wg.Done()
			_, _ = s.Get()
		}()
	}
	wg.Wait()

	key, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "k", key)
}
