package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/credentials"
)

// Factory constructs a ready-to-use Client for one pipeline call.
// Components call it per operation so a credential set at runtime takes effect immediately.
type Factory func(ctx context.Context) (Client, error)

// NewFactory returns a Factory that reads the API key from store on every call.
// A missing key yields *credentials.ConfigurationError before any network traffic.
// Clients are wrapped with logging and metrics.
func NewFactory(config *Config, store *credentials.Store, logger *zap.Logger) Factory {
	if config == nil {
		config = DefaultConfig()
	}
	return func(ctx context.Context) (Client, error) {
		apiKey, err := store.Require()
		if err != nil {
			return nil, err
		}
		client, err := NewClient(ctx, config, apiKey)
		if err != nil {
			return nil, err
		}
		return NewInstrumented(client, logger), nil
	}
}

// StaticFactory always returns client. Close on the returned client is a no-op so
// callers that close per operation do not tear down a shared client.
func StaticFactory(client Client) Factory {
	return func(context.Context) (Client, error) {
		return nopCloser{client}, nil
	}
}

type nopCloser struct {
	Client
}

func (nopCloser) Close() error { return nil }
