package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/cache"
	"github.com/jonathan/cold-message-generator/internal/composing"
	"github.com/jonathan/cold-message-generator/internal/config"
	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/db"
	"github.com/jonathan/cold-message-generator/internal/ingestion"
	"github.com/jonathan/cold-message-generator/internal/links"
	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/logging"
	"github.com/jonathan/cold-message-generator/internal/observability"
	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/summarizing"
)

// app holds what every command needs: configuration, logger, credentials
// and the provider factory.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *credentials.Store
	factory llm.Factory
	cache   cache.Cache
	printer *observability.Printer // nil unless --verbose
	closers []func()
}

// loadApp resolves configuration (flags > environment > file > defaults)
// and builds the shared dependencies.
func loadApp(ctx context.Context, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	flags := config.Config{Provider: providerFlag, APIKey: apiKeyFlag, LogLevel: logLevelFlag}
	merged := flags.MergeWithDefaults(*cfg)
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(merged.LogLevel, merged.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store := credentials.NewStore()
	if merged.APIKey != "" {
		store.Set(merged.APIKey)
	}
	llmCfg, err := merged.LLMConfig()
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:     &merged,
		logger:  logger,
		store:   store,
		factory: llm.NewFactory(llmCfg, store, logger),
		cache:   cache.Noop{},
		closers: []func(){func() { _ = logger.Sync() }},
	}
	if verbose {
		a.printer = observability.NewPrinter(stderr)
	}

	if merged.RedisURL != "" {
		redisCache, err := cache.NewRedis(ctx, merged.RedisURL)
		if err != nil {
			logger.Warn("summary cache unavailable, continuing without it", zap.Error(err))
		} else {
			a.cache = redisCache
			a.closers = append(a.closers, func() { _ = redisCache.Close() })
		}
	}
	return a, nil
}

// Close releases everything opened by loadApp and later calls, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) classifier() *links.Classifier {
	return links.NewClassifier(a.factory, a.logger)
}

func (a *app) summarizer() *summarizing.Summarizer {
	return summarizing.NewSummarizer(a.factory,
		summarizing.WithCache(a.cache, a.cfg.CacheTTL),
		summarizing.WithLogger(a.logger),
	)
}

func (a *app) composer() *composing.Composer {
	return composing.NewComposer(a.factory, a.logger)
}

// filler returns the strict filler when the flag or the config asks for it.
func (a *app) filler(strict bool) placeholders.Filler {
	if strict || a.cfg.StrictPlaceholders {
		return placeholders.Strict
	}
	return placeholders.Lenient
}

func (a *app) extractor() *ingestion.Extractor {
	return ingestion.NewExtractor(a.logger)
}

// readDocument extracts a resume from a local path, an http(s) URL or an
// s3://bucket/key URI.
func (a *app) readDocument(ctx context.Context, in string) (*ingestion.Document, error) {
	x := a.extractor()
	if ingestion.IsURL(in) {
		return x.FromURL(ctx, nil, in)
	}
	if bucket, key, ok := ingestion.ParseS3URI(in); ok {
		client, err := ingestion.NewS3Client(ctx, a.cfg.S3Region, a.cfg.S3Endpoint)
		if err != nil {
			return nil, err
		}
		return x.FromS3(ctx, client, bucket, key)
	}
	return x.FromFile(ctx, in)
}

// openDB connects to the run history database when one is configured.
// It returns (nil, nil) otherwise.
func (a *app) openDB(ctx context.Context) (*db.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	database, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, err
	}
	a.closers = append(a.closers, database.Close)
	return database, nil
}

// withTimeout applies the configured request timeout.
func (a *app) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, a.cfg.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

// writeJSON writes v as indented JSON to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return writeText(w, path, string(data)+"\n")
}

// writeText writes text to path, or to w when path is empty.
func writeText(w io.Writer, path, text string) error {
	if path == "" {
		_, err := io.WriteString(w, text)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
