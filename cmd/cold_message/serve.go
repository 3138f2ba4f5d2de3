package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/pipeline"
	"github.com/jonathan/cold-message-generator/internal/server"
	"github.com/jonathan/cold-message-generator/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing the pipeline stages, interactive sessions and,
when DATABASE_URL is set, the run history.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer a.Close()

		srv, err := newServer(ctx, a, servePort)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	rootCmd.AddCommand(serveCmd)
}

// newServer wires the configured stages into an HTTP server. A port of 0
// falls back to the configured port.
func newServer(ctx context.Context, a *app, port int) (*server.Server, error) {
	if port == 0 {
		port = a.cfg.Port
	}
	rl, err := ratelimit.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load rate limit config: %w", err)
	}

	svc := server.Services{
		Classifier:  a.classifier(),
		Summarizer:  a.summarizer(),
		Composer:    a.composer(),
		Filler:      a.filler(false),
		Extractor:   a.extractor(),
		Sessions:    pipeline.NewMemoryStore(),
		Credentials: a.store,
	}
	database, err := a.openDB(ctx)
	if err != nil {
		a.logger.Warn("run history unavailable, continuing without it", zap.Error(err))
	} else if database != nil {
		svc.History = database
	}

	return server.New(server.Config{
		Port:           port,
		RequestTimeout: a.cfg.RequestTimeout,
		RateLimit:      rl,
	}, svc, a.logger)
}
