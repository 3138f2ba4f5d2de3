// Package server provides the HTTP API for generating outreach messages.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/db"
	"github.com/jonathan/cold-message-generator/internal/ingestion"
	"github.com/jonathan/cold-message-generator/internal/metrics"
	"github.com/jonathan/cold-message-generator/internal/pipeline"
	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/server/middleware"
	"github.com/jonathan/cold-message-generator/internal/server/ratelimit"
)

// DefaultMaxUploadBytes caps resume uploads.
const DefaultMaxUploadBytes int64 = 10 << 20

// maxJSONBytes caps JSON request bodies.
const maxJSONBytes int64 = 1 << 20

// RunHistory reads and deletes recorded runs. db.DB implements it.
type RunHistory interface {
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	GetRunHistory(ctx context.Context, runID uuid.UUID) (*db.RunHistory, error)
	DeleteRun(ctx context.Context, runID uuid.UUID) error
}

// Config holds server configuration
type Config struct {
	Port           int
	MaxUploadBytes int64
	RequestTimeout time.Duration // 0 means none
	RateLimit      *ratelimit.Config
}

// Services are the components the handlers call. Classifier, Summarizer and
// Composer are required; the rest have defaults.
type Services struct {
	Classifier  pipeline.Classifier
	Summarizer  pipeline.Summarizer
	Composer    pipeline.Composer
	Filler      pipeline.Filler
	Pipeline    *pipeline.Pipeline
	Extractor   *ingestion.Extractor
	Sessions    *pipeline.MemoryStore
	Credentials *credentials.Store
	History     RunHistory
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	svc         Services
	cfg         Config
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
}

// New creates a new server instance
func New(cfg Config, svc Services, logger *zap.Logger) (*Server, error) {
	if svc.Classifier == nil || svc.Summarizer == nil || svc.Composer == nil {
		return nil, errors.New("server requires a classifier, a summarizer and a composer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "server"))

	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.RateLimit == nil {
		cfg.RateLimit = ratelimit.DefaultConfig()
	}
	if svc.Filler == nil {
		svc.Filler = placeholders.Lenient
	}
	if svc.Extractor == nil {
		svc.Extractor = ingestion.NewExtractor(logger)
	}
	if svc.Sessions == nil {
		svc.Sessions = pipeline.NewMemoryStore()
	}
	if svc.Credentials == nil {
		svc.Credentials = credentials.Default
	}
	if svc.Pipeline == nil {
		opts := []pipeline.Option{pipeline.WithFiller(svc.Filler), pipeline.WithLogger(logger)}
		if svc.History != nil {
			if rec, ok := svc.History.(pipeline.Recorder); ok {
				opts = append(opts, pipeline.WithRecorder(rec))
			}
		}
		svc.Pipeline = pipeline.New(svc.Classifier, svc.Summarizer, svc.Composer, opts...)
	}

	s := &Server{
		svc:         svc,
		cfg:         cfg,
		rateLimiter: ratelimit.NewLimiter(cfg.RateLimit),
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /message-types", s.handleMessageTypes)
	mux.HandleFunc("GET /credentials", s.handleGetCredentials)
	mux.HandleFunc("PUT /credentials", s.handlePutCredentials)

	// Stateless endpoints, one per component
	mux.HandleFunc("POST /links/classify", s.handleClassifyLinks)
	mux.HandleFunc("POST /summaries", s.handleSummarize)
	mux.HandleFunc("POST /templates", s.handleComposeTemplate)
	mux.HandleFunc("POST /messages", s.handleFillMessage)

	// Session flow
	mux.HandleFunc("POST /sessions", s.handleCreateSession)
	mux.HandleFunc("GET /sessions/{id}", s.handleGetSession)
	mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("POST /sessions/{id}/resume", s.handleUploadResume)
	mux.HandleFunc("POST /sessions/{id}/resume/stream", s.handleUploadResumeStream)
	mux.HandleFunc("PUT /sessions/{id}/summary", s.handleEditSummary)
	mux.HandleFunc("PUT /sessions/{id}/links", s.handleEditLinks)
	mux.HandleFunc("POST /sessions/{id}/template", s.handleSessionTemplate)
	mux.HandleFunc("POST /sessions/{id}/message", s.handleSessionMessage)

	// Run history
	mux.HandleFunc("GET /runs", s.handleListRuns)
	mux.HandleFunc("GET /runs/{id}", s.handleGetRun)
	mux.HandleFunc("DELETE /runs/{id}", s.handleDeleteRun)

	s.handler = middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.Recover(logger),
		middleware.CORS,
		s.withRateLimit,
	)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      300 * time.Second, // summaries and templates can take a while
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.rateLimiter.Stop()
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer s.rateLimiter.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// Close stops background work without serving.
func (s *Server) Close() {
	s.rateLimiter.Stop()
}

// requestContext applies the configured per-request timeout.
func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout > 0 {
		return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
	}
	return context.WithCancel(r.Context())
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			metrics.RateLimited.WithLabelValues(r.Method, r.URL.Path).Inc()
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientID identifies the caller by the IP in RemoteAddr. Forwarded
// headers are not trusted.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		seconds := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = seconds
		w.Header().Set("Retry-After", strconv.Itoa(seconds))
	}

	middleware.Logger(r.Context()).Warn("rate limit exceeded",
		zap.String("client", clientID(r)),
		zap.Int("limit", info.Limit),
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
