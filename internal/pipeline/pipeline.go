// Package pipeline orchestrates the resume-to-message flow over an explicit
// per-user Session: classify links, summarize, compose a template and fill
// in the recipient.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonathan/cold-message-generator/internal/db"
	"github.com/jonathan/cold-message-generator/internal/ingestion"
	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/types"
)

var (
	// ErrNoSummary is returned when a template is requested before a summary exists.
	ErrNoSummary = errors.New("no summary available: process a resume or enter a summary first")
	// ErrNoTemplate is returned when a message is finalized before a template exists.
	ErrNoTemplate = errors.New("no template available: generate a template first")
	// ErrNoDocument is returned when ProcessDocument is called without a document.
	ErrNoDocument = errors.New("no document to process")
)

// Classifier maps raw links to platforms. It never fails.
type Classifier interface {
	Classify(ctx context.Context, raw []string) types.LinkMap
}

// Summarizer extracts a structured summary from resume text.
type Summarizer interface {
	Summarize(ctx context.Context, resumeText string) (*types.Summary, error)
}

// Composer drafts a placeholder-bearing template.
type Composer interface {
	Compose(ctx context.Context, in types.UserInput) (string, error)
}

// Filler substitutes the recipient and company into a template.
type Filler interface {
	Fill(template, recipient, company string) (string, error)
}

// Recorder persists run history. db.DB implements it.
type Recorder interface {
	CreateRun(ctx context.Context, documentHash, fileName string) (uuid.UUID, error)
	SaveArtifact(ctx context.Context, runID uuid.UUID, step string, content any) error
	SaveTextArtifact(ctx context.Context, runID uuid.UUID, step, text string) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string) error
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step    string `json:"step"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// StepSkipped is emitted when an already processed document is submitted again.
const StepSkipped = "skipped"

// Pipeline runs the stages against a Session. It is safe for concurrent use
// with distinct sessions.
type Pipeline struct {
	classifier Classifier
	summarizer Summarizer
	composer   Composer
	filler     Filler
	recorder   Recorder
	logger     *zap.Logger
	onProgress ProgressCallback
	inflight   singleflight.Group

	analysisTimeout time.Duration
}

// DefaultAnalysisTimeout bounds the shared link and summary extraction of one document.
const DefaultAnalysisTimeout = 2 * time.Minute

// WithAnalysisTimeout bounds the shared extraction work. Values <= 0 are ignored.
func WithAnalysisTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.analysisTimeout = d
		}
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRecorder persists every run through r.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithFiller replaces the default lenient placeholder filler.
func WithFiller(f Filler) Option {
	return func(p *Pipeline) { p.filler = f }
}

// WithLogger sets the pipeline logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a progress callback.
func WithProgress(cb ProgressCallback) Option {
	return func(p *Pipeline) { p.onProgress = cb }
}

// New creates a Pipeline from its stages.
func New(classifier Classifier, summarizer Summarizer, composer Composer, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: classifier,
		summarizer: summarizer,
		composer:   composer,
		filler:     placeholders.Lenient,
		logger:     zap.NewNop(),

		analysisTimeout: DefaultAnalysisTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With(zap.String("component", "pipeline"))
	return p
}

type progressKey struct{}

// ContextWithProgress returns a context whose pipeline calls also report
// progress to cb, in addition to any callback set with WithProgress.
func ContextWithProgress(ctx context.Context, cb ProgressCallback) context.Context {
	return context.WithValue(ctx, progressKey{}, cb)
}

func (p *Pipeline) emitProgress(ctx context.Context, step, message string, content any) {
	event := ProgressEvent{Step: step, Message: message, Content: content}
	if p.onProgress != nil {
		p.onProgress(event)
	}
	if cb, ok := ctx.Value(progressKey{}).(ProgressCallback); ok && cb != nil {
		cb(event)
	}
}

type analysis struct {
	links   types.LinkMap
	summary *types.Summary
}

// ProcessDocument classifies the document's links and summarizes its text
// into sess. A document whose hash matches the session's last processed
// document is not processed again. When summarization fails the session is
// left untouched, so the next attempt is a fresh call.
func (p *Pipeline) ProcessDocument(ctx context.Context, sess *Session, doc *ingestion.Document) error {
	if doc == nil {
		return ErrNoDocument
	}
	var hash, fileName string
	if doc.Metadata != nil {
		hash, fileName = doc.Metadata.Hash, doc.Metadata.Source
	}
	if hash != "" && hash == sess.DocumentHash {
		p.logger.Debug("document already processed", zap.String("session", sess.ID), zap.String("hash", hash))
		p.emitProgress(ctx, StepSkipped, "Document already processed, keeping existing results", nil)
		return nil
	}

	runID := p.startRun(ctx, hash, fileName)
	if doc.Metadata != nil {
		p.recordArtifact(ctx, runID, db.StepDocument, doc.Metadata)
	}

	result, err := p.analyze(ctx, hash, doc)
	if err != nil {
		p.finishRun(ctx, runID, db.StatusFailed)
		return err
	}

	sess.DocumentHash = hash
	sess.FileName = fileName
	sess.ResumeText = doc.Text
	sess.Summary = result.summary
	sess.SummaryText = result.summary.ProfessionalSummary
	sess.Links = result.links
	sess.Template = ""
	sess.RunID = runID
	sess.touch()

	p.recordArtifact(ctx, runID, db.StepLinks, result.links)
	p.recordArtifact(ctx, runID, db.StepSummary, result.summary)
	return nil
}

// analyze runs the extraction stages. Concurrent calls for the same document
// hash share one execution. The shared work runs detached from any single
// caller's cancellation, bounded by analysisTimeout; each caller stops waiting
// when its own context is done and reports progress to its own callbacks.
func (p *Pipeline) analyze(ctx context.Context, hash string, doc *ingestion.Document) (*analysis, error) {
	if hash == "" {
		result, err := p.extract(ctx, doc)
		if err != nil {
			return nil, err
		}
		p.reportAnalysis(ctx, doc, result)
		return result, nil
	}

	ch := p.inflight.DoChan(hash, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.analysisTimeout)
		defer cancel()
		return p.extract(shared, doc)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			p.logger.Debug("shared in-flight document analysis", zap.String("hash", hash))
		}
		result := res.Val.(*analysis)
		p.reportAnalysis(ctx, doc, result)
		return result, nil
	}
}

func (p *Pipeline) extract(ctx context.Context, doc *ingestion.Document) (*analysis, error) {
	links := p.classifier.Classify(ctx, doc.Links)
	summary, err := p.summarizer.Summarize(ctx, doc.Text)
	if err != nil {
		return nil, err
	}
	return &analysis{links: links, summary: summary}, nil
}

func (p *Pipeline) reportAnalysis(ctx context.Context, doc *ingestion.Document, result *analysis) {
	p.emitProgress(ctx, db.StepLinks, fmt.Sprintf("Classified %d of %d links", len(result.links.Entries()), len(doc.Links)), result.links)
	p.emitProgress(ctx, db.StepSummary, "Extracted resume summary", result.summary)
}

// GenerateTemplate composes a template from the session's summary and links.
func (p *Pipeline) GenerateTemplate(ctx context.Context, sess *Session, messageType types.MessageType, jobType string) (string, error) {
	if !sess.HasSummary() {
		return "", ErrNoSummary
	}

	template, err := p.composer.Compose(ctx, sess.UserInput(messageType, jobType))
	if err != nil {
		return "", err
	}

	sess.Template = template
	sess.touch()
	p.emitProgress(ctx, db.StepTemplate, fmt.Sprintf("Composed %q template", messageType), template)
	p.recordText(ctx, sess.RunID, db.StepTemplate, template)
	return template, nil
}

// FinalizeMessage fills the recipient and company into the session's template.
func (p *Pipeline) FinalizeMessage(ctx context.Context, sess *Session, recipient, company string) (string, error) {
	if sess.Template == "" {
		return "", ErrNoTemplate
	}

	message, err := p.filler.Fill(sess.Template, recipient, company)
	if err != nil {
		return "", err
	}

	p.emitProgress(ctx, db.StepMessage, "Filled in recipient and company", nil)
	p.recordText(ctx, sess.RunID, db.StepMessage, message)
	p.finishRun(ctx, sess.RunID, db.StatusCompleted)
	return message, nil
}

// Request describes a full, non-interactive pipeline run.
type Request struct {
	Document    *ingestion.Document
	MessageType types.MessageType
	JobType     string
	Recipient   string
	Company     string
	ResumeLink  string
}

// Result is the outcome of Run.
type Result struct {
	Session *Session `json:"session"`
	Message string   `json:"message"`
}

// Run processes a document and produces the final message in one go.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	sess := NewSession()
	if err := p.ProcessDocument(ctx, sess, req.Document); err != nil {
		return nil, fmt.Errorf("processing resume: %w", err)
	}
	if req.ResumeLink != "" {
		sess.SetResumeLink(req.ResumeLink)
	}
	if _, err := p.GenerateTemplate(ctx, sess, req.MessageType, req.JobType); err != nil {
		return nil, fmt.Errorf("composing template: %w", err)
	}
	message, err := p.FinalizeMessage(ctx, sess, req.Recipient, req.Company)
	if err != nil {
		return nil, fmt.Errorf("filling placeholders: %w", err)
	}
	return &Result{Session: sess, Message: message}, nil
}

func (p *Pipeline) startRun(ctx context.Context, hash, fileName string) uuid.UUID {
	if p.recorder == nil {
		return uuid.Nil
	}
	runID, err := p.recorder.CreateRun(ctx, hash, fileName)
	if err != nil {
		p.logger.Warn("failed to record run", zap.Error(err))
		return uuid.Nil
	}
	return runID
}

func (p *Pipeline) finishRun(ctx context.Context, runID uuid.UUID, status string) {
	if p.recorder == nil || runID == uuid.Nil {
		return
	}
	if err := p.recorder.CompleteRun(ctx, runID, status); err != nil {
		p.logger.Warn("failed to complete run", zap.String("run_id", runID.String()), zap.Error(err))
	}
}

func (p *Pipeline) recordArtifact(ctx context.Context, runID uuid.UUID, step string, content any) {
	if p.recorder == nil || runID == uuid.Nil {
		return
	}
	if err := p.recorder.SaveArtifact(ctx, runID, step, content); err != nil {
		p.logger.Warn("failed to record artifact", zap.String("step", step), zap.Error(err))
	}
}

func (p *Pipeline) recordText(ctx context.Context, runID uuid.UUID, step, text string) {
	if p.recorder == nil || runID == uuid.Nil {
		return
	}
	if err := p.recorder.SaveTextArtifact(ctx, runID, step, text); err != nil {
		p.logger.Warn("failed to record artifact", zap.String("step", step), zap.Error(err))
	}
}
