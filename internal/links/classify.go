// Package links classifies the raw hyperlinks of a resume into a platform -> URL map.
//
// Classification is fail-soft: any failure is logged and yields an empty LinkMap.
package links

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/metrics"
	"github.com/jonathan/cold-message-generator/internal/schemas"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// Temperature used for classification requests.
const Temperature = 1.0

// Fallback reasons reported in metrics.
const (
	reasonCredentials = "credentials"
	reasonRequest     = "request"
	reasonParse       = "parse"
	reasonValidation  = "validation"
)

// Classifier maps raw URLs to a LinkMap with one text-generation call.
type Classifier struct {
	newClient llm.Factory
	logger    *zap.Logger
}

// NewClassifier creates a Classifier. A nil logger discards log output.
func NewClassifier(factory llm.Factory, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Classifier{
		newClient: factory,
		logger:    logger.With(zap.String("component", "link_classifier")),
	}
}

// Classify never fails. It returns an empty LinkMap when there is nothing to classify
// or when the request, parsing or validation fails.
func (c *Classifier) Classify(ctx context.Context, raw []string) types.LinkMap {
	links := Prepare(raw)
	if len(links) == 0 {
		return types.LinkMap{}
	}

	result, reason, err := c.classify(ctx, links)
	if err != nil {
		metrics.LinkClassificationFallbacks.WithLabelValues(reason).Inc()
		c.logger.Warn("link classification failed, continuing without links",
			zap.String("reason", reason),
			zap.Int("link_count", len(links)),
			zap.Error(err),
		)
		return types.LinkMap{}
	}
	return result
}

// classify returns the fallback reason alongside any error.
func (c *Classifier) classify(ctx context.Context, links []string) (types.LinkMap, string, error) {
	client, err := c.newClient(ctx)
	if err != nil {
		var cfgErr *credentials.ConfigurationError
		if errors.As(err, &cfgErr) {
			return types.LinkMap{}, reasonCredentials, err
		}
		return types.LinkMap{}, reasonRequest, &ExtractionError{Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	prompt := llm.BuildExtractionPrompt(llm.LinkMapSchema(), strings.Join(links, "\n"))

	responseText, err := client.GenerateJSON(ctx, prompt, llm.TierLite, llm.WithTemperature(Temperature))
	if err != nil {
		return types.LinkMap{}, reasonRequest, &ExtractionError{Message: "failed to generate content", Cause: err}
	}

	result, err := ParseResponse(responseText)
	if err != nil {
		var valErr *ValidationError
		if errors.As(err, &valErr) {
			return types.LinkMap{}, reasonValidation, err
		}
		return types.LinkMap{}, reasonParse, err
	}
	return result, "", nil
}

// ParseResponse strictly parses a model response into a LinkMap.
func ParseResponse(responseText string) (types.LinkMap, error) {
	cleaned := llm.CleanJSONBlock(responseText)
	if !json.Valid([]byte(cleaned)) {
		return types.LinkMap{}, &ExtractionError{Message: "response is not valid JSON"}
	}

	if err := schemas.Validate(schemas.LinkMap, []byte(cleaned)); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			first := verr.First()
			return types.LinkMap{}, &ValidationError{Field: first.Field, Message: first.Message, Cause: err}
		}
		return types.LinkMap{}, &ValidationError{Message: "schema unavailable", Cause: err}
	}

	var result types.LinkMap
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return types.LinkMap{}, &ExtractionError{Message: "failed to unmarshal link map", Cause: err}
	}
	return result, nil
}

// Prepare trims the raw links and drops blanks and exact duplicates, keeping first-seen order.
func Prepare(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, link := range raw {
		link = strings.TrimSpace(link)
		if link == "" || seen[link] {
			continue
		}
		seen[link] = true
		out = append(out, link)
	}
	return out
}
