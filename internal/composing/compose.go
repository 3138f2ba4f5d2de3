// Package composing drafts outreach message templates from a UserInput.
package composing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/metrics"
	"github.com/jonathan/cold-message-generator/internal/prompts"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// Temperature used for message drafting.
const Temperature = 0.8

// Composer writes a template containing the {recipient_name} and {company_name} placeholders.
type Composer struct {
	newClient llm.Factory
	logger    *zap.Logger
}

// NewComposer creates a Composer. A nil logger discards log output.
func NewComposer(factory llm.Factory, logger *zap.Logger) *Composer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Composer{
		newClient: factory,
		logger:    logger.With(zap.String("component", "composer")),
	}
}

// Compose returns the model's response verbatim. It does not check that the placeholders
// are present; that happens when the template is filled.
func (c *Composer) Compose(ctx context.Context, in types.UserInput) (string, error) {
	if err := in.Validate(); err != nil {
		fields := types.FieldErrors(err)
		if len(fields) == 0 {
			return "", &ValidationError{Message: err.Error()}
		}
		return "", &ValidationError{Field: fields[0].Field, Message: fields[0].Message}
	}

	prompt, err := BuildPrompt(in)
	if err != nil {
		return "", err
	}

	client, err := c.newClient(ctx)
	if err != nil {
		var cfgErr *credentials.ConfigurationError
		if errors.As(err, &cfgErr) {
			return "", err
		}
		return "", &APICallError{Message: "failed to create LLM client", Cause: err}
	}
	defer func() { _ = client.Close() }()

	template, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced, llm.WithTemperature(Temperature))
	if err != nil {
		return "", &APICallError{Message: "failed to generate content", Cause: err}
	}
	if strings.TrimSpace(template) == "" {
		return "", &APICallError{Message: "empty response"}
	}

	metrics.MessagesGenerated.WithLabelValues(string(in.MessageType)).Inc()
	c.logger.Info("message template generated",
		zap.String("message_type", string(in.MessageType)),
		zap.String("job_type", in.JobType),
		zap.Int("length", len(template)),
	)
	return template, nil
}

// BuildPrompt renders the drafting prompt for in.
func BuildPrompt(in types.UserInput) (string, error) {
	userJSON, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode user input: %w", err)
	}

	template := prompts.MustGet("composing.json", "compose-message")
	return prompts.Format(template, map[string]string{
		"MessageType":   string(in.MessageType),
		"UserInputJSON": string(userJSON),
		"JobType":       in.JobType,
		"Links":         indent(linksOrNone(in.Links()), "  "),
		"Opening":       opening(in.MessageType),
	}), nil
}

// RenderLinks renders the non-empty links one per line as "- Label: URL", in the
// fixed LinkMap order. The same LinkMap always renders the same text.
func RenderLinks(m types.LinkMap) string {
	entries := m.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("- %s: %s", e.Label, e.URL))
	}
	return strings.Join(lines, "\n")
}

func linksOrNone(m types.LinkMap) string {
	if m.IsEmpty() {
		return "(no links provided, so leave the links section out)"
	}
	return RenderLinks(m)
}

func opening(mt types.MessageType) string {
	if mt.IsEmail() {
		return `Always start with a short, crisp subject line on top ("Subject: ...") and be respectful.`
	}
	return "Always start with a short, crisp subject line on top, keep the body brief enough for a LinkedIn message, and be respectful."
}

func indent(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
