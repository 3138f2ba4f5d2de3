package summarizing

import (
	"encoding/json"
	"errors"

	"github.com/jonathan/cold-message-generator/internal/llm"
	"github.com/jonathan/cold-message-generator/internal/schemas"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// ParseSummary strictly parses a model response into a normalized Summary.
// Unknown fields are ignored. It also reports whether career_level was recognized.
func ParseSummary(responseText string) (*types.Summary, bool, error) {
	cleaned := llm.CleanJSONBlock(responseText)
	if !json.Valid([]byte(cleaned)) {
		return nil, false, &ExtractionError{Message: "response is not valid JSON"}
	}

	if err := schemas.Validate(schemas.Summary, []byte(cleaned)); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			first := verr.First()
			return nil, false, &ValidationError{
				Field:   first.Field,
				Message: first.Message,
				Errors:  verr.Errors,
				Cause:   err,
			}
		}
		return nil, false, &ValidationError{Message: "summary schema unavailable", Cause: err}
	}

	var summary types.Summary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		return nil, false, &ExtractionError{Message: "failed to unmarshal summary", Cause: err}
	}

	known := summary.Normalize()

	if err := summary.Validate(); err != nil {
		fields := types.FieldErrors(err)
		verr := &ValidationError{Message: err.Error(), Cause: err}
		if len(fields) > 0 {
			verr.Field = fields[0].Field
			verr.Message = fields[0].Message
			for _, f := range fields {
				verr.Errors = append(verr.Errors, schemas.FieldError{Field: f.Field, Message: f.Message})
			}
		}
		return nil, false, verr
	}

	return &summary, known, nil
}
