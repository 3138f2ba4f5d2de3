package summarizing

import (
	"errors"
	"fmt"

	"github.com/jonathan/cold-message-generator/internal/schemas"
)

// ErrEmptyResume is returned when there is no resume text to summarize.
var ErrEmptyResume = errors.New("resume text is empty")

// ExtractionError represents a failed request or a response that cannot be parsed as JSON.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("summary extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("summary extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a parsed response that does not satisfy the Summary schema.
type ValidationError struct {
	Field   string
	Message string
	// Errors holds every violation when the check came from schema validation.
	Errors []schemas.FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	extra := ""
	if n := len(e.Errors); n > 1 {
		extra = fmt.Sprintf(" (and %d more)", n-1)
	}
	if e.Field != "" {
		return fmt.Sprintf("summary validation error in %s: %s%s", e.Field, e.Message, extra)
	}
	return fmt.Sprintf("summary validation error: %s%s", e.Message, extra)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
