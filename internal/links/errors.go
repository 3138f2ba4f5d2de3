package links

import "fmt"

// ExtractionError represents a failed request or a response that is not JSON.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link extraction failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link extraction failed: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// ValidationError represents a response that is JSON but not a valid link map.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("link map validation error in %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("link map validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
