package placeholders

import "fmt"

// MissingPlaceholderError is returned in strict mode when the template lacks a token.
type MissingPlaceholderError struct {
	Token string
}

func (e *MissingPlaceholderError) Error() string {
	return fmt.Sprintf("template is missing placeholder %s", e.Token)
}

// ValidationError represents an empty recipient or company value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}
