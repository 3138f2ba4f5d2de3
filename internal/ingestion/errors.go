package ingestion

import "fmt"

// UnsupportedFormatError is returned when a document's extension is not one
// of the formats Extract understands.
type UnsupportedFormatError struct {
	Name string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported document format: %q", e.Name)
}

// SourceError is returned when the raw bytes of a document cannot be read
// from their source (file system or object storage).
type SourceError struct {
	Source  string
	Message string
	Cause   error
}

func (e *SourceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Source, e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}
