package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/cold-message-generator/internal/composing"
	"github.com/jonathan/cold-message-generator/internal/credentials"
	"github.com/jonathan/cold-message-generator/internal/db"
	"github.com/jonathan/cold-message-generator/internal/ingestion"
	"github.com/jonathan/cold-message-generator/internal/pipeline"
	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/summarizing"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrHistoryDisabled is returned by the run history endpoints when no database is configured.
var ErrHistoryDisabled = errors.New("run history is not enabled: configure a database")

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		cfgErr        *credentials.ConfigurationError
		validationErr *ErrValidation
		composeErr    *composing.ValidationError
		fillErr       *placeholders.ValidationError
		missingErr    *placeholders.MissingPlaceholderError
		summaryErr    *summarizing.ValidationError
		extractionErr *summarizing.ExtractionError
		apiErr        *composing.APICallError
		formatErr     *ingestion.UnsupportedFormatError
		tooLargeErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &cfgErr):
		return http.StatusPreconditionFailed
	case errors.As(err, &validationErr), errors.As(err, &composeErr), errors.As(err, &fillErr):
		return http.StatusBadRequest
	case errors.As(err, &tooLargeErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &formatErr):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &missingErr), errors.Is(err, summarizing.ErrEmptyResume):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &summaryErr), errors.As(err, &extractionErr), errors.As(err, &apiErr):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrSessionNotFound), errors.Is(err, db.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNoSummary), errors.Is(err, pipeline.ErrNoTemplate):
		return http.StatusConflict
	case errors.Is(err, ErrHistoryDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func errorBody(err error, status int) ErrorResponse {
	if status == http.StatusInternalServerError {
		return ErrorResponse{Error: "internal server error"}
	}

	body := ErrorResponse{Error: err.Error()}
	var (
		validationErr *ErrValidation
		composeErr    *composing.ValidationError
		fillErr       *placeholders.ValidationError
		summaryErr    *summarizing.ValidationError
	)
	switch {
	case errors.As(err, &validationErr):
		body.Field = validationErr.Field
	case errors.As(err, &composeErr):
		body.Field = composeErr.Field
	case errors.As(err, &fillErr):
		body.Field = fillErr.Field
	case errors.As(err, &summaryErr):
		body.Field = summaryErr.Field
	}
	return body
}
