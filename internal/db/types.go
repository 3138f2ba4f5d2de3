package db

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by DeleteRun when no run has the given ID.
var ErrRunNotFound = errors.New("run not found")

// Run represents an outreach run record
type Run struct {
	ID           uuid.UUID  `json:"id"`
	DocumentHash string     `json:"document_hash"`
	FileName     string     `json:"file_name"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Run statuses
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Artifact steps recorded for a run
const (
	StepDocument = "document"
	StepLinks    = "links"
	StepSummary  = "summary"
	StepTemplate = "template"
	StepMessage  = "message"
)

// Steps lists the artifact steps in pipeline order.
var Steps = []string{StepDocument, StepLinks, StepSummary, StepTemplate, StepMessage}
