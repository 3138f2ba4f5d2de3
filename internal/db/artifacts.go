package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// GetSummaryByRunID loads the summary artifact of a run. A run without one yields (nil, nil).
func (db *DB) GetSummaryByRunID(ctx context.Context, runID uuid.UUID) (*types.Summary, error) {
	content, err := db.GetArtifact(ctx, runID, StepSummary)
	if err != nil || content == nil {
		return nil, err
	}

	var summary types.Summary
	if err := json.Unmarshal(content, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}
	return &summary, nil
}

// GetLinksByRunID loads the classified links of a run. A run without them yields an empty map.
func (db *DB) GetLinksByRunID(ctx context.Context, runID uuid.UUID) (types.LinkMap, error) {
	content, err := db.GetArtifact(ctx, runID, StepLinks)
	if err != nil || content == nil {
		return types.LinkMap{}, err
	}

	var links types.LinkMap
	if err := json.Unmarshal(content, &links); err != nil {
		return types.LinkMap{}, fmt.Errorf("failed to unmarshal links: %w", err)
	}
	return links, nil
}

// RunHistory is a run with its recorded artifacts.
type RunHistory struct {
	Run      Run             `json:"run"`
	Summary  *types.Summary  `json:"summary,omitempty"`
	Links    types.LinkMap   `json:"links"`
	Template string          `json:"template,omitempty"`
	Message  string          `json:"message,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// GetRunHistory loads a run and every artifact recorded for it. A missing run is (nil, nil).
func (db *DB) GetRunHistory(ctx context.Context, runID uuid.UUID) (*RunHistory, error) {
	run, err := db.GetRun(ctx, runID)
	if err != nil || run == nil {
		return nil, err
	}

	history := &RunHistory{Run: *run}
	if history.Summary, err = db.GetSummaryByRunID(ctx, runID); err != nil {
		return nil, err
	}
	if history.Links, err = db.GetLinksByRunID(ctx, runID); err != nil {
		return nil, err
	}
	if history.Template, err = db.GetTextArtifact(ctx, runID, StepTemplate); err != nil {
		return nil, err
	}
	if history.Message, err = db.GetTextArtifact(ctx, runID, StepMessage); err != nil {
		return nil, err
	}
	if history.Document, err = db.GetArtifact(ctx, runID, StepDocument); err != nil {
		return nil, err
	}
	return history, nil
}
