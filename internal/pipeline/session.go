package pipeline

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// Session holds the state of one user's work on one resume: the last
// processed document, its summary and links, and the latest template.
// Sessions are plain values; callers that share them across goroutines go
// through a store that hands out copies.
type Session struct {
	ID           string         `json:"id"`
	DocumentHash string         `json:"document_hash,omitempty"`
	FileName     string         `json:"file_name,omitempty"`
	ResumeText   string         `json:"resume_text,omitempty"`
	Summary      *types.Summary `json:"summary,omitempty"`
	SummaryText  string         `json:"summary_text"`
	Links        types.LinkMap  `json:"links"`
	ResumeLink   string         `json:"resume_link,omitempty"`
	Template     string         `json:"template,omitempty"`
	RunID        uuid.UUID      `json:"run_id"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// NewSession creates an empty session with a fresh ID.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), UpdatedAt: time.Now().UTC()}
}

// EditSummary replaces the summary prose used for message generation.
// The structured Summary is left as extracted.
func (s *Session) EditSummary(text string) {
	s.SummaryText = text
	s.touch()
}

// SetLinks replaces the classified links with user-edited ones, including
// the resume link: an empty resume entry clears it.
func (s *Session) SetLinks(links types.LinkMap) {
	s.Links = links
	s.ResumeLink = strings.TrimSpace(links.Resume)
	s.touch()
}

// SetResumeLink sets the link to the hosted resume.
func (s *Session) SetResumeLink(url string) {
	s.ResumeLink = strings.TrimSpace(url)
	s.touch()
}

// HasSummary reports whether a summary is available for message generation.
func (s *Session) HasSummary() bool {
	return strings.TrimSpace(s.SummaryText) != ""
}

// EffectiveLinks returns the session's links with the resume link applied.
func (s *Session) EffectiveLinks() types.LinkMap {
	links := s.Links
	if s.ResumeLink != "" {
		links.Resume = s.ResumeLink
	}
	return links
}

// UserInput builds the composer input for the session.
func (s *Session) UserInput(messageType types.MessageType, jobType string) types.UserInput {
	return types.NewUserInput(s.SummaryText, s.EffectiveLinks(), messageType, jobType)
}

// Clone returns a copy of the session. The extracted Summary is never
// mutated after extraction, so it is shared rather than copied.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
