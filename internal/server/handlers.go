package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/server/middleware"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// CredentialsRequest is the body of PUT /credentials.
type CredentialsRequest struct {
	APIKey string `json:"api_key"`
}

// CredentialsResponse reports whether an API key is configured. The key itself is never returned.
type CredentialsResponse struct {
	Configured bool `json:"configured"`
}

// ClassifyLinksRequest is the body of POST /links/classify.
type ClassifyLinksRequest struct {
	Links []string `json:"links"`
}

// SummarizeRequest is the body of POST /summaries.
type SummarizeRequest struct {
	ResumeText string `json:"resume_text"`
}

// TemplateResponse carries a composed template and the placeholders it lacks.
type TemplateResponse struct {
	Template            string   `json:"template"`
	MissingPlaceholders []string `json:"missing_placeholders,omitempty"`
}

// FillRequest is the body of POST /messages.
type FillRequest struct {
	Template      string `json:"template"`
	RecipientName string `json:"recipient_name"`
	CompanyName   string `json:"company_name"`
}

// MessageResponse carries a finished message.
type MessageResponse struct {
	Message string `json:"message"`
}

func newTemplateResponse(template string) TemplateResponse {
	return TemplateResponse{Template: template, MissingPlaceholders: placeholders.Inspect(template).Missing()}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":                 "ok",
		"credentials_configured": s.svc.Credentials.Configured(),
	})
}

func (s *Server) handleMessageTypes(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{"message_types": types.MessageTypes})
}

func (s *Server) handleGetCredentials(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, CredentialsResponse{Configured: s.svc.Credentials.Configured()})
}

func (s *Server) handlePutCredentials(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	key := strings.TrimSpace(req.APIKey)
	if key == "" {
		s.writeError(w, r, &ErrValidation{Field: "api_key", Message: "must not be empty"})
		return
	}

	s.svc.Credentials.Set(key)
	middleware.Logger(r.Context()).Info("API key updated")
	s.jsonResponse(w, http.StatusOK, CredentialsResponse{Configured: true})
}

// handleClassifyLinks always answers 200; classification failures yield an empty map.
func (s *Server) handleClassifyLinks(w http.ResponseWriter, r *http.Request) {
	var req ClassifyLinksRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	s.jsonResponse(w, http.StatusOK, s.svc.Classifier.Classify(ctx, req.Links))
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	summary, err := s.svc.Summarizer.Summarize(ctx, req.ResumeText)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, summary)
}

func (s *Server) handleComposeTemplate(w http.ResponseWriter, r *http.Request) {
	var in types.UserInput
	if err := s.decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	template, err := s.svc.Composer.Compose(ctx, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newTemplateResponse(template))
}

func (s *Server) handleFillMessage(w http.ResponseWriter, r *http.Request) {
	var req FillRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Template) == "" {
		s.writeError(w, r, &ErrValidation{Field: "template", Message: "must not be empty"})
		return
	}

	message, err := s.svc.Filler.Fill(req.Template, req.RecipientName, req.CompanyName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, MessageResponse{Message: message})
}

// decodeJSON reads a size-limited JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return &ErrValidation{Field: "body", Message: "request body is empty"}
		}
		return &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps err to a status code and writes it as JSON. Server-side
// failures are logged with the cause and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	logger := middleware.Logger(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}
	s.jsonResponse(w, status, errorBody(err, status))
}
