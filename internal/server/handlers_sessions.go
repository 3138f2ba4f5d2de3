package server

import (
	"context"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/cold-message-generator/internal/ingestion"
	"github.com/jonathan/cold-message-generator/internal/pipeline"
	"github.com/jonathan/cold-message-generator/internal/placeholders"
	"github.com/jonathan/cold-message-generator/internal/server/middleware"
	"github.com/jonathan/cold-message-generator/internal/types"
)

// uploadField is the multipart field carrying the resume file.
const uploadField = "resume"

// SessionResponse is a session plus the placeholders its template lacks.
type SessionResponse struct {
	*pipeline.Session
	MissingPlaceholders []string `json:"missing_placeholders,omitempty"`
}

// EditSummaryRequest is the body of PUT /sessions/{id}/summary.
type EditSummaryRequest struct {
	Summary string `json:"summary"`
}

// SessionTemplateRequest is the body of POST /sessions/{id}/template.
type SessionTemplateRequest struct {
	MessageType types.MessageType `json:"message_type"`
	JobType     string            `json:"job_type"`
}

// SessionMessageRequest is the body of POST /sessions/{id}/message.
type SessionMessageRequest struct {
	RecipientName string `json:"recipient_name"`
	CompanyName   string `json:"company_name"`
}

func newSessionResponse(sess *pipeline.Session) SessionResponse {
	resp := SessionResponse{Session: sess}
	if sess.Template != "" {
		resp.MissingPlaceholders = placeholders.Inspect(sess.Template).Missing()
	}
	return resp
}

// handleCreateSession creates a session. A multipart request with a resume
// file is processed right away; any other request creates an empty session
// whose summary can be typed in.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		sess := s.svc.Sessions.Create()
		s.jsonResponse(w, http.StatusCreated, newSessionResponse(sess))
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	doc, err := s.readUpload(ctx, w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sess := s.svc.Sessions.Create()
	if err := s.svc.Pipeline.ProcessDocument(ctx, sess, doc); err != nil {
		_ = s.svc.Sessions.Delete(sess.ID)
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Sessions.Save(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, newSessionResponse(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionResponse(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Sessions.Delete(r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUploadResume processes a resume into an existing session. Uploading
// the same document again keeps the existing results.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	doc, err := s.readUpload(ctx, w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Pipeline.ProcessDocument(ctx, sess, doc); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Sessions.Save(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionResponse(sess))
}

// handleUploadResumeStream is handleUploadResume reporting progress as
// Server-Sent Events: "progress" per stage, then "complete" or "error".
func (s *Server) handleUploadResumeStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.svc.Sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	doc, err := s.readUpload(ctx, w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	logger := middleware.Logger(r.Context())
	ctx = pipeline.ContextWithProgress(ctx, func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			logger.Debug("failed to write progress event", zap.Error(err))
		}
	})

	if err := s.svc.Pipeline.ProcessDocument(ctx, sess, doc); err != nil {
		logger.Warn("streamed resume processing failed", zap.Error(err))
		status := HTTPStatus(err)
		sse.WriteError(errorBody(err, status).Error, status)
		return
	}
	if err := s.svc.Sessions.Save(sess); err != nil {
		sse.WriteError(err.Error(), HTTPStatus(err))
		return
	}
	sse.WriteComplete(newSessionResponse(sess))
}

func (s *Server) handleEditSummary(w http.ResponseWriter, r *http.Request) {
	var req EditSummaryRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Summary) == "" {
		s.writeError(w, r, &ErrValidation{Field: "summary", Message: "must not be blank"})
		return
	}

	s.updateSession(w, r, func(sess *pipeline.Session) error {
		sess.EditSummary(req.Summary)
		return nil
	})
}

// handleEditLinks replaces the links. Values are user-edited and are not
// checked to be URLs.
func (s *Server) handleEditLinks(w http.ResponseWriter, r *http.Request) {
	var links types.LinkMap
	if err := s.decodeJSON(w, r, &links); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.updateSession(w, r, func(sess *pipeline.Session) error {
		sess.SetLinks(links)
		return nil
	})
}

func (s *Server) handleSessionTemplate(w http.ResponseWriter, r *http.Request) {
	var req SessionTemplateRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	s.updateSession(w, r, func(sess *pipeline.Session) error {
		_, err := s.svc.Pipeline.GenerateTemplate(ctx, sess, req.MessageType, req.JobType)
		return err
	})
}

func (s *Server) handleSessionMessage(w http.ResponseWriter, r *http.Request) {
	var req SessionMessageRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ctx, cancel := s.requestContext(r)
	defer cancel()

	sess, err := s.svc.Sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	message, err := s.svc.Pipeline.FinalizeMessage(ctx, sess, req.RecipientName, req.CompanyName)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, MessageResponse{Message: message})
}

// updateSession loads the session named in the path, applies fn and saves
// the result. A failing fn leaves the stored session unchanged.
func (s *Server) updateSession(w http.ResponseWriter, r *http.Request, fn func(*pipeline.Session) error) {
	sess, err := s.svc.Sessions.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := fn(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Sessions.Save(sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionResponse(sess))
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// readUpload extracts the uploaded resume. Malformed documents yield an
// empty Document rather than an error; unsupported extensions are rejected.
func (s *Server) readUpload(ctx context.Context, w http.ResponseWriter, r *http.Request) (*ingestion.Document, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, &ErrValidation{Field: uploadField, Message: "invalid multipart form: " + err.Error()}
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return nil, &ErrValidation{Field: uploadField, Message: "a resume file is required"}
	}
	defer func() { _ = file.Close() }()

	if _, err := ingestion.DetectFormat(header.Filename); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &ErrValidation{Field: uploadField, Message: "failed to read upload: " + err.Error()}
	}
	return s.svc.Extractor.Extract(ctx, header.Filename, data)
}
