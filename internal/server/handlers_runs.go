package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/cold-message-generator/internal/db"
)

// RunsResponse lists recorded runs, newest first.
type RunsResponse struct {
	Runs []db.Run `json:"runs"`
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.svc.History == nil {
		s.writeError(w, r, ErrHistoryDisabled)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			s.writeError(w, r, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 500"})
			return
		}
		limit = n
	}

	runs, err := s.svc.History.ListRuns(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, RunsResponse{Runs: runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}

	history, err := s.svc.History.GetRunHistory(r.Context(), runID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if history == nil {
		s.writeError(w, r, db.ErrRunNotFound)
		return
	}
	s.jsonResponse(w, http.StatusOK, history)
}

func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, ok := s.runID(w, r)
	if !ok {
		return
	}

	if err := s.svc.History.DeleteRun(r.Context(), runID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// runID parses the path ID, writing the error response itself when that fails.
func (s *Server) runID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	if s.svc.History == nil {
		s.writeError(w, r, ErrHistoryDisabled)
		return uuid.Nil, false
	}
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, &ErrValidation{Field: "id", Message: "must be a UUID"})
		return uuid.Nil, false
	}
	return runID, true
}
