package server

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/resume-analyzer/internal/db"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// handleListHistory lists recent analyses. Query: limit (default 20, max 500).
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, r, &ErrStoreUnavailable{})
		return
	}

	limit := db.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.errorResponse(w, r, &ErrBadRequest{Message: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := s.store.ListAnalyses(r.Context(), limit)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.HistoryResponse{Count: len(records), Analyses: records})
}

// handleGetHistory returns one stored analysis.
func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, r, &ErrStoreUnavailable{})
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, r, &ErrBadRequest{Message: "invalid analysis id"})
		return
	}

	record, err := s.store.GetAnalysis(r.Context(), id)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, record)
}

// handleStats summarizes the stored analyses.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.errorResponse(w, r, &ErrStoreUnavailable{})
		return
	}

	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, stats)
}
