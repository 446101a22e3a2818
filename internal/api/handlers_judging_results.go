// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// assignmentPlanRequest optionally pins the shuffle seed; without it the
// seed derives from (event_id, category_id).
type assignmentPlanRequest struct {
	Seed *int32 `json:"seed"`
}

func (s *Server) handleAssignmentPlan(w http.ResponseWriter, r *http.Request) {
	var req assignmentPlanRequest
	// An empty body means "derive the seed".
	if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			respondError(w, r, apperr.Validation("request body is not valid JSON"))
			return
		}
	}
	plan, err := s.svc.Judging.GenerateAssignmentPlan(r.Context(), principalOf(r), chi.URLParam(r, "categoryId"), req.Seed)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, plan)
}

func (s *Server) handleNextForSeat(w http.ResponseWriter, r *http.Request) {
	phase := models.ScorePhase(r.URL.Query().Get("phase"))
	if phase == "" {
		phase = models.PhaseAppearance
	}
	next, err := s.svc.Judging.NextForSeat(
		r.Context(), principalOf(r),
		chi.URLParam(r, "categoryId"),
		chi.URLParam(r, "tableId"),
		chi.URLParam(r, "seatId"),
		phase,
	)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, next)
}

func (s *Server) handleSubmissionResult(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Results.ForSubmission(r.Context(), principalOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result)
}

func (s *Server) handleCategoryResults(w http.ResponseWriter, r *http.Request) {
	results, err := s.svc.Results.ForCategory(r.Context(), principalOf(r), chi.URLParam(r, "categoryId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, results)
}

func (s *Server) handleEventResults(w http.ResponseWriter, r *http.Request) {
	standings, err := s.svc.Results.ForEvent(r.Context(), principalOf(r), chi.URLParam(r, "eventId"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, standings)
}
