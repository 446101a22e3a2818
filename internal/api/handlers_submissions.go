// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/services"
)

func (s *Server) handleCreateSubmission(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSubmissionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	sub, err := s.svc.Submissions.Create(r.Context(), principalOf(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, sub)
}

func (s *Server) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Submissions.Get(r.Context(), principalOf(r), chi.URLParam(r, "id"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sub)
}

func (s *Server) handleDeleteSubmission(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Submissions.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleListSubmissionsByCategory(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.Submissions.ListByCategory(r.Context(), principalOf(r), chi.URLParam(r, "categoryId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, subs)
}

func (s *Server) handleListSubmissionsByTeam(w http.ResponseWriter, r *http.Request) {
	subs, err := s.svc.Submissions.ListByTeam(r.Context(), principalOf(r), chi.URLParam(r, "id"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, subs)
}

// transitionTargets maps the status-action path suffix onto the target
// status; the status machine enforces adjacency.
var transitionTargets = map[string]models.SubmissionStatus{
	"turn-in":       models.SubmissionTurnedIn,
	"start-judging": models.SubmissionBeingJudged,
	"mark-scored":   models.SubmissionScored,
	"finalize":      models.SubmissionFinalized,
}

func (s *Server) handleSubmissionTransition(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Path[strings.LastIndexByte(r.URL.Path, '/')+1:]
	target, ok := transitionTargets[action]
	if !ok {
		respondError(w, r, apperr.Validation("unknown status action"))
		return
	}
	sub, err := s.svc.Submissions.UpdateStatus(r.Context(), principalOf(r), chi.URLParam(r, "id"), target)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, sub)
}

// ---- Scores ----

func (s *Server) handleListScores(w http.ResponseWriter, r *http.Request) {
	scores, err := s.svc.Scores.ListBySubmission(r.Context(), principalOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, scores)
}

func (s *Server) handleCreateScore(w http.ResponseWriter, r *http.Request) {
	var req services.CreateScoreRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	req.SubmissionID = chi.URLParam(r, "id")
	score, err := s.svc.Scores.Create(r.Context(), principalOf(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, score)
}

func (s *Server) handleGetScore(w http.ResponseWriter, r *http.Request) {
	score, err := s.svc.Scores.Get(r.Context(), principalOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, score)
}

func (s *Server) handleUpdateScore(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateScoreRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	score, err := s.svc.Scores.Update(r.Context(), principalOf(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, score)
}

func (s *Server) handleDeleteScore(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Scores.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}
