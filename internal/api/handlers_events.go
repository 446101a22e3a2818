// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/services"
)

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.svc.Events.List(r.Context(), principalOf(r), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, events)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var req services.CreateEventRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	event, err := s.svc.Events.Create(r.Context(), principalOf(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, event)
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := s.svc.Events.Get(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, event)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateEventRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	event, err := s.svc.Events.Update(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, event)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Events.Delete(r.Context(), principalOf(r), chi.URLParam(r, "eventId")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleEventStatus is strict about its body: any field other than
// {status} is rejected, so a client can never believe it updated fields
// this endpoint silently dropped.
func (s *Server) handleEventStatus(w http.ResponseWriter, r *http.Request) {
	var body map[string]json.RawMessage
	if err := decodeBody(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	for key := range body {
		if key != "status" {
			respondError(w, r, apperr.Forbidden("status endpoint accepts only the status field"))
			return
		}
	}
	var status models.EventStatus
	if raw, ok := body["status"]; ok {
		if err := json.Unmarshal(raw, &status); err != nil {
			respondError(w, r, apperr.Validation("status must be a string"))
			return
		}
	}
	if status == "" {
		respondError(w, r, apperr.Validation("status is required"))
		return
	}

	event, err := s.svc.Events.UpdateStatus(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), status)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, event)
}
