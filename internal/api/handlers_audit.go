// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// handleListAuditLogs serves both the global and the event-scoped list;
// the eventId URL param decides which, and the audit service decides who
// may see what.
func (s *Server) handleListAuditLogs(w http.ResponseWriter, r *http.Request) {
	page, pageSize := pageParams(r)
	q := r.URL.Query()

	filter := audit.QueryFilter{
		EntityType: q.Get("entity_type"),
		Action:     models.AuditAction(q.Get("action")),
		ActorType:  models.ActorType(q.Get("actor_type")),
		EventID:    chi.URLParam(r, "eventId"),
		Limit:      pageSize,
		Offset:     (page - 1) * pageSize,
	}
	if filter.EventID == "" {
		filter.EventID = q.Get("event_id")
	}
	if from := q.Get("from"); from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			filter.StartTime = &t
		}
	}
	if to := q.Get("to"); to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			filter.EndTime = &t
		}
	}

	pageResult, err := s.svc.Audit.Query(r.Context(), principalOf(r), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondPage(w, pageResult.Items, page, pageSize, pageResult.Total)
}

func (s *Server) handleGetAuditLog(w http.ResponseWriter, r *http.Request) {
	row, err := s.svc.Audit.Get(r.Context(), principalOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, row)
}
