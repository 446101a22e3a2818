// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/services"
)

// decodeOneOrMany reads a create body that is either a single object or
// the bulk `{items: [...]}` wrapper, returning the items and whether the
// bulk form was used.
func decodeOneOrMany[T any](r *http.Request) ([]T, bool, error) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, false, apperr.Validation("cannot read request body")
	}

	var probe struct {
		Items json.RawMessage `json:"items"`
	}
	if json.Unmarshal(raw, &probe) == nil && probe.Items != nil {
		var wrapper struct {
			Items []T `json:"items"`
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&wrapper); err != nil {
			return nil, true, apperr.Validation("request body is not valid JSON: " + err.Error())
		}
		return wrapper.Items, true, nil
	}

	var single T
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&single); err != nil {
		return nil, false, apperr.Validation("request body is not valid JSON: " + err.Error())
	}
	return []T{single}, false, nil
}

// ---- Tables ----

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.svc.Tables.ListByEvent(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, tables)
}

func (s *Server) handleCreateTables(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	items, bulk, err := decodeOneOrMany[services.CreateTableRequest](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !bulk {
		table, err := s.svc.Tables.Create(r.Context(), principalOf(r), eventID, items[0])
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondData(w, http.StatusCreated, table)
		return
	}
	tables, err := s.svc.Tables.BulkCreate(r.Context(), principalOf(r), eventID, items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, tables)
}

func (s *Server) handleGetTable(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.Tables.Get(r.Context(), principalOf(r), chi.URLParam(r, "id"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, table)
}

func (s *Server) handleUpdateTable(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTableRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	table, err := s.svc.Tables.Update(r.Context(), principalOf(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, table)
}

func (s *Server) handleDeleteTable(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Tables.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleRegenerateTableToken(w http.ResponseWriter, r *http.Request) {
	table, err := s.svc.Tables.RegenerateToken(r.Context(), principalOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, table)
}

// ---- Seats ----

func (s *Server) handleListSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := s.svc.Seats.ListByTable(r.Context(), principalOf(r), chi.URLParam(r, "id"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, seats)
}

func (s *Server) handleCreateSeat(w http.ResponseWriter, r *http.Request) {
	var req services.CreateSeatRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	seat, err := s.svc.Seats.Create(r.Context(), principalOf(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, seat)
}

func (s *Server) handleDeleteSeat(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Seats.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ---- Categories ----

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.svc.Categories.ListByEvent(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, categories)
}

func (s *Server) handleCreateCategories(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	items, bulk, err := decodeOneOrMany[services.CreateCategoryRequest](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !bulk {
		category, err := s.svc.Categories.Create(r.Context(), principalOf(r), eventID, items[0])
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondData(w, http.StatusCreated, category)
		return
	}
	categories, err := s.svc.Categories.BulkCreate(r.Context(), principalOf(r), eventID, items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, categories)
}

func (s *Server) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.svc.Categories.Get(r.Context(), principalOf(r), chi.URLParam(r, "categoryId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, category)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateCategoryRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	category, err := s.svc.Categories.Update(r.Context(), principalOf(r), chi.URLParam(r, "categoryId"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, category)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Categories.Delete(r.Context(), principalOf(r), chi.URLParam(r, "categoryId")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ---- Criteria ----

func (s *Server) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	criteria, err := s.svc.Criteria.ListByEvent(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, criteria)
}

func (s *Server) handleCreateCriteria(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	items, bulk, err := decodeOneOrMany[services.CreateCriterionRequest](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !bulk {
		criterion, err := s.svc.Criteria.Create(r.Context(), principalOf(r), eventID, items[0])
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondData(w, http.StatusCreated, criterion)
		return
	}
	criteria, err := s.svc.Criteria.BulkCreate(r.Context(), principalOf(r), eventID, items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, criteria)
}

func (s *Server) handleGetCriterion(w http.ResponseWriter, r *http.Request) {
	criterion, err := s.svc.Criteria.Get(r.Context(), principalOf(r), chi.URLParam(r, "id"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, criterion)
}

func (s *Server) handleUpdateCriterion(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateCriterionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	criterion, err := s.svc.Criteria.Update(r.Context(), principalOf(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, criterion)
}

func (s *Server) handleDeleteCriterion(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Criteria.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ---- Teams ----

func (s *Server) handleListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := s.svc.Teams.ListByEvent(r.Context(), principalOf(r), chi.URLParam(r, "eventId"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, teams)
}

func (s *Server) handleCreateTeams(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventId")
	items, bulk, err := decodeOneOrMany[services.CreateTeamRequest](r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !bulk {
		team, err := s.svc.Teams.Create(r.Context(), principalOf(r), eventID, items[0])
		if err != nil {
			respondError(w, r, err)
			return
		}
		respondData(w, http.StatusCreated, team)
		return
	}
	teams, err := s.svc.Teams.BulkCreate(r.Context(), principalOf(r), eventID, items)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, teams)
}

func (s *Server) handleGetTeam(w http.ResponseWriter, r *http.Request) {
	team, err := s.svc.Teams.Get(r.Context(), principalOf(r), chi.URLParam(r, "id"), includeDeletedFlag(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, team)
}

func (s *Server) handleUpdateTeam(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateTeamRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	team, err := s.svc.Teams.Update(r.Context(), principalOf(r), chi.URLParam(r, "id"), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, team)
}

func (s *Server) handleDeleteTeam(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Teams.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) handleInvalidateTeamCode(w http.ResponseWriter, r *http.Request) {
	team, err := s.svc.Teams.InvalidateCode(r.Context(), principalOf(r), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, team)
}

func (s *Server) handleVerifyBarcode(w http.ResponseWriter, r *http.Request) {
	var req services.VerifyBarcodeRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	result, err := s.svc.Teams.VerifyBarcode(r.Context(), principalOf(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, result)
}
