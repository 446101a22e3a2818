// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/bbqcomp/internal/services"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := s.svc.Auth.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, resp)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	resp, err := s.svc.Auth.Refresh(r.Context(), principalOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, resp)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.svc.Auth.Me(r.Context(), principalOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (s *Server) handleSeatToken(w http.ResponseWriter, r *http.Request) {
	var req services.SeatTokenRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := s.svc.Auth.SeatToken(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, resp)
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.svc.Users.List(r.Context(), principalOf(r))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, users)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUserRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := s.svc.Users.Create(r.Context(), principalOf(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Users.Delete(r.Context(), principalOf(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"deleted": true})
}
