// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import "net/http"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, &envelope{
				Success: false,
				Error:   &errBody{Code: "NOT_READY", Message: "dependencies unavailable"},
			})
			return
		}
	}
	respondData(w, http.StatusOK, map[string]string{"status": "ready"})
}
