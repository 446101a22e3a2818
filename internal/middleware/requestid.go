// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package middleware holds the HTTP middleware shared by every route:
// request-id propagation, Prometheus instrumentation, and audit request
// metadata capture. Authentication middleware lives in internal/api next
// to the routes it guards.
package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/logging"
)

// RequestID assigns each request a unique id (honoring an upstream
// X-Request-ID), reflects it in the response header, and seeds the
// logging context with request and correlation ids.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		ctx = logging.ContextWithNewCorrelationID(ctx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
