// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package middleware

import (
	"net"
	"net/http"

	"github.com/tomtom215/bbqcomp/internal/audit"
)

// AuditMeta captures the request-scope metadata every audit row carries:
// client IP (X-Forwarded-For aware via chi's RealIP, which runs before
// this), the optional device fingerprint header, and the optional
// idempotency key.
func AuditMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
		meta := audit.Meta{
			IPAddress:         ip,
			DeviceFingerprint: r.Header.Get("X-Device-Fingerprint"),
			IdempotencyKey:    r.Header.Get("Idempotency-Key"),
		}
		next.ServeHTTP(w, r.WithContext(audit.ContextWithMeta(r.Context(), meta)))
	})
}
