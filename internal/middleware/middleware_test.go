// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/logging"
)

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/events", nil))

	header := rr.Header().Get("X-Request-ID")
	if header == "" || seen != header {
		t.Fatalf("header=%q ctx=%q", header, seen)
	}
}

func TestRequestIDHonorsUpstream(t *testing.T) {
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Fatalf("got %q", got)
	}
}

func TestAuditMetaCaptured(t *testing.T) {
	var meta audit.Meta
	h := AuditMeta(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta, _ = audit.MetaFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/teams", nil)
	req.RemoteAddr = "10.0.0.7:51234"
	req.Header.Set("X-Device-Fingerprint", "tablet-3")
	req.Header.Set("Idempotency-Key", "retry-abc")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if meta.IPAddress != "10.0.0.7" || meta.DeviceFingerprint != "tablet-3" || meta.IdempotencyKey != "retry-abc" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestRouteLabelTruncation(t *testing.T) {
	cases := map[string]string{
		"/events":                "/events",
		"/events/123":            "/events/*",
		"/events/123/tables/456": "/events/*",
		"/health":                "/health",
	}
	for in, want := range cases {
		if got := routeLabel(in); got != want {
			t.Errorf("routeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
