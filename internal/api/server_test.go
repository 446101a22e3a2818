// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/config"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/repository/memory"
	"github.com/tomtom215/bbqcomp/internal/services"
)

type apiEnv struct {
	handler    http.Handler
	svc        *services.Services
	jwt        *auth.Manager
	adminToken string
	opToken    string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	store := memory.NewStore()
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("enforcer: %v", err)
	}
	jwt, err := auth.NewManager(&config.SecurityConfig{
		JWTSecret:    "0123456789abcdef0123456789abcdef",
		JWTExpiresIn: time.Hour,
		SeatTokenTTL: 90 * time.Minute,
	})
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}
	repos := services.Repos{
		Events:      store.Events(),
		Tables:      store.Tables(),
		Seats:       store.Seats(),
		Categories:  store.Categories(),
		Criteria:    store.Criteria(),
		Teams:       store.Teams(),
		Submissions: store.Submissions(),
		Scores:      store.Scores(),
		Users:       store.Users(),
	}
	svc := services.New(repos, audit.NewStore(audit.NewMemoryStore()), enforcer, jwt, services.Config{
		BarcodeSecret: "api-test-secret",
		JWTExpiresIn:  time.Hour,
		SeatTokenTTL:  90 * time.Minute,
	})
	server := NewServer(svc, jwt, nil)

	adminToken, err := jwt.GenerateUserToken("admin-id", "admin", "admin")
	if err != nil {
		t.Fatalf("admin token: %v", err)
	}
	opToken, err := jwt.GenerateUserToken("op-id", "op", "operator")
	if err != nil {
		t.Fatalf("op token: %v", err)
	}
	return &apiEnv{
		handler:    server.Routes(),
		svc:        svc,
		jwt:        jwt,
		adminToken: adminToken,
		opToken:    opToken,
	}
}

func (env *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	env.handler.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rr.Body.String())
	}
	return out
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	env := decodeEnvelope(t, rr)
	errObj, _ := env["error"].(map[string]interface{})
	code, _ := errObj["code"].(string)
	return code
}

func (env *apiEnv) createEvent(t *testing.T) string {
	t.Helper()
	rr := env.do(t, http.MethodPost, "/events", env.adminToken, map[string]interface{}{
		"name": "Regional Cook-Off", "date": time.Now().UTC().Format(time.RFC3339),
		"scoring_scale_min": 1.0, "scoring_scale_max": 9.0, "scoring_scale_step": 0.5,
		"aggregation_method": "mean",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create event: %d %s", rr.Code, rr.Body.String())
	}
	data := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	return data["id"].(string)
}

func TestHealthEndpoints(t *testing.T) {
	env := newAPIEnv(t)
	if rr := env.do(t, http.MethodGet, "/health", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("health: %d", rr.Code)
	}
	if rr := env.do(t, http.MethodGet, "/health/ready", "", nil); rr.Code != http.StatusOK {
		t.Fatalf("ready: %d", rr.Code)
	}
}

func TestUnauthenticatedRequestsRejected(t *testing.T) {
	env := newAPIEnv(t)
	rr := env.do(t, http.MethodGet, "/events", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d", rr.Code)
	}
	if got := errorCode(t, rr); got != "UNAUTHORIZED" {
		t.Fatalf("error code = %s", got)
	}

	rr = env.do(t, http.MethodGet, "/events", "not-a-jwt", nil)
	if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "INVALID_TOKEN" {
		t.Fatalf("garbage token: %d %s", rr.Code, rr.Body.String())
	}
}

func TestEnvelopeShape(t *testing.T) {
	env := newAPIEnv(t)
	id := env.createEvent(t)

	rr := env.do(t, http.MethodGet, "/events/"+id, env.adminToken, nil)
	body := decodeEnvelope(t, rr)
	if body["success"] != true {
		t.Fatalf("success = %v", body["success"])
	}
	if _, ok := body["data"].(map[string]interface{}); !ok {
		t.Fatalf("data missing: %s", rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/events/no-such-id", env.adminToken, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("code = %d", rr.Code)
	}
	body = decodeEnvelope(t, rr)
	if body["success"] != false || errorCode(t, rr) != "NOT_FOUND" {
		t.Fatalf("error envelope: %s", rr.Body.String())
	}
}

func TestOperatorEventPermissions(t *testing.T) {
	env := newAPIEnv(t)
	id := env.createEvent(t)

	// Operator cannot create events.
	rr := env.do(t, http.MethodPost, "/events", env.opToken, map[string]interface{}{
		"name": "X", "date": time.Now().UTC().Format(time.RFC3339),
		"scoring_scale_min": 1.0, "scoring_scale_max": 9.0, "scoring_scale_step": 0.5,
		"aggregation_method": "mean",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("operator create: %d", rr.Code)
	}

	// Operator cannot PATCH event fields.
	rr = env.do(t, http.MethodPatch, "/events/"+id, env.opToken, map[string]interface{}{"name": "Renamed"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("operator patch: %d", rr.Code)
	}

	// Operator may advance status, but only with a status-only body.
	rr = env.do(t, http.MethodPost, "/events/"+id+"/status", env.opToken, map[string]interface{}{
		"status": "active", "name": "Sneaky",
	})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("status with extra fields: %d %s", rr.Code, rr.Body.String())
	}
	rr = env.do(t, http.MethodPost, "/events/"+id+"/status", env.opToken, map[string]interface{}{"status": "active"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status-only update: %d %s", rr.Code, rr.Body.String())
	}

	// Illegal transition maps to 422.
	rr = env.do(t, http.MethodPost, "/events/"+id+"/status", env.opToken, map[string]interface{}{"status": "archived"})
	if rr.Code != http.StatusUnprocessableEntity || errorCode(t, rr) != "INVALID_STATUS_TRANSITION" {
		t.Fatalf("skip transition: %d %s", rr.Code, rr.Body.String())
	}
}

func TestBulkCreateEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	id := env.createEvent(t)

	rr := env.do(t, http.MethodPost, "/events/"+id+"/categories", env.opToken, map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Brisket", "sort_order": 1},
			{"name": "Ribs", "sort_order": 2},
		},
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("bulk create: %d %s", rr.Code, rr.Body.String())
	}
	data := decodeEnvelope(t, rr)["data"].([]interface{})
	if len(data) != 2 {
		t.Fatalf("created %d categories", len(data))
	}

	// Duplicate against existing rows: whole request fails.
	rr = env.do(t, http.MethodPost, "/events/"+id+"/categories", env.opToken, map[string]interface{}{
		"items": []map[string]interface{}{
			{"name": "Chicken"}, {"name": "Ribs"},
		},
	})
	if rr.Code != http.StatusConflict {
		t.Fatalf("bulk conflict: %d", rr.Code)
	}
}

func TestSeatJudgingFlow(t *testing.T) {
	env := newAPIEnv(t)
	ctx := context.Background()
	eventID := env.createEvent(t)

	// Build topology directly through services.
	adminP := authz.Principal{Kind: authz.PrincipalUser, UserID: "admin-id", Role: models.RoleAdmin}
	table, err := env.svc.Tables.Create(ctx, adminP, eventID, services.CreateTableRequest{TableNumber: 1})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	seat, err := env.svc.Seats.Create(ctx, adminP, table.ID, services.CreateSeatRequest{SeatNumber: 1})
	if err != nil {
		t.Fatalf("seat: %v", err)
	}
	category, err := env.svc.Categories.Create(ctx, adminP, eventID, services.CreateCategoryRequest{Name: "Brisket"})
	if err != nil {
		t.Fatalf("category: %v", err)
	}
	criterion, err := env.svc.Criteria.Create(ctx, adminP, eventID, services.CreateCriterionRequest{Name: "Taste"})
	if err != nil {
		t.Fatalf("criterion: %v", err)
	}
	team, err := env.svc.Teams.Create(ctx, adminP, eventID, services.CreateTeamRequest{Name: "Smokers", TeamNumber: 7})
	if err != nil {
		t.Fatalf("team: %v", err)
	}
	sub, err := env.svc.Submissions.Create(ctx, adminP, services.CreateSubmissionRequest{TeamID: team.ID, CategoryID: category.ID})
	if err != nil {
		t.Fatalf("submission: %v", err)
	}
	if _, err := env.svc.Submissions.UpdateStatus(ctx, adminP, sub.ID, models.SubmissionTurnedIn); err != nil {
		t.Fatalf("turn in: %v", err)
	}

	// Seat token via the public endpoint.
	rr := env.do(t, http.MethodPost, "/auth/seat-token", "", map[string]interface{}{
		"qrToken": table.QRToken, "seatNumber": 1,
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("seat token: %d %s", rr.Code, rr.Body.String())
	}
	seatToken := decodeEnvelope(t, rr)["data"].(map[string]interface{})["accessToken"].(string)

	// Next submission for the seat.
	next := env.do(t, http.MethodGet,
		"/categories/"+category.ID+"/tables/"+table.ID+"/seats/"+seat.ID+"/next?phase=taste_texture",
		seatToken, nil)
	if next.Code != http.StatusOK {
		t.Fatalf("next: %d %s", next.Code, next.Body.String())
	}
	nextData := decodeEnvelope(t, next)["data"].(map[string]interface{})
	if nextData["submission_id"] != sub.ID {
		t.Fatalf("next = %v, want %s", nextData, sub.ID)
	}

	// Seat submits a score.
	rr = env.do(t, http.MethodPost, "/submissions/"+sub.ID+"/scores", seatToken, map[string]interface{}{
		"criterion_id": criterion.ID, "score_value": 8.5, "phase": "taste_texture",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("score: %d %s", rr.Code, rr.Body.String())
	}

	// Sequence exhausted now.
	next = env.do(t, http.MethodGet,
		"/categories/"+category.ID+"/tables/"+table.ID+"/seats/"+seat.ID+"/next?phase=taste_texture",
		seatToken, nil)
	if done := decodeEnvelope(t, next)["data"].(map[string]interface{})["done"]; done != true {
		t.Fatalf("done = %v", done)
	}

	// Seat cannot touch operator surfaces.
	if rr := env.do(t, http.MethodGet, "/events", seatToken, nil); rr.Code != http.StatusUnauthorized {
		t.Fatalf("seat on /events: %d", rr.Code)
	}

	// Result visible to the operator.
	rr = env.do(t, http.MethodGet, "/submissions/"+sub.ID+"/result", env.opToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("result: %d %s", rr.Code, rr.Body.String())
	}
	result := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	if result["final_score"].(float64) != 8.5 {
		t.Fatalf("final score = %v", result["final_score"])
	}
}

func TestAuditLogEndpointsGated(t *testing.T) {
	env := newAPIEnv(t)
	eventID := env.createEvent(t)

	// Global listing: admin only.
	rr := env.do(t, http.MethodGet, "/audit-logs", env.opToken, nil)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("operator global audit: %d", rr.Code)
	}
	rr = env.do(t, http.MethodGet, "/audit-logs", env.adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin global audit: %d", rr.Code)
	}
	body := decodeEnvelope(t, rr)
	meta, _ := body["meta"].(map[string]interface{})
	if meta == nil || meta["pagination"] == nil {
		t.Fatalf("missing pagination meta: %s", rr.Body.String())
	}

	// Event-scoped listing: operator allowed.
	rr = env.do(t, http.MethodGet, "/events/"+eventID+"/audit-logs", env.opToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("operator scoped audit: %d %s", rr.Code, rr.Body.String())
	}
}

func TestLoginEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	if _, err := env.svc.Users.Bootstrap(context.Background(), "admin", "first-run-password"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	rr := env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "INVALID_CREDENTIALS" {
		t.Fatalf("bad login: %d %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"username": "admin", "password": "first-run-password",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("login: %d %s", rr.Code, rr.Body.String())
	}
	data := decodeEnvelope(t, rr)["data"].(map[string]interface{})
	token, _ := data["accessToken"].(string)
	if token == "" {
		t.Fatal("no access token")
	}

	// Token works against /auth/me.
	rr = env.do(t, http.MethodGet, "/auth/me", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: %d %s", rr.Code, rr.Body.String())
	}
}
