// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/config"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/repository/memory"
)

type testEnv struct {
	svc   *Services
	store *memory.Store
	audit *audit.MemoryStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	auditMem := audit.NewMemoryStore()
	enforcer, err := authz.NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	jwt, err := auth.NewManager(&config.SecurityConfig{
		JWTSecret:    "0123456789abcdef0123456789abcdef",
		JWTExpiresIn: 24 * time.Hour,
		SeatTokenTTL: 90 * time.Minute,
	})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	repos := Repos{
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
	svc := New(repos, audit.NewStore(auditMem), enforcer, jwt, Config{
		BarcodeSecret: "test-barcode-secret",
		JWTExpiresIn:  24 * time.Hour,
		SeatTokenTTL:  90 * time.Minute,
	})
	return &testEnv{svc: svc, store: store, audit: auditMem}
}

func admin() authz.Principal {
	return authz.Principal{Kind: authz.PrincipalUser, UserID: "admin-id", Username: "admin", Role: models.RoleAdmin}
}

func operator() authz.Principal {
	return authz.Principal{Kind: authz.PrincipalUser, UserID: "op-id", Username: "op", Role: models.RoleOperator}
}

func seatFor(seat *models.Seat, eventID string) authz.Principal {
	return authz.Principal{
		Kind: authz.PrincipalSeat, SeatID: seat.ID, TableID: seat.TableID,
		EventID: eventID, SeatNumber: seat.SeatNumber,
	}
}

func mustCreateEvent(t *testing.T, env *testEnv, method string) *models.Event {
	t.Helper()
	e, err := env.svc.Events.Create(context.Background(), admin(), CreateEventRequest{
		Name:              "State Championship",
		Date:              time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		ScoringScaleMin:   1,
		ScoringScaleMax:   9,
		ScoringScaleStep:  0.5,
		AggregationMethod: method,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return e
}

func codeOf(t *testing.T, err error) apperr.Code {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	return apperr.CodeOf(err)
}

func TestEventCreateRejectsBadScale(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Events.Create(context.Background(), admin(), CreateEventRequest{
		Name: "Bad", Date: time.Now(), ScoringScaleMin: 9, ScoringScaleMax: 1,
		ScoringScaleStep: 0.5, AggregationMethod: "mean",
	})
	if got := codeOf(t, err); got != apperr.CodeValidation {
		t.Fatalf("code = %s, want VALIDATION_ERROR", got)
	}
}

func TestOperatorCannotCreateEvent(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Events.Create(context.Background(), operator(), CreateEventRequest{
		Name: "X", Date: time.Now(), ScoringScaleMin: 1, ScoringScaleMax: 9,
		ScoringScaleStep: 1, AggregationMethod: "mean",
	})
	if got := codeOf(t, err); got != apperr.CodeForbidden {
		t.Fatalf("code = %s, want FORBIDDEN", got)
	}
}

func TestEventStatusMachine(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	// Operator may advance status.
	e2, err := env.svc.Events.UpdateStatus(ctx, operator(), e.ID, models.EventActive)
	if err != nil {
		t.Fatalf("draft->active: %v", err)
	}
	if e2.Status != models.EventActive {
		t.Fatalf("status = %s", e2.Status)
	}

	// Skipping a step fails and leaves the row unchanged.
	_, err = env.svc.Events.UpdateStatus(ctx, operator(), e.ID, models.EventArchived)
	if got := codeOf(t, err); got != apperr.CodeInvalidStatusTransition {
		t.Fatalf("code = %s, want INVALID_STATUS_TRANSITION", got)
	}
	cur, err := env.svc.Events.Get(ctx, admin(), e.ID, false)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cur.Status != models.EventActive {
		t.Fatalf("status after failed transition = %s", cur.Status)
	}
}

func TestMutationsWriteAuditRows(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	if env.audit.Len() == 0 {
		t.Fatal("no audit rows after event create")
	}

	ctx := context.Background()
	page, err := env.svc.Audit.Query(ctx, admin(), audit.QueryFilter{EntityType: "event", EntityID: e.ID})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("total = %d items = %d", page.Total, len(page.Items))
	}
	if page.Items[0].Action != models.ActionCreated {
		t.Fatalf("action = %s", page.Items[0].Action)
	}
}

func TestAuditQueryOperatorScoping(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	// Global query is admin-only.
	if _, err := env.svc.Audit.Query(ctx, operator(), audit.QueryFilter{}); err == nil {
		t.Fatal("operator global audit query should fail")
	}
	// Event-scoped query is allowed.
	if _, err := env.svc.Audit.Query(ctx, operator(), audit.QueryFilter{EventID: e.ID}); err != nil {
		t.Fatalf("scoped query: %v", err)
	}
}

func TestIncludeDeletedHonoredOnlyForAdmin(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	if err := env.svc.Events.Delete(ctx, admin(), e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := env.svc.Events.Get(ctx, operator(), e.ID, true); err == nil {
		t.Fatal("operator with include_deleted should still get NOT_FOUND")
	}
	if _, err := env.svc.Events.Get(ctx, admin(), e.ID, true); err != nil {
		t.Fatalf("admin with include_deleted: %v", err)
	}
}

func TestSoftDeleteDoesNotCascade(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	cat, err := env.svc.Categories.Create(ctx, operator(), e.ID, CreateCategoryRequest{Name: "Brisket"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if err := env.svc.Events.Delete(ctx, admin(), e.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}

	got, err := env.svc.Categories.Get(ctx, operator(), cat.ID, false)
	if err != nil {
		t.Fatalf("category should survive parent delete: %v", err)
	}
	if got.DeletedAt != nil {
		t.Fatal("child category was cascade-deleted")
	}
}

func TestUniqueAfterSoftDelete(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	c1, err := env.svc.Categories.Create(ctx, operator(), e.ID, CreateCategoryRequest{Name: "Ribs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.svc.Categories.Create(ctx, operator(), e.ID, CreateCategoryRequest{Name: "Ribs"}); err == nil {
		t.Fatal("duplicate name should conflict")
	}
	if err := env.svc.Categories.Delete(ctx, operator(), c1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	c2, err := env.svc.Categories.Create(ctx, operator(), e.ID, CreateCategoryRequest{Name: "Ribs"})
	if err != nil {
		t.Fatalf("recreate after soft delete: %v", err)
	}
	if c2.ID == c1.ID {
		t.Fatal("recreate reused the old id")
	}
}

func TestBulkCreateAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	// Request-level duplicate.
	_, err := env.svc.Tables.BulkCreate(ctx, operator(), e.ID, []CreateTableRequest{
		{TableNumber: 1}, {TableNumber: 1},
	})
	if got := codeOf(t, err); got != apperr.CodeConflict {
		t.Fatalf("code = %s, want CONFLICT", got)
	}
	tables, _ := env.svc.Tables.ListByEvent(ctx, operator(), e.ID, false)
	if len(tables) != 0 {
		t.Fatalf("partial write after failed bulk: %d tables", len(tables))
	}

	// Store-level conflict against a pre-existing table.
	if _, err := env.svc.Tables.Create(ctx, operator(), e.ID, CreateTableRequest{TableNumber: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err = env.svc.Tables.BulkCreate(ctx, operator(), e.ID, []CreateTableRequest{
		{TableNumber: 2}, {TableNumber: 3},
	})
	if got := codeOf(t, err); got != apperr.CodeConflict {
		t.Fatalf("code = %s, want CONFLICT", got)
	}
	tables, _ = env.svc.Tables.ListByEvent(ctx, operator(), e.ID, false)
	if len(tables) != 1 {
		t.Fatalf("partial write after failed bulk: %d tables", len(tables))
	}
}

func TestTableQRTokenShape(t *testing.T) {
	env := newTestEnv(t)
	e := mustCreateEvent(t, env, "mean")
	ctx := context.Background()

	tbl, err := env.svc.Tables.Create(ctx, operator(), e.ID, CreateTableRequest{TableNumber: 1})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(tbl.QRToken) != 64 {
		t.Fatalf("qr token length = %d, want 64", len(tbl.QRToken))
	}

	regen, err := env.svc.Tables.RegenerateToken(ctx, operator(), tbl.ID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if regen.QRToken == tbl.QRToken {
		t.Fatal("regenerate kept the old token")
	}
}
