// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package authz

import (
	"testing"

	"github.com/tomtom215/bbqcomp/internal/models"
)

func newTestEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	return e
}

func adminPrincipal() Principal {
	return Principal{Kind: PrincipalUser, UserID: "u-admin", Role: models.RoleAdmin}
}

func operatorPrincipal() Principal {
	return Principal{Kind: PrincipalUser, UserID: "u-op", Role: models.RoleOperator}
}

func seatPrincipal() Principal {
	return Principal{Kind: PrincipalSeat, SeatID: "s1", TableID: "t1", EventID: "e1", SeatNumber: 1}
}

func TestAdminAllowedEverything(t *testing.T) {
	e := newTestEnforcer(t)
	cases := []struct{ res, act string }{
		{ResEvents, ActWrite},
		{ResUsers, ActWrite},
		{ResScores, ActHardDelete},
		{ResAuditLogs, ActRead},
		{ResEvents, ActReadDeleted},
	}
	for _, c := range cases {
		if !e.Allowed(adminPrincipal(), c.res, c.act) {
			t.Errorf("admin denied %s %s", c.act, c.res)
		}
	}
}

func TestOperatorScope(t *testing.T) {
	e := newTestEnforcer(t)
	op := operatorPrincipal()

	allowed := []struct{ res, act string }{
		{ResTables, ActWrite},
		{ResTeams, ActWrite},
		{ResSubmissions, ActStatusUpdate},
		{ResEvents, ActStatusUpdate},
		{ResEvents, ActRead},
		{ResAssignmentPlan, ActRead},
		{ResAuditLogs, ActReadScoped},
	}
	for _, c := range allowed {
		if !e.Allowed(op, c.res, c.act) {
			t.Errorf("operator denied %s %s", c.act, c.res)
		}
	}

	denied := []struct{ res, act string }{
		{ResEvents, ActWrite},
		{ResUsers, ActWrite},
		{ResScores, ActHardDelete},
		{ResEvents, ActReadDeleted},
		{ResAuditLogs, ActRead},
	}
	for _, c := range denied {
		if e.Allowed(op, c.res, c.act) {
			t.Errorf("operator allowed %s %s", c.act, c.res)
		}
	}
}

func TestSeatScope(t *testing.T) {
	e := newTestEnforcer(t)
	seat := seatPrincipal()

	if !e.Allowed(seat, ResScores, ActWrite) {
		t.Error("seat denied score write")
	}
	if !e.Allowed(seat, ResJudging, ActRead) {
		t.Error("seat denied judging read")
	}
	if e.Allowed(seat, ResEvents, ActWrite) {
		t.Error("seat allowed event write")
	}
	if e.Allowed(seat, ResSubmissions, ActStatusUpdate) {
		t.Error("seat allowed submission status update")
	}
}

func TestRequireReturnsForbidden(t *testing.T) {
	e := newTestEnforcer(t)
	err := e.Require(seatPrincipal(), ResEvents, ActWrite)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPrincipalContextRoundTrip(t *testing.T) {
	ctx := ContextWithPrincipal(t.Context(), operatorPrincipal())
	got, ok := PrincipalFromContext(ctx)
	if !ok || got.UserID != "u-op" {
		t.Fatalf("got %+v ok=%v", got, ok)
	}
}
