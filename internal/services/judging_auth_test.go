// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"reflect"
	"testing"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

func TestAssignmentPlanDeterministic(t *testing.T) {
	f := newFixture(t, "mean", 6, []float64{1}, 8)
	ctx := context.Background()

	p1, err := f.env.svc.Judging.GenerateAssignmentPlan(ctx, operator(), f.category.ID, nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	p2, err := f.env.svc.Judging.GenerateAssignmentPlan(ctx, operator(), f.category.ID, nil)
	if err != nil {
		t.Fatalf("plan again: %v", err)
	}
	if !reflect.DeepEqual(p1, p2) {
		t.Fatal("plan is not deterministic for the derived seed")
	}

	seed := int32(42)
	p3, err := f.env.svc.Judging.GenerateAssignmentPlan(ctx, operator(), f.category.ID, &seed)
	if err != nil {
		t.Fatalf("seeded plan: %v", err)
	}
	if p3.Seed != 42 {
		t.Fatalf("seed = %d", p3.Seed)
	}
}

func TestAssignmentPlanCoversAllSubmissions(t *testing.T) {
	f := newFixture(t, "mean", 6, []float64{1}, 8)
	plan, err := f.env.svc.Judging.GenerateAssignmentPlan(context.Background(), operator(), f.category.ID, nil)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}

	seen := map[string]int{}
	for _, pt := range plan.Tables {
		for _, id := range pt.SubmissionIDs {
			seen[id]++
		}
		for seatNum, seq := range pt.SeatSequences {
			if len(seq) != len(pt.SubmissionIDs) {
				t.Fatalf("seat %d sequence length %d, want %d", seatNum, len(seq), len(pt.SubmissionIDs))
			}
		}
	}
	if len(seen) != len(f.subs) {
		t.Fatalf("plan covers %d submissions, want %d", len(seen), len(f.subs))
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("submission %s assigned %d times", id, n)
		}
	}
}

func TestNextForSeatWalksSequence(t *testing.T) {
	f := newFixture(t, "mean", 2, []float64{1}, 3)
	ctx := context.Background()
	seat := f.seats[0]
	principal := seatFor(seat, f.event.ID)

	// Appearance phase walks creation order.
	next, err := f.env.svc.Judging.NextForSeat(ctx, principal, f.category.ID, f.table.ID, seat.ID, models.PhaseAppearance)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next.Done || next.SubmissionID != f.subs[0].ID {
		t.Fatalf("next = %+v, want first submission", next)
	}

	// Scoring the first submission advances the pointer.
	f.score(t, 0, f.subs[0], f.criteria[0], 5)
	// f.score writes taste_texture, so appearance still points at subs[0].
	next, _ = f.env.svc.Judging.NextForSeat(ctx, principal, f.category.ID, f.table.ID, seat.ID, models.PhaseAppearance)
	if next.SubmissionID != f.subs[0].ID {
		t.Fatalf("appearance pointer moved on a taste_texture score: %+v", next)
	}
	next, _ = f.env.svc.Judging.NextForSeat(ctx, principal, f.category.ID, f.table.ID, seat.ID, models.PhaseTasteTexture)
	if next.SubmissionID == f.subs[0].ID {
		t.Fatal("taste_texture pointer did not advance past the scored submission")
	}
}

func TestNextForSeatDoneWhenAllScored(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 2)
	ctx := context.Background()
	seat := f.seats[0]
	principal := seatFor(seat, f.event.ID)

	for _, sub := range f.subs {
		f.score(t, 0, sub, f.criteria[0], 5)
	}
	next, err := f.env.svc.Judging.NextForSeat(ctx, principal, f.category.ID, f.table.ID, seat.ID, models.PhaseTasteTexture)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !next.Done {
		t.Fatalf("next = %+v, want done", next)
	}
}

func TestNextForSeatRejectsForeignSeatToken(t *testing.T) {
	f := newFixture(t, "mean", 2, []float64{1}, 1)
	principal := seatFor(f.seats[0], f.event.ID)

	_, err := f.env.svc.Judging.NextForSeat(context.Background(), principal, f.category.ID, f.table.ID, f.seats[1].ID, models.PhaseAppearance)
	if got := codeOf(t, err); got != apperr.CodeForbidden {
		t.Fatalf("code = %s, want FORBIDDEN", got)
	}
}

func TestLoginAndSeatToken(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	ctx := context.Background()

	if _, err := f.env.svc.Users.Bootstrap(ctx, "admin", "changeme-now"); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	if _, err := f.env.svc.Auth.Login(ctx, LoginRequest{Username: "admin", Password: "wrong-password"}); apperr.CodeOf(err) != apperr.CodeInvalidCredentials {
		t.Fatalf("wrong password: %v", err)
	}
	resp, err := f.env.svc.Auth.Login(ctx, LoginRequest{Username: "admin", Password: "changeme-now"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.User.Role != models.RoleAdmin {
		t.Fatalf("login response = %+v", resp)
	}

	// Seat token from the table's QR credential.
	seatResp, err := f.env.svc.Auth.SeatToken(ctx, SeatTokenRequest{QRToken: f.table.QRToken, SeatNumber: 1})
	if err != nil {
		t.Fatalf("seat token: %v", err)
	}
	if seatResp.SeatID != f.seats[0].ID || seatResp.EventID != f.event.ID {
		t.Fatalf("seat token response = %+v", seatResp)
	}

	// Unknown QR token.
	bad := make([]byte, 64)
	for i := range bad {
		bad[i] = 'a'
	}
	if _, err := f.env.svc.Auth.SeatToken(ctx, SeatTokenRequest{QRToken: string(bad), SeatNumber: 1}); apperr.CodeOf(err) != apperr.CodeInvalidQRToken {
		t.Fatalf("unknown qr: %v", err)
	}
}

func TestVerifyBarcodeFlow(t *testing.T) {
	f := newFixture(t, "mean", 1, []float64{1}, 1)
	ctx := context.Background()
	team := f.teams[0]

	res, err := f.env.svc.Teams.VerifyBarcode(ctx, operator(), VerifyBarcodeRequest{Payload: team.BarcodePayload})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Valid || res.Team == nil || res.Team.ID != team.ID {
		t.Fatalf("verification = %+v", res)
	}

	// Wrong event.
	other := mustCreateEvent(t, f.env, "mean")
	res, err = f.env.svc.Teams.VerifyBarcode(ctx, operator(), VerifyBarcodeRequest{Payload: team.BarcodePayload, EventID: other.ID})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Valid {
		t.Fatal("cross-event barcode accepted")
	}

	// Tampered payload.
	tampered := team.BarcodePayload[:len(team.BarcodePayload)-1] + "0"
	if tampered == team.BarcodePayload {
		tampered = team.BarcodePayload[:len(team.BarcodePayload)-1] + "1"
	}
	res, err = f.env.svc.Teams.VerifyBarcode(ctx, operator(), VerifyBarcodeRequest{Payload: tampered})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Valid {
		t.Fatal("tampered barcode accepted")
	}

	// Invalidation re-mints the payload; the old one stops resolving.
	updated, err := f.env.svc.Teams.InvalidateCode(ctx, operator(), team.ID)
	if err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if updated.BarcodePayload == team.BarcodePayload || updated.CodeInvalidatedAt == nil {
		t.Fatalf("invalidate did not re-mint: %+v", updated)
	}
	res, err = f.env.svc.Teams.VerifyBarcode(ctx, operator(), VerifyBarcodeRequest{Payload: team.BarcodePayload})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if res.Valid {
		t.Fatal("invalidated barcode accepted")
	}
	res, err = f.env.svc.Teams.VerifyBarcode(ctx, operator(), VerifyBarcodeRequest{Payload: updated.BarcodePayload})
	if err != nil || !res.Valid {
		t.Fatalf("re-minted barcode rejected: %+v %v", res, err)
	}
}
