// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package statemachine

import (
	"reflect"
	"testing"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

func TestNextEventStatus_LegalChain(t *testing.T) {
	steps := []struct{ from, to models.EventStatus }{
		{models.EventDraft, models.EventActive},
		{models.EventActive, models.EventFinalized},
		{models.EventFinalized, models.EventArchived},
	}
	for _, s := range steps {
		got, err := NextEventStatus(s.from, s.to)
		if err != nil {
			t.Fatalf("%s->%s: unexpected error %v", s.from, s.to, err)
		}
		if got != s.to {
			t.Fatalf("got %s, want %s", got, s.to)
		}
	}
}

func TestNextEventStatus_RejectsSkipsAndBackward(t *testing.T) {
	bad := []struct{ from, to models.EventStatus }{
		{models.EventDraft, models.EventFinalized},
		{models.EventActive, models.EventDraft},
		{models.EventArchived, models.EventDraft},
		{models.EventDraft, models.EventDraft},
	}
	for _, b := range bad {
		_, err := NextEventStatus(b.from, b.to)
		if err == nil {
			t.Fatalf("%s->%s: expected error", b.from, b.to)
		}
		ae, ok := apperr.As(err)
		if !ok || ae.Code != apperr.CodeInvalidStatusTransition {
			t.Fatalf("%s->%s: expected InvalidStatusTransition, got %v", b.from, b.to, err)
		}
	}
}

func TestNextSubmissionStatus_LegalChain(t *testing.T) {
	steps := []struct{ from, to models.SubmissionStatus }{
		{models.SubmissionPending, models.SubmissionTurnedIn},
		{models.SubmissionTurnedIn, models.SubmissionBeingJudged},
		{models.SubmissionBeingJudged, models.SubmissionScored},
		{models.SubmissionScored, models.SubmissionFinalized},
	}
	for _, s := range steps {
		got, err := NextSubmissionStatus(s.from, s.to)
		if err != nil {
			t.Fatalf("%s->%s: unexpected error %v", s.from, s.to, err)
		}
		if got != s.to {
			t.Fatalf("got %s, want %s", got, s.to)
		}
	}
}

func TestNextSubmissionStatus_RejectsSkip(t *testing.T) {
	_, err := NextSubmissionStatus(models.SubmissionPending, models.SubmissionBeingJudged)
	if err == nil {
		t.Fatalf("expected error for skipped transition")
	}
}

func TestReachableSubmissionStatuses_ClosureFromPending(t *testing.T) {
	got := ReachableSubmissionStatuses(models.SubmissionPending)
	want := []models.SubmissionStatus{
		models.SubmissionTurnedIn, models.SubmissionBeingJudged,
		models.SubmissionScored, models.SubmissionFinalized,
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestReachableSubmissionStatuses_EmptyFromFinalized(t *testing.T) {
	got := ReachableSubmissionStatuses(models.SubmissionFinalized)
	if len(got) != 0 {
		t.Fatalf("expected empty closure from finalized, got %v", got)
	}
}
