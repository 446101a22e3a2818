// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package statemachine governs the Event and Submission lifecycles. Every
// transition is forward-only and adjacent-only; any other request fails
// with an InvalidStatusTransition error and leaves the row unchanged.
package statemachine

import (
	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

var eventOrder = []models.EventStatus{
	models.EventDraft, models.EventActive, models.EventFinalized, models.EventArchived,
}

var submissionOrder = []models.SubmissionStatus{
	models.SubmissionPending, models.SubmissionTurnedIn, models.SubmissionBeingJudged,
	models.SubmissionScored, models.SubmissionFinalized,
}

func indexOf[T comparable](order []T, v T) int {
	for i, o := range order {
		if o == v {
			return i
		}
	}
	return -1
}

// NextEventStatus validates that from -> to is the single legal next step
// in draft -> active -> finalized -> archived, with no skips and no
// backward moves.
func NextEventStatus(from, to models.EventStatus) (models.EventStatus, error) {
	fi := indexOf(eventOrder, from)
	ti := indexOf(eventOrder, to)
	if fi == -1 || ti == -1 || ti != fi+1 {
		return from, apperr.InvalidStatusTransition(
			"cannot transition event from " + string(from) + " to " + string(to))
	}
	return to, nil
}

// NextSubmissionStatus validates that from -> to is the single legal next
// step in pending -> turned_in -> being_judged -> scored -> finalized.
func NextSubmissionStatus(from, to models.SubmissionStatus) (models.SubmissionStatus, error) {
	fi := indexOf(submissionOrder, from)
	ti := indexOf(submissionOrder, to)
	if fi == -1 || ti == -1 || ti != fi+1 {
		return from, apperr.InvalidStatusTransition(
			"cannot transition submission from " + string(from) + " to " + string(to))
	}
	return to, nil
}

// ReachableEventStatuses returns the transitive closure of legal
// transitions starting from (but not including) from.
func ReachableEventStatuses(from models.EventStatus) []models.EventStatus {
	fi := indexOf(eventOrder, from)
	if fi == -1 {
		return nil
	}
	return append([]models.EventStatus(nil), eventOrder[fi+1:]...)
}

// ReachableSubmissionStatuses returns the transitive closure of legal
// transitions starting from (but not including) from.
func ReachableSubmissionStatuses(from models.SubmissionStatus) []models.SubmissionStatus {
	fi := indexOf(submissionOrder, from)
	if fi == -1 {
		return nil
	}
	return append([]models.SubmissionStatus(nil), submissionOrder[fi+1:]...)
}
