// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"fmt"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/seating"
)

// defaultSeatCount is assumed for tables with no configured seats.
const defaultSeatCount = 6

// JudgingService orchestrates the seat sequencer over live submissions,
// tables, seats, and existing scores.
type JudgingService struct {
	repos Repos
	authz *authz.Enforcer
}

// PlanTable is one table's slice of an assignment plan, with real ids in
// place of the sequencer's local numbering.
type PlanTable struct {
	TableID       string           `json:"table_id"`
	TableNumber   int              `json:"table_number"`
	SubmissionIDs []string         `json:"submission_ids"`
	SeatSequences map[int][]string `json:"seat_sequences"`
}

// AssignmentPlan is the pure view returned by GenerateAssignmentPlan. It
// is never persisted; regenerating with the same seed reproduces it
// bit-for-bit.
type AssignmentPlan struct {
	CategoryID string      `json:"category_id"`
	Seed       int32       `json:"seed"`
	Tables     []PlanTable `json:"tables"`
}

// NextSubmission is the answer to "which sample does this seat judge
// now". Done is true when the seat has scored every submission in its
// sequence for the phase.
type NextSubmission struct {
	SubmissionID string `json:"submission_id,omitempty"`
	Position     int    `json:"position,omitempty"`
	Done         bool   `json:"done"`
}

// GenerateAssignmentPlan shuffles the category's live submissions with
// the provided or derived seed, distributes them round-robin across the
// event's live tables, and computes every seat's passing sequence.
func (s *JudgingService) GenerateAssignmentPlan(ctx context.Context, actor authz.Principal, categoryID string, seed *int32) (*AssignmentPlan, error) {
	if err := s.authz.Require(actor, authz.ResAssignmentPlan, authz.ActRead); err != nil {
		return nil, err
	}
	category, err := s.repos.Categories.Get(ctx, categoryID, false)
	if err != nil {
		return nil, err
	}
	tables, err := s.repos.Tables.ListByEvent(ctx, category.EventID, false)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, apperr.Validation("event has no tables to assign submissions to")
	}
	subs, err := s.repos.Submissions.ListByCategory(ctx, categoryID, false)
	if err != nil {
		return nil, err
	}

	planSeed := seating.SeedFromKey(category.EventID + ":" + categoryID)
	if seed != nil {
		planSeed = *seed
	}

	subIDs := make([]string, len(subs))
	for i, sub := range subs {
		subIDs[i] = sub.ID
	}
	seatCounts := make(map[int]int, len(tables))
	for i, t := range tables {
		seats, err := s.repos.Seats.ListByTable(ctx, t.ID, false)
		if err != nil {
			return nil, err
		}
		if len(seats) > 0 {
			seatCounts[i] = len(seats)
		}
	}

	assignments, err := seating.BuildAssignmentPlan(subIDs, planSeed, len(tables), seatCounts)
	if err != nil {
		return nil, err
	}

	plan := &AssignmentPlan{CategoryID: categoryID, Seed: planSeed}
	for _, a := range assignments {
		t := tables[a.TableIndex]
		pt := PlanTable{
			TableID:       t.ID,
			TableNumber:   t.TableNumber,
			SubmissionIDs: a.SubmissionIDs,
			SeatSequences: make(map[int][]string, len(a.SeatSequences)),
		}
		for seatNum, seq := range a.SeatSequences {
			ids := make([]string, 0, len(seq))
			for _, local := range seq {
				ids = append(ids, a.SubmissionIDs[local-1])
			}
			pt.SeatSequences[seatNum] = ids
		}
		plan.Tables = append(plan.Tables, pt)
	}
	return plan, nil
}

// NextForSeat finds the first submission in the seat's sequence that this
// seat has not yet scored for the phase. The appearance phase walks
// submissions in creation order; the taste_texture phase walks the seat's
// passing-order permutation over that same creation-order list.
func (s *JudgingService) NextForSeat(ctx context.Context, actor authz.Principal, categoryID, tableID, seatID string, phase models.ScorePhase) (*NextSubmission, error) {
	if err := s.authz.Require(actor, authz.ResJudging, authz.ActRead); err != nil {
		return nil, err
	}
	// A seat token only speaks for its own seat.
	if actor.IsSeat() && actor.SeatID != seatID {
		return nil, apperr.Forbidden("seat token does not match requested seat")
	}
	if phase != models.PhaseAppearance && phase != models.PhaseTasteTexture {
		return nil, apperr.Validation(fmt.Sprintf("unknown phase %q", phase))
	}

	seat, err := s.repos.Seats.Get(ctx, seatID, false)
	if err != nil {
		return nil, err
	}
	if seat.TableID != tableID {
		return nil, apperr.Validation("seat does not belong to the given table")
	}
	if _, err := s.repos.Categories.Get(ctx, categoryID, false); err != nil {
		return nil, err
	}
	subs, err := s.repos.Submissions.ListByCategory(ctx, categoryID, false)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return &NextSubmission{Done: true}, nil
	}

	sequence := make([]string, 0, len(subs))
	if phase == models.PhaseAppearance {
		for _, sub := range subs {
			sequence = append(sequence, sub.ID)
		}
	} else {
		seats, err := s.repos.Seats.ListByTable(ctx, tableID, false)
		if err != nil {
			return nil, err
		}
		seatCount := len(seats)
		if seatCount == 0 {
			seatCount = defaultSeatCount
		}
		seq, err := seating.GenerateSeatSequence(seat.SeatNumber, len(subs), seatCount)
		if err != nil {
			return nil, apperr.Validation(err.Error())
		}
		for _, local := range seq {
			sequence = append(sequence, subs[local-1].ID)
		}
	}

	for i, subID := range sequence {
		scores, err := s.repos.Scores.ListBySubmissionAndSeat(ctx, subID, seatID)
		if err != nil {
			return nil, err
		}
		scored := false
		for _, sc := range scores {
			if sc.Phase == phase {
				scored = true
				break
			}
		}
		if !scored {
			return &NextSubmission{SubmissionID: subID, Position: i + 1}, nil
		}
	}
	return &NextSubmission{Done: true}, nil
}
