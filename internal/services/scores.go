// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// stepTolerance is how far (value-min)/step may sit from an integer
// before the value is rejected as off-grid.
const stepTolerance = 1e-4

// ScoreService manages per-judge score rows. Seats may only write under
// their own seat id; admins may write for any seat and are the only
// principal allowed to hard-delete.
type ScoreService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateScoreRequest carries one judge rating. SeatID is ignored for seat
// principals, which always score as themselves.
type CreateScoreRequest struct {
	SubmissionID string  `json:"submission_id" validate:"required,uuid"`
	CriterionID  string  `json:"criterion_id" validate:"required,uuid"`
	SeatID       string  `json:"seat_id" validate:"omitempty,uuid"`
	ScoreValue   float64 `json:"score_value"`
	Comment      string  `json:"comment" validate:"max=1000"`
	Phase        string  `json:"phase" validate:"required,oneof=appearance taste_texture"`
}

// UpdateScoreRequest carries a partial score update.
type UpdateScoreRequest struct {
	ScoreValue *float64 `json:"score_value"`
	Comment    *string  `json:"comment" validate:"omitempty,max=1000"`
}

// scorableStatuses are the submission states that accept new scores.
var scorableStatuses = map[models.SubmissionStatus]bool{
	models.SubmissionTurnedIn:    true,
	models.SubmissionBeingJudged: true,
	models.SubmissionScored:      true,
}

func (s *ScoreService) Create(ctx context.Context, actor authz.Principal, req CreateScoreRequest) (*models.Score, error) {
	if err := s.authz.Require(actor, authz.ResScores, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	seatID := req.SeatID
	if actor.IsSeat() {
		seatID = actor.SeatID
	}
	if seatID == "" {
		return nil, apperr.Validation("seat_id is required")
	}
	if _, err := s.repos.Seats.Get(ctx, seatID, false); err != nil {
		return nil, err
	}

	sub, err := s.repos.Submissions.Get(ctx, req.SubmissionID, false)
	if err != nil {
		return nil, err
	}
	if !scorableStatuses[sub.Status] {
		return nil, apperr.InvalidStatusTransition(
			fmt.Sprintf("submission in status %s cannot be scored", sub.Status))
	}

	criterion, err := s.repos.Criteria.Get(ctx, req.CriterionID, false)
	if err != nil {
		return nil, err
	}
	event, err := s.repos.Events.Get(ctx, criterion.EventID, false)
	if err != nil {
		return nil, err
	}
	if err := validateScoreValue(req.ScoreValue, event); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	score := &models.Score{
		ID:           uuid.New().String(),
		SubmissionID: req.SubmissionID,
		SeatID:       seatID,
		CriterionID:  req.CriterionID,
		ScoreValue:   req.ScoreValue,
		Comment:      req.Comment,
		Phase:        models.ScorePhase(req.Phase),
		SubmittedAt:  now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repos.Scores.Create(ctx, score); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "score", score.ID, event.ID, nil, score)
	return score, nil
}

func (s *ScoreService) Get(ctx context.Context, actor authz.Principal, id string) (*models.Score, error) {
	if err := s.authz.Require(actor, authz.ResScores, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Scores.Get(ctx, id)
}

func (s *ScoreService) ListBySubmission(ctx context.Context, actor authz.Principal, submissionID string) ([]models.Score, error) {
	if err := s.authz.Require(actor, authz.ResScores, authz.ActRead); err != nil {
		return nil, err
	}
	if actor.IsSeat() {
		return s.repos.Scores.ListBySubmissionAndSeat(ctx, submissionID, actor.SeatID)
	}
	return s.repos.Scores.ListBySubmission(ctx, submissionID)
}

// Update modifies a score's value or comment. Only the originating seat
// or an admin may edit; operators get FORBIDDEN like any other seat.
func (s *ScoreService) Update(ctx context.Context, actor authz.Principal, id string, req UpdateScoreRequest) (*models.Score, error) {
	if err := s.authz.Require(actor, authz.ResScores, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	score, err := s.repos.Scores.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !(actor.IsSeat() && actor.SeatID == score.SeatID) {
		return nil, apperr.Forbidden("only the originating seat or an admin may edit a score")
	}
	old := *score

	eventID := ""
	if req.ScoreValue != nil {
		criterion, err := s.repos.Criteria.Get(ctx, score.CriterionID, true)
		if err != nil {
			return nil, err
		}
		event, err := s.repos.Events.Get(ctx, criterion.EventID, false)
		if err != nil {
			return nil, err
		}
		if err := validateScoreValue(*req.ScoreValue, event); err != nil {
			return nil, err
		}
		score.ScoreValue = *req.ScoreValue
		eventID = event.ID
	}
	if req.Comment != nil {
		score.Comment = *req.Comment
	}
	score.UpdatedAt = time.Now().UTC()

	if err := s.repos.Scores.Update(ctx, score); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "score", score.ID, eventID, &old, score)
	return score, nil
}

// Delete hard-deletes a score row. Admin only; there is no soft delete
// for scores.
func (s *ScoreService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResScores, authz.ActHardDelete); err != nil {
		return err
	}
	score, err := s.repos.Scores.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.Scores.Delete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "score", id, "", score, nil)
	return nil
}

// validateScoreValue enforces the owning event's scale: within [min,max]
// and aligned to the step grid within stepTolerance.
func validateScoreValue(value float64, event *models.Event) error {
	if value < event.ScoringScaleMin || value > event.ScoringScaleMax {
		return apperr.Validation(fmt.Sprintf(
			"score_value %g outside scale [%g, %g]", value, event.ScoringScaleMin, event.ScoringScaleMax))
	}
	steps := (value - event.ScoringScaleMin) / event.ScoringScaleStep
	if math.Abs(steps-math.Round(steps)) > stepTolerance {
		return apperr.Validation(fmt.Sprintf(
			"score_value %g is not aligned to step %g", value, event.ScoringScaleStep))
	}
	return nil
}
