// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/statemachine"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// SubmissionService manages team entries and drives their status machine.
type SubmissionService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateSubmissionRequest names the (team, category) pair being entered.
type CreateSubmissionRequest struct {
	TeamID     string `json:"team_id" validate:"required,uuid"`
	CategoryID string `json:"category_id" validate:"required,uuid"`
}

func (s *SubmissionService) Create(ctx context.Context, actor authz.Principal, req CreateSubmissionRequest) (*models.Submission, error) {
	if err := s.authz.Require(actor, authz.ResSubmissions, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	team, err := s.repos.Teams.Get(ctx, req.TeamID, false)
	if err != nil {
		return nil, err
	}
	category, err := s.repos.Categories.Get(ctx, req.CategoryID, false)
	if err != nil {
		return nil, err
	}
	if team.EventID != category.EventID {
		return nil, apperr.Conflict("team and category belong to different events")
	}

	now := time.Now().UTC()
	sub := &models.Submission{
		ID:         uuid.New().String(),
		TeamID:     req.TeamID,
		CategoryID: req.CategoryID,
		Status:     models.SubmissionPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repos.Submissions.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "submission", sub.ID, team.EventID, nil, sub)
	return sub, nil
}

func (s *SubmissionService) Get(ctx context.Context, actor authz.Principal, id string, withDeleted bool) (*models.Submission, error) {
	if err := s.authz.Require(actor, authz.ResSubmissions, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Submissions.Get(ctx, id, includeDeleted(actor, withDeleted))
}

func (s *SubmissionService) ListByCategory(ctx context.Context, actor authz.Principal, categoryID string, withDeleted bool) ([]models.Submission, error) {
	if err := s.authz.Require(actor, authz.ResSubmissions, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Submissions.ListByCategory(ctx, categoryID, includeDeleted(actor, withDeleted))
}

func (s *SubmissionService) ListByTeam(ctx context.Context, actor authz.Principal, teamID string, withDeleted bool) ([]models.Submission, error) {
	if err := s.authz.Require(actor, authz.ResSubmissions, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Submissions.ListByTeam(ctx, teamID, includeDeleted(actor, withDeleted))
}

// UpdateStatus advances a submission one step through its lifecycle. The
// turned_in transition also stamps turned_in_at.
func (s *SubmissionService) UpdateStatus(ctx context.Context, actor authz.Principal, id string, to models.SubmissionStatus) (*models.Submission, error) {
	if err := s.authz.Require(actor, authz.ResSubmissions, authz.ActStatusUpdate); err != nil {
		return nil, err
	}

	sub, err := s.repos.Submissions.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *sub

	next, err := statemachine.NextSubmissionStatus(sub.Status, to)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sub.Status = next
	if next == models.SubmissionTurnedIn {
		sub.TurnedInAt = &now
	}
	sub.UpdatedAt = now

	if err := s.repos.Submissions.Update(ctx, sub); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionStatusChanged, "submission", sub.ID, s.eventIDOf(ctx, sub), &old, sub)
	return sub, nil
}

func (s *SubmissionService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResSubmissions, authz.ActWrite); err != nil {
		return err
	}
	sub, err := s.repos.Submissions.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.repos.Submissions.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "submission", id, s.eventIDOf(ctx, sub), sub, nil)
	return nil
}

// eventIDOf resolves the owning event through the team, for audit rows.
// Best-effort: a lookup failure just leaves the audit row's event blank.
func (s *SubmissionService) eventIDOf(ctx context.Context, sub *models.Submission) string {
	team, err := s.repos.Teams.Get(ctx, sub.TeamID, true)
	if err != nil {
		return ""
	}
	return team.EventID
}
