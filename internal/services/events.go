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

// EventService manages competition events. Creation, field updates, and
// deletion are admin-only; operators may only advance the event status.
type EventService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateEventRequest carries the fields of a new event.
type CreateEventRequest struct {
	Name              string    `json:"name" validate:"required,min=1,max=200"`
	Date              time.Time `json:"date" validate:"required"`
	Location          string    `json:"location" validate:"max=200"`
	ScoringScaleMin   float64   `json:"scoring_scale_min"`
	ScoringScaleMax   float64   `json:"scoring_scale_max"`
	ScoringScaleStep  float64   `json:"scoring_scale_step" validate:"gt=0"`
	AggregationMethod string    `json:"aggregation_method" validate:"required,oneof=mean trimmed_mean"`
}

// UpdateEventRequest carries a partial update; nil fields are unchanged.
type UpdateEventRequest struct {
	Name              *string    `json:"name" validate:"omitempty,min=1,max=200"`
	Date              *time.Time `json:"date"`
	Location          *string    `json:"location" validate:"omitempty,max=200"`
	ScoringScaleMin   *float64   `json:"scoring_scale_min"`
	ScoringScaleMax   *float64   `json:"scoring_scale_max"`
	ScoringScaleStep  *float64   `json:"scoring_scale_step" validate:"omitempty,gt=0"`
	AggregationMethod *string    `json:"aggregation_method" validate:"omitempty,oneof=mean trimmed_mean"`
}

func (s *EventService) Create(ctx context.Context, actor authz.Principal, req CreateEventRequest) (*models.Event, error) {
	if err := s.authz.Require(actor, authz.ResEvents, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if req.ScoringScaleMin >= req.ScoringScaleMax {
		return nil, apperr.Validation("scoring_scale_min must be less than scoring_scale_max")
	}

	now := time.Now().UTC()
	e := &models.Event{
		ID:                uuid.New().String(),
		Name:              req.Name,
		Date:              req.Date,
		Location:          req.Location,
		Status:            models.EventDraft,
		ScoringScaleMin:   req.ScoringScaleMin,
		ScoringScaleMax:   req.ScoringScaleMax,
		ScoringScaleStep:  req.ScoringScaleStep,
		AggregationMethod: models.AggregationMethod(req.AggregationMethod),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repos.Events.Create(ctx, e); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "event", e.ID, e.ID, nil, e)
	return e, nil
}

func (s *EventService) Get(ctx context.Context, actor authz.Principal, id string, withDeleted bool) (*models.Event, error) {
	if err := s.authz.Require(actor, authz.ResEvents, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Events.Get(ctx, id, includeDeleted(actor, withDeleted))
}

func (s *EventService) List(ctx context.Context, actor authz.Principal, withDeleted bool) ([]models.Event, error) {
	if err := s.authz.Require(actor, authz.ResEvents, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Events.List(ctx, includeDeleted(actor, withDeleted))
}

func (s *EventService) Update(ctx context.Context, actor authz.Principal, id string, req UpdateEventRequest) (*models.Event, error) {
	if err := s.authz.Require(actor, authz.ResEvents, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	e, err := s.repos.Events.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *e

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Date != nil {
		e.Date = *req.Date
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.ScoringScaleMin != nil {
		e.ScoringScaleMin = *req.ScoringScaleMin
	}
	if req.ScoringScaleMax != nil {
		e.ScoringScaleMax = *req.ScoringScaleMax
	}
	if req.ScoringScaleStep != nil {
		e.ScoringScaleStep = *req.ScoringScaleStep
	}
	if req.AggregationMethod != nil {
		e.AggregationMethod = models.AggregationMethod(*req.AggregationMethod)
	}
	if e.ScoringScaleMin >= e.ScoringScaleMax {
		return nil, apperr.Validation("scoring_scale_min must be less than scoring_scale_max")
	}
	e.UpdatedAt = time.Now().UTC()

	if err := s.repos.Events.Update(ctx, e); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "event", e.ID, e.ID, &old, e)
	return e, nil
}

// UpdateStatus advances the event through its lifecycle. This is the only
// event write an operator may perform; any non-adjacent transition fails
// and leaves the row unchanged.
func (s *EventService) UpdateStatus(ctx context.Context, actor authz.Principal, id string, to models.EventStatus) (*models.Event, error) {
	if err := s.authz.Require(actor, authz.ResEvents, authz.ActStatusUpdate); err != nil {
		return nil, err
	}

	e, err := s.repos.Events.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *e

	next, err := statemachine.NextEventStatus(e.Status, to)
	if err != nil {
		return nil, err
	}
	e.Status = next
	e.UpdatedAt = time.Now().UTC()

	if err := s.repos.Events.Update(ctx, e); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionStatusChanged, "event", e.ID, e.ID, &old, e)
	return e, nil
}

// Delete soft-deletes an event. Children are untouched: soft-delete never
// cascades, and the admin include_deleted flag can still reach them.
func (s *EventService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResEvents, authz.ActWrite); err != nil {
		return err
	}
	e, err := s.repos.Events.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.repos.Events.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "event", id, id, e, nil)
	return nil
}
