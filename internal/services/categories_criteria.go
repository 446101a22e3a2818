// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// CategoryService manages the meat classes of an event.
type CategoryService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateCategoryRequest carries the fields of a new category.
type CreateCategoryRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=100"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

// UpdateCategoryRequest carries a partial category update.
type UpdateCategoryRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=100"`
	SortOrder *int    `json:"sort_order" validate:"omitempty,gte=0"`
}

func (s *CategoryService) Create(ctx context.Context, actor authz.Principal, eventID string, req CreateCategoryRequest) (*models.Category, error) {
	if err := s.authz.Require(actor, authz.ResCategories, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &models.Category{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      req.Name,
		SortOrder: req.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "category", c.ID, eventID, nil, c)
	return c, nil
}

// BulkCreate is all-or-nothing at request scope: request-level duplicate
// names are rejected first, then pre-existing live conflicts, then rows
// are written.
func (s *CategoryService) BulkCreate(ctx context.Context, actor authz.Principal, eventID string, items []CreateCategoryRequest) ([]models.Category, error) {
	if err := s.authz.Require(actor, authz.ResCategories, authz.ActWrite); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.Validation("items must not be empty")
	}
	seen := map[string]bool{}
	for _, item := range items {
		if verr := validation.ValidateStruct(item); verr != nil {
			return nil, verr
		}
		if seen[item.Name] {
			return nil, apperr.Conflict(fmt.Sprintf("duplicate category name %q in request", item.Name))
		}
		seen[item.Name] = true
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}
	existing, err := s.repos.Categories.ListByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if seen[c.Name] {
			return nil, apperr.Conflict(fmt.Sprintf("category name %q already in use", c.Name))
		}
	}

	out := make([]models.Category, 0, len(items))
	for _, item := range items {
		c, err := s.Create(ctx, actor, eventID, item)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *CategoryService) Get(ctx context.Context, actor authz.Principal, id string, withDeleted bool) (*models.Category, error) {
	if err := s.authz.Require(actor, authz.ResCategories, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Categories.Get(ctx, id, includeDeleted(actor, withDeleted))
}

func (s *CategoryService) ListByEvent(ctx context.Context, actor authz.Principal, eventID string, withDeleted bool) ([]models.Category, error) {
	if err := s.authz.Require(actor, authz.ResCategories, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Categories.ListByEvent(ctx, eventID, includeDeleted(actor, withDeleted))
}

func (s *CategoryService) Update(ctx context.Context, actor authz.Principal, id string, req UpdateCategoryRequest) (*models.Category, error) {
	if err := s.authz.Require(actor, authz.ResCategories, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	c, err := s.repos.Categories.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *c
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repos.Categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "category", c.ID, c.EventID, &old, c)
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResCategories, authz.ActWrite); err != nil {
		return err
	}
	c, err := s.repos.Categories.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.repos.Categories.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "category", id, c.EventID, c, nil)
	return nil
}

// CriterionService manages the scoring dimensions of an event.
type CriterionService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateCriterionRequest carries the fields of a new criterion. An omitted
// Weight defaults to 1.0; an explicit 0 is kept.
type CreateCriterionRequest struct {
	Name      string   `json:"name" validate:"required,min=1,max=100"`
	Weight    *float64 `json:"weight" validate:"omitempty,gte=0"`
	SortOrder int      `json:"sort_order" validate:"gte=0"`
}

// UpdateCriterionRequest carries a partial criterion update.
type UpdateCriterionRequest struct {
	Name      *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Weight    *float64 `json:"weight" validate:"omitempty,gte=0"`
	SortOrder *int     `json:"sort_order" validate:"omitempty,gte=0"`
}

func (s *CriterionService) Create(ctx context.Context, actor authz.Principal, eventID string, req CreateCriterionRequest) (*models.Criterion, error) {
	if err := s.authz.Require(actor, authz.ResCriteria, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}

	weight := 1.0
	if req.Weight != nil {
		weight = *req.Weight
	}
	now := time.Now().UTC()
	c := &models.Criterion{
		ID:        uuid.New().String(),
		EventID:   eventID,
		Name:      req.Name,
		Weight:    weight,
		SortOrder: req.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repos.Criteria.Create(ctx, c); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "criterion", c.ID, eventID, nil, c)
	return c, nil
}

// BulkCreate mirrors CategoryService.BulkCreate.
func (s *CriterionService) BulkCreate(ctx context.Context, actor authz.Principal, eventID string, items []CreateCriterionRequest) ([]models.Criterion, error) {
	if err := s.authz.Require(actor, authz.ResCriteria, authz.ActWrite); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.Validation("items must not be empty")
	}
	seen := map[string]bool{}
	for _, item := range items {
		if verr := validation.ValidateStruct(item); verr != nil {
			return nil, verr
		}
		if seen[item.Name] {
			return nil, apperr.Conflict(fmt.Sprintf("duplicate criterion name %q in request", item.Name))
		}
		seen[item.Name] = true
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}
	existing, err := s.repos.Criteria.ListByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	for _, c := range existing {
		if seen[c.Name] {
			return nil, apperr.Conflict(fmt.Sprintf("criterion name %q already in use", c.Name))
		}
	}

	out := make([]models.Criterion, 0, len(items))
	for _, item := range items {
		c, err := s.Create(ctx, actor, eventID, item)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *CriterionService) Get(ctx context.Context, actor authz.Principal, id string, withDeleted bool) (*models.Criterion, error) {
	if err := s.authz.Require(actor, authz.ResCriteria, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Criteria.Get(ctx, id, includeDeleted(actor, withDeleted))
}

func (s *CriterionService) ListByEvent(ctx context.Context, actor authz.Principal, eventID string, withDeleted bool) ([]models.Criterion, error) {
	if err := s.authz.Require(actor, authz.ResCriteria, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Criteria.ListByEvent(ctx, eventID, includeDeleted(actor, withDeleted))
}

func (s *CriterionService) Update(ctx context.Context, actor authz.Principal, id string, req UpdateCriterionRequest) (*models.Criterion, error) {
	if err := s.authz.Require(actor, authz.ResCriteria, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	c, err := s.repos.Criteria.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *c
	if req.Name != nil {
		c.Name = *req.Name
	}
	if req.Weight != nil {
		c.Weight = *req.Weight
	}
	if req.SortOrder != nil {
		c.SortOrder = *req.SortOrder
	}
	c.UpdatedAt = time.Now().UTC()
	if err := s.repos.Criteria.Update(ctx, c); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "criterion", c.ID, c.EventID, &old, c)
	return c, nil
}

func (s *CriterionService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResCriteria, authz.ActWrite); err != nil {
		return err
	}
	c, err := s.repos.Criteria.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.repos.Criteria.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "criterion", id, c.EventID, c, nil)
	return nil
}
