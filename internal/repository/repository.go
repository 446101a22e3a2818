// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package repository defines storage-facing interfaces for every entity in
// internal/models. internal/services depends only on these interfaces, so
// the persistence engine (internal/database, DuckDB-backed) is swappable
// and can be faked in service-layer tests.
//
// Every Get/List method on a soft-deletable entity takes an includeDeleted
// flag. Callers in internal/services gate that flag on the requesting
// actor being an admin; it is never honored for anyone else.
package repository

import (
	"context"

	"github.com/tomtom215/bbqcomp/internal/models"
)

// EventRepository persists models.Event.
type EventRepository interface {
	Create(ctx context.Context, e *models.Event) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Event, error)
	List(ctx context.Context, includeDeleted bool) ([]models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	SoftDelete(ctx context.Context, id string) error
}

// TableRepository persists models.Table.
type TableRepository interface {
	Create(ctx context.Context, t *models.Table) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Table, error)
	GetByQRToken(ctx context.Context, token string) (*models.Table, error)
	ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Table, error)
	Update(ctx context.Context, t *models.Table) error
	SoftDelete(ctx context.Context, id string) error
}

// SeatRepository persists models.Seat.
type SeatRepository interface {
	Create(ctx context.Context, s *models.Seat) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Seat, error)
	GetByTableAndNumber(ctx context.Context, tableID string, seatNumber int) (*models.Seat, error)
	ListByTable(ctx context.Context, tableID string, includeDeleted bool) ([]models.Seat, error)
	Update(ctx context.Context, s *models.Seat) error
	SoftDelete(ctx context.Context, id string) error
}

// CategoryRepository persists models.Category.
type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Category, error)
	ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	SoftDelete(ctx context.Context, id string) error
}

// CriterionRepository persists models.Criterion.
type CriterionRepository interface {
	Create(ctx context.Context, c *models.Criterion) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Criterion, error)
	ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Criterion, error)
	Update(ctx context.Context, c *models.Criterion) error
	SoftDelete(ctx context.Context, id string) error
}

// TeamRepository persists models.Team.
type TeamRepository interface {
	Create(ctx context.Context, t *models.Team) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Team, error)
	GetByBarcodePayload(ctx context.Context, payload string) (*models.Team, error)
	ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Team, error)
	Update(ctx context.Context, t *models.Team) error
	SoftDelete(ctx context.Context, id string) error
}

// SubmissionRepository persists models.Submission.
type SubmissionRepository interface {
	Create(ctx context.Context, s *models.Submission) error
	Get(ctx context.Context, id string, includeDeleted bool) (*models.Submission, error)
	ListByTeam(ctx context.Context, teamID string, includeDeleted bool) ([]models.Submission, error)
	ListByCategory(ctx context.Context, categoryID string, includeDeleted bool) ([]models.Submission, error)
	Update(ctx context.Context, s *models.Submission) error
	SoftDelete(ctx context.Context, id string) error
}

// ScoreRepository persists models.Score. Scores are never soft-deleted:
// Update changes a score in place and Delete removes the row outright.
type ScoreRepository interface {
	Create(ctx context.Context, s *models.Score) error
	Get(ctx context.Context, id string) (*models.Score, error)
	ListBySubmission(ctx context.Context, submissionID string) ([]models.Score, error)
	ListBySubmissionAndSeat(ctx context.Context, submissionID, seatID string) ([]models.Score, error)
	Update(ctx context.Context, s *models.Score) error
	Delete(ctx context.Context, id string) error
}

// UserRepository persists models.User.
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, u *models.User) error
	SoftDelete(ctx context.Context, id string) error
}
