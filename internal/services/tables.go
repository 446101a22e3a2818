// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// TableService manages judging tables and their QR tokens. A table's QR
// code is the credential judges use to mint seat tokens, so minting and
// regeneration are restricted to console users.
type TableService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateTableRequest carries the fields of a new table.
type CreateTableRequest struct {
	TableNumber int `json:"table_number" validate:"required,gt=0"`
}

// UpdateTableRequest carries a partial table update.
type UpdateTableRequest struct {
	TableNumber *int `json:"table_number" validate:"omitempty,gt=0"`
}

// newQRToken mints 32 random bytes hex-encoded (64 chars).
func newQRToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("mint qr token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *TableService) Create(ctx context.Context, actor authz.Principal, eventID string, req CreateTableRequest) (*models.Table, error) {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}

	token, err := newQRToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	t := &models.Table{
		ID:          uuid.New().String(),
		EventID:     eventID,
		TableNumber: req.TableNumber,
		QRToken:     token,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repos.Tables.Create(ctx, t); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "table", t.ID, eventID, nil, t)
	return t, nil
}

// BulkCreate creates several tables in one request. Duplicate table
// numbers inside the request, or against existing live tables, fail the
// whole request before anything is written.
func (s *TableService) BulkCreate(ctx context.Context, actor authz.Principal, eventID string, items []CreateTableRequest) ([]models.Table, error) {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActWrite); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperr.Validation("items must not be empty")
	}
	seen := map[int]bool{}
	for _, item := range items {
		if verr := validation.ValidateStruct(item); verr != nil {
			return nil, verr
		}
		if seen[item.TableNumber] {
			return nil, apperr.Conflict(fmt.Sprintf("duplicate table number %d in request", item.TableNumber))
		}
		seen[item.TableNumber] = true
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}
	existing, err := s.repos.Tables.ListByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if seen[t.TableNumber] {
			return nil, apperr.Conflict(fmt.Sprintf("table number %d already in use", t.TableNumber))
		}
	}

	out := make([]models.Table, 0, len(items))
	for _, item := range items {
		t, err := s.Create(ctx, actor, eventID, item)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *TableService) Get(ctx context.Context, actor authz.Principal, id string, withDeleted bool) (*models.Table, error) {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Tables.Get(ctx, id, includeDeleted(actor, withDeleted))
}

func (s *TableService) ListByEvent(ctx context.Context, actor authz.Principal, eventID string, withDeleted bool) ([]models.Table, error) {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Tables.ListByEvent(ctx, eventID, includeDeleted(actor, withDeleted))
}

func (s *TableService) Update(ctx context.Context, actor authz.Principal, id string, req UpdateTableRequest) (*models.Table, error) {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	t, err := s.repos.Tables.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *t
	if req.TableNumber != nil && *req.TableNumber != t.TableNumber {
		existing, err := s.repos.Tables.ListByEvent(ctx, t.EventID, false)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.ID != t.ID && other.TableNumber == *req.TableNumber {
				return nil, apperr.Conflict(fmt.Sprintf("table number %d already in use", *req.TableNumber))
			}
		}
		t.TableNumber = *req.TableNumber
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.repos.Tables.Update(ctx, t); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "table", t.ID, t.EventID, &old, t)
	return t, nil
}

// RegenerateToken mints a fresh QR token. The old token can no longer
// mint seat tokens; seat tokens already issued from it stay valid until
// they expire.
func (s *TableService) RegenerateToken(ctx context.Context, actor authz.Principal, id string) (*models.Table, error) {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActWrite); err != nil {
		return nil, err
	}
	t, err := s.repos.Tables.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *t
	token, err := newQRToken()
	if err != nil {
		return nil, err
	}
	t.QRToken = token
	t.UpdatedAt = time.Now().UTC()
	if err := s.repos.Tables.Update(ctx, t); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "table", t.ID, t.EventID, &old, t)
	return t, nil
}

func (s *TableService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResTables, authz.ActWrite); err != nil {
		return err
	}
	t, err := s.repos.Tables.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.repos.Tables.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "table", id, t.EventID, t, nil)
	return nil
}

// SeatService manages the judge positions at a table.
type SeatService struct {
	repos Repos
	authz *authz.Enforcer
	rec   *recorder
}

// CreateSeatRequest carries the fields of a new seat.
type CreateSeatRequest struct {
	SeatNumber int `json:"seat_number" validate:"required,gt=0"`
}

func (s *SeatService) Create(ctx context.Context, actor authz.Principal, tableID string, req CreateSeatRequest) (*models.Seat, error) {
	if err := s.authz.Require(actor, authz.ResSeats, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	t, err := s.repos.Tables.Get(ctx, tableID, false)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	seat := &models.Seat{
		ID:         uuid.New().String(),
		TableID:    tableID,
		SeatNumber: req.SeatNumber,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repos.Seats.Create(ctx, seat); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "seat", seat.ID, t.EventID, nil, seat)
	return seat, nil
}

func (s *SeatService) ListByTable(ctx context.Context, actor authz.Principal, tableID string, withDeleted bool) ([]models.Seat, error) {
	if err := s.authz.Require(actor, authz.ResSeats, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Seats.ListByTable(ctx, tableID, includeDeleted(actor, withDeleted))
}

func (s *SeatService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResSeats, authz.ActWrite); err != nil {
		return err
	}
	seat, err := s.repos.Seats.Get(ctx, id, false)
	if err != nil {
		return err
	}
	eventID := ""
	if t, terr := s.repos.Tables.Get(ctx, seat.TableID, true); terr == nil {
		eventID = t.EventID
	}
	if err := s.repos.Seats.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "seat", id, eventID, seat, nil)
	return nil
}
