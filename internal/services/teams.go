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
	"github.com/tomtom215/bbqcomp/internal/barcode"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// TeamService manages competitor teams and their tamper-evident barcodes.
type TeamService struct {
	repos         Repos
	authz         *authz.Enforcer
	rec           *recorder
	barcodeSecret string
}

// CreateTeamRequest carries the fields of a new team.
type CreateTeamRequest struct {
	Name       string `json:"name" validate:"required,min=1,max=200"`
	TeamNumber int    `json:"team_number" validate:"required,gt=0"`
}

// UpdateTeamRequest carries a partial team update.
type UpdateTeamRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	TeamNumber *int    `json:"team_number" validate:"omitempty,gt=0"`
}

// VerifyBarcodeRequest carries a scanned payload and the event the
// scanner believes it is working, if any.
type VerifyBarcodeRequest struct {
	Payload string `json:"payload" validate:"required"`
	EventID string `json:"event_id" validate:"omitempty,uuid"`
}

// BarcodeVerification is the outcome of a verify-barcode call.
type BarcodeVerification struct {
	Valid  bool         `json:"valid"`
	Error  string       `json:"error,omitempty"`
	Team   *models.Team `json:"team,omitempty"`
	Legacy bool         `json:"legacy,omitempty"`
}

func (s *TeamService) Create(ctx context.Context, actor authz.Principal, eventID string, req CreateTeamRequest) (*models.Team, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	id := uuid.New().String()
	t := &models.Team{
		ID:             id,
		EventID:        eventID,
		Name:           req.Name,
		TeamNumber:     req.TeamNumber,
		BarcodePayload: barcode.Generate(eventID, id, s.barcodeSecret),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repos.Teams.Create(ctx, t); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionCreated, "team", t.ID, eventID, nil, t)
	return t, nil
}

// BulkCreate mirrors the other bulk creators: request-level duplicate
// team numbers first, then live-store conflicts, then writes.
func (s *TeamService) BulkCreate(ctx context.Context, actor authz.Principal, eventID string, items []CreateTeamRequest) ([]models.Team, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActWrite); err != nil {
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
		if seen[item.TeamNumber] {
			return nil, apperr.Conflict(fmt.Sprintf("duplicate team number %d in request", item.TeamNumber))
		}
		seen[item.TeamNumber] = true
	}
	if _, err := s.repos.Events.Get(ctx, eventID, false); err != nil {
		return nil, err
	}
	existing, err := s.repos.Teams.ListByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if seen[t.TeamNumber] {
			return nil, apperr.Conflict(fmt.Sprintf("team number %d already in use", t.TeamNumber))
		}
	}

	out := make([]models.Team, 0, len(items))
	for _, item := range items {
		t, err := s.Create(ctx, actor, eventID, item)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, nil
}

func (s *TeamService) Get(ctx context.Context, actor authz.Principal, id string, withDeleted bool) (*models.Team, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Teams.Get(ctx, id, includeDeleted(actor, withDeleted))
}

func (s *TeamService) ListByEvent(ctx context.Context, actor authz.Principal, eventID string, withDeleted bool) ([]models.Team, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActRead); err != nil {
		return nil, err
	}
	return s.repos.Teams.ListByEvent(ctx, eventID, includeDeleted(actor, withDeleted))
}

func (s *TeamService) Update(ctx context.Context, actor authz.Principal, id string, req UpdateTeamRequest) (*models.Team, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActWrite); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	t, err := s.repos.Teams.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *t
	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.TeamNumber != nil && *req.TeamNumber != t.TeamNumber {
		existing, err := s.repos.Teams.ListByEvent(ctx, t.EventID, false)
		if err != nil {
			return nil, err
		}
		for _, other := range existing {
			if other.ID != t.ID && other.TeamNumber == *req.TeamNumber {
				return nil, apperr.Conflict(fmt.Sprintf("team number %d already in use", *req.TeamNumber))
			}
		}
		t.TeamNumber = *req.TeamNumber
	}
	t.UpdatedAt = time.Now().UTC()
	if err := s.repos.Teams.Update(ctx, t); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "team", t.ID, t.EventID, &old, t)
	return t, nil
}

// InvalidateCode mints a fresh barcode and stamps code_invalidated_at, so
// a lost or compromised printed code stops resolving to the team.
func (s *TeamService) InvalidateCode(ctx context.Context, actor authz.Principal, id string) (*models.Team, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActWrite); err != nil {
		return nil, err
	}
	t, err := s.repos.Teams.Get(ctx, id, false)
	if err != nil {
		return nil, err
	}
	old := *t
	now := time.Now().UTC()
	t.BarcodePayload = barcode.Generate(t.EventID, t.ID, s.barcodeSecret)
	t.CodeInvalidatedAt = &now
	t.UpdatedAt = now
	if err := s.repos.Teams.Update(ctx, t); err != nil {
		return nil, err
	}
	s.rec.record(ctx, actor, models.ActionUpdated, "team", t.ID, t.EventID, &old, t)
	return t, nil
}

func (s *TeamService) Delete(ctx context.Context, actor authz.Principal, id string) error {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActWrite); err != nil {
		return err
	}
	t, err := s.repos.Teams.Get(ctx, id, false)
	if err != nil {
		return err
	}
	if err := s.repos.Teams.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.rec.record(ctx, actor, models.ActionSoftDeleted, "team", id, t.EventID, t, nil)
	return nil
}

// VerifyBarcode checks a scanned payload: signature first, then the
// optional event match, then that the payload is a team's CURRENT barcode
// (an invalidated code was replaced at invalidation time, so it no longer
// matches any live team). Legacy AZTEC-prefixed codes skip the signature
// check and are accepted by lookup alone during migration; new codes are
// never minted in that form.
func (s *TeamService) VerifyBarcode(ctx context.Context, actor authz.Principal, req VerifyBarcodeRequest) (*BarcodeVerification, error) {
	if err := s.authz.Require(actor, authz.ResTeams, authz.ActVerify); err != nil {
		return nil, err
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}

	if barcode.IsLegacy(req.Payload) {
		team, err := s.repos.Teams.GetByBarcodePayload(ctx, req.Payload)
		if err != nil {
			return &BarcodeVerification{Valid: false, Legacy: true, Error: "Unknown barcode"}, nil
		}
		if req.EventID != "" && team.EventID != req.EventID {
			return &BarcodeVerification{Valid: false, Legacy: true, Error: "Barcode belongs to a different event"}, nil
		}
		return &BarcodeVerification{Valid: true, Legacy: true, Team: team}, nil
	}

	res := barcode.Verify(req.Payload, s.barcodeSecret)
	if !res.Valid {
		return &BarcodeVerification{Valid: false, Error: res.Error}, nil
	}
	if req.EventID != "" && res.EventID != req.EventID {
		return &BarcodeVerification{Valid: false, Error: "Barcode belongs to a different event"}, nil
	}

	team, err := s.repos.Teams.GetByBarcodePayload(ctx, req.Payload)
	if err != nil {
		// Signature is fine but no live team carries this payload: either
		// the team was deleted or the code was invalidated and re-minted.
		return &BarcodeVerification{Valid: false, Error: "Code has been invalidated"}, nil
	}
	return &BarcodeVerification{Valid: true, Team: team}, nil
}
