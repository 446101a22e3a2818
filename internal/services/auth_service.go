// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"time"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
	"github.com/tomtom215/bbqcomp/internal/validation"
)

// AuthService issues tokens for both principal kinds: console users by
// username/password, judge seats by table QR token + seat number.
type AuthService struct {
	repos     Repos
	jwt       *auth.Manager
	expiresIn time.Duration
	seatTTL   time.Duration
}

// LoginRequest carries console credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

// LoginResponse carries an issued user token.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        *models.User `json:"user"`
}

// SeatTokenRequest carries the judge's scanned table QR token and chosen
// seat number.
type SeatTokenRequest struct {
	QRToken    string `json:"qrToken" validate:"required,len=64,hexadecimal"`
	SeatNumber int    `json:"seatNumber" validate:"required,gt=0"`
}

// SeatTokenResponse carries an issued seat token.
type SeatTokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
	EventID     string `json:"event_id"`
	TableID     string `json:"table_id"`
	SeatID      string `json:"seat_id"`
	SeatNumber  int    `json:"seat_number"`
}

// Login verifies the password against its bcrypt hash and issues a user
// token. Unknown usernames and wrong passwords are indistinguishable to
// the caller.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	user, err := s.repos.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidCredentials, "invalid username or password")
	}
	if err := auth.ComparePassword(user.PasswordHash, req.Password); err != nil {
		return nil, apperr.New(apperr.CodeInvalidCredentials, "invalid username or password")
	}
	token, err := s.jwt.GenerateUserToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiresIn.Seconds()),
		User:        user,
	}, nil
}

// Refresh re-issues a user token for an already-authenticated principal.
func (s *AuthService) Refresh(ctx context.Context, actor authz.Principal) (*LoginResponse, error) {
	if actor.Kind != authz.PrincipalUser {
		return nil, apperr.Unauthorized("only user tokens can be refreshed")
	}
	user, err := s.repos.Users.Get(ctx, actor.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("user no longer exists")
	}
	token, err := s.jwt.GenerateUserToken(user.ID, user.Username, string(user.Role))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &LoginResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.expiresIn.Seconds()),
		User:        user,
	}, nil
}

// Me returns the current console user.
func (s *AuthService) Me(ctx context.Context, actor authz.Principal) (*models.User, error) {
	if actor.Kind != authz.PrincipalUser {
		return nil, apperr.Unauthorized("not a user token")
	}
	return s.repos.Users.Get(ctx, actor.UserID)
}

// SeatToken resolves the QR token to a live table, verifies the seat
// exists under it, and issues a seat-scoped token.
func (s *AuthService) SeatToken(ctx context.Context, req SeatTokenRequest) (*SeatTokenResponse, error) {
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	table, err := s.repos.Tables.GetByQRToken(ctx, req.QRToken)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidQRToken, "unknown QR token")
	}
	seat, err := s.repos.Seats.GetByTableAndNumber(ctx, table.ID, req.SeatNumber)
	if err != nil {
		return nil, apperr.New(apperr.CodeInvalidQRToken, "no such seat at this table")
	}
	token, err := s.jwt.GenerateSeatToken(seat.ID, table.ID, table.EventID, seat.SeatNumber)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &SeatTokenResponse{
		AccessToken: token,
		ExpiresIn:   int64(s.seatTTL.Seconds()),
		EventID:     table.EventID,
		TableID:     table.ID,
		SeatID:      seat.ID,
		SeatNumber:  seat.SeatNumber,
	}, nil
}
