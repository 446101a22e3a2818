// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth issues and validates the two JWT kinds this platform uses:
// a User token for the operator console (username/password, bcrypt) and a
// Seat token for judges (minted from a table's QR code, see
// internal/barcode and internal/services). Both are HMAC-SHA256 signed
// with the same configured secret but carry disjoint claim shapes, so a
// seat token can never be mistaken for a user token at the transport
// boundary (ValidateUserToken and ValidateSeatToken check the TokenKind
// claim before the internal/api middleware trusts any other claim).
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/bbqcomp/internal/config"
)

// TokenKind discriminates the two claim shapes signed with this module's secret.
type TokenKind string

const (
	KindUser TokenKind = "user"
	KindSeat TokenKind = "seat"
)

// UserClaims identifies an operator-console principal (internal/models.User).
type UserClaims struct {
	Kind     TokenKind `json:"kind"`
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// SeatClaims identifies a judge seat, scoped to the event and table it was
// minted for. A judge never authenticates with a username/password: the
// table's printed QR code is the credential (see internal/services
// seat-token issuance).
type SeatClaims struct {
	Kind       TokenKind `json:"kind"`
	SeatID     string    `json:"seat_id"`
	TableID    string    `json:"table_id"`
	EventID    string    `json:"event_id"`
	SeatNumber int       `json:"seat_number"`
	jwt.RegisteredClaims
}

// Manager issues and validates both token kinds with a single HMAC secret.
type Manager struct {
	secret       []byte
	userTTL      time.Duration
	seatTokenTTL time.Duration
}

// NewManager builds a Manager from the security configuration. It fails
// fast if JWT_SECRET is unset, mirroring config.Config.Validate's own
// check so a misconfigured manager can never be constructed in isolation.
func NewManager(cfg *config.SecurityConfig) (*Manager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("auth: JWT_SECRET is required")
	}
	return &Manager{
		secret:       []byte(cfg.JWTSecret),
		userTTL:      cfg.JWTExpiresIn,
		seatTokenTTL: cfg.SeatTokenTTL,
	}, nil
}

// GenerateUserToken issues a 24h (by config) token for an operator-console principal.
func (m *Manager) GenerateUserToken(userID, username, role string) (string, error) {
	now := time.Now()
	claims := &UserClaims{
		Kind: KindUser, UserID: userID, Username: username, Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.userTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign user token: %w", err)
	}
	return signed, nil
}

// ValidateUserToken parses and verifies a user token, rejecting any token
// signed with a different algorithm or carrying the wrong Kind.
func (m *Manager) ValidateUserToken(tokenString string) (*UserClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, m.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("auth: parse user token: %w", err)
	}
	claims, ok := parsed.Claims.(*UserClaims)
	if !ok || !parsed.Valid || claims.Kind != KindUser {
		return nil, fmt.Errorf("auth: invalid user token")
	}
	return claims, nil
}

// GenerateSeatToken issues a 90-minute (by config) token scoped to one judge seat.
func (m *Manager) GenerateSeatToken(seatID, tableID, eventID string, seatNumber int) (string, error) {
	now := time.Now()
	claims := &SeatClaims{
		Kind: KindSeat, SeatID: seatID, TableID: tableID, EventID: eventID, SeatNumber: seatNumber,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.seatTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign seat token: %w", err)
	}
	return signed, nil
}

// ValidateSeatToken parses and verifies a seat token.
func (m *Manager) ValidateSeatToken(tokenString string) (*SeatClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &SeatClaims{}, m.keyFunc)
	if err != nil {
		return nil, fmt.Errorf("auth: parse seat token: %w", err)
	}
	claims, ok := parsed.Claims.(*SeatClaims)
	if !ok || !parsed.Valid || claims.Kind != KindSeat {
		return nil, fmt.Errorf("auth: invalid seat token")
	}
	return claims, nil
}

func (m *Manager) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return m.secret, nil
}

// ValidateEither tries both claim shapes and returns whichever kind the
// token actually carries, for transport-layer middleware that accepts
// both a user session and a seat session on the same endpoint.
func (m *Manager) ValidateEither(tokenString string) (kind TokenKind, userClaims *UserClaims, seatClaims *SeatClaims, err error) {
	if uc, uerr := m.ValidateUserToken(tokenString); uerr == nil {
		return KindUser, uc, nil, nil
	}
	if sc, serr := m.ValidateSeatToken(tokenString); serr == nil {
		return KindSeat, nil, sc, nil
	}
	return "", nil, nil, fmt.Errorf("auth: token is neither a valid user nor seat token")
}
