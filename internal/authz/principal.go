// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package authz decides what an authenticated principal may do. The
// role/resource/action policy is enforced by Casbin with an embedded RBAC
// model, mirroring the dual-principal model: operator-console users carry
// a role (admin or operator), judges carry a seat identity scoped to one
// table of one event.
package authz

import (
	"context"

	"github.com/tomtom215/bbqcomp/internal/models"
)

// PrincipalKind discriminates the two authenticated identities.
type PrincipalKind string

const (
	PrincipalUser PrincipalKind = "user"
	PrincipalSeat PrincipalKind = "seat"
)

// Principal is the authenticated identity attached to a request by the
// transport layer and passed explicitly into every service method that
// needs an authorization decision.
type Principal struct {
	Kind PrincipalKind

	// User principal fields.
	UserID   string
	Username string
	Role     models.UserRole

	// Seat principal fields.
	SeatID     string
	TableID    string
	EventID    string
	SeatNumber int
}

// Subject returns the Casbin subject for this principal: the user's role,
// or the literal "seat" for judge tokens.
func (p Principal) Subject() string {
	if p.Kind == PrincipalSeat {
		return "seat"
	}
	return string(p.Role)
}

// IsAdmin reports whether the principal is an admin user.
func (p Principal) IsAdmin() bool {
	return p.Kind == PrincipalUser && p.Role == models.RoleAdmin
}

// IsSeat reports whether the principal is a judge seat.
func (p Principal) IsSeat() bool { return p.Kind == PrincipalSeat }

// ActorType maps the principal onto the audit log's actor taxonomy.
func (p Principal) ActorType() models.ActorType {
	if p.Kind == PrincipalSeat {
		return models.ActorJudge
	}
	return models.ActorUser
}

// ActorID returns the identifier recorded in audit rows: the user id for
// console users, the seat id for judges.
func (p Principal) ActorID() string {
	if p.Kind == PrincipalSeat {
		return p.SeatID
	}
	return p.UserID
}

type contextKey struct{}

// ContextWithPrincipal attaches p to ctx. Called by the authentication
// middleware after a bearer token validates.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the principal attached by the middleware,
// or false if the request was never authenticated.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
