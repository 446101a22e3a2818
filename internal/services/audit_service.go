// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// AuditService is the read side of the audit log. Global queries are
// admin-only; event-scoped queries are open to any authenticated
// principal so an operator can review their own event's history.
type AuditService struct {
	store audit.Store
	authz *authz.Enforcer
}

// AuditPage is one page of audit rows plus the filtered total.
type AuditPage struct {
	Items []models.AuditLog
	Total int64
}

// Query runs a paginated, filtered read. When filter.EventID is empty the
// query is global and requires the unscoped audit read permission.
func (s *AuditService) Query(ctx context.Context, actor authz.Principal, filter audit.QueryFilter) (*AuditPage, error) {
	act := authz.ActRead
	if filter.EventID != "" {
		act = authz.ActReadScoped
	}
	if err := s.authz.Require(actor, authz.ResAuditLogs, act); err != nil {
		return nil, err
	}
	// A seat token may only see its own event's history.
	if actor.IsSeat() && filter.EventID != actor.EventID {
		return nil, apperr.Forbidden("seat token is scoped to its own event")
	}

	if filter.Limit <= 0 {
		filter.Limit = audit.DefaultQueryFilter().Limit
	}
	items, err := s.store.Query(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	total, err := s.store.Count(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuditPage{Items: items, Total: total}, nil
}

// Get returns a single audit row by id. Admin only.
func (s *AuditService) Get(ctx context.Context, actor authz.Principal, id string) (*models.AuditLog, error) {
	if err := s.authz.Require(actor, authz.ResAuditLogs, authz.ActRead); err != nil {
		return nil, err
	}
	row, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, apperr.NotFound("audit log")
	}
	return row, nil
}
