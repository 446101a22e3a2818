// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package audit provides append-only audit logging. Every mutation made
// through internal/services is recorded here before the HTTP response is
// sent, so that an operator can reconstruct who changed what and when.
package audit

import (
	"context"
	"time"

	"github.com/tomtom215/bbqcomp/internal/models"
)

// Store defines the interface for audit log persistence. Implementations
// must never allow an UPDATE or DELETE of an existing row: Save is the
// only write operation records as immutable facts.
type Store interface {
	Save(ctx context.Context, log *models.AuditLog) error
	Get(ctx context.Context, id string) (*models.AuditLog, error)
	Query(ctx context.Context, filter QueryFilter) ([]models.AuditLog, error)
	Count(ctx context.Context, filter QueryFilter) (int64, error)
}

// QueryFilter restricts an audit query to the given criteria. Zero values
// mean "no restriction" for that field.
type QueryFilter struct {
	ActorType  models.ActorType
	ActorID    string
	Action     models.AuditAction
	EntityType string
	EntityID   string
	EventID    string
	StartTime  *time.Time
	EndTime    *time.Time
	Limit      int
	Offset     int
}

// DefaultQueryFilter returns a filter returning the 100 most recent entries.
func DefaultQueryFilter() QueryFilter {
	return QueryFilter{Limit: 100}
}
