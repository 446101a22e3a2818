// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package services

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/logging"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// auditRetries bounds the inline retry loop for a failed audit write.
const auditRetries = 3

// recorder writes audit rows for every service mutation. Writes are
// best-effort: a failure is retried a bounded number of times and then
// logged, never propagated, so the original mutation stands regardless.
type recorder struct {
	store audit.Store
}

// record persists one audit row. oldV/newV are marshaled to JSON here;
// sanitization of sensitive fields happens inside the store wrapper.
// The request context's cancellation is detached so an aborted request
// still gets its mutation audited.
func (r *recorder) record(ctx context.Context, actor authz.Principal, action models.AuditAction,
	entityType, entityID, eventID string, oldV, newV interface{}) {
	row := &models.AuditLog{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		ActorType:  actor.ActorType(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if id := actor.ActorID(); id != "" {
		row.ActorID = &id
	}
	if eventID != "" {
		row.EventID = &eventID
	}
	if oldV != nil {
		row.OldValue = marshalValue(oldV)
	}
	if newV != nil {
		row.NewValue = marshalValue(newV)
	}
	if meta, ok := audit.MetaFromContext(ctx); ok {
		row.IPAddress = meta.IPAddress
		row.DeviceFingerprint = meta.DeviceFingerprint
		if meta.IdempotencyKey != "" {
			key := meta.IdempotencyKey
			row.IdempotencyKey = &key
		}
	}

	detached := context.WithoutCancel(ctx)
	var err error
	for attempt := 0; attempt < auditRetries; attempt++ {
		if err = r.store.Save(detached, row); err == nil {
			return
		}
	}
	l := logging.Ctx(ctx)
	l.Error().Err(err).
		Str("entity_type", entityType).
		Str("entity_id", entityID).
		Str("action", string(action)).
		Msg("audit write failed after retries")
}

func marshalValue(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// recordSystem is record for mutations with no request principal, e.g.
// first-run admin bootstrap in cmd/server.
func (r *recorder) recordSystem(ctx context.Context, action models.AuditAction, entityType, entityID string, newV interface{}) {
	row := &models.AuditLog{
		ID:         uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		ActorType:  models.ActorSystem,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if newV != nil {
		row.NewValue = marshalValue(newV)
	}
	detached := context.WithoutCancel(ctx)
	var err error
	for attempt := 0; attempt < auditRetries; attempt++ {
		if err = r.store.Save(detached, row); err == nil {
			return
		}
	}
	l := logging.Ctx(ctx)
	l.Error().Err(err).Str("entity_type", entityType).Msg("audit write failed after retries")
}
