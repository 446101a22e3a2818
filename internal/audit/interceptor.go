// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"context"

	"github.com/tomtom215/bbqcomp/internal/models"
)

// sanitizingStore wraps a Store and redacts sensitive fields from every
// log's OldValue/NewValue before it reaches the underlying persistence
// layer. Every audit.NewStore call returns one of these; a MemoryStore or
// SQLStore used directly, without NewStore, performs no redaction.
type sanitizingStore struct {
	inner Store
}

// NewStore wraps inner with the sensitive-field redaction interceptor.
func NewStore(inner Store) Store {
	return &sanitizingStore{inner: inner}
}

func (s *sanitizingStore) Save(ctx context.Context, log *models.AuditLog) error {
	sanitized := *log
	sanitized.OldValue = SanitizeValue(log.OldValue)
	sanitized.NewValue = SanitizeValue(log.NewValue)
	return s.inner.Save(ctx, &sanitized)
}

func (s *sanitizingStore) Get(ctx context.Context, id string) (*models.AuditLog, error) {
	return s.inner.Get(ctx, id)
}

func (s *sanitizingStore) Query(ctx context.Context, filter QueryFilter) ([]models.AuditLog, error) {
	return s.inner.Query(ctx, filter)
}

func (s *sanitizingStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	return s.inner.Count(ctx, filter)
}
