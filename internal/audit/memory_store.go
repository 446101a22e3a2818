// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/bbqcomp/internal/models"
)

// MemoryStore implements Store using in-memory storage. Useful for tests
// and for the offline dev profile where a DuckDB file is not desired.
// Data is lost on restart.
type MemoryStore struct {
	mu   sync.RWMutex
	logs []models.AuditLog
}

// NewMemoryStore creates an empty in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(ctx context.Context, log *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if log.IdempotencyKey != nil {
		for i := range s.logs {
			if s.logs[i].IdempotencyKey != nil && *s.logs[i].IdempotencyKey == *log.IdempotencyKey {
				return nil
			}
		}
	}
	s.logs = append(s.logs, *log)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.logs {
		if s.logs[i].ID == id {
			log := s.logs[i]
			return &log, nil
		}
	}
	return nil, fmt.Errorf("audit log not found: %s", id)
}

func (s *MemoryStore) Query(ctx context.Context, filter QueryFilter) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []models.AuditLog
	skipped := 0
	for i := len(s.logs) - 1; i >= 0; i-- {
		log := s.logs[i]
		if !matchesFilter(&log, &filter) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		results = append(results, log)
		if filter.Limit > 0 && len(results) >= filter.Limit {
			break
		}
	}
	return results, nil
}

func (s *MemoryStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var count int64
	for i := range s.logs {
		if matchesFilter(&s.logs[i], &filter) {
			count++
		}
	}
	return count, nil
}

func matchesFilter(log *models.AuditLog, filter *QueryFilter) bool {
	if filter.ActorType != "" && log.ActorType != filter.ActorType {
		return false
	}
	if filter.ActorID != "" && (log.ActorID == nil || *log.ActorID != filter.ActorID) {
		return false
	}
	if filter.Action != "" && log.Action != filter.Action {
		return false
	}
	if filter.EntityType != "" && log.EntityType != filter.EntityType {
		return false
	}
	if filter.EntityID != "" && log.EntityID != filter.EntityID {
		return false
	}
	if filter.EventID != "" && (log.EventID == nil || *log.EventID != filter.EventID) {
		return false
	}
	if filter.StartTime != nil && log.Timestamp.Before(*filter.StartTime) {
		return false
	}
	if filter.EndTime != nil && log.Timestamp.After(*filter.EndTime) {
		return false
	}
	return true
}

// Len returns the number of entries currently held (for tests).
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.logs)
}
