// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package audit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/bbqcomp/internal/models"
)

// SQLStore persists audit log rows to the same DuckDB database used by
// internal/database, via the audit_log table created in its schema. It
// takes a *sql.DB rather than importing internal/database directly, so
// the audit and database packages don't depend on each other.
type SQLStore struct {
	conn *sql.DB
}

// NewSQLStore wraps an already-open DuckDB connection.
func NewSQLStore(conn *sql.DB) *SQLStore {
	return &SQLStore{conn: conn}
}

func (s *SQLStore) Save(ctx context.Context, log *models.AuditLog) error {
	// A retried mutation re-sends its idempotency key; the earlier row is
	// the record of truth and the retry is dropped.
	if log.IdempotencyKey != nil {
		var count int
		err := s.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM audit_log WHERE idempotency_key = ?`, *log.IdempotencyKey).Scan(&count)
		if err != nil {
			return fmt.Errorf("audit: idempotency check: %w", err)
		}
		if count > 0 {
			return nil
		}
	}
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO audit_log (id, timestamp, actor_type, actor_id, action, entity_type, entity_id,
			old_value, new_value, event_id, ip_address, device_fingerprint, idempotency_key)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		log.ID, log.Timestamp, log.ActorType, log.ActorID, log.Action, log.EntityType, log.EntityID,
		log.OldValue, log.NewValue, log.EventID, log.IPAddress, log.DeviceFingerprint, log.IdempotencyKey)
	if err != nil {
		return fmt.Errorf("audit: save: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (*models.AuditLog, error) {
	row := s.conn.QueryRowContext(ctx, auditSelect+`WHERE id = ?`, id)
	log, err := scanAuditLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("audit log not found: %s", id)
	}
	return log, err
}

// buildWhere translates the filter's set fields into a WHERE clause
// shared by Query and Count so totals always match the row set.
func buildWhere(filter QueryFilter) (string, []interface{}) {
	var where []string
	var args []interface{}

	if filter.ActorType != "" {
		where = append(where, "actor_type = ?")
		args = append(args, filter.ActorType)
	}
	if filter.ActorID != "" {
		where = append(where, "actor_id = ?")
		args = append(args, filter.ActorID)
	}
	if filter.Action != "" {
		where = append(where, "action = ?")
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		where = append(where, "entity_type = ?")
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, filter.EntityID)
	}
	if filter.EventID != "" {
		where = append(where, "event_id = ?")
		args = append(args, filter.EventID)
	}
	if filter.StartTime != nil {
		where = append(where, "timestamp >= ?")
		args = append(args, *filter.StartTime)
	}
	if filter.EndTime != nil {
		where = append(where, "timestamp <= ?")
		args = append(args, *filter.EndTime)
	}
	if len(where) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(where, " AND "), args
}

func (s *SQLStore) Query(ctx context.Context, filter QueryFilter) ([]models.AuditLog, error) {
	clause, args := buildWhere(filter)
	query := auditSelect + clause + " ORDER BY timestamp DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(" LIMIT %d OFFSET %d", limit, filter.Offset)

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var out []models.AuditLog
	for rows.Next() {
		log, err := scanAuditLogRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *log)
	}
	return out, rows.Err()
}

func (s *SQLStore) Count(ctx context.Context, filter QueryFilter) (int64, error) {
	clause, args := buildWhere(filter)
	var count int64
	err := s.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log `+clause, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("audit: count: %w", err)
	}
	return count, nil
}

const auditSelect = `SELECT id, timestamp, actor_type, actor_id, action, entity_type, entity_id,
	old_value, new_value, event_id, ip_address, device_fingerprint, idempotency_key FROM audit_log `

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAuditLog(row rowScanner) (*models.AuditLog, error) {
	var l models.AuditLog
	err := row.Scan(&l.ID, &l.Timestamp, &l.ActorType, &l.ActorID, &l.Action, &l.EntityType, &l.EntityID,
		&l.OldValue, &l.NewValue, &l.EventID, &l.IPAddress, &l.DeviceFingerprint, &l.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func scanAuditLogRows(rows *sql.Rows) (*models.AuditLog, error) {
	log, err := scanAuditLog(rows)
	if err != nil {
		return nil, fmt.Errorf("audit: scan row: %w", err)
	}
	return log, nil
}
