// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/tomtom215/bbqcomp/internal/apperr"
	"github.com/tomtom215/bbqcomp/internal/models"
)

// EventRepository implements repository.EventRepository against DuckDB.
type EventRepository struct{ db *DB }

func (db *DB) Events() *EventRepository { return &EventRepository{db: db} }

func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO events (id, name, date, location, status, scoring_scale_min,
			scoring_scale_max, scoring_scale_step, aggregation_method, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Date, e.Location, e.Status, e.ScoringScaleMin,
		e.ScoringScaleMax, e.ScoringScaleStep, e.AggregationMethod, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create event: %w", err)
	}
	return nil
}

func (r *EventRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Event, error) {
	query := `
		SELECT id, name, date, location, status, scoring_scale_min, scoring_scale_max,
			scoring_scale_step, aggregation_method, created_at, updated_at, deleted_at
		FROM events WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanEvent(row)
}

func (r *EventRepository) List(ctx context.Context, includeDeleted bool) ([]models.Event, error) {
	query := `
		SELECT id, name, date, location, status, scoring_scale_min, scoring_scale_max,
			scoring_scale_step, aggregation_method, created_at, updated_at, deleted_at
		FROM events`
	if !includeDeleted {
		query += ` WHERE deleted_at IS NULL`
	}
	query += ` ORDER BY date DESC`
	rows, err := r.db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("database: list events: %w", err)
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		e, err := scanEventRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE events SET name = ?, date = ?, location = ?, status = ?,
			scoring_scale_min = ?, scoring_scale_max = ?, scoring_scale_step = ?,
			aggregation_method = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		e.Name, e.Date, e.Location, e.Status, e.ScoringScaleMin, e.ScoringScaleMax,
		e.ScoringScaleStep, e.AggregationMethod, e.UpdatedAt, e.ID)
	if err != nil {
		return fmt.Errorf("database: update event: %w", err)
	}
	return checkRowsAffected(res, "event", e.ID)
}

func (r *EventRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE events SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete event: %w", err)
	}
	return checkRowsAffected(res, "event", id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Status, &e.ScoringScaleMin,
		&e.ScoringScaleMax, &e.ScoringScaleStep, &e.AggregationMethod, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("event")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan event: %w", err)
	}
	return &e, nil
}

func scanEventRows(rows *sql.Rows) (*models.Event, error) {
	var e models.Event
	if err := rows.Scan(&e.ID, &e.Name, &e.Date, &e.Location, &e.Status, &e.ScoringScaleMin,
		&e.ScoringScaleMax, &e.ScoringScaleStep, &e.AggregationMethod, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt); err != nil {
		return nil, fmt.Errorf("database: scan event row: %w", err)
	}
	return &e, nil
}

// checkRowsAffected translates a zero-row UPDATE/DELETE into a NotFound
// error so services don't have to special-case sql.Result themselves.
func checkRowsAffected(res sql.Result, entityType, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("database: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(entityType)
	}
	return nil
}
