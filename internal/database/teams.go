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

// TeamRepository implements repository.TeamRepository against DuckDB.
type TeamRepository struct{ db *DB }

func (db *DB) Teams() *TeamRepository { return &TeamRepository{db: db} }

func (r *TeamRepository) Create(ctx context.Context, t *models.Team) error {
	if err := r.db.conflictIfExists(ctx, "team number already in use",
		`SELECT COUNT(*) FROM teams WHERE event_id = ? AND team_number = ? AND deleted_at IS NULL`,
		t.EventID, t.TeamNumber); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO teams (id, event_id, name, team_number, barcode_payload, code_invalidated_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.EventID, t.Name, t.TeamNumber, t.BarcodePayload, t.CodeInvalidatedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create team: %w", err)
	}
	return nil
}

func (r *TeamRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Team, error) {
	query := teamSelect + `WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanTeam(row)
}

func (r *TeamRepository) GetByBarcodePayload(ctx context.Context, payload string) (*models.Team, error) {
	row := r.db.conn.QueryRowContext(ctx, teamSelect+`WHERE barcode_payload = ? AND deleted_at IS NULL`, payload)
	return scanTeam(row)
}

func (r *TeamRepository) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Team, error) {
	query := teamSelect + `WHERE event_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY team_number`
	rows, err := r.db.conn.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("database: list teams: %w", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.TeamNumber, &t.BarcodePayload,
			&t.CodeInvalidatedAt, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan team row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TeamRepository) Update(ctx context.Context, t *models.Team) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE teams SET name = ?, team_number = ?, barcode_payload = ?, code_invalidated_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		t.Name, t.TeamNumber, t.BarcodePayload, t.CodeInvalidatedAt, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("database: update team: %w", err)
	}
	return checkRowsAffected(res, "team", t.ID)
}

func (r *TeamRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE teams SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete team: %w", err)
	}
	return checkRowsAffected(res, "team", id)
}

const teamSelect = `SELECT id, event_id, name, team_number, barcode_payload, code_invalidated_at, created_at, updated_at, deleted_at FROM teams `

func scanTeam(row rowScanner) (*models.Team, error) {
	var t models.Team
	err := row.Scan(&t.ID, &t.EventID, &t.Name, &t.TeamNumber, &t.BarcodePayload,
		&t.CodeInvalidatedAt, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("team")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan team: %w", err)
	}
	return &t, nil
}
