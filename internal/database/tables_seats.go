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

// TableRepository implements repository.TableRepository against DuckDB.
type TableRepository struct{ db *DB }

func (db *DB) Tables() *TableRepository { return &TableRepository{db: db} }

func (r *TableRepository) Create(ctx context.Context, t *models.Table) error {
	if err := r.db.conflictIfExists(ctx, "table number already in use",
		`SELECT COUNT(*) FROM tables WHERE event_id = ? AND table_number = ? AND deleted_at IS NULL`,
		t.EventID, t.TableNumber); err != nil {
		return err
	}
	if err := r.db.conflictIfExists(ctx, "qr token already in use",
		`SELECT COUNT(*) FROM tables WHERE qr_token = ? AND deleted_at IS NULL`, t.QRToken); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO tables (id, event_id, table_number, qr_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.EventID, t.TableNumber, t.QRToken, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create table: %w", err)
	}
	return nil
}

func (r *TableRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Table, error) {
	query := tableSelect + `WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanTable(row)
}

func (r *TableRepository) GetByQRToken(ctx context.Context, token string) (*models.Table, error) {
	row := r.db.conn.QueryRowContext(ctx, tableSelect+`WHERE qr_token = ? AND deleted_at IS NULL`, token)
	return scanTable(row)
}

func (r *TableRepository) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Table, error) {
	query := tableSelect + `WHERE event_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY table_number`
	rows, err := r.db.conn.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("database: list tables: %w", err)
	}
	defer rows.Close()

	var out []models.Table
	for rows.Next() {
		var t models.Table
		if err := rows.Scan(&t.ID, &t.EventID, &t.TableNumber, &t.QRToken, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan table row: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TableRepository) Update(ctx context.Context, t *models.Table) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE tables SET table_number = ?, qr_token = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`, t.TableNumber, t.QRToken, t.UpdatedAt, t.ID)
	if err != nil {
		return fmt.Errorf("database: update table: %w", err)
	}
	return checkRowsAffected(res, "table", t.ID)
}

func (r *TableRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE tables SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete table: %w", err)
	}
	return checkRowsAffected(res, "table", id)
}

const tableSelect = `SELECT id, event_id, table_number, qr_token, created_at, updated_at, deleted_at FROM tables `

func scanTable(row rowScanner) (*models.Table, error) {
	var t models.Table
	err := row.Scan(&t.ID, &t.EventID, &t.TableNumber, &t.QRToken, &t.CreatedAt, &t.UpdatedAt, &t.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("table")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan table: %w", err)
	}
	return &t, nil
}

// SeatRepository implements repository.SeatRepository against DuckDB.
type SeatRepository struct{ db *DB }

func (db *DB) Seats() *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *models.Seat) error {
	if err := r.db.conflictIfExists(ctx, "seat number already in use",
		`SELECT COUNT(*) FROM seats WHERE table_id = ? AND seat_number = ? AND deleted_at IS NULL`,
		s.TableID, s.SeatNumber); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO seats (id, table_id, seat_number, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`, s.ID, s.TableID, s.SeatNumber, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create seat: %w", err)
	}
	return nil
}

func (r *SeatRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Seat, error) {
	query := seatSelect + `WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanSeat(row)
}

func (r *SeatRepository) GetByTableAndNumber(ctx context.Context, tableID string, seatNumber int) (*models.Seat, error) {
	row := r.db.conn.QueryRowContext(ctx, seatSelect+`WHERE table_id = ? AND seat_number = ? AND deleted_at IS NULL`, tableID, seatNumber)
	return scanSeat(row)
}

func (r *SeatRepository) ListByTable(ctx context.Context, tableID string, includeDeleted bool) ([]models.Seat, error) {
	query := seatSelect + `WHERE table_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY seat_number`
	rows, err := r.db.conn.QueryContext(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("database: list seats: %w", err)
	}
	defer rows.Close()

	var out []models.Seat
	for rows.Next() {
		var s models.Seat
		if err := rows.Scan(&s.ID, &s.TableID, &s.SeatNumber, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan seat row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SeatRepository) Update(ctx context.Context, s *models.Seat) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE seats SET seat_number = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		s.SeatNumber, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("database: update seat: %w", err)
	}
	return checkRowsAffected(res, "seat", s.ID)
}

func (r *SeatRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE seats SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete seat: %w", err)
	}
	return checkRowsAffected(res, "seat", id)
}

const seatSelect = `SELECT id, table_id, seat_number, created_at, updated_at, deleted_at FROM seats `

func scanSeat(row rowScanner) (*models.Seat, error) {
	var s models.Seat
	err := row.Scan(&s.ID, &s.TableID, &s.SeatNumber, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("seat")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan seat: %w", err)
	}
	return &s, nil
}
