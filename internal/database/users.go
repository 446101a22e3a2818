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

// UserRepository implements repository.UserRepository against DuckDB.
type UserRepository struct{ db *DB }

func (db *DB) Users() *UserRepository { return &UserRepository{db: db} }

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if err := r.db.conflictIfExists(ctx, "username already in use",
		`SELECT COUNT(*) FROM users WHERE username = ? AND deleted_at IS NULL`, u.Username); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create user: %w", err)
	}
	return nil
}

func (r *UserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	row := r.db.conn.QueryRowContext(ctx, userSelect+`WHERE id = ? AND deleted_at IS NULL`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.db.conn.QueryRowContext(ctx, userSelect+`WHERE username = ? AND deleted_at IS NULL`, username)
	return scanUser(row)
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.conn.QueryContext(ctx, userSelect+`WHERE deleted_at IS NULL ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("database: list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan user row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UserRepository) Update(ctx context.Context, u *models.User) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE users SET username = ?, password_hash = ?, role = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		u.Username, u.PasswordHash, u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		return fmt.Errorf("database: update user: %w", err)
	}
	return checkRowsAffected(res, "user", u.ID)
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete user: %w", err)
	}
	return checkRowsAffected(res, "user", id)
}

const userSelect = `SELECT id, username, password_hash, role, created_at, updated_at, deleted_at FROM users `

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("user")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan user: %w", err)
	}
	return &u, nil
}
