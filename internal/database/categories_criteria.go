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

// CategoryRepository implements repository.CategoryRepository against DuckDB.
type CategoryRepository struct{ db *DB }

func (db *DB) Categories() *CategoryRepository { return &CategoryRepository{db: db} }

func (r *CategoryRepository) Create(ctx context.Context, c *models.Category) error {
	if err := r.db.conflictIfExists(ctx, "category name already in use",
		`SELECT COUNT(*) FROM categories WHERE event_id = ? AND name = ? AND deleted_at IS NULL`,
		c.EventID, c.Name); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO categories (id, event_id, name, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`, c.ID, c.EventID, c.Name, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Category, error) {
	query := categorySelect + `WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanCategory(row)
}

func (r *CategoryRepository) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Category, error) {
	query := categorySelect + `WHERE event_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY sort_order`
	rows, err := r.db.conn.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("database: list categories: %w", err)
	}
	defer rows.Close()

	var out []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan category row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Update(ctx context.Context, c *models.Category) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE categories SET name = ?, sort_order = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		c.Name, c.SortOrder, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("database: update category: %w", err)
	}
	return checkRowsAffected(res, "category", c.ID)
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE categories SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete category: %w", err)
	}
	return checkRowsAffected(res, "category", id)
}

const categorySelect = `SELECT id, event_id, name, sort_order, created_at, updated_at, deleted_at FROM categories `

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.EventID, &c.Name, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan category: %w", err)
	}
	return &c, nil
}

// CriterionRepository implements repository.CriterionRepository against DuckDB.
type CriterionRepository struct{ db *DB }

func (db *DB) Criteria() *CriterionRepository { return &CriterionRepository{db: db} }

func (r *CriterionRepository) Create(ctx context.Context, c *models.Criterion) error {
	if err := r.db.conflictIfExists(ctx, "criterion name already in use",
		`SELECT COUNT(*) FROM criteria WHERE event_id = ? AND name = ? AND deleted_at IS NULL`,
		c.EventID, c.Name); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO criteria (id, event_id, name, weight, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, c.ID, c.EventID, c.Name, c.Weight, c.SortOrder, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create criterion: %w", err)
	}
	return nil
}

func (r *CriterionRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Criterion, error) {
	query := criterionSelect + `WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanCriterion(row)
}

func (r *CriterionRepository) ListByEvent(ctx context.Context, eventID string, includeDeleted bool) ([]models.Criterion, error) {
	query := criterionSelect + `WHERE event_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY sort_order`
	rows, err := r.db.conn.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("database: list criteria: %w", err)
	}
	defer rows.Close()

	var out []models.Criterion
	for rows.Next() {
		var c models.Criterion
		if err := rows.Scan(&c.ID, &c.EventID, &c.Name, &c.Weight, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan criterion row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CriterionRepository) Update(ctx context.Context, c *models.Criterion) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE criteria SET name = ?, weight = ?, sort_order = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		c.Name, c.Weight, c.SortOrder, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("database: update criterion: %w", err)
	}
	return checkRowsAffected(res, "criterion", c.ID)
}

func (r *CriterionRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE criteria SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete criterion: %w", err)
	}
	return checkRowsAffected(res, "criterion", id)
}

const criterionSelect = `SELECT id, event_id, name, weight, sort_order, created_at, updated_at, deleted_at FROM criteria `

func scanCriterion(row rowScanner) (*models.Criterion, error) {
	var c models.Criterion
	err := row.Scan(&c.ID, &c.EventID, &c.Name, &c.Weight, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("criterion")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan criterion: %w", err)
	}
	return &c, nil
}
