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

// SubmissionRepository implements repository.SubmissionRepository against DuckDB.
type SubmissionRepository struct{ db *DB }

func (db *DB) Submissions() *SubmissionRepository { return &SubmissionRepository{db: db} }

func (r *SubmissionRepository) Create(ctx context.Context, s *models.Submission) error {
	if err := r.db.conflictIfExists(ctx, "submission already exists for this team and category",
		`SELECT COUNT(*) FROM submissions WHERE team_id = ? AND category_id = ? AND deleted_at IS NULL`,
		s.TeamID, s.CategoryID); err != nil {
		return err
	}
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO submissions (id, team_id, category_id, status, turned_in_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.TeamID, s.CategoryID, s.Status, s.TurnedInAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("database: create submission: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id string, includeDeleted bool) (*models.Submission, error) {
	query := submissionSelect + `WHERE id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	row := r.db.conn.QueryRowContext(ctx, query, id)
	return scanSubmission(row)
}

func (r *SubmissionRepository) ListByTeam(ctx context.Context, teamID string, includeDeleted bool) ([]models.Submission, error) {
	query := submissionSelect + `WHERE team_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	rows, err := r.db.conn.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("database: list submissions by team: %w", err)
	}
	return scanSubmissionRows(rows)
}

func (r *SubmissionRepository) ListByCategory(ctx context.Context, categoryID string, includeDeleted bool) ([]models.Submission, error) {
	query := submissionSelect + `WHERE category_id = ?`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY created_at`
	rows, err := r.db.conn.QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("database: list submissions by category: %w", err)
	}
	return scanSubmissionRows(rows)
}

func (r *SubmissionRepository) Update(ctx context.Context, s *models.Submission) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE submissions SET status = ?, turned_in_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		s.Status, s.TurnedInAt, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("database: update submission: %w", err)
	}
	return checkRowsAffected(res, "submission", s.ID)
}

func (r *SubmissionRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `UPDATE submissions SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("database: soft delete submission: %w", err)
	}
	return checkRowsAffected(res, "submission", id)
}

const submissionSelect = `SELECT id, team_id, category_id, status, turned_in_at, created_at, updated_at, deleted_at FROM submissions `

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	err := row.Scan(&s.ID, &s.TeamID, &s.CategoryID, &s.Status, &s.TurnedInAt, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("submission")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan submission: %w", err)
	}
	return &s, nil
}

func scanSubmissionRows(rows *sql.Rows) ([]models.Submission, error) {
	defer rows.Close()
	var out []models.Submission
	for rows.Next() {
		var s models.Submission
		if err := rows.Scan(&s.ID, &s.TeamID, &s.CategoryID, &s.Status, &s.TurnedInAt, &s.CreatedAt, &s.UpdatedAt, &s.DeletedAt); err != nil {
			return nil, fmt.Errorf("database: scan submission row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ScoreRepository implements repository.ScoreRepository against DuckDB.
type ScoreRepository struct{ db *DB }

func (db *DB) Scores() *ScoreRepository { return &ScoreRepository{db: db} }

func (r *ScoreRepository) Create(ctx context.Context, s *models.Score) error {
	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO scores (id, submission_id, seat_id, criterion_id, score_value, comment, phase, submitted_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.SubmissionID, s.SeatID, s.CriterionID, s.ScoreValue, s.Comment, s.Phase, s.SubmittedAt, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		// Two judges racing on the same triple: the unique index decides,
		// the loser surfaces as Conflict.
		if isUniqueViolation(err) {
			return apperr.Conflict("score already exists for this submission, seat, and criterion")
		}
		return fmt.Errorf("database: create score: %w", err)
	}
	return nil
}

func (r *ScoreRepository) Get(ctx context.Context, id string) (*models.Score, error) {
	row := r.db.conn.QueryRowContext(ctx, scoreSelect+`WHERE id = ?`, id)
	return scanScore(row)
}

func (r *ScoreRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.Score, error) {
	rows, err := r.db.conn.QueryContext(ctx, scoreSelect+`WHERE submission_id = ?`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("database: list scores by submission: %w", err)
	}
	return scanScoreRows(rows)
}

func (r *ScoreRepository) ListBySubmissionAndSeat(ctx context.Context, submissionID, seatID string) ([]models.Score, error) {
	rows, err := r.db.conn.QueryContext(ctx, scoreSelect+`WHERE submission_id = ? AND seat_id = ?`, submissionID, seatID)
	if err != nil {
		return nil, fmt.Errorf("database: list scores by submission and seat: %w", err)
	}
	return scanScoreRows(rows)
}

func (r *ScoreRepository) Update(ctx context.Context, s *models.Score) error {
	res, err := r.db.conn.ExecContext(ctx, `
		UPDATE scores SET score_value = ?, comment = ?, updated_at = ? WHERE id = ?`,
		s.ScoreValue, s.Comment, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("database: update score: %w", err)
	}
	return checkRowsAffected(res, "score", s.ID)
}

// Delete hard-deletes a Score row. Scores carry no deleted_at column: an
// admin deleting a score is a genuine removal of the record, not a
// soft-delete; a removed score is gone for good, admin only.
func (r *ScoreRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM scores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("database: delete score: %w", err)
	}
	return checkRowsAffected(res, "score", id)
}

const scoreSelect = `SELECT id, submission_id, seat_id, criterion_id, score_value, comment, phase, submitted_at, created_at, updated_at FROM scores `

func scanScore(row rowScanner) (*models.Score, error) {
	var s models.Score
	err := row.Scan(&s.ID, &s.SubmissionID, &s.SeatID, &s.CriterionID, &s.ScoreValue, &s.Comment, &s.Phase, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("score")
	}
	if err != nil {
		return nil, fmt.Errorf("database: scan score: %w", err)
	}
	return &s, nil
}

func scanScoreRows(rows *sql.Rows) ([]models.Score, error) {
	defer rows.Close()
	var out []models.Score
	for rows.Next() {
		var s models.Score
		if err := rows.Scan(&s.ID, &s.SubmissionID, &s.SeatID, &s.CriterionID, &s.ScoreValue, &s.Comment, &s.Phase, &s.SubmittedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("database: scan score row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
