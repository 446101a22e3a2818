// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package models defines the entity types persisted by the BBQ competition
// platform: events, their judging topology (tables/seats), categories,
// criteria, teams, submissions, scores, users, and audit log rows.
package models

import "time"

// EventStatus is the lifecycle state of an Event (see internal/statemachine).
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventActive    EventStatus = "active"
	EventFinalized EventStatus = "finalized"
	EventArchived  EventStatus = "archived"
)

// AggregationMethod selects how per-judge scores are reduced to a single
// criterion value (see internal/scoring).
type AggregationMethod string

const (
	AggregationMean        AggregationMethod = "mean"
	AggregationTrimmedMean AggregationMethod = "trimmed_mean"
)

// Event is a single competition instance with its own scoring scale and
// aggregation method. It is the root of every event-scoped entity below.
type Event struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Date              time.Time         `json:"date"`
	Location          string            `json:"location,omitempty"`
	Status            EventStatus       `json:"status"`
	ScoringScaleMin   float64           `json:"scoring_scale_min"`
	ScoringScaleMax   float64           `json:"scoring_scale_max"`
	ScoringScaleStep  float64           `json:"scoring_scale_step"`
	AggregationMethod AggregationMethod `json:"aggregation_method"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	DeletedAt         *time.Time        `json:"deleted_at,omitempty"`
}

// Table is a physical judging table belonging to an Event.
type Table struct {
	ID          string     `json:"id"`
	EventID     string     `json:"event_id"`
	TableNumber int        `json:"table_number"`
	QRToken     string     `json:"qr_token"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// Seat is one judge position at a Table.
type Seat struct {
	ID         string     `json:"id"`
	TableID    string     `json:"table_id"`
	SeatNumber int        `json:"seat_number"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty"`
}

// Category is a meat class (e.g. Brisket) within an Event.
type Category struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Name      string     `json:"name"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Criterion is a scoring dimension (e.g. Taste) with a numeric weight.
type Criterion struct {
	ID        string     `json:"id"`
	EventID   string     `json:"event_id"`
	Name      string     `json:"name"`
	Weight    float64    `json:"weight"`
	SortOrder int        `json:"sort_order"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// Team is a competitor within an Event, identified at check-in by its
// HMAC-signed barcode (see internal/barcode).
type Team struct {
	ID                string     `json:"id"`
	EventID           string     `json:"event_id"`
	Name              string     `json:"name"`
	TeamNumber        int        `json:"team_number"`
	BarcodePayload    string     `json:"barcode_payload"`
	CodeInvalidatedAt *time.Time `json:"code_invalidated_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	DeletedAt         *time.Time `json:"deleted_at,omitempty"`
}

// SubmissionStatus is the lifecycle state of a Submission (see internal/statemachine).
type SubmissionStatus string

const (
	SubmissionPending     SubmissionStatus = "pending"
	SubmissionTurnedIn    SubmissionStatus = "turned_in"
	SubmissionBeingJudged SubmissionStatus = "being_judged"
	SubmissionScored      SubmissionStatus = "scored"
	SubmissionFinalized   SubmissionStatus = "finalized"
)

// Submission is a Team's entry in a Category.
type Submission struct {
	ID          string           `json:"id"`
	TeamID      string           `json:"team_id"`
	CategoryID  string           `json:"category_id"`
	Status      SubmissionStatus `json:"status"`
	TurnedInAt  *time.Time       `json:"turned_in_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   *time.Time       `json:"deleted_at,omitempty"`
}

// ScorePhase distinguishes the visual pass from the sensory pass.
type ScorePhase string

const (
	PhaseAppearance   ScorePhase = "appearance"
	PhaseTasteTexture ScorePhase = "taste_texture"
)

// Score is one judge's rating of one criterion on one submission.
type Score struct {
	ID           string     `json:"id"`
	SubmissionID string     `json:"submission_id"`
	SeatID       string     `json:"seat_id"`
	CriterionID  string     `json:"criterion_id"`
	ScoreValue   float64    `json:"score_value"`
	Comment      string     `json:"comment,omitempty"`
	Phase        ScorePhase `json:"phase"`
	SubmittedAt  time.Time  `json:"submitted_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// UserRole is the role carried by a User JWT.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOperator UserRole = "operator"
)

// User is an operator-console principal (as opposed to a per-seat judge
// token minted from a table's qr_token, see internal/auth).
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         UserRole   `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}
