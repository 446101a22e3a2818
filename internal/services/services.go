// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package services implements the domain operations behind the HTTP
// surface: CRUD with invariants for every entity, the judging and results
// orchestrations, and authentication. Services depend only on the
// repository interfaces, the audit store, and the pure-logic leaf
// packages (barcode, seating, scoring, statemachine); the transport layer
// (internal/api) maps their typed errors onto the response envelope.
package services

import (
	"time"

	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/repository"
)

// Repos bundles one repository per entity. cmd/server wires these from
// internal/database; tests wire them from internal/repository/memory.
type Repos struct {
	Events      repository.EventRepository
	Tables      repository.TableRepository
	Seats       repository.SeatRepository
	Categories  repository.CategoryRepository
	Criteria    repository.CriterionRepository
	Teams       repository.TeamRepository
	Submissions repository.SubmissionRepository
	Scores      repository.ScoreRepository
	Users       repository.UserRepository
}

// Services is the full domain service surface, one field per component.
type Services struct {
	Events      *EventService
	Tables      *TableService
	Seats       *SeatService
	Categories  *CategoryService
	Criteria    *CriterionService
	Teams       *TeamService
	Submissions *SubmissionService
	Scores      *ScoreService
	Results     *ResultsService
	Judging     *JudgingService
	Auth        *AuthService
	Audit       *AuditService
	Users       *UserService
}

// Config carries the immutable secrets and knobs services need beyond
// their repositories.
type Config struct {
	BarcodeSecret string
	JWTExpiresIn  time.Duration
	SeatTokenTTL  time.Duration
}

// New wires every service over the given repositories, audit store, and
// authorization enforcer. auditStore should already be wrapped by
// audit.NewStore so old/new values are sanitized before persistence.
func New(repos Repos, auditStore audit.Store, enforcer *authz.Enforcer, jwt *auth.Manager, cfg Config) *Services {
	rec := &recorder{store: auditStore}
	s := &Services{}
	s.Events = &EventService{repos: repos, authz: enforcer, rec: rec}
	s.Tables = &TableService{repos: repos, authz: enforcer, rec: rec}
	s.Seats = &SeatService{repos: repos, authz: enforcer, rec: rec}
	s.Categories = &CategoryService{repos: repos, authz: enforcer, rec: rec}
	s.Criteria = &CriterionService{repos: repos, authz: enforcer, rec: rec}
	s.Teams = &TeamService{repos: repos, authz: enforcer, rec: rec, barcodeSecret: cfg.BarcodeSecret}
	s.Submissions = &SubmissionService{repos: repos, authz: enforcer, rec: rec}
	s.Scores = &ScoreService{repos: repos, authz: enforcer, rec: rec}
	s.Results = &ResultsService{repos: repos, authz: enforcer}
	s.Judging = &JudgingService{repos: repos, authz: enforcer}
	s.Auth = &AuthService{repos: repos, jwt: jwt, expiresIn: cfg.JWTExpiresIn, seatTTL: cfg.SeatTokenTTL}
	s.Audit = &AuditService{store: auditStore, authz: enforcer}
	s.Users = &UserService{repos: repos, authz: enforcer, rec: rec}
	return s
}

// includeDeleted honors the admin-only include_deleted read flag: any
// non-admin asking for deleted rows silently gets live rows only.
func includeDeleted(actor authz.Principal, requested bool) bool {
	return requested && actor.IsAdmin()
}
