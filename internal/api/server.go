// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/middleware"
	"github.com/tomtom215/bbqcomp/internal/services"
)

// Server holds the wired services and token manager behind the router.
type Server struct {
	svc *services.Services
	jwt *auth.Manager

	// ready reports whether the backing store is reachable; wired by
	// cmd/server to the database ping.
	ready func() error
}

// NewServer builds a Server. readyCheck may be nil for tests.
func NewServer(svc *services.Services, jwt *auth.Manager, readyCheck func() error) *Server {
	return &Server{svc: svc, jwt: jwt, ready: readyCheck}
}

// Routes assembles the full route tree.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.AuditMeta)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Device-Fingerprint", "Idempotency-Key"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Get("/health/ready", s.handleHealthReady)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/auth/login", s.handleLogin)
	r.Post("/auth/seat-token", s.handleSeatToken)

	// User-token endpoints.
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(modeUser))
		r.Post("/auth/refresh", s.handleRefresh)
		r.Get("/auth/me", s.handleMe)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", s.handleListUsers)
			r.Post("/", s.handleCreateUser)
			r.Delete("/{id}", s.handleDeleteUser)
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Post("/", s.handleCreateEvent)
			r.Get("/{eventId}", s.handleGetEvent)
			r.Patch("/{eventId}", s.handleUpdateEvent)
			r.Delete("/{eventId}", s.handleDeleteEvent)
			r.Post("/{eventId}/status", s.handleEventStatus)

			r.Get("/{eventId}/tables", s.handleListTables)
			r.Post("/{eventId}/tables", s.handleCreateTables)
			r.Get("/{eventId}/categories", s.handleListCategories)
			r.Post("/{eventId}/categories", s.handleCreateCategories)
			r.Get("/{eventId}/criteria", s.handleListCriteria)
			r.Post("/{eventId}/criteria", s.handleCreateCriteria)
			r.Get("/{eventId}/teams", s.handleListTeams)
			r.Post("/{eventId}/teams", s.handleCreateTeams)
		})

		r.Route("/tables", func(r chi.Router) {
			r.Get("/{id}", s.handleGetTable)
			r.Patch("/{id}", s.handleUpdateTable)
			r.Delete("/{id}", s.handleDeleteTable)
			r.Post("/{id}/regenerate-token", s.handleRegenerateTableToken)
			r.Get("/{id}/seats", s.handleListSeats)
			r.Post("/{id}/seats", s.handleCreateSeat)
		})
		r.Delete("/seats/{id}", s.handleDeleteSeat)

		r.Route("/categories", func(r chi.Router) {
			r.Get("/{categoryId}", s.handleGetCategory)
			r.Patch("/{categoryId}", s.handleUpdateCategory)
			r.Delete("/{categoryId}", s.handleDeleteCategory)
			r.Get("/{categoryId}/submissions", s.handleListSubmissionsByCategory)
			r.Post("/{categoryId}/assignment-plan", s.handleAssignmentPlan)
		})

		r.Route("/criteria", func(r chi.Router) {
			r.Get("/{id}", s.handleGetCriterion)
			r.Patch("/{id}", s.handleUpdateCriterion)
			r.Delete("/{id}", s.handleDeleteCriterion)
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/{id}", s.handleGetTeam)
			r.Patch("/{id}", s.handleUpdateTeam)
			r.Delete("/{id}", s.handleDeleteTeam)
			r.Post("/{id}/invalidate-code", s.handleInvalidateTeamCode)
			r.Get("/{id}/submissions", s.handleListSubmissionsByTeam)
		})

		r.Route("/submissions", func(r chi.Router) {
			r.Post("/", s.handleCreateSubmission)
			r.Get("/{id}", s.handleGetSubmission)
			r.Delete("/{id}", s.handleDeleteSubmission)
			r.Post("/{id}/turn-in", s.handleSubmissionTransition)
			r.Post("/{id}/start-judging", s.handleSubmissionTransition)
			r.Post("/{id}/mark-scored", s.handleSubmissionTransition)
			r.Post("/{id}/finalize", s.handleSubmissionTransition)
		})
	})

	// Endpoints open to both principal kinds.
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(modeEither))
		r.Post("/teams/verify-barcode", s.handleVerifyBarcode)

		r.Get("/submissions/{id}/scores", s.handleListScores)
		r.Post("/submissions/{id}/scores", s.handleCreateScore)
		r.Get("/scores/{id}", s.handleGetScore)
		r.Patch("/scores/{id}", s.handleUpdateScore)
		r.Delete("/scores/{id}", s.handleDeleteScore)

		r.Get("/submissions/{id}/result", s.handleSubmissionResult)
		r.Get("/events/{eventId}/results", s.handleEventResults)
		r.Get("/events/{eventId}/categories/{categoryId}/results", s.handleCategoryResults)

		r.Get("/audit-logs", s.handleListAuditLogs)
		r.Get("/audit-logs/{id}", s.handleGetAuditLog)
		r.Get("/events/{eventId}/audit-logs", s.handleListAuditLogs)
	})

	// Seat-token endpoints.
	r.Group(func(r chi.Router) {
		r.Use(s.authenticate(modeSeat))
		r.Get("/categories/{categoryId}/tables/{tableId}/seats/{seatId}/next", s.handleNextForSeat)
	})

	return r
}

// includeDeletedFlag reads the admin-only query flag; the services gate
// who it is honored for.
func includeDeletedFlag(r *http.Request) bool {
	return r.URL.Query().Get("include_deleted") == "true"
}

// pageParams reads page/pageSize with sane bounds.
func pageParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}
	return page, pageSize
}
