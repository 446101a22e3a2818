// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main is the entry point for the bbqcomp server.
//
// The server is designed for a single laptop running at a competition
// site with no internet access: one process, one embedded DuckDB file,
// all configuration from the environment.
//
// Startup order:
//
//  1. Configuration (Koanf v2, environment variables only)
//  2. Logging (zerolog, level from LOG_LEVEL)
//  3. Database (DuckDB file named by DB_NAME, schema migrated in place)
//  4. Authorization enforcer (embedded Casbin model and policy)
//  5. Services and first-run admin bootstrap (ADMIN_USERNAME/ADMIN_PASSWORD)
//  6. HTTP server (chi) with graceful shutdown on SIGINT/SIGTERM
//
// Minimum environment for a first run:
//
//	export JWT_SECRET=$(openssl rand -hex 32)
//	export BARCODE_SECRET=$(openssl rand -hex 32)
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=change-me-soon
//	./bbqcomp
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/bbqcomp/internal/api"
	"github.com/tomtom215/bbqcomp/internal/audit"
	"github.com/tomtom215/bbqcomp/internal/auth"
	"github.com/tomtom215/bbqcomp/internal/authz"
	"github.com/tomtom215/bbqcomp/internal/config"
	"github.com/tomtom215/bbqcomp/internal/database"
	"github.com/tomtom215/bbqcomp/internal/logging"
	"github.com/tomtom215/bbqcomp/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	format := "json"
	if cfg.NodeEnv == "development" {
		format = "console"
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: format})

	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logging.Error().Err(cerr).Msg("close database")
		}
	}()

	enforcer, err := authz.NewEnforcer()
	if err != nil {
		return err
	}
	jwt, err := auth.NewManager(&cfg.Security)
	if err != nil {
		return err
	}

	auditStore := audit.NewStore(audit.NewSQLStore(db.Conn()))
	repos := services.Repos{
		Events:      db.Events(),
		Tables:      db.Tables(),
		Seats:       db.Seats(),
		Categories:  db.Categories(),
		Criteria:    db.Criteria(),
		Teams:       db.Teams(),
		Submissions: db.Submissions(),
		Scores:      db.Scores(),
		Users:       db.Users(),
	}
	svc := services.New(repos, auditStore, enforcer, jwt, services.Config{
		BarcodeSecret: cfg.Security.BarcodeSecret,
		JWTExpiresIn:  cfg.Security.JWTExpiresIn,
		SeatTokenTTL:  cfg.Security.SeatTokenTTL,
	})

	if cfg.Bootstrap.AdminUsername != "" && cfg.Bootstrap.AdminPassword != "" {
		user, err := svc.Users.Bootstrap(context.Background(), cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if user != nil {
			logging.Info().Str("username", user.Username).Msg("bootstrapped first admin account")
		}
	}

	server := api.NewServer(svc, jwt, func() error { return db.Conn().Ping() })
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Int("port", cfg.Server.Port).Msg("http server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("shutting down")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
