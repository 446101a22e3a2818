// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads application configuration from environment
// variables via Koanf v2: compiled-in defaults first, then environment
// overrides on top.
package config

import (
	"fmt"
	"strings"
	"time"
)

// DatabaseConfig configures the relational store connection (internal/database).
type DatabaseConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Username          string        `koanf:"username"`
	Password          string        `koanf:"password"`
	Name              string        `koanf:"name"`
	SSL               bool          `koanf:"ssl"`
	PoolSize          int           `koanf:"pool_size"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ConnectionTimeout time.Duration `koanf:"connection_timeout"`
	Logging           bool          `koanf:"logging"`
	Synchronize       bool          `koanf:"synchronize"`
}

// SecurityConfig configures JWT issuance and the team barcode HMAC secret.
type SecurityConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	JWTExpiresIn  time.Duration `koanf:"jwt_expires_in"`
	BarcodeSecret string        `koanf:"barcode_secret"`
	SeatTokenTTL  time.Duration `koanf:"seat_token_ttl"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port int `koanf:"port"`
}

// BootstrapConfig seeds the first admin account on an empty user table.
// Both fields empty disables bootstrap.
type BootstrapConfig struct {
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`
}

// Config is the top-level application configuration.
type Config struct {
	Database  DatabaseConfig  `koanf:"db"`
	Security  SecurityConfig  `koanf:"security"`
	Server    ServerConfig    `koanf:"server"`
	Bootstrap BootstrapConfig `koanf:"bootstrap"`
	NodeEnv   string          `koanf:"node_env"`
	LogLevel  string          `koanf:"log_level"`
}

func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:              "localhost",
			Port:              5432,
			Name:              "bbqcomp",
			PoolSize:          10,
			IdleTimeout:       5 * time.Minute,
			ConnectionTimeout: 10 * time.Second,
		},
		Security: SecurityConfig{
			JWTExpiresIn: 24 * time.Hour,
			SeatTokenTTL: 90 * time.Minute,
		},
		Server: ServerConfig{
			Port: 8080,
		},
		NodeEnv:  "development",
		LogLevel: "info",
	}
}

// Validate enforces the minimum preconditions this module's security
// components need to start safely.
func (c *Config) Validate() error {
	if len(c.Security.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.Security.BarcodeSecret == "" {
		return fmt.Errorf("BARCODE_SECRET is required")
	}
	if c.Database.PoolSize <= 0 {
		return fmt.Errorf("DB_POOL_SIZE must be positive")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("DB_PORT must be in range [1,65535]")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("PORT must be in range [1,65535]")
	}
	return nil
}

// envTransformFunc maps SCREAMING_SNAKE environment variable names onto
// the Config struct's dotted koanf paths, e.g. DB_POOL_SIZE -> db.pool_size,
// JWT_SECRET -> security.jwt_secret.
func envTransformFunc(key string) string {
	mapped, ok := envKeyOverrides[key]
	if ok {
		return mapped
	}
	return strings.ToLower(key)
}

var envKeyOverrides = map[string]string{
	"DB_HOST":               "db.host",
	"DB_PORT":               "db.port",
	"DB_USERNAME":           "db.username",
	"DB_PASSWORD":           "db.password",
	"DB_NAME":               "db.name",
	"DB_SSL":                "db.ssl",
	"DB_POOL_SIZE":          "db.pool_size",
	"DB_IDLE_TIMEOUT":       "db.idle_timeout",
	"DB_CONNECTION_TIMEOUT": "db.connection_timeout",
	"DB_LOGGING":            "db.logging",
	"DB_SYNCHRONIZE":        "db.synchronize",
	"JWT_SECRET":            "security.jwt_secret",
	"JWT_EXPIRES_IN":        "security.jwt_expires_in",
	"BARCODE_SECRET":        "security.barcode_secret",
	"PORT":                  "server.port",
	"ADMIN_USERNAME":        "bootstrap.admin_username",
	"ADMIN_PASSWORD":        "bootstrap.admin_password",
	"NODE_ENV":              "node_env",
	"LOG_LEVEL":             "log_level",
}
