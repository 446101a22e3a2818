// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "testing"

func TestLoad_FailsWithoutRequiredSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("BARCODE_SECRET", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when JWT_SECRET/BARCODE_SECRET are unset")
	}
}

func TestLoad_AppliesEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "01234567890123456789012345678901")
	t.Setenv("BARCODE_SECRET", "supersecretbarcodekey")
	t.Setenv("DB_HOST", "db.example.internal")
	t.Setenv("DB_PORT", "6000")
	t.Setenv("PORT", "9090")
	t.Setenv("NODE_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "db.example.internal" {
		t.Errorf("DB_HOST not applied, got %q", cfg.Database.Host)
	}
	if cfg.Database.Port != 6000 {
		t.Errorf("DB_PORT not applied, got %d", cfg.Database.Port)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("PORT not applied, got %d", cfg.Server.Port)
	}
	if cfg.NodeEnv != "production" {
		t.Errorf("NODE_ENV not applied, got %q", cfg.NodeEnv)
	}
	// Defaults survive where no override was set.
	if cfg.Database.Name != "bbqcomp" {
		t.Errorf("expected default DB name to survive, got %q", cfg.Database.Name)
	}
}

func TestConfig_ValidateRejectsShortJWTSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "tooshort"
	cfg.Security.BarcodeSecret = "x"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for short JWT secret")
	}
}

func TestConfig_ValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.JWTSecret = "01234567890123456789012345678901"
	cfg.Security.BarcodeSecret = "x"
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid server port")
	}
}
