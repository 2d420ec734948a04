package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required JWT_SECRET
	os.Setenv("JWT_SECRET", "test-secret-key")
	defer os.Unsetenv("JWT_SECRET")

	// Clear any other env vars that might interfere
	envVars := []string{"SERVER_ADDR", "SERVER_PORT", "DATA_DIR", "JWT_ISSUER", "SESSION_TOKEN_TTL", "RATE_LIMIT_ENABLED", "RATE_LIMIT_LOGIN_REQUESTS", "RATE_LIMIT_LOGIN_WINDOW"}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DataDir != "tenant_shards" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "tenant_shards")
	}
	if cfg.JWTIssuer != "fleettenant" {
		t.Errorf("JWTIssuer = %q, want %q", cfg.JWTIssuer, "fleettenant")
	}
	if cfg.SessionTokenTTL != 24*time.Hour {
		t.Errorf("SessionTokenTTL = %v, want %v", cfg.SessionTokenTTL, 24*time.Hour)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = false, want true")
	}
	if cfg.RateLimit.LoginRequests != 10 {
		t.Errorf("RateLimit.LoginRequests = %d, want 10", cfg.RateLimit.LoginRequests)
	}
	if cfg.RateLimit.LoginWindow != time.Minute {
		t.Errorf("RateLimit.LoginWindow = %v, want %v", cfg.RateLimit.LoginWindow, time.Minute)
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	if _, err := Load(); err == nil {
		t.Error("Load without JWT_SECRET succeeded, want error")
	}
}

func TestLoad_Overrides(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-key")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DATA_DIR", "/var/lib/fleettenant/shards")
	os.Setenv("SESSION_TOKEN_TTL", "2h")
	os.Setenv("RATE_LIMIT_ENABLED", "false")
	defer func() {
		for _, v := range []string{"JWT_SECRET", "SERVER_PORT", "DATA_DIR", "SESSION_TOKEN_TTL", "RATE_LIMIT_ENABLED"} {
			os.Unsetenv(v)
		}
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want 9090", cfg.ServerPort)
	}
	if cfg.DataDir != "/var/lib/fleettenant/shards" {
		t.Errorf("DataDir = %q, want override", cfg.DataDir)
	}
	if cfg.SessionTokenTTL != 2*time.Hour {
		t.Errorf("SessionTokenTTL = %v, want 2h", cfg.SessionTokenTTL)
	}
	if cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = true, want false")
	}
}
