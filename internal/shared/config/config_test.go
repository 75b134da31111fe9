package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_GalaxyOverrides(t *testing.T) {
	t.Setenv("GALAXY_SCALE_RADIUS", "2.5")
	t.Setenv("GALAXY_BODY_COUNT", "64")
	t.Setenv("GALAXY_CACHE_TTL_MINUTES", "3")
	t.Setenv("GALAXY_CUTOFF", "not-a-number")

	cfg := Load()

	if cfg.Galaxy.ScaleRadius != 2.5 {
		t.Errorf("Expected scale radius 2.5, got %f", cfg.Galaxy.ScaleRadius)
	}
	if cfg.Galaxy.BodyCount != 64 {
		t.Errorf("Expected body count 64, got %d", cfg.Galaxy.BodyCount)
	}
	if cfg.Galaxy.CacheTTL != 3*time.Minute {
		t.Errorf("Expected cache TTL 3m, got %v", cfg.Galaxy.CacheTTL)
	}
	if cfg.Galaxy.Cutoff != 10.0 {
		t.Errorf("Expected malformed cutoff to fall back to 10, got %f", cfg.Galaxy.Cutoff)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Load()
		cfg.Auth.Enabled = true
		cfg.Auth.JWTSecret = strings.Repeat("s", 32)
		cfg.Database.Driver = "sqlite3"
		cfg.Database.Path = "galaxies.db"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWTSecret = "" }, "JWT_SECRET is required"},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32"},
		{"auth disabled", func(c *Config) { c.Auth.Enabled = false; c.Auth.JWTSecret = "" }, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "unsupported DB_DRIVER"},
		{"zero body count", func(c *Config) { c.Galaxy.BodyCount = 0 }, "GALAXY_BODY_COUNT"},
		{"max below default", func(c *Config) { c.Galaxy.MaxBodies = c.Galaxy.BodyCount - 1 }, "GALAXY_MAX_BODIES"},
		{"preview max below default", func(c *Config) { c.Galaxy.MaxPreviewBodies = c.Galaxy.BodyCount - 1 }, "GALAXY_MAX_PREVIEW_BODIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	pg := DatabaseConfig{Driver: "postgres", Host: "db", Port: "5432", User: "u", Password: "p", Name: "g", SSLMode: "disable"}
	if got := pg.DSN(); got != "host=db port=5432 user=u password=p dbname=g sslmode=disable" {
		t.Errorf("Unexpected postgres DSN %q", got)
	}

	lite := DatabaseConfig{Driver: "sqlite3", Path: "data/g.db", MigrationsPath: "migrations"}
	if got := lite.DSN(); !strings.HasPrefix(got, "file:data/g.db?") {
		t.Errorf("Unexpected sqlite DSN %q", got)
	}
	if got := lite.MigrationsDir(); got != "migrations/sqlite3" {
		t.Errorf("Unexpected migrations dir %q", got)
	}
}
