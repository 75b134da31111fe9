package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/database"
)

type fixedCounter int

func (c fixedCounter) ClientCount() int { return int(c) }

func TestHealthHandler(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "health.db"),
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer db.Close()

	rec := httptest.NewRecorder()
	NewHealthHandler(db, nil, fixedCounter(3)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/server/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp.Status != "healthy" || resp.Database != "connected" || resp.Redis != "disabled" || resp.EventSubscribers != 3 {
		t.Errorf("Unexpected health response %+v", resp)
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	db, err := database.Open(config.DatabaseConfig{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "health.db"),
	})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	db.Close()

	rec := httptest.NewRecorder()
	NewHealthHandler(db, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/server/health", nil))

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if resp.Status != "degraded" || resp.Database != "disconnected" {
		t.Errorf("Expected degraded status, got %+v", resp)
	}
}
