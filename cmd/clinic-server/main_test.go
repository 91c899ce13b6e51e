package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
)

func TestBuildRepositories_Memory(t *testing.T) {
	cfg := &config.Config{StorageBackend: "memory"}

	repos, err := buildRepositories(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repos.appointments == nil || repos.blocks == nil || repos.patients == nil ||
		repos.physicians == nil || repos.documents == nil {
		t.Error("expected all repositories to be populated")
	}
}

func TestBuildRepositories_Remote(t *testing.T) {
	cfg := &config.Config{StorageBackend: "remote", RemoteAPIURL: "http://localhost:9999"}

	repos, err := buildRepositories(cfg, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repos.appointments == nil {
		t.Error("expected a remote appointment repository")
	}
}

func TestBuildRepositories_PostgresWithoutPool(t *testing.T) {
	cfg := &config.Config{StorageBackend: "postgres"}

	if _, err := buildRepositories(cfg, nil); err == nil {
		t.Error("expected error for postgres backend without a pool")
	}
}

func TestBuildRepositories_Unknown(t *testing.T) {
	cfg := &config.Config{StorageBackend: "cassandra"}

	if _, err := buildRepositories(cfg, nil); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestNewRouter_Health(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: "memory",
		AuthMode:       "development",
		Env:            "development",
	}
	repos, err := buildRepositories(cfg, nil)
	if err != nil {
		t.Fatalf("buildRepositories: %v", err)
	}

	e, svc := newRouter(cfg, zerolog.Nop(), nil, repos)
	if svc == nil {
		t.Fatal("expected a scheduling service")
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestNewRouter_ProtectedRouteRequiresAuth(t *testing.T) {
	cfg := &config.Config{
		StorageBackend: "memory",
		AuthMode:       "external",
		AuthIssuer:     "https://auth.example.com",
	}
	repos, err := buildRepositories(cfg, nil)
	if err != nil {
		t.Fatalf("buildRepositories: %v", err)
	}

	e, _ := newRouter(cfg, zerolog.Nop(), nil, repos)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without a token, got %d", rec.Code)
	}
}

func TestNextWeekday(t *testing.T) {
	// Saturday 2026-03-07 rolls to Monday 2026-03-09.
	sat := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	got := nextWeekday(sat)
	if got.Weekday() != time.Monday {
		t.Errorf("expected Monday, got %s", got.Weekday())
	}

	// A Wednesday stays put.
	wed := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	if !nextWeekday(wed).Equal(wed) {
		t.Error("weekday input should be returned unchanged")
	}
}
