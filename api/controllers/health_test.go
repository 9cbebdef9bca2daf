package controllers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/graingrove-backend/pkg/config"
	"github.com/angelmondragon/graingrove-backend/pkg/logger"
)

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}
	rec := httptest.NewRecorder()
	HealthLive(cfg).ServeHTTP(rec, newRequest(http.MethodGet, "/health/live", "", ""))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-GrainGrove-Env") != "dev" {
		t.Fatalf("expected env header, got %q", rec.Header().Get("X-GrainGrove-Env"))
	}
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), stubPinger{}, stubPinger{}).ServeHTTP(rec, newRequest(http.MethodGet, "/health/ready", "", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, logger.Nop(), stubPinger{}, stubPinger{err: errors.New("dial tcp: refused")}).
		ServeHTTP(rec, newRequest(http.MethodGet, "/health/ready", "", ""))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Error == nil || env.Error.Details["redis"] != "unavailable" || env.Error.Details["database"] != "ok" {
		t.Fatalf("unexpected error payload %+v", env.Error)
	}
}
