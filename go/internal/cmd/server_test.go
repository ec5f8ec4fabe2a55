package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcdev12/guessword/go/internal/config"
	"github.com/mcdev12/guessword/go/internal/words"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.AllowedOrigins = []string{"http://game.example"}

	services := setupServices(context.Background(), cfg, words.NewBank([]string{"APPLE"}))
	services.Start(context.Background())
	t.Cleanup(func() { services.Shutdown(context.Background()) })

	return setupServer(cfg, services).Handler
}

func TestWelcome(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["message"] != welcomeMessage {
		t.Errorf("message = %q", body["message"])
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	body, _ := io.ReadAll(rec.Body)
	if rec.Code != http.StatusOK || string(body) != "OK" {
		t.Errorf("got %d %q, want 200 OK", rec.Code, body)
	}
}

func TestCORS(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
	req.Header.Set("Origin", "http://game.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://game.example" {
		t.Errorf("allowed origin header = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/game/state", nil)
	req.Header.Set("Origin", "http://other.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin got allow header %q", got)
	}
}
