package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("allowed origin gets headers", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"http://localhost:5173"}, next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
			t.Fatalf("expected allow-origin header, got %q", got)
		}
		if got := rec.Header().Get("Vary"); got != "Origin" {
			t.Fatalf("expected Vary: Origin, got %q", got)
		}
	})

	t.Run("preflight for allowed origin", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"http://localhost:5173"}, next)
		req := httptest.NewRequest(http.MethodOptions, "/bookings", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected 204, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Methods"); got == "" {
			t.Fatal("expected allow-methods header on preflight")
		}
	})

	t.Run("preflight for unknown origin is rejected", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"http://localhost:5173"}, next)
		req := httptest.NewRequest(http.MethodOptions, "/bookings", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("unknown origin on plain request passes through without headers", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"http://localhost:5173"}, next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Origin", "http://evil.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Fatalf("expected no allow-origin header, got %q", got)
		}
	})

	t.Run("wildcard allows any origin", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"*"}, next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Fatalf("expected *, got %q", got)
		}
	})

	t.Run("no origin header skips CORS handling", func(t *testing.T) {
		t.Parallel()
		handler := CORS([]string{"http://localhost:5173"}, next)
		req := httptest.NewRequest(http.MethodGet, "/bookings", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}
