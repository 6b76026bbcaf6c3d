package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddlewareDisabledAllowsEverything(t *testing.T) {
	h := Middleware(Config{Enabled: false})(okHandler())
	req := httptest.NewRequest("GET", "/api/v1/runs/abc", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	h := Middleware(Config{Enabled: true, Token: "secret"})(okHandler())
	req := httptest.NewRequest("POST", "/api/v1/runs", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestMiddlewareAcceptsCorrectBearerToken(t *testing.T) {
	h := Middleware(Config{Enabled: true, Token: "secret"})(okHandler())
	req := httptest.NewRequest("POST", "/api/v1/runs", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestMiddlewareExemptsHealthAndExportPaths(t *testing.T) {
	h := Middleware(Config{Enabled: true, Token: "secret"})(okHandler())

	for _, path := range []string{"/healthz", "/readyz", "/metrics", "/api/v1/runs/abc-123/territory.csv", "/api/v1/runs/abc-123/poi.csv"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Errorf("path %q: status = %d, want %d", path, w.Code, http.StatusOK)
		}
	}
}

func TestMiddlewareDoesNotExemptRunStatusPath(t *testing.T) {
	h := Middleware(Config{Enabled: true, Token: "secret"})(okHandler())
	req := httptest.NewRequest("GET", "/api/v1/runs/abc-123", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
