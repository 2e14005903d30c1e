package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRouter_RoutesExist(t *testing.T) {
	router, _, _ := newTestRouter(t)

	routes := router.Routes()
	expectedRoutes := map[string]string{
		"GET /health":         "health",
		"GET /api/users/":     "list",
		"POST /api/users/":    "create",
		"OPTIONS /api/users/": "preflight",
		"GET /api/users":      "list alias",
		"POST /api/users":     "create alias",
		"OPTIONS /api/users":  "preflight alias",
		"GET /swagger/*any":   "swagger",
	}

	found := make(map[string]bool)
	for _, r := range routes {
		key := r.Method + " " + r.Path
		if _, ok := expectedRoutes[key]; ok {
			found[key] = true
		}
	}

	for key, desc := range expectedRoutes {
		if !found[key] {
			t.Errorf("missing route %s (%s)", key, desc)
		}
	}
}

func TestNewRouter_NoUserMutationRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, r := range router.Routes() {
		if r.Method == http.MethodPut || r.Method == http.MethodDelete || r.Method == http.MethodPatch {
			t.Errorf("unexpected route %s %s", r.Method, r.Path)
		}
	}
}

func TestNewRouter_CorrelationIDEchoed(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodOptions, "/api/users/", nil)
	req.Header.Set("X-Correlation-ID", "corr-echo")
	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Correlation-ID"); got != "corr-echo" {
		t.Errorf("expected correlation id to be echoed, got %q", got)
	}
}

func TestNewRouter_UnknownPathStillCarriesCORS(t *testing.T) {
	router, _, _ := newTestRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/nope", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected CORS header on 404, got %q", got)
	}
}
