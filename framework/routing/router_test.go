package routing_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-ioc/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func do(t *testing.T, router http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

// ── HTTP verbs ────────────────────────────────────────────────────────────────

func TestRouter_Verbs(t *testing.T) {
	r := routing.New(nil)
	r.Get("/cats", okHandler)
	r.Post("/cats", okHandler)

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/cats", http.StatusOK},
		{http.MethodPost, "/cats", http.StatusOK},
		{http.MethodPut, "/cats", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		if rr := do(t, r, tt.method, tt.path); rr.Code != tt.want {
			t.Errorf("%s %s: got %d want %d", tt.method, tt.path, rr.Code, tt.want)
		}
	}
}

func TestRouter_NotFound(t *testing.T) {
	r := routing.New(nil)
	rr := do(t, r, http.MethodGet, "/not-registered")
	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rr.Code)
	}
}

func TestRouter_Param(t *testing.T) {
	r := routing.New(nil)
	r.Get("/cats/{id}", func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(routing.Param(req, "id")))
	})

	rr := do(t, r, http.MethodGet, "/cats/42")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d want 200", rr.Code)
	}
	if rr.Body.String() != "42" {
		t.Errorf("got body %q want %q", rr.Body.String(), "42")
	}
}

// ── Prefix / Mount ───────────────────────────────────────────────────

func TestRouter_Prefix(t *testing.T) {
	r := routing.New(nil)
	r.Prefix("/api/v1", func(api *routing.Router) {
		api.Get("/cats", okHandler)
	})

	if rr := do(t, r, http.MethodGet, "/api/v1/cats"); rr.Code != http.StatusOK {
		t.Errorf("GET /api/v1/cats: got %d want 200", rr.Code)
	}
	if rr := do(t, r, http.MethodGet, "/cats"); rr.Code != http.StatusNotFound {
		t.Errorf("GET /cats: expected 404, got %d", rr.Code)
	}
}

func TestRouter_Prefix_Middleware(t *testing.T) {
	called := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	r := routing.New(nil)
	r.Get("/open", okHandler)
	r.Prefix("/admin", func(g *routing.Router) {
		g.Middleware(mw)
		g.Get("/protected", okHandler)
	})

	do(t, r, http.MethodGet, "/open")
	if called {
		t.Error("middleware ran outside its prefix")
	}
	do(t, r, http.MethodGet, "/admin/protected")
	if !called {
		t.Error("expected middleware to be called")
	}
}

func TestRouter_Mount(t *testing.T) {
	r := routing.New(nil)
	r.Mount("/metrics", http.HandlerFunc(okHandler))

	if rr := do(t, r, http.MethodGet, "/metrics"); rr.Code != http.StatusOK {
		t.Errorf("GET /metrics: got %d want 200", rr.Code)
	}
}

func TestRouter_Routes(t *testing.T) {
	r := routing.New(nil)
	r.Get("/cats", okHandler)
	r.Post("/cats", okHandler)

	routes := r.Routes()
	if len(routes) != 2 {
		t.Fatalf("got %d routes want 2: %v", len(routes), routes)
	}
	if routes[0] != "GET /cats" && routes[1] != "GET /cats" {
		t.Errorf("GET /cats missing from %v", routes)
	}
}

// ── Logging / recovery ───────────────────────────────────────────────────────

func TestRouter_LogsRequests(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := routing.New(zap.New(core))
	r.Get("/cats", okHandler)

	do(t, r, http.MethodGet, "/cats")

	entries := logs.FilterMessage("request").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["path"] != "/cats" || fields["status"] != int64(200) {
		t.Errorf("unexpected fields: %v", fields)
	}
	if fields["request_id"] == "" {
		t.Error("expected a request id")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	r := routing.New(nil)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	if rr := do(t, r, http.MethodGet, "/boom"); rr.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rr.Code)
	}
}
