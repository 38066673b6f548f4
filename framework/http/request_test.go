package http_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── helpers ──────────────────────────────────────────────────────────────────

func newJSONRequest(t *testing.T, body string) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return gohttp.NewRequest(req)
}

func newFormRequest(t *testing.T, values url.Values) *gohttp.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return gohttp.NewRequest(req)
}

type visitCounter struct{ n int }

func newScopedProvider(t *testing.T) *container.Provider {
	t.Helper()
	c := container.New()
	if err := c.AddScopedFactory(func() *visitCounter { return &visitCounter{} }); err != nil {
		t.Fatal(err)
	}
	p, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

// ── Bind ─────────────────────────────────────────────────────────────────────

func TestRequest_BindJSON(t *testing.T) {
	var cat struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}
	if err := newJSONRequest(t, `{"name":"Celine","age":3}`).Bind(&cat); err != nil {
		t.Fatalf("Bind error: %v", err)
	}
	if cat.Name != "Celine" || cat.Age != 3 {
		t.Errorf("got %+v", cat)
	}
}

func TestRequest_BindJSON_Errors(t *testing.T) {
	for _, body := range []string{"", "{bad json}"} {
		var v map[string]any
		if err := newJSONRequest(t, body).Bind(&v); err == nil {
			t.Errorf("Bind(%q): expected error", body)
		}
	}
}

func TestRequest_BindForm(t *testing.T) {
	var p struct {
		Name string `json:"name"`
	}
	if err := newFormRequest(t, url.Values{"name": {"Bob"}}).Bind(&p); err != nil {
		t.Fatalf("Bind form error: %v", err)
	}
	if p.Name != "Bob" {
		t.Errorf("Name: got %q want %q", p.Name, "Bob")
	}
}

// ── Input ────────────────────────────────────────────────────────────────────

func TestRequest_Input(t *testing.T) {
	req := newFormRequest(t, url.Values{"username": {"charlie"}, "empty": {""}})

	if got := req.Input("username"); got != "charlie" {
		t.Errorf("Input: got %q want %q", got, "charlie")
	}
	if got := req.Input("missing", "default"); got != "default" {
		t.Errorf("Input fallback: got %q want %q", got, "default")
	}
	if !req.Has("username") || req.Has("empty") || req.Has("missing") {
		t.Error("Has: unexpected result")
	}
}

func TestRequest_Query(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/?page=2", nil))

	if got := req.Query("page"); got != "2" {
		t.Errorf("Query page: got %q want %q", got, "2")
	}
	if got := req.Query("limit", "10"); got != "10" {
		t.Errorf("Query fallback: got %q want %q", got, "10")
	}
}

func TestRequest_RouteParam(t *testing.T) {
	r := routing.New(nil)
	var got string
	r.Get("/cats/{id}", func(w http.ResponseWriter, raw *http.Request) {
		got = gohttp.NewRequest(raw).RouteParam("id")
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cats/7", nil))

	if got != "7" {
		t.Errorf("RouteParam: got %q want 7", got)
	}
}

// ── Headers ──────────────────────────────────────────────────────────────────

func TestRequest_BearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer my-secret-token": "my-secret-token",
		"Basic dXNlcjpwYXNz":     "",
		"":                       "",
	}
	for header, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			r.Header.Set("Authorization", header)
		}
		if got := gohttp.NewRequest(r).BearerToken(); got != want {
			t.Errorf("BearerToken(%q): got %q want %q", header, got, want)
		}
	}
}

func TestRequest_IsJSON(t *testing.T) {
	if !newJSONRequest(t, `{}`).IsJSON() {
		t.Error("IsJSON should be true when Content-Type is application/json")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Accept", "application/json")
	if !gohttp.NewRequest(r).IsJSON() {
		t.Error("IsJSON should be true when Accept is application/json")
	}

	if gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil)).IsJSON() {
		t.Error("IsJSON should be false without JSON headers")
	}
}

func TestRequest_MethodAndPath(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodDelete, "/cats/1", nil))
	if req.Method() != http.MethodDelete {
		t.Errorf("Method: got %q want DELETE", req.Method())
	}
	if req.Path() != "/cats/1" {
		t.Errorf("Path: got %q want /cats/1", req.Path())
	}
}

// ── Container ────────────────────────────────────────────────────────────────

func TestRequest_ResolvesFromRequestScope(t *testing.T) {
	p := newScopedProvider(t)

	r := routing.New(nil)
	r.Middleware(routing.ScopeMiddleware(p, nil))
	r.Get("/", func(w http.ResponseWriter, raw *http.Request) {
		req := gohttp.NewRequest(raw)
		if req.Scope() == nil {
			t.Fatal("Scope: expected the request scope")
		}

		first, err := gohttp.Service[*visitCounter](req)
		if err != nil {
			t.Fatalf("Service: %v", err)
		}
		first.n++

		second, err := req.Resolve(container.TypeKey[*visitCounter]())
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if second.(*visitCounter).n != 1 {
			t.Error("scoped service should be shared within the request")
		}

		third, err := req.AResolve(container.TypeKey[*visitCounter]())
		if err != nil {
			t.Fatalf("AResolve: %v", err)
		}
		if third != second {
			t.Error("AResolve should return the scoped instance")
		}
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
}

func TestRequest_ResolveWithoutScope(t *testing.T) {
	req := gohttp.NewRequest(httptest.NewRequest(http.MethodGet, "/", nil))

	if req.Scope() != nil {
		t.Error("Scope should be nil outside ScopeMiddleware")
	}
	if _, err := req.Resolve(container.Name("anything")); !errors.Is(err, gohttp.ErrNoScope) {
		t.Errorf("Resolve: got %v want ErrNoScope", err)
	}
	if _, err := gohttp.Service[*visitCounter](req); !errors.Is(err, gohttp.ErrNoScope) {
		t.Errorf("Service: got %v want ErrNoScope", err)
	}
}
