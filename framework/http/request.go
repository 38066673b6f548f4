package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/km-arc/go-ioc/framework/container"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Request wraps *http.Request with input helpers and access to the
// request's activation scope.
type Request struct {
	raw *http.Request
}

// NewRequest wraps a standard *http.Request.
func NewRequest(r *http.Request) *Request {
	return &Request{raw: r}
}

// Raw returns the underlying *http.Request.
func (req *Request) Raw() *http.Request { return req.raw }

// Context returns the request context.
func (req *Request) Context() context.Context { return req.raw.Context() }

// ── Container ────────────────────────────────────────────────────────────────

// ErrNoScope is returned by Resolve outside routing.ScopeMiddleware.
var ErrNoScope = errors.New("http: request has no activation scope")

// Scope returns the activation scope opened for this request, or nil.
func (req *Request) Scope() *container.ActivationScope {
	return container.ScopeFrom(req.raw.Context())
}

// Resolve resolves key in the request scope.
func (req *Request) Resolve(key container.Key) (any, error) {
	scope := req.Scope()
	if scope == nil {
		return nil, ErrNoScope
	}
	return scope.Resolve(key)
}

// AResolve resolves key in the request scope, awaiting async factories
// with the request context.
func (req *Request) AResolve(key container.Key) (any, error) {
	scope := req.Scope()
	if scope == nil {
		return nil, ErrNoScope
	}
	return scope.AResolve(req.raw.Context(), key)
}

// Service resolves T in the request scope.
//
//	handler, err := http.Service[*GetCatRequestHandler](req)
func Service[T any](req *Request) (T, error) {
	scope := req.Scope()
	if scope == nil {
		var zero T
		return zero, ErrNoScope
	}
	return container.Resolve[T](scope.Provider(), scope)
}

// ── Binding ──────────────────────────────────────────────────────────────────

// Bind decodes a JSON body into v. Other content types are read as
// url-encoded forms and mapped through the struct's json tags.
func (req *Request) Bind(v any) error {
	if strings.Contains(req.ContentType(), "application/json") {
		defer req.raw.Body.Close()
		body, err := io.ReadAll(req.raw.Body)
		if err != nil {
			return err
		}
		if len(body) == 0 {
			return errors.New("empty request body")
		}
		return json.Unmarshal(body, v)
	}

	if err := req.raw.ParseForm(); err != nil {
		return err
	}
	m := make(map[string]any, len(req.raw.PostForm))
	for k, vals := range req.raw.PostForm {
		if len(vals) == 1 {
			m[k] = vals[0]
		} else {
			m[k] = vals
		}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// ── Input ────────────────────────────────────────────────────────────────────

// Input returns a query string or form value.
func (req *Request) Input(key string, fallback ...string) string {
	_ = req.raw.ParseForm()
	return or(req.raw.FormValue(key), fallback)
}

// Query returns a query string value.
func (req *Request) Query(key string, fallback ...string) string {
	return or(req.raw.URL.Query().Get(key), fallback)
}

// Has reports whether key is present and non-empty.
func (req *Request) Has(key string) bool {
	return req.Input(key) != ""
}

// RouteParam returns a chi URL parameter.
func (req *Request) RouteParam(key string) string {
	return chi.URLParam(req.raw, key)
}

// Header returns a request header value.
func (req *Request) Header(key string) string {
	return req.raw.Header.Get(key)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func (req *Request) BearerToken() string {
	token, ok := strings.CutPrefix(req.raw.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return ""
	}
	return token
}

// Method returns the HTTP method.
func (req *Request) Method() string { return req.raw.Method }

// Path returns the URL path.
func (req *Request) Path() string { return req.raw.URL.Path }

// ContentType returns the Content-Type header value.
func (req *Request) ContentType() string {
	return req.raw.Header.Get("Content-Type")
}

// IsJSON reports whether the request sends or expects JSON.
func (req *Request) IsJSON() bool {
	return strings.Contains(req.raw.Header.Get("Accept"), "application/json") ||
		strings.Contains(req.ContentType(), "application/json")
}

func or(v string, fallback []string) string {
	if v == "" && len(fallback) > 0 {
		return fallback[0]
	}
	return v
}
