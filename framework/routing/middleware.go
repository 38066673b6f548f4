package routing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/container"
)

// ScopeMiddleware opens one activation scope per request, stores it in the
// request context and closes it once the handler returns. Scoped services
// resolved through Scope(r) live exactly as long as the request.
//
//	router.Middleware(routing.ScopeMiddleware(provider, logger))
func ScopeMiddleware(p *container.Provider, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope := p.NewScope()
			defer func() {
				if err := scope.Close(); err != nil {
					logger.Warn("request scope released with errors",
						zap.Stringer("scope", scope.ID()),
						zap.String("request_id", middleware.GetReqID(r.Context())),
						zap.Error(err),
					)
				}
			}()
			next.ServeHTTP(w, r.WithContext(container.WithScope(r.Context(), scope)))
		})
	}
}

// Scope returns the request's activation scope, or nil outside
// ScopeMiddleware.
func Scope(r *http.Request) *container.ActivationScope {
	return container.ScopeFrom(r.Context())
}

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("elapsed", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(r.Context())),
				)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
