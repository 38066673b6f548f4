// Package providers holds the service providers the application kernel
// registers before user providers.
package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider binds the loaded configuration.
//
// Bound keys:
//   - *config.Config
//   - "config" (exact alias)
type ConfigServiceProvider struct {
	container.BaseProvider
	Config *config.Config
}

func (p *ConfigServiceProvider) Register(c *container.Container) error {
	if err := c.AddInstance(p.Config); err != nil {
		return err
	}
	return setAlias(c, "config", container.TypeKey[*config.Config]())
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider binds the application logger. Without a Logger
// one is built from the configuration on first use and synced when the
// provider closes.
//
// Bound keys:
//   - *zap.Logger
//   - "logger" (exact alias)
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(c *container.Container) error {
	var err error
	if p.Logger != nil {
		err = c.AddInstance(p.Logger)
	} else {
		err = c.AddSingletonFactory(newLogger)
	}
	if err != nil {
		return err
	}
	return setAlias(c, "logger", container.TypeKey[*zap.Logger]())
}

func newLogger(scope *container.ActivationScope) (*zap.Logger, func(), error) {
	cfg, err := container.Resolve[*config.Config](scope.Provider(), scope)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider binds the container metrics collector.
//
// Bound keys:
//   - *metrics.Collector
type MetricsServiceProvider struct {
	container.BaseProvider
	Collector *metrics.Collector
}

func (p *MetricsServiceProvider) Register(c *container.Container) error {
	return c.AddInstance(p.Collector)
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider binds the HTTP router. Boot installs the request
// scope middleware and the framework routes:
//   - GET /metrics when metrics are enabled
//   - GET /debug/container when CONTAINER_DEBUG_ROUTES is set
//
// Bound keys:
//   - *routing.Router
//   - "router" (exact alias)
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(c *container.Container) error {
	err := c.AddSingletonFactory(func(scope *container.ActivationScope) (*routing.Router, error) {
		logger, err := container.Resolve[*zap.Logger](scope.Provider(), scope)
		if err != nil {
			return nil, err
		}
		return routing.New(logger), nil
	})
	if err != nil {
		return err
	}
	return setAlias(c, "router", container.TypeKey[*routing.Router]())
}

func (p *RoutingServiceProvider) Boot(provider *container.Provider) error {
	router, err := container.Resolve[*routing.Router](provider, nil)
	if err != nil {
		return err
	}
	cfg, err := container.Resolve[*config.Config](provider, nil)
	if err != nil {
		return err
	}
	logger, err := container.Resolve[*zap.Logger](provider, nil)
	if err != nil {
		return err
	}

	router.Middleware(routing.ScopeMiddleware(provider, logger))

	if cfg.Metrics.Enabled && provider.Contains(container.TypeKey[*metrics.Collector]()) {
		collector, err := container.Resolve[*metrics.Collector](provider, nil)
		if err != nil {
			return err
		}
		router.Mount("/metrics", collector.Handler())
	}
	if cfg.Container.DebugRoutes {
		router.Get("/debug/container", gohttp.ContainerHandler(provider))
	}
	return nil
}

// setAlias skips aliases in strict mode, where the type keys are the only
// way in.
func setAlias(c *container.Container, name string, key container.Key) error {
	if c.Strict() {
		return nil
	}
	return c.SetAlias(name, key, false)
}
