package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/km-arc/go-ioc/framework/config"
	"github.com/km-arc/go-ioc/framework/container"
	gohttp "github.com/km-arc/go-ioc/framework/http"
	"github.com/km-arc/go-ioc/framework/logging"
	"github.com/km-arc/go-ioc/framework/metrics"
	"github.com/km-arc/go-ioc/framework/providers"
	"github.com/km-arc/go-ioc/framework/routing"
)

// Version is the framework version reported by the CLI.
const Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// Application wires configuration, logging, metrics and the HTTP router
// around one service container.
//
//	application, err := app.New()
//	application.Register(&CatsServiceProvider{})
//	provider, err := application.Boot()
type Application struct {
	config    *config.Config
	logger    *zap.Logger
	metrics   *metrics.Collector
	container *container.Container
	providers *container.ProviderRegistry
	provider  *container.Provider
}

// New loads and validates the configuration, then creates the container
// with the core providers registered.
func New(envFiles ...string) (*Application, error) {
	cfg := config.Load(envFiles...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	opts := append(cfg.ContainerOptions(), container.WithLogger(logger.Named("container")))
	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.New(cfg.Metrics.Namespace)
		opts = append(opts, container.WithObserver(collector))
	}

	c := container.New(opts...)
	a := &Application{
		config:    cfg,
		logger:    logger,
		metrics:   collector,
		container: c,
		providers: container.NewProviderRegistry(c),
	}

	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: logger},
	}
	if collector != nil {
		core = append(core, &providers.MetricsServiceProvider{Collector: collector})
	}
	core = append(core, &providers.RoutingServiceProvider{})

	for _, p := range core {
		if err := a.providers.Register(p); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Register adds a service provider. Providers must be registered before
// Boot.
func (a *Application) Register(p container.ServiceProvider) error {
	return a.providers.Register(p)
}

// Container returns the service container for direct registrations.
func (a *Application) Container() *container.Container { return a.container }

// Boot builds the container and boots every provider. Calling it again
// returns the same provider.
func (a *Application) Boot() (*container.Provider, error) {
	if a.provider != nil {
		return a.provider, nil
	}
	p, err := a.providers.Boot()
	if err != nil {
		return nil, err
	}
	a.provider = p
	a.logger.Info("application booted",
		zap.String("app", a.config.App.Name),
		zap.String("env", a.config.App.Env),
		zap.Int("providers", len(a.providers.Providers())),
		zap.Int("services", p.Len()),
	)
	return p, nil
}

// Provider returns the booted provider, or nil before Boot.
func (a *Application) Provider() *container.Provider { return a.provider }

// Router resolves the HTTP router, booting the application if needed.
func (a *Application) Router() (*routing.Router, error) {
	p, err := a.Boot()
	if err != nil {
		return nil, err
	}
	return container.Resolve[*routing.Router](p, nil)
}

// Run boots the application and serves HTTP on the configured port until
// ctx is done.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.config.Addr())
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve boots the application and serves HTTP on ln until ctx is done.
// On the way out the server is shut down gracefully and the provider
// releases its singleton resources.
func (a *Application) Serve(ctx context.Context, ln net.Listener) (err error) {
	router, err := a.Router()
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() { errs <- srv.Serve(ln) }()

	a.logger.Info("listening",
		zap.String("app", a.config.App.Name),
		zap.String("addr", ln.Addr().String()),
		zap.String("env", a.config.App.Env),
	)

	select {
	case err = <-errs:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err = srv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}

	err = multierr.Append(err, a.provider.Close())
	a.logger.Info("stopped", zap.Error(err))
	_ = a.logger.Sync()
	return err
}

// Config returns the loaded configuration.
func (a *Application) Config() *config.Config { return a.config }

// Logger returns the application logger.
func (a *Application) Logger() *zap.Logger { return a.logger }

// Metrics returns the container metrics collector, or nil when metrics
// are disabled.
func (a *Application) Metrics() *metrics.Collector { return a.metrics }

func (a *Application) Environment() string { return a.config.App.Env }
func (a *Application) IsLocal() bool       { return a.config.IsLocal() }
func (a *Application) IsProduction() bool  { return a.config.IsProduction() }
func (a *Application) IsTesting() bool     { return a.config.IsTesting() }
func (a *Application) IsDebug() bool       { return a.config.App.Debug }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
