// Package metrics exposes container activity as Prometheus metrics.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/km-arc/go-ioc/framework/container"
)

// Collector records container builds and resolves. It implements
// container.Observer:
//
//	collector := metrics.New("go_ioc")
//	c := container.New(container.WithObserver(collector))
type Collector struct {
	registry *prometheus.Registry

	buildDuration   *prometheus.HistogramVec
	entries         prometheus.Gauge
	resolves        *prometheus.CounterVec
	resolveDuration *prometheus.HistogramVec
}

var _ container.Observer = (*Collector)(nil)

// New creates a collector on its own registry, together with the Go runtime
// and process collectors.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		buildDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "build_duration_seconds",
				Help:      "Time spent compiling the container into a provider",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"result"},
		),
		entries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "entries",
				Help:      "Resolvable keys of the last built provider, aliases included",
			},
		),
		resolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "resolves_total",
				Help:      "Service resolutions by key, lifetime and result",
			},
			[]string{"key", "lifetime", "result"},
		),
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "container",
				Name:      "resolve_duration_seconds",
				Help:      "Time spent resolving a service, construction included",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"lifetime"},
		),
	}

	c.registry.MustRegister(
		c.buildDuration,
		c.entries,
		c.resolves,
		c.resolveDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) ObserveBuild(entries int, elapsed time.Duration, err error) {
	c.buildDuration.WithLabelValues(result(err)).Observe(elapsed.Seconds())
	if err == nil {
		c.entries.Set(float64(entries))
	}
}

func (c *Collector) ObserveResolve(key container.Key, lifetime container.Lifetime, elapsed time.Duration, err error) {
	c.resolves.WithLabelValues(key.String(), lifetime.String(), result(err)).Inc()
	c.resolveDuration.WithLabelValues(lifetime.String()).Observe(elapsed.Seconds())
}

// Registry returns the registry the metrics live on.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// result is "ok", the container error code, or "error".
func result(err error) string {
	if err == nil {
		return "ok"
	}
	var cerr *container.Error
	if errors.As(err, &cerr) {
		return string(cerr.Code)
	}
	return "error"
}
