package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/container"
)

type widget struct{ n int }

func TestCollector_ObservesContainer(t *testing.T) {
	collector := New("test")
	c := container.New(container.WithObserver(collector))
	require.NoError(t, c.AddSingleton(func() *widget { return &widget{n: 1} }))

	p, err := c.Build()
	require.NoError(t, err)

	for range 3 {
		_, err := p.Resolve(container.TypeKey[*widget](), nil)
		require.NoError(t, err)
	}
	_, err = p.Resolve(container.Name("missing"), nil)
	require.Error(t, err)

	key := container.TypeKey[*widget]().String()
	assert.Equal(t, 3.0, testutil.ToFloat64(collector.resolves.WithLabelValues(key, "singleton", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.resolves.WithLabelValues("missing", "transient", "SERVICE_NOT_FOUND")))
	assert.Equal(t, float64(p.Len()), testutil.ToFloat64(collector.entries))
	assert.Equal(t, 1, testutil.CollectAndCount(collector.buildDuration))
}

func TestCollector_BuildFailureKeepsEntries(t *testing.T) {
	collector := New("test")
	collector.ObserveBuild(7, time.Millisecond, nil)
	collector.ObserveBuild(0, time.Millisecond, errors.New("boom"))

	assert.Equal(t, 7.0, testutil.ToFloat64(collector.entries))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.buildDuration))
}

func TestCollector_Handler(t *testing.T) {
	collector := New("test")
	collector.ObserveResolve(container.Name("config"), container.Singleton, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `test_container_resolves_total{key="config",lifetime="singleton",result="ok"} 1`)
}

func TestResult(t *testing.T) {
	assert.Equal(t, "ok", result(nil))
	assert.Equal(t, "error", result(errors.New("boom")))
	assert.Equal(t, "CIRCULAR_DEPENDENCY", result(container.ErrCircularDependency))
}
