package app_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-ioc/framework/app"
	"github.com/km-arc/go-ioc/framework/container"
)

// setEnv pins every setting the kernel reads so earlier .env loads in the
// process cannot leak in.
func setEnv(t *testing.T, overrides map[string]string) {
	t.Helper()
	env := map[string]string{
		"APP_NAME":               "cats",
		"APP_ENV":                "testing",
		"APP_PORT":               "8000",
		"APP_DEBUG":              "false",
		"CONTAINER_STRICT":       "false",
		"CONTAINER_DEBUG_ROUTES": "true",
		"LOG_LEVEL":              "error",
		"METRICS_ENABLED":        "true",
		"METRICS_NAMESPACE":      "cats",
	}
	for k, v := range overrides {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
}

type Greeter struct{ Greeting string }

type greeterProvider struct {
	container.BaseProvider
}

func (greeterProvider) Register(c *container.Container) error {
	return c.AddInstance(&Greeter{Greeting: "meow"})
}

func TestNew_InvalidConfig(t *testing.T) {
	setEnv(t, map[string]string{"APP_PORT": "not-a-port"})

	_, err := app.New("testdata/missing.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config:")
}

func TestNew_LoadsEnvFile(t *testing.T) {
	setEnv(t, map[string]string{"APP_NAME": "from-env"})
	t.Setenv("LOG_LEVEL", "")
	// Unset, restored by the Setenv cleanup.
	require.NoError(t, os.Unsetenv("LOG_LEVEL"))

	application, err := app.New("testdata/app.env")
	require.NoError(t, err)
	// The file fills unset variables and never overrides the environment.
	assert.Equal(t, "error", application.Config().Log.Level)
	assert.Equal(t, "from-env", application.Config().App.Name)
}

func TestBoot_RegistersCoreAndUserProviders(t *testing.T) {
	setEnv(t, nil)
	application, err := app.New("testdata/missing.env")
	require.NoError(t, err)
	require.NoError(t, application.Register(&greeterProvider{}))
	assert.Nil(t, application.Provider())

	p, err := application.Boot()
	require.NoError(t, err)
	again, err := application.Boot()
	require.NoError(t, err)
	assert.Same(t, p, again)

	g, err := container.Resolve[*Greeter](p, nil)
	require.NoError(t, err)
	assert.Equal(t, "meow", g.Greeting)

	assert.True(t, application.IsTesting())
	assert.False(t, application.IsLocal())
	assert.False(t, application.IsProduction())
	assert.False(t, application.IsDebug())
	assert.Equal(t, "testing", application.Environment())
	assert.NotNil(t, application.Metrics())
	assert.NotNil(t, application.Logger())

	router, err := application.Router()
	require.NoError(t, err)
	assert.Contains(t, router.Routes(), "GET /debug/container")
}

func TestNew_MetricsDisabled(t *testing.T) {
	setEnv(t, map[string]string{"METRICS_ENABLED": "false"})
	application, err := app.New("testdata/missing.env")
	require.NoError(t, err)
	assert.Nil(t, application.Metrics())
}

func TestNew_StrictContainer(t *testing.T) {
	setEnv(t, map[string]string{"CONTAINER_STRICT": "true"})
	application, err := app.New("testdata/missing.env")
	require.NoError(t, err)
	assert.True(t, application.Container().Strict())

	_, err = application.Boot()
	require.NoError(t, err)
}

func TestServe_GracefulShutdown(t *testing.T) {
	setEnv(t, nil)
	application, err := app.New("testdata/missing.env")
	require.NoError(t, err)

	released := false
	require.NoError(t, application.Container().AddSingletonFactory(func() (*Greeter, func(), error) {
		return &Greeter{Greeting: "purr"}, func() { released = true }, nil
	}))

	router, err := application.Router()
	require.NoError(t, err)
	router.Get("/greet", func(w http.ResponseWriter, r *http.Request) {
		g, err := container.Resolve[*Greeter](application.Provider(), nil)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_, _ = io.WriteString(w, g.Greeting)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/greet")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "purr", string(body))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.True(t, released)
}
