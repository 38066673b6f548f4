package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/km-arc/go-ioc/framework/container"
	"github.com/km-arc/go-ioc/framework/validation"
)

// Config is the central typed configuration struct.
type Config struct {
	App       AppConfig
	Container ContainerConfig
	Log       LogConfig
	Metrics   MetricsConfig

	// effective values by env var, defaults applied
	values map[string]string
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
	Port  string
}

// ContainerConfig tunes the service container.
type ContainerConfig struct {
	// Strict disables aliases and name fallback through them.
	Strict bool
	// DebugRoutes exposes the registrations at /debug/container.
	DebugRoutes bool
}

type LogConfig struct {
	Level       string // debug | info | warn | error
	Development bool
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

// rules are checked by Validate against the effective values.
var rules = validation.Rules{
	"APP_NAME":               "required|max:64",
	"APP_ENV":                "required|in:local,production,testing",
	"APP_PORT":               "required|integer|between:1,65535",
	"APP_DEBUG":              "sometimes|boolean",
	"CONTAINER_STRICT":       "sometimes|boolean",
	"CONTAINER_DEBUG_ROUTES": "sometimes|boolean",
	"LOG_LEVEL":              "required|in:debug,info,warn,error",
	"METRICS_ENABLED":        "sometimes|boolean",
	"METRICS_NAMESPACE":      "required|regex:^[a-zA-Z_][a-zA-Z0-9_]*$",
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg := config.Load()
func Load(envFiles ...string) *Config {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	l := &loader{values: make(map[string]string)}
	env := l.str("APP_ENV", "local")

	return &Config{
		App: AppConfig{
			Name:  l.str("APP_NAME", "go-ioc"),
			Env:   env,
			Debug: l.flag("APP_DEBUG", env == "local"),
			Port:  l.str("APP_PORT", "8000"),
		},
		Container: ContainerConfig{
			Strict:      l.flag("CONTAINER_STRICT", false),
			DebugRoutes: l.flag("CONTAINER_DEBUG_ROUTES", env != "production"),
		},
		Log: LogConfig{
			Level:       l.str("LOG_LEVEL", "info"),
			Development: env != "production",
		},
		Metrics: MetricsConfig{
			Enabled:   l.flag("METRICS_ENABLED", true),
			Namespace: l.str("METRICS_NAMESPACE", "go_ioc"),
		},
		values: l.values,
	}
}

// Validate checks the loaded values, including the raw text of settings
// that fell back to their default because they did not parse.
func (c *Config) Validate() error {
	if err := validation.Make(c.values, rules).Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// ContainerOptions maps the config to container options.
func (c *Config) ContainerOptions() []container.Option {
	return []container.Option{container.WithStrict(c.Container.Strict)}
}

// Addr is the HTTP listen address.
func (c *Config) Addr() string { return ":" + c.App.Port }

func (c *Config) IsProduction() bool { return c.App.Env == "production" }
func (c *Config) IsLocal() bool      { return c.App.Env == "local" }
func (c *Config) IsTesting() bool    { return c.App.Env == "testing" }

// Get returns a raw env value, falling back to defaultVal.
func Get(key, defaultVal string) string {
	return env(key, defaultVal)
}

// GetInt returns an int env value.
func GetInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// GetBool returns a bool env value.
func GetBool(key string, defaultVal bool) bool {
	return envBool(key, defaultVal)
}

// ── helpers ─────────────────────────────────────────────────────────────────

// loader reads env vars and remembers what it saw for validation.
type loader struct {
	values map[string]string
}

func (l *loader) str(key, fallback string) string {
	v := env(key, fallback)
	l.values[key] = v
	return v
}

func (l *loader) flag(key string, fallback bool) bool {
	if raw := os.Getenv(key); raw != "" {
		l.values[key] = raw
	} else {
		l.values[key] = strconv.FormatBool(fallback)
	}
	return envBool(key, fallback)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
