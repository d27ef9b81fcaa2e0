// Package config loads the host server configuration: struct defaults, an
// optional YAML file, then environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

// PathEnvVar names the environment variable holding the optional YAML file.
const PathEnvVar = "DASHBOARD_CONFIG"

const maxPageSize = 50

// Config captures the runtime configuration organised by concern.
type Config struct {
	Environment string          `koanf:"environment"`
	Server      ServerConfig    `koanf:"server"`
	Backend     BackendConfig   `koanf:"backend"`
	Dashboard   DashboardConfig `koanf:"dashboard"`
	CSRF        CSRFConfig      `koanf:"csrf"`
	Logging     LoggingConfig   `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address         string        `koanf:"address"`
	BasePath        string        `koanf:"base_path"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// BackendConfig points /api at a recommendation backend. An empty URL serves
// the built-in sample API.
type BackendConfig struct {
	URL string `koanf:"url"`
}

// DashboardConfig controls the served page.
type DashboardConfig struct {
	Title     string `koanf:"title"`
	PageSize  int    `koanf:"page_size"`
	AssetsDir string `koanf:"assets_dir"`
}

// CSRFConfig names the double-submit cookie and header.
type CSRFConfig struct {
	CookieName string `koanf:"cookie_name"`
	HeaderName string `koanf:"header_name"`
}

// LoggingConfig sets the log level.
type LoggingConfig struct {
	Level string `koanf:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Environment: "development",
		Server: ServerConfig{
			Address:         ":8080",
			BasePath:        "/",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Dashboard: DashboardConfig{
			Title:     "Movie Recommendations",
			PageSize:  12,
			AssetsDir: "web/dist",
		},
		CSRF: CSRFConfig{
			CookieName: "csrftoken",
			HeaderName: "X-CSRFToken",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	path    string
	pathSet bool
}

// WithFile loads path instead of the file named by DASHBOARD_CONFIG. An
// empty path disables the file layer.
func WithFile(path string) Option {
	return func(o *loaderOptions) {
		o.path = path
		o.pathSet = true
	}
}

// Load resolves the configuration. Precedence is environment over file over
// defaults.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{}
	for _, opt := range opts {
		opt(&options)
	}
	if !options.pathSet {
		options.path = strings.TrimSpace(os.Getenv(PathEnvVar))
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}
	if options.path != "" {
		if err := k.Load(file.Provider(options.path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: load file %s: %w", options.path, err)
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envMappings maps lower-cased environment variables to config paths.
// Anything not listed, and any empty value, is ignored.
var envMappings = map[string]string{
	"environment":                "environment",
	"dashboard_http_addr":        "server.address",
	"dashboard_base_path":        "server.base_path",
	"dashboard_read_timeout":     "server.read_timeout",
	"dashboard_write_timeout":    "server.write_timeout",
	"dashboard_idle_timeout":     "server.idle_timeout",
	"dashboard_shutdown_timeout": "server.shutdown_timeout",
	"dashboard_backend_url":      "backend.url",
	"dashboard_title":            "dashboard.title",
	"dashboard_page_size":        "dashboard.page_size",
	"dashboard_assets_dir":       "dashboard.assets_dir",
	"dashboard_csrf_cookie":      "csrf.cookie_name",
	"dashboard_csrf_header":      "csrf.header_name",
	"log_level":                  "logging.level",
}

func envValue(key, value string) (string, any) {
	if strings.TrimSpace(value) == "" {
		return "", nil
	}
	return envMappings[strings.ToLower(key)], value
}

func (c *Config) normalize() {
	c.Environment = strings.ToLower(strings.TrimSpace(c.Environment))
	c.Server.BasePath = normalizeBasePath(c.Server.BasePath)
	c.Backend.URL = strings.TrimRight(strings.TrimSpace(c.Backend.URL), "/")
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
}

func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || p == "/" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return strings.TrimRight(p, "/")
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var invalid []string
	if c.Environment == "" {
		invalid = append(invalid, "environment")
	}
	if strings.TrimSpace(c.Server.Address) == "" {
		invalid = append(invalid, "server.address")
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		invalid = append(invalid, "server.base_path")
	}
	if c.Server.ShutdownTimeout <= 0 {
		invalid = append(invalid, "server.shutdown_timeout")
	}
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			invalid = append(invalid, "backend.url")
		}
	}
	if c.Dashboard.PageSize < 1 || c.Dashboard.PageSize > maxPageSize {
		invalid = append(invalid, "dashboard.page_size")
	}
	if strings.TrimSpace(c.CSRF.CookieName) == "" {
		invalid = append(invalid, "csrf.cookie_name")
	}
	if strings.TrimSpace(c.CSRF.HeaderName) == "" {
		invalid = append(invalid, "csrf.header_name")
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		invalid = append(invalid, "logging.level")
	}
	if len(invalid) > 0 {
		return &ValidationError{fields: invalid}
	}
	return nil
}

// UsesBackend reports whether /api is proxied to an external backend.
func (c Config) UsesBackend() bool { return c.Backend.URL != "" }
