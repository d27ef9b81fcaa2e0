package testutil

import (
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/httpserver"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

// ServerOption customises the HTTP server configuration for tests.
type ServerOption func(*httpserver.Config)

// WithService wires a custom recommendation service behind /api.
func WithService(service recs.Service) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Service = service
	}
}

// WithBackendURL proxies /api to an external backend.
func WithBackendURL(url string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BackendURL = url
	}
}

// WithAssetsDir serves compiled assets from dir.
func WithAssetsDir(dir string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.AssetsDir = dir
	}
}

// WithBasePath sets a custom base path for the dashboard page.
func WithBasePath(path string) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.BasePath = path
	}
}

// WithLogger routes server logs to logger.
func WithLogger(logger *zap.Logger) ServerOption {
	return func(cfg *httpserver.Config) {
		cfg.Logger = logger
	}
}

// NewServer constructs an httptest server running the dashboard HTTP stack with sensible defaults.
func NewServer(t testing.TB, opts ...ServerOption) *httptest.Server {
	t.Helper()

	cfg := httpserver.Config{
		Address:        ":0",
		BasePath:       "/",
		CSRFCookieName: "csrftoken",
		CSRFHeaderName: recs.DefaultCSRFHeader,
		Service:        recs.NewStaticService(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	srv, err := httpserver.New(cfg)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	return ts
}
