// Package httpserver hosts the dashboard document, its assets and the /api
// surface the page talks to.
package httpserver

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/httpserver/api"
	custommw "finitefield.org/movie-dashboard/internal/dashboard/httpserver/middleware"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/home"
	"finitefield.org/movie-dashboard/public"
)

// Public mount points of the served assets.
const (
	StaticPrefix = "/public/static"
	AssetsPrefix = "/assets"
)

// Config holds runtime options for the dashboard HTTP server.
type Config struct {
	Address          string
	BasePath         string
	Title            string
	AssetsDir        string
	BackendURL       string
	CSRFCookieName   string
	CSRFCookieSecure bool
	CSRFHeaderName   string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration

	// Service answers /api when BackendURL is empty. Defaults to the sample
	// catalogue.
	Service recs.Service
	Logger  *zap.Logger
	// Registry collects metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
}

// New constructs the HTTP server with middleware stack and embedded assets.
func New(cfg Config) (*http.Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	metrics := custommw.NewMetrics(registry)

	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(custommw.RequestLogger(logger.Named("http")))
	router.Use(chimw.Recoverer)
	router.Use(metrics.Instrument())

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	staticContent, err := public.StaticFS()
	if err != nil {
		return nil, fmt.Errorf("httpserver: embed static: %w", err)
	}
	router.Handle(StaticPrefix+"/*", http.StripPrefix(StaticPrefix+"/", http.FileServer(http.FS(staticContent))))
	if dir := strings.TrimSpace(cfg.AssetsDir); dir != "" {
		router.Handle(AssetsPrefix+"/*", http.StripPrefix(AssetsPrefix+"/", wasmTypes(http.FileServer(http.Dir(dir)))))
	}

	basePath := normalizeBasePath(cfg.BasePath)
	csrf := custommw.CSRF(custommw.CSRFConfig{
		CookieName: cfg.CSRFCookieName,
		HeaderName: cfg.CSRFHeaderName,
		Secure:     cfg.CSRFCookieSecure,
	})

	if backend := strings.TrimSpace(cfg.BackendURL); backend != "" {
		proxy, err := newBackendProxy(backend, logger)
		if err != nil {
			return nil, err
		}
		router.Handle("/api/*", proxy)
		logger.Info("proxying api to backend", zap.String("backend", backend))
	} else {
		svc := cfg.Service
		if svc == nil {
			svc = recs.NewStaticService()
		}
		writes := custommw.NewWriteLimiter(60, time.Minute, 30)
		router.Group(func(r chi.Router) {
			r.Use(csrf)
			r.Use(writes.Handler())
			r.Use(noStore)
			api.New(svc).Mount(r)
		})
		logger.Info("serving built-in sample api")
	}

	page := templ.Handler(home.Page(home.Props{
		Title:      cfg.Title,
		StaticBase: StaticPrefix,
		AssetBase:  AssetsPrefix,
	}))
	router.Group(func(r chi.Router) {
		r.Use(csrf)
		r.Use(noStore)
		r.Method(http.MethodGet, basePath, page)
		if basePath != "/" {
			r.Method(http.MethodGet, basePath+"/", page)
		}
	})

	return &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  orDefault(cfg.ReadTimeout, 15*time.Second),
		WriteTimeout: orDefault(cfg.WriteTimeout, 30*time.Second),
		IdleTimeout:  orDefault(cfg.IdleTimeout, 120*time.Second),
	}, nil
}

func noStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// wasmTypes sets the type browsers require for streaming compilation.
func wasmTypes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, ".wasm") {
			w.Header().Set("Content-Type", "application/wasm")
		}
		next.ServeHTTP(w, r)
	})
}

func normalizeBasePath(path string) string {
	p := strings.TrimSpace(path)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return "/"
	}
	return p
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
