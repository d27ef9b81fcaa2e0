package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/logging"
)

// errUpstream marks a 5xx answer so the breaker counts it as a failure while
// the response itself is still relayed.
var errUpstream = errors.New("httpserver: backend returned server error")

// breakerTransport runs every backend round trip through a circuit breaker.
type breakerTransport struct {
	next http.RoundTripper
	cb   *gobreaker.CircuitBreaker[*http.Response]
}

func newBreakerTransport(next http.RoundTripper, logger *zap.Logger) *breakerTransport {
	cb := gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        "recommendation-backend",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("backend circuit state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return &breakerTransport{next: next, cb: cb}
}

func (t *breakerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	resp, err := t.cb.Execute(func() (*http.Response, error) {
		resp, err := t.next.RoundTrip(r)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstream
		}
		return resp, nil
	})
	if errors.Is(err, errUpstream) {
		return resp, nil
	}
	return resp, err
}

// newBackendProxy forwards /api requests, cookies and CSRF headers included,
// to the recommendation backend.
func newBackendProxy(target string, logger *zap.Logger) (http.Handler, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpserver: invalid backend url %q", target)
	}

	proxy := httputil.NewSingleHostReverseProxy(u)
	director := proxy.Director
	proxy.Director = func(r *http.Request) {
		director(r)
		r.Host = u.Host
	}
	proxy.Transport = newBreakerTransport(http.DefaultTransport, logger.Named("proxy"))
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		status, code := http.StatusBadGateway, "bad_gateway"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			status, code = http.StatusServiceUnavailable, "backend_unavailable"
		}
		logging.FromContext(r.Context()).Warn("backend request failed", zap.Error(err), zap.Int("status", status))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"error":%q,"message":"recommendation backend unavailable","status":%d}`, code, status)
	}
	return proxy, nil
}
