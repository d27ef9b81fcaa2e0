package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// WriteLimiter throttles unsafe requests per client address. Safe methods
// pass through untouched.
type WriteLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	limiters map[string]*rate.Limiter
}

// NewWriteLimiter allows burst writes per client, refilled at perWindow
// tokens every window.
func NewWriteLimiter(perWindow int, window time.Duration, burst int) *WriteLimiter {
	if perWindow <= 0 {
		perWindow = 1
	}
	if burst <= 0 {
		burst = perWindow
	}
	return &WriteLimiter{
		limit:    rate.Every(window / time.Duration(perWindow)),
		burst:    burst,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (l *WriteLimiter) allow(key string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}

// Handler returns the middleware.
func (l *WriteLimiter) Handler() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isUnsafeMethod(r.Method) && !l.allow(remoteIP(r)) {
				w.Header().Set("Retry-After", "1")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
