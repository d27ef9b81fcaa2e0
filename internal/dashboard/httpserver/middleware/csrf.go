package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"time"
)

type csrfKey struct{}

// CSRF defaults shared with the recommendation backend.
const (
	DefaultCSRFCookie = "csrftoken"
	DefaultCSRFHeader = "X-CSRFToken"
)

const (
	csrfTokenBytes = 32
	csrfMaxAge     = 24 * time.Hour
)

// CSRFConfig controls cookie/header behaviour. Zero values fall back to the
// defaults above, path "/" and a one day lifetime.
type CSRFConfig struct {
	CookieName string
	CookiePath string
	HeaderName string
	MaxAge     time.Duration
	Secure     bool
}

type csrfGuard struct {
	cookie string
	header string
	path   string
	maxAge int
	secure bool
}

// CSRF attaches double-submit protection. Every request carries a token
// cookie the page script can read; unsafe requests must echo it in the
// header.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	g := csrfGuard{
		cookie: orString(cfg.CookieName, DefaultCSRFCookie),
		header: orString(cfg.HeaderName, DefaultCSRFHeader),
		path:   orString(cfg.CookiePath, "/"),
		maxAge: int(csrfMaxAge.Seconds()),
		secure: cfg.Secure,
	}
	if cfg.MaxAge > 0 {
		g.maxAge = int(cfg.MaxAge.Seconds())
	}
	return g.middleware
}

func (g csrfGuard) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := g.token(w, r)
		if err != nil {
			http.Error(w, "csrf token error", http.StatusInternalServerError)
			return
		}
		if isUnsafeMethod(r.Method) && !tokensMatch(r.Header.Get(g.header), token) {
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), csrfKey{}, token)))
	})
}

// token returns the request's cookie value, issuing a fresh cookie when the
// request has none.
func (g csrfGuard) token(w http.ResponseWriter, r *http.Request) (string, error) {
	if c, err := r.Cookie(g.cookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	buf := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := base64.RawURLEncoding.EncodeToString(buf)
	http.SetCookie(w, &http.Cookie{
		Name:     g.cookie,
		Value:    token,
		Path:     g.path,
		MaxAge:   g.maxAge,
		Secure:   g.secure || r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

func tokensMatch(submitted, token string) bool {
	return submitted != "" && subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) == 1
}

// CSRFTokenFromContext returns the token issued for the current request.
func CSRFTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func isUnsafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return false
	}
	return true
}

func orString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
