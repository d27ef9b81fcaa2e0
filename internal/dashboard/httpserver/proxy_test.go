package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBackendProxyOpensCircuit(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.NotFoundHandler())
	target := backend.URL
	backend.Close()

	proxy, err := newBackendProxy(target, zap.NewNop())
	require.NoError(t, err)

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trending/", nil))
		return rec
	}
	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusBadGateway, serve().Code)
	}
	rec := serve()
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), `"backend_unavailable"`)
}

func TestBackendProxyRelaysServerErrors(t *testing.T) {
	t.Parallel()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(backend.Close)

	proxy, err := newBackendProxy(backend.URL, zap.NewNop())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	proxy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/trending/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "boom")
}

func TestNewBackendProxyRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := newBackendProxy("recs.internal", zap.NewNop())
	require.Error(t, err)
}
