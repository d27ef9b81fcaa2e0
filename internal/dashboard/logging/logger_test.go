package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in   string
		want zapcore.Level
	}{
		{in: "", want: zapcore.InfoLevel},
		{in: "DEBUG", want: zapcore.DebugLevel},
		{in: " warn ", want: zapcore.WarnLevel},
		{in: "loud", want: zapcore.InfoLevel},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.want, ParseLevel(tc.in).Level(), tc.in)
	}
}

func TestNewWriterEmitsSeverityAndTimestamp(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriter(&buf, "debug").Named("stars")
	logger.Warn("rating write failed", zap.Int("movie", 5))
	require.NoError(t, logger.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	require.Equal(t, "WARN", entry["severity"])
	require.Equal(t, "rating write failed", entry["message"])
	require.Equal(t, "stars", entry["logger"])
	require.EqualValues(t, 5, entry["movie"])
	require.NotEmpty(t, entry["timestamp"])
}

func TestNewWriterRespectsLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWriter(&buf, "warn")
	logger.Debug("feature disabled, region absent")
	logger.Info("dashboard started")
	require.Zero(t, buf.Len())
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	require.NotNil(t, FromContext(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, FromContext(ctx))
	require.Equal(t, ctx, WithLogger(ctx, nil))
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	require.Equal(t, "/api/ratings/", Sanitize("/api/\nratings/\x00", 0))
	require.Equal(t, "abc", Sanitize("abcdef", 3))
	require.Equal(t, "/", SanitizeRoute(""))
	require.Len(t, SanitizeRoute(strings.Repeat("a", 400)), 180)
}
