package presence_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/presence"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/home"
)

func render(t *testing.T, full bool) *dom.Document {
	t.Helper()

	c := home.Minimal(home.Props{}, "Sign in to continue.")
	if full {
		c = home.Page(home.Props{})
	}
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	doc, err := dom.NewDocument(&buf)
	require.NoError(t, err)
	return doc
}

func TestDetectFullDashboard(t *testing.T) {
	t.Parallel()

	report := presence.Detect(render(t, true))
	require.Empty(t, report.Disabled())
	require.Len(t, report.Enabled(), 6)
	require.True(t, report.Has(presence.Modal))
}

func TestDetectAuthPage(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	report := presence.Detect(render(t, false))
	report.Log(zap.New(core))

	require.Empty(t, report.Enabled())
	require.Equal(t, 6, logs.Len())
	for _, entry := range logs.All() {
		require.Equal(t, zapcore.DebugLevel, entry.Level, "absence is never an error")
	}
}

func TestDetectPartialDialog(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(`<html><body><div id="infoModal"><div id="modalBody"></div></div><div id="trendingGrid"></div></body></html>`)
	require.NoError(t, err)

	report := presence.Detect(doc)
	require.False(t, report.Has(presence.Modal), "dialog needs its title region too")
	require.Equal(t, []presence.Feature{presence.Trending}, report.Enabled())
}
