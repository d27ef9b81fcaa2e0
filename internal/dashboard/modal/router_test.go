package modal_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/modal"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
)

const dialogPage = `<html><body><div id="grid"></div>` +
	`<div class="modal fade" id="infoModal" aria-hidden="true"><div class="modal-content">` +
	`<h5 id="modalTitle"></h5><div id="modalBody"></div></div></div></body></html>`

type explainFunc func(ctx context.Context, q recs.ExplanationQuery) (*recs.Explanation, error)

func (f explainFunc) Explain(ctx context.Context, q recs.ExplanationQuery) (*recs.Explanation, error) {
	return f(ctx, q)
}

type askFunc func(ctx context.Context, q string) (*recs.Answer, error)

func (f askFunc) Ask(ctx context.Context, q string) (*recs.Answer, error) { return f(ctx, q) }

type harness struct {
	doc    *dom.Document
	tasks  *dom.Tasks
	router *modal.Router
	logs   *observer.ObservedLogs
	opened []string
}

func newHarness(t *testing.T, markup string, cfg modal.Config) *harness {
	t.Helper()

	doc, err := dom.Parse(markup)
	require.NoError(t, err)
	core, logs := observer.New(zap.DebugLevel)
	h := &harness{doc: doc, tasks: &dom.Tasks{}, logs: logs}

	cfg.Page = doc
	cfg.Tasks = h.tasks
	cfg.Logger = zap.New(core)
	if cfg.Opener == nil {
		cfg.Opener = modal.OpenerFunc(func(url string) { h.opened = append(h.opened, url) })
	}
	h.router = modal.NewRouter(cfg)
	return h
}

func (h *harness) show(c modal.Content) {
	h.doc.Do(func() { h.router.Show(c) })
}

func (h *harness) title() string { return h.doc.ByID("modalTitle").Text() }
func (h *harness) body() dom.Element { return h.doc.ByID("modalBody") }

func TestRatingConfirmation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, dialogPage, modal.Config{})
	h.show(modal.RatingConfirmation{MovieID: 5, Rating: 4})

	require.Equal(t, "Rating Saved", h.title())
	require.Equal(t, "Rated 4 stars! Recommendations will update periodically.", h.body().Text())
	require.True(t, h.doc.ByID("infoModal").HasClass("show"))
	require.Equal(t, modal.RatingConfirmation{MovieID: 5, Rating: 4}, h.router.Active())
}

func TestCatalogExplanationErrorPayloadIsBody(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "42", r.URL.Query().Get("tmdb_id"))
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found"}`))
	}))
	t.Cleanup(ts.Close)
	svc, err := recs.NewHTTPService(ts.URL, ts.Client())
	require.NoError(t, err)

	h := newHarness(t, dialogPage, modal.Config{Explainer: svc})
	h.show(modal.CatalogExplanation{TMDBID: 42, Title: "Unknown"})
	h.tasks.Wait()

	require.Equal(t, "Why this movie?", h.title())
	require.Equal(t, "not found", h.body().Text())
	require.Empty(t, h.body().QueryAll("*"))
}

func TestExplanationShowsLoadingThenProse(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	h := newHarness(t, dialogPage, modal.Config{
		Explainer: explainFunc(func(_ context.Context, q recs.ExplanationQuery) (*recs.Explanation, error) {
			<-release
			require.Equal(t, 5, q.MovieID)
			require.Zero(t, q.TMDBID)
			return &recs.Explanation{Movie: "Interstellar", Explanation: "You rate <em>space</em> epics highly."}, nil
		}),
	})

	h.show(modal.LocalExplanation{MovieID: 5})
	h.doc.Do(func() {
		require.Equal(t, "Loading personalized explanation...", h.body().Text())
		require.True(t, h.doc.ByID("infoModal").HasClass("show"))
	})
	close(release)
	h.tasks.Wait()

	require.Equal(t, "Interstellar", h.body().Query("h6").Text())
	require.Equal(t, "space", h.body().Query(".alert-info em").Text())
}

func TestCatalogExplanationFallsBackToCachedTitle(t *testing.T) {
	t.Parallel()

	h := newHarness(t, dialogPage, modal.Config{
		Explainer: explainFunc(func(context.Context, recs.ExplanationQuery) (*recs.Explanation, error) {
			return &recs.Explanation{Explanation: "Popular with viewers like you."}, nil
		}),
	})
	h.show(modal.CatalogExplanation{TMDBID: 13, Title: "Forrest Gump"})
	h.tasks.Wait()

	require.Equal(t, "Forrest Gump", h.body().Query("h6").Text())
}

func TestExplanationTransportFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, dialogPage, modal.Config{
		Explainer: explainFunc(func(context.Context, recs.ExplanationQuery) (*recs.Explanation, error) {
			return nil, errors.New("recs: request failed: EOF")
		}),
	})
	h.show(modal.LocalExplanation{MovieID: 1})
	h.tasks.Wait()

	require.Equal(t, "Failed to load explanation.", h.body().Text())
	require.Equal(t, 1, h.logs.FilterMessage("explanation request failed").Len())
}

func TestLateExplanationOverwritesNewerContent(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	h := newHarness(t, dialogPage, modal.Config{
		Explainer: explainFunc(func(context.Context, recs.ExplanationQuery) (*recs.Explanation, error) {
			<-release
			return &recs.Explanation{Movie: "Heat", Explanation: "Crime dramas."}, nil
		}),
	})

	h.show(modal.LocalExplanation{MovieID: 3})
	h.show(modal.TrailerSearch{Title: "Inception"})
	require.Equal(t, "Movie Trailer", h.title())

	close(release)
	h.tasks.Wait()

	require.Equal(t, modal.TrailerSearch{Title: "Inception"}, h.router.Active())
	require.Equal(t, "Heat", h.body().Query("h6").Text(), "builders are not cancelled")
}

func TestTrailerOpensSearch(t *testing.T) {
	t.Parallel()

	h := newHarness(t, dialogPage, modal.Config{})
	h.show(modal.TrailerSearch{Title: "Spirited Away"})

	require.Equal(t, "Movie Trailer", h.title())
	btn := h.body().Query(".btn-open-trailer")
	require.True(t, btn.Exists())
	h.doc.Dispatch(btn, dom.Click)

	require.Equal(t, []string{"https://www.youtube.com/results?search_query=Spirited%20Away%20official%20trailer"}, h.opened)
	h.tasks.Wait()
}

func TestRagAnswer(t *testing.T) {
	t.Parallel()

	h := newHarness(t, dialogPage, modal.Config{
		Answerer: askFunc(func(_ context.Context, q string) (*recs.Answer, error) {
			require.Equal(t, "mind bending", q)
			return &recs.Answer{Answer: "Try Inception.", Hits: []recs.Hit{{Title: "Inception"}, {Title: "The Matrix"}}}, nil
		}),
	})
	h.show(modal.RagAnswer{Question: " mind bending "})
	h.tasks.Wait()

	require.Equal(t, "RAG Answer", h.title())
	require.Contains(t, h.body().Text(), "Try Inception.")
	require.Equal(t, "Context: Inception, The Matrix", h.body().Query(".small").Text())
	require.True(t, h.doc.ByID("infoModal").HasClass("show"))
}

func TestRagFailureOnlyLogs(t *testing.T) {
	t.Parallel()

	h := newHarness(t, dialogPage, modal.Config{
		Answerer: askFunc(func(context.Context, string) (*recs.Answer, error) {
			return nil, errors.New("recs: backend error (500): boom")
		}),
	})
	h.show(modal.RagAnswer{Question: "anything"})
	h.tasks.Wait()

	require.Empty(t, h.title())
	require.False(t, h.doc.ByID("infoModal").HasClass("show"))
	require.Equal(t, 1, h.logs.FilterMessage("answer request failed").Len())
}

func TestAbsentDialogIsNoop(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	calls := 0
	h := newHarness(t, `<html><body><div id="grid"></div></body></html>`, modal.Config{
		Explainer: explainFunc(func(context.Context, recs.ExplanationQuery) (*recs.Explanation, error) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			return &recs.Explanation{}, nil
		}),
	})

	for _, c := range []modal.Content{
		modal.RatingConfirmation{MovieID: 1, Rating: 3},
		modal.LocalExplanation{MovieID: 1},
		modal.CatalogExplanation{TMDBID: 2},
		modal.TrailerSearch{Title: "x"},
		modal.RagAnswer{Question: "y"},
	} {
		h.show(c)
	}
	h.tasks.Wait()

	require.Zero(t, calls)
	require.Nil(t, h.router.Active())
	require.False(t, h.router.Available())
}

func TestActionsWireCardControls(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var queries []recs.ExplanationQuery
	h := newHarness(t, dialogPage, modal.Config{
		Explainer: explainFunc(func(_ context.Context, q recs.ExplanationQuery) (*recs.Explanation, error) {
			mu.Lock()
			defer mu.Unlock()
			queries = append(queries, q)
			return &recs.Explanation{Error: "not found"}, nil
		}),
	})

	markup, err := dom.Markup(context.Background(), cards.List([]cards.Props{
		{Movie: recs.MovieSummary{ID: 5, TMDBID: 157336, Title: "Interstellar"}, Personalized: true, ShowExplanation: true},
		{Movie: recs.MovieSummary{TMDBID: 497, Title: "The Green Mile"}, ShowExplanation: true},
	}))
	require.NoError(t, err)

	actions := modal.NewActions(h.router)
	var wired, again int
	h.doc.Do(func() {
		grid := h.doc.ByID("grid")
		grid.SetInnerHTML(markup)
		wired = actions.Wire(grid)
		again = actions.Wire(h.doc.Root())
	})
	require.Equal(t, 4, wired)
	require.Zero(t, again, "controls are bound once")

	h.doc.Dispatch(h.doc.Query(".btn-expl-local"), dom.Click)
	h.tasks.Wait()
	h.doc.Dispatch(h.doc.Query(".btn-expl-tmdb"), dom.Click)
	h.tasks.Wait()
	require.Equal(t, []recs.ExplanationQuery{{MovieID: 5}, {TMDBID: 497}}, queries)
	require.Equal(t, modal.CatalogExplanation{TMDBID: 497, Title: "The Green Mile"}, h.router.Active())

	trailers := h.doc.QueryAll(".btn-trailer")
	require.Len(t, trailers, 2)
	h.doc.Dispatch(trailers[1], dom.Click)
	require.Equal(t, "Movie Trailer", h.title())
	require.True(t, strings.Contains(h.body().Query(".btn-open-trailer").Attr("data-url"), "The%20Green%20Mile"))
}
