package discover_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"finitefield.org/movie-dashboard/internal/dashboard/discover"
	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/grids"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

const page = `<html><body>` +
	`<input id="actor" value=" Tom Hanks "/><input id="genre" value=""/><input id="lang" value="en"/>` +
	`<main id="mainContent"><section><h2>Recommended</h2><div id="forYouGrid" class="row g-3"></div></section>` +
	`<section><h2>Trending</h2><div id="trendingGrid" class="row g-3"></div></section></main>` +
	`</body></html>`

type countingResumer struct{ n int }

func (c *countingResumer) Load() { c.n++ }

type fakeSearcher struct {
	mu      sync.Mutex
	queries []recs.DiscoverQuery
	results []recs.MovieSummary
	err     error
	gate    chan struct{}
}

func (f *fakeSearcher) Discover(_ context.Context, q recs.DiscoverQuery) ([]recs.MovieSummary, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return f.results, f.err
}

type fakeLookup struct {
	calls int
	out   recs.Ratings
}

func (f *fakeLookup) Fetch(context.Context, recs.IDKind, []int) recs.Ratings {
	f.calls++
	return f.out
}

type harness struct {
	doc      *dom.Document
	tasks    *dom.Tasks
	flow     *discover.Flow
	forYou   *countingResumer
	trending *countingResumer
	lookup   *fakeLookup
	bound    []string
	snapshot string
}

func newHarness(t *testing.T, searcher discover.Searcher) *harness {
	t.Helper()

	doc, err := dom.Parse(page)
	require.NoError(t, err)
	h := &harness{
		doc:      doc,
		tasks:    &dom.Tasks{},
		forYou:   &countingResumer{},
		trending: &countingResumer{},
		lookup:   &fakeLookup{},
	}
	snapshot := discover.Capture(doc.ByID(discover.MainID))
	h.snapshot = snapshot.Markup()
	h.flow = discover.New(discover.Config{
		Page:     doc,
		Tasks:    h.tasks,
		Searcher: searcher,
		Ratings:  h.lookup,
		Binder:   grids.BinderFunc(func(root dom.Element) { h.bound = append(h.bound, root.ID()) }),
		Resumers: []discover.Resumer{h.forYou, h.trending},
	}, snapshot)
	return h
}

func (h *harness) discover() {
	h.doc.Do(func() {
		h.flow.Discover(discover.QueryFromPage(h.doc))
	})
}

func (h *harness) back(t *testing.T) {
	t.Helper()

	btn := h.doc.ByID("btnBackToHome")
	require.True(t, btn.Exists(), "back control must be rendered")
	h.doc.Dispatch(btn, dom.Click)
}

func TestDiscoverThenBackRestoresSnapshot(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{gate: make(chan struct{})}
	h := newHarness(t, searcher)

	h.discover()
	require.Equal(t, discover.SearchResults, h.flow.Mode())
	require.False(t, h.doc.ByID("forYouGrid").Exists())
	require.Equal(t, "(Tom Hanks  en)", h.doc.ByID("searchTitle").Query("small").Text())
	require.Equal(t, "Searching TMDB…", strings.TrimSpace(h.doc.ByID("searchGrid").Text()))

	h.back(t)
	require.Equal(t, discover.Home, h.flow.Mode())
	require.Equal(t, h.snapshot, h.doc.ByID(discover.MainID).InnerHTML())
	require.Equal(t, 1, h.forYou.n)
	require.Equal(t, 1, h.trending.n)
	require.Equal(t, []string{discover.MainID}, h.bound)

	close(searcher.gate)
	h.tasks.Wait()
	require.Equal(t, h.snapshot, h.doc.ByID(discover.MainID).InnerHTML(), "a late search response must not touch the restored view")
	require.Equal(t, []recs.DiscoverQuery{{Actor: "Tom Hanks", Language: "en"}}, searcher.queries)
}

func TestSecondBackBehavesLikeFirst(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeSearcher{})

	for round := 1; round <= 2; round++ {
		h.discover()
		h.tasks.Wait()
		h.back(t)

		require.Equal(t, h.snapshot, h.doc.ByID(discover.MainID).InnerHTML())
		require.Equal(t, h.snapshot, h.flow.Snapshot().Markup())
		require.Equal(t, round, h.forYou.n)
		require.Equal(t, round, h.trending.n)
	}
}

func TestDiscoverRendersCatalogCardsWithoutExplanations(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: []recs.MovieSummary{
		{TMDBID: 13, Title: "Forrest Gump"},
		{TMDBID: 497, Title: "The Green Mile"},
	}}
	h := newHarness(t, searcher)
	h.lookup.out = recs.Ratings{497: 3}

	h.discover()
	h.tasks.Wait()

	grid := h.doc.ByID("searchGrid")
	require.Len(t, grid.QueryAll(".card-movie"), 2)
	require.Empty(t, grid.QueryAll(".btn-expl-local"))
	require.Empty(t, grid.QueryAll(".btn-expl-tmdb"))
	require.Len(t, grid.QueryAll(".btn-trailer"), 2)
	require.Equal(t, "3", grid.QueryAll(".star-rating")[1].Attr("data-current-rating"))
	require.Equal(t, 1, h.lookup.calls)
	require.Equal(t, []string{"searchGrid"}, h.bound)
}

func TestDiscoverNoMatches(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeSearcher{})
	h.discover()
	h.tasks.Wait()

	grid := h.doc.ByID("searchGrid")
	require.Contains(t, grid.Text(), "No matches.")
	require.Len(t, grid.QueryAll("b"), 3)
	require.Zero(t, h.lookup.calls)
}

func TestDiscoverFailure(t *testing.T) {
	t.Parallel()

	h := newHarness(t, &fakeSearcher{err: errors.New("recs: request failed")})
	h.discover()
	h.tasks.Wait()

	grid := h.doc.ByID("searchGrid")
	require.Equal(t, "Error contacting server.", strings.TrimSpace(grid.Text()))
	require.Empty(t, grid.QueryAll(".card-movie"))
}

func TestDiscoverWithoutDashboardIsNoop(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(`<html><body><p>sign in</p></body></html>`)
	require.NoError(t, err)
	searcher := &fakeSearcher{}
	flow := discover.New(discover.Config{Page: doc, Searcher: searcher}, discover.Capture(doc.ByID(discover.MainID)))

	doc.Do(func() {
		flow.Discover(discover.QueryFromPage(doc))
		flow.Back()
	})
	require.Equal(t, discover.Home, flow.Mode())
	require.Empty(t, searcher.queries)
	require.False(t, flow.Snapshot().Valid())
}
