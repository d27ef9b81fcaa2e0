// Package discover implements the in-place search view and the restore of
// the dashboard it temporarily replaces.
package discover

import (
	"context"
	"strings"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/grids"
	"finitefield.org/movie-dashboard/internal/dashboard/presence"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/search"
)

// MainID is the dashboard region the search view replaces.
const MainID = presence.MainContent

// Ids of the search form fields.
const (
	ActorID    = presence.ActorField
	GenreID    = presence.GenreField
	LanguageID = presence.LanguageField
)

// ViewMode is the view currently occupying the dashboard region.
type ViewMode int

const (
	Home ViewMode = iota
	SearchResults
)

func (m ViewMode) String() string {
	if m == SearchResults {
		return "search_results"
	}
	return "home"
}

// Snapshot is the dashboard markup captured once at startup.
type Snapshot struct {
	markup string
	ok     bool
}

// Capture records the current markup of el.
func Capture(el dom.Element) Snapshot {
	if el == nil || !el.Exists() {
		return Snapshot{}
	}
	return Snapshot{markup: el.InnerHTML(), ok: true}
}

// Markup returns the captured markup.
func (s Snapshot) Markup() string { return s.markup }

// Valid reports whether anything was captured.
func (s Snapshot) Valid() bool { return s.ok }

// Searcher runs the catalogue search.
type Searcher interface {
	Discover(ctx context.Context, query recs.DiscoverQuery) ([]recs.MovieSummary, error)
}

// Resumer is re-run after the dashboard is restored.
type Resumer interface {
	Load()
}

// Config wires a Flow.
type Config struct {
	Page     dom.Page
	Tasks    *dom.Tasks
	Searcher Searcher
	Ratings  grids.RatingLookup
	Binder   grids.Binder
	Resumers []Resumer
	Logger   *zap.Logger
	Context  context.Context
}

// Flow switches the dashboard region between the home view and search
// results. Methods run on the UI thread.
type Flow struct {
	page     dom.Page
	tasks    *dom.Tasks
	searcher Searcher
	ratings  grids.RatingLookup
	binder   grids.Binder
	resumers []Resumer
	logger   *zap.Logger
	ctx      context.Context

	snapshot Snapshot
	mode     ViewMode
}

// New constructs a Flow restoring to snapshot.
func New(cfg Config, snapshot Snapshot) *Flow {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tasks := cfg.Tasks
	if tasks == nil {
		tasks = &dom.Tasks{}
	}
	return &Flow{
		page:     cfg.Page,
		tasks:    tasks,
		searcher: cfg.Searcher,
		ratings:  cfg.Ratings,
		binder:   cfg.Binder,
		resumers: cfg.Resumers,
		logger:   logger.Named("discover"),
		ctx:      ctx,
		snapshot: snapshot,
		mode:     Home,
	}
}

// Mode returns the active view.
func (f *Flow) Mode() ViewMode { return f.mode }

// Snapshot returns the captured home markup.
func (f *Flow) Snapshot() Snapshot { return f.snapshot }

// QueryFromPage reads the search form fields. Missing fields read as empty.
func QueryFromPage(page dom.Page) recs.DiscoverQuery {
	return recs.DiscoverQuery{
		Actor:    strings.TrimSpace(page.ByID(ActorID).Value()),
		Genre:    strings.TrimSpace(page.ByID(GenreID).Value()),
		Language: strings.TrimSpace(page.ByID(LanguageID).Value()),
	}
}

// Discover replaces the dashboard with the results view and runs the search.
func (f *Flow) Discover(query recs.DiscoverQuery) {
	main := f.page.ByID(MainID)
	if !main.Exists() {
		f.logger.Debug("dashboard region absent, search disabled")
		return
	}
	if err := dom.Render(f.ctx, main, search.Scaffold(query.Echo())); err != nil {
		f.logger.Error("render search scaffold", zap.Error(err))
		return
	}
	f.mode = SearchResults
	main.Query("#"+search.BackID).On(dom.Click, func(dom.Event) { f.Back() })

	grid := f.page.ByID(search.GridID)
	if f.searcher == nil {
		f.render(grid, search.Failure())
		return
	}

	f.tasks.Go(func() {
		results, err := f.searcher.Discover(f.ctx, query)
		if err != nil {
			f.logger.Warn("search failed", zap.Error(err))
			f.page.Do(func() { f.render(grid, search.Failure()) })
			return
		}
		if len(results) == 0 {
			f.page.Do(func() { f.render(grid, search.NoMatches()) })
			return
		}

		var rated recs.Ratings
		if f.ratings != nil {
			rated = f.ratings.Fetch(f.ctx, recs.ExternalID, grids.IDs(results, recs.ExternalID))
		}
		props := grids.Props(results, recs.ExternalID, rated, false, false)
		f.page.Do(func() {
			if !f.render(grid, cards.List(props)) {
				return
			}
			if f.binder != nil {
				f.binder.Bind(grid)
			}
		})
	})
}

// Back restores the captured dashboard, re-runs the loaders and rewires the
// restored region. The snapshot itself is never modified.
func (f *Flow) Back() {
	main := f.page.ByID(MainID)
	if !main.Exists() || !f.snapshot.Valid() {
		return
	}
	main.SetInnerHTML(f.snapshot.Markup())
	f.mode = Home
	for _, r := range f.resumers {
		if r != nil {
			r.Load()
		}
	}
	if f.binder != nil {
		f.binder.Bind(main)
	}
}

func (f *Flow) render(grid dom.Element, c templ.Component) bool {
	if err := dom.Render(f.ctx, grid, c); err != nil {
		f.logger.Error("render search results", zap.Error(err))
		return false
	}
	return true
}
