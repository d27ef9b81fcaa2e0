// Package grids loads the recommendation grids: fetch, rating lookup, card
// rendering and control wiring for one named region.
package grids

import (
	"context"

	"github.com/a-h/templ"
	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/presence"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
	gridtmpl "finitefield.org/movie-dashboard/internal/dashboard/templates/grids"
)

// Region ids of the two dashboard grids.
const (
	ForYouID   = presence.ForYouGrid
	TrendingID = presence.TrendingGrid
)

// DefaultPageSize is the number of records requested per grid.
const DefaultPageSize = 12

// FetchFunc retrieves one page of records for a grid.
type FetchFunc func(ctx context.Context, k int) (*recs.RecommendationPage, error)

// RatingLookup resolves the visitor's ratings for a batch of ids. It never
// fails; unknown ratings are simply absent.
type RatingLookup interface {
	Fetch(ctx context.Context, kind recs.IDKind, ids []int) recs.Ratings
}

// Binder wires interactive behaviour into freshly rendered markup.
type Binder interface {
	Bind(root dom.Element)
}

// BinderFunc adapts a function to Binder.
type BinderFunc func(root dom.Element)

// Bind implements Binder.
func (f BinderFunc) Bind(root dom.Element) { f(root) }

// Source describes one grid.
type Source struct {
	Region          string
	Kind            recs.IDKind
	Personalized    bool
	ShowExplanation bool
	Loading         string
	Failure         string
	Fetch           FetchFunc
}

// Config holds the collaborators shared by every loader.
type Config struct {
	Page     dom.Page
	Tasks    *dom.Tasks
	Ratings  RatingLookup
	Binder   Binder
	Logger   *zap.Logger
	PageSize int
	Context  context.Context
}

// Loader runs the load sequence for one grid.
type Loader struct {
	page    dom.Page
	tasks   *dom.Tasks
	ratings RatingLookup
	binder  Binder
	logger  *zap.Logger
	k       int
	ctx     context.Context
	source  Source
	runs    int
}

// New constructs a Loader for src.
func New(cfg Config, src Source) *Loader {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	k := cfg.PageSize
	if k <= 0 {
		k = DefaultPageSize
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tasks := cfg.Tasks
	if tasks == nil {
		tasks = &dom.Tasks{}
	}
	return &Loader{
		page:    cfg.Page,
		tasks:   tasks,
		ratings: cfg.Ratings,
		binder:  cfg.Binder,
		logger:  logger.Named("grids").With(zap.String("grid", src.Region)),
		k:       k,
		ctx:     ctx,
		source:  src,
	}
}

// Personalized builds the loader for the personalised grid.
func Personalized(cfg Config, svc recs.Service) *Loader {
	return New(cfg, Source{
		Region:          ForYouID,
		Kind:            recs.LocalID,
		Personalized:    true,
		ShowExplanation: true,
		Loading:         "Loading your recommendations...",
		Failure:         "Failed to load recommendations.",
		Fetch:           svc.Recommendations,
	})
}

// Trending builds the loader for the trending grid. Trending never claims
// personalisation, so its cards carry no explanation control.
func Trending(cfg Config, svc recs.Service) *Loader {
	return New(cfg, Source{
		Region:  TrendingID,
		Kind:    recs.ExternalID,
		Loading: "Loading trending movies...",
		Failure: "Failed to load trending movies.",
		Fetch: func(ctx context.Context, k int) (*recs.RecommendationPage, error) {
			movies, err := svc.Trending(ctx, k)
			if err != nil {
				return nil, err
			}
			return &recs.RecommendationPage{Movies: movies}, nil
		},
	})
}

// Region returns the grid region.
func (l *Loader) Region() dom.Region { return dom.NewRegion(l.page, l.source.Region) }

// Runs reports how many loads found their region and started.
func (l *Loader) Runs() int { return l.runs }

// Load starts the load sequence. It must run on the UI thread and returns
// once the loading indicator is shown; the rest completes as a task.
func (l *Loader) Load() {
	el := l.Region().Element()
	if !el.Exists() {
		l.logger.Debug("grid region absent, skipping load")
		return
	}
	l.runs++
	l.render(el, gridtmpl.Loading(l.source.Loading))

	l.tasks.Go(func() {
		page, err := l.source.Fetch(l.ctx, l.k)
		if err != nil {
			l.logger.Warn("grid fetch failed", zap.Error(err))
			l.page.Do(func() { l.fail(el) })
			return
		}
		if page == nil {
			page = &recs.RecommendationPage{}
		}
		if page.Insufficient != nil {
			signal := *page.Insufficient
			l.page.Do(func() { l.render(el, gridtmpl.Progress(signal)) })
			return
		}

		var rated recs.Ratings
		if ids := IDs(page.Movies, l.source.Kind); len(ids) > 0 && l.ratings != nil {
			rated = l.ratings.Fetch(l.ctx, l.source.Kind, ids)
		}
		props := Props(page.Movies, l.source.Kind, rated, l.source.Personalized, l.source.ShowExplanation)
		l.page.Do(func() {
			if !l.render(el, cards.List(props)) {
				return
			}
			if l.binder != nil {
				l.binder.Bind(el)
			}
		})
	})
}

func (l *Loader) fail(el dom.Element) {
	if err := dom.Render(l.ctx, el, gridtmpl.Failure(l.source.Failure)); err != nil {
		l.logger.Error("render grid failure", zap.Error(err))
	}
}

// render replaces the grid contents, falling back to the failure message so
// no partial card list is ever left behind.
func (l *Loader) render(el dom.Element, c templ.Component) bool {
	if err := dom.Render(l.ctx, el, c); err != nil {
		l.logger.Error("render grid", zap.Error(err))
		l.fail(el)
		return false
	}
	return true
}

// IDs collects the identifiers of kind from movies.
func IDs(movies []recs.MovieSummary, kind recs.IDKind) []int {
	ids := make([]int, 0, len(movies))
	for _, m := range movies {
		if id := m.IDFor(kind); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Props pairs each movie with its looked-up rating.
func Props(movies []recs.MovieSummary, kind recs.IDKind, rated recs.Ratings, personalized, showExplanation bool) []cards.Props {
	out := make([]cards.Props, 0, len(movies))
	for _, m := range movies {
		out = append(out, cards.Props{
			Movie:           m,
			Personalized:    personalized,
			Rating:          rated.Get(m.IDFor(kind)),
			ShowExplanation: showExplanation,
		})
	}
	return out
}
