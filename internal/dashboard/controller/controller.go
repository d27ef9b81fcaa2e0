// Package controller boots the dashboard on a page: it detects which regions
// exist, wires every present feature and starts both grid loads.
package controller

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/discover"
	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/grids"
	"finitefield.org/movie-dashboard/internal/dashboard/modal"
	"finitefield.org/movie-dashboard/internal/dashboard/presence"
	"finitefield.org/movie-dashboard/internal/dashboard/ratings"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/stars"
	"finitefield.org/movie-dashboard/internal/dashboard/theme"
)

// AskPrompt is shown when the visitor asks a free-text question.
const AskPrompt = "Ask about a movie type:"

var (
	// ErrStarted is returned when Start is called twice.
	ErrStarted = errors.New("controller: already started")
	errNoPage  = errors.New("controller: page is required")
	errNoSvc   = errors.New("controller: service is required")
)

// Prompter asks the visitor for a line of text. ok is false when the visitor
// dismissed the prompt.
type Prompter interface {
	Prompt(message string) (answer string, ok bool)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(message string) (string, bool)

// Prompt implements Prompter.
func (f PrompterFunc) Prompt(message string) (string, bool) { return f(message) }

// Options configures a Controller. Only Page and Service are required.
type Options struct {
	Page       dom.Page
	Service    recs.Service
	Logger     *zap.Logger
	ThemeStore theme.Store
	Preference theme.SchemePreference
	Presenter  modal.Presenter
	Opener     modal.Opener
	Prompter   Prompter
	PageSize   int
}

// Controller owns the dashboard components for one page.
type Controller struct {
	opts   Options
	logger *zap.Logger
	tasks  *dom.Tasks

	started  bool
	report   presence.Report
	theme    *theme.Controller
	board    *stars.Board
	router   *modal.Router
	actions  *modal.Actions
	forYou   *grids.Loader
	trending *grids.Loader
	flow     *discover.Flow
}

// New validates opts and returns an unstarted Controller.
func New(opts Options) (*Controller, error) {
	if opts.Page == nil {
		return nil, errNoPage
	}
	if opts.Service == nil {
		return nil, errNoSvc
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{opts: opts, logger: logger, tasks: &dom.Tasks{}}, nil
}

// Start runs the boot sequence on the UI thread. Network work started here
// and by later interactions uses ctx.
func (c *Controller) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var err error
	c.opts.Page.Do(func() {
		if c.started {
			err = ErrStarted
			return
		}
		c.started = true
		c.boot(ctx)
	})
	return err
}

func (c *Controller) boot(ctx context.Context) {
	page, svc := c.opts.Page, c.opts.Service

	c.report = presence.Detect(page)
	c.report.Log(c.logger.Named("presence"))

	c.theme = theme.New(page, c.opts.ThemeStore, c.opts.Preference, c.logger)
	c.theme.Init()

	// Captured before any load so a restore starts from empty grids.
	snapshot := discover.Capture(page.ByID(discover.MainID))
	lookup := ratings.NewStore(svc, c.logger)

	c.router = modal.NewRouter(modal.Config{
		Page:      page,
		Tasks:     c.tasks,
		Explainer: svc,
		Answerer:  svc,
		Presenter: c.opts.Presenter,
		Opener:    c.opts.Opener,
		Logger:    c.logger,
		Context:   ctx,
	})
	c.actions = modal.NewActions(c.router)
	c.board = stars.NewBoard(stars.Config{
		Page:    page,
		Tasks:   c.tasks,
		Writer:  svc,
		Logger:  c.logger,
		Context: ctx,
		OnSaved: func(key, rating int) {
			c.router.Show(modal.RatingConfirmation{MovieID: key, Rating: rating})
		},
	})
	binder := grids.BinderFunc(func(root dom.Element) {
		c.board.Mount(root)
		c.actions.Wire(root)
	})

	gridCfg := grids.Config{
		Page:     page,
		Tasks:    c.tasks,
		Ratings:  lookup,
		Binder:   binder,
		Logger:   c.logger,
		PageSize: c.opts.PageSize,
		Context:  ctx,
	}
	c.forYou = grids.Personalized(gridCfg, svc)
	c.trending = grids.Trending(gridCfg, svc)

	c.flow = discover.New(discover.Config{
		Page:     page,
		Tasks:    c.tasks,
		Searcher: svc,
		Ratings:  lookup,
		Binder:   binder,
		Resumers: []discover.Resumer{c.forYou, c.trending},
		Logger:   c.logger,
		Context:  ctx,
	}, snapshot)

	page.ByID(presence.DiscoverBtn).On(dom.Click, func(dom.Event) {
		c.flow.Discover(discover.QueryFromPage(page))
	})
	page.ByID(presence.AskBtn).On(dom.Click, func(dom.Event) { c.ask() })

	c.forYou.Load()
	c.trending.Load()
	c.logger.Info("dashboard started", zap.Int("features", len(c.report.Enabled())))
}

func (c *Controller) ask() {
	if c.opts.Prompter == nil {
		c.logger.Debug("no prompter configured")
		return
	}
	q, ok := c.opts.Prompter.Prompt(AskPrompt)
	if !ok || strings.TrimSpace(q) == "" {
		return
	}
	c.router.Show(modal.RagAnswer{Question: q})
}

// Wait blocks until every outstanding network task has completed.
func (c *Controller) Wait() { c.tasks.Wait() }

// Presence returns the feature report taken at boot.
func (c *Controller) Presence() presence.Report { return c.report }

// Theme returns the theme controller.
func (c *Controller) Theme() *theme.Controller { return c.theme }

// Board returns the star widget board.
func (c *Controller) Board() *stars.Board { return c.board }

// Router returns the dialog router.
func (c *Controller) Router() *modal.Router { return c.router }

// Flow returns the discover flow.
func (c *Controller) Flow() *discover.Flow { return c.flow }

// Loaders returns the personalised and trending loaders.
func (c *Controller) Loaders() (forYou, trending *grids.Loader) { return c.forYou, c.trending }
