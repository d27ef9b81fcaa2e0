package modal

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/presence"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
	modaltmpl "finitefield.org/movie-dashboard/internal/dashboard/templates/modal"
)

// Dialog region ids.
const (
	DialogID = presence.Dialog
	TitleID  = presence.DialogTitle
	BodyID   = presence.DialogBody
)

// Presenter makes the dialog visible.
type Presenter interface {
	Show(dialog dom.Element)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(dialog dom.Element)

// Show implements Presenter.
func (f PresenterFunc) Show(dialog dom.Element) { f(dialog) }

// ClassPresenter shows the dialog by toggling its classes, as a headless
// stand-in for the dialog widget.
type ClassPresenter struct{}

// Show implements Presenter.
func (ClassPresenter) Show(dialog dom.Element) {
	dialog.AddClass("show")
	dialog.SetAttr("aria-hidden", "false")
}

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string)

// Open implements Opener.
func (f OpenerFunc) Open(url string) { f(url) }

// Explainer fetches one explanation.
type Explainer interface {
	Explain(ctx context.Context, query recs.ExplanationQuery) (*recs.Explanation, error)
}

// Answerer answers free-text questions.
type Answerer interface {
	Ask(ctx context.Context, question string) (*recs.Answer, error)
}

// Config wires a Router.
type Config struct {
	Page      dom.Page
	Tasks     *dom.Tasks
	Explainer Explainer
	Answerer  Answerer
	Presenter Presenter
	Opener    Opener
	Logger    *zap.Logger
	Context   context.Context
}

// Router fills and shows the shared dialog. Methods run on the UI thread.
type Router struct {
	page      dom.Page
	tasks     *dom.Tasks
	explainer Explainer
	answerer  Answerer
	presenter Presenter
	opener    Opener
	logger    *zap.Logger
	ctx       context.Context

	active Content
}

// NewRouter constructs a Router.
func NewRouter(cfg Config) *Router {
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
	presenter := cfg.Presenter
	if presenter == nil {
		presenter = ClassPresenter{}
	}
	return &Router{
		page:      cfg.Page,
		tasks:     tasks,
		explainer: cfg.Explainer,
		answerer:  cfg.Answerer,
		presenter: presenter,
		opener:    cfg.Opener,
		logger:    logger.Named("modal"),
		ctx:       ctx,
	}
}

// Active returns the most recently requested content.
func (r *Router) Active() Content { return r.active }

// Available reports whether every dialog region is present.
func (r *Router) Available() bool {
	_, ok := r.regions()
	return ok
}

type regions struct {
	dialog, title, body dom.Element
}

func (r *Router) regions() (regions, bool) {
	g := regions{
		dialog: r.page.ByID(DialogID),
		title:  r.page.ByID(TitleID),
		body:   r.page.ByID(BodyID),
	}
	return g, g.dialog.Exists() && g.title.Exists() && g.body.Exists()
}

// Show replaces the active content and runs its builder. Without a dialog
// every request is a no-op.
func (r *Router) Show(c Content) {
	g, ok := r.regions()
	if !ok {
		r.logger.Debug("dialog absent, dropping request", zap.String("content", Kind(c)))
		return
	}
	r.active = c

	switch v := c.(type) {
	case RatingConfirmation:
		r.showRating(g, v)
	case LocalExplanation:
		r.showExplanation(g, recs.ExplanationQuery{MovieID: v.MovieID}, "")
	case CatalogExplanation:
		r.showExplanation(g, recs.ExplanationQuery{TMDBID: v.TMDBID}, v.Title)
	case TrailerSearch:
		r.showTrailer(g, v)
	case RagAnswer:
		r.showAnswer(v)
	default:
		r.logger.Warn("unknown dialog content", zap.String("content", Kind(c)))
	}
}

func (r *Router) showRating(g regions, v RatingConfirmation) {
	g.title.SetText(modaltmpl.RatingTitle)
	g.body.SetText(modaltmpl.RatingMessage(v.Rating))
	r.presenter.Show(g.dialog)
}

func (r *Router) showExplanation(g regions, query recs.ExplanationQuery, fallbackTitle string) {
	g.title.SetText(modaltmpl.ExplanationTitle)
	g.body.SetText(modaltmpl.ExplanationLoading)
	r.presenter.Show(g.dialog)

	if r.explainer == nil {
		g.body.SetText(modaltmpl.ExplanationFailed)
		return
	}
	r.tasks.Go(func() {
		exp, err := r.explainer.Explain(r.ctx, query)
		r.page.Do(func() {
			switch {
			case err != nil:
				r.logger.Warn("explanation request failed", zap.Error(err))
				g.body.SetText(modaltmpl.ExplanationFailed)
			case exp.Error != "":
				g.body.SetText(exp.Error)
			default:
				movie := exp.Movie
				if strings.TrimSpace(movie) == "" {
					movie = fallbackTitle
				}
				if err := dom.Render(r.ctx, g.body, modaltmpl.ExplanationBody(movie, exp.Explanation)); err != nil {
					r.logger.Error("render explanation", zap.Error(err))
					g.body.SetText(modaltmpl.ExplanationFailed)
				}
			}
		})
	})
}

func (r *Router) showTrailer(g regions, v TrailerSearch) {
	url := helpers.TrailerURL(v.Title)
	g.title.SetText(modaltmpl.TrailerTitle)
	if err := dom.Render(r.ctx, g.body, modaltmpl.TrailerBody(v.Title, url)); err != nil {
		r.logger.Error("render trailer", zap.Error(err))
		return
	}
	g.body.Query("."+modaltmpl.OpenTrailerClass).On(dom.Click, func(dom.Event) {
		if r.opener == nil {
			r.logger.Debug("no opener configured", zap.String("url", url))
			return
		}
		r.opener.Open(url)
	})
	r.presenter.Show(g.dialog)
}

func (r *Router) showAnswer(v RagAnswer) {
	question := strings.TrimSpace(v.Question)
	if question == "" || r.answerer == nil {
		return
	}
	r.tasks.Go(func() {
		ans, err := r.answerer.Ask(r.ctx, question)
		if err != nil {
			r.logger.Error("answer request failed", zap.Error(err))
			return
		}
		r.page.Do(func() {
			g, ok := r.regions()
			if !ok {
				return
			}
			g.title.SetText(modaltmpl.AnswerTitle)
			if err := dom.Render(r.ctx, g.body, modaltmpl.AnswerBody(ans.Answer, ans.Titles())); err != nil {
				r.logger.Error("render answer", zap.Error(err))
				return
			}
			r.presenter.Show(g.dialog)
		})
	})
}
