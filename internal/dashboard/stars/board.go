// Package stars binds the interactive star rating controls rendered inside
// movie cards and keeps every on-screen control for a movie consistent.
package stars

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
)

// RatingWriter persists a rating for a movie key.
type RatingWriter interface {
	SubmitRating(ctx context.Context, movie, value int) error
}

// SavedFunc is invoked once per confirmed write.
type SavedFunc func(key, rating int)

// Config wires a Board.
type Config struct {
	Page   dom.Page
	Tasks  *dom.Tasks
	Writer RatingWriter
	Logger *zap.Logger
	// Context is used for rating writes. Defaults to context.Background.
	Context context.Context
	OnSaved SavedFunc
}

// Board owns the mounted widgets. All methods run on the UI thread.
type Board struct {
	page    dom.Page
	tasks   *dom.Tasks
	writer  RatingWriter
	logger  *zap.Logger
	ctx     context.Context
	onSaved SavedFunc

	widgets []*Widget
	seq     uint64
	latest  map[identity]uint64
}

type identity struct {
	kind byte
	id   int
}

// NewBoard constructs a Board.
func NewBoard(cfg Config) *Board {
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
	return &Board{
		page:    cfg.Page,
		tasks:   tasks,
		writer:  cfg.Writer,
		logger:  logger.Named("stars"),
		ctx:     ctx,
		onSaved: cfg.OnSaved,
		latest:  make(map[identity]uint64),
	}
}

// Mount binds a widget to every unbound .star-rating container below root.
func (b *Board) Mount(root dom.Element) int {
	if root == nil || !root.Exists() {
		return 0
	}
	b.prune()

	mounted := 0
	for _, el := range root.QueryAll("." + cards.StarContainerClass) {
		if b.bound(el) {
			continue
		}
		w := newWidget(b, el)
		b.widgets = append(b.widgets, w)
		mounted++
	}
	return mounted
}

// Widgets returns the widgets still attached to the page.
func (b *Board) Widgets() []*Widget {
	b.prune()
	return append([]*Widget(nil), b.widgets...)
}

func (b *Board) bound(el dom.Element) bool {
	for _, w := range b.widgets {
		if w.el.Is(el) {
			return true
		}
	}
	return false
}

func (b *Board) prune() {
	kept := b.widgets[:0]
	for _, w := range b.widgets {
		if w.el.Attached() {
			kept = append(kept, w)
		}
	}
	for i := len(kept); i < len(b.widgets); i++ {
		b.widgets[i] = nil
	}
	b.widgets = kept
}

// issue records a new write for the widget's movie and returns its sequence
// number. Every identifier of the movie advances so a later write through a
// widget keyed differently still supersedes this one.
func (b *Board) issue(w *Widget) uint64 {
	b.seq++
	for _, id := range w.identities() {
		b.latest[id] = b.seq
	}
	return b.seq
}

func (b *Board) current(w *Widget, seq uint64) bool {
	for _, id := range w.identities() {
		if b.latest[id] != seq {
			return false
		}
	}
	return true
}

func (b *Board) write(source *Widget, rating int) {
	key := source.Key()
	seq := b.issue(source)
	if b.writer == nil {
		b.logger.Debug("rating writer not configured", zap.Int("movie", key))
		source.settle()
		return
	}

	b.tasks.Go(func() {
		err := b.writer.SubmitRating(b.ctx, key, rating)
		b.page.Do(func() {
			b.acknowledge(source, rating, seq, err)
		})
	})
}

func (b *Board) acknowledge(source *Widget, rating int, seq uint64, err error) {
	key := source.Key()
	source.settle()

	if err != nil {
		b.logger.Warn("rating write failed",
			zap.Int("movie", key),
			zap.Int("rating", rating),
			zap.Error(err),
		)
		return
	}
	if !b.current(source, seq) {
		b.logger.Debug("dropping stale rating acknowledgment",
			zap.Int("movie", key),
			zap.Int("rating", rating),
			zap.Uint64("seq", seq),
		)
		return
	}

	b.prune()
	for _, w := range b.widgets {
		if w == source || w.sameMovie(source) {
			w.commit(rating)
		}
	}
	if b.onSaved != nil {
		b.onSaved(key, rating)
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
