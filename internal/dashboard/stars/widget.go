package stars

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

// State is the interaction state of a widget.
type State int

const (
	// Idle shows the committed rating.
	Idle State = iota
	// Hovering previews the star under the pointer.
	Hovering
	// Committing has at least one write awaiting acknowledgment.
	Committing
)

// String returns the lower-case state name used in logs.
func (s State) String() string {
	switch s {
	case Hovering:
		return "hovering"
	case Committing:
		return "committing"
	default:
		return "idle"
	}
}

// Widget is one bound .star-rating container.
type Widget struct {
	board     *Board
	el        dom.Element
	movieID   int
	tmdbID    int
	committed int
	// confirmed is the rating the label shows; it changes only on an
	// acknowledged write.
	confirmed int
	preview   int
	state     State
	// pending counts writes issued but not yet acknowledged.
	pending int
}

func newWidget(b *Board, el dom.Element) *Widget {
	committed := recs.ClampRating(atoi(el.Attr("data-current-rating")))
	w := &Widget{
		board:     b,
		el:        el,
		movieID:   atoi(el.Attr("data-movie-id")),
		tmdbID:    atoi(el.Attr("data-tmdb-id")),
		committed: committed,
		confirmed: committed,
	}
	el.On(dom.PointerEnter, w.onEnter)
	el.On(dom.PointerLeave, w.onLeave)
	el.On(dom.Click, w.onClick)
	return w
}

// Key is the identifier ratings for this movie are written under.
func (w *Widget) Key() int {
	if w.movieID != 0 {
		return w.movieID
	}
	return w.tmdbID
}

// MovieID is the local id, 0 for catalogue movies.
func (w *Widget) MovieID() int { return w.movieID }

// TMDBID is the external id, 0 when the card carries none.
func (w *Widget) TMDBID() int { return w.tmdbID }

// Committed is the rating the stars show outside a hover.
func (w *Widget) Committed() int { return w.committed }

// Preview is the hovered star, 0 when not hovering.
func (w *Widget) Preview() int { return w.preview }

// State returns the interaction state.
func (w *Widget) State() State { return w.state }

// Element returns the bound container.
func (w *Widget) Element() dom.Element { return w.el }

// Hover previews 1..k without touching the committed rating.
func (w *Widget) Hover(k int) {
	if k < recs.MinRating || k > recs.MaxRating {
		return
	}
	w.preview = k
	if w.state != Committing {
		w.state = Hovering
	}
	w.highlight(k)
}

// Leave drops the preview and shows the committed rating again.
func (w *Widget) Leave() {
	w.preview = 0
	if w.state == Hovering {
		w.state = Idle
	}
	w.paint(w.committed)
}

// Rate commits k optimistically and issues the write.
func (w *Widget) Rate(k int) {
	if k < recs.MinRating || k > recs.MaxRating {
		return
	}
	w.committed = k
	w.preview = 0
	w.state = Committing
	w.pending++
	w.el.SetAttr("data-current-rating", strconv.Itoa(k))
	w.paint(k)
	w.board.write(w, k)
}

func (w *Widget) sameMovie(other *Widget) bool {
	if w.movieID != 0 && w.movieID == other.movieID {
		return true
	}
	return w.tmdbID != 0 && w.tmdbID == other.tmdbID
}

func (w *Widget) identities() []identity {
	ids := make([]identity, 0, 2)
	if w.movieID != 0 {
		ids = append(ids, identity{kind: 'm', id: w.movieID})
	}
	if w.tmdbID != 0 {
		ids = append(ids, identity{kind: 't', id: w.tmdbID})
	}
	return ids
}

// settle leaves Committing once every issued write has been acknowledged.
func (w *Widget) settle() {
	if w.pending > 0 {
		w.pending--
	}
	if w.pending == 0 && w.state == Committing {
		w.state = Idle
	}
}

// commit applies a confirmed rating and re-renders the stars and the label.
func (w *Widget) commit(rating int) {
	w.committed = rating
	w.confirmed = rating
	w.preview = 0
	if w.pending == 0 {
		w.state = Idle
	}
	w.el.SetAttr("data-current-rating", strconv.Itoa(rating))
	w.paint(rating)
}

// paint re-renders the container with 1..rating filled and the label at the
// confirmed rating, the same markup the card template produces.
func (w *Widget) paint(rating int) {
	row := cards.StarRow(rating)
	if w.confirmed > 0 {
		row = helpers.Join(row, cards.RatingLabel(w.Key(), w.confirmed))
	}
	markup, err := dom.Markup(context.Background(), row)
	if err != nil {
		w.board.logger.Error("render stars", zap.Error(err))
		return
	}
	w.el.SetInnerHTML(markup)
}

// highlight lights exactly 1..k. Stars above k lose their fill until the
// next paint.
func (w *Widget) highlight(k int) {
	for _, star := range w.stars() {
		if starValue(star) <= k {
			star.AddClass("active")
		} else {
			star.RemoveClass("filled", "active")
		}
	}
}

func (w *Widget) stars() []dom.Element {
	return w.el.QueryAll("." + cards.StarClass)
}

func (w *Widget) onEnter(e dom.Event) {
	if k := starValue(e.Target); k > 0 {
		w.Hover(k)
	}
}

func (w *Widget) onLeave(e dom.Event) {
	if starValue(e.Target) > 0 {
		w.Leave()
	}
}

func (w *Widget) onClick(e dom.Event) {
	if k := starValue(e.Target); k > 0 {
		w.Rate(k)
	}
}

func starValue(el dom.Element) int {
	if el == nil || !el.HasClass(cards.StarClass) {
		return 0
	}
	k := atoi(el.Attr("data-rating"))
	if k < recs.MinRating || k > recs.MaxRating {
		return 0
	}
	return k
}
