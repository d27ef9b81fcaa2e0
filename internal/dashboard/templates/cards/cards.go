// Package cards renders movie cards and their star rows.
package cards

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

// Selectors shared by the card markup and the components that bind to it.
const (
	StarContainerClass = "star-rating"
	StarClass          = "star"
	LabelClass         = "rating-value"
	LabelIDPrefix      = "user-rating-value-"

	LocalExplanationClass   = "btn-expl-local"
	CatalogExplanationClass = "btn-expl-tmdb"
	TrailerClass            = "btn-trailer"
)

// Explanation selects the explanation control a card carries.
type Explanation int

const (
	// NoExplanation omits the control.
	NoExplanation Explanation = iota
	// LocalExplanation keys the control by local id.
	LocalExplanation
	// CatalogExplanation keys the control by external id with cached details.
	CatalogExplanation
)

// ExplanationFor applies the card decision table.
func ExplanationFor(personalized, showExplanation bool) Explanation {
	switch {
	case !showExplanation:
		return NoExplanation
	case personalized:
		return LocalExplanation
	default:
		return CatalogExplanation
	}
}

// Props is the input to Card.
type Props struct {
	Movie           recs.MovieSummary
	Personalized    bool
	Rating          int
	ShowExplanation bool
}

// Card renders one movie column. It performs no I/O; star behaviour is bound
// later by mounting the .star-rating container.
func Card(p Props) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := p.Movie
		title := helpers.Escape(m.Title)
		rating := recs.ClampRating(p.Rating)

		var b strings.Builder
		b.WriteString(`<div class="col-12 col-sm-6 col-md-4 col-lg-3">`)
		b.WriteString(`<div class="card card-movie h-100">`)
		fmt.Fprintf(&b, `<img src="%s" class="poster" alt="%s"/>`, helpers.Escape(helpers.Poster(m.Poster)), title)
		b.WriteString(`<div class="p-3 d-flex flex-column">`)
		fmt.Fprintf(&b, `<div class="fw-semibold mb-1 text-truncate" title="%s">%s</div>`, title, title)
		fmt.Fprintf(&b, `<div class="small text-muted mb-2">⭐ %s · %s</div>`, helpers.Vote(m.Vote), helpers.Escape(string(m.Year)))
		b.WriteString(`<div class="mt-auto d-flex flex-column gap-2">`)
		fmt.Fprintf(&b, `<div class="%s" data-movie-id="%s" data-tmdb-id="%s" data-current-rating="%d">`,
			StarContainerClass, helpers.ID(m.ID), helpers.ID(m.TMDBID), rating)
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if err := Stars(m.Key(), rating).Render(ctx, w); err != nil {
			return err
		}

		b.Reset()
		b.WriteString(`</div><div class="d-flex gap-2 flex-wrap">`)
		switch ExplanationFor(p.Personalized, p.ShowExplanation) {
		case LocalExplanation:
			fmt.Fprintf(&b, `<button class="btn btn-sm btn-outline-primary %s" data-id="%s">Why?</button>`,
				LocalExplanationClass, helpers.ID(m.ID))
		case CatalogExplanation:
			fmt.Fprintf(&b, `<button class="btn btn-sm btn-outline-primary %s" data-tmdb="%s" data-title="%s" data-vote="%s" data-pop="%s">Why?</button>`,
				CatalogExplanationClass, helpers.ID(m.TMDBID), title, helpers.Number(m.Vote), helpers.Number(m.Popularity))
		}
		fmt.Fprintf(&b, `<button class="btn btn-sm btn-outline-secondary %s" data-title="%s">Trailer</button>`, TrailerClass, title)
		b.WriteString(`</div></div></div></div></div>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// List renders cards in order.
func List(props []Props) templ.Component {
	components := make([]templ.Component, 0, len(props))
	for _, p := range props {
		components = append(components, Card(p))
	}
	return helpers.Join(components...)
}

// Stars renders the inner markup of a .star-rating container: the star row,
// followed by the numeric label when rating > 0.
func Stars(key, rating int) templ.Component {
	row := StarRow(rating)
	if rating <= 0 {
		return row
	}
	return helpers.Join(row, RatingLabel(key, rating))
}

// StarRow renders five stars with 1..rating filled.
func StarRow(rating int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		for i := recs.MinRating; i <= recs.MaxRating; i++ {
			class := StarClass
			if i <= rating {
				class += " filled active"
			}
			fmt.Fprintf(&b, `<span class="%s" data-rating="%d">★</span>`, class, i)
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// RatingLabel renders the "k/5" label for a movie key.
func RatingLabel(key, rating int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<span class="%s ms-2" id="%s">%s</span>`,
			LabelClass, LabelID(key), helpers.RatingLabel(rating))
		return err
	})
}

// LabelID returns the id of a movie's numeric label.
func LabelID(key int) string {
	return LabelIDPrefix + strconv.Itoa(key)
}
