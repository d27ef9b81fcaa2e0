// Package grids renders the non-card states of a recommendation grid.
package grids

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

// Loading renders the spinner with a caption.
func Loading(caption string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="text-center py-5"><div class="spinner-border text-primary"></div><div class="mt-2">%s</div></div>`,
			helpers.Escape(caption))
		return err
	})
}

// Failure renders the single error message that replaces a grid body.
func Failure(message string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="col-12"><div class="text-center text-danger py-5">%s</div></div>`,
			helpers.Escape(message))
		return err
	})
}

// Progress renders the panel shown instead of personalised cards while the
// visitor has not rated enough movies.
func Progress(signal recs.InsufficientRatings) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		current := signal.CurrentCount()
		required := signal.RequiredCount()
		remaining := signal.Remaining()

		_, err := fmt.Fprintf(w, `<div class="col-12"><div class="no-ratings-message">`+
			`<span class="no-ratings-icon">⭐</span>`+
			`<h5 class="no-ratings-title">%s</h5>`+
			`<p class="no-ratings-description"><strong>%d/%d movies rated</strong><br>`+
			`Rate %d more %s in the &#34;Trending&#34; section to unlock personalized recommendations!</p>`+
			`<div class="progress mb-3" style="height: 8px;">`+
			`<div class="progress-bar" role="progressbar" style="width: %s; background-color: #0d6efd;" aria-valuenow="%d" aria-valuemin="0" aria-valuemax="%d"></div>`+
			`</div>`+
			`<p class="no-ratings-hint">Content-based recommendations need at least %d movies to understand your preferences.</p>`+
			`</div></div>`,
			helpers.Escape(signal.Message),
			current, required,
			remaining, helpers.Plural(remaining, "movie", "movies"),
			helpers.Width(signal.Percent()), current, required,
			required,
		)
		return err
	})
}
