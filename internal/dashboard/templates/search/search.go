// Package search renders the in-place search results view.
package search

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

// Element ids of the results scaffold.
const (
	SectionID = "searchResultsSection"
	TitleID   = "searchTitle"
	BackID    = "btnBackToHome"
	GridID    = "searchGrid"
)

// Scaffold renders the results view with its heading, back control and a
// grid showing the searching message.
func Scaffold(echo string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div id="%s" class="mb-4">`+
			`<div class="d-flex justify-content-between align-items-center mb-3">`+
			`<h3 id="%s">Search Results <small class="text-muted">(%s)</small></h3>`+
			`<button id="%s" class="btn btn-outline-secondary">Back to Home</button>`+
			`</div><div id="%s" class="row g-3">`,
			SectionID, TitleID, helpers.Escape(echo), BackID, GridID)
		if err != nil {
			return err
		}
		if err := Searching().Render(ctx, w); err != nil {
			return err
		}
		_, err = io.WriteString(w, `</div></div>`)
		return err
	})
}

// Searching is shown while the search request is in flight.
func Searching() templ.Component {
	return message("text-center py-5", "Searching TMDB…")
}

// NoMatches hints at example filter values.
func NoMatches() templ.Component {
	return helpers.Markup(`<div class="col-12"><div class="text-center text-muted py-5">No matches. Try Genre like <b>Action</b> and language name <b>hindi</b> or ISO <b>hi</b>.</div></div>`)
}

// Failure is shown when the search request fails.
func Failure() templ.Component {
	return message("text-center text-danger py-5", "Error contacting server.")
}

func message(class, text string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="col-12"><div class="%s">%s</div></div>`, class, helpers.Escape(text))
		return err
	})
}
