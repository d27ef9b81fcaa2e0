// Package modal renders the bodies of the shared dialog.
package modal

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

// Fixed dialog copy.
const (
	RatingTitle      = "Rating Saved"
	ExplanationTitle = "Why this movie?"
	TrailerTitle     = "Movie Trailer"
	AnswerTitle      = "RAG Answer"

	ExplanationLoading = "Loading personalized explanation..."
	ExplanationFailed  = "Failed to load explanation."
	NoAnswer           = "No answer."
)

// OpenTrailerClass marks the control that opens the trailer search.
const OpenTrailerClass = "btn-open-trailer"

// RatingMessage is the confirmation shown after a rating write.
func RatingMessage(rating int) string {
	return fmt.Sprintf("Rated %d stars! Recommendations will update periodically.", rating)
}

// ExplanationBody renders the movie heading and the explanation prose.
func ExplanationBody(movie, explanation string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="mb-3"><h6 class="mb-2">%s</h6><div class="alert alert-info"><p class="mb-0 mt-2">%s</p></div></div>`,
			helpers.Escape(movie), helpers.Prose(explanation))
		return err
	})
}

// TrailerBody renders the single control that opens url.
func TrailerBody(title, url string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<div class="text-center py-3">`+
			`<p>Click the button below to search for the official trailer on YouTube.</p>`+
			`<button class="btn btn-danger %s" data-url="%s"><i class="bi bi-youtube me-2"></i> Watch Trailer on YouTube</button>`+
			`<p class="mt-3 text-muted"><small>This will open a new tab with YouTube search results for &#34;%s official trailer&#34;.</small></p>`+
			`</div>`,
			OpenTrailerClass, helpers.Escape(url), helpers.Escape(title))
		return err
	})
}

// AnswerBody renders an answer and, when titles is non-empty, the context footer.
func AnswerBody(answer string, titles []string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		if strings.TrimSpace(answer) == "" {
			answer = NoAnswer
		}
		if _, err := fmt.Fprintf(w, `<div class="mb-2">%s</div>`, helpers.Prose(answer)); err != nil {
			return err
		}
		if len(titles) == 0 {
			return nil
		}
		_, err := fmt.Fprintf(w, `<div class="mt-2 small text-muted">Context: %s</div>`,
			helpers.Escape(strings.Join(titles, ", ")))
		return err
	})
}
