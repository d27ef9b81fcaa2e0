package helpers

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
)

// PosterPlaceholder is shown for movies without artwork.
const PosterPlaceholder = "https://via.placeholder.com/342x513?text=No+Poster"

// TrailerSearchBase is the external video search the trailer action opens.
const TrailerSearchBase = "https://www.youtube.com/results?search_query="

// Poster returns the poster URL or the placeholder.
func Poster(url string) string {
	if strings.TrimSpace(url) == "" {
		return PosterPlaceholder
	}
	return url
}

// Vote renders an optional average vote, "-" when unknown.
func Vote(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// Number renders an optional number for data attributes, "0" when unknown.
func Number(v *float64) string {
	if v == nil {
		return "0"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// ID renders an identifier for data attributes, empty when zero.
func ID(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// Plural returns singular when n is exactly one.
func Plural(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}

// Width formats a percentage for a CSS width.
func Width(pct float64) string {
	if pct < 0 {
		pct = 0
	}
	return strconv.FormatFloat(pct, 'f', -1, 64) + "%"
}

// TrailerURL builds the video search URL for a title.
func TrailerURL(title string) string {
	query := url.QueryEscape(title + " official trailer")
	return TrailerSearchBase + strings.ReplaceAll(query, "+", "%20")
}

// RatingLabel renders "k/5".
func RatingLabel(k int) string {
	return fmt.Sprintf("%d/5", k)
}

var prose = bluemonday.UGCPolicy()

// Prose sanitizes backend-authored markup before it is inserted verbatim.
func Prose(markup string) string {
	return prose.Sanitize(markup)
}

// Escape escapes a value for HTML text or attribute context.
func Escape(value string) string {
	return templ.EscapeString(value)
}

// Markup returns a component writing pre-built markup.
func Markup(markup string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, markup)
		return err
	})
}

// TextComponent returns a templ component that renders escaped text.
func TextComponent(value string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, templ.EscapeString(value))
		return err
	})
}

// Join renders components one after another.
func Join(components ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, c := range components {
			if c == nil {
				continue
			}
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}
