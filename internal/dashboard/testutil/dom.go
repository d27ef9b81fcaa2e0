package testutil

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/home"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// Render renders c to a string.
func Render(t testing.TB, c templ.Component) string {
	t.Helper()

	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render component: %v", err)
	}
	return buf.String()
}

// NewPage renders c into a headless document.
func NewPage(t testing.TB, c templ.Component) *dom.Document {
	t.Helper()

	doc, err := dom.Parse(Render(t, c))
	if err != nil {
		t.Fatalf("parse page: %v", err)
	}
	return doc
}

// HomePage is the full dashboard document with every region present.
func HomePage(t testing.TB) *dom.Document {
	t.Helper()
	return NewPage(t, home.Page(home.Props{}))
}
