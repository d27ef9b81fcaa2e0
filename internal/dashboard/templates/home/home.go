// Package home renders the dashboard document.
package home

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

// Props configures the document chrome.
type Props struct {
	Title      string
	StaticBase string
	AssetBase  string
	// Theme is the initial data-theme value; empty means light.
	Theme string
}

func (p Props) normalized() Props {
	if strings.TrimSpace(p.Title) == "" {
		p.Title = "Movie Recommendations"
	}
	if p.StaticBase == "" {
		p.StaticBase = "/public/static"
	}
	if p.AssetBase == "" {
		p.AssetBase = "/assets"
	}
	if p.Theme != "dark" {
		p.Theme = "light"
	}
	p.StaticBase = strings.TrimRight(p.StaticBase, "/")
	p.AssetBase = strings.TrimRight(p.AssetBase, "/")
	return p
}

// Page renders the full dashboard with every optional region.
func Page(props Props) templ.Component {
	p := props.normalized()
	return document(p, helpers.Join(navbar(true), Main(), dialog()))
}

// Minimal renders the same chrome without any dashboard region, as served on
// pages such as sign-in.
func Minimal(props Props, message string) templ.Component {
	p := props.normalized()
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main class="container py-5"><div class="card p-4 mx-auto" style="max-width: 420px;"><p class="mb-0">%s</p></div></main>`,
			helpers.Escape(message))
		return err
	})
	return document(p, helpers.Join(navbar(false), body))
}

// Main renders the dashboard region and both grids. Its inner markup is what
// the search view replaces and later restores.
func Main() templ.Component {
	return helpers.Markup(`<main id="mainContent" class="container py-4">` +
		`<section class="mb-5"><div class="d-flex align-items-center justify-content-between mb-3"><h2 class="h4 mb-0">Recommended for You</h2></div>` +
		`<div id="forYouGrid" class="row g-3"></div></section>` +
		`<section class="mb-5"><div class="d-flex align-items-center justify-content-between mb-3"><h2 class="h4 mb-0">Trending Now</h2></div>` +
		`<div id="trendingGrid" class="row g-3"></div></section>` +
		`</main>`)
}

func navbar(withTools bool) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<nav class="navbar navbar-expand-lg border-bottom"><div class="container">`)
		b.WriteString(`<a class="navbar-brand fw-semibold" href="/">🎬 Movie Recs</a>`)
		if withTools {
			b.WriteString(`<form class="d-flex flex-wrap gap-2 ms-auto" role="search">`)
			b.WriteString(`<input id="actor" class="form-control form-control-sm" placeholder="Actor" value=""/>`)
			b.WriteString(`<input id="genre" class="form-control form-control-sm" placeholder="Genre" value=""/>`)
			b.WriteString(`<input id="lang" class="form-control form-control-sm" placeholder="Language" value=""/>`)
			b.WriteString(`<button id="btnDiscover" class="btn btn-sm btn-primary" type="submit">Discover</button>`)
			b.WriteString(`<button id="btnRag" class="btn btn-sm btn-outline-primary" type="button">Ask</button>`)
			b.WriteString(`<button id="themeToggle" class="btn btn-sm btn-outline-secondary" type="button" title="Switch to dark mode"><i class="bi theme-icon bi-moon-fill"></i></button>`)
			b.WriteString(`</form>`)
		}
		b.WriteString(`</div></nav>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func dialog() templ.Component {
	return helpers.Markup(`<div class="modal fade" id="infoModal" tabindex="-1" aria-hidden="true">` +
		`<div class="modal-dialog modal-dialog-centered"><div class="modal-content">` +
		`<div class="modal-header"><h5 class="modal-title" id="modalTitle"></h5>` +
		`<button type="button" class="btn-close" data-bs-dismiss="modal" aria-label="Close"></button></div>` +
		`<div class="modal-body" id="modalBody"></div>` +
		`</div></div></div>`)
}

func document(p Props, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en" data-theme="%s"><head>`+
			`<meta charset="utf-8"/><meta name="viewport" content="width=device-width, initial-scale=1"/>`+
			`<title>%s</title>`+
			`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/css/bootstrap.min.css"/>`+
			`<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/bootstrap-icons@1.11.3/font/bootstrap-icons.min.css"/>`+
			`<link rel="stylesheet" href="%s/app.css"/>`+
			`</head><body>`,
			helpers.Escape(p.Theme), helpers.Escape(p.Title), helpers.Escape(p.StaticBase))
		if err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, `<script src="https://cdn.jsdelivr.net/npm/bootstrap@5.3.3/dist/js/bootstrap.bundle.min.js"></script>`+
			`<script src="%[1]s/wasm_exec.js"></script>`+
			`<script src="%[2]s/boot.js" data-wasm="%[1]s/dashboard.wasm"></script>`+
			`</body></html>`,
			helpers.Escape(p.AssetBase), helpers.Escape(p.StaticBase))
		return err
	})
}
