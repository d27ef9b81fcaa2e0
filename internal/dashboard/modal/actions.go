package modal

import (
	"strconv"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
)

// Actions binds card action controls to the router.
type Actions struct {
	router *Router
	bound  []dom.Element
}

// NewActions constructs Actions for router.
func NewActions(router *Router) *Actions {
	return &Actions{router: router}
}

// Wire binds every explanation and trailer control inside root that is not
// bound yet, and returns how many were bound.
func (a *Actions) Wire(root dom.Element) int {
	if root == nil || !root.Exists() {
		return 0
	}
	a.prune()

	n := 0
	n += a.each(root, cards.LocalExplanationClass, func(btn dom.Element) Content {
		return LocalExplanation{MovieID: atoi(btn.Attr("data-id"))}
	})
	n += a.each(root, cards.CatalogExplanationClass, func(btn dom.Element) Content {
		return CatalogExplanation{TMDBID: atoi(btn.Attr("data-tmdb")), Title: btn.Attr("data-title")}
	})
	n += a.each(root, cards.TrailerClass, func(btn dom.Element) Content {
		return TrailerSearch{Title: btn.Attr("data-title")}
	})
	return n
}

// Bind implements the grid binder contract.
func (a *Actions) Bind(root dom.Element) { a.Wire(root) }

func (a *Actions) each(root dom.Element, class string, build func(dom.Element) Content) int {
	n := 0
	for _, btn := range root.QueryAll("." + class) {
		if a.isBound(btn) {
			continue
		}
		a.bound = append(a.bound, btn)
		btn.On(dom.Click, func(e dom.Event) {
			a.router.Show(build(e.Current))
		})
		n++
	}
	return n
}

func (a *Actions) isBound(el dom.Element) bool {
	for _, b := range a.bound {
		if b.Is(el) {
			return true
		}
	}
	return false
}

func (a *Actions) prune() {
	kept := a.bound[:0]
	for _, b := range a.bound {
		if b.Attached() {
			kept = append(kept, b)
		}
	}
	for i := len(kept); i < len(a.bound); i++ {
		a.bound[i] = nil
	}
	a.bound = kept
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
