// Package dom models the live page the dashboard controller drives: a set of
// optional, id-addressed regions whose absence is a normal configuration.
package dom

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"
)

// EventType names a user interaction delivered to element listeners.
type EventType string

const (
	// Click is a primary pointer activation.
	Click EventType = "click"
	// PointerEnter fires when the pointer moves onto an element. It bubbles.
	PointerEnter EventType = "mouseover"
	// PointerLeave fires when the pointer moves off an element. It bubbles.
	PointerLeave EventType = "mouseout"
)

// Event is delivered to a Handler. Target is the element the interaction
// originated on; Current is the element the handler was registered on.
type Event struct {
	Type    EventType
	Target  Element
	Current Element
}

// Handler reacts to an event. Handlers run on the UI thread.
type Handler func(Event)

// Element is a handle to one node of the page. Every operation on an absent
// element is a no-op returning zero values.
type Element interface {
	Exists() bool
	// Is reports whether both handles refer to the same node.
	Is(other Element) bool
	// Attached reports whether the node is still part of the live document.
	Attached() bool
	ID() string
	InnerHTML() string
	SetInnerHTML(markup string)
	AppendHTML(markup string)
	Text() string
	SetText(text string)
	Value() string
	SetValue(value string)
	Attr(name string) string
	SetAttr(name, value string)
	HasClass(name string) bool
	AddClass(names ...string)
	RemoveClass(names ...string)
	Query(selector string) Element
	QueryAll(selector string) []Element
	On(event EventType, handler Handler)
}

// Page is the document the controller operates on.
type Page interface {
	// ByID resolves an element by id at call time. Lookups are never cached.
	ByID(id string) Element
	// Root returns the document element.
	Root() Element
	// Do runs fn on the UI thread. fn must not call Do itself.
	Do(fn func())
}

// Render writes the component's markup into el, replacing every prior child.
func Render(ctx context.Context, el Element, component templ.Component) error {
	if el == nil || !el.Exists() {
		return nil
	}
	markup, err := Markup(ctx, component)
	if err != nil {
		return err
	}
	el.SetInnerHTML(markup)
	return nil
}

// Append renders the component and appends it after el's existing children.
func Append(ctx context.Context, el Element, component templ.Component) error {
	if el == nil || !el.Exists() {
		return nil
	}
	markup, err := Markup(ctx, component)
	if err != nil {
		return err
	}
	el.AppendHTML(markup)
	return nil
}

// Markup renders a component to a string.
func Markup(ctx context.Context, component templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		return "", fmt.Errorf("dom: render component: %w", err)
	}
	return buf.String(), nil
}

// Region is a named, optional subtree of the page.
type Region struct {
	page Page
	id   string
}

// NewRegion binds a region id to a page.
func NewRegion(page Page, id string) Region {
	return Region{page: page, id: id}
}

// ID returns the stable identifier of the region.
func (r Region) ID() string { return r.id }

// Element resolves the region's current node, absent when missing.
func (r Region) Element() Element {
	if r.page == nil {
		return Absent()
	}
	return r.page.ByID(r.id)
}

// Exists reports whether the region is present on the page right now.
func (r Region) Exists() bool { return r.Element().Exists() }

// Render replaces the region's contents with the component's markup.
func (r Region) Render(ctx context.Context, component templ.Component) error {
	return Render(ctx, r.Element(), component)
}

// Clear removes every child of the region.
func (r Region) Clear() { r.Element().SetInnerHTML("") }

// Absent returns the element used for missing nodes.
func Absent() Element { return absent{} }

type absent struct{}

func (absent) Exists() bool { return false }
func (absent) Is(Element) bool { return false }
func (absent) Attached() bool { return false }
func (absent) ID() string { return "" }
func (absent) InnerHTML() string { return "" }
func (absent) SetInnerHTML(string) {}
func (absent) AppendHTML(string) {}
func (absent) Text() string { return "" }
func (absent) SetText(string) {}
func (absent) Value() string { return "" }
func (absent) SetValue(string) {}
func (absent) Attr(string) string { return "" }
func (absent) SetAttr(string, string) {}
func (absent) HasClass(string) bool { return false }
func (absent) AddClass(...string) {}
func (absent) RemoveClass(...string) {}
func (absent) Query(string) Element { return absent{} }
func (absent) QueryAll(string) []Element { return nil }
func (absent) On(EventType, Handler) {}
