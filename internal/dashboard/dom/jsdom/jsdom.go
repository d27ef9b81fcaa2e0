//go:build js && wasm

// Package jsdom implements dom.Page over the browser document.
package jsdom

import (
	"strings"
	"sync"
	"syscall/js"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
)

// Page wraps window.document.
type Page struct {
	mu       sync.Mutex
	document js.Value
	// listeners holds element callbacks until their node is replaced.
	listeners listenerTable[js.Value]
	// persistent holds callbacks that live as long as the page.
	persistent []js.Func
}

// New binds the current browser document.
func New() *Page {
	return &Page{document: js.Global().Get("document")}
}

// Do runs fn while holding the UI lock.
func (p *Page) Do(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
}

// ByID resolves an element by id.
func (p *Page) ByID(id string) dom.Element {
	return p.wrap(p.document.Call("getElementById", id))
}

// Root returns document.documentElement.
func (p *Page) Root() dom.Element {
	return p.wrap(p.document.Get("documentElement"))
}

func (p *Page) wrap(v js.Value) dom.Element {
	if v.IsNull() || v.IsUndefined() {
		return dom.Absent()
	}
	return &element{page: p, v: v}
}

type element struct {
	page *Page
	v    js.Value
}

func (e *element) Exists() bool { return true }

func (e *element) Is(other dom.Element) bool {
	o, ok := other.(*element)
	return ok && o.v.Equal(e.v)
}

func (e *element) Attached() bool {
	return e.page.document.Call("contains", e.v).Bool()
}

func (e *element) ID() string { return e.v.Get("id").String() }

func (e *element) InnerHTML() string { return e.v.Get("innerHTML").String() }

func (e *element) SetInnerHTML(markup string) {
	e.forgetChildren()
	e.v.Set("innerHTML", markup)
}

// forgetChildren detaches and releases callbacks registered below e.
func (e *element) forgetChildren() {
	e.page.listeners.forget(func(node js.Value) bool {
		return !node.Equal(e.v) && e.v.Call("contains", node).Bool()
	})
}

func (e *element) AppendHTML(markup string) {
	e.v.Call("insertAdjacentHTML", "beforeend", markup)
}

func (e *element) Text() string { return e.v.Get("textContent").String() }

func (e *element) SetText(text string) {
	e.forgetChildren()
	e.v.Set("textContent", text)
}

func (e *element) Value() string {
	v := e.v.Get("value")
	if v.IsUndefined() || v.IsNull() {
		return ""
	}
	return v.String()
}

func (e *element) SetValue(value string) { e.v.Set("value", value) }

func (e *element) Attr(name string) string {
	v := e.v.Call("getAttribute", name)
	if v.IsNull() {
		return ""
	}
	return v.String()
}

func (e *element) SetAttr(name, value string) { e.v.Call("setAttribute", name, value) }

func (e *element) HasClass(name string) bool {
	return e.v.Get("classList").Call("contains", name).Bool()
}

func (e *element) AddClass(names ...string) {
	for _, n := range splitClasses(names) {
		e.v.Get("classList").Call("add", n)
	}
}

func (e *element) RemoveClass(names ...string) {
	for _, n := range splitClasses(names) {
		e.v.Get("classList").Call("remove", n)
	}
}

func (e *element) Query(selector string) dom.Element {
	return e.page.wrap(e.v.Call("querySelector", selector))
}

func (e *element) QueryAll(selector string) []dom.Element {
	list := e.v.Call("querySelectorAll", selector)
	n := list.Length()
	out := make([]dom.Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, e.page.wrap(list.Index(i)))
	}
	return out
}

func (e *element) On(event dom.EventType, h dom.Handler) {
	if h == nil {
		return
	}
	current := dom.Element(e)
	fn := js.FuncOf(func(this js.Value, args []js.Value) any {
		target := current
		if len(args) > 0 {
			target = e.page.wrap(args[0].Get("target"))
			// Every click the controller handles replaces default navigation
			// and form submission.
			if event == dom.Click {
				args[0].Call("preventDefault")
			}
		}
		// Listener callbacks must not block the JS event loop on the UI lock
		// while a task holds it.
		go e.page.Do(func() {
			h(dom.Event{Type: event, Target: target, Current: current})
		})
		return nil
	})
	node := e.v
	node.Call("addEventListener", string(event), fn)
	e.page.listeners.add(node, func() {
		node.Call("removeEventListener", string(event), fn)
		fn.Release()
	})
}

func splitClasses(names []string) []string {
	var out []string
	for _, n := range names {
		out = append(out, strings.Fields(n)...)
	}
	return out
}
