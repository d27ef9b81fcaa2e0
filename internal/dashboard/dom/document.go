package dom

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a headless Page backed by an in-memory HTML tree. It carries
// its own listener table and dispatches events with bubbling, so the whole
// controller can run outside a browser.
type Document struct {
	mu        sync.Mutex
	doc       *goquery.Document
	listeners map[*html.Node]map[EventType][]Handler
}

// Parse builds a Document from an HTML string.
func Parse(markup string) (*Document, error) {
	return NewDocument(strings.NewReader(markup))
}

// NewDocument builds a Document from an HTML stream.
func NewDocument(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse document: %w", err)
	}
	return &Document{
		doc:       doc,
		listeners: make(map[*html.Node]map[EventType][]Handler),
	}, nil
}

// Do runs fn while holding the UI lock.
func (d *Document) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn()
}

// ByID resolves an element by id.
func (d *Document) ByID(id string) Element {
	if strings.TrimSpace(id) == "" {
		return Absent()
	}
	return d.wrapFirst(d.doc.Find(fmt.Sprintf("[id=%q]", id)))
}

// Root returns the <html> element.
func (d *Document) Root() Element {
	return d.wrapFirst(d.doc.Find("html"))
}

// Query returns the first element matching selector anywhere in the document.
func (d *Document) Query(selector string) Element {
	return d.wrapFirst(d.doc.Find(selector))
}

// QueryAll returns every element matching selector in document order.
func (d *Document) QueryAll(selector string) []Element {
	return d.wrapAll(d.doc.Find(selector))
}

// HTML serialises the whole document.
func (d *Document) HTML() string {
	out, err := goquery.OuterHtml(d.doc.Selection)
	if err != nil {
		return ""
	}
	return out
}

// Dispatch delivers an event to target and then to each ancestor that has a
// listener for it, mirroring DOM bubbling. It takes the UI lock.
func (d *Document) Dispatch(target Element, event EventType) {
	el, ok := target.(*element)
	if !ok || el.doc != d || el.n == nil {
		return
	}
	d.Do(func() {
		for n := el.n; n != nil; n = n.Parent {
			handlers := append([]Handler(nil), d.listeners[n][event]...)
			if len(handlers) == 0 {
				continue
			}
			current := d.wrap(n)
			for _, h := range handlers {
				h(Event{Type: event, Target: target, Current: current})
			}
		}
	})
}

// ListenerCount reports how many handlers are registered for event on el.
func (d *Document) ListenerCount(target Element, event EventType) int {
	el, ok := target.(*element)
	if !ok || el.doc != d {
		return 0
	}
	return len(d.listeners[el.n][event])
}

func (d *Document) listen(n *html.Node, event EventType, h Handler) {
	if h == nil {
		return
	}
	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[EventType][]Handler)
		d.listeners[n] = byType
	}
	byType[event] = append(byType[event], h)
}

// forgetChildren drops listeners registered anywhere below n.
func (d *Document) forgetChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forgetSubtree(c)
	}
}

func (d *Document) forgetSubtree(n *html.Node) {
	delete(d.listeners, n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.forgetSubtree(c)
	}
}

func (d *Document) wrap(n *html.Node) Element {
	if n == nil {
		return Absent()
	}
	return &element{doc: d, n: n}
}

func (d *Document) wrapFirst(sel *goquery.Selection) Element {
	if sel.Length() == 0 {
		return Absent()
	}
	return d.wrap(sel.Nodes[0])
}

func (d *Document) wrapAll(sel *goquery.Selection) []Element {
	out := make([]Element, 0, sel.Length())
	for _, n := range sel.Nodes {
		out = append(out, d.wrap(n))
	}
	return out
}

type element struct {
	doc *Document
	n   *html.Node
}

func (e *element) sel() *goquery.Selection {
	return goquery.NewDocumentFromNode(e.n).Selection
}

func (e *element) Exists() bool { return e.n != nil }

func (e *element) Is(other Element) bool {
	o, ok := other.(*element)
	return ok && o.doc == e.doc && o.n == e.n
}

func (e *element) Attached() bool {
	top := e.n
	for top.Parent != nil {
		top = top.Parent
	}
	return len(e.doc.doc.Nodes) > 0 && top == e.doc.doc.Nodes[0]
}

func (e *element) ID() string { return e.Attr("id") }

func (e *element) InnerHTML() string {
	out, err := e.sel().Html()
	if err != nil {
		return ""
	}
	return out
}

func (e *element) SetInnerHTML(markup string) {
	e.doc.forgetChildren(e.n)
	e.sel().SetHtml(markup)
}

func (e *element) AppendHTML(markup string) {
	e.sel().AppendHtml(markup)
}

func (e *element) Text() string { return e.sel().Text() }

func (e *element) SetText(text string) {
	e.doc.forgetChildren(e.n)
	e.sel().SetText(text)
}

func (e *element) Value() string {
	if e.n.Data == "textarea" {
		return e.Text()
	}
	return e.Attr("value")
}

func (e *element) SetValue(value string) {
	if e.n.Data == "textarea" {
		e.SetText(value)
		return
	}
	e.SetAttr("value", value)
}

func (e *element) Attr(name string) string { return e.sel().AttrOr(name, "") }

func (e *element) SetAttr(name, value string) { e.sel().SetAttr(name, value) }

func (e *element) HasClass(name string) bool { return e.sel().HasClass(name) }

func (e *element) AddClass(names ...string) { e.sel().AddClass(names...) }

func (e *element) RemoveClass(names ...string) { e.sel().RemoveClass(names...) }

func (e *element) Query(selector string) Element {
	return e.doc.wrapFirst(e.sel().Find(selector))
}

func (e *element) QueryAll(selector string) []Element {
	return e.doc.wrapAll(e.sel().Find(selector))
}

func (e *element) On(event EventType, h Handler) {
	e.doc.listen(e.n, event, h)
}
