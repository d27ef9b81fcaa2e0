//go:build js && wasm

package jsdom

import (
	"net/url"
	"strings"
	"syscall/js"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
)

// Origin returns window.location.origin.
func Origin() string {
	return js.Global().Get("location").Get("origin").String()
}

// CookieToken reads one cookie from document.cookie on every call so a
// rotated token is picked up.
type CookieToken struct {
	Name string
}

// CSRFToken returns the current cookie value or "".
func (c CookieToken) CSRFToken() string {
	raw := js.Global().Get("document").Get("cookie").String()
	for _, part := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || name != c.Name {
			continue
		}
		if decoded, err := url.QueryUnescape(value); err == nil {
			return decoded
		}
		return value
	}
	return ""
}

// LocalStorage persists values in window.localStorage. Storage errors, such
// as a disabled store in private browsing, read as absent.
type LocalStorage struct{}

// Get implements theme.Store.
func (LocalStorage) Get(key string) (value string, ok bool) {
	defer func() {
		if recover() != nil {
			value, ok = "", false
		}
	}()
	v := js.Global().Get("localStorage").Call("getItem", key)
	if v.IsNull() || v.IsUndefined() {
		return "", false
	}
	return v.String(), true
}

// Set implements theme.Store.
func (LocalStorage) Set(key, value string) {
	defer func() { _ = recover() }()
	js.Global().Get("localStorage").Call("setItem", key, value)
}

const darkQuery = "(prefers-color-scheme: dark)"

// MediaPreference follows the prefers-color-scheme media query.
type MediaPreference struct {
	page *Page
	mql  js.Value
}

// NewMediaPreference binds the media query on the page's window.
func NewMediaPreference(page *Page) *MediaPreference {
	mql := js.Undefined()
	if fn := js.Global().Get("matchMedia"); fn.Type() == js.TypeFunction {
		mql = js.Global().Call("matchMedia", darkQuery)
	}
	return &MediaPreference{page: page, mql: mql}
}

// PrefersDark implements theme.SchemePreference.
func (m *MediaPreference) PrefersDark() bool {
	return m.mql.Type() == js.TypeObject && m.mql.Get("matches").Bool()
}

// Watch implements theme.SchemePreference.
func (m *MediaPreference) Watch(fn func(dark bool)) {
	if fn == nil || m.mql.Type() != js.TypeObject {
		return
	}
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		dark := len(args) > 0 && args[0].Get("matches").Bool()
		go m.page.Do(func() { fn(dark) })
		return nil
	})
	m.page.persistent = append(m.page.persistent, cb)
	m.mql.Call("addEventListener", "change", cb)
}

// BootstrapPresenter shows the dialog through bootstrap.Modal. It falls back
// to toggling classes when the bundle is not loaded.
type BootstrapPresenter struct{}

// Show implements modal.Presenter.
func (BootstrapPresenter) Show(dialog dom.Element) {
	el, ok := dialog.(*element)
	bs := js.Global().Get("bootstrap")
	if !ok || bs.Type() != js.TypeObject {
		dialog.AddClass("show")
		dialog.SetAttr("aria-hidden", "false")
		return
	}
	bs.Get("Modal").Call("getOrCreateInstance", el.v).Call("show")
}

// WindowOpener opens URLs with window.open in a new tab.
type WindowOpener struct{}

// Open implements modal.Opener.
func (WindowOpener) Open(u string) {
	js.Global().Call("open", u, "_blank", "noopener")
}

// WindowPrompt asks with window.prompt. A cancelled prompt returns null.
type WindowPrompt struct{}

// Prompt implements controller.Prompter.
func (WindowPrompt) Prompt(message string) (string, bool) {
	v := js.Global().Call("prompt", message)
	if v.IsNull() || v.IsUndefined() {
		return "", false
	}
	return v.String(), true
}
