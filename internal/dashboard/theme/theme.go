// Package theme switches the page between light and dark.
package theme

import (
	"slices"
	"sync"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
	"finitefield.org/movie-dashboard/internal/dashboard/presence"
)

// Theme is a colour scheme.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Page contract.
const (
	StorageKey = "theme"
	Attribute  = "data-theme"
	ToggleID   = presence.ThemeToggle
	IconClass  = "theme-icon"
)

// Parse maps a stored value to a Theme.
func Parse(v string) (Theme, bool) {
	switch Theme(v) {
	case Light, Dark:
		return Theme(v), true
	default:
		return "", false
	}
}

// Other returns the opposite theme.
func (t Theme) Other() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Store persists the explicit choice.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// MemoryStore is a Store for headless use.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set implements Store.
func (s *MemoryStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// SchemePreference is the system colour scheme signal.
type SchemePreference interface {
	PrefersDark() bool
	// Watch registers fn for preference changes. fn runs on the UI thread.
	Watch(fn func(dark bool))
}

// ManualPreference is a SchemePreference driven by its owner.
type ManualPreference struct {
	mu       sync.Mutex
	dark     bool
	watchers []func(bool)
}

// NewManualPreference returns a preference starting at dark.
func NewManualPreference(dark bool) *ManualPreference {
	return &ManualPreference{dark: dark}
}

// PrefersDark implements SchemePreference.
func (p *ManualPreference) PrefersDark() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dark
}

// Watch implements SchemePreference.
func (p *ManualPreference) Watch(fn func(bool)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.watchers = append(p.watchers, fn)
}

// Set changes the preference and notifies watchers. Call it on the UI thread.
func (p *ManualPreference) Set(dark bool) {
	p.mu.Lock()
	p.dark = dark
	watchers := slices.Clone(p.watchers)
	p.mu.Unlock()
	for _, fn := range watchers {
		fn(dark)
	}
}

// Controller applies and persists the theme. Methods run on the UI thread.
type Controller struct {
	page   dom.Page
	store  Store
	pref   SchemePreference
	logger *zap.Logger
}

// New constructs a Controller. A nil store keeps choices in memory and a nil
// preference means light.
func New(page dom.Page, store Store, pref SchemePreference, logger *zap.Logger) *Controller {
	if store == nil {
		store = NewMemoryStore()
	}
	if pref == nil {
		pref = NewManualPreference(false)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{page: page, store: store, pref: pref, logger: logger.Named("theme")}
}

// Init applies the saved theme, or the system preference when nothing is
// saved, follows live preference changes until a choice is saved, and wires
// the toggle.
func (c *Controller) Init() Theme {
	t, ok := c.saved()
	if !ok {
		t = c.fromPreference(c.pref.PrefersDark())
	}
	c.apply(t)

	c.pref.Watch(func(dark bool) {
		if _, ok := c.saved(); ok {
			return
		}
		c.apply(c.fromPreference(dark))
	})

	toggle := c.page.ByID(ToggleID)
	if !toggle.Exists() {
		c.logger.Debug("theme toggle absent")
	}
	toggle.On(dom.Click, func(dom.Event) { c.Toggle() })
	return t
}

// Toggle flips and persists the theme.
func (c *Controller) Toggle() Theme {
	next := c.Current().Other()
	c.apply(next)
	c.store.Set(StorageKey, string(next))
	return next
}

// Current reads the theme from the document element.
func (c *Controller) Current() Theme {
	if t, ok := Parse(c.page.Root().Attr(Attribute)); ok {
		return t
	}
	return Light
}

func (c *Controller) saved() (Theme, bool) {
	v, ok := c.store.Get(StorageKey)
	if !ok {
		return "", false
	}
	return Parse(v)
}

func (c *Controller) fromPreference(dark bool) Theme {
	if dark {
		return Dark
	}
	return Light
}

func (c *Controller) apply(t Theme) {
	c.page.Root().SetAttr(Attribute, string(t))

	toggle := c.page.ByID(ToggleID)
	icon := toggle.Query("." + IconClass)
	if !toggle.Exists() || !icon.Exists() {
		return
	}
	icon.RemoveClass("bi-sun-fill", "bi-moon-fill")
	if t == Dark {
		icon.AddClass("bi-sun-fill")
		toggle.SetAttr("title", "Switch to light mode")
	} else {
		icon.AddClass("bi-moon-fill")
		toggle.SetAttr("title", "Switch to dark mode")
	}
}
