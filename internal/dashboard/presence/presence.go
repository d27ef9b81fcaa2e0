// Package presence names the optional page regions and reports which
// features a page supports. A missing region is a normal configuration.
package presence

import (
	"sort"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
)

// Region ids.
const (
	MainContent  = "mainContent"
	ForYouGrid   = "forYouGrid"
	TrendingGrid = "trendingGrid"
	Dialog       = "infoModal"
	DialogTitle  = "modalTitle"
	DialogBody   = "modalBody"
	ThemeToggle  = "themeToggle"
	DiscoverBtn  = "btnDiscover"
	AskBtn       = "btnRag"

	ActorField    = "actor"
	GenreField    = "genre"
	LanguageField = "lang"
)

// Feature is a capability that depends on one or more regions.
type Feature string

const (
	Personalized Feature = "personalized_grid"
	Trending     Feature = "trending_grid"
	Modal        Feature = "dialog"
	Theme        Feature = "theme_toggle"
	Search       Feature = "discover"
	Ask          Feature = "ask"
)

var requirements = map[Feature][]string{
	Personalized: {ForYouGrid},
	Trending:     {TrendingGrid},
	Modal:        {Dialog, DialogTitle, DialogBody},
	Theme:        {ThemeToggle},
	Search:       {DiscoverBtn, MainContent},
	Ask:          {AskBtn},
}

// Report lists which features the page supports.
type Report struct {
	enabled map[Feature]bool
}

// Detect inspects the page once.
func Detect(page dom.Page) Report {
	r := Report{enabled: make(map[Feature]bool, len(requirements))}
	for f, ids := range requirements {
		ok := page != nil
		for _, id := range ids {
			if !ok {
				break
			}
			ok = page.ByID(id).Exists()
		}
		r.enabled[f] = ok
	}
	return r
}

// Has reports whether f is enabled.
func (r Report) Has(f Feature) bool { return r.enabled[f] }

// Enabled returns the enabled features in name order.
func (r Report) Enabled() []Feature { return r.filter(true) }

// Disabled returns the disabled features in name order.
func (r Report) Disabled() []Feature { return r.filter(false) }

// Log records disabled features at debug level.
func (r Report) Log(logger *zap.Logger) {
	if logger == nil {
		return
	}
	for _, f := range r.Disabled() {
		logger.Debug("feature disabled, region absent",
			zap.String("feature", string(f)),
			zap.Strings("regions", requirements[f]),
		)
	}
}

func (r Report) filter(want bool) []Feature {
	var out []Feature
	for f := range requirements {
		if r.enabled[f] == want {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
