package dom_test

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"

	"finitefield.org/movie-dashboard/internal/dashboard/dom"
)

const page = `<!doctype html><html><body>
<main id="mainContent"><div id="grid"><span class="old">x</span></div></main>
<input id="actor" value="Tom Hanks">
</body></html>`

func TestRegionAbsentIsNoop(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(page)
	require.NoError(t, err)

	missing := dom.NewRegion(doc, "nope")
	require.False(t, missing.Exists())
	require.NoError(t, missing.Render(context.Background(), templ.Raw("<p>hi</p>")))
	missing.Clear()

	el := missing.Element()
	el.SetAttr("data-x", "1")
	require.Equal(t, "", el.Attr("data-x"))
	require.False(t, el.Query(".any").Exists())
	require.Empty(t, el.QueryAll(".any"))
}

func TestRegionRenderReplacesChildren(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(page)
	require.NoError(t, err)

	grid := dom.NewRegion(doc, "grid")
	require.True(t, grid.Exists())
	require.NoError(t, grid.Render(context.Background(), templ.Raw(`<b class="new">a</b>`)))
	require.NoError(t, grid.Render(context.Background(), templ.Raw(`<b class="new">b</b>`)))

	require.Len(t, doc.QueryAll("#grid .new"), 1)
	require.False(t, doc.Query("#grid .old").Exists())
	require.Equal(t, "b", grid.Element().Text())
}

func TestRegionLookupIsLive(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(page)
	require.NoError(t, err)

	main := doc.ByID("mainContent")
	grid := dom.NewRegion(doc, "grid")
	before := grid.Element()

	main.SetInnerHTML(`<div id="grid"><i>restored</i></div>`)

	require.False(t, before.Attached(), "replaced node should be detached")
	require.True(t, grid.Element().Attached())
	require.Equal(t, "restored", grid.Element().Text())

	before.SetInnerHTML("late write")
	require.Equal(t, "restored", grid.Element().Text(), "writes into a detached node must not leak into the page")
}

func TestDispatchBubblesAndPrunes(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(page)
	require.NoError(t, err)

	grid := doc.ByID("grid")
	var seen []string
	grid.On(dom.Click, func(ev dom.Event) {
		seen = append(seen, ev.Target.Attr("class")+"@"+ev.Current.ID())
	})

	doc.Dispatch(doc.Query("#grid .old"), dom.Click)
	require.Equal(t, []string{"old@grid"}, seen)

	inner := doc.Query("#grid .old")
	inner.On(dom.Click, func(dom.Event) { seen = append(seen, "inner") })
	require.Equal(t, 1, doc.ListenerCount(inner, dom.Click))

	grid.SetInnerHTML(`<span class="fresh">y</span>`)
	require.Equal(t, 0, doc.ListenerCount(inner, dom.Click), "listeners on removed nodes are dropped")
	require.Equal(t, 1, doc.ListenerCount(grid, dom.Click))
}

func TestValueAndClasses(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(page)
	require.NoError(t, err)

	actor := doc.ByID("actor")
	require.Equal(t, "Tom Hanks", actor.Value())
	actor.SetValue("Meryl Streep")
	require.Equal(t, "Meryl Streep", actor.Value())

	actor.AddClass("a", "b")
	require.True(t, actor.HasClass("a"))
	actor.RemoveClass("a")
	require.False(t, actor.HasClass("a"))
	require.True(t, actor.HasClass("b"))

	require.True(t, strings.Contains(doc.HTML(), `value="Meryl Streep"`))
}
