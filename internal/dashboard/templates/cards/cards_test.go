package cards_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/movie-dashboard/internal/dashboard/recs"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/cards"
	"finitefield.org/movie-dashboard/internal/dashboard/templates/helpers"
)

func render(t *testing.T, p cards.Props) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, cards.Card(p).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func vote(v float64) *float64 { return &v }

func TestCardExplanationDecisionTable(t *testing.T) {
	t.Parallel()

	movie := recs.MovieSummary{ID: 5, TMDBID: 157336, Title: "Interstellar", Vote: vote(8.4), Popularity: vote(140.6), Year: "2014"}

	tests := []struct {
		name            string
		personalized    bool
		showExplanation bool
		local           int
		catalog         int
	}{
		{name: "personalized shows local", personalized: true, showExplanation: true, local: 1},
		{name: "catalog shows tmdb", personalized: false, showExplanation: true, catalog: 1},
		{name: "hidden when personalized", personalized: true, showExplanation: false},
		{name: "hidden when catalog", personalized: false, showExplanation: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc := render(t, cards.Props{Movie: movie, Personalized: tc.personalized, ShowExplanation: tc.showExplanation})
			require.Equal(t, tc.local, doc.Find(".btn-expl-local").Length())
			require.Equal(t, tc.catalog, doc.Find(".btn-expl-tmdb").Length())
			require.Equal(t, 1, doc.Find(".btn-trailer").Length(), "trailer control is always present")
			require.Equal(t, "Interstellar", doc.Find(".btn-trailer").AttrOr("data-title", ""))

			if tc.local == 1 {
				require.Equal(t, "5", doc.Find(".btn-expl-local").AttrOr("data-id", ""))
			}
			if tc.catalog == 1 {
				btn := doc.Find(".btn-expl-tmdb")
				require.Equal(t, "157336", btn.AttrOr("data-tmdb", ""))
				require.Equal(t, "8.4", btn.AttrOr("data-vote", ""))
				require.Equal(t, "140.6", btn.AttrOr("data-pop", ""))
			}
		})
	}
}

func TestCardStarContainer(t *testing.T) {
	t.Parallel()

	doc := render(t, cards.Props{
		Movie:  recs.MovieSummary{TMDBID: 13, Title: "Forrest Gump"},
		Rating: 3,
	})

	container := doc.Find(".star-rating")
	require.Equal(t, 1, container.Length())
	require.Equal(t, "", container.AttrOr("data-movie-id", "x"))
	require.Equal(t, "13", container.AttrOr("data-tmdb-id", ""))
	require.Equal(t, "3", container.AttrOr("data-current-rating", ""))
	require.Equal(t, 5, container.Find(".star").Length())
	require.Equal(t, 3, container.Find(".star.filled").Length())
	require.Equal(t, "3/5", doc.Find("#user-rating-value-13").Text())
}

func TestCardUnratedHasNoLabel(t *testing.T) {
	t.Parallel()

	doc := render(t, cards.Props{Movie: recs.MovieSummary{ID: 1, TMDBID: 603, Title: "The Matrix"}})

	require.Zero(t, doc.Find(".rating-value").Length())
	require.Zero(t, doc.Find(".star.filled").Length())
	require.Equal(t, helpers.PosterPlaceholder, doc.Find("img.poster").AttrOr("src", ""))
	require.Contains(t, doc.Find(".small.text-muted").Text(), "⭐ -")
}

func TestCardEscapesTitle(t *testing.T) {
	t.Parallel()

	doc := render(t, cards.Props{Movie: recs.MovieSummary{ID: 9, Title: `<script>x</script> "Quoted"`}})

	require.Zero(t, doc.Find("script").Length())
	require.Equal(t, `<script>x</script> "Quoted"`, doc.Find(".btn-trailer").AttrOr("data-title", ""))
}
