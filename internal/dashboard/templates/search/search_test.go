package search_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"finitefield.org/movie-dashboard/internal/dashboard/templates/search"
)

func TestScaffold(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, search.Scaffold("Tom Hanks <Drama> en").Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	require.Equal(t, "(Tom Hanks <Drama> en)", doc.Find("#searchTitle small").Text())
	require.Equal(t, 1, doc.Find("#btnBackToHome").Length())
	require.Equal(t, "Searching TMDB…", doc.Find("#searchGrid").Text())
	require.Equal(t, 1, doc.Find("#searchResultsSection").Length())
}

func TestNoMatchesCarriesExamples(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, search.NoMatches().Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	var examples []string
	doc.Find("b").Each(func(_ int, s *goquery.Selection) { examples = append(examples, s.Text()) })
	require.Equal(t, []string{"Action", "hindi", "hi"}, examples)
}
