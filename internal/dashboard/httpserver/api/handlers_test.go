package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"

	"finitefield.org/movie-dashboard/internal/dashboard/httpserver/api"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

func newAPI(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	api.New(recs.NewStaticService()).Mount(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func call(t *testing.T, method, url, body string, out any) int {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

func TestRecommendationsWithoutRatings(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	var payload map[string]any
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathRecommendations, "", &payload))
	require.Equal(t, recs.CodeNoRatings, payload["error"])
	require.EqualValues(t, 0, payload["current_ratings"])
}

func TestTrendingClampsPageSize(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	var movies []map[string]any
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathTrending+"?k=3", "", &movies))
	require.Len(t, movies, 3)
	for _, m := range movies {
		require.NotContains(t, m, "id")
		require.Contains(t, m, "tmdb_id")
	}

	movies = nil
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathTrending+"?k=-1", "", &movies))
	require.Len(t, movies, 12)
}

func TestSubmitRatingThenLookup(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	require.Equal(t, http.StatusCreated, call(t, http.MethodPost, ts.URL+recs.PathRatings, `{"movie":1,"value":5}`, nil))

	var rated map[string]int
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathUserRatings+"?movie_id=1&movie_id=2&movie_id=x", "", &rated))
	require.Equal(t, map[string]int{"1": 5}, rated)

	rated = nil
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathUserRatings+"?tmdb_id=603", "", &rated))
	require.Equal(t, map[string]int{"603": 5}, rated)
}

func TestSubmitRatingRejectsBadInput(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	testCases := map[string]string{
		"not json":     `{`,
		"out of range": `{"movie":1,"value":0}`,
		"missing id":   `{"value":3}`,
	}
	for name, body := range testCases {
		var payload map[string]any
		require.Equal(t, http.StatusBadRequest, call(t, http.MethodPost, ts.URL+recs.PathRatings, body, &payload), name)
		require.NotEmpty(t, payload["error"], name)
		require.EqualValues(t, http.StatusBadRequest, payload["status"], name)
	}
}

func TestDiscoverWrapsResults(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	var payload struct {
		Results []recs.MovieSummary `json:"results"`
	}
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathDiscover+"?actor=Tom+Hanks", "", &payload))
	require.Len(t, payload.Results, 3)

	payload.Results = nil
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathDiscover+"?actor=Nobody+Known", "", &payload))
	require.NotNil(t, payload.Results)
	require.Empty(t, payload.Results)
}

func TestExplanationStatuses(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	var exp recs.Explanation
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathExplanation+"?movie_id=1", "", &exp))
	require.Equal(t, "The Matrix", exp.Movie)
	require.NotEmpty(t, exp.Explanation)

	exp = recs.Explanation{}
	require.Equal(t, http.StatusNotFound, call(t, http.MethodGet, ts.URL+recs.PathExplanation+"?tmdb_id=424242", "", &exp))
	require.Equal(t, "Movie not found", exp.Error)

	exp = recs.Explanation{}
	require.Equal(t, http.StatusBadRequest, call(t, http.MethodGet, ts.URL+recs.PathExplanation, "", &exp))
	require.NotEmpty(t, exp.Error)
}

func TestAskRequiresQuestion(t *testing.T) {
	t.Parallel()

	ts := newAPI(t)
	var payload map[string]any
	require.Equal(t, http.StatusBadRequest, call(t, http.MethodGet, ts.URL+recs.PathAsk, "", &payload))
	require.Equal(t, "missing_question", payload["error"])

	var ans recs.Answer
	require.Equal(t, http.StatusOK, call(t, http.MethodGet, ts.URL+recs.PathAsk+"?q=spirits", "", &ans))
	require.NotNil(t, ans.Hits)
}
