// Package recs is the client side of the recommendation backend: movie
// records, ratings, search, explanations and free-text answers.
package recs

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

var (
	// ErrInvalidRating indicates a rating value outside 1..5.
	ErrInvalidRating = errors.New("recs: rating must be between 1 and 5")
	// ErrMissingID indicates a request that needs a movie identifier got none.
	ErrMissingID = errors.New("recs: movie identifier is required")
)

// Rating bounds accepted by the backend. Zero means "not rated".
const (
	MinRating = 1
	MaxRating = 5
)

// Default count of ratings the backend wants before personalising.
const DefaultRequiredRatings = 5

// Service exposes every backend call the dashboard makes.
type Service interface {
	// Recommendations returns the personalised page, or the insufficient
	// ratings signal when the visitor has not rated enough movies.
	Recommendations(ctx context.Context, k int) (*RecommendationPage, error)
	// Trending returns popular catalogue movies keyed by external id.
	Trending(ctx context.Context, k int) ([]MovieSummary, error)
	// UserRatings returns the visitor's ratings for a batch of ids.
	UserRatings(ctx context.Context, kind IDKind, ids []int) (Ratings, error)
	// SubmitRating stores a 1..5 rating for a movie key.
	SubmitRating(ctx context.Context, movie, value int) error
	// Discover searches the catalogue by actor, genre and language.
	Discover(ctx context.Context, query DiscoverQuery) ([]MovieSummary, error)
	// Explain fetches the natural-language explanation for one movie.
	Explain(ctx context.Context, query ExplanationQuery) (*Explanation, error)
	// Ask answers a free-text question with supporting titles.
	Ask(ctx context.Context, question string) (*Answer, error)
}

// IDKind selects which identifier space a batch of ids belongs to. The value
// doubles as the query parameter name.
type IDKind string

const (
	// LocalID identifies movies known to the personalisation model.
	LocalID IDKind = "movie_id"
	// ExternalID identifies movies in the upstream catalogue.
	ExternalID IDKind = "tmdb_id"
)

// MovieSummary is one movie record as returned by list endpoints.
type MovieSummary struct {
	ID         int      `json:"id,omitempty"`
	TMDBID     int      `json:"tmdb_id,omitempty"`
	Title      string   `json:"title"`
	Overview   string   `json:"overview,omitempty"`
	Poster     string   `json:"poster,omitempty"`
	Vote       *float64 `json:"vote,omitempty"`
	Popularity *float64 `json:"popularity,omitempty"`
	Year       Year     `json:"year,omitempty"`
}

// Key returns the identifier ratings are written under: the local id when
// present, the external id otherwise.
func (m MovieSummary) Key() int {
	if m.ID != 0 {
		return m.ID
	}
	return m.TMDBID
}

// IDFor returns the id of the requested kind, zero when absent.
func (m MovieSummary) IDFor(kind IDKind) int {
	if kind == ExternalID {
		return m.TMDBID
	}
	return m.ID
}

// Year is a release year. The backend sends it as a number for local movies
// and as a (possibly empty) string for catalogue movies.
type Year string

// UnmarshalJSON accepts numbers, strings and null.
func (y *Year) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null" || raw == "":
		*y = ""
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("recs: decode year: %w", err)
		}
		*y = Year(strings.TrimSpace(s))
	default:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("recs: decode year: %w", err)
		}
		*y = Year(strconv.Itoa(int(f)))
	}
	return nil
}

// Ratings maps a movie identifier to the visitor's rating.
type Ratings map[int]int

// Get returns the rating for id, or 0 when none is known.
func (r Ratings) Get(id int) int {
	v, ok := r[id]
	if !ok {
		return 0
	}
	return ClampRating(v)
}

// ClampRating bounds v to 0..MaxRating.
func ClampRating(v int) int {
	if v < 0 {
		return 0
	}
	if v > MaxRating {
		return MaxRating
	}
	return v
}

// ErrorCode values carried by the recommendations endpoint.
const (
	CodeInsufficientRatings = "insufficient_ratings"
	CodeNoRatings           = "no_ratings"
)

// RecommendationPage is the result of the personalised endpoint: either a
// list of movies or the insufficient ratings signal.
type RecommendationPage struct {
	Movies       []MovieSummary
	Insufficient *InsufficientRatings
}

// InsufficientRatings is the domain signal sent instead of recommendations.
type InsufficientRatings struct {
	Code     string `json:"error"`
	Message  string `json:"message"`
	Current  int    `json:"current_ratings"`
	Required int    `json:"required_ratings"`
}

// RequiredCount returns the required count, defaulting when unset.
func (i InsufficientRatings) RequiredCount() int {
	if i.Required <= 0 {
		return DefaultRequiredRatings
	}
	return i.Required
}

// CurrentCount returns the current count, never negative.
func (i InsufficientRatings) CurrentCount() int {
	if i.Current < 0 {
		return 0
	}
	return i.Current
}

// Remaining returns how many more ratings are needed.
func (i InsufficientRatings) Remaining() int {
	rem := i.RequiredCount() - i.CurrentCount()
	if rem < 0 {
		return 0
	}
	return rem
}

// Percent returns progress towards the required count in 0..100.
func (i InsufficientRatings) Percent() float64 {
	p := float64(i.CurrentCount()) / float64(i.RequiredCount()) * 100
	return math.Min(p, 100)
}

// DiscoverQuery holds the search filters. Empty filters are omitted.
type DiscoverQuery struct {
	Actor    string
	Genre    string
	Language string
}

// Values encodes the non-empty filters as query parameters.
func (q DiscoverQuery) Values() url.Values {
	v := url.Values{}
	if q.Actor != "" {
		v.Set("actor", q.Actor)
	}
	if q.Genre != "" {
		v.Set("genre", q.Genre)
	}
	if q.Language != "" {
		v.Set("lang", q.Language)
	}
	return v
}

// Echo renders the filters for the results heading.
func (q DiscoverQuery) Echo() string {
	actor := q.Actor
	if actor == "" {
		actor = "All"
	}
	return actor + " " + q.Genre + " " + q.Language
}

// ExplanationQuery selects a movie by exactly one identifier. MovieID wins
// when both are set.
type ExplanationQuery struct {
	MovieID int
	TMDBID  int
}

// Values encodes the query, or fails when no identifier is present.
func (q ExplanationQuery) Values() (url.Values, error) {
	v := url.Values{}
	switch {
	case q.MovieID > 0:
		v.Set(string(LocalID), strconv.Itoa(q.MovieID))
	case q.TMDBID > 0:
		v.Set(string(ExternalID), strconv.Itoa(q.TMDBID))
	default:
		return nil, ErrMissingID
	}
	return v, nil
}

// Explanation is the natural-explanation payload. Error is set instead of
// the other fields when the backend could not explain the movie.
type Explanation struct {
	Movie       string `json:"movie,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Answer is the free-text question payload.
type Answer struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer"`
	Hits     []Hit  `json:"hits"`
}

// Hit is one supporting movie for an Answer.
type Hit struct {
	ID    int     `json:"id,omitempty"`
	Title string  `json:"title"`
	Score float64 `json:"score,omitempty"`
}

// Titles returns the hit titles in order.
func (a Answer) Titles() []string {
	out := make([]string, 0, len(a.Hits))
	for _, h := range a.Hits {
		if strings.TrimSpace(h.Title) != "" {
			out = append(out, h.Title)
		}
	}
	return out
}
