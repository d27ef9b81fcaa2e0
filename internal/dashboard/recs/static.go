package recs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type staticMovie struct {
	MovieSummary
	Cast     []string
	Genres   []string
	Language string
	// CatalogOnly movies are unknown to the personalisation model.
	CatalogOnly bool
}

var _ Service = (*StaticService)(nil)

// StaticService provides a canned catalogue and an in-memory rating table
// for development and tests.
type StaticService struct {
	Required int

	mu      sync.Mutex
	movies  []staticMovie
	ratings map[int]int // keyed by catalogue index
}

// NewStaticService returns a StaticService populated with sample data.
func NewStaticService() *StaticService {
	return &StaticService{
		Required: DefaultRequiredRatings,
		movies:   sampleCatalogue(),
		ratings:  make(map[int]int),
	}
}

// Recommendations returns unrated local movies by vote once enough ratings
// exist, and the insufficient ratings signal before that.
func (s *StaticService) Recommendations(_ context.Context, k int) (*RecommendationPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	required := s.Required
	if required <= 0 {
		required = DefaultRequiredRatings
	}
	count := len(s.ratings)
	if count < required {
		code := CodeInsufficientRatings
		if count == 0 {
			code = CodeNoRatings
		}
		return &RecommendationPage{Insufficient: &InsufficientRatings{
			Code:     code,
			Message:  fmt.Sprintf("Please rate %d more movie(s) to get personalized recommendations.", required-count),
			Current:  count,
			Required: required,
		}}, nil
	}

	var out []MovieSummary
	for i, m := range s.movies {
		if m.CatalogOnly {
			continue
		}
		if _, rated := s.ratings[i]; rated {
			continue
		}
		out = append(out, m.MovieSummary)
	}
	sort.SliceStable(out, func(i, j int) bool { return deref(out[i].Vote) > deref(out[j].Vote) })
	return &RecommendationPage{Movies: limit(out, k)}, nil
}

// Trending returns catalogue movies by popularity, keyed by external id only.
func (s *StaticService) Trending(_ context.Context, k int) ([]MovieSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]MovieSummary, 0, len(s.movies))
	for _, m := range s.movies {
		if m.TMDBID == 0 {
			continue
		}
		item := m.MovieSummary
		item.ID = 0
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return deref(out[i].Popularity) > deref(out[j].Popularity) })
	return limit(out, k), nil
}

// UserRatings returns stored ratings for the requested ids.
func (s *StaticService) UserRatings(_ context.Context, kind IDKind, ids []int) (Ratings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Ratings{}
	for _, id := range ids {
		for i, m := range s.movies {
			if id == 0 || m.IDFor(kind) != id {
				continue
			}
			if v, ok := s.ratings[i]; ok {
				out[id] = v
			}
		}
	}
	return out, nil
}

// SubmitRating stores a rating for a movie key (local id first, then
// external id).
func (s *StaticService) SubmitRating(_ context.Context, movie, value int) error {
	if movie <= 0 {
		return ErrMissingID
	}
	if value < MinRating || value > MaxRating {
		return ErrInvalidRating
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(movie)
	if idx < 0 {
		return fmt.Errorf("recs: movie %d not found", movie)
	}
	s.ratings[idx] = value
	return nil
}

// Discover filters the catalogue. Every non-empty filter must match.
func (s *StaticService) Discover(_ context.Context, query DiscoverQuery) ([]MovieSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []MovieSummary
	for _, m := range s.movies {
		if m.TMDBID == 0 {
			continue
		}
		if query.Actor != "" && !containsFold(m.Cast, query.Actor) {
			continue
		}
		if query.Genre != "" && !containsFold(m.Genres, query.Genre) {
			continue
		}
		if query.Language != "" && !matchesLanguage(m.Language, query.Language) {
			continue
		}
		item := m.MovieSummary
		item.ID = 0
		out = append(out, item)
	}
	return out, nil
}

// Explain returns a templated explanation built from the stored record.
func (s *StaticService) Explain(_ context.Context, query ExplanationQuery) (*Explanation, error) {
	if _, err := query.Values(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.movies {
		if (query.MovieID > 0 && m.ID == query.MovieID) || (query.MovieID == 0 && m.TMDBID == query.TMDBID) {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &Explanation{Error: "Movie not found"}, nil
	}
	m := s.movies[idx]
	return &Explanation{
		Movie: m.Title,
		Explanation: fmt.Sprintf("%s is a %s pick rated %.1f/10 that matches the kind of films you rate highly.",
			m.Title, strings.ToLower(strings.Join(m.Genres, "/")), deref(m.Vote)),
	}, nil
}

// Ask matches question words against titles, genres and overviews.
func (s *StaticService) Ask(_ context.Context, question string) (*Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, errors.New("recs: question is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	words := strings.Fields(strings.ToLower(q))
	var hits []Hit
	for _, m := range s.movies {
		haystack := strings.ToLower(m.Title + " " + m.Overview + " " + strings.Join(m.Genres, " "))
		score := 0.0
		for _, w := range words {
			if len(w) > 2 && strings.Contains(haystack, w) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, Hit{ID: m.Key(), Title: m.Title, Score: score / float64(len(words))})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > 3 {
		hits = hits[:3]
	}
	answer := "No answer."
	if len(hits) > 0 {
		answer = fmt.Sprintf("You might enjoy %s.", hits[0].Title)
	}
	return &Answer{Question: q, Answer: answer, Hits: hits}, nil
}

// Rated returns how many movies have been rated.
func (s *StaticService) Rated() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings)
}

func (s *StaticService) indexOf(key int) int {
	for i, m := range s.movies {
		if m.ID == key {
			return i
		}
	}
	for i, m := range s.movies {
		if m.TMDBID == key {
			return i
		}
	}
	return -1
}

func containsFold(values []string, want string) bool {
	want = strings.TrimSpace(want)
	for _, v := range values {
		if strings.Contains(strings.ToLower(v), strings.ToLower(want)) {
			return true
		}
	}
	return false
}

func matchesLanguage(code, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == code {
		return true
	}
	return languageNames[want] == code
}

var languageNames = map[string]string{
	"english":  "en",
	"hindi":    "hi",
	"japanese": "ja",
	"korean":   "ko",
	"french":   "fr",
	"spanish":  "es",
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func limit(movies []MovieSummary, k int) []MovieSummary {
	if k > 0 && len(movies) > k {
		return movies[:k]
	}
	return movies
}

func f64(v float64) *float64 { return &v }

func sampleCatalogue() []staticMovie {
	return []staticMovie{
		{MovieSummary: MovieSummary{ID: 1, TMDBID: 603, Title: "The Matrix", Overview: "A hacker learns the truth about reality.", Vote: f64(8.2), Popularity: f64(88.1), Year: "1999"}, Cast: []string{"Keanu Reeves", "Carrie-Anne Moss"}, Genres: []string{"Action", "Science Fiction"}, Language: "en"},
		{MovieSummary: MovieSummary{ID: 2, TMDBID: 13, Title: "Forrest Gump", Overview: "A kind man witnesses decades of history.", Vote: f64(8.5), Popularity: f64(61.4), Year: "1994"}, Cast: []string{"Tom Hanks", "Robin Wright"}, Genres: []string{"Drama", "Romance"}, Language: "en"},
		{MovieSummary: MovieSummary{ID: 3, TMDBID: 129, Title: "Spirited Away", Overview: "A girl wanders into a world of spirits.", Vote: f64(8.5), Popularity: f64(70.2), Year: "2001"}, Cast: []string{"Rumi Hiiragi"}, Genres: []string{"Animation", "Fantasy"}, Language: "ja"},
		{MovieSummary: MovieSummary{ID: 4, TMDBID: 496243, Title: "Parasite", Overview: "A poor family schemes its way into a wealthy home.", Vote: f64(8.5), Popularity: f64(75.9), Year: "2019"}, Cast: []string{"Song Kang-ho"}, Genres: []string{"Thriller", "Drama"}, Language: "ko"},
		{MovieSummary: MovieSummary{ID: 5, TMDBID: 157336, Title: "Interstellar", Overview: "Explorers travel through a wormhole to save humanity.", Vote: f64(8.4), Popularity: f64(140.6), Year: "2014"}, Cast: []string{"Matthew McConaughey", "Anne Hathaway"}, Genres: []string{"Adventure", "Science Fiction", "Drama"}, Language: "en"},
		{MovieSummary: MovieSummary{ID: 6, TMDBID: 155, Title: "The Dark Knight", Overview: "Batman faces the Joker in Gotham.", Vote: f64(8.5), Popularity: f64(101.3), Year: "2008"}, Cast: []string{"Christian Bale", "Heath Ledger"}, Genres: []string{"Action", "Crime", "Drama"}, Language: "en"},
		{MovieSummary: MovieSummary{ID: 7, TMDBID: 19404, Title: "Dilwale Dulhania Le Jayenge", Overview: "Two young travellers fall in love across Europe.", Vote: f64(8.6), Popularity: f64(24.8), Year: "1995"}, Cast: []string{"Shah Rukh Khan", "Kajol"}, Genres: []string{"Comedy", "Drama", "Romance"}, Language: "hi"},
		{MovieSummary: MovieSummary{ID: 8, TMDBID: 680, Title: "Pulp Fiction", Overview: "Interlocking stories of crime in Los Angeles.", Vote: f64(8.5), Popularity: f64(66.7), Year: "1994"}, Cast: []string{"John Travolta", "Uma Thurman", "Samuel L. Jackson"}, Genres: []string{"Thriller", "Crime"}, Language: "en"},
		{MovieSummary: MovieSummary{ID: 9, TMDBID: 194, Title: "Amélie", Overview: "A shy waitress quietly changes the lives around her.", Vote: f64(7.9), Popularity: f64(30.5), Year: "2001"}, Cast: []string{"Audrey Tautou"}, Genres: []string{"Comedy", "Romance"}, Language: "fr"},
		{MovieSummary: MovieSummary{ID: 10, TMDBID: 27205, Title: "Inception", Overview: "A thief steals secrets through shared dreams.", Vote: f64(8.4), Popularity: f64(92.3), Year: "2010"}, Cast: []string{"Leonardo DiCaprio", "Elliot Page"}, Genres: []string{"Action", "Science Fiction", "Adventure"}, Language: "en"},
		{MovieSummary: MovieSummary{ID: 11, TMDBID: 372058, Title: "Your Name.", Overview: "Two strangers find themselves swapping bodies.", Vote: f64(8.5), Popularity: f64(58.0), Year: "2016"}, Cast: []string{"Ryunosuke Kamiki", "Mone Kamishiraishi"}, Genres: []string{"Animation", "Romance", "Drama"}, Language: "ja"},
		{MovieSummary: MovieSummary{ID: 12, TMDBID: 550, Title: "Fight Club", Overview: "An insomniac starts an underground fight club.", Vote: f64(8.4), Popularity: f64(73.5), Year: "1999"}, Cast: []string{"Brad Pitt", "Edward Norton"}, Genres: []string{"Drama"}, Language: "en"},
		{MovieSummary: MovieSummary{TMDBID: 20453, Title: "3 Idiots", Overview: "Two friends search for a long lost companion.", Vote: f64(8.0), Popularity: f64(28.4), Year: "2009"}, Cast: []string{"Aamir Khan", "R. Madhavan"}, Genres: []string{"Comedy", "Drama"}, Language: "hi", CatalogOnly: true},
		{MovieSummary: MovieSummary{TMDBID: 858, Title: "Sleepless in Seattle", Overview: "A widower's son calls a radio show.", Vote: f64(6.8), Popularity: f64(19.9), Year: "1993"}, Cast: []string{"Tom Hanks", "Meg Ryan"}, Genres: []string{"Comedy", "Romance", "Drama"}, Language: "en", CatalogOnly: true},
		{MovieSummary: MovieSummary{TMDBID: 497, Title: "The Green Mile", Overview: "A death row guard meets a man with a gift.", Vote: f64(8.5), Popularity: f64(64.2), Year: "1999"}, Cast: []string{"Tom Hanks", "Michael Clarke Duncan"}, Genres: []string{"Fantasy", "Drama", "Crime"}, Language: "en", CatalogOnly: true},
		{MovieSummary: MovieSummary{TMDBID: 398818, Title: "Call Me by Your Name", Overview: "A summer romance in northern Italy.", Vote: f64(8.2), Popularity: f64(35.1), Year: "2017"}, Cast: []string{"Timothée Chalamet", "Armie Hammer"}, Genres: []string{"Romance", "Drama"}, Language: "en", CatalogOnly: true},
	}
}
