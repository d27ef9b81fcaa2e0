// Package api serves the recommendation endpoints the dashboard consumes
// from an in-process recs.Service, for development without a backend.
package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/logging"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

const (
	defaultK     = 12
	maxK         = 50
	maxBodyBytes = 1 << 16
)

// Handlers exposes a recs.Service over HTTP.
type Handlers struct {
	svc recs.Service
}

// New constructs Handlers backed by svc.
func New(svc recs.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Mount registers every endpoint on r. Paths match recs.HTTPService.
func (h *Handlers) Mount(r chi.Router) {
	r.Get(recs.PathRecommendations, h.recommendations)
	r.Get(recs.PathTrending, h.trending)
	r.Get(recs.PathUserRatings, h.userRatings)
	r.Post(recs.PathRatings, h.submitRating)
	r.Get(recs.PathDiscover, h.discover)
	r.Get(recs.PathExplanation, h.explain)
	r.Get(recs.PathAsk, h.ask)
}

func (h *Handlers) recommendations(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.Recommendations(r.Context(), pageSize(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if page.Insufficient != nil {
		writeJSON(w, http.StatusOK, page.Insufficient)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(page.Movies))
}

func (h *Handlers) trending(w http.ResponseWriter, r *http.Request) {
	movies, err := h.svc.Trending(r.Context(), pageSize(r))
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(movies))
}

func (h *Handlers) userRatings(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	kind := recs.LocalID
	raw := query[string(recs.LocalID)]
	if len(raw) == 0 {
		kind = recs.ExternalID
		raw = query[string(recs.ExternalID)]
	}
	ids := make([]int, 0, len(raw))
	for _, v := range raw {
		if id, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && id > 0 {
			ids = append(ids, id)
		}
	}

	ratings, err := h.svc.UserRatings(r.Context(), kind, ids)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	out := make(map[string]int, len(ratings))
	for id, v := range ratings {
		out[strconv.Itoa(id)] = v
	}
	writeJSON(w, http.StatusOK, out)
}

type ratingRequest struct {
	Movie int `json:"movie"`
	Value int `json:"value"`
}

func (h *Handlers) submitRating(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "could not read request body")
		return
	}
	var req ratingRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid_body", "request body must be JSON")
		return
	}
	if err := h.svc.SubmitRating(r.Context(), req.Movie, req.Value); err != nil {
		switch {
		case errors.Is(err, recs.ErrInvalidRating), errors.Is(err, recs.ErrMissingID):
			writeError(w, r, http.StatusBadRequest, "invalid_rating", err.Error())
		default:
			writeFailure(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handlers) discover(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	results, err := h.svc.Discover(r.Context(), recs.DiscoverQuery{
		Actor:    strings.TrimSpace(q.Get("actor")),
		Genre:    strings.TrimSpace(q.Get("genre")),
		Language: strings.TrimSpace(q.Get("lang")),
	})
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": nonNil(results)})
}

func (h *Handlers) explain(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := recs.ExplanationQuery{
		MovieID: atoi(q.Get(string(recs.LocalID))),
		TMDBID:  atoi(q.Get(string(recs.ExternalID))),
	}
	exp, err := h.svc.Explain(r.Context(), query)
	if err != nil {
		if errors.Is(err, recs.ErrMissingID) {
			writeJSON(w, http.StatusBadRequest, recs.Explanation{Error: "movie_id or tmdb_id is required"})
			return
		}
		writeFailure(w, r, err)
		return
	}
	status := http.StatusOK
	if exp.Error != "" {
		status = http.StatusNotFound
	}
	writeJSON(w, status, exp)
}

func (h *Handlers) ask(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, r, http.StatusBadRequest, "missing_question", "q is required")
		return
	}
	ans, err := h.svc.Ask(r.Context(), q)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if ans.Hits == nil {
		ans.Hits = []recs.Hit{}
	}
	writeJSON(w, http.StatusOK, ans)
}

func pageSize(r *http.Request) int {
	k := atoi(r.URL.Query().Get("k"))
	switch {
	case k <= 0:
		return defaultK
	case k > maxK:
		return maxK
	default:
		return k
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func nonNil(movies []recs.MovieSummary) []recs.MovieSummary {
	if movies == nil {
		return []recs.MovieSummary{}
	}
	return movies
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	logging.FromContext(r.Context()).Error("api handler failed", zap.Error(err))
	writeError(w, r, http.StatusInternalServerError, "internal_server_error", "internal server error")
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	payload := map[string]any{
		"error":   code,
		"message": logging.Sanitize(message, 512),
		"status":  status,
	}
	if id := chimw.GetReqID(r.Context()); id != "" {
		payload["request_id"] = logging.Sanitize(id, 80)
	}
	writeJSON(w, status, payload)
}
