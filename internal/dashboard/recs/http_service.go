package recs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Endpoint paths consumed by the dashboard, relative to the site origin.
const (
	PathRecommendations = "/api/recommendations/"
	PathTrending        = "/api/trending/"
	PathUserRatings     = "/api/user-ratings/"
	PathRatings         = "/api/ratings/"
	PathDiscover        = "/api/discover/"
	PathExplanation     = "/api/natural-explanation/"
	PathAsk             = "/api/rag/qa/"
)

// DefaultCSRFHeader is the header the backend reads the CSRF token from.
const DefaultCSRFHeader = "X-CSRFToken"

const maxBodyBytes = 1 << 20

// HTTPClient matches the subset of http.Client used by HTTPService.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// TokenSource supplies the CSRF token sent with unsafe requests.
type TokenSource interface {
	CSRFToken() string
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() string

// CSRFToken implements TokenSource.
func (f TokenFunc) CSRFToken() string { return f() }

// Option customises an HTTPService.
type Option func(*HTTPService)

// WithCSRF sets the header name and token source for unsafe requests.
func WithCSRF(header string, tokens TokenSource) Option {
	return func(s *HTTPService) {
		if strings.TrimSpace(header) != "" {
			s.csrfHeader = header
		}
		s.tokens = tokens
	}
}

var _ Service = (*HTTPService)(nil)

// HTTPService implements Service against the backend's JSON endpoints.
type HTTPService struct {
	base       *url.URL
	client     HTTPClient
	csrfHeader string
	tokens     TokenSource
}

// NewHTTPService constructs a Service rooted at baseURL (the site origin).
func NewHTTPService(baseURL string, client HTTPClient, opts ...Option) (*HTTPService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("recs: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("recs: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	s := &HTTPService{
		base:       parsed,
		client:     client,
		csrfHeader: DefaultCSRFHeader,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Recommendations fetches the personalised list.
func (s *HTTPService) Recommendations(ctx context.Context, k int) (*RecommendationPage, error) {
	body, err := s.get(ctx, PathRecommendations, pageQuery(k))
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var movies []MovieSummary
		if err := json.Unmarshal(trimmed, &movies); err != nil {
			return nil, fmt.Errorf("recs: decode recommendations: %w", err)
		}
		return &RecommendationPage{Movies: movies}, nil
	}

	var signal InsufficientRatings
	if err := json.Unmarshal(trimmed, &signal); err != nil {
		return nil, fmt.Errorf("recs: decode recommendations: %w", err)
	}
	switch signal.Code {
	case CodeInsufficientRatings, CodeNoRatings:
		return &RecommendationPage{Insufficient: &signal}, nil
	case "":
		return nil, errors.New("recs: decode recommendations: unexpected payload")
	default:
		return nil, fmt.Errorf("recs: recommendations: %s", signal.Code)
	}
}

// Trending fetches popular catalogue movies.
func (s *HTTPService) Trending(ctx context.Context, k int) ([]MovieSummary, error) {
	body, err := s.get(ctx, PathTrending, pageQuery(k))
	if err != nil {
		return nil, err
	}
	var movies []MovieSummary
	if err := json.Unmarshal(body, &movies); err != nil {
		return nil, fmt.Errorf("recs: decode trending: %w", err)
	}
	return movies, nil
}

// UserRatings fetches ratings for ids in one request. No request is made for
// an empty batch.
func (s *HTTPService) UserRatings(ctx context.Context, kind IDKind, ids []int) (Ratings, error) {
	if len(ids) == 0 {
		return Ratings{}, nil
	}
	if kind != LocalID && kind != ExternalID {
		return nil, fmt.Errorf("recs: unknown id kind %q", kind)
	}
	query := url.Values{}
	for _, id := range ids {
		query.Add(string(kind), strconv.Itoa(id))
	}

	body, err := s.get(ctx, PathUserRatings, query)
	if err != nil {
		return nil, err
	}
	var raw map[string]int
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("recs: decode user ratings: %w", err)
	}
	out := make(Ratings, len(raw))
	for key, value := range raw {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil {
			continue
		}
		out[id] = ClampRating(value)
	}
	return out, nil
}

// SubmitRating posts a rating. Only the status code is consumed.
func (s *HTTPService) SubmitRating(ctx context.Context, movie, value int) error {
	if movie <= 0 {
		return ErrMissingID
	}
	if value < MinRating || value > MaxRating {
		return ErrInvalidRating
	}
	payload := map[string]int{"movie": movie, "value": value}
	req, err := s.newJSONRequest(ctx, http.MethodPost, PathRatings, payload)
	if err != nil {
		return err
	}
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.errorFromResponse(resp)
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

// Discover runs the catalogue search.
func (s *HTTPService) Discover(ctx context.Context, query DiscoverQuery) ([]MovieSummary, error) {
	body, err := s.get(ctx, PathDiscover, query.Values())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Results []MovieSummary `json:"results"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("recs: decode discover: %w", err)
	}
	return payload.Results, nil
}

// Explain fetches one explanation. An {error} payload, whatever its status
// code, is returned as Explanation.Error rather than as a Go error.
func (s *HTTPService) Explain(ctx context.Context, query ExplanationQuery) (*Explanation, error) {
	values, err := query.Values()
	if err != nil {
		return nil, err
	}
	req, err := s.newRequest(ctx, http.MethodGet, PathExplanation, values, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("recs: read explanation: %w", err)
	}
	var payload Explanation
	if err := json.Unmarshal(body, &payload); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, statusError(resp.StatusCode, body)
		}
		return nil, fmt.Errorf("recs: decode explanation: %w", err)
	}
	if payload.Error == "" && resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, body)
	}
	return &payload, nil
}

// Ask sends a free-text question.
func (s *HTTPService) Ask(ctx context.Context, question string) (*Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, errors.New("recs: question is required")
	}
	body, err := s.get(ctx, PathAsk, url.Values{"q": []string{q}})
	if err != nil {
		return nil, err
	}
	var payload Answer
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("recs: decode answer: %w", err)
	}
	return &payload, nil
}

func pageQuery(k int) url.Values {
	if k <= 0 {
		return nil
	}
	return url.Values{"k": []string{strconv.Itoa(k)}}
}

func (s *HTTPService) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, endpoint, query, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, s.errorFromResponse(resp)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("recs: read response: %w", err)
	}
	return body, nil
}

func (s *HTTPService) do(req *http.Request) (*http.Response, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recs: request failed: %w", err)
	}
	return resp, nil
}

func (s *HTTPService) newRequest(ctx context.Context, method, endpoint string, query url.Values, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.resolve(endpoint, query), body)
	if err != nil {
		return nil, fmt.Errorf("recs: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if method != http.MethodGet && method != http.MethodHead && s.tokens != nil {
		if token := s.tokens.CSRFToken(); token != "" {
			req.Header.Set(s.csrfHeader, token)
		}
	}
	return req, nil
}

func (s *HTTPService) newJSONRequest(ctx context.Context, method, endpoint string, payload any) (*http.Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("recs: encode payload: %w", err)
	}
	req, err := s.newRequest(ctx, method, endpoint, nil, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (s *HTTPService) resolve(endpoint string, query url.Values) string {
	ref := &url.URL{Path: strings.TrimPrefix(endpoint, "/")}
	if len(query) > 0 {
		ref.RawQuery = query.Encode()
	}
	return s.base.ResolveReference(ref).String()
}

func (s *HTTPService) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
	return statusError(resp.StatusCode, body)
}

func statusError(status int, body []byte) error {
	type errorPayload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	var payload errorPayload
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			switch {
			case payload.Message != "":
				return fmt.Errorf("recs: backend error (%d): %s", status, payload.Message)
			case payload.Error != "":
				return fmt.Errorf("recs: backend error (%d): %s", status, payload.Error)
			case payload.Detail != "":
				return fmt.Errorf("recs: backend error (%d): %s", status, payload.Detail)
			}
		}
		return fmt.Errorf("recs: backend error (%d): %s", status, strings.TrimSpace(string(body)))
	}
	return fmt.Errorf("recs: backend error (%d): %s", status, http.StatusText(status))
}
