// Package ratings looks up the visitor's existing ratings for a grid.
package ratings

import (
	"context"

	"go.uber.org/zap"

	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

// Fetcher is the backend call the store batches through.
type Fetcher interface {
	UserRatings(ctx context.Context, kind recs.IDKind, ids []int) (recs.Ratings, error)
}

// Store resolves ratings for a batch of ids. Lookups never fail: an
// unreachable or malformed backend yields an empty mapping.
type Store struct {
	fetcher Fetcher
	logger  *zap.Logger
}

// NewStore constructs a Store. A nil logger discards output.
func NewStore(fetcher Fetcher, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{fetcher: fetcher, logger: logger.Named("ratings")}
}

// Fetch issues one request covering every distinct non-zero id. Empty input
// returns without a request.
func (s *Store) Fetch(ctx context.Context, kind recs.IDKind, ids []int) recs.Ratings {
	batch := distinct(ids)
	if len(batch) == 0 || s == nil || s.fetcher == nil {
		return recs.Ratings{}
	}
	ratings, err := s.fetcher.UserRatings(ctx, kind, batch)
	if err != nil {
		s.logger.Warn("fetch user ratings failed",
			zap.String("kind", string(kind)),
			zap.Int("ids", len(batch)),
			zap.Error(err),
		)
		return recs.Ratings{}
	}
	if ratings == nil {
		return recs.Ratings{}
	}
	return ratings
}

func distinct(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
