package ratings_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"finitefield.org/movie-dashboard/internal/dashboard/ratings"
	"finitefield.org/movie-dashboard/internal/dashboard/recs"
)

type fakeFetcher struct {
	calls [][]int
	kinds []recs.IDKind
	out   recs.Ratings
	err   error
}

func (f *fakeFetcher) UserRatings(_ context.Context, kind recs.IDKind, ids []int) (recs.Ratings, error) {
	f.calls = append(f.calls, append([]int(nil), ids...))
	f.kinds = append(f.kinds, kind)
	return f.out, f.err
}

func TestFetchEmptyBatchSkipsBackend(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{}
	store := ratings.NewStore(fetcher, nil)

	got := store.Fetch(context.Background(), recs.LocalID, nil)
	require.Empty(t, got)
	got = store.Fetch(context.Background(), recs.ExternalID, []int{0, 0})
	require.Empty(t, got)
	require.Empty(t, fetcher.calls)
}

func TestFetchBatchesDistinctIDs(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{out: recs.Ratings{603: 4}}
	store := ratings.NewStore(fetcher, nil)

	got := store.Fetch(context.Background(), recs.ExternalID, []int{603, 13, 603, 0, 129})
	require.Equal(t, 4, got.Get(603))
	require.Equal(t, 0, got.Get(13))
	require.Equal(t, [][]int{{603, 13, 129}}, fetcher.calls)
	require.Equal(t, []recs.IDKind{recs.ExternalID}, fetcher.kinds)
}

func TestFetchFailureReturnsEmptyAndLogs(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.DebugLevel)
	fetcher := &fakeFetcher{err: errors.New("recs: request failed: connection refused")}
	store := ratings.NewStore(fetcher, zap.New(core))

	got := store.Fetch(context.Background(), recs.LocalID, []int{1, 2})
	require.NotNil(t, got)
	require.Empty(t, got)

	entries := logs.FilterMessage("fetch user ratings failed").All()
	require.Len(t, entries, 1)
	require.Equal(t, "movie_id", entries[0].ContextMap()["kind"])
}
