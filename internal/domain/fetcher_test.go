package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestFetcher_ResumeAfterRateLimit(t *testing.T) {
	ctx := testutil.MockContext()
	fetchCursorRepo := repository.NewFetchCursorRepository(testutil.NewInMemoryRedisClient())
	fetcher := NewFetcher[string](fetchCursorRepo)

	rateLimited := true
	requested := map[string]int{}
	fetchPage := func(ctx context.Context, cursor string) (Page[string], error) {
		requested[cursor]++
		switch cursor {
		case "":
			return Page[string]{Items: []string{"a", "b"}, NextCursor: "c1"}, nil
		case "c1":
			if rateLimited {
				return Page[string]{RateLimited: true}, nil
			}
			return Page[string]{Items: []string{"c"}}, nil
		}

		return Page[string]{}, errors.New("unexpected cursor")
	}

	result, err := fetcher.FetchAll(ctx, entity.QueryLikes, "post1", fetchPage)
	require.NoError(t, err)
	require.False(t, result.Complete)
	require.Equal(t, []string{"a", "b"}, result.Items)

	// An unfinished query keeps its lock slot until it completes.
	_, held := inflight.Load(inflightKey(entity.QueryLikes, "post1"))
	require.True(t, held)

	// The next run continues from the stored cursor instead of page one.
	rateLimited = false
	result, err = fetcher.FetchAll(ctx, entity.QueryLikes, "post1", fetchPage)
	require.NoError(t, err)
	require.True(t, result.Complete)
	require.Equal(t, []string{"a", "b", "c"}, result.Items)
	require.Equal(t, 1, requested[""])

	_, held = inflight.Load(inflightKey(entity.QueryLikes, "post1"))
	require.False(t, held)

	// A finished query is answered from the store without any request.
	result, err = fetcher.FetchAll(ctx, entity.QueryLikes, "post1", fetchPage)
	require.NoError(t, err)
	require.True(t, result.Complete)
	require.Equal(t, []string{"a", "b", "c"}, result.Items)
	require.Equal(t, 2, requested["c1"])
}

func TestFetcher_KeepProgressOnError(t *testing.T) {
	ctx := testutil.MockContext()
	fetchCursorRepo := repository.NewFetchCursorRepository(testutil.NewInMemoryRedisClient())
	fetcher := NewFetcher[string](fetchCursorRepo)

	fail := true
	requested := map[string]int{}
	fetchPage := func(ctx context.Context, cursor string) (Page[string], error) {
		requested[cursor]++
		switch cursor {
		case "":
			return Page[string]{Items: []string{"a"}, NextCursor: "c1"}, nil
		case "c1":
			if fail {
				return Page[string]{}, errors.New("boom")
			}
			return Page[string]{Items: []string{"b"}}, nil
		}

		return Page[string]{}, errors.New("unexpected cursor")
	}

	_, err := fetcher.FetchAll(ctx, entity.QueryComments, "post2", fetchPage)
	require.Error(t, err)

	fail = false
	result, err := fetcher.FetchAll(ctx, entity.QueryComments, "post2", fetchPage)
	require.NoError(t, err)
	require.True(t, result.Complete)
	require.Equal(t, []string{"a", "b"}, result.Items)
	require.Equal(t, 1, requested[""])
}

func TestFetcher_ForgetRestartsFromPageOne(t *testing.T) {
	ctx := testutil.MockContext()
	fetchCursorRepo := repository.NewFetchCursorRepository(testutil.NewInMemoryRedisClient())
	fetcher := NewFetcher[string](fetchCursorRepo)

	requested := 0
	fetchPage := func(ctx context.Context, cursor string) (Page[string], error) {
		requested++
		return Page[string]{Items: []string{"a"}}, nil
	}

	_, err := fetcher.FetchAll(ctx, entity.QuerySearch, "q", fetchPage)
	require.NoError(t, err)

	require.NoError(t, fetcher.Forget(ctx, entity.QuerySearch, "q"))
	_, held := inflight.Load(inflightKey(entity.QuerySearch, "q"))
	require.False(t, held)

	result, err := fetcher.FetchAll(ctx, entity.QuerySearch, "q", fetchPage)
	require.NoError(t, err)
	require.Equal(t, []string{"a"}, result.Items)
	require.Equal(t, 2, requested)
}
