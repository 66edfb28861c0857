package domain

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
)

// Page is one page of an external paginated query. An empty NextCursor means
// the query is exhausted. RateLimited reports that the provider refused this
// page; any items are from before the refusal.
type Page[T any] struct {
	Items       []T
	NextCursor  string
	RateLimited bool
}

type PageFetcher[T any] func(ctx context.Context, cursor string) (Page[T], error)

// FetchResult carries everything retrieved so far for a query. Complete is
// false while the provider still holds pages we have not seen.
type FetchResult[T any] struct {
	Items    []T
	Complete bool
}

// inflight serializes fetch progress per (kind, key) across all fetcher
// instantiations, so two overlapping runs never request the same page twice.
// Entries live only while their query is unfinished.
var inflight = xsync.NewMapOf[*sync.Mutex]()

func inflightKey(kind entity.QueryKind, key string) string {
	return string(kind) + ":" + key
}

// Fetcher drives a paginated query to completion across multiple runs. It
// persists progress after every page, so a run cut short by a rate limit or a
// crash resumes from the last stored cursor instead of page one.
type Fetcher[T any] struct {
	fetchCursorRepo repository.FetchCursorRepository
}

func NewFetcher[T any](fetchCursorRepo repository.FetchCursorRepository) *Fetcher[T] {
	return &Fetcher[T]{fetchCursorRepo: fetchCursorRepo}
}

func (f *Fetcher[T]) FetchAll(
	ctx context.Context, kind entity.QueryKind, key string, fetchPage PageFetcher[T],
) (FetchResult[T], error) {
	state, err := f.fetchCursorRepo.Get(ctx, kind, key)
	if err != nil {
		return FetchResult[T]{}, err
	}

	if state == nil {
		state = &entity.FetchCursor{QueryKind: kind, QueryKey: key}
	}

	items, err := decodeItems[T](state.Items)
	if err != nil {
		return FetchResult[T]{}, err
	}

	// A completed query is never re-requested; later runs reuse the stored
	// result as long as it lives.
	if state.Complete {
		return FetchResult[T]{Items: items, Complete: true}, nil
	}

	mutex, _ := inflight.LoadOrStore(inflightKey(kind, key), &sync.Mutex{})
	if !mutex.TryLock() {
		// Another run is advancing this query. Answer with what is cached
		// instead of racing it for the same pages.
		return FetchResult[T]{Items: items, Complete: false}, nil
	}
	defer mutex.Unlock()

	for {
		page, err := fetchPage(ctx, state.Cursor)
		if err != nil {
			// Progress up to the previous page is already persisted; the next
			// run resumes from there.
			return FetchResult[T]{}, err
		}

		items = append(items, page.Items...)

		if page.RateLimited {
			if err := f.persist(ctx, state, items, false); err != nil {
				return FetchResult[T]{}, err
			}

			return FetchResult[T]{Items: items, Complete: false}, nil
		}

		state.Cursor = page.NextCursor
		complete := page.NextCursor == ""
		if err := f.persist(ctx, state, items, complete); err != nil {
			return FetchResult[T]{}, err
		}

		if complete {
			inflight.Delete(inflightKey(kind, key))
			return FetchResult[T]{Items: items, Complete: true}, nil
		}
	}
}

// Forget drops the stored progress of a query, forcing the next FetchAll to
// start from page one.
func (f *Fetcher[T]) Forget(ctx context.Context, kind entity.QueryKind, key string) error {
	inflight.Delete(inflightKey(kind, key))
	return f.fetchCursorRepo.Delete(ctx, kind, key)
}

func (f *Fetcher[T]) persist(
	ctx context.Context, state *entity.FetchCursor, items []T, complete bool,
) error {
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}

	state.Items = b
	state.Complete = complete
	if err := f.fetchCursorRepo.Upsert(ctx, state); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot persist fetch progress of %s %s: %v",
			state.QueryKind, state.QueryKey, err)
		return err
	}

	return nil
}

func decodeItems[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}

	return items, nil
}
