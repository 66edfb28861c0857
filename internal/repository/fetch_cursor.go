package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/VAIOT/lottery-backend/pkg/xredis"
)

type FetchCursorRepository interface {
	Get(ctx context.Context, kind entity.QueryKind, key string) (*entity.FetchCursor, error)
	Upsert(ctx context.Context, cursor *entity.FetchCursor) error
	Delete(ctx context.Context, kind entity.QueryKind, key string) error
}

type fetchCursorRepository struct {
	redisClient xredis.Client
}

func NewFetchCursorRepository(redisClient xredis.Client) *fetchCursorRepository {
	return &fetchCursorRepository{redisClient: redisClient}
}

func redisKeyFetchCursor(kind entity.QueryKind, key string) string {
	return fmt.Sprintf("fetchcursor:%s:%s", kind, key)
}

// Get returns (nil, nil) when no progress is recorded for (kind, key), which
// includes progress that aged out of redis.
func (r *fetchCursorRepository) Get(
	ctx context.Context, kind entity.QueryKind, key string,
) (*entity.FetchCursor, error) {
	var cursor entity.FetchCursor
	err := r.redisClient.GetObj(ctx, redisKeyFetchCursor(kind, key), &cursor)
	if err != nil {
		if err == xredis.ErrNotFound {
			return nil, nil
		}

		return nil, err
	}

	return &cursor, nil
}

func (r *fetchCursorRepository) Upsert(ctx context.Context, cursor *entity.FetchCursor) error {
	cursor.UpdatedAt = time.Now()
	return r.redisClient.SetObj(ctx,
		redisKeyFetchCursor(cursor.QueryKind, cursor.QueryKey),
		cursor, xcontext.Configs(ctx).Lottery.CursorTTL)
}

func (r *fetchCursorRepository) Delete(
	ctx context.Context, kind entity.QueryKind, key string,
) error {
	return r.redisClient.Del(ctx, redisKeyFetchCursor(kind, key))
}
