package repository

import (
	"testing"
	"time"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLotteryRepository_UpdateStateGuard(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotteryRepository()

	require.NoError(t, repo.Create(ctx, &entity.Lottery{
		Base:      entity.Base{ID: "lottery1"},
		AssetType: entity.AssetMatic,
		State:     entity.LotteryOpen,
	}))

	require.NoError(t, repo.UpdateState(ctx, "lottery1", entity.LotteryOpen, entity.LotteryClosing))

	// The same transition again finds no row in the expected state.
	err := repo.UpdateState(ctx, "lottery1", entity.LotteryOpen, entity.LotteryClosing)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Backwards transitions are rejected before touching the database.
	err = repo.UpdateState(ctx, "lottery1", entity.LotteryClosing, entity.LotteryOpen)
	require.Error(t, err)

	lottery, err := repo.GetByID(ctx, "lottery1")
	require.NoError(t, err)
	require.Equal(t, entity.LotteryClosing, lottery.State)
}

func TestLotteryRepository_NextLotteryID(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotteryRepository()

	// Every call hands out a fresh number and the families count
	// independently of each other.
	for want := int64(1); want <= 3; want++ {
		got, err := repo.NextLotteryID(ctx, "erc")
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	got, err := repo.NextLotteryID(ctx, "matic")
	require.NoError(t, err)
	require.EqualValues(t, 1, got)
}

func TestLotteryRepository_GetDue(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewLotteryRepository()

	now := time.Now()
	require.NoError(t, repo.Create(ctx, &entity.Lottery{
		Base: entity.Base{ID: "due-open"}, AssetType: entity.AssetMatic,
		EndTime: now.Add(-time.Minute), State: entity.LotteryOpen,
	}))
	require.NoError(t, repo.Create(ctx, &entity.Lottery{
		Base: entity.Base{ID: "due-closing"}, AssetType: entity.AssetMatic,
		EndTime: now.Add(-2 * time.Minute), State: entity.LotteryClosing,
	}))
	require.NoError(t, repo.Create(ctx, &entity.Lottery{
		Base: entity.Base{ID: "running"}, AssetType: entity.AssetMatic,
		EndTime: now.Add(time.Hour), State: entity.LotteryOpen,
	}))
	require.NoError(t, repo.Create(ctx, &entity.Lottery{
		Base: entity.Base{ID: "interrupted"}, AssetType: entity.AssetMatic,
		EndTime: now.Add(-3 * time.Minute), State: entity.LotteryWinnerSelection,
	}))
	require.NoError(t, repo.Create(ctx, &entity.Lottery{
		Base: entity.Base{ID: "settled"}, AssetType: entity.AssetMatic,
		EndTime: now.Add(-time.Minute), State: entity.LotterySettled,
	}))

	// A lottery interrupted during winner selection stays reachable until it
	// lands in a terminal state.
	due, err := repo.GetDue(ctx, now)
	require.NoError(t, err)
	require.Len(t, due, 3)
	require.Equal(t, "interrupted", due[0].ID)
	require.Equal(t, "due-closing", due[1].ID)
	require.Equal(t, "due-open", due[2].ID)
}
