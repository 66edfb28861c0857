package testutil

import (
	"context"
	"time"

	"github.com/VAIOT/lottery-backend/config"
	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/pkg/logger"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "testing",
		Payout: config.PayoutConfigs{
			MaticRPCName: "matic",
			ErcRPCName:   "erc",
		},
		TxStatus: config.TxStatusConfigs{
			RPCName: "transaction",
		},
		Lottery: config.LotteryConfigs{
			TickInterval:             15 * time.Minute,
			FundingPollInterval:      time.Millisecond,
			FundingTimeout:           20 * time.Millisecond,
			AddParticipantsDelay:     0,
			DrawNumberDelay:          0,
			PayoutDelay:              0,
			CursorTTL:                time.Minute,
			MaxFollowTargetFollowers: 1000000,
			MaxPostAge:               24 * time.Hour,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}
