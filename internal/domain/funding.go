package domain

import (
	"context"
	"time"

	"github.com/VAIOT/lottery-backend/internal/client"
	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/enum"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"golang.org/x/sync/errgroup"
)

type FundingWaiter interface {
	// Await blocks until every funding transaction of the lottery reaches a
	// terminal status or the funding timeout passes, then persists the final
	// statuses. It reports whether all transactions succeeded.
	Await(ctx context.Context, lottery *entity.Lottery) (bool, error)
}

type fundingWaiter struct {
	lotteryRepo    repository.LotteryRepository
	txStatusCaller client.TxStatusCaller
}

func NewFundingWaiter(
	lotteryRepo repository.LotteryRepository,
	txStatusCaller client.TxStatusCaller,
) *fundingWaiter {
	return &fundingWaiter{lotteryRepo: lotteryRepo, txStatusCaller: txStatusCaller}
}

func (w *fundingWaiter) Await(ctx context.Context, lottery *entity.Lottery) (bool, error) {
	cfg := xcontext.Configs(ctx).Lottery
	deadline := time.Now().Add(cfg.FundingTimeout)
	token := fundingToken(lottery)

	txs := make([]entity.FundingTx, len(lottery.Transactions))
	copy(txs, lottery.Transactions)

	group, groupCtx := errgroup.WithContext(ctx)
	for i := range txs {
		if txs[i].Status.Terminal() {
			continue
		}

		i := i
		group.Go(func() error {
			status, err := w.pollTx(groupCtx, token, txs[i].Hash, deadline, cfg.FundingPollInterval)
			if err != nil {
				return err
			}

			txs[i].Status = status
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return false, err
	}

	if err := w.lotteryRepo.UpdateTransactions(ctx, lottery.ID, txs); err != nil {
		return false, err
	}
	lottery.Transactions = txs

	for _, tx := range txs {
		if tx.Status != entity.TxSuccess {
			return false, nil
		}
	}

	return true, nil
}

// pollTx asks the transaction service for the status of one hash until it
// turns terminal. A hash still pending at the deadline is declared stuck.
func (w *fundingWaiter) pollTx(
	ctx context.Context, token, hash string, deadline time.Time, interval time.Duration,
) (entity.TxStatus, error) {
	for {
		status, err := w.txStatusCaller.GetTxStatus(ctx, token, hash)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot get status of tx %s: %v", hash, err)
		} else {
			parsed, err := enum.ToEnum[entity.TxStatus](status)
			if err != nil {
				xcontext.Logger(ctx).Warnf("Got invalid status %s of tx %s", status, hash)
			} else if parsed.Terminal() {
				return parsed, nil
			}
		}

		if time.Now().After(deadline) {
			return entity.TxStuck, nil
		}

		select {
		case <-ctx.Done():
			return entity.TxPending, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func fundingToken(lottery *entity.Lottery) string {
	switch lottery.AssetType {
	case entity.AssetMatic:
		return "matic"
	case entity.AssetErc20:
		return string(lottery.Erc20Token)
	default:
		return "eth"
	}
}
