package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VAIOT/lottery-backend/internal/client"
	"github.com/VAIOT/lottery-backend/internal/domain"
	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/api/telegram"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
)

// LotteryLifecycleCronJob drives every due lottery towards a terminal state.
// Lotteries whose eligibility data is not fully fetched yet stay in closing
// and are picked up again on the next tick.
type LotteryLifecycleCronJob struct {
	lotteryRepo       repository.LotteryRepository
	eligibilityDomain domain.EligibilityDomain
	payoutCaller      client.PayoutCaller
	telegramEndpoint  telegram.IEndpoint
	tickInterval      time.Duration
}

func NewLotteryLifecycleCronJob(
	lotteryRepo repository.LotteryRepository,
	eligibilityDomain domain.EligibilityDomain,
	payoutCaller client.PayoutCaller,
	telegramEndpoint telegram.IEndpoint,
	tickInterval time.Duration,
) *LotteryLifecycleCronJob {
	return &LotteryLifecycleCronJob{
		lotteryRepo:       lotteryRepo,
		eligibilityDomain: eligibilityDomain,
		payoutCaller:      payoutCaller,
		telegramEndpoint:  telegramEndpoint,
		tickInterval:      tickInterval,
	}
}

func (job *LotteryLifecycleCronJob) Do(ctx context.Context) {
	lotteries, err := job.lotteryRepo.GetDue(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get due lotteries: %v", err)
		return
	}

	// A failing lottery never blocks the rest of the batch.
	for i := range lotteries {
		job.settle(ctx, &lotteries[i])
	}
}

func (job *LotteryLifecycleCronJob) settle(ctx context.Context, lottery *entity.Lottery) {
	// A lottery still in winner selection was interrupted mid-sequence by a
	// crash or a failed write. The steps must not rerun, so its outcome is
	// decided from what the payout service already knows.
	if lottery.State == entity.LotteryWinnerSelection {
		job.recoverWinnerSelection(ctx, lottery)
		return
	}

	if lottery.State == entity.LotteryOpen {
		err := job.lotteryRepo.UpdateState(ctx, lottery.ID, entity.LotteryOpen, entity.LotteryClosing)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot close lottery #%d: %v", lottery.LotteryID, err)
			return
		}

		lottery.State = entity.LotteryClosing
	}

	exists, err := job.payoutCaller.Exists(ctx, lottery.AssetGroup(), lottery.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check lottery #%d on payout service: %v",
			lottery.LotteryID, err)
		return
	}

	if !exists {
		// Nothing to settle on chain, but the funds were taken. Flag the
		// lottery for a manual refund.
		err := job.lotteryRepo.UpdateState(ctx,
			lottery.ID, entity.LotteryClosing, entity.LotteryEmergencyCashback)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot flag lottery #%d for cashback: %v",
				lottery.LotteryID, err)
			return
		}

		job.notify(ctx, fmt.Sprintf("Lottery #%d asset: %s is unknown to the payout service",
			lottery.LotteryID, lottery.AssetType))
		return
	}

	participants := []entity.Participant(lottery.Participants)
	if len(participants) == 0 {
		computed, complete, err := job.eligibilityDomain.ComputeParticipants(ctx, lottery)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot compute participants of lottery #%d: %v",
				lottery.LotteryID, err)
			return
		}

		if !complete {
			xcontext.Logger(ctx).Infof("Participants of lottery #%d are not complete yet",
				lottery.LotteryID)
			return
		}

		if err := job.lotteryRepo.UpdateParticipants(ctx, lottery.ID, computed); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot save participants of lottery #%d: %v",
				lottery.LotteryID, err)
			return
		}

		lottery.Participants = computed
		participants = computed
	}

	if len(participants) < lottery.NumWinners {
		job.cashback(ctx, lottery, len(participants))
		return
	}

	job.selectWinners(ctx, lottery, participants)
}

// cashback refunds the owner when the participant set cannot fill the prize
// table. The state moves only after the refund call is accepted, so a failed
// call is retried on a later tick without ever refunding twice.
func (job *LotteryLifecycleCronJob) cashback(
	ctx context.Context, lottery *entity.Lottery, numParticipants int,
) {
	result, err := job.payoutCaller.EmergencyCashback(ctx, lottery.AssetGroup(), lottery.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cashback lottery #%d: %v", lottery.LotteryID, err)
		return
	}

	if !result.OK() {
		xcontext.Logger(ctx).Errorf("Got status %s when cashback lottery #%d",
			result.Status, lottery.LotteryID)
		return
	}

	err = job.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryClosing, entity.LotteryEmergencyCashback)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot flag lottery #%d for cashback: %v",
			lottery.LotteryID, err)
		return
	}

	reason := "Not enough participants."
	if numParticipants == 0 {
		reason = "No participants."
	}

	job.notify(ctx, fmt.Sprintf("Lottery #%d asset: %s ended with no winners; %s",
		lottery.LotteryID, lottery.AssetType, reason))
}

func (job *LotteryLifecycleCronJob) selectWinners(
	ctx context.Context, lottery *entity.Lottery, participants []entity.Participant,
) {
	err := job.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryClosing, entity.LotteryWinnerSelection)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot start winner selection of lottery #%d: %v",
			lottery.LotteryID, err)
		return
	}
	lottery.State = entity.LotteryWinnerSelection

	wallets := make([]string, 0, len(participants))
	for _, p := range participants {
		wallets = append(wallets, p.Wallet)
	}

	cfg := xcontext.Configs(ctx).Lottery
	group := lottery.AssetGroup()

	result, err := job.payoutCaller.AddParticipants(ctx, group, lottery.LotteryID, wallets)
	if !job.stepOK(ctx, lottery, "add participants", result, err) {
		return
	}
	if !sleep(ctx, cfg.AddParticipantsDelay) {
		return
	}

	result, err = job.payoutCaller.DrawNumber(ctx, group, lottery.LotteryID)
	if !job.stepOK(ctx, lottery, "draw number", result, err) {
		return
	}
	if !sleep(ctx, cfg.DrawNumberDelay) {
		return
	}

	result, err = job.payoutCaller.Payout(ctx, group, lottery.LotteryID)
	if !job.stepOK(ctx, lottery, "payout", result, err) {
		return
	}
	if !sleep(ctx, cfg.PayoutDelay) {
		return
	}

	winners, err := job.payoutCaller.Winners(ctx, group, lottery.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winners of lottery #%d: %v", lottery.LotteryID, err)
		job.cancel(ctx, lottery)
		return
	}

	job.settleWithWinners(ctx, lottery, winners)
}

// recoverWinnerSelection finishes a lottery an earlier run left in winner
// selection. The payout service knows the winners once its sequence went
// through; anything else means the sequence broke and the lottery is
// cancelled.
func (job *LotteryLifecycleCronJob) recoverWinnerSelection(
	ctx context.Context, lottery *entity.Lottery,
) {
	winners, err := job.payoutCaller.Winners(ctx, lottery.AssetGroup(), lottery.LotteryID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winners of interrupted lottery #%d: %v",
			lottery.LotteryID, err)
		job.cancel(ctx, lottery)
		return
	}

	if len(winners) == 0 {
		job.cancel(ctx, lottery)
		return
	}

	job.settleWithWinners(ctx, lottery, winners)
}

func (job *LotteryLifecycleCronJob) settleWithWinners(
	ctx context.Context, lottery *entity.Lottery, winners []string,
) {
	if err := job.lotteryRepo.UpdateWinners(ctx, lottery.ID, winners); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot save winners of lottery #%d: %v", lottery.LotteryID, err)
		return
	}

	err := job.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryWinnerSelection, entity.LotterySettled)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot settle lottery #%d: %v", lottery.LotteryID, err)
		return
	}

	job.notify(ctx, fmt.Sprintf("Winning wallets in lottery #%d asset: %s are: %s",
		lottery.LotteryID, lottery.AssetType, strings.Join(winners, ", ")))
}

// stepOK checks one winner-selection step. A failed step cancels the lottery
// and no later step runs.
func (job *LotteryLifecycleCronJob) stepOK(
	ctx context.Context, lottery *entity.Lottery, step string, result client.CallResult, err error,
) bool {
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot %s of lottery #%d: %v", step, lottery.LotteryID, err)
	} else if !result.OK() {
		xcontext.Logger(ctx).Errorf("Got status %s when %s of lottery #%d",
			result.Status, step, lottery.LotteryID)
	} else {
		return true
	}

	job.cancel(ctx, lottery)
	return false
}

func (job *LotteryLifecycleCronJob) cancel(ctx context.Context, lottery *entity.Lottery) {
	err := job.lotteryRepo.UpdateState(ctx, lottery.ID, lottery.State, entity.LotteryCancelled)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cancel lottery #%d: %v", lottery.LotteryID, err)
		return
	}

	job.notify(ctx, fmt.Sprintf("Lottery #%d asset: %s was cancelled during winner selection",
		lottery.LotteryID, lottery.AssetType))
}

func (job *LotteryLifecycleCronJob) notify(ctx context.Context, text string) {
	if err := job.telegramEndpoint.SendMessage(ctx, text); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot send telegram notification: %v", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (job *LotteryLifecycleCronJob) RunNow() bool {
	return true
}

func (job *LotteryLifecycleCronJob) Next() time.Time {
	return time.Now().Add(job.tickInterval)
}
