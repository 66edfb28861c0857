package cron

import (
	"context"
	"testing"
	"time"

	"github.com/VAIOT/lottery-backend/internal/client"
	"github.com/VAIOT/lottery-backend/internal/domain"
	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/api/twitter"
	"github.com/VAIOT/lottery-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

const (
	walletA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

type lifecycleFixture struct {
	lotteryRepo      repository.LotteryRepository
	twitterEndpoint  *testutil.MockTwitterEndpoint
	payoutCaller     *testutil.MockPayoutCaller
	telegramEndpoint *testutil.MockTelegramEndpoint
	job              *LotteryLifecycleCronJob
}

func newLifecycleFixture() *lifecycleFixture {
	lotteryRepo := repository.NewLotteryRepository()
	twitterEndpoint := &testutil.MockTwitterEndpoint{}
	payoutCaller := &testutil.MockPayoutCaller{}
	telegramEndpoint := &testutil.MockTelegramEndpoint{}

	eligibilityDomain := domain.NewEligibilityDomain(
		twitterEndpoint,
		repository.NewFetchCursorRepository(testutil.NewInMemoryRedisClient()),
	)

	return &lifecycleFixture{
		lotteryRepo:      lotteryRepo,
		twitterEndpoint:  twitterEndpoint,
		payoutCaller:     payoutCaller,
		telegramEndpoint: telegramEndpoint,
		job: NewLotteryLifecycleCronJob(
			lotteryRepo, eligibilityDomain, payoutCaller, telegramEndpoint, 15*time.Minute),
	}
}

func createDueLottery(
	ctx context.Context, t *testing.T, repo repository.LotteryRepository,
	id string, lotteryID int64, numWinners int, participants []entity.Participant,
) *entity.Lottery {
	t.Helper()

	lottery := &entity.Lottery{
		Base:          entity.Base{ID: id},
		LotteryID:     lotteryID,
		AssetType:     entity.AssetMatic,
		EndTime:       time.Now().Add(-time.Minute),
		NumWinners:    numWinners,
		WalletPostURL: "https://twitter.com/owner/status/" + id,
		Requirements:  entity.Map{},
		Participants:  participants,
		State:         entity.LotteryOpen,
	}
	require.NoError(t, repo.Create(ctx, lottery))
	return lottery
}

func (f *lifecycleFixture) state(ctx context.Context, t *testing.T, id string) entity.LotteryState {
	t.Helper()

	lottery, err := f.lotteryRepo.GetByID(ctx, id)
	require.NoError(t, err)
	return lottery.State
}

func TestLotteryLifecycle_SettleHappyPath(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	participants := []entity.Participant{
		{ActorID: "actorA", Wallet: walletA},
		{ActorID: "actorB", Wallet: walletB},
	}
	createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 2, participants)

	var addedWallets []string
	f.payoutCaller.AddParticipantsFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
	) (client.CallResult, error) {
		addedWallets = wallets
		return client.CallResult{Status: "OK"}, nil
	}
	f.payoutCaller.WinnersFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) ([]string, error) {
		return []string{walletB}, nil
	}

	f.job.Do(ctx)

	require.Equal(t, entity.LotterySettled, f.state(ctx, t, "101"))
	require.Equal(t, []string{walletA, walletB}, addedWallets)

	settled, err := f.lotteryRepo.GetByID(ctx, "101")
	require.NoError(t, err)
	require.Equal(t, entity.Array[string]{walletB}, settled.Winners)

	sent := f.telegramEndpoint.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "Winning wallets in lottery #1 asset: matic are: "+walletB, sent[0])
}

func TestLotteryLifecycle_FailedStepCancelsOnlyThatLottery(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	participants := []entity.Participant{
		{ActorID: "actorA", Wallet: walletA},
		{ActorID: "actorB", Wallet: walletB},
	}
	createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 2, participants)
	createDueLottery(ctx, t, f.lotteryRepo, "102", 2, 2, participants)

	drawCalls := map[int64]int{}
	f.payoutCaller.AddParticipantsFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
	) (client.CallResult, error) {
		if lotteryID == 1 {
			return client.CallResult{Status: "INSUFFICIENT_FUNDS"}, nil
		}
		return client.CallResult{Status: "OK"}, nil
	}
	f.payoutCaller.DrawNumberFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) (client.CallResult, error) {
		drawCalls[lotteryID]++
		return client.CallResult{Status: "OK"}, nil
	}
	f.payoutCaller.WinnersFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) ([]string, error) {
		return []string{walletA}, nil
	}

	f.job.Do(ctx)

	// The failed lottery is cancelled without running later steps, and the
	// next lottery of the batch still settles.
	require.Equal(t, entity.LotteryCancelled, f.state(ctx, t, "101"))
	require.Equal(t, entity.LotterySettled, f.state(ctx, t, "102"))
	require.Equal(t, 0, drawCalls[1])
	require.Equal(t, 1, drawCalls[2])
}

func TestLotteryLifecycle_CashbackWhenTooFewParticipants(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	participants := []entity.Participant{
		{ActorID: "actorA", Wallet: walletA},
		{ActorID: "actorB", Wallet: walletB},
	}
	createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 3, participants)

	cashbackCalls := 0
	addCalls := 0
	f.payoutCaller.EmergencyCashbackFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) (client.CallResult, error) {
		cashbackCalls++
		return client.CallResult{Status: "OK"}, nil
	}
	f.payoutCaller.AddParticipantsFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
	) (client.CallResult, error) {
		addCalls++
		return client.CallResult{Status: "OK"}, nil
	}

	f.job.Do(ctx)
	// A later tick must not refund again.
	f.job.Do(ctx)

	require.Equal(t, entity.LotteryEmergencyCashback, f.state(ctx, t, "101"))
	require.Equal(t, 1, cashbackCalls)
	require.Equal(t, 0, addCalls)

	sent := f.telegramEndpoint.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "Lottery #1 asset: matic ended with no winners; Not enough participants.", sent[0])
}

func TestLotteryLifecycle_NoParticipants(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 1, nil)

	f.twitterEndpoint.CommentsFunc = func(
		ctx context.Context, postURL, cursor string,
	) (twitter.CommentPage, error) {
		return twitter.CommentPage{}, nil
	}

	f.job.Do(ctx)

	require.Equal(t, entity.LotteryEmergencyCashback, f.state(ctx, t, "101"))

	sent := f.telegramEndpoint.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "Lottery #1 asset: matic ended with no winners; No participants.", sent[0])
}

func TestLotteryLifecycle_WaitForCompleteEligibility(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 1, nil)

	rateLimited := true
	f.twitterEndpoint.CommentsFunc = func(
		ctx context.Context, postURL, cursor string,
	) (twitter.CommentPage, error) {
		if rateLimited {
			return twitter.CommentPage{RateLimited: true}, nil
		}
		return twitter.CommentPage{
			Comments: []twitter.Comment{{AuthorID: "actorA", Text: walletA}},
		}, nil
	}

	addCalls := 0
	f.payoutCaller.AddParticipantsFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
	) (client.CallResult, error) {
		addCalls++
		return client.CallResult{Status: "OK"}, nil
	}
	f.payoutCaller.WinnersFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) ([]string, error) {
		return []string{walletA}, nil
	}

	// The first tick cannot finish fetching, so the lottery stays in closing
	// and nothing is paid out.
	f.job.Do(ctx)
	require.Equal(t, entity.LotteryClosing, f.state(ctx, t, "101"))
	require.Equal(t, 0, addCalls)

	rateLimited = false
	f.job.Do(ctx)
	require.Equal(t, entity.LotterySettled, f.state(ctx, t, "101"))
	require.Equal(t, 1, addCalls)
}

func TestLotteryLifecycle_RecoverInterruptedWinnerSelection(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	lottery := createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 1, []entity.Participant{
		{ActorID: "actorA", Wallet: walletA},
	})
	require.NoError(t, f.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryOpen, entity.LotteryClosing))
	require.NoError(t, f.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryClosing, entity.LotteryWinnerSelection))

	addCalls := 0
	f.payoutCaller.AddParticipantsFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
	) (client.CallResult, error) {
		addCalls++
		return client.CallResult{Status: "OK"}, nil
	}
	f.payoutCaller.WinnersFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) ([]string, error) {
		return []string{walletA}, nil
	}

	f.job.Do(ctx)

	// The payout already went through before the interruption, so the lottery
	// settles from the reported winners without rerunning any step.
	require.Equal(t, entity.LotterySettled, f.state(ctx, t, "101"))
	require.Equal(t, 0, addCalls)

	settled, err := f.lotteryRepo.GetByID(ctx, "101")
	require.NoError(t, err)
	require.Equal(t, entity.Array[string]{walletA}, settled.Winners)

	sent := f.telegramEndpoint.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, "Winning wallets in lottery #1 asset: matic are: "+walletA, sent[0])
}

func TestLotteryLifecycle_CancelInterruptedWinnerSelectionWithoutPayout(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	lottery := createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 1, []entity.Participant{
		{ActorID: "actorA", Wallet: walletA},
	})
	require.NoError(t, f.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryOpen, entity.LotteryClosing))
	require.NoError(t, f.lotteryRepo.UpdateState(ctx,
		lottery.ID, entity.LotteryClosing, entity.LotteryWinnerSelection))

	f.payoutCaller.WinnersFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) ([]string, error) {
		return nil, nil
	}

	f.job.Do(ctx)

	require.Equal(t, entity.LotteryCancelled, f.state(ctx, t, "101"))
}

func TestLotteryLifecycle_UnknownOnPayoutService(t *testing.T) {
	ctx := testutil.MockContext()
	f := newLifecycleFixture()

	createDueLottery(ctx, t, f.lotteryRepo, "101", 1, 1, []entity.Participant{
		{ActorID: "actorA", Wallet: walletA},
	})

	f.payoutCaller.ExistsFunc = func(
		ctx context.Context, assetGroup string, lotteryID int64,
	) (bool, error) {
		return false, nil
	}

	f.job.Do(ctx)

	require.Equal(t, entity.LotteryEmergencyCashback, f.state(ctx, t, "101"))
	require.Len(t, f.telegramEndpoint.Sent(), 1)
}
