package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/model"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/api/twitter"
	"github.com/VAIOT/lottery-backend/pkg/errorx"
	"github.com/VAIOT/lottery-backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func validCreateRequest() *model.CreateLotteryRequest {
	return &model.CreateLotteryRequest{
		AssetType:          "matic",
		DurationHours:      24,
		DistributionMethod: "split",
		TotalTokens:        "500",
		NumWinners:         2,
		OwnerWallet:        walletA,
		OwnerTwitterName:   "owner",
		WalletPostURL:      "https://twitter.com/owner/status/100",
		Requirements:       map[string]string{"like": "https://twitter.com/owner/status/200"},
		TransactionHashes:  []string{"0x01"},
	}
}

func newCreationTwitterEndpoint() *testutil.MockTwitterEndpoint {
	return &testutil.MockTwitterEndpoint{
		GetUserFunc: func(ctx context.Context, screenName string) (twitter.User, error) {
			return twitter.User{ID: "owner-id", ScreenName: screenName, FollowersCount: 100}, nil
		},
		GetTweetFunc: func(ctx context.Context, postURL string) (twitter.Tweet, error) {
			return twitter.Tweet{ID: "100", AuthorID: "owner-id", CreatedAt: time.Now()}, nil
		},
	}
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()

	errx := errorx.Error{}
	require.True(t, errors.As(err, &errx))
	require.Equal(t, code, errx.Code)
}

func TestLotteryDomain_CreateLottery(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()
	telegramEndpoint := &testutil.MockTelegramEndpoint{}
	txStatusCaller := &testutil.MockTxStatusCaller{}

	lotteryDomain := NewLotteryDomain(
		lotteryRepo,
		newCreationTwitterEndpoint(),
		telegramEndpoint,
		&testutil.MockPayoutCaller{},
		NewFundingWaiter(lotteryRepo, txStatusCaller),
	)

	resp, err := lotteryDomain.CreateLottery(ctx, validCreateRequest())
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)

	// Funding confirms in the background, then the lottery gets the first
	// sequence number of its asset family and opens.
	require.Eventually(t, func() bool {
		lottery, err := lotteryRepo.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		return lottery.State == entity.LotteryOpen
	}, time.Second, 5*time.Millisecond)

	lottery, err := lotteryRepo.GetByID(ctx, resp.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, lottery.LotteryID)
	require.Equal(t, "owner-id", lottery.OwnerActorID)

	got, err := lotteryDomain.GetLottery(ctx, &model.GetLotteryRequest{ID: resp.ID})
	require.NoError(t, err)
	require.Equal(t, "open", got.Lottery.State)
	require.EqualValues(t, 1, got.Lottery.LotteryID)
}

func TestLotteryDomain_CancelWhenFundingFails(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()
	telegramEndpoint := &testutil.MockTelegramEndpoint{}
	txStatusCaller := &testutil.MockTxStatusCaller{
		GetTxStatusFunc: func(ctx context.Context, tokenType, txHash string) (string, error) {
			return "failed", nil
		},
	}

	lotteryDomain := NewLotteryDomain(
		lotteryRepo,
		newCreationTwitterEndpoint(),
		telegramEndpoint,
		&testutil.MockPayoutCaller{},
		NewFundingWaiter(lotteryRepo, txStatusCaller),
	)

	resp, err := lotteryDomain.CreateLottery(ctx, validCreateRequest())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		lottery, err := lotteryRepo.GetByID(ctx, resp.ID)
		require.NoError(t, err)
		return lottery.State == entity.LotteryCancelled
	}, time.Second, 5*time.Millisecond)

	require.Len(t, telegramEndpoint.Sent(), 1)
}

func TestLotteryDomain_CreateLotteryValidation(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()

	lotteryDomain := NewLotteryDomain(
		lotteryRepo,
		newCreationTwitterEndpoint(),
		&testutil.MockTelegramEndpoint{},
		&testutil.MockPayoutCaller{},
		NewFundingWaiter(lotteryRepo, &testutil.MockTxStatusCaller{}),
	)

	testcases := []struct {
		name   string
		modify func(req *model.CreateLotteryRequest)
	}{
		{
			name:   "invalid asset type",
			modify: func(req *model.CreateLotteryRequest) { req.AssetType = "doge" },
		},
		{
			name:   "no duration",
			modify: func(req *model.CreateLotteryRequest) { req.DurationHours = 0 },
		},
		{
			name: "percentage shares not summing to 100",
			modify: func(req *model.CreateLotteryRequest) {
				req.DistributionMethod = "percentage"
				req.DistributionShares = []int{60, 50}
			},
		},
		{
			name: "wrong number of percentage shares",
			modify: func(req *model.CreateLotteryRequest) {
				req.DistributionMethod = "percentage"
				req.DistributionShares = []int{100}
			},
		},
		{
			name:   "invalid owner wallet",
			modify: func(req *model.CreateLotteryRequest) { req.OwnerWallet = "0x1234" },
		},
		{
			name:   "no requirements",
			modify: func(req *model.CreateLotteryRequest) { req.Requirements = nil },
		},
		{
			name: "unknown requirement",
			modify: func(req *model.CreateLotteryRequest) {
				req.Requirements = map[string]string{"superlike": "x"}
			},
		},
		{
			name:   "no funding transactions",
			modify: func(req *model.CreateLotteryRequest) { req.TransactionHashes = nil },
		},
		{
			name: "nft lottery without nfts",
			modify: func(req *model.CreateLotteryRequest) {
				req.AssetType = "erc721"
			},
		},
		{
			name: "invalid erc20 token",
			modify: func(req *model.CreateLotteryRequest) {
				req.AssetType = "erc20"
				req.Erc20Token = "doge"
			},
		},
		{
			name:   "invalid wallet post url",
			modify: func(req *model.CreateLotteryRequest) { req.WalletPostURL = "https://twitter.com/owner" },
		},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			req := validCreateRequest()
			tc.modify(req)

			_, err := lotteryDomain.CreateLottery(ctx, req)
			requireErrorCode(t, err, errorx.BadRequest)
		})
	}
}

func TestLotteryDomain_RejectTooPopularFollowTarget(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()

	twitterEndpoint := newCreationTwitterEndpoint()
	twitterEndpoint.GetUserFunc = func(ctx context.Context, screenName string) (twitter.User, error) {
		if screenName == "celebrity" {
			return twitter.User{ID: "celebrity-id", FollowersCount: 2000000}, nil
		}
		return twitter.User{ID: "owner-id", FollowersCount: 100}, nil
	}

	lotteryDomain := NewLotteryDomain(
		lotteryRepo,
		twitterEndpoint,
		&testutil.MockTelegramEndpoint{},
		&testutil.MockPayoutCaller{},
		NewFundingWaiter(lotteryRepo, &testutil.MockTxStatusCaller{}),
	)

	req := validCreateRequest()
	req.Requirements = map[string]string{"follow": "celebrity"}

	_, err := lotteryDomain.CreateLottery(ctx, req)
	requireErrorCode(t, err, errorx.BadRequest)
}

func TestLotteryDomain_GetLotteryNotFound(t *testing.T) {
	ctx := testutil.MockContext()
	lotteryRepo := repository.NewLotteryRepository()

	lotteryDomain := NewLotteryDomain(
		lotteryRepo,
		newCreationTwitterEndpoint(),
		&testutil.MockTelegramEndpoint{},
		&testutil.MockPayoutCaller{},
		NewFundingWaiter(lotteryRepo, &testutil.MockTxStatusCaller{}),
	)

	_, err := lotteryDomain.GetLottery(ctx, &model.GetLotteryRequest{ID: "missing"})
	requireErrorCode(t, err, errorx.NotFound)
}
