package domain

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/VAIOT/lottery-backend/config"
	"github.com/VAIOT/lottery-backend/internal/client"
	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/internal/model"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/pkg/api/telegram"
	"github.com/VAIOT/lottery-backend/pkg/api/twitter"
	"github.com/VAIOT/lottery-backend/pkg/enum"
	"github.com/VAIOT/lottery-backend/pkg/errorx"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ownerWalletRegexp = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

type LotteryDomain interface {
	CreateLottery(ctx context.Context, req *model.CreateLotteryRequest) (*model.CreateLotteryResponse, error)
	GetLottery(ctx context.Context, req *model.GetLotteryRequest) (*model.GetLotteryResponse, error)
}

type lotteryDomain struct {
	lotteryRepo      repository.LotteryRepository
	twitterEndpoint  twitter.IEndpoint
	telegramEndpoint telegram.IEndpoint
	payoutCaller     client.PayoutCaller
	fundingWaiter    FundingWaiter
}

func NewLotteryDomain(
	lotteryRepo repository.LotteryRepository,
	twitterEndpoint twitter.IEndpoint,
	telegramEndpoint telegram.IEndpoint,
	payoutCaller client.PayoutCaller,
	fundingWaiter FundingWaiter,
) *lotteryDomain {
	return &lotteryDomain{
		lotteryRepo:      lotteryRepo,
		twitterEndpoint:  twitterEndpoint,
		telegramEndpoint: telegramEndpoint,
		payoutCaller:     payoutCaller,
		fundingWaiter:    fundingWaiter,
	}
}

func (d *lotteryDomain) CreateLottery(
	ctx context.Context, req *model.CreateLotteryRequest,
) (*model.CreateLotteryResponse, error) {
	assetType, err := enum.ToEnum[entity.AssetType](req.AssetType)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid asset type %s", req.AssetType)
	}

	var erc20Token entity.Erc20Token
	if assetType == entity.AssetErc20 {
		erc20Token, err = enum.ToEnum[entity.Erc20Token](req.Erc20Token)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid erc20 token %s", req.Erc20Token)
		}
	}

	if assetType == entity.AssetErc721 && len(req.Nfts) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not found any nft in a nft lottery")
	}

	if req.DurationHours <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Duration must be positive")
	}

	if req.NumWinners <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Number of winners must be positive")
	}

	distributionMethod, err := enum.ToEnum[entity.DistributionMethod](req.DistributionMethod)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid distribution method %s", req.DistributionMethod)
	}

	fungible := assetType != entity.AssetErc721
	if fungible {
		if req.TotalTokens == "" {
			return nil, errorx.New(errorx.BadRequest, "Not found total tokens")
		}
	} else if req.NumWinners != len(req.Nfts) {
		return nil, errorx.New(errorx.BadRequest,
			"Number of winners must equal number of nfts in a nft lottery")
	}

	if distributionMethod == entity.DistributionPercentage && fungible {
		if len(req.DistributionShares) != req.NumWinners {
			return nil, errorx.New(errorx.BadRequest,
				"Need exactly %d distribution shares", req.NumWinners)
		}

		sum := 0
		for _, share := range req.DistributionShares {
			if share <= 0 {
				return nil, errorx.New(errorx.BadRequest, "Distribution shares must be positive")
			}
			sum += share
		}

		if sum != 100 {
			return nil, errorx.New(errorx.BadRequest,
				"Distribution shares must sum to 100, got %d", sum)
		}
	}

	if !ownerWalletRegexp.MatchString(req.OwnerWallet) {
		return nil, errorx.New(errorx.BadRequest, "Invalid owner wallet %s", req.OwnerWallet)
	}

	if len(req.TransactionHashes) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Not found any funding transaction")
	}

	if len(req.Requirements) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Need at least one requirement")
	}

	requirements := entity.Map{}
	for kind, target := range req.Requirements {
		if _, err := enum.ToEnum[entity.RequirementKind](kind); err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid requirement %s", kind)
		}

		if target == "" {
			return nil, errorx.New(errorx.BadRequest, "Not found target of requirement %s", kind)
		}

		requirements[kind] = target
	}

	cfg := xcontext.Configs(ctx).Lottery
	owner, err := d.twitterEndpoint.GetUser(ctx, req.OwnerTwitterName)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the owner twitter account: %v", err)
		return nil, errorx.New(errorx.Unavailable, "Cannot verify the owner twitter account")
	}

	if err := d.checkPost(ctx, req.WalletPostURL, cfg); err != nil {
		return nil, err
	}

	for kind, target := range req.Requirements {
		switch entity.RequirementKind(kind) {
		case entity.RequirementLike, entity.RequirementRetweet:
			if err := d.checkPost(ctx, target, cfg); err != nil {
				return nil, err
			}

		case entity.RequirementFollow:
			followTarget, err := d.twitterEndpoint.GetUser(ctx, target)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get the follow target account: %v", err)
				return nil, errorx.New(errorx.Unavailable, "Cannot verify the follow target %s", target)
			}

			if followTarget.FollowersCount >= cfg.MaxFollowTargetFollowers {
				return nil, errorx.New(errorx.BadRequest,
					"Follow target %s has too many followers", target)
			}
		}
	}

	txs := entity.Array[entity.FundingTx]{}
	for _, hash := range req.TransactionHashes {
		txs = append(txs, entity.FundingTx{Hash: hash, Status: entity.TxPending})
	}

	nfts := entity.Array[entity.Nft]{}
	for _, nft := range req.Nfts {
		nfts = append(nfts, entity.Nft{
			Name:            nft.Name,
			TokenID:         nft.TokenID,
			ContractAddress: nft.ContractAddress,
		})
	}

	lottery := &entity.Lottery{
		Base:               entity.Base{ID: uuid.NewString()},
		AssetType:          assetType,
		Erc20Token:         erc20Token,
		Nfts:               nfts,
		DurationHours:      req.DurationHours,
		EndTime:            time.Now().Add(time.Duration(req.DurationHours) * time.Hour),
		DistributionMethod: distributionMethod,
		DistributionShares: req.DistributionShares,
		TotalTokens:        req.TotalTokens,
		NumWinners:         req.NumWinners,
		OwnerWallet:        req.OwnerWallet,
		OwnerActorID:       owner.ID,
		WalletPostURL:      req.WalletPostURL,
		Requirements:       requirements,
		Transactions:       txs,
		State:              entity.LotteryPending,
	}

	if err := d.lotteryRepo.Create(ctx, lottery); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create lottery: %v", err)
		return nil, errorx.Unknown
	}

	// Funding confirmation outlives this request.
	go d.settleFunding(xcontext.Detach(ctx), lottery.ID)

	return &model.CreateLotteryResponse{ID: lottery.ID}, nil
}

func (d *lotteryDomain) GetLottery(
	ctx context.Context, req *model.GetLotteryRequest,
) (*model.GetLotteryResponse, error) {
	lottery, err := d.lotteryRepo.GetByID(ctx, req.ID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errorx.New(errorx.NotFound, "Not found lottery")
		}

		xcontext.Logger(ctx).Errorf("Cannot get lottery: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetLotteryResponse{Lottery: model.ConvertLottery(lottery)}, nil
}

func (d *lotteryDomain) checkPost(ctx context.Context, postURL string, cfg config.LotteryConfigs) error {
	if _, err := twitter.ParsePostID(postURL); err != nil {
		return errorx.New(errorx.BadRequest, "Invalid post url %s", postURL)
	}

	tweet, err := d.twitterEndpoint.GetTweet(ctx, postURL)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the post %s: %v", postURL, err)
		return errorx.New(errorx.Unavailable, "Cannot verify the post %s", postURL)
	}

	if time.Since(tweet.CreatedAt) > cfg.MaxPostAge {
		return errorx.New(errorx.BadRequest, "The post %s is too old", postURL)
	}

	return nil
}

// settleFunding waits out the funding transactions of a fresh lottery, then
// either opens it on the payout service or cancels it.
func (d *lotteryDomain) settleFunding(ctx context.Context, id string) {
	lottery, err := d.lotteryRepo.GetByID(ctx, id)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot reload lottery %s: %v", id, err)
		return
	}

	funded, err := d.fundingWaiter.Await(ctx, lottery)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot wait for funding of lottery %s: %v", id, err)
		return
	}

	if !funded {
		d.cancelPending(ctx, lottery, "funding did not confirm")
		return
	}

	if err := d.openLottery(ctx, lottery); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot open lottery %s: %v", id, err)
		d.cancelPending(ctx, lottery, "could not be opened")
	}
}

// openLottery assigns the next sequence number of the asset family and
// registers the lottery on the payout service. The number assignment and the
// state transition commit together, so a failed registration never burns a
// sequence number.
func (d *lotteryDomain) openLottery(ctx context.Context, lottery *entity.Lottery) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	lotteryID, err := d.lotteryRepo.NextLotteryID(ctx, lottery.AssetGroup())
	if err != nil {
		return err
	}

	if err := d.lotteryRepo.AssignLotteryID(ctx, lottery.ID, lotteryID); err != nil {
		return err
	}

	params := client.OpenLotteryParams{
		LotteryID:           lotteryID,
		Duration:            lottery.DurationHours,
		DistributionMethod:  string(lottery.DistributionMethod),
		DistributionOptions: lottery.DistributionShares,
		NumberOfTokens:      lottery.TotalTokens,
		NumberOfWinners:     lottery.NumWinners,
		Nfts:                lottery.Nfts,
	}
	if lottery.AssetType == entity.AssetErc20 {
		params.Erc20Token = string(lottery.Erc20Token)
	}

	result, err := d.payoutCaller.Open(ctx, lottery.AssetGroup(), params)
	if err != nil {
		return err
	}

	if !result.OK() {
		return fmt.Errorf("got status %s when opening", result.Status)
	}

	err = d.lotteryRepo.UpdateState(ctx, lottery.ID, entity.LotteryPending, entity.LotteryOpen)
	if err != nil {
		return err
	}

	xcontext.WithCommitDBTransaction(ctx)
	lottery.LotteryID = lotteryID
	lottery.State = entity.LotteryOpen
	return nil
}

func (d *lotteryDomain) cancelPending(ctx context.Context, lottery *entity.Lottery, reason string) {
	err := d.lotteryRepo.UpdateState(ctx, lottery.ID, entity.LotteryPending, entity.LotteryCancelled)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot cancel lottery %s: %v", lottery.ID, err)
		return
	}

	msg := fmt.Sprintf("Lottery %s asset: %s was cancelled: %s",
		lottery.ID, lottery.AssetType, reason)
	if err := d.telegramEndpoint.SendMessage(ctx, msg); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot send telegram notification: %v", err)
	}
}
