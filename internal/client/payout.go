package client

import (
	"context"
	"fmt"

	"github.com/VAIOT/lottery-backend/internal/entity"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/fatih/structs"
)

// CallResult is the envelope every payout method answers with. Any status
// other than OK means the on-chain step did not happen.
type CallResult struct {
	Status string `json:"status"`
}

func (r CallResult) OK() bool {
	return r.Status == "OK"
}

// OpenLotteryParams mirrors the argument object of the payout openLottery
// method. Field names follow the wire format of that service.
type OpenLotteryParams struct {
	LotteryID           int64        `structs:"lotteryId"`
	Duration            int          `structs:"duration"`
	DistributionMethod  string       `structs:"distributionMethod"`
	DistributionOptions []int        `structs:"distributionOptions"`
	NumberOfTokens      string       `structs:"numberOfTokens"`
	NumberOfWinners     int          `structs:"numberOfWinners"`
	Erc20Token          string       `structs:"token,omitempty"`
	Nfts                []entity.Nft `structs:"nfts,omitempty"`
}

type PayoutCaller interface {
	Exists(ctx context.Context, assetGroup string, lotteryID int64) (bool, error)
	Open(ctx context.Context, assetGroup string, params OpenLotteryParams) (CallResult, error)
	AddParticipants(ctx context.Context, assetGroup string, lotteryID int64, wallets []string) (CallResult, error)
	DrawNumber(ctx context.Context, assetGroup string, lotteryID int64) (CallResult, error)
	Payout(ctx context.Context, assetGroup string, lotteryID int64) (CallResult, error)
	Winners(ctx context.Context, assetGroup string, lotteryID int64) ([]string, error)
	EmergencyCashback(ctx context.Context, assetGroup string, lotteryID int64) (CallResult, error)
	Close()
}

type payoutCaller struct {
	client *rpc.Client
}

func NewPayoutCaller(client *rpc.Client) *payoutCaller {
	return &payoutCaller{client: client}
}

func (c *payoutCaller) Exists(
	ctx context.Context, assetGroup string, lotteryID int64,
) (bool, error) {
	var result bool
	err := c.client.CallContext(ctx, &result, c.fname(ctx, assetGroup, "checkIfLotteryExists"), lotteryID)
	if err != nil {
		return false, err
	}

	return result, nil
}

func (c *payoutCaller) Open(
	ctx context.Context, assetGroup string, params OpenLotteryParams,
) (CallResult, error) {
	var result CallResult
	err := c.client.CallContext(ctx, &result, c.fname(ctx, assetGroup, "openLottery"), structs.Map(params))
	if err != nil {
		return CallResult{}, err
	}

	return result, nil
}

func (c *payoutCaller) AddParticipants(
	ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
) (CallResult, error) {
	var result CallResult
	err := c.client.CallContext(ctx, &result,
		c.fname(ctx, assetGroup, "addParticipants"), lotteryID, wallets)
	if err != nil {
		return CallResult{}, err
	}

	return result, nil
}

func (c *payoutCaller) DrawNumber(
	ctx context.Context, assetGroup string, lotteryID int64,
) (CallResult, error) {
	var result CallResult
	err := c.client.CallContext(ctx, &result, c.fname(ctx, assetGroup, "pickRandomNumber"), lotteryID)
	if err != nil {
		return CallResult{}, err
	}

	return result, nil
}

func (c *payoutCaller) Payout(
	ctx context.Context, assetGroup string, lotteryID int64,
) (CallResult, error) {
	var result CallResult
	err := c.client.CallContext(ctx, &result, c.fname(ctx, assetGroup, "payoutWinners"), lotteryID)
	if err != nil {
		return CallResult{}, err
	}

	return result, nil
}

func (c *payoutCaller) Winners(
	ctx context.Context, assetGroup string, lotteryID int64,
) ([]string, error) {
	var result []string
	err := c.client.CallContext(ctx, &result, c.fname(ctx, assetGroup, "getWinnersOfLottery"), lotteryID)
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *payoutCaller) EmergencyCashback(
	ctx context.Context, assetGroup string, lotteryID int64,
) (CallResult, error) {
	var result CallResult
	err := c.client.CallContext(ctx, &result, c.fname(ctx, assetGroup, "emergencyCashback"), lotteryID)
	if err != nil {
		return CallResult{}, err
	}

	return result, nil
}

func (c *payoutCaller) Close() {
	c.client.Close()
}

func (c *payoutCaller) fname(ctx context.Context, assetGroup, funcName string) string {
	cfg := xcontext.Configs(ctx).Payout
	rpcName := cfg.ErcRPCName
	if assetGroup == "matic" {
		rpcName = cfg.MaticRPCName
	}

	return fmt.Sprintf("%s_%s", rpcName, funcName)
}
