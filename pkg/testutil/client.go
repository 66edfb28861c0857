package testutil

import (
	"context"
	"errors"

	"github.com/VAIOT/lottery-backend/internal/client"
)

type MockPayoutCaller struct {
	ExistsFunc            func(context.Context, string, int64) (bool, error)
	OpenFunc              func(context.Context, string, client.OpenLotteryParams) (client.CallResult, error)
	AddParticipantsFunc   func(context.Context, string, int64, []string) (client.CallResult, error)
	DrawNumberFunc        func(context.Context, string, int64) (client.CallResult, error)
	PayoutFunc            func(context.Context, string, int64) (client.CallResult, error)
	WinnersFunc           func(context.Context, string, int64) ([]string, error)
	EmergencyCashbackFunc func(context.Context, string, int64) (client.CallResult, error)
}

func (m *MockPayoutCaller) Exists(
	ctx context.Context, assetGroup string, lotteryID int64,
) (bool, error) {
	if m.ExistsFunc != nil {
		return m.ExistsFunc(ctx, assetGroup, lotteryID)
	}

	return true, nil
}

func (m *MockPayoutCaller) Open(
	ctx context.Context, assetGroup string, params client.OpenLotteryParams,
) (client.CallResult, error) {
	if m.OpenFunc != nil {
		return m.OpenFunc(ctx, assetGroup, params)
	}

	return client.CallResult{Status: "OK"}, nil
}

func (m *MockPayoutCaller) AddParticipants(
	ctx context.Context, assetGroup string, lotteryID int64, wallets []string,
) (client.CallResult, error) {
	if m.AddParticipantsFunc != nil {
		return m.AddParticipantsFunc(ctx, assetGroup, lotteryID, wallets)
	}

	return client.CallResult{Status: "OK"}, nil
}

func (m *MockPayoutCaller) DrawNumber(
	ctx context.Context, assetGroup string, lotteryID int64,
) (client.CallResult, error) {
	if m.DrawNumberFunc != nil {
		return m.DrawNumberFunc(ctx, assetGroup, lotteryID)
	}

	return client.CallResult{Status: "OK"}, nil
}

func (m *MockPayoutCaller) Payout(
	ctx context.Context, assetGroup string, lotteryID int64,
) (client.CallResult, error) {
	if m.PayoutFunc != nil {
		return m.PayoutFunc(ctx, assetGroup, lotteryID)
	}

	return client.CallResult{Status: "OK"}, nil
}

func (m *MockPayoutCaller) Winners(
	ctx context.Context, assetGroup string, lotteryID int64,
) ([]string, error) {
	if m.WinnersFunc != nil {
		return m.WinnersFunc(ctx, assetGroup, lotteryID)
	}

	return nil, errors.New("not implemented")
}

func (m *MockPayoutCaller) EmergencyCashback(
	ctx context.Context, assetGroup string, lotteryID int64,
) (client.CallResult, error) {
	if m.EmergencyCashbackFunc != nil {
		return m.EmergencyCashbackFunc(ctx, assetGroup, lotteryID)
	}

	return client.CallResult{Status: "OK"}, nil
}

func (m *MockPayoutCaller) Close() {}

type MockTxStatusCaller struct {
	GetTxStatusFunc func(context.Context, string, string) (string, error)
}

func (m *MockTxStatusCaller) GetTxStatus(
	ctx context.Context, tokenType, txHash string,
) (string, error) {
	if m.GetTxStatusFunc != nil {
		return m.GetTxStatusFunc(ctx, tokenType, txHash)
	}

	return "success", nil
}

func (m *MockTxStatusCaller) Close() {}
