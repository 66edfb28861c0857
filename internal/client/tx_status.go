package client

import (
	"context"
	"fmt"

	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/ethereum/go-ethereum/rpc"
)

type TxStatusCaller interface {
	GetTxStatus(ctx context.Context, tokenType, txHash string) (string, error)
	Close()
}

type txStatusCaller struct {
	client *rpc.Client
}

func NewTxStatusCaller(client *rpc.Client) *txStatusCaller {
	return &txStatusCaller{client: client}
}

// GetTxStatus reports the confirmation status of a funding transaction as the
// transaction service knows it ("pending", "success" or "failed").
func (c *txStatusCaller) GetTxStatus(ctx context.Context, tokenType, txHash string) (string, error) {
	var result string
	err := c.client.CallContext(ctx, &result, c.fname(ctx, "getTransactionStatus"), tokenType, txHash)
	if err != nil {
		return "", err
	}

	return result, nil
}

func (c *txStatusCaller) Close() {
	c.client.Close()
}

func (c *txStatusCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).TxStatus.RPCName, funcName)
}
