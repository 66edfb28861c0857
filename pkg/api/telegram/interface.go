package telegram

import "context"

type IEndpoint interface {
	SendMessage(ctx context.Context, text string) error
}
