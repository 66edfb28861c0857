package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/VAIOT/lottery-backend/config"
	"github.com/VAIOT/lottery-backend/pkg/api"
)

const apiURL = "https://api.telegram.org"

type Endpoint struct {
	BotToken string
	ChatID   string

	apiGenerator api.Generator
}

func New(cfg config.TelegramConfigs) *Endpoint {
	return &Endpoint{
		BotToken:     cfg.BotToken,
		ChatID:       cfg.ChatID,
		apiGenerator: api.NewGenerator(apiURL),
	}
}

func (e *Endpoint) SendMessage(ctx context.Context, text string) error {
	resp, err := e.apiGenerator.New("/bot%s/sendMessage", e.BotToken).
		Query(api.Parameter{
			"chat_id": e.ChatID,
			"text":    text,
		}).
		GET(ctx)
	if err != nil {
		return err
	}

	body, ok := resp.Body.(api.JSON)
	if !ok {
		return errors.New("invalid body type")
	}

	if ok, err := body.GetBool("ok"); err != nil || !ok {
		return fmt.Errorf("invalid response")
	}

	return nil
}
