package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Server   ServerConfigs
	Database DatabaseConfigs
	Redis    RedisConfigs
	Twitter  TwitterConfigs
	Telegram TelegramConfigs
	Payout   PayoutConfigs
	TxStatus TxStatusConfigs
	Lottery  LotteryConfigs
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
}

type DatabaseConfigs struct {
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type TwitterConfigs struct {
	APIEndpoints   []string `toml:"api_endpoints"`
	AppAccessToken string   `toml:"app_access_token"`
}

type TelegramConfigs struct {
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// PayoutConfigs points to the winner-selection/payout RPC server. The server
// registers one service per asset family: a native-coin one and a shared one
// for erc20/erc721 lotteries.
type PayoutConfigs struct {
	RPCEndpoint  string `toml:"rpc_endpoint"`
	MaticRPCName string `toml:"matic_rpc_name"`
	ErcRPCName   string `toml:"erc_rpc_name"`
}

type TxStatusConfigs struct {
	RPCEndpoint string `toml:"rpc_endpoint"`
	RPCName     string `toml:"rpc_name"`
}

type LotteryConfigs struct {
	// TickInterval is chosen to respect the twitter API rate-limit window.
	TickInterval time.Duration `toml:"tick_interval"`

	FundingPollInterval time.Duration `toml:"funding_poll_interval"`
	FundingTimeout      time.Duration `toml:"funding_timeout"`

	// Settle delays between the winner-selection steps.
	AddParticipantsDelay time.Duration `toml:"add_participants_delay"`
	DrawNumberDelay      time.Duration `toml:"draw_number_delay"`
	PayoutDelay          time.Duration `toml:"payout_delay"`

	// CursorTTL bounds how long an idle paginated-fetch state is kept.
	CursorTTL time.Duration `toml:"cursor_ttl"`

	MaxFollowTargetFollowers int           `toml:"max_follow_target_followers"`
	MaxPostAge               time.Duration `toml:"max_post_age"`
}
