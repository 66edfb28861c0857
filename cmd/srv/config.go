package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/VAIOT/lottery-backend/config"
)

// loadConfig builds the configs from environment variables. A toml file named
// by CONFIG_FILE overrides them.
func (s *srv) loadConfig() config.Configs {
	cfg := config.Configs{
		Env: getEnv("ENV", "local"),
		Server: config.ServerConfigs{
			Host: getEnv("HOST", "localhost"),
			Port: getEnv("PORT", "8080"),
		},
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			Database: getEnv("MYSQL_DATABASE", "lottery"),
			User:     getEnv("MYSQL_USER", "lottery"),
			Password: getEnv("MYSQL_PASSWORD", "lottery"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Twitter: config.TwitterConfigs{
			APIEndpoints:   strings.Split(getEnv("TWITTER_API_ENDPOINTS", "https://api.twitter.com"), ","),
			AppAccessToken: getEnv("TWITTER_APP_ACCESS_TOKEN", ""),
		},
		Telegram: config.TelegramConfigs{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		},
		Payout: config.PayoutConfigs{
			RPCEndpoint:  getEnv("PAYOUT_RPC_ENDPOINT", "http://localhost:8545"),
			MaticRPCName: getEnv("PAYOUT_MATIC_RPC_NAME", "matic"),
			ErcRPCName:   getEnv("PAYOUT_ERC_RPC_NAME", "erc"),
		},
		TxStatus: config.TxStatusConfigs{
			RPCEndpoint: getEnv("TX_STATUS_RPC_ENDPOINT", "http://localhost:8546"),
			RPCName:     getEnv("TX_STATUS_RPC_NAME", "transaction"),
		},
		Lottery: config.LotteryConfigs{
			TickInterval:             getDuration("LOTTERY_TICK_INTERVAL", 15*time.Minute),
			FundingPollInterval:      getDuration("LOTTERY_FUNDING_POLL_INTERVAL", 5*time.Second),
			FundingTimeout:           getDuration("LOTTERY_FUNDING_TIMEOUT", 15*time.Minute),
			AddParticipantsDelay:     getDuration("LOTTERY_ADD_PARTICIPANTS_DELAY", 15*time.Second),
			DrawNumberDelay:          getDuration("LOTTERY_DRAW_NUMBER_DELAY", 40*time.Second),
			PayoutDelay:              getDuration("LOTTERY_PAYOUT_DELAY", 5*time.Second),
			CursorTTL:                getDuration("LOTTERY_CURSOR_TTL", 24*time.Hour),
			MaxFollowTargetFollowers: getInt("LOTTERY_MAX_FOLLOW_TARGET_FOLLOWERS", 1000000),
			MaxPostAge:               getDuration("LOTTERY_MAX_POST_AGE", 24*time.Hour),
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			panic(err)
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}

	return d
}

func getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}

	return n
}
