package main

import (
	"context"

	"github.com/VAIOT/lottery-backend/internal/client"
	"github.com/VAIOT/lottery-backend/internal/domain"
	"github.com/VAIOT/lottery-backend/internal/repository"
	"github.com/VAIOT/lottery-backend/migration"
	"github.com/VAIOT/lottery-backend/pkg/api/telegram"
	"github.com/VAIOT/lottery-backend/pkg/api/twitter"
	"github.com/VAIOT/lottery-backend/pkg/logger"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/VAIOT/lottery-backend/pkg/xredis"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	lotteryRepo     repository.LotteryRepository
	fetchCursorRepo repository.FetchCursorRepository

	redisClient      xredis.Client
	twitterEndpoint  twitter.IEndpoint
	telegramEndpoint telegram.IEndpoint
	payoutCaller     client.PayoutCaller
	txStatusCaller   client.TxStatusCaller

	fundingWaiter     domain.FundingWaiter
	eligibilityDomain domain.EligibilityDomain
	lotteryDomain     domain.LotteryDomain
}

func (s *srv) loadContext() {
	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, s.loadConfig())
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.INFO))
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database
	db, err := gorm.Open(mysql.Open(cfg.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := migration.Migrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadEndpoints() {
	cfg := xcontext.Configs(s.ctx)
	s.twitterEndpoint = twitter.New(cfg.Twitter)
	s.telegramEndpoint = telegram.New(cfg.Telegram)
}

func (s *srv) loadCallers() {
	cfg := xcontext.Configs(s.ctx)

	rpcPayoutClient, err := rpc.DialContext(s.ctx, cfg.Payout.RPCEndpoint)
	if err != nil {
		panic(err)
	}
	s.payoutCaller = client.NewPayoutCaller(rpcPayoutClient)

	rpcTxStatusClient, err := rpc.DialContext(s.ctx, cfg.TxStatus.RPCEndpoint)
	if err != nil {
		panic(err)
	}
	s.txStatusCaller = client.NewTxStatusCaller(rpcTxStatusClient)
}

func (s *srv) loadRepos() {
	s.lotteryRepo = repository.NewLotteryRepository()
	s.fetchCursorRepo = repository.NewFetchCursorRepository(s.redisClient)
}

func (s *srv) loadDomains() {
	s.fundingWaiter = domain.NewFundingWaiter(s.lotteryRepo, s.txStatusCaller)
	s.eligibilityDomain = domain.NewEligibilityDomain(s.twitterEndpoint, s.fetchCursorRepo)
	s.lotteryDomain = domain.NewLotteryDomain(
		s.lotteryRepo, s.twitterEndpoint, s.telegramEndpoint, s.payoutCaller, s.fundingWaiter)
}
