package main

import (
	"github.com/VAIOT/lottery-backend/internal/domain/cron"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadContext()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadEndpoints()
	s.loadCallers()
	s.loadRepos()
	s.loadDomains()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewLotteryLifecycleCronJob(
			s.lotteryRepo,
			s.eligibilityDomain,
			s.payoutCaller,
			s.telegramEndpoint,
			xcontext.Configs(s.ctx).Lottery.TickInterval,
		),
	)

	return nil
}
