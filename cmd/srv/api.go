package main

import (
	"fmt"
	"net/http"

	"github.com/VAIOT/lottery-backend/pkg/router"
	"github.com/VAIOT/lottery-backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startApi(*cli.Context) error {
	s.loadContext()
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadEndpoints()
	s.loadCallers()
	s.loadRepos()
	s.loadDomains()

	r := router.New(s.ctx)
	router.POST(r, "/createLottery", s.lotteryDomain.CreateLottery)
	router.GET(r, "/getLottery", s.lotteryDomain.GetLottery)

	cfg := xcontext.Configs(s.ctx).Server
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler: r.Handler(),
	}

	xcontext.Logger(s.ctx).Infof("Starting server on port %s", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil {
		return err
	}

	return nil
}
