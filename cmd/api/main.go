package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	httpadp "approval-engine/internal/adapter/http"
	mw "approval-engine/internal/adapter/middleware"
	"approval-engine/internal/adapter/repository/mysql"
	"approval-engine/internal/config"
	"approval-engine/internal/directory"
	"approval-engine/internal/infrastructure/cache"
	"approval-engine/internal/infrastructure/db"
	"approval-engine/internal/notify"
	"approval-engine/internal/sla"
	delegationuc "approval-engine/internal/usecase/delegation"
	"approval-engine/internal/usecase/registry"
	requestuc "approval-engine/internal/usecase/request"
	"approval-engine/internal/usecase/resolver"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}

	gdb, err := db.OpenGorm(cfg.MySQLDSN(), log)
	if err != nil {
		log.WithError(err).Fatal("mysql connect failed")
	}
	rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("redis connect failed")
	}

	authorities := mysql.NewAuthorityRepository(gdb)
	delegations := mysql.NewDelegationRepository(gdb)
	requests := mysql.NewRequestRepository(gdb)
	auditRepo := mysql.NewAuditRepository(gdb)
	uow := mysql.NewGormUoW(gdb)

	people := directory.NewStatic()
	notifier := &notify.LogDispatcher{Log: log}

	registrySvc := registry.NewService(authorities, uow, log, cfg.DefaultSLAHours)
	resolverSvc := resolver.NewService(authorities, delegations, log)
	requestUC := requestuc.NewUsecase(uow, registrySvc, resolverSvc, people, notifier, log, cfg.SLAAtRiskFraction)
	delegationUC := delegationuc.NewUsecase(uow, notifier, log)

	// background SLA watcher
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scheduler := sla.NewScheduler(requests, requestUC, delegationUC,
		time.Duration(cfg.SchedulerIntervalSecs)*time.Second, log)
	go scheduler.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = httpadp.NewValidator()
	e.Use(middleware.Logger(), middleware.Recover())

	h := httpadp.NewHandler()
	reqH := httpadp.NewRequestHandler(requestUC)
	delH := httpadp.NewDelegationHandler(delegationUC)
	authH := httpadp.NewAuthorityHandler(registrySvc, resolverSvc)
	audH := httpadp.NewAuditHandler(auditRepo)

	e.GET("/health", h.Health)

	api := e.Group("/api/v1", mw.IdempotencyMiddleware(rdb, time.Duration(cfg.IdempTTLSecs)*time.Second))
	api.POST("/requests", reqH.Submit)
	api.POST("/requests/:request_id/levels/:level_order/act", reqH.Act)
	api.POST("/requests/:request_id/cancel", reqH.Cancel)
	api.GET("/requests/:request_id", reqH.Status)

	api.POST("/delegations", delH.Create)
	api.GET("/delegations/:delegation_id", delH.Get)
	api.POST("/delegations/:delegation_id/approve", delH.Approve)
	api.POST("/delegations/:delegation_id/reject", delH.Reject)
	api.POST("/delegations/:delegation_id/revoke", delH.Revoke)

	api.POST("/authorities", authH.Create)
	api.POST("/authorities/:authority_id/holders", authH.AssignHolder)
	api.GET("/authorities/:authority_id/holder", authH.ResolveHolder)

	api.GET("/audit/:entity_kind/:entity_id", audH.Trail)

	addr := ":" + cfg.AppPort
	log.WithField("addr", addr).Info("listening")
	if err := e.Start(addr); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
