package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptofolio/internal/config"
	"cryptofolio/internal/database"
	"cryptofolio/internal/handlers"
	"cryptofolio/internal/logging"
	"cryptofolio/internal/scheduler"
	"cryptofolio/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		logrus.Fatalf("logger: %v", err)
	}
	loc, _ := cfg.Location()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db, logger); err != nil {
		logger.Fatalf("migrate failed: %v", err)
	}

	r := database.New(db, logger)
	clock := service.RealClock{Location: loc}
	portfolio := service.NewPortfolioService(r, clock, logger, cfg.DedupeHistory())

	sched := scheduler.NewScheduler(ctx, loc, portfolio, scheduler.NoopCollector{Log: logger}, logger)
	if err := sched.RegisterAll(cfg.Schedule.BackupCron, cfg.Schedule.CollectCron); err != nil {
		logger.Fatalf("scheduler: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	h := handlers.NewHandler(
		portfolio,
		service.NewCryptoService(r, logger),
		service.NewMessageService(r, clock, logger),
		service.NewReportService(r, r, r, clock, logger),
		service.NewSystemService(r, r, r, logger),
		logger,
	)
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handlers.NewRouter(h, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":   cfg.Server.Port,
			"driver": cfg.Database.Driver,
			"backup": cfg.Schedule.BackupCron,
			"dedupe": cfg.DedupeHistory(),
		}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
}
