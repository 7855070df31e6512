package main

import (
	"context"
	"flag"
	"fmt"

	"cryptofolio/internal/config"
	"cryptofolio/internal/database"
	"cryptofolio/internal/logging"
	"cryptofolio/internal/service"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

var configPath = flag.String("config", "config.yaml", "path to the optional YAML config file")

// env is the wiring shared by every subcommand.
type env struct {
	cfg       *config.Config
	log       *logrus.Logger
	db        *sqlx.DB
	repo      *database.Repo
	portfolio *service.PortfolioService
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	loc, _ := cfg.Location()

	db, err := database.Open(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if err := database.Migrate(ctx, db, logger); err != nil {
		db.Close()
		return nil, err
	}
	repo := database.New(db, logger)
	return &env{
		cfg:       cfg,
		log:       logger,
		db:        db,
		repo:      repo,
		portfolio: service.NewPortfolioService(repo, service.RealClock{Location: loc}, logger, cfg.DedupeHistory()),
	}, nil
}

func (e *env) Close() error {
	return e.db.Close()
}
