package scheduler

import (
	"context"
	"fmt"
	"time"

	"cryptofolio/internal/service"
	"cryptofolio/internal/valuation"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Backupper writes today's portfolio snapshot.
type Backupper interface {
	Backup(ctx context.Context) (service.BackupResult, error)
}

// MessageCollector gathers market messages from outside sources and returns
// how many were stored.
type MessageCollector interface {
	Collect(ctx context.Context) (int, error)
}

// NoopCollector stands in until a real message source is wired.
type NoopCollector struct {
	Log *logrus.Logger
}

func (c NoopCollector) Collect(context.Context) (int, error) {
	c.Log.Info("message collection is not configured; nothing collected")
	return 0, nil
}

// Scheduler runs the nightly portfolio backup and message collection.
type Scheduler struct {
	Cron      *cron.Cron
	Portfolio Backupper
	Collector MessageCollector
	Log       *logrus.Logger
	Ctx       context.Context
}

// NewScheduler creates a Scheduler whose cron expressions carry a seconds
// field and are evaluated in loc.
func NewScheduler(ctx context.Context, loc *time.Location, portfolio Backupper, collector MessageCollector, log *logrus.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(loc),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log))),
		),
		Portfolio: portfolio,
		Collector: collector,
		Log:       log,
		Ctx:       ctx,
	}
}

// RegisterAll registers the backup and collect-messages tasks.
func (s *Scheduler) RegisterAll(backupCron, collectCron string) error {
	if _, err := s.Cron.AddFunc(backupCron, s.backupTask); err != nil {
		return fmt.Errorf("register backup task: %w", err)
	}
	if _, err := s.Cron.AddFunc(collectCron, s.collectTask); err != nil {
		return fmt.Errorf("register collect task: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Log.Info("scheduler stopped")
}

// RunBackupNow executes the backup task immediately.
func (s *Scheduler) RunBackupNow() (service.BackupResult, error) {
	return s.backup()
}

// RunCollectNow executes the collect task immediately.
func (s *Scheduler) RunCollectNow() (int, error) {
	return s.collect()
}

func (s *Scheduler) backupTask() { _, _ = s.backup() }

func (s *Scheduler) collectTask() { _, _ = s.collect() }

func (s *Scheduler) backup() (service.BackupResult, error) {
	start := time.Now()
	res, err := s.Portfolio.Backup(s.Ctx)
	if err != nil {
		s.Log.WithError(err).WithField("task", "backup").Error("portfolio backup failed")
		return res, err
	}
	s.Log.WithFields(logrus.Fields{
		"task":     "backup",
		"date":     res.Date,
		"rows":     res.Rows,
		"total":    valuation.FormatUSD(res.Total),
		"duration": time.Since(start).String(),
	}).Info("portfolio backup done")
	return res, nil
}

func (s *Scheduler) collect() (int, error) {
	n, err := s.Collector.Collect(s.Ctx)
	if err != nil {
		s.Log.WithError(err).WithField("task", "collect-messages").Error("message collection failed")
		return n, err
	}
	s.Log.WithFields(logrus.Fields{"task": "collect-messages", "stored": n}).Info("message collection done")
	return n, nil
}
