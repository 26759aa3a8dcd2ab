package scheduler

import (
	"context"
	"time"

	"supplychain_backoffice/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// CheckRunner triggers a full deadline scan.
type CheckRunner interface {
	RunCheck(ctx context.Context) (*app.CheckResult, error)
}

// StatusSweeper re-derives statuses across all active shipments.
type StatusSweeper interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// Scheduler drives the two recurring jobs: the nightly status recompute
// sweep and the daily deadline scan.
type Scheduler struct {
	cronEngine        *cron.Cron
	checks            CheckRunner
	statuses          StatusSweeper
	log               *logrus.Logger
	cronSpecScan      string
	cronSpecRecompute string
}

func New(checks CheckRunner, statuses StatusSweeper, log *logrus.Logger, cronSpecScan, cronSpecRecompute string) *Scheduler {
	return &Scheduler{
		cronEngine:        cron.New(cron.WithLocation(time.Local)),
		checks:            checks,
		statuses:          statuses,
		log:               log,
		cronSpecScan:      cronSpecScan,
		cronSpecRecompute: cronSpecRecompute,
	}
}

func (s *Scheduler) Start() {
	_, err := s.cronEngine.AddFunc(s.cronSpecScan, func() {
		s.log.Info("Cron job triggered: deadline scan")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		result, err := s.checks.RunCheck(ctx)
		if err != nil {
			s.log.WithError(err).Error("Scheduled deadline scan failed")
			return
		}
		s.log.WithFields(logrus.Fields{
			"created": result.Created,
			"skipped": result.Skipped,
		}).Info("Scheduled deadline scan finished")
	})
	if err != nil {
		s.log.WithError(err).Fatal("Could not add deadline scan cron job")
	}

	_, err = s.cronEngine.AddFunc(s.cronSpecRecompute, func() {
		s.log.Info("Cron job triggered: status recompute sweep")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		count, err := s.statuses.RecomputeAll(ctx)
		if err != nil {
			s.log.WithError(err).Error("Scheduled status sweep failed")
			return
		}
		s.log.WithField("recomputed", count).Info("Scheduled status sweep finished")
	})
	if err != nil {
		s.log.WithError(err).Fatal("Could not add status sweep cron job")
	}

	s.cronEngine.Start()
	s.log.Info("Scheduler started")
}

func (s *Scheduler) Stop() {
	s.log.Info("Stopping scheduler...")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.log.Info("Scheduler stopped")
}
