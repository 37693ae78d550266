package scheduler

import (
	"context"
	"time"

	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/config"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/notifications"
	"github.com/mindfulmetrics/reddit-sentiment-bot/internal/storage"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Service schedules the daily digest of the day's alerts
type Service struct {
	config   *config.Config
	store    storage.AlertStore
	notifier notifications.Notifier
	cron     *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, store storage.AlertStore, notifier notifications.Notifier) *Service {
	return &Service{
		config:   cfg,
		store:    store,
		notifier: notifier,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start begins the digest schedule. No-op when no channel is configured.
func (s *Service) Start() error {
	if !s.config.DigestEnabled() {
		logrus.Info("Digest notifications not configured, scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.config.DigestSchedule, func() {
		logrus.Info("Starting scheduled digest run")
		if err := s.runDigest(); err != nil {
			logrus.Errorf("Scheduled digest run failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started with digest schedule %q", s.config.DigestSchedule)
	return nil
}

func (s *Service) runDigest() error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	alerts, err := s.store.Query(ctx, dayStart, now)
	if err != nil {
		return err
	}

	report := notifications.BuildDailyReport(alerts, now)
	return s.notifier.SendReport(report)
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
