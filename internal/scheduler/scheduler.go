package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/techsolutionsutrecht/offerte/internal/config"
	"github.com/techsolutionsutrecht/offerte/internal/domain/models"
	"github.com/techsolutionsutrecht/offerte/internal/service/emails"
)

// Summarizer builds the operator digest.
type Summarizer interface {
	Summarize(ctx context.Context, now time.Time) (models.Summary, error)
}

// Notifier delivers emails.
type Notifier interface {
	Send(ctx context.Context, msg models.EmailMessage) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron       *cron.Cron
	schedule   string
	summarizer Summarizer
	notifier   Notifier
	company    models.CompanyInfo
	logger     *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
func NewScheduler(cfg config.ReportingConfig, company models.CompanyInfo, summarizer Summarizer, notifier Notifier, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(location)),
		schedule:   cfg.CronSchedule,
		summarizer: summarizer,
		notifier:   notifier,
		company:    company,
		logger:     logger,
	}, nil
}

// Start registers the summary job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.sendSummary); err != nil {
		return fmt.Errorf("schedule summary %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.cron.Location().String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) sendSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.SendSummary(ctx, time.Now().In(s.cron.Location())); err != nil {
		s.logger.Error("failed to send summary", zap.Error(err))
	}
}

// SendSummary builds the digest for now and emails it to the company address.
func (s *Scheduler) SendSummary(ctx context.Context, now time.Time) error {
	s.logger.Info("generating summary")

	summary, err := s.summarizer.Summarize(ctx, now)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	msg, err := emails.Summary(s.company, summary)
	if err != nil {
		return fmt.Errorf("build summary email: %w", err)
	}

	if err := s.notifier.Send(ctx, msg); err != nil {
		return fmt.Errorf("send summary: %w", err)
	}

	s.logger.Info("summary sent",
		zap.Int("pending", summary.Pending),
		zap.Int("approved", summary.Approved),
		zap.Int("stale", len(summary.Stale)))
	return nil
}
