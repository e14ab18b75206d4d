package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/config"
	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/service/reporting"
)

const runTimeout = 2 * time.Minute

// Reports is what the weekly job needs from the reporting service.
type Reports interface {
	Summaries(ctx context.Context) []models.Summary
	ArchiveSummaries(ctx context.Context) (int, error)
}

// Notifier delivers a message to a WhatsApp number.
type Notifier interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler runs the weekly ledger report.
type Scheduler struct {
	cron      *cron.Cron
	schedule  string
	reports   Reports
	notifier  Notifier
	managerID string
	loc       *time.Location
	logger    *zap.Logger
}

// NewScheduler creates a scheduler for cfg.Reporting.CronSchedule in the
// configured timezone. notifier may be nil; summaries are then only archived.
func NewScheduler(cfg config.Config, reports Reports, notifier Notifier, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := cfg.Reporting.Location()

	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		schedule:  cfg.Reporting.CronSchedule,
		reports:   reports,
		notifier:  notifier,
		managerID: cfg.WhatsApp.ManagerID,
		loc:       loc,
		logger:    logger,
	}
}

// Start registers the weekly job and starts the cron goroutine.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runWeeklyReport); err != nil {
		return fmt.Errorf("schedule weekly report %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule), zap.String("timezone", s.loc.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runWeeklyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	s.WeeklyReport(ctx, time.Now().In(s.loc))
}

// WeeklyReport archives every project summary and, when a manager number is
// configured, sends each summary to it.
func (s *Scheduler) WeeklyReport(ctx context.Context, at time.Time) {
	s.logger.Info("generating weekly report")

	if saved, err := s.reports.ArchiveSummaries(ctx); err != nil {
		s.logger.Error("failed to archive summaries", zap.Int("saved", saved), zap.Error(err))
	}

	if s.notifier == nil || s.managerID == "" {
		return
	}

	sent := 0
	for _, summary := range s.reports.Summaries(ctx) {
		req := models.OutboundMessageRequest{
			To:      s.managerID,
			Message: reporting.FormatSummary(summary, at),
		}
		if err := s.notifier.SendOutbound(ctx, req); err != nil {
			s.logger.Error("failed to send weekly report", zap.String("project", summary.Project), zap.Error(err))
			continue
		}
		sent++
	}
	s.logger.Info("weekly report sent", zap.Int("projects", sent))
}
