package reporting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/metrics"
	"github.com/yafera/herdbook/internal/service/ledger"
)

// ErrArchiveDisabled is returned by History when no snapshot store is configured.
var ErrArchiveDisabled = errors.New("snapshot archive is not configured")

const dateLayout = "2006-01-02"

// LedgerReader is the part of the record store the reports read.
type LedgerReader interface {
	Animals(ctx context.Context) []models.Animal
	Expenses(ctx context.Context) []models.Expense
	Projects(ctx context.Context) []string
}

// SnapshotRepository archives computed summaries.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, snapshot models.LedgerSnapshot) error
	LatestSnapshots(ctx context.Context, project string, limit int64) ([]models.LedgerSnapshot, error)
}

// Service computes project summaries and archives them.
type Service struct {
	store     LedgerReader
	snapshots SnapshotRepository
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new reporting service instance. snapshots may be nil.
func NewService(store LedgerReader, snapshots SnapshotRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, snapshots: snapshots, logger: logger, now: time.Now}
}

// Summary computes the metrics of one project. An unknown or empty project
// yields all-zero metrics.
func (s *Service) Summary(ctx context.Context, project string) (models.Summary, error) {
	if err := models.ValidateProject(project); err != nil {
		return models.Summary{}, err
	}

	summary := ledger.Summarize(project, s.store.Animals(ctx), s.store.Expenses(ctx))
	metrics.SummariesComputed.Inc()

	s.logger.Debug("summary computed",
		zap.String("project", summary.Project),
		zap.String("net_profit", summary.NetProfit.String()),
		zap.Int("present", summary.PresentCount),
		zap.Int("sold", summary.SoldCount))
	return summary, nil
}

// Summaries computes the metrics of every known project, reading each table once.
func (s *Service) Summaries(ctx context.Context) []models.Summary {
	projects := s.store.Projects(ctx)
	if len(projects) == 0 {
		return nil
	}

	animals := s.store.Animals(ctx)
	expenses := s.store.Expenses(ctx)

	out := make([]models.Summary, 0, len(projects))
	for _, project := range projects {
		out = append(out, ledger.Summarize(project, animals, expenses))
		metrics.SummariesComputed.Inc()
	}
	return out
}

// ArchiveSummaries stores a snapshot of every project's summary and returns
// how many were saved. Without an archive it is a no-op.
func (s *Service) ArchiveSummaries(ctx context.Context) (int, error) {
	if s.snapshots == nil {
		s.logger.Debug("snapshot archive disabled, skipping")
		return 0, nil
	}

	at := s.now().UTC()
	saved := 0
	var firstErr error
	for _, summary := range s.Summaries(ctx) {
		if err := s.snapshots.SaveSnapshot(ctx, models.NewLedgerSnapshot(summary, at)); err != nil {
			s.logger.Error("failed to archive summary", zap.String("project", summary.Project), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("archive %s: %w", summary.Project, err)
			}
			continue
		}
		saved++
	}

	s.logger.Info("summaries archived", zap.Int("saved", saved))
	return saved, firstErr
}

// History returns the latest archived snapshots of a project, newest first.
func (s *Service) History(ctx context.Context, project string, limit int64) ([]models.LedgerSnapshot, error) {
	if s.snapshots == nil {
		return nil, ErrArchiveDisabled
	}
	if err := models.ValidateProject(project); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return s.snapshots.LatestSnapshots(ctx, strings.TrimSpace(project), limit)
}

// FormatSummary renders a summary as a short chat message.
func FormatSummary(summary models.Summary, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bilan %s (%s)\n", summary.Project, at.Format(dateLayout))
	if summary.PresentCount+summary.SoldCount == 0 && summary.ExpenseCount == 0 {
		b.WriteString("No records yet.\n")
	}
	fmt.Fprintf(&b, "Animals: %d present, %d sold\n", summary.PresentCount, summary.SoldCount)
	fmt.Fprintf(&b, "Stock value: %s\n", FormatAmount(summary.StockValue))
	fmt.Fprintf(&b, "Gross profit: %s\n", FormatAmount(summary.GrossProfit))
	fmt.Fprintf(&b, "Expenses: %s\n", FormatAmount(summary.TotalExpenses))
	for _, c := range summary.ByCategory {
		fmt.Fprintf(&b, "  - %s: %s\n", c.Category, FormatAmount(c.Amount))
	}
	fmt.Fprintf(&b, "Net profit: %s\n", FormatAmount(summary.NetProfit))
	fmt.Fprintf(&b, "ROI: %s%%", summary.ROI.StringFixed(2))
	return b.String()
}

// FormatAmount prints an FCFA amount with space-separated thousands.
func FormatAmount(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	if rounded.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(" FCFA")
	return b.String()
}
