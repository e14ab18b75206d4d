package commands

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
	"github.com/yafera/herdbook/internal/service/reporting"
	"github.com/yafera/herdbook/internal/store"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ErrUnsupportedCommand indicates we do not yet support the requested command.
var ErrUnsupportedCommand = errors.New("unsupported command")

const dateFormat = "2006-01-02"

// Usage lists the syntax of every command.
var Usage = map[models.CommandType]string{
	models.CommandPurchase: "/achat <projet> <nom> <prix> [description]",
	models.CommandSale:     "/vente <projet> <nom> <prix>",
	models.CommandExpense:  "/depense <projet> <categorie> <montant> [note]",
	models.CommandNote:     "/note <projet> <texte>",
	models.CommandSummary:  "/bilan <projet>",
	models.CommandProjects: "/projets",
}

// LedgerStore is the part of the record store commands write to.
type LedgerStore interface {
	AppendAnimal(ctx context.Context, project string, in store.AnimalEntry) (models.Animal, error)
	AppendExpense(ctx context.Context, project string, in store.ExpenseEntry) (models.Expense, error)
	AppendNote(ctx context.Context, project string, in store.NoteEntry) (models.Note, error)
	MarkSold(ctx context.Context, project, name string, salePrice decimal.Decimal, saleDate time.Time) (models.Animal, error)
	PresentAnimals(ctx context.Context, project string) []models.Animal
	Projects(ctx context.Context) []string
}

// Summarizer computes project summaries.
type Summarizer interface {
	Summary(ctx context.Context, project string) (models.Summary, error)
}

// Dispatcher executes parsed commands.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	store     LedgerStore
	reporting Summarizer
	logger    *zap.Logger
	loc       *time.Location
	now       func() time.Time
}

// NewService constructs a command dispatcher. Dates default to today in loc.
func NewService(ledgerStore LedgerStore, reporting Summarizer, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     ledgerStore,
		reporting: reporting,
		logger:    logger,
		loc:       loc,
		now:       time.Now,
	}
}

// HandleCommand runs the command and returns the reply for the sender.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (reply string, err error) {
	now := s.now().In(s.loc)

	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))
	defer func() {
		metrics.CommandsHandled.WithLabelValues(string(cmd.Type), metrics.Result(err)).Inc()
	}()

	switch cmd.Type {
	case models.CommandPurchase:
		return s.purchase(ctx, cmd, now)
	case models.CommandSale:
		return s.sale(ctx, cmd, now)
	case models.CommandExpense:
		return s.expense(ctx, cmd, now)
	case models.CommandNote:
		return s.note(ctx, cmd, now)
	case models.CommandSummary:
		return s.summary(ctx, cmd, now)
	case models.CommandProjects:
		return s.projects(ctx)
	default:
		return "", ErrUnsupportedCommand
	}
}

func (s *Service) purchase(ctx context.Context, cmd models.Command, now time.Time) (string, error) {
	if len(cmd.Args) < 3 {
		return "", ErrInvalidArguments
	}
	price, err := models.ParseAmount(cmd.Args[2])
	if err != nil {
		return "", ErrInvalidArguments
	}

	animal, err := s.store.AppendAnimal(ctx, cmd.Args[0], store.AnimalEntry{
		Name:          cmd.Args[1],
		Description:   strings.Join(cmd.Args[3:], " "),
		PurchasePrice: price,
		PurchaseDate:  today(now),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Purchase saved: %s in %s for %s on %s.",
		animal.Name, animal.Project, reporting.FormatAmount(animal.PurchasePrice), animal.PurchaseDate.Format(dateFormat)), nil
}

func (s *Service) sale(ctx context.Context, cmd models.Command, now time.Time) (string, error) {
	if len(cmd.Args) != 3 {
		return "", ErrInvalidArguments
	}
	price, err := models.ParseAmount(cmd.Args[2])
	if err != nil {
		return "", ErrInvalidArguments
	}

	project, name := cmd.Args[0], cmd.Args[1]
	animal, err := s.store.MarkSold(ctx, project, name, price, today(now))
	if errors.Is(err, store.ErrAnimalNotFound) {
		return s.presentChoices(ctx, project, name), nil
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Sale saved: %s sold for %s, profit %s.",
		animal.Name, reporting.FormatAmount(animal.SalePrice), reporting.FormatAmount(animal.Profit)), nil
}

func (s *Service) presentChoices(ctx context.Context, project, name string) string {
	present := s.store.PresentAnimals(ctx, project)
	if len(present) == 0 {
		return fmt.Sprintf("No animal left to sell in %s.", project)
	}

	names := make([]string, 0, len(present))
	for _, a := range present {
		names = append(names, a.Name)
	}
	return fmt.Sprintf("%s is not a present animal of %s. Present: %s.", name, project, strings.Join(names, ", "))
}

func (s *Service) expense(ctx context.Context, cmd models.Command, now time.Time) (string, error) {
	if len(cmd.Args) < 3 {
		return "", ErrInvalidArguments
	}
	amount, err := models.ParseAmount(cmd.Args[2])
	if err != nil {
		return "", ErrInvalidArguments
	}

	expense, err := s.store.AppendExpense(ctx, cmd.Args[0], store.ExpenseEntry{
		Category: cmd.Args[1],
		Amount:   amount,
		Date:     today(now),
		Note:     strings.Join(cmd.Args[3:], " "),
	})
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Expense saved: %s %s in %s on %s.",
		expense.Category, reporting.FormatAmount(expense.Amount), expense.Project, expense.Date.Format(dateFormat)), nil
}

func (s *Service) note(ctx context.Context, cmd models.Command, now time.Time) (string, error) {
	if len(cmd.Args) < 2 {
		return "", ErrInvalidArguments
	}

	note, err := s.store.AppendNote(ctx, cmd.Args[0], store.NoteEntry{
		Timestamp: now,
		Comment:   strings.Join(cmd.Args[1:], " "),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Note saved in %s.", note.Project), nil
}

func (s *Service) summary(ctx context.Context, cmd models.Command, now time.Time) (string, error) {
	if len(cmd.Args) != 1 {
		return "", ErrInvalidArguments
	}
	if s.reporting == nil {
		return "", ErrUnsupportedCommand
	}

	summary, err := s.reporting.Summary(ctx, cmd.Args[0])
	if err != nil {
		return "", err
	}
	return reporting.FormatSummary(summary, now), nil
}

func (s *Service) projects(ctx context.Context) (string, error) {
	projects := s.store.Projects(ctx)
	if len(projects) == 0 {
		return "No project yet. Start one with " + Usage[models.CommandPurchase] + ".", nil
	}
	return "Projects: " + strings.Join(projects, ", "), nil
}

// HelpText is the reply for a command that failed to parse.
func HelpText(t models.CommandType) string {
	if usage, ok := Usage[t]; ok {
		return "Usage: " + usage
	}

	lines := []string{"Supported commands:"}
	for _, t := range []models.CommandType{models.CommandPurchase, models.CommandSale, models.CommandExpense, models.CommandNote, models.CommandSummary, models.CommandProjects} {
		lines = append(lines, Usage[t])
	}
	return strings.Join(lines, "\n")
}


func today(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
