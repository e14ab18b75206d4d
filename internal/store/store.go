// Package store persists animals, expenses and journal notes as whole tables.
//
// Every write reads the full table (all projects), changes it in memory and
// overwrites it. Reads never fail: an unreachable backend or a missing table
// yields an empty collection so aggregations default to zero.
package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/repository/sheets"
)

// ErrAnimalNotFound is returned when a sale targets no Present animal.
var ErrAnimalNotFound = errors.New("no present animal with that name in project")

// AnimalEntry holds the purchase form fields.
type AnimalEntry struct {
	Name          string
	Description   string
	PurchasePrice decimal.Decimal
	PurchaseDate  time.Time
}

// ExpenseEntry holds the expense form fields.
type ExpenseEntry struct {
	Category string
	Amount   decimal.Decimal
	Date     time.Time
	Note     string
}

// NoteEntry holds the journal form fields.
type NoteEntry struct {
	Timestamp time.Time
	Comment   string
}

// Store is the record store of the three entity tables.
type Store struct {
	animals  *collection[models.Animal]
	expenses *collection[models.Expense]
	notes    *collection[models.Note]
	logger   *zap.Logger
}

// New wires a store over a tabular backend. Dates are read and written in loc.
func New(repo sheets.Repository, tables Tables, loc *time.Location, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Store{
		animals:  &collection[models.Animal]{table: tables.Animals, codec: animalCodec, repo: repo, loc: loc, logger: logger},
		expenses: &collection[models.Expense]{table: tables.Expenses, codec: expenseCodec, repo: repo, loc: loc, logger: logger},
		notes:    &collection[models.Note]{table: tables.Journal, codec: noteCodec, repo: repo, loc: loc, logger: logger},
		logger:   logger,
	}
}

// AppendAnimal records a purchase. The animal starts Present with no sale.
func (s *Store) AppendAnimal(ctx context.Context, project string, in AnimalEntry) (models.Animal, error) {
	animal, err := models.NewAnimal(project, in.Name, in.Description, in.PurchasePrice, in.PurchaseDate)
	if err != nil {
		return models.Animal{}, err
	}
	return s.animals.append(ctx, animal)
}

// AppendExpense records an expense.
func (s *Store) AppendExpense(ctx context.Context, project string, in ExpenseEntry) (models.Expense, error) {
	expense, err := models.NewExpense(project, in.Category, in.Amount, in.Date, in.Note)
	if err != nil {
		return models.Expense{}, err
	}
	return s.expenses.append(ctx, expense)
}

// AppendNote records a journal entry.
func (s *Store) AppendNote(ctx context.Context, project string, in NoteEntry) (models.Note, error) {
	note, err := models.NewNote(project, in.Timestamp, in.Comment)
	if err != nil {
		return models.Note{}, err
	}
	return s.notes.append(ctx, note)
}

// MarkSold records the sale of the first Present animal named name in project.
func (s *Store) MarkSold(ctx context.Context, project, name string, salePrice decimal.Decimal, saleDate time.Time) (models.Animal, error) {
	project = strings.TrimSpace(project)
	name = strings.TrimSpace(name)
	if err := models.ValidateProject(project); err != nil {
		return models.Animal{}, err
	}
	if salePrice.IsNegative() {
		return models.Animal{}, fmt.Errorf("%w: sale price must not be negative", models.ErrInvalidInput)
	}

	match := func(a models.Animal) bool {
		return a.Project == project && a.Name == name && !a.IsSold()
	}
	mutate := func(a *models.Animal) error {
		return a.MarkSold(salePrice, saleDate)
	}

	sold, ok, err := s.animals.updateOne(ctx, match, mutate)
	if err != nil {
		return models.Animal{}, err
	}
	if !ok {
		return models.Animal{}, fmt.Errorf("%w: %s/%s", ErrAnimalNotFound, project, name)
	}

	s.logger.Info("animal sold",
		zap.String("project", project),
		zap.String("name", name),
		zap.String("sale_price", salePrice.String()),
		zap.String("profit", sold.Profit.String()))
	return sold, nil
}

// Animals returns the animals of every project.
func (s *Store) Animals(ctx context.Context) []models.Animal {
	return s.animals.read(ctx)
}

// Expenses returns the expenses of every project.
func (s *Store) Expenses(ctx context.Context) []models.Expense {
	return s.expenses.read(ctx)
}

// Notes returns the journal entries of every project.
func (s *Store) Notes(ctx context.Context) []models.Note {
	return s.notes.read(ctx)
}

// ProjectAnimals returns the animals of one project in table order.
func (s *Store) ProjectAnimals(ctx context.Context, project string) []models.Animal {
	return filter(s.Animals(ctx), func(a models.Animal) bool { return a.Project == strings.TrimSpace(project) })
}

// PresentAnimals returns the animals of a project that can still be sold.
func (s *Store) PresentAnimals(ctx context.Context, project string) []models.Animal {
	return filter(s.ProjectAnimals(ctx, project), func(a models.Animal) bool { return !a.IsSold() })
}

// ProjectExpenses returns the expenses of one project in table order.
func (s *Store) ProjectExpenses(ctx context.Context, project string) []models.Expense {
	return filter(s.Expenses(ctx), func(e models.Expense) bool { return e.Project == strings.TrimSpace(project) })
}

// ProjectNotes returns the journal of one project, newest first.
func (s *Store) ProjectNotes(ctx context.Context, project string) []models.Note {
	notes := filter(s.Notes(ctx), func(n models.Note) bool { return n.Project == strings.TrimSpace(project) })
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].Timestamp.After(notes[j].Timestamp) })
	return notes
}

// Projects lists the distinct project labels found in any table, sorted.
func (s *Store) Projects(ctx context.Context) []string {
	seen := make(map[string]struct{})
	for _, a := range s.Animals(ctx) {
		seen[a.Project] = struct{}{}
	}
	for _, e := range s.Expenses(ctx) {
		seen[e.Project] = struct{}{}
	}
	for _, n := range s.Notes(ctx) {
		seen[n.Project] = struct{}{}
	}
	delete(seen, "")

	projects := make([]string, 0, len(seen))
	for p := range seen {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
