package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Suggested expense categories. The set is open: any non-empty label is accepted.
const (
	CategoryFeed      = "Aliment"
	CategoryHealth    = "Santé"
	CategoryTransport = "Transport"
	CategoryLabour    = "Main d'œuvre"
	CategoryOther     = "Autre"
)

// DefaultExpenseCategories lists the categories offered to users.
var DefaultExpenseCategories = []string{CategoryFeed, CategoryHealth, CategoryTransport, CategoryLabour, CategoryOther}

// Expense captures an incidental cost charged to a project.
type Expense struct {
	Project  string          `json:"project"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Note     string          `json:"note"`
}

// NewExpense validates and builds an expense. A blank category becomes "Autre".
func NewExpense(project, category string, amount decimal.Decimal, date time.Time, note string) (Expense, error) {
	e := Expense{
		Project:  strings.TrimSpace(project),
		Category: strings.TrimSpace(category),
		Amount:   amount,
		Date:     date,
		Note:     strings.TrimSpace(note),
	}
	if err := ValidateProject(e.Project); err != nil {
		return Expense{}, err
	}
	if e.Category == "" {
		e.Category = CategoryOther
	}
	if e.Amount.IsNegative() {
		return Expense{}, fmt.Errorf("%w: expense amount must not be negative", ErrInvalidInput)
	}
	return e, nil
}
