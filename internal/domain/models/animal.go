package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput wraps every validation failure on entry fields.
var ErrInvalidInput = errors.New("invalid input")

// ErrAlreadySold is returned when a sale is recorded twice on the same animal.
var ErrAlreadySold = errors.New("animal already sold")

// AnimalStatus is the lifecycle state of an animal.
type AnimalStatus string

const (
	StatusPresent AnimalStatus = "Présent"
	StatusSold    AnimalStatus = "Vendu"
)

// ParseAnimalStatus maps a persisted status label to an AnimalStatus.
// English labels and case variants are accepted; an empty label means Present.
func ParseAnimalStatus(value string) (AnimalStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "présent", "present":
		return StatusPresent, true
	case "vendu", "sold":
		return StatusSold, true
	default:
		return StatusPresent, false
	}
}

// Animal is one head of cattle tracked by a project.
type Animal struct {
	Project       string          `json:"project"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	PurchaseDate  time.Time       `json:"purchase_date"`
	Status        AnimalStatus    `json:"status"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	SaleDate      *time.Time      `json:"sale_date,omitempty"`
	Profit        decimal.Decimal `json:"profit"`
}

// NewAnimal builds a freshly purchased animal. The animal starts Present with
// no sale recorded.
func NewAnimal(project, name, description string, purchasePrice decimal.Decimal, purchaseDate time.Time) (Animal, error) {
	a := Animal{
		Project:       strings.TrimSpace(project),
		Name:          strings.TrimSpace(name),
		Description:   strings.TrimSpace(description),
		PurchasePrice: purchasePrice,
		PurchaseDate:  purchaseDate,
		Status:        StatusPresent,
		SalePrice:     decimal.Zero,
		Profit:        decimal.Zero,
	}
	if err := a.validate(); err != nil {
		return Animal{}, err
	}
	return a, nil
}

func (a Animal) validate() error {
	if err := ValidateProject(a.Project); err != nil {
		return err
	}
	if a.Name == "" {
		return fmt.Errorf("%w: animal name is required", ErrInvalidInput)
	}
	if a.PurchasePrice.IsNegative() {
		return fmt.Errorf("%w: purchase price must not be negative", ErrInvalidInput)
	}
	return nil
}

// IsSold reports whether a sale has been recorded.
func (a Animal) IsSold() bool {
	return a.Status == StatusSold
}

// MarkSold records the sale and derives the profit.
func (a *Animal) MarkSold(salePrice decimal.Decimal, saleDate time.Time) error {
	if a.IsSold() {
		return fmt.Errorf("%w: %s", ErrAlreadySold, a.Name)
	}
	if salePrice.IsNegative() {
		return fmt.Errorf("%w: sale price must not be negative", ErrInvalidInput)
	}

	date := saleDate
	a.Status = StatusSold
	a.SalePrice = salePrice
	a.SaleDate = &date
	a.Profit = salePrice.Sub(a.PurchasePrice)
	return nil
}

// Normalize re-applies the status invariant: a Present animal carries no sale
// data and a Sold animal's profit is its sale price minus its purchase price.
func (a *Animal) Normalize() {
	if a.Status != StatusSold {
		a.Status = StatusPresent
		a.SalePrice = decimal.Zero
		a.SaleDate = nil
		a.Profit = decimal.Zero
		return
	}
	a.Profit = a.SalePrice.Sub(a.PurchasePrice)
}

// ValidateProject rejects blank project labels.
func ValidateProject(project string) error {
	if strings.TrimSpace(project) == "" {
		return fmt.Errorf("%w: project is required", ErrInvalidInput)
	}
	return nil
}
