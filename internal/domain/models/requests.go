package models

import "github.com/shopspring/decimal"

// Dates in requests use the 2006-01-02 layout. An empty date means today.

// PurchaseRequest is the HTTP form of an animal purchase.
type PurchaseRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Date        string          `json:"date"`
}

// SaleRequest records the sale of a Present animal.
type SaleRequest struct {
	Price decimal.Decimal `json:"price"`
	Date  string          `json:"date"`
}

// ExpenseRequest is the HTTP form of an expense.
type ExpenseRequest struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Note     string          `json:"note"`
}

// NoteRequest is the HTTP form of a journal entry. Timestamp is RFC 3339
// and defaults to now.
type NoteRequest struct {
	Comment   string `json:"comment" binding:"required"`
	Timestamp string `json:"timestamp"`
}
