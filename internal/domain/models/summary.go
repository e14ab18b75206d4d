package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryTotal is the sum of a project's expenses in one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Summary holds the derived financial metrics of one project.
type Summary struct {
	Project        string          `json:"project"`
	StockValue     decimal.Decimal `json:"stock_value"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	ROI            decimal.Decimal `json:"roi"`
	TotalPurchases decimal.Decimal `json:"total_purchases"`
	TotalSales     decimal.Decimal `json:"total_sales"`
	CashBalance    decimal.Decimal `json:"cash_balance"`
	PresentCount   int             `json:"present_count"`
	SoldCount      int             `json:"sold_count"`
	ExpenseCount   int             `json:"expense_count"`
	ByCategory     []CategoryTotal `json:"by_category"`
}

// LedgerSnapshot is the archived form of a Summary.
type LedgerSnapshot struct {
	Project        string    `bson:"project" json:"project"`
	StockValue     float64   `bson:"stock_value" json:"stock_value"`
	GrossProfit    float64   `bson:"gross_profit" json:"gross_profit"`
	TotalExpenses  float64   `bson:"total_expenses" json:"total_expenses"`
	NetProfit      float64   `bson:"net_profit" json:"net_profit"`
	ROI            float64   `bson:"roi" json:"roi"`
	TotalPurchases float64   `bson:"total_purchases" json:"total_purchases"`
	TotalSales     float64   `bson:"total_sales" json:"total_sales"`
	CashBalance    float64   `bson:"cash_balance" json:"cash_balance"`
	PresentCount   int       `bson:"present_count" json:"present_count"`
	SoldCount      int       `bson:"sold_count" json:"sold_count"`
	ExpenseCount   int       `bson:"expense_count" json:"expense_count"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// NewLedgerSnapshot converts a summary into its archived form.
func NewLedgerSnapshot(s Summary, at time.Time) LedgerSnapshot {
	return LedgerSnapshot{
		Project:        s.Project,
		StockValue:     s.StockValue.InexactFloat64(),
		GrossProfit:    s.GrossProfit.InexactFloat64(),
		TotalExpenses:  s.TotalExpenses.InexactFloat64(),
		NetProfit:      s.NetProfit.InexactFloat64(),
		ROI:            s.ROI.InexactFloat64(),
		TotalPurchases: s.TotalPurchases.InexactFloat64(),
		TotalSales:     s.TotalSales.InexactFloat64(),
		CashBalance:    s.CashBalance.InexactFloat64(),
		PresentCount:   s.PresentCount,
		SoldCount:      s.SoldCount,
		ExpenseCount:   s.ExpenseCount,
		CreatedAt:      at,
	}
}
