// Package ledger derives the financial metrics of a project from its
// animals and expenses. Every function is pure.
package ledger

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yafera/herdbook/internal/domain/models"
)

var hundred = decimal.NewFromInt(100)

// StockValue is the purchase cost of the animals not sold yet.
func StockValue(animals []models.Animal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range animals {
		if !a.IsSold() {
			total = total.Add(a.PurchasePrice)
		}
	}
	return total
}

// GrossProfit sums the profit of the sold animals.
func GrossProfit(animals []models.Animal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range animals {
		if a.IsSold() {
			total = total.Add(a.Profit)
		}
	}
	return total
}

// TotalPurchases is the purchase cost of every animal, sold or not.
func TotalPurchases(animals []models.Animal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range animals {
		total = total.Add(a.PurchasePrice)
	}
	return total
}

// TotalSales is the sale revenue of the sold animals.
func TotalSales(animals []models.Animal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range animals {
		if a.IsSold() {
			total = total.Add(a.SalePrice)
		}
	}
	return total
}

// TotalExpenses sums expense amounts.
func TotalExpenses(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// NetProfit is the realized profit on sold animals minus incidental expenses.
func NetProfit(grossProfit, totalExpenses decimal.Decimal) decimal.Decimal {
	return grossProfit.Sub(totalExpenses)
}

// CashBalance is sale revenue minus everything spent, including the cost of
// animals still in stock.
func CashBalance(totalSales, totalPurchases, totalExpenses decimal.Decimal) decimal.Decimal {
	return totalSales.Sub(totalPurchases.Add(totalExpenses))
}

// ROI expresses netProfit as a percentage of base, rounded to two decimals.
// A zero base yields zero.
func ROI(netProfit, base decimal.Decimal) decimal.Decimal {
	if base.IsZero() {
		return decimal.Zero
	}
	return netProfit.Div(base).Mul(hundred).Round(2)
}

// ByCategory totals expenses per category, sorted by category name.
func ByCategory(expenses []models.Expense) []models.CategoryTotal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		category := strings.TrimSpace(e.Category)
		if category == "" {
			category = models.CategoryOther
		}
		totals[category] = totals[category].Add(e.Amount)
	}

	out := make([]models.CategoryTotal, 0, len(totals))
	for category, amount := range totals {
		out = append(out, models.CategoryTotal{Category: category, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out
}

// Summarize computes every metric of project from the full collections.
// Records of other projects are ignored. The ROI base is the total purchase
// cost plus total expenses.
func Summarize(project string, animals []models.Animal, expenses []models.Expense) models.Summary {
	project = strings.TrimSpace(project)

	var own []models.Animal
	for _, a := range animals {
		if a.Project == project {
			own = append(own, a)
		}
	}
	var spent []models.Expense
	for _, e := range expenses {
		if e.Project == project {
			spent = append(spent, e)
		}
	}

	s := models.Summary{
		Project:        project,
		StockValue:     StockValue(own),
		GrossProfit:    GrossProfit(own),
		TotalExpenses:  TotalExpenses(spent),
		TotalPurchases: TotalPurchases(own),
		TotalSales:     TotalSales(own),
		ExpenseCount:   len(spent),
		ByCategory:     ByCategory(spent),
	}
	s.NetProfit = NetProfit(s.GrossProfit, s.TotalExpenses)
	s.CashBalance = CashBalance(s.TotalSales, s.TotalPurchases, s.TotalExpenses)
	s.ROI = ROI(s.NetProfit, s.TotalPurchases.Add(s.TotalExpenses))

	for _, a := range own {
		if a.IsSold() {
			s.SoldCount++
		} else {
			s.PresentCount++
		}
	}
	return s
}
