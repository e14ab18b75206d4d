package store

import (
	"strings"

	"github.com/yafera/herdbook/internal/config"
)

// Column headers of the Animals table.
const (
	ColProject       = "Projet"
	ColName          = "Nom"
	ColDescription   = "Description"
	ColPurchasePrice = "Prix Achat"
	ColPurchaseDate  = "Date Achat"
	ColStatus        = "Statut"
	ColSalePrice     = "Prix Vente"
	ColSaleDate      = "Date Vente"
	ColProfit        = "Profit"
)

// Column headers of the Expenses table.
const (
	ColCategory = "Type"
	ColAmount   = "Montant"
	ColDate     = "Date"
	ColNote     = "Note"
)

// Column headers of the Journal table.
const (
	ColComment = "Commentaire"
)

var (
	animalColumns  = []string{ColProject, ColName, ColDescription, ColPurchasePrice, ColPurchaseDate, ColStatus, ColSalePrice, ColSaleDate, ColProfit}
	expenseColumns = []string{ColProject, ColCategory, ColAmount, ColDate, ColNote}
	noteColumns    = []string{ColProject, ColDate, ColComment}
)

// Tables names the worksheet of each entity type.
type Tables struct {
	Animals  string
	Expenses string
	Journal  string
}

// DefaultTables are the worksheet names used by the original spreadsheet.
var DefaultTables = Tables{Animals: "Bovins", Expenses: "Depenses", Journal: "Journal"}

// TablesFromConfig reads worksheet names from configuration.
func TablesFromConfig(cfg config.SheetsConfig) Tables {
	t := Tables{Animals: cfg.AnimalsSheet, Expenses: cfg.ExpensesSheet, Journal: cfg.JournalSheet}
	if t.Animals == "" {
		t.Animals = DefaultTables.Animals
	}
	if t.Expenses == "" {
		t.Expenses = DefaultTables.Expenses
	}
	if t.Journal == "" {
		t.Journal = DefaultTables.Journal
	}
	return t
}

// header indexes a header row by normalized column name.
type header struct {
	names []string
	index map[string]int
}

func headerKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func newHeader(row []interface{}) *header {
	h := &header{index: make(map[string]int, len(row))}
	for _, cell := range row {
		h.add(cellString(cell))
	}
	return h
}

func (h *header) add(name string) {
	h.names = append(h.names, name)
	key := headerKey(name)
	if _, dup := h.index[key]; !dup && key != "" {
		h.index[key] = len(h.names) - 1
	}
}

// ensure appends the declared columns the sheet does not have yet and
// reports whether the header changed.
func (h *header) ensure(columns []string) bool {
	changed := false
	for _, col := range columns {
		if _, ok := h.index[headerKey(col)]; !ok {
			h.add(col)
			changed = true
		}
	}
	return changed
}

func (h *header) position(column string) (int, bool) {
	i, ok := h.index[headerKey(column)]
	return i, ok
}

func (h *header) row() []interface{} {
	out := make([]interface{}, len(h.names))
	for i, name := range h.names {
		out[i] = name
	}
	return out
}
