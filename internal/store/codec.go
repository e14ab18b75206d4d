package store

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/yafera/herdbook/internal/domain/models"
	"github.com/yafera/herdbook/internal/metrics"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05"
)

var dateLayouts = []string{
	timestampLayout,
	dateLayout,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
}

// sheetsEpoch is day zero of spreadsheet serial dates.
var sheetsEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// record is the column-keyed form of one row.
type record map[string]interface{}

// codec maps an entity to and from a row. decode must never fail: the
// defaulting policy turns every unreadable cell into its zero value.
type codec[T any] struct {
	columns []string
	encode  func(v T, loc *time.Location) record
	decode  func(c *cells) T
}

// cells reads typed values out of one row for decode.
type cells struct {
	table  string
	header *header
	row    []interface{}
	loc    *time.Location
	logger *zap.Logger
}

func (c *cells) raw(column string) interface{} {
	i, ok := c.header.position(column)
	if !ok || i >= len(c.row) {
		return nil
	}
	return c.row[i]
}

func (c *cells) coerced(column string, value interface{}) {
	metrics.StoreCoercions.WithLabelValues(c.table, column).Inc()
	c.logger.Debug("cell defaulted", zap.String("table", c.table), zap.String("column", column), zap.Any("value", value))
}

func (c *cells) text(column string) string {
	return cellString(c.raw(column))
}

func (c *cells) amount(column string) decimal.Decimal {
	v := c.raw(column)
	d, ok := parseDecimal(v)
	if !ok {
		c.coerced(column, v)
	}
	return d
}

func (c *cells) date(column string) time.Time {
	v := c.raw(column)
	t, ok := parseTime(v, c.loc)
	if !ok {
		c.coerced(column, v)
	}
	return t
}

func (c *cells) optionalDate(column string) *time.Time {
	t := c.date(column)
	if t.IsZero() {
		return nil
	}
	return &t
}

var animalCodec = codec[models.Animal]{
	columns: animalColumns,
	encode: func(a models.Animal, loc *time.Location) record {
		saleDate := ""
		if a.SaleDate != nil {
			saleDate = formatDate(*a.SaleDate, loc)
		}
		return record{
			ColProject:       a.Project,
			ColName:          a.Name,
			ColDescription:   a.Description,
			ColPurchasePrice: a.PurchasePrice.InexactFloat64(),
			ColPurchaseDate:  formatDate(a.PurchaseDate, loc),
			ColStatus:        string(a.Status),
			ColSalePrice:     a.SalePrice.InexactFloat64(),
			ColSaleDate:      saleDate,
			ColProfit:        a.Profit.InexactFloat64(),
		}
	},
	decode: func(c *cells) models.Animal {
		status, ok := models.ParseAnimalStatus(c.text(ColStatus))
		if !ok {
			c.coerced(ColStatus, c.raw(ColStatus))
		}
		a := models.Animal{
			Project:       c.text(ColProject),
			Name:          c.text(ColName),
			Description:   c.text(ColDescription),
			PurchasePrice: c.amount(ColPurchasePrice),
			PurchaseDate:  c.date(ColPurchaseDate),
			Status:        status,
			SalePrice:     c.amount(ColSalePrice),
			SaleDate:      c.optionalDate(ColSaleDate),
		}
		a.Normalize()
		return a
	},
}

var expenseCodec = codec[models.Expense]{
	columns: expenseColumns,
	encode: func(e models.Expense, loc *time.Location) record {
		return record{
			ColProject:  e.Project,
			ColCategory: e.Category,
			ColAmount:   e.Amount.InexactFloat64(),
			ColDate:     formatDate(e.Date, loc),
			ColNote:     e.Note,
		}
	},
	decode: func(c *cells) models.Expense {
		return models.Expense{
			Project:  c.text(ColProject),
			Category: c.text(ColCategory),
			Amount:   c.amount(ColAmount),
			Date:     c.date(ColDate),
			Note:     c.text(ColNote),
		}
	},
}

var noteCodec = codec[models.Note]{
	columns: noteColumns,
	encode: func(n models.Note, loc *time.Location) record {
		return record{
			ColProject: n.Project,
			ColDate:    formatTimestamp(n.Timestamp, loc),
			ColComment: n.Comment,
		}
	},
	decode: func(c *cells) models.Note {
		return models.Note{
			Project:   c.text(ColProject),
			Timestamp: c.date(ColDate),
			Comment:   c.text(ColComment),
		}
	},
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// parseDecimal coerces a cell into an amount. Blank cells are zero without
// counting as a failure.
func parseDecimal(v interface{}) (decimal.Decimal, bool) {
	switch x := v.(type) {
	case nil:
		return decimal.Zero, true
	case float64:
		return decimal.NewFromFloat(x), true
	case float32:
		return decimal.NewFromFloat32(x), true
	case int:
		return decimal.NewFromInt(int64(x)), true
	case int64:
		return decimal.NewFromInt(x), true
	case decimal.Decimal:
		return x, true
	}

	s := cleanNumber(cellString(v))
	if s == "" {
		return decimal.Zero, true
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// cleanNumber strips grouping spaces and currency labels, and accepts a
// comma as decimal separator when no dot is present.
func cleanNumber(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), "FCFA")
	s = strings.TrimSuffix(strings.TrimSpace(s), "F")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f', '\'':
			return -1
		}
		return r
	}, s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	return s
}

// parseTime coerces a cell into a time in loc. Blank cells are the zero time
// without counting as a failure.
func parseTime(v interface{}, loc *time.Location) (time.Time, bool) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, true
	case time.Time:
		return x.In(loc), true
	case float64:
		return serialDate(x, loc), true
	case int:
		return serialDate(float64(x), loc), true
	}

	s := cellString(v)
	if s == "" {
		return time.Time{}, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			if layout == "2006-01-02T15:04:05Z07:00" {
				t = t.In(loc)
			}
			return t, true
		}
	}
	return time.Time{}, false
}

func serialDate(days float64, loc *time.Location) time.Time {
	t := sheetsEpoch.Add(time.Duration(days * float64(24*time.Hour)))
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc)
}

func formatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(dateLayout)
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return ""
	}
	return t.In(loc).Format(timestampLayout)
}
