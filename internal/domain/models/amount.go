package models

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// groupedAmount matches amounts written with comma thousands separators,
// e.g. 100,000 or 1,250,000.
var groupedAmount = regexp.MustCompile(`^\d{1,3}(,\d{3})+$`)

// decimalComma matches amounts written with a decimal comma, e.g. 12,5.
var decimalComma = regexp.MustCompile(`^\d+,\d{1,2}$`)

// ParseAmount reads a user typed amount. Spaces and comma thousands
// separators are ignored; a single comma followed by one or two digits is
// a decimal separator. Negative amounts are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	switch {
	case groupedAmount.MatchString(s):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case decimalComma.MatchString(s):
		s = strings.Replace(s, ",", ".", 1)
	case strings.Contains(s, ","):
		return decimal.Zero, fmt.Errorf("%w: ambiguous amount %q", ErrInvalidInput, raw)
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, raw)
	}
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: negative amount %q", ErrInvalidInput, raw)
	}
	return amount, nil
}
