package money

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("pt-PT"))

var hundred = decimal.NewFromInt(100)

// FromCents converts an integer amount of cents to euros.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatEUR renders cents the Portuguese way, e.g. 1990 -> "19,90 €".
func FormatEUR(cents int64) string {
	return printer.Sprintf("%v €", number.Decimal(FromCents(cents).InexactFloat64(), number.Scale(2)))
}

// ParseEUR parses a euro amount such as "19.90" or "19,90" into cents.
// Amounts with more than two decimal places are rejected.
func ParseEUR(s string) (int64, error) {
	raw := strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", s)
	}
	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("invalid amount %q: more than two decimals", s)
	}
	return cents.IntPart(), nil
}

// LineTotal multiplies a unit price in cents by a quantity.
func LineTotal(unitCents int64, quantity int) int64 {
	return decimal.NewFromInt(unitCents).Mul(decimal.NewFromInt(int64(quantity))).IntPart()
}
