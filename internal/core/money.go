// Package core holds the domain types shared by the kasegi server and client.
package core

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Money is a yen amount. Amounts are kept as decimals so that month-long
// aggregations of unit-price multiples never accumulate float drift.
type Money struct {
	Amount decimal.Decimal
}

// NewMoney creates a Money from a decimal amount.
func NewMoney(amount decimal.Decimal) Money {
	return Money{Amount: amount}
}

// MoneyFromFloat creates a Money from a float64 as stored in sqlite.
func MoneyFromFloat(v float64) Money {
	return Money{Amount: decimal.NewFromFloat(v)}
}

// Zero returns a zero-valued Money.
func Zero() Money {
	return Money{Amount: decimal.Zero}
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{Amount: m.Amount.Add(other.Amount)}
}

// Sub returns m - other.
func (m Money) Sub(other Money) Money {
	return Money{Amount: m.Amount.Sub(other.Amount)}
}

// Mul returns the amount multiplied by an integer count.
func (m Money) Mul(n int64) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(n))}
}

// DivInt returns the amount divided by an integer, e.g. a goal spread over days.
func (m Money) DivInt(n int64) Money {
	if n == 0 {
		return Zero()
	}
	return Money{Amount: m.Amount.Div(decimal.NewFromInt(n))}
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// IsNegative reports whether the amount is below zero.
func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

// LessThan reports whether m < other.
func (m Money) LessThan(other Money) bool {
	return m.Amount.LessThan(other.Amount)
}

// Yen returns the amount rounded to whole yen.
func (m Money) Yen() int64 {
	return m.Amount.Round(0).IntPart()
}

// Float returns the amount as a float64 for storage in sqlite.
func (m Money) Float() float64 {
	f, _ := m.Amount.Float64()
	return f
}

// PercentOf returns m as a percentage of total, 0 when total is zero.
func (m Money) PercentOf(total Money) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := m.Amount.Div(total.Amount).Mul(decimal.NewFromInt(100)).Float64()
	return pct
}

// MarshalJSON encodes the amount as a bare JSON number, matching the wire
// format of the HTTP API.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Amount.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		m.Amount = decimal.Zero
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parsing money amount %q: %w", s, err)
	}
	m.Amount = d
	return nil
}

// currencySymbol prefixes formatted amounts. The terminal client overrides
// it from config at startup.
var currencySymbol = "¥"

// SetCurrencySymbol changes the symbol Money.String renders with. Empty
// strings are ignored.
func SetCurrencySymbol(sym string) {
	if sym != "" {
		currencySymbol = sym
	}
}

// String formats the amount as a whole-unit sum with thousand separators:
// ¥12,345.
func (m Money) String() string {
	yen := m.Yen()
	if yen < 0 {
		return fmt.Sprintf("-%s%s", currencySymbol, humanize.Comma(-yen))
	}
	return fmt.Sprintf("%s%s", currencySymbol, humanize.Comma(yen))
}
