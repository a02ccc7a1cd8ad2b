// Package core provides money parsing and handling utilities.
//
// Amounts are kept as signed integer paise. This file contains the
// parsing of user input and the JSON number encoding used by the
// persisted transaction list.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// MaxCents bounds the magnitude of a single amount so that sums and
// float conversions stay exact.
const MaxCents int64 = 1_000_000_000_000_000

// ParseAmount converts a signed decimal string to Money with half-up rounding.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Zero is a valid amount. Empty, non-numeric and
// out-of-range input returns ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("5000")    -> 500000
//	ParseAmount("-200")    -> -20000
//	ParseAmount("12,345")  -> 1235 (rounds up)
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return Money{}, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) || r > unicode.MaxASCII {
			return Money{}, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || iv > MaxCents/100 {
		return Money{}, ErrInvalidAmount
	}

	// First two fractional digits, then half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if cents > MaxCents {
		return Money{}, ErrInvalidAmount
	}
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

// MoneyFromFloat converts a float amount in rupees, rejecting NaN and Inf.
func MoneyFromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrInvalidAmount
	}
	cents := math.Round(f * 100)
	if math.Abs(cents) > float64(MaxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: int64(cents)}, nil
}

func (m Money) Validate() error {
	if m.Cents > MaxCents || m.Cents < -MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) IsNegative() bool {
	return m.Cents < 0
}

func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Rupees returns the value as a float64 for charts and spreadsheets.
// Use Cents for calculations.
func (m Money) Rupees() float64 {
	return float64(m.Cents) / 100.0
}

// Decimal renders the amount as a plain decimal without trailing zeros
// ("5000", "-200.5", "0.05").
func (m Money) Decimal() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := strconv.FormatInt(cents/100, 10)
	rem := cents % 100
	switch {
	case rem == 0:
		return sign + whole
	case rem%10 == 0:
		return sign + whole + "." + strconv.FormatInt(rem/10, 10)
	case rem < 10:
		return sign + whole + ".0" + strconv.FormatInt(rem, 10)
	default:
		return sign + whole + "." + strconv.FormatInt(rem, 10)
	}
}

func (m Money) String() string {
	return m.Decimal()
}

// MarshalJSON encodes the amount as a JSON number in rupees.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON accepts any JSON number, including exponent forms written
// by other producers, and rounds to paise.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || strings.HasPrefix(raw, `"`) {
		return ErrInvalidAmount
	}
	if v, err := ParseAmount(raw); err == nil {
		*m = v
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ErrInvalidAmount
	}
	v, err := MoneyFromFloat(f)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
