package view

import (
	"fmt"
	"strconv"
	"strings"

	"paisa/internal/core"
)

// FormatINR renders an amount as Indian rupees with lakh/crore grouping:
// ₹12,34,567.89, -₹200.00.
func FormatINR(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := groupIndian(strconv.FormatInt(cents/100, 10)) + "." + fmt.Sprintf("%02d", cents%100)
	if neg {
		return "-₹" + s
	}
	return "₹" + s
}

// FormatINRWhole is FormatINR without the paise, used for chart axes.
func FormatINRWhole(rupees float64) string {
	m, err := core.MoneyFromFloat(rupees)
	if err != nil {
		return "₹0"
	}
	s := FormatINR(core.Money{Cents: m.Cents / 100 * 100})
	return strings.TrimSuffix(s, ".00")
}

// groupIndian keeps the last three digits together and groups the rest
// in pairs.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",") + "," + tail
}
