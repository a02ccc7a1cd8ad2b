package core

import (
	"errors"
	"strings"
)

const (
	// CategoryIncome is the category every non-negative transaction carries.
	CategoryIncome = "Income"
	// CategoryOther is the fallback category for expenses.
	CategoryOther = "Other"
)

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

type (
	Theme string

	Money struct {
		Cents int64
	}

	// Transaction is a single signed monetary entry. It is never mutated
	// after creation.
	Transaction struct {
		ID          int64  `json:"id"`
		Description string `json:"description"`
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
	}
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrEmptyDescription    = errors.New("empty description")
	ErrInvalidID           = errors.New("invalid transaction id")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTheme        = errors.New("invalid theme")
)

// ExpenseCategories lists the categories offered for negative amounts.
var ExpenseCategories = []string{
	"Food",
	"Transport",
	"Shopping",
	"Bills",
	"Entertainment",
	"Health",
	CategoryOther,
}

// NewTransaction builds a validated transaction. The category is normalised
// here, once, so every stored transaction already carries its final category.
func NewTransaction(id int64, description string, amount Money, category string) (Transaction, error) {
	tx := Transaction{
		ID:          id,
		Description: strings.TrimSpace(description),
		Amount:      amount,
		Category:    NormalizeCategory(amount, category),
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// NormalizeCategory returns "Income" for non-negative amounts and the
// trimmed category (or "Other" when blank) for expenses.
func NormalizeCategory(amount Money, category string) string {
	if !amount.IsNegative() {
		return CategoryIncome
	}
	category = strings.TrimSpace(category)
	if category == "" {
		return CategoryOther
	}
	return category
}

func (t Transaction) Validate() error {
	if t.ID <= 0 {
		return ErrInvalidID
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	return nil
}

// IsExpense reports whether the transaction has a negative amount.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// ParseTheme accepts "light" or "dark" (case-insensitive).
func ParseTheme(s string) (Theme, error) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case ThemeLight:
		return ThemeLight, nil
	case ThemeDark:
		return ThemeDark, nil
	default:
		return "", ErrInvalidTheme
	}
}

// Toggle flips between light and dark.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) String() string {
	return string(t)
}
