package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary bundles the aggregates derived from a transaction list.
type Summary struct {
	Balance    Money
	Income     Money
	Expenses   Money // sum of negative amounts, <= 0
	ByCategory []CategoryAmount
	Count      int
}

// Balance is the sum of all amounts.
func Balance(txs []Transaction) Money {
	var total Money
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}

// TotalIncome sums the strictly positive amounts.
func TotalIncome(txs []Transaction) Money {
	var total Money
	for _, t := range txs {
		if t.Amount.Cents > 0 {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// TotalExpenses sums the negative amounts; the result is zero or negative.
func TotalExpenses(txs []Transaction) Money {
	var total Money
	for _, t := range txs {
		if t.Amount.Cents < 0 {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// ExpensesByCategory groups expenses by category, summing absolute amounts
// in first-seen category order.
func ExpensesByCategory(txs []Transaction) []CategoryAmount {
	out := []CategoryAmount{}
	index := map[string]int{}
	for _, t := range txs {
		if t.Amount.Cents >= 0 {
			continue
		}
		name := t.Category
		if name == "" {
			name = CategoryOther
		}
		i, ok := index[name]
		if !ok {
			i = len(out)
			index[name] = i
			out = append(out, CategoryAmount{Name: name})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount.Abs())
	}
	return out
}

// Summarize recomputes every aggregate from scratch.
func Summarize(txs []Transaction) Summary {
	return Summary{
		Balance:    Balance(txs),
		Income:     TotalIncome(txs),
		Expenses:   TotalExpenses(txs),
		ByCategory: ExpensesByCategory(txs),
		Count:      len(txs),
	}
}
