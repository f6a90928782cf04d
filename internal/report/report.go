// Package report derives totals, balance and category breakdowns from a
// snapshot of transactions. Every function is pure: the input slice is only
// read, and equal inputs give equal outputs.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

// TotalIncome sums the amounts of Income records.
func TotalIncome(records []core.Transaction) decimal.Decimal {
	return sumKind(records, core.Income)
}

// TotalExpense sums the amounts of Expense records.
func TotalExpense(records []core.Transaction) decimal.Decimal {
	return sumKind(records, core.Expense)
}

// Balance is total income minus total expense. It may be negative.
func Balance(records []core.Transaction) decimal.Decimal {
	return TotalIncome(records).Sub(TotalExpense(records))
}

// ExpenseByCategory groups Expense records by category and sums each group.
// Income is never grouped, and a category only appears if it has at least
// one expense.
func ExpenseByCategory(records []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.Kind != core.Expense {
			continue
		}
		out[r.Category] = out[r.Category].Add(r.Amount.Decimal)
	}
	return out
}

// Summarize computes all reporting values in one pass over the snapshot.
func Summarize(records []core.Transaction) core.Summary {
	income := TotalIncome(records)
	expense := TotalExpense(records)
	return core.Summary{
		TotalIncome:       income,
		TotalExpense:      expense,
		Balance:           income.Sub(expense),
		ExpenseByCategory: ExpenseByCategory(records),
		Count:             len(records),
	}
}

// SortByName returns the breakdown ordered by category name.
func SortByName(byCategory map[string]decimal.Decimal) []core.CategoryAmount {
	out := toList(byCategory)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// SortByAmount returns the breakdown ordered by descending amount; ties are
// broken by name so the order is stable.
func SortByAmount(byCategory map[string]decimal.Decimal) []core.CategoryAmount {
	out := toList(byCategory)
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Shares returns each category's percentage of the summed breakdown, in
// the order of sorted. Percentages are rounded to one decimal place.
func Shares(sorted []core.CategoryAmount) []core.CategoryShare {
	total := decimal.Zero
	for _, c := range sorted {
		total = total.Add(c.Amount)
	}
	out := make([]core.CategoryShare, 0, len(sorted))
	for _, c := range sorted {
		pct := decimal.Zero
		if total.IsPositive() {
			pct = c.Amount.Mul(hundred).DivRound(total, 1)
		}
		out = append(out, core.CategoryShare{CategoryAmount: c, Percent: pct})
	}
	return out
}

// SortByDateDesc returns a copy of records, newest first. Records on the
// same date keep descending id order.
func SortByDateDesc(records []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func sumKind(records []core.Transaction, kind core.Kind) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		if r.Kind == kind {
			total = total.Add(r.Amount.Decimal)
		}
	}
	return total
}

func toList(byCategory map[string]decimal.Decimal) []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(byCategory))
	for name, amt := range byCategory {
		out = append(out, core.CategoryAmount{Name: name, Amount: amt})
	}
	return out
}
