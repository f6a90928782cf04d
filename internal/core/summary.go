package core

import "github.com/shopspring/decimal"

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount decimal.Decimal
}

// CategoryShare is a CategoryAmount with its percentage of the total.
type CategoryShare struct {
	CategoryAmount
	Percent decimal.Decimal
}

// Summary bundles the reporting values derived from one snapshot.
type Summary struct {
	TotalIncome       decimal.Decimal
	TotalExpense      decimal.Decimal
	Balance           decimal.Decimal
	ExpenseByCategory map[string]decimal.Decimal
	Count             int
}
