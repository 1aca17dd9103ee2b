// Package report computes the dashboard aggregates from a transaction snapshot.
// Every function is pure and independent of the input order unless stated.
package report

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
)

// ComputeTotals sums income and expenses. An empty snapshot yields zeros.
func ComputeTotals(txs []core.Transaction) core.Totals {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range txs {
		switch t.Type {
		case core.Income:
			income = income.Add(t.Amount)
		case core.Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return core.Totals{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// CategoryBreakdown groups expenses by category id. Income is ignored and categories
// without expenses are omitted. Ids missing from the catalog resolve to the
// Uncategorized fallback but stay separate groups. Groups appear in the order their
// id was first seen.
func CategoryBreakdown(txs []core.Transaction, catalog core.Catalog) []core.CategoryTotal {
	var out []core.CategoryTotal
	pos := make(map[string]int)
	for _, t := range txs {
		if t.Type != core.Expense {
			continue
		}
		i, ok := pos[t.Category]
		if !ok {
			cat := core.Resolve(catalog, t.Category)
			i = len(out)
			pos[t.Category] = i
			out = append(out, core.CategoryTotal{
				CategoryID: t.Category,
				Name:       cat.Name,
				Amount:     decimal.Zero,
				Color:      cat.Color,
			})
		}
		out[i].Amount = out[i].Amount.Add(t.Amount)
	}
	return out
}

// MonthlySeries buckets all transactions by calendar month of their date and sorts
// the buckets chronologically. Months without transactions are not emitted.
// Transactions with a zero date have no month and are skipped.
func MonthlySeries(txs []core.Transaction) []core.MonthBucket {
	type key struct {
		year  int
		month time.Month
	}
	buckets := make(map[key]*core.MonthBucket)
	for _, t := range txs {
		if t.Date.IsZero() {
			continue
		}
		k := key{t.Date.Time.Year(), t.Date.Time.Month()}
		b, ok := buckets[k]
		if !ok {
			b = &core.MonthBucket{
				Year:     k.year,
				Month:    int(k.month),
				Label:    MonthLabel(k.year, k.month),
				Income:   decimal.Zero,
				Expenses: decimal.Zero,
			}
			buckets[k] = b
		}
		switch t.Type {
		case core.Income:
			b.Income = b.Income.Add(t.Amount)
		case core.Expense:
			b.Expenses = b.Expenses.Add(t.Amount)
		}
	}

	out := make([]core.MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b core.MonthBucket) int {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Month, b.Month)
	})
	return out
}

// MonthLabel renders a bucket label such as "Jan 24".
func MonthLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %02d", month.String()[:3], year%100)
}
