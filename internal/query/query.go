// Package query filters and orders transactions for the table view and export.
package query

import (
	"fmt"
	"slices"
	"strings"

	"tracker/internal/core"
)

// All is the identity value for the type and category filters.
const All = "all"

// TypeFilter selects transactions by type.
type TypeFilter string

const (
	TypeAll     TypeFilter = All
	TypeIncome  TypeFilter = TypeFilter(core.Income)
	TypeExpense TypeFilter = TypeFilter(core.Expense)
)

// ParseTypeFilter accepts "all", "income", "expense"; empty means all.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch TypeFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", TypeAll:
		return TypeAll, nil
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	}
	return "", fmt.Errorf("%w: %q", core.ErrInvalidType, s)
}

// Filter holds the three conjunctive predicates. Zero values match everything.
type Filter struct {
	Type     TypeFilter
	Category string // "all", "" or a category id
	Search   string // case-insensitive substring of notes
}

// Key is a stable string form of the filter, usable as a cache key.
func (f Filter) Key() string {
	return fmt.Sprintf("%s|%s|%s", f.normalizedType(), f.normalizedCategory(), strings.ToLower(f.Search))
}

func (f Filter) normalizedType() TypeFilter {
	if f.Type == "" {
		return TypeAll
	}
	return f.Type
}

func (f Filter) normalizedCategory() string {
	if f.Category == "" {
		return All
	}
	return f.Category
}

// Match reports whether t passes every predicate.
func (f Filter) Match(t core.Transaction) bool {
	if typ := f.normalizedType(); typ != TypeAll && string(typ) != string(t.Type) {
		return false
	}
	if cat := f.normalizedCategory(); cat != All && cat != t.Category {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Notes), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

// Apply returns the matching transactions, most recent date first. Transactions
// sharing a date keep their relative input order.
func Apply(txs []core.Transaction, f Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out
}

// UsedCategories lists the distinct category ids present, in first-seen order.
// It feeds the options of the category filter.
func UsedCategories(txs []core.Transaction) []string {
	seen := make(map[string]struct{}, len(txs))
	var out []string
	for _, t := range txs {
		if _, ok := seen[t.Category]; ok {
			continue
		}
		seen[t.Category] = struct{}{}
		out = append(out, t.Category)
	}
	return out
}
