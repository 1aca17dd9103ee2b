package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/core"
)

func sample() []core.Transaction {
	mk := func(id string, typ core.TransactionType, cat string, d core.Date, notes string) core.Transaction {
		return core.Transaction{ID: id, Type: typ, Amount: decimal.NewFromInt(1), Category: cat, Date: d, Notes: notes}
	}
	return []core.Transaction{
		mk("1", core.Income, "salary", core.NewDate(2024, 1, 15), ""),
		mk("2", core.Expense, "food", core.NewDate(2024, 1, 20), "Lunch with Bob"),
		mk("3", core.Expense, "food", core.NewDate(2024, 2, 1), ""),
		mk("4", core.Expense, "rent", core.NewDate(2024, 1, 20), "January rent"),
		mk("5", core.Income, "gift", core.NewDate(2024, 1, 20), "birthday LUNCH money"),
	}
}

func idsOf(txs []core.Transaction) []string {
	out := make([]string, len(txs))
	for i, t := range txs {
		out[i] = t.ID
	}
	return out
}

func TestApplyIdentitySortsDescendingStable(t *testing.T) {
	got := Apply(sample(), Filter{Type: TypeAll, Category: All})
	// 2, 4, 5 share a date and keep their input order
	assert.Equal(t, []string{"3", "2", "4", "5", "1"}, idsOf(got))

	// zero-value filter behaves the same
	assert.Equal(t, idsOf(got), idsOf(Apply(sample(), Filter{})))
}

func TestApplyPredicates(t *testing.T) {
	cases := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"income only", Filter{Type: TypeIncome}, []string{"5", "1"}},
		{"expense only", Filter{Type: TypeExpense}, []string{"3", "2", "4"}},
		{"category", Filter{Category: "food"}, []string{"3", "2"}},
		{"search is case-insensitive", Filter{Search: "lunch"}, []string{"2", "5"}},
		{"conjunctive", Filter{Type: TypeExpense, Search: "LUNCH"}, []string{"2"}},
		{"category and type disagree", Filter{Type: TypeIncome, Category: "food"}, []string{}},
		{"unknown category", Filter{Category: "nope"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, idsOf(Apply(sample(), tc.filter)))
		})
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	for _, f := range []Filter{{}, {Type: TypeExpense}, {Search: "lunch"}, {Category: "food", Type: TypeExpense}} {
		once := Apply(sample(), f)
		twice := Apply(once, f)
		assert.Equal(t, idsOf(once), idsOf(twice))
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := sample()
	Apply(in, Filter{})
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, idsOf(in))
}

func TestParseTypeFilter(t *testing.T) {
	for in, want := range map[string]TypeFilter{"": TypeAll, "all": TypeAll, "Income": TypeIncome, "expense": TypeExpense} {
		got, err := ParseTypeFilter(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTypeFilter("transfer")
	assert.ErrorIs(t, err, core.ErrInvalidType)
}

func TestFilterKey(t *testing.T) {
	assert.Equal(t, Filter{}.Key(), Filter{Type: TypeAll, Category: All}.Key())
	assert.Equal(t, Filter{Search: "Lunch"}.Key(), Filter{Search: "lunch"}.Key())
	assert.NotEqual(t, Filter{Category: "food"}.Key(), Filter{Category: "rent"}.Key())
}

func TestUsedCategories(t *testing.T) {
	assert.Equal(t, []string{"salary", "food", "rent", "gift"}, UsedCategories(sample()))
	assert.Empty(t, UsedCategories(nil))
}
