package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/cache"
	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/query"
	"tracker/internal/storage"
)

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard, Component: applog.ComponentService})
}

func newService(t *testing.T, kv storage.KV, opts ...Option) *TrackerService {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	s := NewTrackerService(kv, opts...)
	require.NoError(t, s.Load(context.Background()))
	return s
}

func draft(typ core.TransactionType, amount, category string, date core.Date, notes string) core.Draft {
	return core.Draft{Type: typ, Amount: decimal.RequireFromString(amount), Category: category, Date: date, Notes: notes}
}

// countingCache records hits so memoization can be observed.
type countingCache struct {
	*cache.LRUCache[Dashboard]
	hits int
}

func (c *countingCache) Get(key string) (Dashboard, bool) {
	d, ok := c.LRUCache.Get(key)
	if ok {
		c.hits++
	}
	return d, ok
}

type brokenKV struct{}

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errors.New("disk gone") }
func (brokenKV) Set(context.Context, string, []byte) error    { return errors.New("quota exceeded") }
func (brokenKV) Close() error                                 { return nil }

func TestDashboardScenario(t *testing.T) {
	ctx := context.Background()
	s := newService(t, storage.NewMemoryKV())

	_, err := s.Create(ctx, draft(core.Income, "1000", "salary", core.NewDate(2024, 1, 15), ""))
	require.NoError(t, err)
	_, err = s.Create(ctx, draft(core.Expense, "200", "food", core.NewDate(2024, 1, 20), "groceries"))
	require.NoError(t, err)
	_, err = s.Create(ctx, draft(core.Expense, "50", "food", core.NewDate(2024, 2, 1), ""))
	require.NoError(t, err)

	d := s.Dashboard(query.Filter{})
	assert.True(t, d.Totals.Income.Equal(decimal.NewFromInt(1000)))
	assert.True(t, d.Totals.Expenses.Equal(decimal.NewFromInt(250)))
	assert.True(t, d.Totals.Balance.Equal(decimal.NewFromInt(750)))
	assert.Equal(t, FormattedTotals{Income: "$1,000.00", Expenses: "$250.00", Balance: "$750.00"}, d.Formatted)

	require.Len(t, d.Categories, 1)
	assert.Equal(t, "Food", d.Categories[0].Name)
	require.Len(t, d.Monthly, 2)
	assert.Equal(t, "Jan 24", d.Monthly[0].Label)
	assert.Equal(t, "Feb 24", d.Monthly[1].Label)

	require.Len(t, d.Transactions, 3)
	assert.Equal(t, "2024-02-01", d.Transactions[0].Date.String())
	assert.Equal(t, "Food", d.Transactions[0].CategoryName)
	assert.Equal(t, "$50.00", d.Transactions[0].Display)
	assert.Equal(t, 3, d.Count)

	require.Len(t, d.UsedCategories, 2)
	assert.Equal(t, "salary", d.UsedCategories[0].ID)
	assert.Equal(t, "food", d.UsedCategories[1].ID)
}

func TestDashboardFilterOnlyAffectsTable(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	_, _ = s.Create(ctx, draft(core.Income, "10", "salary", core.NewDate(2024, 1, 1), ""))
	_, _ = s.Create(ctx, draft(core.Expense, "4", "mystery", core.NewDate(2024, 1, 2), "Lunch"))

	d := s.Dashboard(query.Filter{Type: query.TypeExpense, Search: "lunch"})
	require.Len(t, d.Transactions, 1)
	assert.Equal(t, "Uncategorized", d.Transactions[0].CategoryName)
	assert.Equal(t, core.UncategorizedColor, d.Transactions[0].CategoryColor)
	assert.True(t, d.Totals.Income.Equal(decimal.NewFromInt(10)))
}

func TestDashboardMemoizedPerVersion(t *testing.T) {
	ctx := context.Background()
	c := &countingCache{LRUCache: cache.NewLRUCache[Dashboard](8, time.Minute)}
	s := newService(t, nil, WithCache(c))

	_, _ = s.Create(ctx, draft(core.Expense, "5", "food", core.NewDate(2024, 1, 1), ""))
	first := s.Dashboard(query.Filter{})
	second := s.Dashboard(query.Filter{})
	assert.Equal(t, 1, c.hits)
	assert.Equal(t, first.Version, second.Version)

	_, _ = s.Create(ctx, draft(core.Expense, "7", "food", core.NewDate(2024, 1, 2), ""))
	third := s.Dashboard(query.Filter{})
	assert.Equal(t, 1, c.hits, "mutation must invalidate the memo")
	assert.Len(t, third.Transactions, 2)
	assert.True(t, third.Totals.Expenses.Equal(decimal.NewFromInt(12)))
}

func TestCreateValidates(t *testing.T) {
	s := newService(t, nil)
	_, err := s.Create(context.Background(), core.Draft{Type: core.Expense, Amount: decimal.NewFromInt(1), Date: core.NewDate(2024, 1, 1)})
	assert.ErrorIs(t, err, core.ErrMissingCategory)
	assert.Equal(t, 0, s.Dashboard(query.Filter{}).Count)
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	tx, err := s.Create(ctx, draft(core.Expense, "5", "food", core.NewDate(2024, 1, 1), ""))
	require.NoError(t, err)

	updated, ok, err := s.Update(ctx, tx.ID, draft(core.Expense, "9.99", "bills", core.NewDate(2024, 1, 3), "power"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, tx.ID, updated.ID)
	got, _ := s.Get(tx.ID)
	assert.Equal(t, "bills", got.Category)

	_, ok, err = s.Update(ctx, "missing", draft(core.Expense, "1", "food", core.NewDate(2024, 1, 1), ""))
	require.NoError(t, err)
	assert.False(t, ok)

	assert.False(t, s.Delete(ctx, "missing"))
	assert.True(t, s.Delete(ctx, tx.ID))
	_, found := s.Get(tx.ID)
	assert.False(t, found)
}

func TestThemePersistence(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	s := newService(t, kv)
	assert.Equal(t, core.ThemeLight, s.Theme())

	assert.Equal(t, core.ThemeDark, s.ToggleTheme(ctx))
	reloaded := newService(t, kv)
	assert.Equal(t, core.ThemeDark, reloaded.Theme())

	_, err := reloaded.SetTheme(ctx, core.Theme("sepia"))
	assert.ErrorIs(t, err, core.ErrInvalidTheme)
	theme, err := reloaded.SetTheme(ctx, core.ThemeLight)
	require.NoError(t, err)
	assert.Equal(t, core.ThemeLight, theme)
}

func TestInvalidStoredThemeFallsBack(t *testing.T) {
	kv := storage.NewMemoryKV()
	require.NoError(t, kv.Set(context.Background(), storage.KeyTheme, []byte("neon")))
	s := newService(t, kv)
	assert.Equal(t, core.ThemeLight, s.Theme())
}

func TestPersistenceFailureKeepsSession(t *testing.T) {
	ctx := context.Background()
	s := NewTrackerService(brokenKV{}, WithLogger(quietLogger()))
	assert.Error(t, s.Load(ctx))

	_, err := s.Create(ctx, draft(core.Income, "3", "gift", core.NewDate(2024, 5, 1), ""))
	require.NoError(t, err)
	assert.Equal(t, core.ThemeDark, s.ToggleTheme(ctx))
	assert.Equal(t, 1, s.Dashboard(query.Filter{}).Count)
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	s := newService(t, nil)
	_, _ = s.Create(ctx, draft(core.Expense, "2.5", "food", core.NewDate(2024, 1, 1), `say "cheese"`))
	_, _ = s.Create(ctx, draft(core.Income, "100", "salary", core.NewDate(2024, 2, 1), ""))

	lines := strings.Split(s.Export(query.Filter{}), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[1], `,income,100,salary,2024-02-01,""`))
	assert.True(t, strings.HasSuffix(lines[2], `,expense,2.5,food,2024-01-01,"say ""cheese"""`))

	only := strings.Split(s.Export(query.Filter{Type: query.TypeExpense}), "\n")
	assert.Len(t, only, 2)
}
