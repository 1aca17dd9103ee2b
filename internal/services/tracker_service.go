package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tracker/internal/cache"
	"tracker/internal/core"
	"tracker/internal/export"
	"tracker/internal/ledger"
	applog "tracker/internal/log"
	"tracker/internal/query"
	"tracker/internal/report"
	"tracker/internal/storage"
)

// Row is a table line: the stored transaction plus its resolved category.
type Row struct {
	core.Transaction
	CategoryName  string `json:"category_name"`
	CategoryColor string `json:"category_color"`
	Display       string `json:"display_amount"`
}

// FormattedTotals carries the summary cards as USD strings.
type FormattedTotals struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Balance  string `json:"balance"`
}

// Dashboard is everything the main view renders. Aggregates cover the whole
// collection; Transactions is the filtered, date-descending table.
type Dashboard struct {
	Totals         core.Totals          `json:"totals"`
	Formatted      FormattedTotals      `json:"formatted"`
	Categories     []core.CategoryTotal `json:"categories"`
	Monthly        []core.MonthBucket   `json:"monthly"`
	Transactions   []Row                `json:"transactions"`
	UsedCategories []core.Category      `json:"used_categories"`
	Count          int                  `json:"count"`
	Version        uint64               `json:"version"`
}

// TrackerService is the application state: transaction store, catalog and theme.
type TrackerService struct {
	store   *ledger.Store
	catalog core.Catalog
	kv      storage.KV
	cache   cache.Cache[Dashboard]
	logger  *applog.Logger

	mu    sync.RWMutex
	theme core.Theme

	storeOpts []ledger.Option
}

// Option customizes a TrackerService.
type Option func(*TrackerService)

// WithCache memoizes dashboards. Without it every call recomputes.
func WithCache(c cache.Cache[Dashboard]) Option {
	return func(s *TrackerService) { s.cache = c }
}

func WithCatalog(c core.Catalog) Option {
	return func(s *TrackerService) { s.catalog = c }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *TrackerService) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStoreOptions forwards options to the underlying ledger.Store.
func WithStoreOptions(opts ...ledger.Option) Option {
	return func(s *TrackerService) { s.storeOpts = append(s.storeOpts, opts...) }
}

// NewTrackerService builds the service over kv. kv may be nil for a purely
// in-memory session.
func NewTrackerService(kv storage.KV, opts ...Option) *TrackerService {
	s := &TrackerService{
		catalog: core.DefaultCatalog(),
		kv:      kv,
		logger:  applog.New(applog.Config{Component: applog.ComponentService}),
		theme:   core.ThemeLight,
	}
	for _, opt := range opts {
		opt(s)
	}
	storeOpts := append([]ledger.Option{ledger.WithLogger(s.logger.Logger)}, s.storeOpts...)
	s.store = ledger.NewStore(kv, storeOpts...)
	return s
}

// Load restores theme and transactions from storage. A corrupt theme value falls
// back to light; a corrupt transaction snapshot is returned as an error.
func (s *TrackerService) Load(ctx context.Context) error {
	s.loadTheme(ctx)
	if err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	s.invalidate()
	return nil
}

func (s *TrackerService) loadTheme(ctx context.Context) {
	theme := core.ThemeLight
	if s.kv != nil {
		raw, err := s.kv.Get(ctx, storage.KeyTheme)
		switch {
		case errors.Is(err, storage.ErrNotFound):
		case err != nil:
			s.logger.WarnContext(ctx, "Failed to read theme, using default",
				applog.FieldKey, storage.KeyTheme, applog.FieldError, err)
		default:
			parsed, perr := core.ParseTheme(string(raw))
			if perr != nil {
				s.logger.WarnContext(ctx, "Stored theme is invalid, using default",
					applog.FieldTheme, string(raw))
			} else {
				theme = parsed
			}
		}
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
}

// Catalog returns the category catalog.
func (s *TrackerService) Catalog() core.Catalog { return s.catalog }

// Theme returns the current theme.
func (s *TrackerService) Theme() core.Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

// SetTheme stores the theme in memory and mirrors it to storage.
func (s *TrackerService) SetTheme(ctx context.Context, theme core.Theme) (core.Theme, error) {
	if _, err := core.ParseTheme(string(theme)); err != nil {
		return s.Theme(), err
	}
	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()
	s.persistTheme(ctx, theme)
	return theme, nil
}

// ToggleTheme flips light and dark and returns the new theme.
func (s *TrackerService) ToggleTheme(ctx context.Context) core.Theme {
	s.mu.Lock()
	s.theme = s.theme.Toggle()
	theme := s.theme
	s.mu.Unlock()
	s.persistTheme(ctx, theme)
	return theme
}

func (s *TrackerService) persistTheme(ctx context.Context, theme core.Theme) {
	if s.kv == nil {
		return
	}
	if err := s.kv.Set(ctx, storage.KeyTheme, []byte(theme)); err != nil {
		fields := applog.NewFields()
		fields[applog.FieldTheme] = string(theme)
		applog.NewStructuredLogger(s.logger).LogError(ctx, "Failed to persist theme, keeping in-memory value",
			err, applog.ComponentStorage, applog.OpSetTheme, fields)
	}
}

// Create validates the draft and adds it to the store.
func (s *TrackerService) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, err
	}
	t := s.store.Add(ctx, d)
	s.invalidate()
	s.logChange(ctx, applog.OpCreate, t)
	return t, nil
}

// Update replaces the transaction with id. It returns false when no such
// transaction exists; that case is not an error.
func (s *TrackerService) Update(ctx context.Context, id string, d core.Draft) (core.Transaction, bool, error) {
	if err := d.Validate(); err != nil {
		return core.Transaction{}, false, err
	}
	t := d.WithID(id)
	if !s.store.Update(ctx, t) {
		return core.Transaction{}, false, nil
	}
	s.invalidate()
	s.logChange(ctx, applog.OpUpdate, t)
	return t, true, nil
}

// Delete removes the transaction with id, reporting whether it existed.
func (s *TrackerService) Delete(ctx context.Context, id string) bool {
	t, _ := s.store.Get(id)
	if !s.store.Remove(ctx, id) {
		return false
	}
	s.invalidate()
	s.logChange(ctx, applog.OpDelete, t)
	return true
}

// Get returns a single transaction.
func (s *TrackerService) Get(id string) (core.Transaction, bool) {
	return s.store.Get(id)
}

// Transactions returns the filtered, date-descending view.
func (s *TrackerService) Transactions(f query.Filter) []core.Transaction {
	return query.Apply(s.store.All(), f)
}

// Dashboard computes the full view for f, memoized per store version.
func (s *TrackerService) Dashboard(f query.Filter) Dashboard {
	txs, version := s.store.Snapshot()
	key := fmt.Sprintf("%d|%s", version, f.Key())
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d
		}
	}

	d := s.buildDashboard(txs, version, f)
	if s.cache != nil {
		s.cache.Set(key, d)
	}
	return d
}

func (s *TrackerService) buildDashboard(txs []core.Transaction, version uint64, f query.Filter) Dashboard {
	totals := report.ComputeTotals(txs)
	filtered := query.Apply(txs, f)

	rows := make([]Row, len(filtered))
	for i, t := range filtered {
		cat := core.Resolve(s.catalog, t.Category)
		rows[i] = Row{Transaction: t, CategoryName: cat.Name, CategoryColor: cat.Color, Display: core.FormatUSD(t.Amount)}
	}

	used := query.UsedCategories(txs)
	usedCats := make([]core.Category, len(used))
	for i, id := range used {
		usedCats[i] = core.Resolve(s.catalog, id)
	}

	return Dashboard{
		Totals: totals,
		Formatted: FormattedTotals{
			Income:   core.FormatUSD(totals.Income),
			Expenses: core.FormatUSD(totals.Expenses),
			Balance:  core.FormatUSD(totals.Balance),
		},
		Categories:     report.CategoryBreakdown(txs, s.catalog),
		Monthly:        report.MonthlySeries(txs),
		Transactions:   rows,
		UsedCategories: usedCats,
		Count:          len(txs),
		Version:        version,
	}
}

// Export renders the filtered view as CSV.
func (s *TrackerService) Export(f query.Filter) string {
	return export.ToCSV(s.Transactions(f))
}

// invalidate drops memoized dashboards. Keys already carry the store version,
// purging just frees the stale entries early.
func (s *TrackerService) invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

func (s *TrackerService) logChange(ctx context.Context, op string, t core.Transaction) {
	applog.NewStructuredLogger(s.logger).LogTransactionChanged(ctx, op,
		t.ID, string(t.Type), t.Amount.String(), t.Category, t.Date.String())
}
