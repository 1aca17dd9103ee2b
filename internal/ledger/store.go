// Package ledger holds the transaction collection and mirrors it to durable storage.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"tracker/internal/core"
	applog "tracker/internal/log"
	"tracker/internal/storage"
)

// Store is the in-memory transaction collection. It is the source of truth for the
// session; every mutation is mirrored to the KV backend on a best-effort basis.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	items   []core.Transaction
	index   map[string]int
	version uint64

	kv     storage.KV
	logger *slog.Logger
	newID  func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the uuid generator, mainly for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewStore creates an empty store. kv may be nil, in which case nothing is persisted.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		index:  make(map[string]int),
		kv:     kv,
		logger: slog.Default(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted snapshot. A missing key yields an
// empty collection; a backend or decode failure is returned and leaves the store empty.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.index = make(map[string]int)
	s.version++

	if s.kv == nil {
		return nil
	}
	data, err := s.kv.Get(ctx, storage.KeyTransactions)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	txs, err := DecodeSnapshot(data)
	if err != nil {
		return err
	}
	for _, t := range txs {
		if _, dup := s.index[t.ID]; dup {
			s.logger.WarnContext(ctx, "Skipping duplicate transaction id in snapshot",
				applog.FieldComponent, applog.ComponentLedger, applog.FieldTransactionID, t.ID)
			continue
		}
		s.index[t.ID] = len(s.items)
		s.items = append(s.items, t)
	}

	s.logger.InfoContext(ctx, "Transactions loaded",
		applog.FieldComponent, applog.ComponentLedger, applog.FieldCount, len(s.items))
	return nil
}

// Add assigns a fresh id to the draft and appends it.
func (s *Store) Add(ctx context.Context, d core.Draft) core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	for {
		if _, taken := s.index[id]; !taken && id != "" {
			break
		}
		id = s.newID()
	}

	t := d.WithID(id)
	s.index[id] = len(s.items)
	s.items = append(s.items, t)
	s.version++
	s.persistLocked(ctx, applog.OpCreate)
	return t
}

// Update replaces the transaction with the same id in place. It reports whether a
// transaction matched; when none does the collection is left untouched.
func (s *Store) Update(ctx context.Context, t core.Transaction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[t.ID]
	if !ok {
		return false
	}
	s.items[i] = t
	s.version++
	s.persistLocked(ctx, applog.OpUpdate)
	return true
}

// Remove deletes the transaction with the given id, reporting whether it existed.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
	s.version++
	s.persistLocked(ctx, applog.OpDelete)
	return true
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...)
}

// Snapshot returns a copy of the collection together with the version it was taken at.
func (s *Store) Snapshot() ([]core.Transaction, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), s.version
}

// Get returns the transaction with the given id.
func (s *Store) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return core.Transaction{}, false
	}
	return s.items[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Version increases on every mutation and on Load.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// persistLocked writes the current collection. Failures are logged only: the
// in-memory state stays authoritative. Caller holds s.mu.
func (s *Store) persistLocked(ctx context.Context, op string) {
	if s.kv == nil {
		return
	}
	data, err := EncodeSnapshot(s.items)
	if err == nil {
		err = s.kv.Set(ctx, storage.KeyTransactions, data)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist transactions, keeping in-memory state",
			applog.FieldComponent, applog.ComponentStorage,
			applog.FieldOperation, op,
			applog.FieldCount, len(s.items),
			applog.FieldError, err)
	}
}
