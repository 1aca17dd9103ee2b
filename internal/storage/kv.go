// Package storage provides the durable key-value backends the tracker persists into.
package storage

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyTheme        = "theme"
	KeyTransactions = "transactions"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// KV is a durable string key-value store.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
