package backend

import (
	"context"

	"tracker/internal/storage"
)

// CleanupFunc releases backend resources.
type CleanupFunc func() error

// BackendResult contains the KV backend and its cleanup function
type BackendResult struct {
	KV      storage.KV
	Type    BackendType
	Cleanup CleanupFunc
}

// Close runs Cleanup if set.
func (r *BackendResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type         BackendType
	SQLiteDBPath string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
