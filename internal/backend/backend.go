// Package backend selects and wires the persistence layer from config.
package backend

import (
	"context"
	"fmt"

	"gofinances/internal/config"
	"gofinances/internal/store"
	"gofinances/internal/store/memory"
	"gofinances/internal/store/postgres"
	"gofinances/internal/store/sqlite"
)

type Type string

const (
	MemoryBackend   Type = "memory"
	SQLiteBackend   Type = "sqlite"
	PostgresBackend Type = "postgres"
)

func (t Type) String() string {
	return string(t)
}

func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources, e.g. closing the database.
type CleanupFunc func() error

// Result bundles the two store ports plus the cleanup hook. Every
// backend implements both ports with a single underlying store.
type Result struct {
	Transactions store.TransactionStore
	Categories   store.CategoryStore
	Cleanup      CleanupFunc
}

// Open creates the store pair for the configured backend.
func Open(ctx context.Context, cfg *config.Config) (*Result, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid backend type: %s", cfg.DataBackend)
	}

	switch backendType {
	case MemoryBackend:
		st := memory.New()
		return &Result{Transactions: st, Categories: st, Cleanup: nil}, nil

	case SQLiteBackend:
		st, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite backend: %w", err)
		}
		return &Result{Transactions: st, Categories: st, Cleanup: st.Close}, nil

	case PostgresBackend:
		st, err := postgres.New(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres backend: %w", err)
		}
		return &Result{Transactions: st, Categories: st, Cleanup: st.Close}, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", backendType)
	}
}
