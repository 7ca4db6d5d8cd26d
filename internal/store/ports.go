// Package store defines the persistence ports the service layer depends
// on. Concrete engines live in the subpackages (memory, sqlite,
// postgres) and are injected explicitly at construction.
package store

import (
	"context"

	"gofinances/internal/core"
)

// DefaultPageSize is the page window for paginated listings.
const DefaultPageSize = 10

type (
	// CreateTransactionParams carries the caller-supplied fields of a
	// new transaction. The store generates id and timestamps.
	CreateTransactionParams struct {
		Title      string
		Type       core.TransactionType
		Value      core.Money
		CategoryID string
		UserID     string
	}

	// TransactionUpdate is a partial update. Nil fields are left
	// untouched; the category reference is not mutable through this
	// path.
	TransactionUpdate struct {
		Title *string
		Type  *core.TransactionType
		Value *core.Money
	}

	// TransactionPage is one window of a user's history plus the full
	// count for that user.
	TransactionPage struct {
		Transactions []core.Transaction
		TotalCount   int
	}

	TransactionStore interface {
		// FindByID returns (nil, nil) when no transaction has that id.
		FindByID(ctx context.Context, id string) (*core.Transaction, error)

		// FindAllForUser returns every transaction of the user, newest
		// first.
		FindAllForUser(ctx context.Context, userID string) ([]core.Transaction, error)

		// FindPageForUser returns the window at offset
		// (page-1)*pageSize, newest first. TotalCount is always the
		// full per-user count regardless of the page.
		FindPageForUser(ctx context.Context, userID string, page, pageSize int) (TransactionPage, error)

		Insert(ctx context.Context, params CreateTransactionParams) (core.Transaction, error)
		InsertMany(ctx context.Context, params []CreateTransactionParams) ([]core.Transaction, error)

		// Update applies a partial update and returns the updated row,
		// or (nil, nil) when the id does not exist.
		Update(ctx context.Context, id string, upd TransactionUpdate) (*core.Transaction, error)

		// DeleteByID is a silent no-op when the id does not exist;
		// surfacing "not found" is the service layer's job.
		DeleteByID(ctx context.Context, id string) error
	}

	CategoryStore interface {
		// FindByTitle returns (nil, nil) when no category has that
		// exact title.
		FindByTitle(ctx context.Context, title string) (*core.Category, error)

		// FindManyByTitle returns the categories whose titles match
		// any of the given ones. Missing titles are not an error.
		FindManyByTitle(ctx context.Context, titles []string) ([]core.Category, error)

		// Create inserts unconditionally; deduplication is the
		// caller's responsibility.
		Create(ctx context.Context, title string) (core.Category, error)

		CreateMany(ctx context.Context, titles []string) ([]core.Category, error)
	}
)
