package services

import (
	"context"
	"fmt"
	"log/slog"

	"gofinances/internal/amqp"
	"gofinances/internal/core"
	"gofinances/internal/store"
)

// TransactionService orchestrates transaction mutations and enforces
// the outcome-balance invariant: an outcome may never drive a user's
// total below zero. Bulk import deliberately bypasses that rule, see
// ImportService.
type TransactionService struct {
	transactions store.TransactionStore
	categories   store.CategoryStore
	events       *amqp.Client // optional, nil disables event publishing
}

func NewTransactionService(transactions store.TransactionStore, categories store.CategoryStore, events *amqp.Client) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		events:       events,
	}
}

type (
	CreateInput struct {
		Title         string
		CategoryTitle string
		Type          core.TransactionType
		Value         core.Money
		UserID        string
	}

	UpdateInput struct {
		Title *string
		Type  *core.TransactionType
		Value *core.Money
	}

	ListResult struct {
		Transactions      []core.Transaction
		TotalTransactions int
		Balance           core.Balance
	}
)

// Create validates the input, checks the balance invariant for
// outcomes before touching the store, resolves the category and
// inserts. On ErrInsufficientBalance nothing is written.
func (s *TransactionService) Create(ctx context.Context, in CreateInput) (core.Transaction, error) {
	candidate := core.Transaction{
		Title:  in.Title,
		Type:   in.Type,
		Value:  in.Value,
		UserID: in.UserID,
	}
	if err := candidate.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if in.Type == core.Outcome {
		balance, err := s.Balance(ctx, in.UserID)
		if err != nil {
			return core.Transaction{}, err
		}
		if balance.Total.Cents-in.Value.Cents < 0 {
			return core.Transaction{}, core.ErrInsufficientBalance
		}
	}

	var categoryID string
	if in.CategoryTitle != "" {
		category, err := resolveCategory(ctx, s.categories, in.CategoryTitle)
		if err != nil {
			return core.Transaction{}, err
		}
		categoryID = category.ID
	}

	created, err := s.transactions.Insert(ctx, store.CreateTransactionParams{
		Title:      in.Title,
		Type:       in.Type,
		Value:      in.Value,
		CategoryID: categoryID,
		UserID:     in.UserID,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	s.publishEvent(ctx, created.ID, created.UserID, amqp.ActionCreated)

	return created, nil
}

// Update applies a partial update. The balance invariant is not
// re-checked when type or value change; this mirrors the historical
// behavior of the API and is relied on by clients fixing typos on past
// outcomes.
func (s *TransactionService) Update(ctx context.Context, id string, in UpdateInput) (core.Transaction, error) {
	updated, err := s.transactions.Update(ctx, id, store.TransactionUpdate{
		Title: in.Title,
		Type:  in.Type,
		Value: in.Value,
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if updated == nil {
		return core.Transaction{}, core.ErrTransactionNotFound
	}
	return *updated, nil
}

// Delete removes a transaction by id. The store delete is an idempotent
// no-op, so existence is checked here to surface NotFound.
func (s *TransactionService) Delete(ctx context.Context, id, userID string) error {
	existing, err := s.transactions.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find transaction: %w", err)
	}
	if existing == nil {
		return core.ErrTransactionNotFound
	}

	if err := s.transactions.DeleteByID(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	s.publishEvent(ctx, id, userID, amqp.ActionDeleted)

	return nil
}

// List returns a user's history plus the balance. Page 0 means
// unpaginated; either way the balance covers the full transaction set,
// not just the returned window.
func (s *TransactionService) List(ctx context.Context, userID string, page int) (ListResult, error) {
	balance, err := s.Balance(ctx, userID)
	if err != nil {
		return ListResult{}, err
	}

	if page <= 0 {
		transactions, err := s.transactions.FindAllForUser(ctx, userID)
		if err != nil {
			return ListResult{}, fmt.Errorf("list transactions: %w", err)
		}
		return ListResult{
			Transactions:      transactions,
			TotalTransactions: len(transactions),
			Balance:           balance,
		}, nil
	}

	window, err := s.transactions.FindPageForUser(ctx, userID, page, store.DefaultPageSize)
	if err != nil {
		return ListResult{}, fmt.Errorf("list transaction page: %w", err)
	}
	return ListResult{
		Transactions:      window.Transactions,
		TotalTransactions: window.TotalCount,
		Balance:           balance,
	}, nil
}

// Balance recomputes the derived balance from the full transaction set.
// It is never cached.
func (s *TransactionService) Balance(ctx context.Context, userID string) (core.Balance, error) {
	transactions, err := s.transactions.FindAllForUser(ctx, userID)
	if err != nil {
		return core.Balance{}, fmt.Errorf("load transactions for balance: %w", err)
	}
	return core.ComputeBalance(transactions), nil
}

func (s *TransactionService) publishEvent(ctx context.Context, id, userID, action string) {
	if s.events == nil {
		return
	}
	msg := amqp.NewTransactionEventMessage(id, userID, action)
	if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
		// Event delivery is best effort; the mutation already happened.
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}
