package services

import (
	"context"
	"fmt"
	"log/slog"

	"gofinances/internal/amqp"
	"gofinances/internal/core"
	"gofinances/internal/store"
)

// ImportService loads externally parsed rows in bulk. Categories are
// reconciled first (existing rows reused, new titles created once per
// batch), then all transactions are inserted in one batch. The balance
// invariant is not applied here: imports may carry historical data that
// temporarily overdraws the total.
type ImportService struct {
	transactions store.TransactionStore
	categories   store.CategoryStore
	events       *amqp.Client // optional, nil disables event publishing
}

func NewImportService(transactions store.TransactionStore, categories store.CategoryStore, events *amqp.Client) *ImportService {
	return &ImportService{
		transactions: transactions,
		categories:   categories,
		events:       events,
	}
}

type ImportResult struct {
	Transactions []core.Transaction
	Categories   []core.Category
}

func (s *ImportService) Import(ctx context.Context, rows []core.ImportRow, userID string) (ImportResult, error) {
	if userID == "" {
		return ImportResult{}, core.ErrMissingUser
	}
	for i, row := range rows {
		if err := row.Validate(); err != nil {
			return ImportResult{}, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	if len(rows) == 0 {
		return ImportResult{}, nil
	}

	titles := make([]string, 0, len(rows))
	for _, row := range rows {
		titles = append(titles, row.CategoryTitle)
	}

	byTitle, resolved, err := resolveCategories(ctx, s.categories, titles)
	if err != nil {
		return ImportResult{}, err
	}

	params := make([]store.CreateTransactionParams, 0, len(rows))
	for _, row := range rows {
		params = append(params, store.CreateTransactionParams{
			Title:      row.Title,
			Type:       row.Type,
			Value:      row.Value,
			CategoryID: byTitle[row.CategoryTitle].ID,
			UserID:     userID,
		})
	}

	inserted, err := s.transactions.InsertMany(ctx, params)
	if err != nil {
		return ImportResult{}, fmt.Errorf("insert imported transactions: %w", err)
	}

	s.publishImportedEvents(ctx, inserted)

	slog.InfoContext(ctx, "Bulk import completed",
		"user_id", userID,
		"transactions", len(inserted),
		"categories", len(resolved))

	return ImportResult{Transactions: inserted, Categories: resolved}, nil
}

func (s *ImportService) publishImportedEvents(ctx context.Context, transactions []core.Transaction) {
	if s.events == nil {
		return
	}
	for _, t := range transactions {
		msg := amqp.NewTransactionEventMessage(t.ID, t.UserID, amqp.ActionImported)
		if err := s.events.PublishTransactionEvent(ctx, msg); err != nil {
			slog.ErrorContext(ctx, "Failed to publish import event",
				"id", t.ID, "error", err)
		}
	}
}
