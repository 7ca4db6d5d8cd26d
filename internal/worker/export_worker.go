// Package worker contains the background consumer that mirrors ledger
// events into a spreadsheet.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"gofinances/internal/amqp"
	"gofinances/internal/sheets"
	"gofinances/internal/store"
)

// ExportWorker handles transaction events and appends the affected
// transactions to a spreadsheet. Deletions are logged but not mirrored;
// the sheet is an append-only audit trail.
type ExportWorker struct {
	transactions store.TransactionStore
	appender     sheets.TransactionAppender
}

func NewExportWorker(transactions store.TransactionStore, appender sheets.TransactionAppender) *ExportWorker {
	return &ExportWorker{
		transactions: transactions,
		appender:     appender,
	}
}

// HandleEvent processes a single transaction event. Returning an error
// requeues the message, so unrecoverable situations (transaction gone,
// unknown action) are logged and swallowed instead.
func (w *ExportWorker) HandleEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionImported:
		return w.exportTransaction(ctx, msg)
	case amqp.ActionDeleted:
		slog.InfoContext(ctx, "Transaction deleted, sheet row kept",
			"id", msg.ID, "user_id", msg.UserID)
		return nil
	default:
		slog.WarnContext(ctx, "Ignoring event with unknown action",
			"id", msg.ID, "action", msg.Action)
		return nil
	}
}

func (w *ExportWorker) exportTransaction(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	transaction, err := w.transactions.FindByID(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("load transaction %s: %w", msg.ID, err)
	}
	if transaction == nil {
		// Deleted between publish and consume. Nothing to export.
		slog.WarnContext(ctx, "Transaction no longer exists, skipping export",
			"id", msg.ID, "action", msg.Action)
		return nil
	}

	ref, err := w.appender.Append(ctx, *transaction)
	if err != nil {
		return fmt.Errorf("append transaction %s to sheet: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Exported transaction to sheet",
		"id", msg.ID,
		"action", msg.Action,
		"row_ref", ref)

	return nil
}
