package sheets

import (
	"context"

	"gofinances/internal/core"
)

// TransactionAppender is the outbound port for the spreadsheet export.
// Append writes one transaction and returns an adapter-specific row
// reference for logging.
type TransactionAppender interface {
	Append(ctx context.Context, t core.Transaction) (rowRef string, err error)
}
