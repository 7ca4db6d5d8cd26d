package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gofinances/internal/core"
	"gofinances/internal/store/memory"
)

func newTestImportService(t *testing.T) (*ImportService, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewImportService(st, st, nil), st
}

func importRow(title string, typ core.TransactionType, cents int64, category string) core.ImportRow {
	return core.ImportRow{
		Title:         title,
		Type:          typ,
		Value:         core.Money{Cents: cents},
		CategoryTitle: category,
	}
}

func TestImport(t *testing.T) {
	svc, st := newTestImportService(t)

	rows := []core.ImportRow{
		importRow("Loan", core.Income, 150000, "Others"),
		importRow("Website Hosting", core.Outcome, 5000, "Others"),
		importRow("Ice cream", core.Outcome, 300, "Food"),
	}

	result, err := svc.Import(context.Background(), rows, "u1")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if len(result.Transactions) != 3 {
		t.Errorf("got %d transactions, want 3", len(result.Transactions))
	}
	if len(result.Categories) != 2 {
		t.Fatalf("got %d categories, want 2", len(result.Categories))
	}
	// Categories come back in first-appearance order.
	if result.Categories[0].Title != "Others" || result.Categories[1].Title != "Food" {
		t.Errorf("category order = [%s %s], want [Others Food]",
			result.Categories[0].Title, result.Categories[1].Title)
	}
	if got := st.CategoryCount(); got != 2 {
		t.Errorf("category count = %d, want 2", got)
	}

	for _, tr := range result.Transactions {
		if tr.ID == "" || tr.CategoryID == "" {
			t.Errorf("transaction missing ids: %+v", tr)
		}
		if tr.UserID != "u1" {
			t.Errorf("user id = %q, want u1", tr.UserID)
		}
	}
}

func TestImport_ReusesExistingCategories(t *testing.T) {
	svc, st := newTestImportService(t)
	ctx := context.Background()

	first, err := svc.Import(ctx, []core.ImportRow{
		importRow("Loan", core.Income, 150000, "Others"),
	}, "u1")
	if err != nil {
		t.Fatalf("first Import() error = %v", err)
	}

	second, err := svc.Import(ctx, []core.ImportRow{
		importRow("Website Hosting", core.Outcome, 5000, "Others"),
		importRow("Ice cream", core.Outcome, 300, "Food"),
	}, "u1")
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}

	if got := st.CategoryCount(); got != 2 {
		t.Errorf("category count = %d, want 2", got)
	}
	if first.Categories[0].ID != second.Transactions[0].CategoryID {
		t.Error("second batch should reuse the category created by the first")
	}
}

func TestImport_BypassesBalanceCheck(t *testing.T) {
	svc, _ := newTestImportService(t)

	// An outcome with no prior income would be rejected by Create, but
	// import accepts it.
	result, err := svc.Import(context.Background(), []core.ImportRow{
		importRow("Old debt", core.Outcome, 100000, "Others"),
	}, "u1")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Transactions) != 1 {
		t.Errorf("got %d transactions, want 1", len(result.Transactions))
	}
}

func TestImport_InvalidRow(t *testing.T) {
	svc, st := newTestImportService(t)

	rows := []core.ImportRow{
		importRow("Loan", core.Income, 150000, "Others"),
		importRow("", core.Income, 100, "Others"),
	}

	_, err := svc.Import(context.Background(), rows, "u1")
	if !errors.Is(err, core.ErrEmptyTitle) {
		t.Fatalf("Import() error = %v, want ErrEmptyTitle", err)
	}
	if !strings.Contains(err.Error(), "row 2") {
		t.Errorf("error should name the offending row, got: %v", err)
	}
	// Validation happens before any write.
	if got := st.TransactionCount(); got != 0 {
		t.Errorf("transaction count = %d, want 0", got)
	}
	if got := st.CategoryCount(); got != 0 {
		t.Errorf("category count = %d, want 0", got)
	}
}

func TestImport_MissingUser(t *testing.T) {
	svc, _ := newTestImportService(t)

	_, err := svc.Import(context.Background(), []core.ImportRow{
		importRow("Loan", core.Income, 150000, "Others"),
	}, "")
	if !errors.Is(err, core.ErrMissingUser) {
		t.Errorf("Import() error = %v, want ErrMissingUser", err)
	}
}

func TestImport_EmptyBatch(t *testing.T) {
	svc, st := newTestImportService(t)

	result, err := svc.Import(context.Background(), nil, "u1")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(result.Transactions) != 0 || len(result.Categories) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if got := st.CategoryCount(); got != 0 {
		t.Errorf("category count = %d, want 0", got)
	}
}
