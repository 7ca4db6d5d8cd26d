package services

import (
	"context"
	"errors"
	"testing"

	"gofinances/internal/core"
	"gofinances/internal/store/memory"
)

func newTestService(t *testing.T) (*TransactionService, *memory.Store) {
	t.Helper()
	st := memory.New()
	return NewTransactionService(st, st, nil), st
}

func mustCreate(t *testing.T, svc *TransactionService, in CreateInput) core.Transaction {
	t.Helper()
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create(%+v) error = %v", in, err)
	}
	return created
}

func TestCreate_BalanceScenario(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mustCreate(t, svc, CreateInput{
		Title: "Salary", Type: core.Income,
		Value: core.Money{Cents: 400000}, UserID: "u1",
	})
	mustCreate(t, svc, CreateInput{
		Title: "Freelance", Type: core.Income,
		Value: core.Money{Cents: 400000}, UserID: "u1",
	})
	mustCreate(t, svc, CreateInput{
		Title: "Rent", Type: core.Outcome,
		Value: core.Money{Cents: 600000}, UserID: "u1",
	})

	result, err := svc.List(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(result.Transactions) != 3 {
		t.Errorf("got %d transactions, want 3", len(result.Transactions))
	}
	if result.TotalTransactions != 3 {
		t.Errorf("TotalTransactions = %d, want 3", result.TotalTransactions)
	}
	b := result.Balance
	if b.Income.Cents != 800000 || b.Outcome.Cents != 600000 || b.Total.Cents != 200000 {
		t.Errorf("balance = {income:%d outcome:%d total:%d}, want {800000 600000 200000}",
			b.Income.Cents, b.Outcome.Cents, b.Total.Cents)
	}
}

func TestCreate_InsufficientBalance(t *testing.T) {
	svc, st := newTestService(t)

	mustCreate(t, svc, CreateInput{
		Title: "Salary", Type: core.Income,
		Value: core.Money{Cents: 400000}, UserID: "u1",
	})

	_, err := svc.Create(context.Background(), CreateInput{
		Title: "Car", Type: core.Outcome,
		Value: core.Money{Cents: 450000}, UserID: "u1",
	})
	if !errors.Is(err, core.ErrInsufficientBalance) {
		t.Fatalf("Create() error = %v, want ErrInsufficientBalance", err)
	}

	// Nothing may be written when the invariant fails.
	if got := st.TransactionCount(); got != 1 {
		t.Errorf("transaction count = %d, want 1", got)
	}
}

func TestCreate_OutcomeExactlyDrainsBalance(t *testing.T) {
	svc, _ := newTestService(t)

	mustCreate(t, svc, CreateInput{
		Title: "Salary", Type: core.Income,
		Value: core.Money{Cents: 400000}, UserID: "u1",
	})
	mustCreate(t, svc, CreateInput{
		Title: "Everything", Type: core.Outcome,
		Value: core.Money{Cents: 400000}, UserID: "u1",
	})

	balance, err := svc.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance.Total.Cents != 0 {
		t.Errorf("total = %d, want 0", balance.Total.Cents)
	}
}

func TestCreate_BalanceIsPerUser(t *testing.T) {
	svc, _ := newTestService(t)

	mustCreate(t, svc, CreateInput{
		Title: "Salary", Type: core.Income,
		Value: core.Money{Cents: 100000}, UserID: "rich",
	})

	_, err := svc.Create(context.Background(), CreateInput{
		Title: "Dinner", Type: core.Outcome,
		Value: core.Money{Cents: 5000}, UserID: "broke",
	})
	if !errors.Is(err, core.ErrInsufficientBalance) {
		t.Errorf("Create() error = %v, want ErrInsufficientBalance", err)
	}
}

func TestCreate_ResolvesCategory(t *testing.T) {
	svc, st := newTestService(t)

	first := mustCreate(t, svc, CreateInput{
		Title: "Groceries", CategoryTitle: "Food", Type: core.Income,
		Value: core.Money{Cents: 1000}, UserID: "u1",
	})
	second := mustCreate(t, svc, CreateInput{
		Title: "Restaurant", CategoryTitle: "Food", Type: core.Income,
		Value: core.Money{Cents: 2000}, UserID: "u1",
	})

	if first.CategoryID == "" {
		t.Fatal("first transaction should have a category id")
	}
	if first.CategoryID != second.CategoryID {
		t.Errorf("same title resolved to different categories: %q vs %q",
			first.CategoryID, second.CategoryID)
	}
	if got := st.CategoryCount(); got != 1 {
		t.Errorf("category count = %d, want 1", got)
	}
}

func TestCreate_CategoryTitlesAreCaseSensitive(t *testing.T) {
	svc, st := newTestService(t)

	a := mustCreate(t, svc, CreateInput{
		Title: "Groceries", CategoryTitle: "Food", Type: core.Income,
		Value: core.Money{Cents: 1000}, UserID: "u1",
	})
	b := mustCreate(t, svc, CreateInput{
		Title: "Snacks", CategoryTitle: "food", Type: core.Income,
		Value: core.Money{Cents: 1000}, UserID: "u1",
	})

	if a.CategoryID == b.CategoryID {
		t.Error("differently cased titles should resolve to distinct categories")
	}
	if got := st.CategoryCount(); got != 2 {
		t.Errorf("category count = %d, want 2", got)
	}
}

func TestCreate_WithoutCategory(t *testing.T) {
	svc, st := newTestService(t)

	created := mustCreate(t, svc, CreateInput{
		Title: "Gift", Type: core.Income,
		Value: core.Money{Cents: 5000}, UserID: "u1",
	})
	if created.CategoryID != "" {
		t.Errorf("category id = %q, want empty", created.CategoryID)
	}
	if got := st.CategoryCount(); got != 0 {
		t.Errorf("category count = %d, want 0", got)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name string
		in   CreateInput
		want error
	}{
		{
			name: "empty title",
			in:   CreateInput{Title: "  ", Type: core.Income, Value: core.Money{Cents: 100}, UserID: "u1"},
			want: core.ErrEmptyTitle,
		},
		{
			name: "invalid type",
			in:   CreateInput{Title: "x", Type: "transfer", Value: core.Money{Cents: 100}, UserID: "u1"},
			want: core.ErrInvalidType,
		},
		{
			name: "zero value",
			in:   CreateInput{Title: "x", Type: core.Income, Value: core.Money{}, UserID: "u1"},
			want: core.ErrInvalidAmount,
		},
		{
			name: "missing user",
			in:   CreateInput{Title: "x", Type: core.Income, Value: core.Money{Cents: 100}},
			want: core.ErrMissingUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	svc, _ := newTestService(t)

	created := mustCreate(t, svc, CreateInput{
		Title: "Salry", Type: core.Income,
		Value: core.Money{Cents: 400000}, UserID: "u1",
	})

	title := "Salary"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{Title: &title})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != "Salary" {
		t.Errorf("title = %q, want %q", updated.Title, "Salary")
	}
	if updated.Value.Cents != 400000 {
		t.Errorf("value changed unexpectedly: %d", updated.Value.Cents)
	}
}

func TestUpdate_DoesNotRecheckBalance(t *testing.T) {
	svc, _ := newTestService(t)

	mustCreate(t, svc, CreateInput{
		Title: "Salary", Type: core.Income,
		Value: core.Money{Cents: 1000}, UserID: "u1",
	})
	outcome := mustCreate(t, svc, CreateInput{
		Title: "Coffee", Type: core.Outcome,
		Value: core.Money{Cents: 500}, UserID: "u1",
	})

	// Raising a past outcome above the remaining balance is allowed.
	bigger := core.Money{Cents: 5000}
	if _, err := svc.Update(context.Background(), outcome.ID, UpdateInput{Value: &bigger}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	balance, err := svc.Balance(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Balance() error = %v", err)
	}
	if balance.Total.Cents != -4000 {
		t.Errorf("total = %d, want -4000", balance.Total.Cents)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	title := "x"
	_, err := svc.Update(context.Background(), "no-such-id", UpdateInput{Title: &title})
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("Update() error = %v, want ErrTransactionNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	svc, st := newTestService(t)

	created := mustCreate(t, svc, CreateInput{
		Title: "Salary", Type: core.Income,
		Value: core.Money{Cents: 1000}, UserID: "u1",
	})

	if err := svc.Delete(context.Background(), created.ID, "u1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if got := st.TransactionCount(); got != 0 {
		t.Errorf("transaction count = %d, want 0", got)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	err := svc.Delete(context.Background(), "no-such-id", "u1")
	if !errors.Is(err, core.ErrTransactionNotFound) {
		t.Errorf("Delete() error = %v, want ErrTransactionNotFound", err)
	}
}

func TestList_Paginated(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		mustCreate(t, svc, CreateInput{
			Title: "Salary", Type: core.Income,
			Value: core.Money{Cents: 1000}, UserID: "u1",
		})
	}

	page1, err := svc.List(ctx, "u1", 1)
	if err != nil {
		t.Fatalf("List(page 1) error = %v", err)
	}
	if len(page1.Transactions) != 10 {
		t.Errorf("page 1 size = %d, want 10", len(page1.Transactions))
	}
	if page1.TotalTransactions != 15 {
		t.Errorf("page 1 total = %d, want 15", page1.TotalTransactions)
	}
	// Balance covers the full set even on a partial page.
	if page1.Balance.Income.Cents != 15000 {
		t.Errorf("page 1 income = %d, want 15000", page1.Balance.Income.Cents)
	}

	page2, err := svc.List(ctx, "u1", 2)
	if err != nil {
		t.Fatalf("List(page 2) error = %v", err)
	}
	if len(page2.Transactions) != 5 {
		t.Errorf("page 2 size = %d, want 5", len(page2.Transactions))
	}

	page3, err := svc.List(ctx, "u1", 3)
	if err != nil {
		t.Fatalf("List(page 3) error = %v", err)
	}
	if len(page3.Transactions) != 0 {
		t.Errorf("page 3 size = %d, want 0", len(page3.Transactions))
	}
	if page3.TotalTransactions != 15 {
		t.Errorf("page 3 total = %d, want 15", page3.TotalTransactions)
	}
}

func TestList_EmptyUser(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.List(context.Background(), "nobody", 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Transactions) != 0 || result.TotalTransactions != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
	if result.Balance.Total.Cents != 0 {
		t.Errorf("total = %d, want 0", result.Balance.Total.Cents)
	}
}
