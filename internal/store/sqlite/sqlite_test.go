package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"gofinances/internal/core"
	"gofinances/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTransactionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cat, err := s.Create(ctx, "Salary")
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	created, err := s.Insert(ctx, store.CreateTransactionParams{
		Title:      "March Salary",
		Type:       core.Income,
		Value:      core.Money{Cents: 400000},
		CategoryID: cat.ID,
		UserID:     "u1",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found == nil {
		t.Fatal("inserted transaction not found")
	}
	if found.Title != "March Salary" || found.Type != core.Income || found.Value.Cents != 400000 {
		t.Errorf("round trip mismatch: %+v", found)
	}
	if found.CategoryID != cat.ID {
		t.Errorf("category id = %q, want %q", found.CategoryID, cat.ID)
	}

	absent, err := s.FindByID(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("find absent: %v", err)
	}
	if absent != nil {
		t.Errorf("lookup of unknown id = %+v, want nil", absent)
	}
}

func TestNullCategoryReference(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Insert(ctx, store.CreateTransactionParams{
		Title:  "Loose cash",
		Type:   core.Income,
		Value:  core.Money{Cents: 100},
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := s.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("find by id: %v", err)
	}
	if found.CategoryID != "" {
		t.Errorf("category id = %q, want empty", found.CategoryID)
	}
}

func TestPaginationAndCount(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var params []store.CreateTransactionParams
	for i := 0; i < 15; i++ {
		params = append(params, store.CreateTransactionParams{
			Title:  "tx",
			Type:   core.Income,
			Value:  core.Money{Cents: 100},
			UserID: "u1",
		})
	}
	if _, err := s.InsertMany(ctx, params); err != nil {
		t.Fatalf("insert many: %v", err)
	}

	page2, err := s.FindPageForUser(ctx, "u1", 2, store.DefaultPageSize)
	if err != nil {
		t.Fatalf("find page: %v", err)
	}
	if len(page2.Transactions) != 5 || page2.TotalCount != 15 {
		t.Errorf("page 2 = %d items, total %d; want 5 and 15", len(page2.Transactions), page2.TotalCount)
	}

	all, err := s.FindAllForUser(ctx, "u1")
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 15 {
		t.Errorf("find all returned %d, want 15", len(all))
	}
}

func TestUpdatePartial(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Insert(ctx, store.CreateTransactionParams{
		Title:  "iPhone",
		Type:   core.Outcome,
		Value:  core.Money{Cents: 450000},
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	newValue := core.Money{Cents: 400000}
	updated, err := s.Update(ctx, created.ID, store.TransactionUpdate{Value: &newValue})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated == nil || updated.Value.Cents != 400000 {
		t.Fatalf("update result = %+v, want value 400000", updated)
	}
	if updated.Title != "iPhone" || updated.Type != core.Outcome {
		t.Errorf("update touched unrelated fields: %+v", updated)
	}

	missing, err := s.Update(ctx, "no-such-id", store.TransactionUpdate{Value: &newValue})
	if err != nil {
		t.Fatalf("update absent: %v", err)
	}
	if missing != nil {
		t.Error("update of unknown id should return nil")
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	created, err := s.Insert(ctx, store.CreateTransactionParams{
		Title:  "tx",
		Type:   core.Income,
		Value:  core.Money{Cents: 100},
		UserID: "u1",
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := s.DeleteByID(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteByID(ctx, created.ID); err != nil {
		t.Errorf("second delete returned %v, want nil", err)
	}
}

func TestCategoryLookups(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.CreateMany(ctx, []string{"Food", "Others"}); err != nil {
		t.Fatalf("create many: %v", err)
	}

	found, err := s.FindByTitle(ctx, "Food")
	if err != nil {
		t.Fatalf("find by title: %v", err)
	}
	if found == nil || found.Title != "Food" {
		t.Fatalf("find by title = %+v", found)
	}

	none, err := s.FindByTitle(ctx, "food")
	if err != nil {
		t.Fatalf("find by title: %v", err)
	}
	if none != nil {
		t.Error("title match must be case-sensitive")
	}

	many, err := s.FindManyByTitle(ctx, []string{"Food", "Others", "Missing"})
	if err != nil {
		t.Fatalf("find many: %v", err)
	}
	if len(many) != 2 {
		t.Errorf("find many returned %d, want 2", len(many))
	}
}
