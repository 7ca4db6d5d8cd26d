// Package memory is an in-process store used by unit tests and the
// "memory" backend. It mirrors the semantics of the SQL stores exactly:
// silent idempotent delete, absent lookups as nil results, newest-first
// ordering.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"gofinances/internal/core"
	"gofinances/internal/store"
)

type Store struct {
	mu           sync.Mutex
	transactions []core.Transaction
	categories   []core.Category
	now          func() time.Time
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.CategoryStore    = (*Store)(nil)
)

func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) FindByID(_ context.Context, id string) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.transactions {
		if t.ID == id {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) FindAllForUser(_ context.Context, userID string) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userTransactionsNewestFirst(userID), nil
}

func (s *Store) FindPageForUser(_ context.Context, userID string, page, pageSize int) (store.TransactionPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.userTransactionsNewestFirst(userID)
	total := len(all)

	offset := (page - 1) * pageSize
	if offset >= total {
		return store.TransactionPage{TotalCount: total}, nil
	}
	end := offset + pageSize
	if end > total {
		end = total
	}
	return store.TransactionPage{Transactions: all[offset:end], TotalCount: total}, nil
}

func (s *Store) Insert(_ context.Context, params store.CreateTransactionParams) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(params), nil
}

func (s *Store) InsertMany(_ context.Context, params []store.CreateTransactionParams) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]core.Transaction, 0, len(params))
	for _, p := range params {
		created = append(created, s.insertLocked(p))
	}
	return created, nil
}

func (s *Store) Update(_ context.Context, id string, upd store.TransactionUpdate) (*core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID != id {
			continue
		}
		if upd.Title != nil {
			s.transactions[i].Title = *upd.Title
		}
		if upd.Type != nil {
			s.transactions[i].Type = *upd.Type
		}
		if upd.Value != nil {
			s.transactions[i].Value = *upd.Value
		}
		s.transactions[i].UpdatedAt = s.now()
		updated := s.transactions[i]
		return &updated, nil
	}
	return nil, nil
}

func (s *Store) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			return nil
		}
	}
	// Missing id is not an error at the store layer.
	return nil
}

func (s *Store) FindByTitle(_ context.Context, title string) (*core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.Title == title {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) FindManyByTitle(_ context.Context, titles []string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		wanted[t] = struct{}{}
	}

	var out []core.Category
	for _, c := range s.categories {
		if _, ok := wanted[c.Title]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) Create(_ context.Context, title string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCategoryLocked(title), nil
}

func (s *Store) CreateMany(_ context.Context, titles []string) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]core.Category, 0, len(titles))
	for _, t := range titles {
		created = append(created, s.createCategoryLocked(t))
	}
	return created, nil
}

// CategoryCount reports the total number of stored categories. Test
// helper; not part of the store ports.
func (s *Store) CategoryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.categories)
}

// TransactionCount reports the total number of stored transactions.
func (s *Store) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func (s *Store) insertLocked(params store.CreateTransactionParams) core.Transaction {
	now := s.now()
	t := core.Transaction{
		ID:         uuid.NewString(),
		Title:      params.Title,
		Type:       params.Type,
		Value:      params.Value,
		CategoryID: params.CategoryID,
		UserID:     params.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.transactions = append(s.transactions, t)
	return t
}

func (s *Store) createCategoryLocked(title string) core.Category {
	c := core.Category{ID: uuid.NewString(), Title: title}
	s.categories = append(s.categories, c)
	return c
}

func (s *Store) userTransactionsNewestFirst(userID string) []core.Transaction {
	var out []core.Transaction
	// Walk backwards so equal timestamps keep newest-insertion-first
	// order through the stable sort below.
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].UserID == userID {
			out = append(out, s.transactions[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
