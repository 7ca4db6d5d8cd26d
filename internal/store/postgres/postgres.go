// Package postgres is the shared-database store, for deployments where
// several instances point at one PostgreSQL server.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"gofinances/internal/core"
	"gofinances/internal/store"
)

type Store struct {
	pool *pgxpool.Pool
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.CategoryStore    = (*Store)(nil)
)

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := runMigrations(databaseURL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

const transactionColumns = "id, title, type, value_cents, category_id, user_id, created_at, updated_at"

func (s *Store) FindByID(ctx context.Context, id string) (*core.Transaction, error) {
	row := s.pool.QueryRow(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = $1", id)

	t, err := scanTransaction(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction by id: %w", err)
	}
	return &t, nil
}

func (s *Store) FindAllForUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("find transactions for user: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *Store) FindPageForUser(ctx context.Context, userID string, page, pageSize int) (store.TransactionPage, error) {
	var total int
	err := s.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM transactions WHERE user_id = $1", userID).Scan(&total)
	if err != nil {
		return store.TransactionPage{}, fmt.Errorf("count transactions for user: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.pool.Query(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		userID, pageSize, offset)
	if err != nil {
		return store.TransactionPage{}, fmt.Errorf("find transaction page for user: %w", err)
	}
	defer rows.Close()

	transactions, err := collectTransactions(rows)
	if err != nil {
		return store.TransactionPage{}, err
	}
	return store.TransactionPage{Transactions: transactions, TotalCount: total}, nil
}

func (s *Store) Insert(ctx context.Context, params store.CreateTransactionParams) (core.Transaction, error) {
	t := newTransaction(params)
	_, err := s.pool.Exec(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		t.ID, t.Title, string(t.Type), t.Value.Cents, nullableID(t.CategoryID), t.UserID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *Store) InsertMany(ctx context.Context, params []store.CreateTransactionParams) ([]core.Transaction, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	created := make([]core.Transaction, 0, len(params))
	for _, p := range params {
		t := newTransaction(p)
		_, err := tx.Exec(ctx,
			"INSERT INTO transactions ("+transactionColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
			t.ID, t.Title, string(t.Type), t.Value.Cents, nullableID(t.CategoryID), t.UserID, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert transaction batch: %w", err)
		}
		created = append(created, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit insert batch: %w", err)
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, upd store.TransactionUpdate) (*core.Transaction, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		args = append(args, *upd.Title)
		sets = append(sets, fmt.Sprintf("title = $%d", len(args)))
	}
	if upd.Type != nil {
		args = append(args, string(*upd.Type))
		sets = append(sets, fmt.Sprintf("type = $%d", len(args)))
	}
	if upd.Value != nil {
		args = append(args, upd.Value.Cents)
		sets = append(sets, fmt.Sprintf("value_cents = $%d", len(args)))
	}
	args = append(args, id)

	res, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE transactions SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	if res.RowsAffected() == 0 {
		return nil, nil
	}

	return s.FindByID(ctx, id)
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *Store) FindByTitle(ctx context.Context, title string) (*core.Category, error) {
	var c core.Category
	err := s.pool.QueryRow(ctx,
		"SELECT id, title FROM categories WHERE title = $1 LIMIT 1", title).
		Scan(&c.ID, &c.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by title: %w", err)
	}
	return &c, nil
}

func (s *Store) FindManyByTitle(ctx context.Context, titles []string) ([]core.Category, error) {
	if len(titles) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		"SELECT id, title FROM categories WHERE title = ANY($1)", titles)
	if err != nil {
		return nil, fmt.Errorf("find categories by title: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, title string) (core.Category, error) {
	c := core.Category{ID: uuid.NewString(), Title: title}
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx,
		"INSERT INTO categories (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)",
		c.ID, c.Title, now, now)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) CreateMany(ctx context.Context, titles []string) ([]core.Category, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin category batch: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	created := make([]core.Category, 0, len(titles))
	for _, title := range titles {
		c := core.Category{ID: uuid.NewString(), Title: title}
		_, err := tx.Exec(ctx,
			"INSERT INTO categories (id, title, created_at, updated_at) VALUES ($1, $2, $3, $4)",
			c.ID, c.Title, now, now)
		if err != nil {
			return nil, fmt.Errorf("create category batch: %w", err)
		}
		created = append(created, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit category batch: %w", err)
	}
	return created, nil
}

func newTransaction(params store.CreateTransactionParams) core.Transaction {
	now := time.Now().UTC()
	return core.Transaction{
		ID:         uuid.NewString(),
		Title:      params.Title,
		Type:       params.Type,
		Value:      params.Value,
		CategoryID: params.CategoryID,
		UserID:     params.UserID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func nullableID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func scanTransaction(row pgx.Row) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		cents      int64
		categoryID *string
	)
	err := row.Scan(&t.ID, &t.Title, &typ, &cents, &categoryID, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Value = core.Money{Cents: cents}
	if categoryID != nil {
		t.CategoryID = *categoryID
	}
	return t, nil
}

func collectTransactions(rows pgx.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
