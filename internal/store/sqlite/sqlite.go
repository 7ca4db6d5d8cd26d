// Package sqlite is the embedded-database store, the default backend
// for single-node deployments.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"gofinances/internal/core"
	"gofinances/internal/store"
)

type Store struct {
	db *sql.DB
}

var (
	_ store.TransactionStore = (*Store)(nil)
	_ store.CategoryStore    = (*Store)(nil)
)

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const transactionColumns = "id, title, type, value_cents, category_id, user_id, created_at, updated_at"

func (s *Store) FindByID(ctx context.Context, id string) (*core.Transaction, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)

	t, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction by id: %w", err)
	}
	return &t, nil
}

func (s *Store) FindAllForUser(ctx context.Context, userID string) ([]core.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("find transactions for user: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (s *Store) FindPageForUser(ctx context.Context, userID string, page, pageSize int) (store.TransactionPage, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM transactions WHERE user_id = ?", userID).Scan(&total)
	if err != nil {
		return store.TransactionPage{}, fmt.Errorf("count transactions for user: %w", err)
	}

	offset := (page - 1) * pageSize
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?",
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
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		t.ID, t.Title, string(t.Type), t.Value.Cents, nullableID(t.CategoryID), t.UserID, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return t, nil
}

func (s *Store) InsertMany(ctx context.Context, params []store.CreateTransactionParams) ([]core.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback()

	created := make([]core.Transaction, 0, len(params))
	for _, p := range params {
		t := newTransaction(p)
		_, err := tx.ExecContext(ctx,
			"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
			t.ID, t.Title, string(t.Type), t.Value.Cents, nullableID(t.CategoryID), t.UserID, t.CreatedAt, t.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert transaction batch: %w", err)
		}
		created = append(created, t)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert batch: %w", err)
	}
	return created, nil
}

func (s *Store) Update(ctx context.Context, id string, upd store.TransactionUpdate) (*core.Transaction, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*upd.Type))
	}
	if upd.Value != nil {
		sets = append(sets, "value_cents = ?")
		args = append(args, upd.Value.Cents)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update transaction rows affected: %w", err)
	}
	if affected == 0 {
		return nil, nil
	}

	return s.FindByID(ctx, id)
}

func (s *Store) DeleteByID(ctx context.Context, id string) error {
	// Missing rows are not an error here; the service layer checks
	// existence first when it needs to surface NotFound.
	_, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s *Store) FindByTitle(ctx context.Context, title string) (*core.Category, error) {
	var c core.Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, title FROM categories WHERE title = ? LIMIT 1", title).
		Scan(&c.ID, &c.Title)
	if err == sql.ErrNoRows {
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

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(titles)), ", ")
	args := make([]any, len(titles))
	for i, t := range titles {
		args[i] = t
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title FROM categories WHERE title IN ("+placeholders+")", args...)
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
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
		c.ID, c.Title, now, now)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (s *Store) CreateMany(ctx context.Context, titles []string) ([]core.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin category batch: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	created := make([]core.Category, 0, len(titles))
	for _, title := range titles {
		c := core.Category{ID: uuid.NewString(), Title: title}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
			c.ID, c.Title, now, now)
		if err != nil {
			return nil, fmt.Errorf("create category batch: %w", err)
		}
		created = append(created, c)
	}

	if err := tx.Commit(); err != nil {
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

func nullableID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t          core.Transaction
		typ        string
		cents      int64
		categoryID sql.NullString
	)
	err := row.Scan(&t.ID, &t.Title, &typ, &cents, &categoryID, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typ)
	t.Value = core.Money{Cents: cents}
	t.CategoryID = categoryID.String
	return t, nil
}

func collectTransactions(rows *sql.Rows) ([]core.Transaction, error) {
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
