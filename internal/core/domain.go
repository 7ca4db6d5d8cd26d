package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Outcome TransactionType = "outcome"
)

type (
	TransactionType string

	Transaction struct {
		ID         string
		Title      string
		Type       TransactionType
		Value      Money
		CategoryID string // empty when the transaction has no category
		UserID     string
		CreatedAt  time.Time
		UpdatedAt  time.Time
	}

	// Category titles are globally unique (case-sensitive exact match).
	// Categories are shared across users and never deleted here.
	Category struct {
		ID    string
		Title string
	}

	// Balance is derived from a user's transactions at query time,
	// never persisted.
	Balance struct {
		Income  Money
		Outcome Money
		Total   Money
	}

	// ImportRow is one parsed row of a bulk import file.
	ImportRow struct {
		Title         string
		Type          TransactionType
		Value         Money
		CategoryTitle string
	}
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrEmptyTitle          = errors.New("empty title")
	ErrTitleTooLong        = errors.New("title too long (max 200 characters)")
	ErrInvalidType         = errors.New("invalid transaction type")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrMissingUser         = errors.New("missing user id")
	ErrEmptyCategoryTitle  = errors.New("empty category title")
)

func (t TransactionType) IsValid() bool {
	switch t {
	case Income, Outcome:
		return true
	default:
		return false
	}
}

func (t Transaction) Validate() error {
	if len(strings.TrimSpace(t.Title)) == 0 {
		return ErrEmptyTitle
	}
	if len(t.Title) > 200 {
		return ErrTitleTooLong
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if err := t.Value.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.UserID) == "" {
		return ErrMissingUser
	}
	return nil
}

func (r ImportRow) Validate() error {
	if len(strings.TrimSpace(r.Title)) == 0 {
		return ErrEmptyTitle
	}
	if !r.Type.IsValid() {
		return ErrInvalidType
	}
	if err := r.Value.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(r.CategoryTitle) == "" {
		return ErrEmptyCategoryTitle
	}
	return nil
}
