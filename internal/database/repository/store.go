package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jask/kanbanai/internal/database"
	"github.com/jask/kanbanai/internal/kanban"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the sqlite implementation of kanban.Store.
type Store struct {
	*BoardRepo
	*ListRepo
	*TaskRepo

	db   *sql.DB
	inTx bool
}

// NewStore returns a store over db.
func NewStore(db *sql.DB) *Store {
	return newStore(db, db, false)
}

func newStore(db *sql.DB, q DBTX, inTx bool) *Store {
	return &Store{
		BoardRepo: &BoardRepo{db: q},
		ListRepo:  &ListRepo{db: q},
		TaskRepo:  &TaskRepo{db: q},
		db:        db,
		inTx:      inTx,
	}
}

// Atomically runs fn against a store bound to one transaction. Nested calls
// reuse the outer transaction.
func (s *Store) Atomically(ctx context.Context, fn func(kanban.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(newStore(s.db, tx, true))
	})
}

var (
	_ kanban.Store      = (*Store)(nil)
	_ kanban.Transactor = (*Store)(nil)
)

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeIDs(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode id list: %w", err)
	}
	return out, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return kanban.ErrNotFound
	}
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return kanban.ErrNotFound
	}
	return nil
}
