package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the subset of *sql.DB and *sql.Tx used by the repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ErrSessionDone is returned when a finished session is committed again.
var ErrSessionDone = errors.New("session already finished")

// Session is a unit of work scoped to one request. Changes become visible
// only after Commit; Close discards anything left uncommitted.
type Session struct {
	tx   *sql.Tx
	done bool
}

// OpenSession begins a transaction on db.
func OpenSession(ctx context.Context, db *sql.DB) (*Session, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin session: %w", err)
	}
	return &Session{tx: tx}, nil
}

func (s *Session) Categories() *CategoryRepository {
	return NewCategoryRepository(s.tx)
}

func (s *Session) Products() *ProductRepository {
	return NewProductRepository(s.tx)
}

// Commit makes the session's changes durable. It may be called once.
func (s *Session) Commit() error {
	if s.done {
		return ErrSessionDone
	}
	s.done = true
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", translate(err))
	}
	return nil
}

// Close rolls back an uncommitted session. It is safe to call after Commit.
func (s *Session) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
