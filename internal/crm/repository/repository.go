// Package repository provides pgx-backed persistence for the CRM bounded
// context. It owns durability only; business rules live in the lifecycle
// service.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a uniqueness invariant is violated, e.g.
	// a second OPEN opportunity for a contact or a second deal for one
	// opportunity.
	ErrConflict = errors.New("conflicting resource")
)

// DBTX is the subset of pgx functionality the queries need. Both *pgxpool.Pool
// and pgx.Tx satisfy it, so the same query methods serve pooled reads and
// transactional read-modify-write sequences.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries bundles all CRM query methods over a DBTX.
type Queries struct {
	db DBTX
}

// Store is the pool-backed entry point. Transition logic must go through
// Transact so that status reads and writes happen under a contact row lock.
type Store struct {
	*Queries
	pool *pgxpool.Pool
}

// New creates a new store over the connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{
		Queries: &Queries{db: pool},
		pool:    pool,
	}
}

// Transact runs fn inside a database transaction. The transaction is rolled
// back if fn returns an error and committed otherwise; fn must not retain the
// *Queries value after returning.
func (s *Store) Transact(ctx context.Context, fn func(q *Queries) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&Queries{db: tx}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// mapError converts low-level pgx errors to the repository's sentinel errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrConflict
	}
	return err
}
