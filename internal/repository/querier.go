// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the subset of pgx operations the repositories need.
// Both *pgxpool.Pool and pgx.Tx satisfy it, so every repository method can run
// standalone or inside a transaction started by WithTx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// WithTx runs fn inside a database transaction. The transaction is rolled
// back if fn returns an error or panics, and committed otherwise.
// Multi-step read-modify-write sequences (draw gating, coin mutation,
// dismantle) must go through here.
func WithTx(ctx context.Context, pool *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		// No-op after a successful commit.
		_ = tx.Rollback(ctx)
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Common errors for repository operations.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInsufficientCoins  = errors.New("insufficient coin balance")
	ErrCardNotFound       = errors.New("card not found")
	ErrMemberNotFound     = errors.New("member not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrSubmissionNotFound = errors.New("submission not found")
)
