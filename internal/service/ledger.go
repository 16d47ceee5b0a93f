// Package service provides business logic implementations.
package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/repository"
)

// LedgerEmitter records coin movements as fire-and-forget audit events.
// The balance mutation is the authoritative write; ledger drift on emit
// failure is an accepted inconsistency, surfaced only in logs.
type LedgerEmitter interface {
	Emit(userID string, amount int64, txType, reason string)
}

// asyncLedger appends ledger entries in the background.
type asyncLedger struct {
	repo    *repository.LedgerRepository
	timeout time.Duration
}

// NewLedgerEmitter creates a LedgerEmitter backed by the ledger table.
func NewLedgerEmitter(repo *repository.LedgerRepository) LedgerEmitter {
	return &asyncLedger{repo: repo, timeout: 5 * time.Second}
}

// Emit appends the entry asynchronously. Failures are logged and dropped.
func (l *asyncLedger) Emit(userID string, amount int64, txType, reason string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
		defer cancel()

		if _, err := l.repo.Append(ctx, userID, amount, txType, reason); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", userID).
				Str("type", txType).
				Int64("amount", amount).
				Msg("Ledger append failed; balance change is not rolled back")
		}
	}()
}
