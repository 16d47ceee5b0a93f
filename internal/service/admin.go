package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hibikineko/airona-cult/internal/model"
	"github.com/hibikineko/airona-cult/internal/pkg/lock"
	"github.com/hibikineko/airona-cult/internal/repository"
)

// ErrZeroAmount rejects coin adjustments that would do nothing.
var ErrZeroAmount = errors.New("adjustment amount must be non-zero")

// AdminService handles privileged operations. Capability checks happen in
// the middleware; by the time a call lands here the caller is an admin.
type AdminService struct {
	users   *repository.UserRepository
	ledger  LedgerEmitter
	entries *repository.LedgerRepository
	locks   *lock.UserLock
}

// NewAdminService creates a new AdminService instance.
func NewAdminService(users *repository.UserRepository, ledger LedgerEmitter, entries *repository.LedgerRepository, locks *lock.UserLock) *AdminService {
	return &AdminService{users: users, ledger: ledger, entries: entries, locks: locks}
}

// AdjustCoins grants or deducts coins on a user's balance. Deductions clamp
// at zero rather than failing, so an admin can always zero out an account.
func (s *AdminService) AdjustCoins(ctx context.Context, adminID, userID string, amount int64, reason string) (*model.User, error) {
	if amount == 0 {
		return nil, ErrZeroAmount
	}

	s.locks.Lock(userID)
	defer s.locks.Unlock(userID)

	user, err := s.users.AdjustCoins(ctx, userID, amount)
	if err != nil {
		return nil, err
	}

	txType := model.TxTypeAdminGrant
	if amount < 0 {
		txType = model.TxTypeAdminDeduct
	}
	s.ledger.Emit(userID, amount, txType, reason)

	log.Info().
		Str("admin_id", adminID).
		Str("user_id", userID).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("Admin coin adjustment")

	return user, nil
}

// Ledger returns a user's coin transaction history, newest first.
func (s *AdminService) Ledger(ctx context.Context, userID string, limit int) ([]model.CoinTransaction, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.entries.ListByUser(ctx, userID, limit)
}

// SetRole updates a user's stored role label.
func (s *AdminService) SetRole(ctx context.Context, adminID, userID, role string) error {
	if role != model.RoleMember && role != model.RoleAdmin {
		return fmt.Errorf("unknown role %q", role)
	}

	if err := s.users.SetRole(ctx, userID, role); err != nil {
		return err
	}

	log.Info().
		Str("admin_id", adminID).
		Str("user_id", userID).
		Str("role", role).
		Msg("User role updated")
	return nil
}
