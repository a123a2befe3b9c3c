package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
)

const (
	accountNumberLength = 16
	// numberRetries bounds how often account opening retries on a generated
	// number collision before giving up.
	numberRetries = 5
)

// AccountService handles account lifecycle operations: opening, lookup and
// status transitions. Balance mutations belong to LedgerService.
type AccountService struct {
	accounts portsrepo.AccountStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts portsrepo.AccountStore) *AccountService {
	return &AccountService{accounts: accounts}
}

// OpenAccount creates a new account of the given kind for an owner. The
// opening balance (minor units) must be non-negative and is the only balance
// write that does not go through the ledger engine.
func (s *AccountService) OpenAccount(ctx context.Context, kind domain.AccountKind, ownerID string, openingBalance int64) (*domain.Account, error) {
	if !domain.ValidAccountKind(kind) {
		return nil, fmt.Errorf("%w: unknown account kind %q", apperrors.ErrValidation, kind)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", apperrors.ErrValidation)
	}
	if openingBalance < 0 {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", apperrors.ErrValidation)
	}

	for attempt := 0; attempt < numberRetries; attempt++ {
		number, err := generateAccountNumber()
		if err != nil {
			return nil, fmt.Errorf("generating account number: %w", err)
		}

		account := domain.Account{
			AccountID: uuid.NewString(),
			Number:    number,
			Kind:      kind,
			Balance:   openingBalance,
			Status:    domain.AccountActive,
			OwnerID:   ownerID,
			OpenedAt:  time.Now().UTC(),
		}
		err = s.accounts.SaveAccount(ctx, account)
		if err == nil {
			return &account, nil
		}
		if !errors.Is(err, apperrors.ErrDuplicate) {
			return nil, fmt.Errorf("saving account: %w", err)
		}
		// Number collision; generate a fresh one and retry.
	}
	return nil, fmt.Errorf("%w: could not assign a unique account number", apperrors.ErrStorageFault)
}

// GetAccountByID retrieves an account by its id.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.FindAccountByID(ctx, accountID)
}

// GetAccountByNumber retrieves an account by its external-facing number.
func (s *AccountService) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return s.accounts.FindAccountByNumber(ctx, number)
}

// ListAccountsByOwner returns all accounts belonging to an owner.
func (s *AccountService) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	return s.accounts.ListAccountsByOwner(ctx, ownerID)
}

// SetStatus transitions the account lifecycle status. Closed is terminal:
// accounts are never deleted and never reopened, which preserves the
// referential integrity of the transaction log. The store enforces the
// terminal rule atomically with the write, so concurrent transitions cannot
// reopen a closing account.
func (s *AccountService) SetStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error) {
	if !domain.ValidAccountStatus(status) {
		return nil, fmt.Errorf("%w: unknown account status %q", apperrors.ErrValidation, status)
	}
	return s.accounts.SetStatus(ctx, accountID, status)
}

// generateAccountNumber produces a random 16-digit account number. Uniqueness
// is enforced by the store; callers retry on collision.
func generateAccountNumber() (string, error) {
	digits := make([]byte, accountNumberLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = '0' + byte(n.Int64())
	}
	return string(digits), nil
}
