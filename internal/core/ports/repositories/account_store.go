package repositories

import (
	"context"

	"github.com/corebank/bancore/internal/core/domain"
)

// AccountStore is the durable mapping from account id/number to account
// records. It is the sole writer of balance values; callers mutate balances
// only through AdjustBalance, never by saving an account with a new balance.
type AccountStore interface {
	// SaveAccount persists a newly opened account. It fails with
	// apperrors.ErrDuplicate if the account number is already taken.
	SaveAccount(ctx context.Context, account domain.Account) error

	// FindAccountByID retrieves an account by its id, or apperrors.ErrNotFound.
	FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// FindAccountByNumber retrieves an account by its external-facing number,
	// or apperrors.ErrNotFound.
	FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error)

	// ListAccountsByOwner returns all accounts belonging to an owner, in
	// opening order.
	ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error)

	// AdjustBalance applies a signed delta to the account balance and returns
	// the updated account. transactionID names the transaction record the
	// movement belongs to, so crash recovery can attribute and unwind the
	// effects of records that never finalized. It fails with
	// apperrors.ErrNotFound if the account is unknown,
	// apperrors.ErrAccountNotActive if its status is not active,
	// apperrors.ErrInsufficientFunds if the resulting balance would be
	// negative for a kind that disallows it, and apperrors.ErrConflict if
	// expectedPriorBalance is non-nil and does not match the stored balance.
	// The check and the write are a single atomic step.
	AdjustBalance(ctx context.Context, accountID string, delta int64, transactionID string, expectedPriorBalance *int64) (*domain.Account, error)

	// SetStatus transitions the account lifecycle status and returns the
	// updated account. Accounts are never deleted and closing is terminal: a
	// transition away from closed fails with apperrors.ErrValidation, checked
	// atomically with the write.
	SetStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error)
}
