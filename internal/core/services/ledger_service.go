package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
	"github.com/corebank/bancore/internal/middleware"
)

// DefaultLockWait bounds how long an operation waits for an account lock
// before failing with apperrors.ErrTimeout.
const DefaultLockWait = 5 * time.Second

// LedgerService validates and applies money movements as atomic units against
// the account store and the transaction log. It is the only component allowed
// to move balances, and it enforces the conservation invariant: a transfer
// either applies both legs or leaves both accounts untouched.
//
// The engine never pre-checks balances; AccountStore.AdjustBalance is the
// atomic gate for insufficient funds, so there is no window between check and
// apply.
type LedgerService struct {
	accounts portsrepo.AccountStore
	log      portsrepo.TransactionLog
	locks    *accountLocker
}

// NewLedgerService creates a new LedgerService. A non-positive lockWait falls
// back to DefaultLockWait.
func NewLedgerService(accounts portsrepo.AccountStore, log portsrepo.TransactionLog, lockWait time.Duration) *LedgerService {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &LedgerService{
		accounts: accounts,
		log:      log,
		locks:    newAccountLocker(lockWait),
	}
}

// Deposit credits amount (minor units) to the account and returns the
// completed transaction record.
func (s *LedgerService) Deposit(ctx context.Context, accountID string, amount int64, description string) (*domain.TransactionRecord, error) {
	return s.singleLeg(ctx, domain.Deposit, accountID, amount, description)
}

// Withdraw debits amount (minor units) from the account and returns the
// completed transaction record. Insufficient funds surface from the store as
// the record is applied, leaving a failed record and an untouched balance.
func (s *LedgerService) Withdraw(ctx context.Context, accountID string, amount int64, description string) (*domain.TransactionRecord, error) {
	return s.singleLeg(ctx, domain.Withdrawal, accountID, amount, description)
}

// singleLeg runs the shared deposit/withdrawal state machine: lock, validate,
// append pending, adjust balance, finalize.
func (s *LedgerService) singleLeg(ctx context.Context, kind domain.TransactionKind, accountID string, amount int64, description string) (*domain.TransactionRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}

	if err := s.locks.Lock(ctx, accountID); err != nil {
		return nil, err
	}
	defer s.locks.Unlock(accountID)

	account, err := s.accounts.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, account.Number, account.Status)
	}

	record := domain.TransactionRecord{
		TransactionID: uuid.NewString(),
		Kind:          kind,
		Amount:        amount,
		Status:        domain.StatusPending,
		Description:   description,
		CreatedAt:     time.Now().UTC(),
	}
	delta := amount
	if kind == domain.Withdrawal {
		record.OriginAccountID = accountID
		delta = -amount
	} else {
		record.DestinationAccountID = accountID
	}

	// Log-first ordering: a storage fault here aborts before any balance
	// mutation, so no balance ever changes without a record.
	appended, err := s.log.Append(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("appending %s record: %w", kind, err)
	}

	if _, err := s.accounts.AdjustBalance(ctx, accountID, delta, appended.TransactionID, nil); err != nil {
		s.finalize(ctx, appended.TransactionID, domain.StatusFailed)
		return nil, err
	}

	if err := s.finalize(ctx, appended.TransactionID, domain.StatusCompleted); err != nil {
		return nil, err
	}
	appended.Status = domain.StatusCompleted
	return appended, nil
}

// Transfer moves amount (minor units) from origin to destination atomically
// and returns the completed transaction record.
func (s *LedgerService) Transfer(ctx context.Context, originID, destinationID string, amount int64, description string) (*domain.TransactionRecord, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if originID == destinationID {
		return nil, apperrors.ErrSameAccount
	}

	origin, err := s.accounts.FindAccountByID(ctx, originID)
	if err != nil {
		return nil, fmt.Errorf("origin account: %w", err)
	}
	destination, err := s.accounts.FindAccountByID(ctx, destinationID)
	if err != nil {
		return nil, fmt.Errorf("destination account: %w", err)
	}
	if !origin.IsActive() {
		return nil, fmt.Errorf("%w: origin account %s is %s", apperrors.ErrAccountNotActive, origin.Number, origin.Status)
	}
	if !destination.IsActive() {
		return nil, fmt.Errorf("%w: destination account %s is %s", apperrors.ErrAccountNotActive, destination.Number, destination.Status)
	}

	record := domain.TransactionRecord{
		TransactionID:        uuid.NewString(),
		Kind:                 domain.Transfer,
		OriginAccountID:      originID,
		DestinationAccountID: destinationID,
		Amount:               amount,
		Status:               domain.StatusPending,
		Description:          description,
		CreatedAt:            time.Now().UTC(),
	}
	appended, err := s.log.Append(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("appending transfer record: %w", err)
	}

	// Both locks, fixed global order. A timeout here leaves a pending record
	// behind, so it must be finalized failed before returning.
	release, err := s.locks.LockPair(ctx, originID, destinationID)
	if err != nil {
		s.finalize(ctx, appended.TransactionID, domain.StatusFailed)
		return nil, err
	}
	defer release()

	if _, err := s.accounts.AdjustBalance(ctx, originID, -amount, appended.TransactionID, nil); err != nil {
		// Destination untouched; nothing to unwind.
		s.finalize(ctx, appended.TransactionID, domain.StatusFailed)
		return nil, err
	}

	if _, err := s.accounts.AdjustBalance(ctx, destinationID, amount, appended.TransactionID, nil); err != nil {
		// Origin was already debited: compensate before finalizing, or the
		// conservation invariant breaks.
		if _, compErr := s.accounts.AdjustBalance(ctx, originID, amount, appended.TransactionID, nil); compErr != nil {
			middleware.GetLoggerFromCtx(ctx).Error("Transfer compensation failed; manual reconciliation required",
				slog.String("transaction_id", appended.TransactionID),
				slog.String("origin_account_id", originID),
				slog.Int64("amount", amount),
				slog.String("apply_error", err.Error()),
				slog.String("compensation_error", compErr.Error()),
			)
			s.finalize(ctx, appended.TransactionID, domain.StatusFailed)
			return nil, fmt.Errorf("%w: transaction %s debited origin %s by %d without matching credit: %v",
				apperrors.ErrIrreconcilable, appended.TransactionID, originID, amount, compErr)
		}
		s.finalize(ctx, appended.TransactionID, domain.StatusFailed)
		return nil, err
	}

	if err := s.finalize(ctx, appended.TransactionID, domain.StatusCompleted); err != nil {
		return nil, err
	}
	appended.Status = domain.StatusCompleted
	return appended, nil
}

// ListByAccount returns the transaction history of an account, newest first.
func (s *LedgerService) ListByAccount(ctx context.Context, accountID string, filter portsrepo.ListFilter) ([]domain.TransactionRecord, error) {
	return s.log.ListByAccount(ctx, accountID, filter)
}

// RecentAll returns the most recent records across all accounts.
func (s *LedgerService) RecentAll(ctx context.Context, limit int) ([]domain.TransactionRecord, error) {
	return s.log.RecentAll(ctx, limit)
}

// finalize moves a pending record to its terminal status. A failure here is a
// storage fault on an already-applied (or already-rejected) operation: it is
// logged loudly and returned, never swallowed, so that no record is silently
// left pending.
func (s *LedgerService) finalize(ctx context.Context, transactionID string, status domain.TransactionStatus) error {
	if err := s.log.UpdateStatus(ctx, transactionID, status); err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to finalize transaction record",
			slog.String("transaction_id", transactionID),
			slog.String("target_status", string(status)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("finalizing transaction %s as %s: %w", transactionID, status, err)
	}
	return nil
}
