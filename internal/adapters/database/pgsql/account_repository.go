package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

type accountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a pgx-backed AccountStore.
func NewAccountRepository(pool *pgxpool.Pool) portsrepo.AccountStore {
	return &accountRepository{pool: pool}
}

func (r *accountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (account_id, number, kind, balance, status, owner_id, opened_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err := r.pool.Exec(ctx, query,
		account.AccountID,
		account.Number,
		account.Kind,
		account.Balance,
		account.Status,
		account.OwnerID,
		account.OpenedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.Number)
		}
		return fmt.Errorf("failed to save account %s: %w", account.AccountID, err)
	}
	return nil
}

const accountColumns = `account_id, number, kind, balance, status, owner_id, opened_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var acc domain.Account
	err := row.Scan(
		&acc.AccountID,
		&acc.Number,
		&acc.Kind,
		&acc.Balance,
		&acc.Status,
		&acc.OwnerID,
		&acc.OpenedAt,
	)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	acc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account id %s", apperrors.ErrNotFound, accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	return acc, nil
}

func (r *accountRepository) FindAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE number = $1;`
	acc, err := scanAccount(r.pool.QueryRow(ctx, query, number))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: account number %s", apperrors.ErrNotFound, number)
		}
		return nil, fmt.Errorf("failed to find account by number %s: %w", number, err)
	}
	return acc, nil
}

func (r *accountRepository) ListAccountsByOwner(ctx context.Context, ownerID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY opened_at;`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts for owner %s: %w", ownerID, err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, *acc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// AdjustBalance applies the delta in a single guarded UPDATE so the
// insufficient-funds check and the write cannot race. When the UPDATE matches
// no row a follow-up read diagnoses which business error to return. The
// transaction id is not persisted here; each adjustment commits atomically,
// so there is no partial effect for recovery to attribute.
func (r *accountRepository) AdjustBalance(ctx context.Context, accountID string, delta int64, _ string, expectedPriorBalance *int64) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2
		WHERE account_id = $1
		  AND status = $3
		  AND balance + $2 >= 0
		  AND ($4::bigint IS NULL OR balance = $4)
		RETURNING ` + accountColumns + `;`

	acc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID, delta, domain.AccountActive, expectedPriorBalance))
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to adjust balance for account %s: %w", accountID, err)
	}

	current, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.AccountActive {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, current.Number, current.Status)
	}
	if expectedPriorBalance != nil && current.Balance != *expectedPriorBalance {
		return nil, fmt.Errorf("%w: expected balance %d, have %d", apperrors.ErrConflict, *expectedPriorBalance, current.Balance)
	}
	return nil, fmt.Errorf("%w: account %s balance %d, requested %d", apperrors.ErrInsufficientFunds, current.Number, current.Balance, delta)
}

// SetStatus transitions the lifecycle status. The closed-is-terminal rule
// lives in the WHERE clause, so two racing transitions cannot reopen an
// account that just closed.
func (r *accountRepository) SetStatus(ctx context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error) {
	query := `
		UPDATE accounts
		SET status = $2
		WHERE account_id = $1
		  AND status <> $3
		RETURNING ` + accountColumns + `;`

	acc, err := scanAccount(r.pool.QueryRow(ctx, query, accountID, status, domain.AccountClosed))
	if err == nil {
		return acc, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to set status for account %s: %w", accountID, err)
	}

	current, err := r.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: account %s is closed", apperrors.ErrValidation, current.Number)
}
