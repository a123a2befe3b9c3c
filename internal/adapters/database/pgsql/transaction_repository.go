package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
)

const defaultListLimit = 50

type transactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a pgx-backed TransactionLog. The table is
// append-only: rows are inserted once and only their status column ever
// changes, under the transition rules enforced by UpdateStatus.
func NewTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionLog {
	return &transactionRepository{pool: pool}
}

const transactionColumns = `transaction_id, sequence, kind, origin_account_id, destination_account_id, amount, status, description, created_at`

func scanTransaction(row pgx.Row) (*domain.TransactionRecord, error) {
	var rec domain.TransactionRecord
	var origin, destination *string
	err := row.Scan(
		&rec.TransactionID,
		&rec.Sequence,
		&rec.Kind,
		&origin,
		&destination,
		&rec.Amount,
		&rec.Status,
		&rec.Description,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if origin != nil {
		rec.OriginAccountID = *origin
	}
	if destination != nil {
		rec.DestinationAccountID = *destination
	}
	return &rec, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *transactionRepository) Append(ctx context.Context, record domain.TransactionRecord) (*domain.TransactionRecord, error) {
	query := `
		INSERT INTO transactions (transaction_id, kind, origin_account_id, destination_account_id, amount, status, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING sequence;`

	err := r.pool.QueryRow(ctx, query,
		record.TransactionID,
		record.Kind,
		nullable(record.OriginAccountID),
		nullable(record.DestinationAccountID),
		record.Amount,
		record.Status,
		record.Description,
		record.CreatedAt,
	).Scan(&record.Sequence)
	if err != nil {
		return nil, fmt.Errorf("%w: appending transaction %s: %v", apperrors.ErrStorageFault, record.TransactionID, err)
	}
	return &record, nil
}

// UpdateStatus transitions a record out of pending. The WHERE clause makes
// the transition at-most-once even under concurrent finalizers; a zero row
// count is then diagnosed into not-found vs invalid-transition.
func (r *transactionRepository) UpdateStatus(ctx context.Context, transactionID string, next domain.TransactionStatus) error {
	if !domain.StatusPending.CanTransitionTo(next) {
		return fmt.Errorf("%w: pending -> %s", apperrors.ErrInvalidTransition, next)
	}

	query := `UPDATE transactions SET status = $2 WHERE transaction_id = $1 AND status = $3;`
	tag, err := r.pool.Exec(ctx, query, transactionID, next, domain.StatusPending)
	if err != nil {
		return fmt.Errorf("%w: updating status of transaction %s: %v", apperrors.ErrStorageFault, transactionID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var current domain.TransactionStatus
	err = r.pool.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1;`, transactionID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: transaction id %s", apperrors.ErrNotFound, transactionID)
	}
	if err != nil {
		return fmt.Errorf("failed to read transaction %s: %w", transactionID, err)
	}
	return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current, next)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, accountID string, filter portsrepo.ListFilter) ([]domain.TransactionRecord, error) {
	// LIMIT NULL means no limit in PostgreSQL, matching the port's contract
	// for a non-positive Limit.
	var limit *int
	if filter.Limit > 0 {
		limit = &filter.Limit
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE (origin_account_id = $1 OR destination_account_id = $1)
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		ORDER BY sequence DESC
		LIMIT $3::bigint;`

	rows, err := r.pool.Query(ctx, query, accountID, filter.Since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for account %s: %w", accountID, err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func (r *transactionRepository) RecentAll(ctx context.Context, limit int) ([]domain.TransactionRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `SELECT ` + transactionColumns + ` FROM transactions ORDER BY sequence DESC LIMIT $1;`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent transactions: %w", err)
	}
	defer rows.Close()

	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.TransactionRecord, error) {
	records := []domain.TransactionRecord{}
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return records, nil
}
