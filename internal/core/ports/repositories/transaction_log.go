package repositories

import (
	"context"
	"time"

	"github.com/corebank/bancore/internal/core/domain"
)

// ListFilter narrows a transaction listing. A nil Since means no lower bound;
// a Limit of zero or less means no limit. Callers serving paged reads must
// pass an explicit Limit.
type ListFilter struct {
	Since *time.Time
	Limit int
}

// TransactionLog is the append-only, ordered record of every money movement.
type TransactionLog interface {
	// Append writes a new record, assigns its sequence number, and returns the
	// stored copy. Append fails only on a storage fault, never with a
	// business error.
	Append(ctx context.Context, record domain.TransactionRecord) (*domain.TransactionRecord, error)

	// UpdateStatus finalizes a pending record. Only pending->completed and
	// pending->failed are legal; anything else fails with
	// apperrors.ErrInvalidTransition.
	UpdateStatus(ctx context.Context, transactionID string, next domain.TransactionStatus) error

	// ListByAccount returns the records naming the account as origin or
	// destination, newest first. The read is a snapshot: it never shows a
	// record twice and never omits one that existed when the read started.
	ListByAccount(ctx context.Context, accountID string, filter ListFilter) ([]domain.TransactionRecord, error)

	// RecentAll returns the most recent records across all accounts, newest
	// first, for reporting.
	RecentAll(ctx context.Context, limit int) ([]domain.TransactionRecord, error)
}
