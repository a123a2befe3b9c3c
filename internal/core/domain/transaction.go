package domain

import "time"

// TransactionKind identifies the type of money movement a record describes.
type TransactionKind string

const (
	Deposit    TransactionKind = "deposit"
	Withdrawal TransactionKind = "withdrawal"
	Transfer   TransactionKind = "transfer"
)

// TransactionStatus is the lifecycle state of a transaction record.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
	StatusReversed  TransactionStatus = "reversed"
)

// CanTransitionTo reports whether a record in status s may move to next.
// The log is append-only: once a record reaches completed or failed it is
// frozen forever.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusCompleted || next == StatusFailed
}

// Direction labels a transaction relative to a viewing account.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
	// DirectionNone means the viewing account is not a party to the record.
	DirectionNone Direction = ""
)

// TransactionRecord is a single entry in the append-only transaction log.
//
// Sequence is assigned by the log on append and is strictly increasing; it
// orders records for balance reconstruction and audit. Amount is positive
// integer minor units; the kind and the origin/destination fields carry the
// sign of the movement.
type TransactionRecord struct {
	TransactionID        string            `json:"id"`
	Sequence             int64             `json:"sequence"`
	Kind                 TransactionKind   `json:"kind"`
	OriginAccountID      string            `json:"origin_account_id,omitempty"`
	DestinationAccountID string            `json:"destination_account_id,omitempty"`
	Amount               int64             `json:"amount"`
	Status               TransactionStatus `json:"status"`
	Description          string            `json:"description,omitempty"`
	CreatedAt            time.Time         `json:"created_at"`
}

// DirectionFor classifies the record as a credit or debit from the point of
// view of viewingAccountID. Destination membership wins, so a record that
// somehow names the same account on both sides is still labeled a credit.
func (t *TransactionRecord) DirectionFor(viewingAccountID string) Direction {
	if viewingAccountID == "" {
		return DirectionNone
	}
	if t.DestinationAccountID == viewingAccountID {
		return DirectionCredit
	}
	if t.OriginAccountID == viewingAccountID {
		return DirectionDebit
	}
	return DirectionNone
}

// Involves reports whether the account is a party to the record, as origin
// or destination.
func (t *TransactionRecord) Involves(accountID string) bool {
	return t.OriginAccountID == accountID || t.DestinationAccountID == accountID
}
