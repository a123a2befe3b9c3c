package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrAccountNotActive indicates a money movement targeting a frozen or closed account.
var ErrAccountNotActive = errors.New("account is not active")

// ErrInsufficientFunds indicates that applying a debit would drive the balance negative.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrSameAccount indicates a transfer where origin and destination are the same account.
var ErrSameAccount = errors.New("origin and destination accounts are the same")

// ErrConflict indicates that an optimistic concurrency guard tripped: the prior
// balance supplied by the caller no longer matches the stored balance.
var ErrConflict = errors.New("concurrent modification detected")

// ErrTimeout indicates that an account lock could not be acquired within the bounded wait.
var ErrTimeout = errors.New("lock wait timed out")

// ErrInvalidTransition indicates a transaction status transition other than
// pending->completed or pending->failed.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrStorageFault indicates a failure of the underlying durable store.
var ErrStorageFault = errors.New("storage fault")

// ErrIrreconcilable indicates that compensation after a partial transfer failed.
// Balances may disagree with the transaction log until someone reconciles them
// by hand; this error must never be swallowed.
var ErrIrreconcilable = errors.New("irreconcilable ledger state")
