package domain

import "time"

// AccountKind identifies the product type of an account.
type AccountKind string

const (
	Checking   AccountKind = "checking"
	Savings    AccountKind = "savings"
	Investment AccountKind = "investment"
)

// ValidAccountKind reports whether k is one of the known account kinds.
func ValidAccountKind(k AccountKind) bool {
	switch k {
	case Checking, Savings, Investment:
		return true
	}
	return false
}

// AllowsNegativeBalance reports whether accounts of this kind may hold a
// balance below zero. No current kind does; the hook exists so the ledger
// checks the kind rather than hard-coding the rule.
func (k AccountKind) AllowsNegativeBalance() bool {
	return false
}

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountFrozen AccountStatus = "frozen"
	AccountClosed AccountStatus = "closed"
)

// ValidAccountStatus reports whether s is one of the known account statuses.
func ValidAccountStatus(s AccountStatus) bool {
	switch s {
	case AccountActive, AccountFrozen, AccountClosed:
		return true
	}
	return false
}

// Account represents a bank account within the core domain.
//
// Balance is held in integer minor units (cents) and is written only by the
// ledger engine as part of a committed operation, with the single exception of
// the opening balance assigned at creation.
type Account struct {
	AccountID string        `json:"id"`
	Number    string        `json:"number"`
	Kind      AccountKind   `json:"kind"`
	Balance   int64         `json:"balance"`
	Status    AccountStatus `json:"status"`
	OwnerID   string        `json:"owner_id"`
	OpenedAt  time.Time     `json:"opened_at"`
}

// IsActive reports whether the account may participate in money movements.
func (a *Account) IsActive() bool {
	return a.Status == AccountActive
}
