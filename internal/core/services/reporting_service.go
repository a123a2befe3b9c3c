package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
)

// recentSummaryLimit is how many transactions the dashboard summary carries.
const recentSummaryLimit = 5

// ReportingService computes read-only dashboard aggregates over the account
// store and the transaction log. It never mutates anything.
type ReportingService struct {
	accounts portsrepo.AccountStore
	log      portsrepo.TransactionLog
}

// NewReportingService creates a new ReportingService.
func NewReportingService(accounts portsrepo.AccountStore, log portsrepo.TransactionLog) *ReportingService {
	return &ReportingService{accounts: accounts, log: log}
}

// OwnerSummary aggregates the owner's position: total balance, account counts,
// month-to-date income and expenses, and the most recent transactions across
// all of the owner's accounts.
//
// Income counts completed credits from outside the owner's accounts (deposits
// and inbound transfers); expenses count completed debits leaving them
// (withdrawals and outbound transfers). A transfer between two accounts of the
// same owner moves nothing in or out and is excluded from both.
func (s *ReportingService) OwnerSummary(ctx context.Context, ownerID string) (*domain.OwnerSummary, error) {
	accounts, err := s.accounts.ListAccountsByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts for owner %s: %w", ownerID, err)
	}

	owned := make(map[string]bool, len(accounts))
	summary := &domain.OwnerSummary{
		OwnerID:       ownerID,
		TotalAccounts: len(accounts),
	}
	for _, account := range accounts {
		owned[account.AccountID] = true
		summary.TotalBalance += account.Balance
		if account.Status == domain.AccountActive {
			summary.ActiveAccounts++
		}
	}

	// Month-to-date sums read every record since the month started, unbounded,
	// so a busy account is never undercounted.
	monthStart := startOfMonth(time.Now().UTC())
	counted := make(map[string]bool)
	for _, account := range accounts {
		records, err := s.log.ListByAccount(ctx, account.AccountID, portsrepo.ListFilter{Since: &monthStart})
		if err != nil {
			return nil, fmt.Errorf("listing transactions for account %s: %w", account.Number, err)
		}
		for _, record := range records {
			// A transfer between two owned accounts shows up in both listings.
			if counted[record.TransactionID] {
				continue
			}
			counted[record.TransactionID] = true
			if record.Status != domain.StatusCompleted {
				continue
			}
			inbound := owned[record.DestinationAccountID]
			outbound := owned[record.OriginAccountID]
			switch {
			case inbound && !outbound:
				summary.MonthlyIncome += record.Amount
			case outbound && !inbound:
				summary.MonthlyExpenses += record.Amount
			}
		}
	}

	// The recent tail only needs the newest few per account; taking the
	// per-account head and merging keeps the read bounded.
	seen := make(map[string]bool)
	var recent []domain.TransactionRecord
	for _, account := range accounts {
		records, err := s.log.ListByAccount(ctx, account.AccountID, portsrepo.ListFilter{Limit: recentSummaryLimit})
		if err != nil {
			return nil, fmt.Errorf("listing recent transactions for account %s: %w", account.Number, err)
		}
		for _, record := range records {
			if seen[record.TransactionID] {
				continue
			}
			seen[record.TransactionID] = true
			recent = append(recent, record)
		}
	}
	sort.Slice(recent, func(i, j int) bool { return recent[i].Sequence > recent[j].Sequence })
	if len(recent) > recentSummaryLimit {
		recent = recent[:recentSummaryLimit]
	}
	summary.RecentTransactions = recent

	return summary, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
