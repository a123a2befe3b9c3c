package domain

// OwnerSummary aggregates an owner's position for the dashboard: total balance
// across all their accounts, the month-to-date money flow and a short tail of
// recent activity. All amounts are minor units.
type OwnerSummary struct {
	OwnerID            string
	TotalBalance       int64
	TotalAccounts      int
	ActiveAccounts     int
	MonthlyIncome      int64
	MonthlyExpenses    int64
	RecentTransactions []TransactionRecord
}
