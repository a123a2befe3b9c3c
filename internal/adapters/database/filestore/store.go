// Package filestore implements the AccountStore and TransactionLog ports on
// top of plain files: a key-addressed snapshot for account records and an
// append-only, fsync'd journal for every money movement. Replaying the journal
// over the snapshot reconstructs identical balances, so the store survives a
// crash mid-operation.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
)

const (
	accountsFile = "accounts.json"
	journalFile  = "ledger.journal"

	defaultListLimit = 50
)

// journal entry types.
const (
	entryAppend = "append"
	entryStatus = "status"
	entryAdjust = "adjust"
)

// accountRecord is the durable shape of an account. The snapshot carries the
// opening balance only; the current balance is reconstructed from the journal.
type accountRecord struct {
	AccountID      string               `json:"id"`
	Number         string               `json:"number"`
	Kind           domain.AccountKind   `json:"kind"`
	Status         domain.AccountStatus `json:"status"`
	OwnerID        string               `json:"owner_id"`
	OpenedAt       time.Time            `json:"opened_at"`
	OpeningBalance int64                `json:"opening_balance"`
}

// journalEntry is one line of the ledger journal. Adjust entries carry the id
// of the transaction record they belong to, so recovery can unwind the
// effects of a record that never finalized.
type journalEntry struct {
	Type      string                    `json:"type"`
	Record    *domain.TransactionRecord `json:"record,omitempty"`
	RecordID  string                    `json:"record_id,omitempty"`
	Status    domain.TransactionStatus  `json:"status,omitempty"`
	AccountID string                    `json:"account_id,omitempty"`
	Delta     int64                     `json:"delta,omitempty"`
}

// Store is a file-backed implementation of both storage ports. All state is
// held in memory under one RWMutex; every mutation is made durable before it
// is applied.
type Store struct {
	mu sync.RWMutex

	dir      string
	journal  *journal
	accounts map[string]*domain.Account // keyed by account id
	byNumber map[string]string          // account number -> account id
	opening  map[string]int64           // account id -> opening balance
	records  []domain.TransactionRecord // append order
	byID     map[string]int             // transaction id -> index into records
	adjusts  map[string][]journalEntry  // transaction id -> applied adjust entries
	seq      int64
}

var (
	_ portsrepo.AccountStore   = (*Store)(nil)
	_ portsrepo.TransactionLog = (*Store)(nil)
)

// Open loads the snapshot and replays the journal from dir, creating both
// files on first use. Any record left pending by a crash is finalized as
// failed so that no operation stays pending across restarts.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	s := &Store{
		dir:      dir,
		accounts: make(map[string]*domain.Account),
		byNumber: make(map[string]string),
		opening:  make(map[string]int64),
		byID:     make(map[string]int),
		adjusts:  make(map[string][]journalEntry),
	}

	if err := s.loadAccounts(); err != nil {
		return nil, err
	}

	j, err := openJournal(filepath.Join(dir, journalFile))
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	s.journal = j

	if err := s.replay(); err != nil {
		j.Close()
		return nil, err
	}
	if err := s.failLeftoverPending(); err != nil {
		j.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the journal file handle.
func (s *Store) Close() error {
	return s.journal.Close()
}

func (s *Store) loadAccounts() error {
	data, err := os.ReadFile(filepath.Join(s.dir, accountsFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading accounts snapshot: %w", err)
	}

	var snapshot map[string]accountRecord
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decoding accounts snapshot: %w", err)
	}
	for id, rec := range snapshot {
		s.accounts[id] = &domain.Account{
			AccountID: rec.AccountID,
			Number:    rec.Number,
			Kind:      rec.Kind,
			Balance:   rec.OpeningBalance,
			Status:    rec.Status,
			OwnerID:   rec.OwnerID,
			OpenedAt:  rec.OpenedAt,
		}
		s.byNumber[rec.Number] = id
		s.opening[id] = rec.OpeningBalance
	}
	return nil
}

func (s *Store) replay() error {
	return s.journal.Replay(func(raw json.RawMessage) error {
		var entry journalEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			return fmt.Errorf("decoding journal entry: %w", err)
		}
		switch entry.Type {
		case entryAppend:
			if entry.Record == nil {
				return fmt.Errorf("journal append entry without record")
			}
			s.records = append(s.records, *entry.Record)
			s.byID[entry.Record.TransactionID] = len(s.records) - 1
			if entry.Record.Sequence > s.seq {
				s.seq = entry.Record.Sequence
			}
		case entryStatus:
			idx, ok := s.byID[entry.RecordID]
			if !ok {
				return fmt.Errorf("journal status entry for unknown record %s", entry.RecordID)
			}
			s.records[idx].Status = entry.Status
		case entryAdjust:
			account, ok := s.accounts[entry.AccountID]
			if !ok {
				return fmt.Errorf("journal adjust entry for unknown account %s", entry.AccountID)
			}
			account.Balance += entry.Delta
			if entry.RecordID != "" {
				s.adjusts[entry.RecordID] = append(s.adjusts[entry.RecordID], entry)
			}
		default:
			return fmt.Errorf("unknown journal entry type %q", entry.Type)
		}
		return nil
	})
}

// failLeftoverPending finalizes records a crash left pending. Any balance
// adjustments the record had already applied are reversed first, newest
// first, so a transfer interrupted between its two legs leaves both balances
// as they were: both legs or neither. The reversals are journaled like any
// other adjustment, keeping the replay property intact.
func (s *Store) failLeftoverPending() error {
	for i := range s.records {
		if s.records[i].Status != domain.StatusPending {
			continue
		}
		id := s.records[i].TransactionID

		applied := s.adjusts[id]
		for j := len(applied) - 1; j >= 0; j-- {
			reversal := journalEntry{
				Type:      entryAdjust,
				RecordID:  id,
				AccountID: applied[j].AccountID,
				Delta:     -applied[j].Delta,
			}
			if err := s.journal.Append(reversal); err != nil {
				return fmt.Errorf("%w: reversing partial effect of record %s: %v", apperrors.ErrStorageFault, id, err)
			}
			s.accounts[applied[j].AccountID].Balance += reversal.Delta
		}
		if len(applied) > 0 {
			slog.Warn("Reversed partial balance effects of an unfinalized transaction during recovery",
				slog.String("transaction_id", id),
				slog.Int("adjustments_reversed", len(applied)),
			)
		}

		entry := journalEntry{Type: entryStatus, RecordID: id, Status: domain.StatusFailed}
		if err := s.journal.Append(entry); err != nil {
			return fmt.Errorf("%w: finalizing recovered record: %v", apperrors.ErrStorageFault, err)
		}
		s.records[i].Status = domain.StatusFailed
	}
	return nil
}

// writeSnapshot persists the account records atomically via temp file and
// rename. The caller holds the write lock.
func (s *Store) writeSnapshot() error {
	snapshot := make(map[string]accountRecord, len(s.accounts))
	for id, account := range s.accounts {
		snapshot[id] = accountRecord{
			AccountID:      account.AccountID,
			Number:         account.Number,
			Kind:           account.Kind,
			Status:         account.Status,
			OwnerID:        account.OwnerID,
			OpenedAt:       account.OpenedAt,
			OpeningBalance: s.opening[id],
		}
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	path := filepath.Join(s.dir, accountsFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// --- AccountStore ---

func (s *Store) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[account.AccountID]; exists {
		return fmt.Errorf("%w: account id %s", apperrors.ErrDuplicate, account.AccountID)
	}
	if _, exists := s.byNumber[account.Number]; exists {
		return fmt.Errorf("%w: account number %s", apperrors.ErrDuplicate, account.Number)
	}

	stored := account
	s.accounts[account.AccountID] = &stored
	s.byNumber[account.Number] = account.AccountID
	s.opening[account.AccountID] = account.Balance

	if err := s.writeSnapshot(); err != nil {
		delete(s.accounts, account.AccountID)
		delete(s.byNumber, account.Number)
		delete(s.opening, account.AccountID)
		return fmt.Errorf("%w: writing accounts snapshot: %v", apperrors.ErrStorageFault, err)
	}
	return nil
}

func (s *Store) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account id %s", apperrors.ErrNotFound, accountID)
	}
	copied := *account
	return &copied, nil
}

func (s *Store) FindAccountByNumber(_ context.Context, number string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byNumber[number]
	if !ok {
		return nil, fmt.Errorf("%w: account number %s", apperrors.ErrNotFound, number)
	}
	copied := *s.accounts[id]
	return &copied, nil
}

func (s *Store) ListAccountsByOwner(_ context.Context, ownerID string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Account
	for _, account := range s.accounts {
		if account.OwnerID == ownerID {
			result = append(result, *account)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].OpenedAt.Before(result[j].OpenedAt) })
	return result, nil
}

func (s *Store) AdjustBalance(_ context.Context, accountID string, delta int64, transactionID string, expectedPriorBalance *int64) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account id %s", apperrors.ErrNotFound, accountID)
	}
	if account.Status != domain.AccountActive {
		return nil, fmt.Errorf("%w: account %s is %s", apperrors.ErrAccountNotActive, account.Number, account.Status)
	}
	if expectedPriorBalance != nil && account.Balance != *expectedPriorBalance {
		return nil, fmt.Errorf("%w: expected balance %d, have %d", apperrors.ErrConflict, *expectedPriorBalance, account.Balance)
	}
	next := account.Balance + delta
	if next < 0 && !account.Kind.AllowsNegativeBalance() {
		return nil, fmt.Errorf("%w: account %s balance %d, requested %d", apperrors.ErrInsufficientFunds, account.Number, account.Balance, delta)
	}

	// Durable before applied: if the journal write fails the balance is
	// untouched and the caller sees a storage fault.
	entry := journalEntry{Type: entryAdjust, RecordID: transactionID, AccountID: accountID, Delta: delta}
	if err := s.journal.Append(entry); err != nil {
		return nil, fmt.Errorf("%w: journaling balance adjustment: %v", apperrors.ErrStorageFault, err)
	}

	if transactionID != "" {
		s.adjusts[transactionID] = append(s.adjusts[transactionID], entry)
	}
	account.Balance = next
	copied := *account
	return &copied, nil
}

func (s *Store) SetStatus(_ context.Context, accountID string, status domain.AccountStatus) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, fmt.Errorf("%w: account id %s", apperrors.ErrNotFound, accountID)
	}
	// Closed is terminal; checked under the write lock so a concurrent close
	// cannot be undone.
	if account.Status == domain.AccountClosed {
		return nil, fmt.Errorf("%w: account %s is closed", apperrors.ErrValidation, account.Number)
	}

	previous := account.Status
	account.Status = status
	if err := s.writeSnapshot(); err != nil {
		account.Status = previous
		return nil, fmt.Errorf("%w: writing accounts snapshot: %v", apperrors.ErrStorageFault, err)
	}
	copied := *account
	return &copied, nil
}

// --- TransactionLog ---

func (s *Store) Append(_ context.Context, record domain.TransactionRecord) (*domain.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record.Sequence = s.seq + 1
	entry := journalEntry{Type: entryAppend, Record: &record}
	if err := s.journal.Append(entry); err != nil {
		return nil, fmt.Errorf("%w: journaling transaction record: %v", apperrors.ErrStorageFault, err)
	}

	s.seq = record.Sequence
	s.records = append(s.records, record)
	s.byID[record.TransactionID] = len(s.records) - 1

	copied := record
	return &copied, nil
}

func (s *Store) UpdateStatus(_ context.Context, transactionID string, next domain.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[transactionID]
	if !ok {
		return fmt.Errorf("%w: transaction id %s", apperrors.ErrNotFound, transactionID)
	}
	if !s.records[idx].Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, s.records[idx].Status, next)
	}

	entry := journalEntry{Type: entryStatus, RecordID: transactionID, Status: next}
	if err := s.journal.Append(entry); err != nil {
		return fmt.Errorf("%w: journaling status transition: %v", apperrors.ErrStorageFault, err)
	}
	s.records[idx].Status = next
	return nil
}

func (s *Store) ListByAccount(_ context.Context, accountID string, filter portsrepo.ListFilter) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.TransactionRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
		record := s.records[i]
		if !record.Involves(accountID) {
			continue
		}
		if filter.Since != nil && record.CreatedAt.Before(*filter.Since) {
			continue
		}
		result = append(result, record)
	}
	return result, nil
}

func (s *Store) RecentAll(_ context.Context, limit int) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = defaultListLimit
	}
	result := make([]domain.TransactionRecord, 0, limit)
	for i := len(s.records) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, s.records[i])
	}
	return result, nil
}
