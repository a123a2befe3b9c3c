package filestore_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/bancore/internal/adapters/database/filestore"
	"github.com/corebank/bancore/internal/apperrors"
	"github.com/corebank/bancore/internal/core/domain"
	portsrepo "github.com/corebank/bancore/internal/core/ports/repositories"
)

func newAccount(kind domain.AccountKind, balance int64) domain.Account {
	id := uuid.NewString()
	return domain.Account{
		AccountID: id,
		Number:    id[:8],
		Kind:      kind,
		Balance:   balance,
		Status:    domain.AccountActive,
		OwnerID:   "owner-1",
		OpenedAt:  time.Now().UTC(),
	}
}

func newRecord(kind domain.TransactionKind, origin, destination string, amount int64) domain.TransactionRecord {
	return domain.TransactionRecord{
		TransactionID:        uuid.NewString(),
		Kind:                 kind,
		OriginAccountID:      origin,
		DestinationAccountID: destination,
		Amount:               amount,
		Status:               domain.StatusPending,
		CreatedAt:            time.Now().UTC(),
	}
}

func TestSaveAndFindAccount(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	account := newAccount(domain.Checking, 1000)
	require.NoError(t, store.SaveAccount(ctx, account))

	byID, err := store.FindAccountByID(ctx, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, account.Number, byID.Number)
	assert.Equal(t, int64(1000), byID.Balance)

	byNumber, err := store.FindAccountByNumber(ctx, account.Number)
	require.NoError(t, err)
	assert.Equal(t, account.AccountID, byNumber.AccountID)

	_, err = store.FindAccountByID(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveAccountRejectsDuplicateNumber(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	account := newAccount(domain.Checking, 0)
	require.NoError(t, store.SaveAccount(ctx, account))

	clash := newAccount(domain.Savings, 0)
	clash.Number = account.Number
	assert.ErrorIs(t, store.SaveAccount(ctx, clash), apperrors.ErrDuplicate)
}

func TestAdjustBalanceGuards(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	account := newAccount(domain.Checking, 500)
	require.NoError(t, store.SaveAccount(ctx, account))

	t.Run("insufficient funds leaves balance untouched", func(t *testing.T) {
		_, err := store.AdjustBalance(ctx, account.AccountID, -600, uuid.NewString(), nil)
		assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)

		current, err := store.FindAccountByID(ctx, account.AccountID)
		require.NoError(t, err)
		assert.Equal(t, int64(500), current.Balance)
	})

	t.Run("optimistic guard trips on stale balance", func(t *testing.T) {
		stale := int64(499)
		_, err := store.AdjustBalance(ctx, account.AccountID, -100, uuid.NewString(), &stale)
		assert.ErrorIs(t, err, apperrors.ErrConflict)
	})

	t.Run("matching expected balance applies", func(t *testing.T) {
		expected := int64(500)
		updated, err := store.AdjustBalance(ctx, account.AccountID, -100, uuid.NewString(), &expected)
		require.NoError(t, err)
		assert.Equal(t, int64(400), updated.Balance)
	})

	t.Run("frozen account rejects adjustment", func(t *testing.T) {
		_, err := store.SetStatus(ctx, account.AccountID, domain.AccountFrozen)
		require.NoError(t, err)

		_, err = store.AdjustBalance(ctx, account.AccountID, 100, uuid.NewString(), nil)
		assert.ErrorIs(t, err, apperrors.ErrAccountNotActive)
	})
}

func TestSetStatusClosedIsTerminal(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	account := newAccount(domain.Checking, 100)
	require.NoError(t, store.SaveAccount(ctx, account))

	_, err = store.SetStatus(ctx, account.AccountID, domain.AccountClosed)
	require.NoError(t, err)

	_, err = store.SetStatus(ctx, account.AccountID, domain.AccountActive)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	current, err := store.FindAccountByID(ctx, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, domain.AccountClosed, current.Status)
}

func TestUpdateStatusTransitions(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	account := newAccount(domain.Checking, 100)
	require.NoError(t, store.SaveAccount(ctx, account))

	rec, err := store.Append(ctx, newRecord(domain.Deposit, "", account.AccountID, 100))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rec.Sequence)

	require.NoError(t, store.UpdateStatus(ctx, rec.TransactionID, domain.StatusCompleted))

	err = store.UpdateStatus(ctx, rec.TransactionID, domain.StatusFailed)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	err = store.UpdateStatus(ctx, "missing", domain.StatusFailed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestListByAccountSnapshotAndOrder(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.Open(t.TempDir())
	require.NoError(t, err)
	defer store.Close()

	a := newAccount(domain.Checking, 0)
	b := newAccount(domain.Savings, 0)
	require.NoError(t, store.SaveAccount(ctx, a))
	require.NoError(t, store.SaveAccount(ctx, b))

	for i := 0; i < 3; i++ {
		_, err := store.Append(ctx, newRecord(domain.Deposit, "", a.AccountID, int64(100+i)))
		require.NoError(t, err)
	}
	_, err = store.Append(ctx, newRecord(domain.Deposit, "", b.AccountID, 999))
	require.NoError(t, err)

	first, err := store.ListByAccount(ctx, a.AccountID, portsrepo.ListFilter{})
	require.NoError(t, err)
	require.Len(t, first, 3)
	// Newest first.
	assert.Equal(t, int64(102), first[0].Amount)
	assert.Equal(t, int64(100), first[2].Amount)

	// Idempotent read: an identical call returns identical ordered results.
	second, err := store.ListByAccount(ctx, a.AccountID, portsrepo.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	limited, err := store.ListByAccount(ctx, a.AccountID, portsrepo.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	recent, err := store.RecentAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 4)
	assert.Equal(t, int64(999), recent[0].Amount)
}

func TestReplayReconstructsBalances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := filestore.Open(dir)
	require.NoError(t, err)

	a := newAccount(domain.Checking, 10000)
	b := newAccount(domain.Savings, 5000)
	require.NoError(t, store.SaveAccount(ctx, a))
	require.NoError(t, store.SaveAccount(ctx, b))

	// Move money around: a -3000 -> b, then b -500.
	rec, err := store.Append(ctx, newRecord(domain.Transfer, a.AccountID, b.AccountID, 3000))
	require.NoError(t, err)
	_, err = store.AdjustBalance(ctx, a.AccountID, -3000, rec.TransactionID, nil)
	require.NoError(t, err)
	_, err = store.AdjustBalance(ctx, b.AccountID, 3000, rec.TransactionID, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(ctx, rec.TransactionID, domain.StatusCompleted))

	rec2, err := store.Append(ctx, newRecord(domain.Withdrawal, b.AccountID, "", 500))
	require.NoError(t, err)
	_, err = store.AdjustBalance(ctx, b.AccountID, -500, rec2.TransactionID, nil)
	require.NoError(t, err)
	require.NoError(t, store.UpdateStatus(ctx, rec2.TransactionID, domain.StatusCompleted))

	require.NoError(t, store.Close())

	// Reopen and verify the journal replay reproduces identical state.
	reopened, err := filestore.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	gotA, err := reopened.FindAccountByID(ctx, a.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(7000), gotA.Balance)

	gotB, err := reopened.FindAccountByID(ctx, b.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), gotB.Balance)

	records, err := reopened.RecentAll(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, domain.StatusCompleted, r.Status)
	}

	// Sequence numbering continues after the replayed records.
	next, err := reopened.Append(ctx, newRecord(domain.Deposit, "", a.AccountID, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(3), next.Sequence)
}

func TestReopenReversesPartialTransfer(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := filestore.Open(dir)
	require.NoError(t, err)

	origin := newAccount(domain.Checking, 1000)
	destination := newAccount(domain.Savings, 1000)
	require.NoError(t, store.SaveAccount(ctx, origin))
	require.NoError(t, store.SaveAccount(ctx, destination))

	// Crash window between the two legs of a transfer: the origin debit is
	// journaled, the destination credit and the finalize never happen.
	rec, err := store.Append(ctx, newRecord(domain.Transfer, origin.AccountID, destination.AccountID, 300))
	require.NoError(t, err)
	_, err = store.AdjustBalance(ctx, origin.AccountID, -300, rec.TransactionID, nil)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := filestore.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	// Recovery must restore both legs or neither: the debit is reversed and
	// the record is failed, never a partial debit behind a plain record.
	gotOrigin, err := reopened.FindAccountByID(ctx, origin.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), gotOrigin.Balance)

	gotDestination, err := reopened.FindAccountByID(ctx, destination.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), gotDestination.Balance)

	records, err := reopened.ListByAccount(ctx, origin.AccountID, portsrepo.ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, domain.StatusFailed, records[0].Status)

	// The reversal itself is journaled: a second replay reproduces the same
	// balances.
	require.NoError(t, reopened.Close())
	again, err := filestore.Open(dir)
	require.NoError(t, err)
	defer again.Close()

	gotOrigin, err = again.FindAccountByID(ctx, origin.AccountID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), gotOrigin.Balance)
}

func TestReopenFinalizesLeftoverPending(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, err := filestore.Open(dir)
	require.NoError(t, err)

	a := newAccount(domain.Checking, 1000)
	require.NoError(t, store.SaveAccount(ctx, a))

	// Simulate a crash mid-operation: record appended, never finalized.
	rec, err := store.Append(ctx, newRecord(domain.Deposit, "", a.AccountID, 100))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := filestore.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	records, err := reopened.ListByAccount(ctx, a.AccountID, portsrepo.ListFilter{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.TransactionID, records[0].TransactionID)
	assert.Equal(t, domain.StatusFailed, records[0].Status)
}
