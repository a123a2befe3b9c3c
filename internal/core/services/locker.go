package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/corebank/bancore/internal/apperrors"
)

// accountLocker serializes mutating access per account. Each account id owns
// one exclusive lock; unrelated accounts proceed in parallel. Lock acquisition
// waits at most the configured bound, so no operation can block forever behind
// a stuck peer.
type accountLocker struct {
	mu      sync.Mutex
	locks   map[string]chan struct{}
	maxWait time.Duration
}

func newAccountLocker(maxWait time.Duration) *accountLocker {
	return &accountLocker{
		locks:   make(map[string]chan struct{}),
		maxWait: maxWait,
	}
}

// sem returns the semaphore channel for an account, creating it on first use.
// Channels are never removed; the set of accounts is small and stable.
func (l *accountLocker) sem(accountID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.locks[accountID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[accountID] = ch
	}
	return ch
}

// Lock acquires the exclusive lock for one account. It fails with
// apperrors.ErrTimeout when the bounded wait elapses, or with the context
// error when ctx is cancelled first.
func (l *accountLocker) Lock(ctx context.Context, accountID string) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case l.sem(accountID) <- struct{}{}:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: account %s", apperrors.ErrTimeout, accountID)
	case <-ctx.Done():
		return fmt.Errorf("lock wait cancelled for account %s: %w", accountID, ctx.Err())
	}
}

// Unlock releases the exclusive lock for one account.
func (l *accountLocker) Unlock(accountID string) {
	<-l.sem(accountID)
}

// LockPair acquires both account locks in ascending account-id order, so two
// transfers moving funds in opposite directions between the same pair can
// never deadlock. On success it returns a release function; on failure any
// lock already taken has been released.
func (l *accountLocker) LockPair(ctx context.Context, a, b string) (func(), error) {
	ordered := []string{a, b}
	sort.Strings(ordered)

	if err := l.Lock(ctx, ordered[0]); err != nil {
		return nil, err
	}
	if err := l.Lock(ctx, ordered[1]); err != nil {
		l.Unlock(ordered[0])
		return nil, err
	}
	return func() {
		l.Unlock(ordered[1])
		l.Unlock(ordered[0])
	}, nil
}
