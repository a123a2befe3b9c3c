package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corebank/bancore/internal/apperrors"
)

func TestLockerTimesOutOnHeldLock(t *testing.T) {
	ctx := context.Background()
	locker := newAccountLocker(50 * time.Millisecond)

	require.NoError(t, locker.Lock(ctx, "acc-1"))
	defer locker.Unlock("acc-1")

	err := locker.Lock(ctx, "acc-1")
	assert.ErrorIs(t, err, apperrors.ErrTimeout)
}

func TestLockerHonorsContextCancellation(t *testing.T) {
	locker := newAccountLocker(time.Minute)

	require.NoError(t, locker.Lock(context.Background(), "acc-1"))
	defer locker.Unlock("acc-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := locker.Lock(ctx, "acc-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLockerIndependentAccountsDoNotBlock(t *testing.T) {
	ctx := context.Background()
	locker := newAccountLocker(50 * time.Millisecond)

	require.NoError(t, locker.Lock(ctx, "acc-1"))
	defer locker.Unlock("acc-1")

	require.NoError(t, locker.Lock(ctx, "acc-2"))
	locker.Unlock("acc-2")
}

func TestLockPairReleasesFirstLockOnTimeout(t *testing.T) {
	ctx := context.Background()
	locker := newAccountLocker(50 * time.Millisecond)

	// Hold the lock that LockPair will try second.
	require.NoError(t, locker.Lock(ctx, "acc-b"))

	_, err := locker.LockPair(ctx, "acc-b", "acc-a")
	assert.ErrorIs(t, err, apperrors.ErrTimeout)

	// The first lock (acc-a) must have been released on the failure path.
	require.NoError(t, locker.Lock(ctx, "acc-a"))
	locker.Unlock("acc-a")
	locker.Unlock("acc-b")
}

func TestLockPairOppositeDirectionsNoDeadlock(t *testing.T) {
	ctx := context.Background()
	locker := newAccountLocker(5 * time.Second)

	const iterations = 200
	var wg sync.WaitGroup
	wg.Add(2)

	// Failures are collected on a channel; t must not be failed from inside
	// the worker goroutines.
	errs := make(chan error, 2)
	run := func(first, second string) {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			release, err := locker.LockPair(ctx, first, second)
			if err != nil {
				errs <- err
				return
			}
			release()
		}
	}
	go run("acc-a", "acc-b")
	go run("acc-b", "acc-a")

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("deadlock: opposite-direction lock pairs did not complete")
	}
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
