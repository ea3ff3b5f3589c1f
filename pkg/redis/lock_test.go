package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockAcquireRelease(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newMemory()}

	first, err := NewLock(client, "bx:lock:test", time.Second)
	require.NoError(t, err)
	second, err := NewLock(client, "bx:lock:test", time.Second)
	require.NoError(t, err)

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second owner must not take a held lock")

	require.NoError(t, second.Release(ctx), "releasing an unowned lock is a no-op")
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewLockValidation(t *testing.T) {
	_, err := NewLock(nil, "k", time.Second)
	assert.Error(t, err)
	_, err = NewLock(&Client{cmd: newMemory()}, "", time.Second)
	assert.Error(t, err)

	lock, err := NewLock(&Client{cmd: newMemory()}, "k", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
}

func TestKeyedLockerDropsConcurrentHolder(t *testing.T) {
	ctx := context.Background()
	client := &Client{cmd: newMemory()}
	locker, err := NewKeyedLocker(client, "cart_save", time.Second)
	require.NoError(t, err)

	release, ok, err := locker.TryLock(ctx, "cust-1")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "cust-1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = locker.TryLock(ctx, "cust-2")
	require.NoError(t, err)
	assert.True(t, ok, "locks are per id")

	require.NoError(t, release(ctx))
	_, ok, err = locker.TryLock(ctx, "cust-1")
	require.NoError(t, err)
	assert.True(t, ok)
}
