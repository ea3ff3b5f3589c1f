package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 30 * time.Second

// lockStore defines the operations used by Lock.
type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

// Lock implements a best-effort mutex using Redis SETNX + TTL.
type Lock struct {
	client lockStore
	key    string
	ttl    time.Duration
	owner  string
}

// NewLock constructs a Redis-backed lock for a single key.
func NewLock(client lockStore, key string, ttl time.Duration) (*Lock, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{client: client, key: key, ttl: ttl}, nil
}

// Acquire tries to own the lock for the configured TTL.
func (l *Lock) Acquire(ctx context.Context) (bool, error) {
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, owner, l.ttl)
	if err != nil {
		return false, fmt.Errorf("setnx: %w", err)
	}
	if ok {
		l.owner = owner
	}
	return ok, nil
}

// Release frees the lock only if the owner value still matches.
func (l *Lock) Release(ctx context.Context) error {
	if l.owner == "" {
		return nil
	}
	value, err := l.client.Get(ctx, l.key)
	if err != nil {
		if IsMiss(err) {
			return nil
		}
		return fmt.Errorf("read lock owner: %w", err)
	}
	if value != l.owner {
		return nil
	}
	if err := l.client.Del(ctx, l.key); err != nil {
		return fmt.Errorf("delete lock: %w", err)
	}
	l.owner = ""
	return nil
}

// KeyedLocker hands out per-id locks that share a scope and TTL.
type KeyedLocker struct {
	client *Client
	scope  string
	ttl    time.Duration
}

// NewKeyedLocker builds a locker for ids under scope (for example "cart_save").
func NewKeyedLocker(client *Client, scope string, ttl time.Duration) (*KeyedLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for locker")
	}
	if scope == "" {
		return nil, errors.New("lock scope is required")
	}
	return &KeyedLocker{client: client, scope: scope, ttl: ttl}, nil
}

// TryLock attempts to take the lock for id without waiting. When acquired is
// false the caller must not run its critical section.
func (k *KeyedLocker) TryLock(ctx context.Context, id string) (func(context.Context) error, bool, error) {
	lock, err := NewLock(k.client, k.client.LockKey(k.scope, id), k.ttl)
	if err != nil {
		return nil, false, err
	}
	acquired, err := lock.Acquire(ctx)
	if err != nil || !acquired {
		return nil, false, err
	}
	return lock.Release, true, nil
}
