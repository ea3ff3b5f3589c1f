package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxeinwear/storefront-backend/pkg/config"
)

type memoryBackend struct {
	mu   sync.Mutex
	data map[string]string
	ttls map[string]time.Duration
	err  error
}

func newMemoryBackend() *memoryBackend {
	return &memoryBackend{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryBackend) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryBackend) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return v, nil
}

func (m *memoryBackend) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memoryBackend) AccessSessionKey(accessID string) string {
	return "sess:" + accessID
}

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "s", ExpirationMinutes: 60, RefreshTokenTTLMinutes: 24 * 60}
}

func TestSessionLifecycle(t *testing.T) {
	backend := newMemoryBackend()
	manager, err := NewManager(backend, jwtConfig())
	require.NoError(t, err)
	ctx := context.Background()

	accessID := NewAccessID()
	token, err := manager.Generate(ctx, accessID)
	require.NoError(t, err)
	assert.Len(t, token, 43)
	assert.Equal(t, 24*time.Hour, backend.ttls["sess:"+accessID])

	live, err := manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.True(t, live)

	require.NoError(t, manager.Revoke(ctx, accessID))
	require.NoError(t, manager.Revoke(ctx, accessID))
	live, err = manager.HasSession(ctx, accessID)
	require.NoError(t, err)
	assert.False(t, live)
}

func TestSessionBlankAccessID(t *testing.T) {
	manager, err := NewManager(newMemoryBackend(), jwtConfig())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = manager.Generate(ctx, " ")
	assert.ErrorIs(t, err, ErrBlankAccessID)
	_, err = manager.HasSession(ctx, "")
	assert.ErrorIs(t, err, ErrBlankAccessID)
	assert.ErrorIs(t, manager.Revoke(ctx, ""), ErrBlankAccessID)
}

func TestHasSessionSurfacesBackendFailure(t *testing.T) {
	backend := newMemoryBackend()
	backend.err = errors.New("connection refused")
	manager, err := NewManager(backend, jwtConfig())
	require.NoError(t, err)

	_, err = manager.HasSession(context.Background(), "abc")
	assert.EqualError(t, err, "connection refused")
}

func TestNewManagerValidatesTTL(t *testing.T) {
	_, err := NewManager(nil, jwtConfig())
	assert.Error(t, err)

	short := jwtConfig()
	short.RefreshTokenTTLMinutes = 30
	_, err = NewManager(newMemoryBackend(), short)
	assert.Error(t, err)
}
