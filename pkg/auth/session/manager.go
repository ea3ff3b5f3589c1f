// Package session tracks which issued access tokens are still live. Each
// token's jti maps to one Redis entry; deleting the entry revokes the token
// before it expires.
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/redis"
)

var ErrBlankAccessID = errors.New("session: access id is blank")

// Backend is the slice of the Redis client sessions rely on.
type Backend interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// AccessSessionChecker is the read side used by the auth middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type Manager struct {
	backend Backend
	ttl     time.Duration
}

// NewManager keeps sessions for the refresh TTL, which must outlive the
// access token itself.
func NewManager(backend Backend, cfg config.JWTConfig) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("session: backend is required")
	}
	ttl := cfg.RefreshTokenTTL()
	access := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= 0 || ttl <= access {
		return nil, fmt.Errorf("session: refresh ttl %s must be positive and exceed access ttl %s", ttl, access)
	}
	return &Manager{backend: backend, ttl: ttl}, nil
}

func (m *Manager) keyFor(accessID string) (string, error) {
	id := strings.TrimSpace(accessID)
	if id == "" {
		return "", ErrBlankAccessID
	}
	return m.backend.AccessSessionKey(id), nil
}

// Generate opens a session for accessID and returns its opaque refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	key, err := m.keyFor(accessID)
	if err != nil {
		return "", err
	}
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("session: reading entropy: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)
	if err := m.backend.Set(ctx, key, token, m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Revoke is idempotent; revoking an unknown session is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	key, err := m.keyFor(accessID)
	if err != nil {
		return err
	}
	return m.backend.Del(ctx, key)
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	key, err := m.keyFor(accessID)
	if err != nil {
		return false, err
	}
	_, err = m.backend.Get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case redis.IsMiss(err):
		return false, nil
	default:
		return false, err
	}
}

// NewAccessID returns a fresh jti.
func NewAccessID() string {
	return uuid.NewString()
}
