package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxeinwear/storefront-backend/pkg/config"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
)

type counterStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func (c *counterStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return 0, c.err
	}
	if c.counts == nil {
		c.counts = map[string]int64{}
	}
	c.counts[key]++
	return c.counts[key], nil
}

func throttledHandler(t *testing.T, th Throttle, store rateLimiterStore) http.Handler {
	t.Helper()
	return AuthRateLimit(th, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}))
}

func postLogin(h http.Handler, remote, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(body))
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAuthRateLimitKeepsBodyForHandler(t *testing.T) {
	h := throttledHandler(t, Throttle{Surface: "login", Window: time.Minute, PerIP: 2, PerEmail: 2}, &counterStore{})

	rec := postLogin(h, "1.2.3.4:5678", `{"email":"cliente@baxeinwear.com","password":"secret"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"email":"cliente@baxeinwear.com"`)
}

func TestAuthRateLimitEmailCounterIgnoresCaseAndAddress(t *testing.T) {
	store := &counterStore{}
	h := throttledHandler(t, Throttle{Surface: "login", Window: time.Minute, PerEmail: 2}, store)

	emails := []string{"Loja@Example.com", "loja@example.com ", "LOJA@example.com"}
	var codes []int
	for i, email := range emails {
		remote := "10.0.0." + string(rune('1'+i)) + ":4000"
		codes = append(codes, postLogin(h, remote, `{"email":"`+email+`"}`).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	for key := range store.counts {
		assert.NotContains(t, key, "example.com", "raw e-mail must not be used as a key")
	}
}

func TestAuthRateLimitIPCounterSetsRetryAfter(t *testing.T) {
	h := throttledHandler(t, Throttle{Surface: "cadastro", Window: 5 * time.Minute, PerIP: 1}, &counterStore{})

	first := postLogin(h, "5.6.7.8:1234", `{"email":"a@example.com"}`)
	second := postLogin(h, "5.6.7.8:9999", `{"email":"b@example.com"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "300", second.Header().Get("Retry-After"))

	var payload struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &payload))
	assert.Equal(t, string(pkgerrors.CodeRateLimit), payload.Code)
}

func TestAuthRateLimitHonoursForwardedFor(t *testing.T) {
	h := throttledHandler(t, Throttle{Surface: "login", Window: time.Minute, PerIP: 1}, &counterStore{})

	send := func(forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader(`{}`))
		req.RemoteAddr = "172.16.0.1:80"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.7, 172.16.0.1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.8"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.7"))
}

func TestAuthRateLimitStoreFailureIsDependencyError(t *testing.T) {
	h := throttledHandler(t, Throttle{Surface: "login", Window: time.Minute, PerIP: 5}, &counterStore{err: errors.New("redis down")})

	rec := postLogin(h, "1.1.1.1:1", `{}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestThrottleFromConfig(t *testing.T) {
	cfg := config.AuthRateLimitConfig{
		LoginWindow: time.Minute, LoginIPLimit: 20, LoginEmailLimit: 5,
		RegisterWindow: 5 * time.Minute, RegisterIPLimit: 10, RegisterEmailLimit: 3,
	}

	assert.Equal(t, Throttle{Surface: "login", Window: time.Minute, PerIP: 20, PerEmail: 5}, LoginThrottle(cfg))
	assert.Equal(t, Throttle{Surface: "cadastro", Window: 5 * time.Minute, PerIP: 10, PerEmail: 3}, RegisterThrottle(cfg))
	assert.False(t, Throttle{Surface: "login"}.active())
}
