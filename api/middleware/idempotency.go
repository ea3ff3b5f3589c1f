package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/baxeinwear/storefront-backend/api/responses"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
	pkgredis "github.com/baxeinwear/storefront-backend/pkg/redis"
)

const (
	IdempotencyHeader     = "Idempotency-Key"
	defaultIdempotencyTTL = 24 * time.Hour
	maxIdempotencyKeyLen  = 128
)

// storedResponse is what a key maps to. A pending entry marks a request that
// is still running; it is replaced by the final response or dropped when
// the handler fails with a server error.
type storedResponse struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Idempotency makes keyed retries of order creation and payment confirmation
// safe. The first response for (user, method, path, key) is replayed to
// later requests carrying the same body; a different body or a retry that
// overlaps the original gets 409. Requests without the header, or without an
// acting user, pass through.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return func(next http.Handler) http.Handler {
		if store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(IdempotencyHeader))
			if clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := r.Context()
			if len(clientKey) > maxIdempotencyKeyLen {
				responses.WriteError(ctx, logg, w, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be at most %d characters", IdempotencyHeader, maxIdempotencyKeyLen))
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			actor := actingUser(r, body)
			if actor == "" {
				next.ServeHTTP(w, r)
				return
			}

			digest := sha256.Sum256(body)
			requestHash := hex.EncodeToString(digest[:])
			key := store.IdempotencyKey(idempotencyScope(actor, r), clientKey)

			reserved, err := reserve(ctx, store, key, requestHash, ttl)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			if reserved == nil {
				runAndRecord(w, r, next, store, key, requestHash, ttl, logg)
				return
			}
			if reserved.RequestHash != requestHash {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "Idempotency-Key was already used with a different request body"))
				return
			}
			if reserved.Pending {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeIdempotency, "a request with this Idempotency-Key is still being processed"))
				return
			}
			replay(w, reserved)
		})
	}
}

// reserve claims key for this request. It returns nil when the claim
// succeeded, or the entry already held by an earlier request.
func reserve(ctx context.Context, store pkgredis.IdempotencyStore, key, requestHash string, ttl time.Duration) (*storedResponse, error) {
	marker, _ := json.Marshal(storedResponse{Pending: true, RequestHash: requestHash})
	claimed, err := store.SetNX(ctx, key, string(marker), ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable")
	}
	if claimed {
		return nil, nil
	}

	raw, err := store.Get(ctx, key)
	if pkgredis.IsMiss(err) {
		// expired between the two calls; treat as in flight
		return &storedResponse{Pending: true, RequestHash: requestHash}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "idempotency store unavailable")
	}
	var existing storedResponse
	if err := json.Unmarshal([]byte(raw), &existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "corrupt idempotency record")
	}
	return &existing, nil
}

func runAndRecord(w http.ResponseWriter, r *http.Request, next http.Handler, store pkgredis.IdempotencyStore, key, requestHash string, ttl time.Duration, logg *logger.Logger) {
	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)

	// Record with a detached context so a client hang-up does not leave the
	// key pending until the TTL runs out.
	ctx := context.WithoutCancel(r.Context())
	status := capture.statusCode()
	if status >= http.StatusInternalServerError {
		if err := store.Del(ctx, key); err != nil && logg != nil {
			logg.Error(ctx, "idempotency.release_failed", err)
		}
		return
	}

	record, _ := json.Marshal(storedResponse{
		RequestHash: requestHash,
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
	})
	if err := store.Set(ctx, key, string(record), ttl); err != nil && logg != nil {
		logg.Error(ctx, "idempotency.record_failed", err)
	}
}

func replay(w http.ResponseWriter, stored *storedResponse) {
	if stored.ContentType != "" {
		w.Header().Set("Content-Type", stored.ContentType)
	}
	w.Header().Set("Idempotent-Replayed", "true")
	w.WriteHeader(stored.Status)
	_, _ = w.Write(stored.Body)
}

// actingUser is the token subject, or the usuarioId named in the body when
// the request is anonymous. Empty means keys cannot be scoped to anyone.
func actingUser(r *http.Request, body []byte) string {
	if subject := UserIDFromContext(r.Context()); subject != "" {
		return subject
	}
	var payload struct {
		UserID string `json:"usuarioId"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return strings.TrimSpace(payload.UserID)
}

func idempotencyScope(actor string, r *http.Request) string {
	return actor + "|" + r.Method + "|" + r.URL.Path
}

type responseCapture struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}
