package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/baxeinwear/storefront-backend/api/responses"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

const maxThrottledBody = 64 << 10

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// Throttle caps attempts on one auth surface within a fixed window, counted
// per client address and per submitted e-mail. A zero limit disables that
// dimension.
type Throttle struct {
	Surface  string
	Window   time.Duration
	PerIP    int
	PerEmail int
}

func LoginThrottle(cfg config.AuthRateLimitConfig) Throttle {
	return Throttle{Surface: "login", Window: cfg.LoginWindow, PerIP: cfg.LoginIPLimit, PerEmail: cfg.LoginEmailLimit}
}

func RegisterThrottle(cfg config.AuthRateLimitConfig) Throttle {
	return Throttle{Surface: "cadastro", Window: cfg.RegisterWindow, PerIP: cfg.RegisterIPLimit, PerEmail: cfg.RegisterEmailLimit}
}

func (t Throttle) active() bool {
	return t.Window > 0 && (t.PerIP > 0 || t.PerEmail > 0)
}

type bucket struct {
	dimension string
	subject   string
	limit     int
}

func (t Throttle) counterKey(b bucket) string {
	return "baxeinwear:throttle:" + t.Surface + ":" + b.dimension + ":" + b.subject
}

// AuthRateLimit rejects requests over either counter with 429 and a
// Retry-After hint. Store failures surface as dependency errors.
func AuthRateLimit(t Throttle, store rateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || !t.active() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			buckets, err := t.buckets(r)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "could not read request body"))
				return
			}

			for _, b := range buckets {
				count, err := store.IncrWithTTL(ctx, t.counterKey(b), t.Window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiter unavailable"))
					return
				}
				if count > int64(b.limit) {
					t.reject(ctx, logg, w, b, count)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// buckets reads the body when an e-mail counter is configured and puts it
// back for the handler.
func (t Throttle) buckets(r *http.Request) ([]bucket, error) {
	var out []bucket
	if ip := clientIP(r); t.PerIP > 0 && ip != "" {
		out = append(out, bucket{dimension: "ip", subject: ip, limit: t.PerIP})
	}
	if t.PerEmail <= 0 || r.Body == nil {
		return out, nil
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxThrottledBody))
	if err != nil {
		return nil, err
	}
	r.Body = io.NopCloser(bytes.NewReader(raw))

	var payload struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if email := strings.ToLower(strings.TrimSpace(payload.Email)); email != "" {
			out = append(out, bucket{dimension: "email", subject: fingerprint(email), limit: t.PerEmail})
		}
	}
	return out, nil
}

func (t Throttle) reject(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, b bucket, count int64) {
	if logg != nil {
		subjectField := "ip"
		if b.dimension == "email" {
			subjectField = "email_hash"
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"surface":        t.Surface,
			"dimension":      b.dimension,
			subjectField:     b.subject,
			"attempts":       count,
			"limit":          b.limit,
			"window_seconds": int(t.Window.Seconds()),
		}), "auth.throttled")
	}
	w.Header().Set("Retry-After", strconv.Itoa(int(t.Window.Seconds())))
	responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func fingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:16])
}
