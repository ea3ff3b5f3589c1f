package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/baxeinwear/storefront-backend/api/responses"
	pkgAuth "github.com/baxeinwear/storefront-backend/pkg/auth"
	"github.com/baxeinwear/storefront-backend/pkg/auth/session"
	"github.com/baxeinwear/storefront-backend/pkg/config"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/logger"
)

const userIDField = "usuarioId"

// AuthOptions tunes Auth.
type AuthOptions struct {
	// RequireToken rejects requests without a bearer token.
	RequireToken bool
}

// Auth validates an optional bearer token and seeds the request context with
// its claims. A usuarioId in the query or JSON body must match the token subject.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, opts AuthOptions, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				if opts.RequireToken {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if claims.ID == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id"))
				return
			}

			if verifier != nil {
				ok, err := verifier.HasSession(r.Context(), claims.ID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			subject := claims.UserID.String()
			claimed, err := claimedUserID(r)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
				return
			}
			if claimed != "" && !strings.EqualFold(claimed, subject) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "usuarioId does not match the authenticated user"))
				return
			}

			ctx := withString(r.Context(), ctxUserID, subject)
			ctx = withString(ctx, ctxRole, string(claims.Role))
			ctx = withString(ctx, ctxAccessID, claims.ID)

			if logg != nil {
				ctx = logg.WithUserID(ctx, subject)
				ctx = logg.WithActorRole(ctx, string(claims.Role))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(raw string) string {
	token := strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToLower(token), "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

// claimedUserID reads usuarioId from the query string, then from a JSON body.
// The body is restored for the next handler.
func claimedUserID(r *http.Request) (string, error) {
	if v := strings.TrimSpace(r.URL.Query().Get(userIDField)); v != "" {
		return v, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	if !strings.HasPrefix(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return "", nil
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", err
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return "", nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		// leave malformed bodies to the handler's decoder
		return "", nil
	}
	raw, ok := payload[userIDField]
	if !ok {
		return "", nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", nil
	}
	return strings.TrimSpace(value), nil
}
