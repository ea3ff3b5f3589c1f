// Package auth mints and verifies the HS256 access tokens handed out at login.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/baxeinwear/storefront-backend/pkg/config"
)

const clockSkew = 30 * time.Second

var (
	signingMethod = jwt.SigningMethodHS256

	ErrSubjectMismatch = errors.New("token subject does not match user_id claim")
)

func checkConfig(cfg config.JWTConfig, minting bool) error {
	switch {
	case cfg.Secret == "":
		return errors.New("jwt: secret not configured")
	case minting && cfg.Issuer == "":
		return errors.New("jwt: issuer not configured")
	case minting && cfg.ExpirationMinutes <= 0:
		return fmt.Errorf("jwt: expiration of %d minutes is not usable", cfg.ExpirationMinutes)
	}
	return nil
}

// MintAccessToken signs a token valid from now for the configured lifetime.
// A blank JTI is replaced with a random one.
func MintAccessToken(cfg config.JWTConfig, now time.Time, p AccessTokenPayload) (string, error) {
	if err := checkConfig(cfg, true); err != nil {
		return "", err
	}
	if p.UserID == uuid.Nil {
		return "", errors.New("jwt: token needs a user id")
	}
	if !p.Role.IsValid() {
		return "", fmt.Errorf("jwt: role %q cannot be issued", p.Role)
	}

	jti := strings.TrimSpace(p.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	lifetime := time.Duration(cfg.ExpirationMinutes) * time.Minute

	claims := AccessTokenClaims{
		UserID:    p.UserID,
		Role:      p.Role,
		ProfileID: p.ProfileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Issuer:    cfg.Issuer,
			Subject:   p.UserID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
		},
	}
	return jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
}

// ParseAccessToken checks signature, issuer and expiry, and that the
// subject agrees with the user_id claim.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if err := checkConfig(cfg, false); err != nil {
		return nil, err
	}

	claims := new(AccessTokenClaims)
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	)
	secret := []byte(cfg.Secret)
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) { return secret, nil }); err != nil {
		return nil, err
	}
	if claims.Subject != claims.UserID.String() {
		return nil, ErrSubjectMismatch
	}
	return claims, nil
}
