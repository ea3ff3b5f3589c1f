// Package security hashes account passwords with Argon2id. Hashes use the
// PHC string layout so cost parameters travel with every stored value.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/baxeinwear/storefront-backend/pkg/config"
)

var (
	ErrInvalidHash   = errors.New("invalid argon2id hash")
	ErrEmptyPassword = errors.New("password cannot be empty")
)

var b64 = base64.RawStdEncoding

type argonCost struct {
	memory  uint32
	passes  uint32
	threads uint8
}

func (c argonCost) derive(password string, salt []byte, keyLen uint32) []byte {
	return argon2.IDKey([]byte(password), salt, c.passes, c.memory, c.threads, keyLen)
}

func bounded(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// HashPassword salts and hashes password using the configured cost.
// Out-of-range settings are pulled back into safe bounds.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	cost := argonCost{
		memory:  uint32(bounded(cfg.ArgonMemoryKB, 8, 512*1024)),
		passes:  uint32(bounded(cfg.ArgonTime, 1, 10)),
		threads: uint8(bounded(cfg.ArgonParallelism, 1, 255)),
	}
	salt := make([]byte, bounded(cfg.ArgonSaltLen, 8, 64))
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("reading salt: %w", err)
	}
	key := cost.derive(password, salt, uint32(bounded(cfg.ArgonKeyLen, 16, 64)))

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, cost.memory, cost.passes, cost.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword reports whether password produces the stored hash.
// A malformed hash yields ErrInvalidHash rather than false.
func VerifyPassword(password, encoded string) (bool, error) {
	cost, salt, want, err := parseHash(encoded)
	if err != nil {
		return false, err
	}
	got := cost.derive(password, salt, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

// parseHash accepts $argon2id$v=19$m=..,t=..,p=..$<salt>$<key>.
func parseHash(encoded string) (argonCost, []byte, []byte, error) {
	var cost argonCost
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return cost, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return cost, nil, nil, ErrInvalidHash
	}
	n, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &cost.memory, &cost.passes, &cost.threads)
	if err != nil || n != 3 || cost.passes == 0 || cost.threads == 0 {
		return cost, nil, nil, ErrInvalidHash
	}

	salt, err := b64.DecodeString(fields[4])
	if err != nil || len(salt) == 0 {
		return cost, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return cost, nil, nil, ErrInvalidHash
	}
	return cost, salt, key, nil
}
