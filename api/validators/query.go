package validators

import (
	"net/http"
	"strings"

	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/google/uuid"
)

// ParseQueryUUID reads an optional uuid query parameter. A missing value
// returns nil.
func ParseQueryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a valid id", key).WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParsePathUUID reads a chi-style path value already extracted by the caller.
func ParsePathUUID(raw, name string) (uuid.UUID, error) {
	value, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a valid id", name)
	}
	return value, nil
}
