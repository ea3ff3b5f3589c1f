// Package enums holds the closed string sets persisted in the database and
// exchanged with the storefront client.
package enums

import (
	"fmt"
	"slices"
)

// lookup returns the member of known equal to normalized. raw is only used
// in the error so callers see what they actually sent.
func lookup[T ~string](known []T, normalized, kind, raw string) (T, error) {
	if i := slices.Index(known, T(normalized)); i >= 0 {
		return known[i], nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
