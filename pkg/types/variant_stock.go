package types

import (
	"database/sql/driver"
)

// VariantStock maps "{color}-{size}" keys to units on hand.
type VariantStock map[string]int

// Total sums every variant count.
func (v VariantStock) Total() int {
	total := 0
	for _, qty := range v {
		total += qty
	}
	return total
}

// Value stores the map as a JSON object. A nil map is stored as NULL.
func (v VariantStock) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return jsonValue(map[string]int(v), "variant stock")
}

// Scan decodes the JSON object.
func (v *VariantStock) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}
	decoded := map[string]int{}
	if err := scanJSON(value, &decoded, "variant stock"); err != nil {
		return err
	}
	*v = decoded
	return nil
}

// StringList stores a list of labels (colors, sizes) as a JSON array.
type StringList []string

// Value stores the list as a JSON array.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	return jsonValue([]string(l), "string list")
}

// Scan decodes the JSON array.
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	decoded := []string{}
	if err := scanJSON(value, &decoded, "string list"); err != nil {
		return err
	}
	*l = decoded
	return nil
}
