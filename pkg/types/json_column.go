package types

import (
	"encoding/json"
	"fmt"
)

func scanJSON(value any, dest any, name string) error {
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("%s: unsupported Scan type %T", name, value)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("%s: decode: %w", name, err)
	}
	return nil
}

func jsonValue(value any, name string) (string, error) {
	encoded, err := json.Marshal(value)
	if err != nil {
		return "", fmt.Errorf("%s: encode: %w", name, err)
	}
	return string(encoded), nil
}
