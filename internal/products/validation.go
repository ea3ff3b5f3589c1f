package product

import (
	"fmt"
	"sort"
	"strings"

	"github.com/baxeinwear/storefront-backend/internal/variants"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type variantSet struct {
	colors types.StringList
	sizes  types.StringList
	stock  types.VariantStock
}

// normalizeVariants trims declared colors and sizes, rewrites the stock map
// with trimmed "{color}-{size}" keys and adds any axis value only present in
// the map to the declared lists.
func normalizeVariants(colors, sizes []string, stock map[string]int) (variantSet, error) {
	var errs error
	set := variantSet{
		colors: types.StringList{},
		sizes:  types.StringList{},
	}
	set.colors, errs = appendAxis(set.colors, colors, "color", errs)
	set.sizes, errs = appendAxis(set.sizes, sizes, "size", errs)

	if len(stock) == 0 {
		return set, errs
	}

	keys := make([]string, 0, len(stock))
	for key := range stock {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	set.stock = types.VariantStock{}
	for _, key := range keys {
		qty := stock[key]
		color, size := variants.ParseKey(key)
		if color == "" || size == "" {
			errs = multierr.Append(errs, fmt.Errorf("invalid variant key %q, expected \"color-size\"", key))
			continue
		}
		if qty < 0 {
			errs = multierr.Append(errs, fmt.Errorf("stock for variant %q must not be negative", key))
			continue
		}
		set.stock[variants.Key(color, size)] = qty
		set.colors, _ = appendAxis(set.colors, []string{color}, "color", nil)
		set.sizes, _ = appendAxis(set.sizes, []string{size}, "size", nil)
	}
	return set, errs
}

func appendAxis(dst types.StringList, values []string, axis string, errs error) (types.StringList, error) {
	for _, raw := range values {
		value := strings.TrimSpace(raw)
		if value == "" {
			continue
		}
		if strings.Contains(value, "-") {
			errs = multierr.Append(errs, fmt.Errorf("%s %q must not contain \"-\"", axis, value))
			continue
		}
		if containsString(dst, value) {
			continue
		}
		dst = append(dst, value)
	}
	return dst, errs
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("nome is required")
	}
	return nil
}

func validatePrice(price decimal.Decimal) error {
	if !price.IsPositive() {
		return fmt.Errorf("preco must be greater than zero")
	}
	return nil
}

func validateStock(stock *int) error {
	if stock != nil && *stock < 0 {
		return fmt.Errorf("estoque must not be negative")
	}
	return nil
}

// validationError folds the collected problems into one 400 whose message is
// the first problem.
func validationError(errs error) error {
	list := multierr.Errors(errs)
	if len(list) == 0 {
		return nil
	}
	messages := make([]string, 0, len(list))
	for _, err := range list {
		messages = append(messages, err.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, messages[0]).
		WithDetails(map[string]any{"errors": messages})
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
