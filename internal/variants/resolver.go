package variants

import "strings"

const keySeparator = "-"

// Key builds the "{color}-{size}" stock key from trimmed values.
func Key(color, size string) string {
	return strings.TrimSpace(color) + keySeparator + strings.TrimSpace(size)
}

// ParseKey splits a stock key into color and size. Keys that do not split into
// exactly two parts yield ("", "") so colors and sizes must not contain hyphens.
func ParseKey(key string) (color, size string) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 2 {
		return "", ""
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
}

// Resolver answers which color/size combinations of a product can be picked.
type Resolver struct {
	colors []string
	sizes  []string
	stock  map[string]int
}

// New builds a Resolver from the product's declared colors and sizes and its
// flat variant stock map. A nil or empty map means the product is unconstrained.
func New(colors, sizes []string, stockByVariant map[string]int) Resolver {
	r := Resolver{colors: colors, sizes: sizes}
	if len(stockByVariant) == 0 {
		return r
	}
	r.stock = make(map[string]int, len(stockByVariant))
	for key, qty := range stockByVariant {
		color, size := ParseKey(key)
		if color == "" && size == "" {
			continue
		}
		r.stock[Key(color, size)] = qty
	}
	return r
}

// HasVariants reports whether stock is tracked per variant.
func (r Resolver) HasVariants() bool {
	return r.stock != nil
}

// HasStock reports whether the color/size pair can be bought.
func (r Resolver) HasStock(color, size string) bool {
	if !r.HasVariants() {
		return true
	}
	return r.stock[Key(color, size)] > 0
}

// AvailableColors lists the declared colors that can be picked for size. An
// empty size returns every color with stock in any size.
func (r Resolver) AvailableColors(size string) []string {
	if !r.HasVariants() {
		return append([]string(nil), r.colors...)
	}
	size = strings.TrimSpace(size)
	out := []string{}
	for _, color := range r.colors {
		if size == "" {
			if r.anyStock(color, true) {
				out = append(out, color)
			}
			continue
		}
		if r.HasStock(color, size) {
			out = append(out, color)
		}
	}
	return out
}

// AvailableSizes lists the declared sizes that can be picked for color. An
// empty color returns every size with stock in any color.
func (r Resolver) AvailableSizes(color string) []string {
	if !r.HasVariants() {
		return append([]string(nil), r.sizes...)
	}
	color = strings.TrimSpace(color)
	out := []string{}
	for _, size := range r.sizes {
		if color == "" {
			if r.anyStock(size, false) {
				out = append(out, size)
			}
			continue
		}
		if r.HasStock(color, size) {
			out = append(out, size)
		}
	}
	return out
}

func (r Resolver) anyStock(value string, isColor bool) bool {
	value = strings.TrimSpace(value)
	for key, qty := range r.stock {
		if qty <= 0 {
			continue
		}
		color, size := ParseKey(key)
		if isColor && color == value {
			return true
		}
		if !isColor && size == value {
			return true
		}
	}
	return false
}

// Selection is the color/size pair currently chosen for a product.
type Selection struct {
	Color string
	Size  string
}

// DefaultSelection picks the first available color and then the first size
// available for it.
func (r Resolver) DefaultSelection() Selection {
	return r.SelectColor(Selection{}, first(r.AvailableColors("")))
}

// SelectColor changes the color and re-derives the size when the current one
// is no longer available for the new color.
func (r Resolver) SelectColor(sel Selection, color string) Selection {
	sel.Color = color
	available := r.AvailableSizes(color)
	if !contains(available, sel.Size) {
		sel.Size = first(available)
	}
	return sel
}

// SelectSize changes the size and re-derives the color when the current one
// is no longer available for the new size.
func (r Resolver) SelectSize(sel Selection, size string) Selection {
	sel.Size = size
	available := r.AvailableColors(size)
	if !contains(available, sel.Color) {
		sel.Color = first(available)
	}
	return sel
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func contains(values []string, target string) bool {
	if target == "" {
		return false
	}
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
