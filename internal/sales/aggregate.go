package sales

import (
	"sort"

	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const topVariantLimit = 5

type variantKey struct {
	color string
	size  string
}

type productAccumulator struct {
	line     ProductSales
	orders   map[uuid.UUID]struct{}
	priceSum decimal.Decimal
	priceN   int64
	variants map[variantKey]int
}

// Aggregate folds order lines into per-product sales. Lines whose product is
// outside categoryID are skipped. Products are sorted by revenue, highest first.
func Aggregate(orders []models.Order, categoryID *uuid.UUID) *History {
	byProduct := map[uuid.UUID]*productAccumulator{}
	allOrders := map[uuid.UUID]struct{}{}
	summary := Summary{Revenue: decimal.Zero}

	for _, order := range orders {
		for _, item := range order.Items {
			product := item.Product
			if product == nil {
				continue
			}
			if categoryID != nil && product.CategoryID != *categoryID {
				continue
			}

			acc, ok := byProduct[product.ID]
			if !ok {
				acc = newAccumulator(product)
				byProduct[product.ID] = acc
			}
			revenue := item.Subtotal()
			acc.line.UnitsSold += item.Quantity
			acc.line.Revenue = acc.line.Revenue.Add(revenue)
			acc.orders[order.ID] = struct{}{}
			acc.priceSum = acc.priceSum.Add(item.UnitPrice)
			acc.priceN++
			if order.CreatedAt.After(acc.line.LastSoldAt) {
				acc.line.LastSoldAt = order.CreatedAt
			}
			if key := variantOf(item); key != (variantKey{}) {
				acc.variants[key] += item.Quantity
			}

			summary.UnitsSold += item.Quantity
			summary.Revenue = summary.Revenue.Add(revenue)
			allOrders[order.ID] = struct{}{}
		}
	}
	summary.OrderCount = len(allOrders)

	products := make([]ProductSales, 0, len(byProduct))
	for _, acc := range byProduct {
		acc.line.OrderCount = len(acc.orders)
		if acc.priceN > 0 {
			acc.line.AveragePrice = acc.priceSum.Div(decimal.NewFromInt(acc.priceN)).Round(2)
		}
		acc.line.TopVariants = topVariants(acc.variants, topVariantLimit)
		products = append(products, acc.line)
	}
	sort.SliceStable(products, func(i, j int) bool {
		if !products[i].Revenue.Equal(products[j].Revenue) {
			return products[i].Revenue.GreaterThan(products[j].Revenue)
		}
		return products[i].Name < products[j].Name
	})

	return &History{Products: products, Summary: summary}
}

func newAccumulator(product *models.Product) *productAccumulator {
	line := ProductSales{
		ProductID:    product.ID,
		Name:         product.Name,
		CategoryID:   product.CategoryID,
		ImageURL:     product.PrimaryImage(),
		Revenue:      decimal.Zero,
		AveragePrice: decimal.Zero,
	}
	if product.Category != nil {
		line.CategoryName = product.Category.Name
	}
	return &productAccumulator{
		line:     line,
		orders:   map[uuid.UUID]struct{}{},
		priceSum: decimal.Zero,
		variants: map[variantKey]int{},
	}
}

func variantOf(item models.OrderItem) variantKey {
	var key variantKey
	if item.SelectedColor != nil {
		key.color = *item.SelectedColor
	}
	if item.SelectedSize != nil {
		key.size = *item.SelectedSize
	}
	return key
}

func topVariants(tally map[variantKey]int, limit int) []VariantSales {
	out := make([]VariantSales, 0, len(tally))
	for key, qty := range tally {
		out = append(out, VariantSales{Color: key.color, Size: key.size, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		if out[i].Color != out[j].Color {
			return out[i].Color < out[j].Color
		}
		return out[i].Size < out[j].Size
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
