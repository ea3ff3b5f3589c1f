package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/baxeinwear/storefront-backend/pkg/enums"
)

func TestPrimaryImagePicksLowestPosition(t *testing.T) {
	p := Product{Images: []ProductImage{
		{URL: "b.jpg", Position: 1},
		{URL: "a.jpg", Position: 0},
	}}
	assert.Equal(t, "a.jpg", p.PrimaryImage())
	assert.Empty(t, Product{}.PrimaryImage())
}

func TestTotalPaidIgnoresNonPaidRows(t *testing.T) {
	payments := []Payment{
		{Amount: decimal.RequireFromString("100.00"), Status: enums.PaymentStatusPaid},
		{Amount: decimal.RequireFromString("15.00"), Status: enums.PaymentStatusPaid},
		{Amount: decimal.RequireFromString("99.00"), Status: enums.PaymentStatusCanceled},
	}
	assert.True(t, TotalPaid(payments).Equal(decimal.RequireFromString("115.00")))
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{UnitPrice: decimal.RequireFromString("49.90"), Quantity: 3}
	assert.Equal(t, "149.7", item.Subtotal().String())
}

func TestCategoryBeforeCreateSetsKey(t *testing.T) {
	c := &Category{Name: "  Camisetas "}
	assert.NoError(t, c.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, "camisetas", c.NameKey)
}
