package sales

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/db/dbtest"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

func createOrder(t *testing.T, conn *gorm.DB, customerID, merchantID uuid.UUID, status enums.OrderStatus, at time.Time, items ...models.OrderItem) {
	t.Helper()
	order := &models.Order{
		CustomerID:      customerID,
		MerchantID:      merchantID,
		Status:          status,
		ShippingAddress: types.DeliveryAddress{FullName: "Ana"},
		Items:           items,
		CreatedAt:       at,
	}
	require.NoError(t, conn.Create(order).Error)
}

func TestHistoryAppliesDateWindowAndSkipsCanceled(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	svc, err := NewService(NewRepository(conn), users.NewRepository(conn))
	require.NoError(t, err)

	merchantUser, merchant := dbtest.Merchant(t, conn)
	_, other := dbtest.Merchant(t, conn)
	_, customer := dbtest.Customer(t, conn)
	category := dbtest.Category(t, conn, "Camisetas")
	shirt := dbtest.Product(t, conn, merchant.ID, category.ID, "Camiseta", "50.00")
	foreign := dbtest.Product(t, conn, other.ID, category.ID, "Alheia", "10.00")

	item := func(p *models.Product, qty int, price string) models.OrderItem {
		return models.OrderItem{ProductID: p.ID, Quantity: qty, UnitPrice: decimal.RequireFromString(price)}
	}
	lastDay := time.Date(2026, 3, 31, 22, 30, 0, 0, time.UTC)
	createOrder(t, conn, customer.ID, merchant.ID, enums.OrderStatusInTransit, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), item(shirt, 1, "50.00"))
	createOrder(t, conn, customer.ID, merchant.ID, enums.OrderStatusPendingPayment, lastDay, item(shirt, 2, "45.00"))
	createOrder(t, conn, customer.ID, merchant.ID, enums.OrderStatusCanceled, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), item(shirt, 5, "50.00"))
	createOrder(t, conn, customer.ID, merchant.ID, enums.OrderStatusDelivered, time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC), item(shirt, 7, "50.00"))
	createOrder(t, conn, customer.ID, other.ID, enums.OrderStatusDelivered, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), item(foreign, 1, "10.00"))

	window, err := ParseDateRange("2026-03-01", "2026-03-31")
	require.NoError(t, err)
	history, err := svc.History(context.Background(), HistoryQuery{UserID: merchantUser.ID, Range: window})
	require.NoError(t, err)

	require.Len(t, history.Products, 1)
	p := history.Products[0]
	assert.Equal(t, "Camiseta", p.Name)
	assert.Equal(t, "Camisetas", p.CategoryName)
	assert.Equal(t, 3, p.UnitsSold)
	assert.True(t, p.Revenue.Equal(decimal.RequireFromString("140.00")))
	assert.Equal(t, 2, p.OrderCount)
	assert.True(t, p.LastSoldAt.Equal(lastDay))
	assert.Equal(t, 2, history.Summary.OrderCount)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, history))
	file, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 3)
	assert.Equal(t, "Produto", rows[0].Cells[0].Value)
	assert.Equal(t, "Camiseta", rows[1].Cells[0].Value)
	assert.Equal(t, "Total", rows[2].Cells[0].Value)
	assert.Equal(t, "3", rows[2].Cells[2].Value)
}

func TestHistoryIsMerchantOnly(t *testing.T) {
	client := dbtest.Open(t)
	conn := client.DB()
	svc, err := NewService(NewRepository(conn), users.NewRepository(conn))
	require.NoError(t, err)
	customerUser, _ := dbtest.Customer(t, conn)

	_, err = svc.History(context.Background(), HistoryQuery{UserID: customerUser.ID})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))
}
