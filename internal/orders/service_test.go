package orders

import (
	"context"
	"testing"
	"time"

	"github.com/baxeinwear/storefront-backend/internal/cart"
	"github.com/baxeinwear/storefront-backend/internal/users"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/db/dbtest"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (Service, *db.Client) {
	t.Helper()
	client := dbtest.Open(t)
	svc, err := NewService(ServiceParams{
		Repo:     NewRepository(client.DB()),
		Carts:    cart.NewRepository(client.DB()),
		DB:       client,
		Accounts: users.NewRepository(client.DB()),
	})
	require.NoError(t, err)
	return svc, client
}

func deliveryAddress() types.DeliveryAddress {
	return types.DeliveryAddress{
		Address: types.Address{
			PostalCode: "01310-100",
			Street:     "Av. Paulista",
			Number:     "1000",
			District:   "Bela Vista",
			City:       "São Paulo",
			State:      "SP",
		},
		FullName: "Ana Souza",
		Email:    "ana@example.com",
		Phone:    "(11) 99999-0000",
	}
}

func seedCart(t *testing.T, conn *gorm.DB, customerID uuid.UUID, items ...models.CartItem) *models.Cart {
	t.Helper()
	c := &models.Cart{CustomerID: customerID, Items: items}
	require.NoError(t, conn.Create(c).Error)
	return c
}

func countRows(t *testing.T, conn *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, conn.Model(model).Count(&n).Error)
	return n
}

func TestCreateFreezesPricesAndEmptiesCart(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	user, customer := dbtest.Customer(t, conn)
	_, merchant := dbtest.Merchant(t, conn)
	category := dbtest.Category(t, conn, "Camisetas")
	shirt := dbtest.Product(t, conn, merchant.ID, category.ID, "Camiseta", "50.00")
	hat := dbtest.Product(t, conn, merchant.ID, category.ID, "Boné", "25.00")
	color, size := "Preto", "M"
	userCart := seedCart(t, conn, customer.ID,
		models.CartItem{ProductID: shirt.ID, Quantity: 1, SelectedColor: &color, SelectedSize: &size},
		models.CartItem{ProductID: hat.ID, Quantity: 2},
	)

	order, err := svc.Create(context.Background(), CreateOrderRequest{UserID: user.ID, Address: deliveryAddress()})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingPayment, order.Status)
	assert.Equal(t, "Aguardando pagamento", order.StatusLabel)
	assert.Equal(t, merchant.ID, order.MerchantID)
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, order.TotalPaid.IsZero())
	assert.Equal(t, "01310100", order.ShippingAddress.PostalCode)
	assert.Len(t, order.Items, 2)

	var remaining int64
	require.NoError(t, conn.Model(&models.CartItem{}).Where("cart_id = ?", userCart.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	require.NoError(t, conn.Model(&models.Product{}).Where("id = ?", shirt.ID).Update("price", decimal.RequireFromString("80.00")).Error)

	detail, err := svc.Detail(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, detail.Subtotal.Equal(decimal.RequireFromString("100.00")))
	for _, item := range detail.Items {
		if item.ProductID == shirt.ID {
			assert.True(t, item.UnitPrice.Equal(decimal.RequireFromString("50.00")))
			assert.Equal(t, "Preto", *item.SelectedColor)
		}
	}
}

func TestCreateRejectsMixedMerchantsWithoutWriting(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	user, customer := dbtest.Customer(t, conn)
	_, first := dbtest.Merchant(t, conn)
	_, second := dbtest.Merchant(t, conn)
	category := dbtest.Category(t, conn, "Calças")
	a := dbtest.Product(t, conn, first.ID, category.ID, "Calça A", "100.00")
	b := dbtest.Product(t, conn, second.ID, category.ID, "Calça B", "90.00")
	seedCart(t, conn, customer.ID,
		models.CartItem{ProductID: a.ID, Quantity: 1},
		models.CartItem{ProductID: b.ID, Quantity: 1},
	)

	_, err := svc.Create(context.Background(), CreateOrderRequest{UserID: user.ID, Address: deliveryAddress()})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	assert.Equal(t, "cart mixes multiple merchants; split before continuing", typed.Message())

	assert.Zero(t, countRows(t, conn, &models.Order{}))
	assert.Zero(t, countRows(t, conn, &models.OrderItem{}))
	assert.EqualValues(t, 2, countRows(t, conn, &models.CartItem{}))
}

func TestCreateValidationFailures(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	user, customer := dbtest.Customer(t, conn)

	_, err := svc.Create(context.Background(), CreateOrderRequest{UserID: user.ID, Address: deliveryAddress()})
	require.Error(t, err)
	assert.Equal(t, "cart is empty", pkgerrors.As(err).Message())

	bad := deliveryAddress()
	bad.State = "São Paulo"
	_, err = svc.Create(context.Background(), CreateOrderRequest{UserID: user.ID, Address: bad})
	require.Error(t, err)
	assert.Equal(t, map[string]any{"field": "estado"}, pkgerrors.As(err).Details())

	_, merchant := dbtest.Merchant(t, conn)
	category := dbtest.Category(t, conn, "Bonés")
	retired := dbtest.Product(t, conn, merchant.ID, category.ID, "Antigo", "10.00", dbtest.Inactive())
	seedCart(t, conn, customer.ID, models.CartItem{ProductID: retired.ID, Quantity: 1})

	_, err = svc.Create(context.Background(), CreateOrderRequest{UserID: user.ID, Address: deliveryAddress()})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Zero(t, countRows(t, conn, &models.Order{}))
}

func TestListAndDetailVisibility(t *testing.T) {
	svc, client := newTestService(t)
	conn := client.DB()
	user, customer := dbtest.Customer(t, conn)
	otherUser, _ := dbtest.Customer(t, conn)
	merchantUser, merchant := dbtest.Merchant(t, conn)

	older := &models.Order{
		CustomerID:      customer.ID,
		MerchantID:      merchant.ID,
		Status:          enums.OrderStatusDelivered,
		ShippingAddress: deliveryAddress(),
		CreatedAt:       time.Now().Add(-48 * time.Hour),
	}
	newer := &models.Order{
		CustomerID:      customer.ID,
		MerchantID:      merchant.ID,
		Status:          enums.OrderStatusPendingPayment,
		ShippingAddress: deliveryAddress(),
		CreatedAt:       time.Now().Add(-time.Hour),
	}
	require.NoError(t, conn.Create(older).Error)
	require.NoError(t, conn.Create(newer).Error)

	list, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, "Entregue", list[1].StatusLabel)

	merchantList, err := svc.List(context.Background(), merchantUser.ID)
	require.NoError(t, err)
	assert.Len(t, merchantList, 2)

	_, err = svc.Detail(context.Background(), otherUser.ID, newer.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeForbidden))

	_, err = svc.Detail(context.Background(), user.ID, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	detail, err := svc.Detail(context.Background(), merchantUser.ID, older.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusDelivered, detail.Status)
}
