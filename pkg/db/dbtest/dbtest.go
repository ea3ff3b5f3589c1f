// Package dbtest opens throwaway sqlite databases with the full storefront
// schema and seeds common fixtures for package tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/baxeinwear/storefront-backend/pkg/config"
	"github.com/baxeinwear/storefront-backend/pkg/db"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Open returns a migrated in-memory database private to the test.
func Open(t *testing.T) *db.Client {
	t.Helper()
	cfg := config.DBConfig{
		Driver:       config.DriverSQLite,
		DSN:          "file:dbtest_" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NoError(t, client.DB().AutoMigrate(models.All()...))
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// Customer creates a CUSTOMER user with its profile.
func Customer(t *testing.T, conn *gorm.DB) (*models.User, *models.Customer) {
	t.Helper()
	user := &models.User{
		Name:         "Cliente Teste",
		Email:        fmt.Sprintf("cliente_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.UserRoleCustomer,
	}
	require.NoError(t, conn.Create(user).Error)
	customer := &models.Customer{
		UserID: user.ID,
		Address: types.Address{
			PostalCode: "01310100",
			Street:     "Avenida Paulista",
			Number:     "1000",
			District:   "Bela Vista",
			City:       "São Paulo",
			State:      "SP",
		},
	}
	require.NoError(t, conn.Create(customer).Error)
	return user, customer
}

// Merchant creates a MERCHANT user with its profile.
func Merchant(t *testing.T, conn *gorm.DB) (*models.User, *models.Merchant) {
	t.Helper()
	user := &models.User{
		Name:         "Lojista Teste",
		Email:        fmt.Sprintf("lojista_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Role:         enums.UserRoleMerchant,
	}
	require.NoError(t, conn.Create(user).Error)
	merchant := &models.Merchant{UserID: user.ID, CompanyName: "Loja Teste"}
	require.NoError(t, conn.Create(merchant).Error)
	return user, merchant
}

// Category creates a category with the given name.
func Category(t *testing.T, conn *gorm.DB, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	require.NoError(t, conn.Create(category).Error)
	return category
}

// ProductOption tweaks a fixture product before insert.
type ProductOption func(*models.Product)

// WithVariants sets colors, sizes and the variant stock map.
func WithVariants(colors, sizes []string, stock map[string]int) ProductOption {
	return func(p *models.Product) {
		p.Colors = colors
		p.Sizes = sizes
		p.StockByVariant = stock
		p.Stock = types.VariantStock(stock).Total()
	}
}

// WithImages adds gallery images in order.
func WithImages(urls ...string) ProductOption {
	return func(p *models.Product) {
		for i, url := range urls {
			p.Images = append(p.Images, models.ProductImage{URL: url, Position: i})
		}
	}
}

// Inactive marks the product deactivated.
func Inactive() ProductOption {
	return func(p *models.Product) {
		p.Active = false
		p.Stock = 0
	}
}

// Product creates an active product owned by merchantID.
func Product(t *testing.T, conn *gorm.DB, merchantID, categoryID uuid.UUID, name, price string, opts ...ProductOption) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		CategoryID: categoryID,
		MerchantID: merchantID,
		Active:     true,
		Stock:      10,
		Colors:     types.StringList{},
		Sizes:      types.StringList{},
	}
	for _, opt := range opts {
		opt(product)
	}
	require.NoError(t, conn.Create(product).Error)
	return product
}
