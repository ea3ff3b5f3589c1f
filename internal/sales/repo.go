package sales

import (
	"context"

	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository reads the order history of a merchant.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sales repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// OrdersForMerchant loads every non-canceled order of the merchant inside the
// range, with line items, products, categories and images.
func (r *Repository) OrdersForMerchant(ctx context.Context, merchantID uuid.UUID, window DateRange) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Preload("Items.Product.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("merchant_id = ? AND status <> ?", merchantID, enums.OrderStatusCanceled)
	if window.Start != nil {
		query = query.Where("created_at >= ?", *window.Start)
	}
	if window.End != nil {
		query = query.Where("created_at <= ?", *window.End)
	}

	var rows []models.Order
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
