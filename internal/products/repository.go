package product

import (
	"context"

	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes product persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to db.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Category")
}

// FindByID loads a product with its gallery and category.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.withDetails(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// ListByMerchant returns every product of a merchant, active or not.
func (r *Repository) ListByMerchant(ctx context.Context, merchantID uuid.UUID) ([]models.Product, error) {
	var rows []models.Product
	err := r.withDetails(ctx).
		Where("merchant_id = ?", merchantID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListActive returns the public catalog.
func (r *Repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var rows []models.Product
	err := r.withDetails(ctx).
		Where("active = ?", true).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// Create inserts a product together with its images.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Omit("Category").Create(product).Error
}

// Update saves the scalar columns of a product.
func (r *Repository) Update(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).
		Model(product).
		Select("name", "price", "category_id", "description", "active", "stock", "colors", "sizes", "stock_by_variant", "updated_at").
		Updates(product).Error
}

// ReplaceImages deletes the gallery of a product and inserts urls in order.
func (r *Repository) ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) ([]models.ProductImage, error) {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
		return nil, err
	}
	images := buildImages(productID, urls)
	if len(images) == 0 {
		return images, nil
	}
	if err := tx.Create(&images).Error; err != nil {
		return nil, err
	}
	return images, nil
}

// Deactivate hides a product and zeroes its stock.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]any{"active": false, "stock": 0}).Error
}

// PurgeCartItems removes the product from every cart. Order items are not touched.
func (r *Repository) PurgeCartItems(ctx context.Context, productID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

func buildImages(productID uuid.UUID, urls []string) []models.ProductImage {
	images := make([]models.ProductImage, 0, len(urls))
	for _, url := range urls {
		if url == "" {
			continue
		}
		images = append(images, models.ProductImage{
			ProductID: productID,
			URL:       url,
			Position:  len(images),
		})
	}
	return images
}
