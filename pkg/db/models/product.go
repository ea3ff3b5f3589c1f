package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/baxeinwear/storefront-backend/pkg/types"
)

// Product is a merchant listing. Products are never hard deleted; Active=false
// hides them while order history keeps pointing at the row.
type Product struct {
	ID             uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name           string             `gorm:"column:name;not null"`
	Price          decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	CategoryID     uuid.UUID          `gorm:"column:category_id;type:uuid;not null;index"`
	Category       *Category          `gorm:"foreignKey:CategoryID"`
	MerchantID     uuid.UUID          `gorm:"column:merchant_id;type:uuid;not null;index"`
	Description    *string            `gorm:"column:description"`
	Active         bool               `gorm:"column:active;not null"`
	Stock          int                `gorm:"column:stock;not null"`
	Colors         types.StringList   `gorm:"column:colors;type:jsonb;not null"`
	Sizes          types.StringList   `gorm:"column:sizes;type:jsonb;not null"`
	StockByVariant types.VariantStock `gorm:"column:stock_by_variant;type:jsonb"`
	Images         []ProductImage     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PrimaryImage returns the first gallery image URL, or "" when there is none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	primary := p.Images[0]
	for _, img := range p.Images[1:] {
		if img.Position < primary.Position {
			primary = img
		}
	}
	return primary.URL
}
