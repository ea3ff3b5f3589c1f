package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/baxeinwear/storefront-backend/pkg/types"
)

// Order is the immutable purchase snapshot for a single merchant.
type Order struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	CustomerID      uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	MerchantID      uuid.UUID             `gorm:"column:merchant_id;type:uuid;not null;index"`
	Status          enums.OrderStatus     `gorm:"column:status;type:text;not null"`
	ShippingAddress types.DeliveryAddress `gorm:"column:shipping_address;type:jsonb;not null"`
	Items           []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payments        []Payment             `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
