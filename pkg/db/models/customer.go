package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/baxeinwear/storefront-backend/pkg/types"
)

// Customer is the buyer profile of a CUSTOMER user.
type Customer struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID     `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Address   types.Address `gorm:"column:address;type:jsonb"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Customer) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
