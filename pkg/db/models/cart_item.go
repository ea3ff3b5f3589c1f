package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem is one line of a cart. The whole set is rewritten on every save.
type CartItem struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	CartID        uuid.UUID `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID     uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	Product       *Product  `gorm:"foreignKey:ProductID"`
	Quantity      int       `gorm:"column:quantity;not null"`
	SelectedColor *string   `gorm:"column:selected_color"`
	SelectedSize  *string   `gorm:"column:selected_size"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
