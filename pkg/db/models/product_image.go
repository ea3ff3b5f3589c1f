package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProductImage is one entry of a product gallery; the lowest Position is primary.
type ProductImage struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null;index"`
	URL       string    `gorm:"column:url;not null"`
	Position  int       `gorm:"column:position;not null"`
}

func (i *ProductImage) BeforeCreate(*gorm.DB) error {
	ensureID(&i.ID)
	return nil
}
