package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category groups products. NameKey holds the lowercased name and carries the
// unique index so names are unique regardless of case.
type Category struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	NameKey     string    `gorm:"column:name_key;not null;uniqueIndex"`
	Description *string   `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

// CategoryNameKey normalizes a category name for uniqueness checks.
func CategoryNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (c *Category) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	c.NameKey = CategoryNameKey(c.Name)
	return nil
}
