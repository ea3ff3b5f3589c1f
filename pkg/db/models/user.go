package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/baxeinwear/storefront-backend/pkg/enums"
)

// User is the login identity. Role is fixed at registration.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Email        string         `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null"`
	Customer     *Customer      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Merchant     *Merchant      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
