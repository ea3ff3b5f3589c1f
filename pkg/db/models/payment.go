package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/baxeinwear/storefront-backend/pkg/enums"
)

// Payment records a (simulated) payment attempt against an order.
type Payment struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID           `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID  uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Status      enums.PaymentStatus `gorm:"column:status;type:text;not null"`
	PaymentType enums.PaymentType   `gorm:"column:payment_type;type:text;not null"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// TotalPaid sums the PAID rows.
func TotalPaid(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		if p.Status == enums.PaymentStatusPaid {
			total = total.Add(p.Amount)
		}
	}
	return total
}
