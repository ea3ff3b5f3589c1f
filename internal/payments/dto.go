package payments

import (
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionConfirmPayment is the only action accepted by PATCH /orders/{id}.
const ActionConfirmPayment = "confirm_payment"

// OrderActionRequest is the PATCH /orders/{id} body.
type OrderActionRequest struct {
	UserID  uuid.UUID     `json:"usuarioId" validate:"required"`
	Action  string        `json:"action" validate:"required"`
	Payment *PaymentInput `json:"payment" validate:"required"`
}

// PaymentInput carries the simulated payment. Frete defaults to the configured
// shipping fee when omitted.
type PaymentInput struct {
	Amount      decimal.Decimal  `json:"valor"`
	PaymentType string           `json:"tipoPagamento" validate:"required"`
	ShippingFee *decimal.Decimal `json:"frete,omitempty"`
}

// ConfirmInput is what Confirm needs once the route and body are parsed.
type ConfirmInput struct {
	UserID      uuid.UUID
	OrderID     uuid.UUID
	Amount      decimal.Decimal
	PaymentType string
	ShippingFee *decimal.Decimal
}

// ConfirmResult is returned after a payment is accepted.
type ConfirmResult struct {
	OrderID     uuid.UUID         `json:"pedidoId"`
	Status      enums.OrderStatus `json:"status"`
	StatusLabel string            `json:"statusLabel"`
	PaymentID   uuid.UUID         `json:"pagamentoId"`
	Amount      decimal.Decimal   `json:"valor"`
	Expected    decimal.Decimal   `json:"valorEsperado"`
}
