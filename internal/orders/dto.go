package orders

import (
	"time"

	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/baxeinwear/storefront-backend/pkg/enums"
	"github.com/baxeinwear/storefront-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest is the payload of orders/create.
type CreateOrderRequest struct {
	UserID  uuid.UUID             `json:"usuarioId" validate:"required"`
	Address types.DeliveryAddress `json:"enderecoEntrega"`
}

// OrderItemDTO is one frozen line of an order.
type OrderItemDTO struct {
	ID            uuid.UUID       `json:"id"`
	ProductID     uuid.UUID       `json:"produtoId"`
	ProductName   string          `json:"nome,omitempty"`
	ImageURL      string          `json:"imagem,omitempty"`
	Quantity      int             `json:"quantidade"`
	UnitPrice     decimal.Decimal `json:"precoUnitario"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	SelectedColor *string         `json:"corSelecionada,omitempty"`
	SelectedSize  *string         `json:"tamanhoSelecionado,omitempty"`
}

// PaymentDTO summarizes one payment row of an order.
type PaymentDTO struct {
	ID          uuid.UUID           `json:"id"`
	Amount      decimal.Decimal     `json:"valor"`
	Status      enums.PaymentStatus `json:"status"`
	PaymentType enums.PaymentType   `json:"tipoPagamento"`
	CreatedAt   time.Time           `json:"criadoEm"`
}

// OrderDTO is the order payload returned by create, list and detail.
type OrderDTO struct {
	ID              uuid.UUID             `json:"id"`
	CustomerID      uuid.UUID             `json:"clienteId"`
	MerchantID      uuid.UUID             `json:"lojistaId"`
	Status          enums.OrderStatus     `json:"status"`
	StatusLabel     string                `json:"statusLabel"`
	ShippingAddress types.DeliveryAddress `json:"enderecoEntrega"`
	Items           []OrderItemDTO        `json:"itens"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	TotalPaid       decimal.Decimal       `json:"totalPago"`
	Payments        []PaymentDTO          `json:"pagamentos"`
	CreatedAt       time.Time             `json:"criadoEm"`
	UpdatedAt       time.Time             `json:"atualizadoEm"`
}

// Subtotal sums the frozen unit prices of the order lines.
func Subtotal(items []models.OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// NewOrderDTO maps an order loaded with items and payments.
func NewOrderDTO(order *models.Order) *OrderDTO {
	dto := &OrderDTO{
		ID:              order.ID,
		CustomerID:      order.CustomerID,
		MerchantID:      order.MerchantID,
		Status:          order.Status,
		StatusLabel:     order.Status.Label(),
		ShippingAddress: order.ShippingAddress,
		Items:           make([]OrderItemDTO, 0, len(order.Items)),
		Subtotal:        Subtotal(order.Items),
		TotalPaid:       models.TotalPaid(order.Payments),
		Payments:        make([]PaymentDTO, 0, len(order.Payments)),
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	for _, item := range order.Items {
		line := OrderItemDTO{
			ID:            item.ID,
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			Subtotal:      item.Subtotal(),
			SelectedColor: item.SelectedColor,
			SelectedSize:  item.SelectedSize,
		}
		if item.Product != nil {
			line.ProductName = item.Product.Name
			line.ImageURL = item.Product.PrimaryImage()
		}
		dto.Items = append(dto.Items, line)
	}
	for _, p := range order.Payments {
		dto.Payments = append(dto.Payments, PaymentDTO{
			ID:          p.ID,
			Amount:      p.Amount,
			Status:      p.Status,
			PaymentType: p.PaymentType,
			CreatedAt:   p.CreatedAt,
		})
	}
	return dto
}
