package cart

import (
	"encoding/json"
	"time"

	"github.com/baxeinwear/storefront-backend/internal/cartstore"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaveCartRequest is the payload of cart/create. Items replace the whole cart.
type SaveCartRequest struct {
	UserID uuid.UUID       `json:"usuarioId" validate:"required"`
	Items  []CartLineInput `json:"items" validate:"dive"`
}

// CartLineInput is one requested line. ID and Product echo what cart/list
// returned and are ignored.
type CartLineInput struct {
	ID            string          `json:"id,omitempty"`
	ProductID     uuid.UUID       `json:"productId" validate:"required"`
	Quantity      int             `json:"quantity" validate:"min=1"`
	SelectedColor *string         `json:"selectedColor"`
	SelectedSize  *string         `json:"selectedSize"`
	Product       json.RawMessage `json:"product,omitempty"`
}

// ProductSnapshot is the product data a client needs to render a cart line.
type ProductSnapshot struct {
	ID         uuid.UUID       `json:"id"`
	Name       string          `json:"nome"`
	Price      decimal.Decimal `json:"preco"`
	MerchantID uuid.UUID       `json:"lojistaId"`
	ImageURL   string          `json:"imagem,omitempty"`
	Active     bool            `json:"ativo"`
}

// CartLineDTO is one persisted line as returned to clients.
type CartLineDTO struct {
	ID            string           `json:"id"`
	ProductID     uuid.UUID        `json:"productId"`
	Quantity      int              `json:"quantity"`
	SelectedColor *string          `json:"selectedColor"`
	SelectedSize  *string          `json:"selectedSize"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Product       *ProductSnapshot `json:"product,omitempty"`
}

// CartDTO is the payload of cart/list.
type CartDTO struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	Items     []CartLineDTO   `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"itemCount"`
	UpdatedAt *time.Time      `json:"atualizadoEm,omitempty"`

	// Removed lists the requested lines a save dropped.
	Removed []RemovedLineDTO `json:"removidos,omitempty"`
}

// Reasons a save drops a requested line.
const (
	RemovedUnavailable = "unavailable"
	RemovedOutOfStock  = "out_of_stock"
)

// RemovedLineDTO is a requested line that was not stored.
type RemovedLineDTO struct {
	ID            string    `json:"id"`
	ProductID     uuid.UUID `json:"productId"`
	Quantity      int       `json:"quantity"`
	SelectedColor *string   `json:"selectedColor"`
	SelectedSize  *string   `json:"selectedSize"`
	Reason        string    `json:"motivo"`
}

func emptyCart() *CartDTO {
	return &CartDTO{Items: []CartLineDTO{}, Total: decimal.Zero}
}

// NewCartDTO maps a cart row loaded with items and products.
func NewCartDTO(cart *models.Cart) *CartDTO {
	if cart == nil {
		return emptyCart()
	}
	id := cart.ID
	updated := cart.UpdatedAt
	dto := &CartDTO{
		ID:        &id,
		Items:     make([]CartLineDTO, 0, len(cart.Items)),
		Total:     decimal.Zero,
		UpdatedAt: &updated,
	}
	for _, item := range cart.Items {
		line := CartLineDTO{
			ID:            cartstore.ItemID(item.ProductID, deref(item.SelectedSize), deref(item.SelectedColor)),
			ProductID:     item.ProductID,
			Quantity:      item.Quantity,
			SelectedColor: item.SelectedColor,
			SelectedSize:  item.SelectedSize,
			Subtotal:      decimal.Zero,
		}
		if p := item.Product; p != nil {
			line.Product = &ProductSnapshot{
				ID:         p.ID,
				Name:       p.Name,
				Price:      p.Price,
				MerchantID: p.MerchantID,
				ImageURL:   p.PrimaryImage(),
				Active:     p.Active,
			}
			line.Subtotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		}
		dto.Total = dto.Total.Add(line.Subtotal)
		dto.ItemCount += item.Quantity
		dto.Items = append(dto.Items, line)
	}
	return dto
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
