package product

import (
	"time"

	"github.com/baxeinwear/storefront-backend/internal/variants"
	"github.com/baxeinwear/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductDTO is the product payload returned to clients.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"nome"`
	Price           decimal.Decimal `json:"preco"`
	CategoryID      uuid.UUID       `json:"categoriaId"`
	CategoryName    string          `json:"categoria,omitempty"`
	MerchantID      uuid.UUID       `json:"lojistaId"`
	Description     *string         `json:"descricao,omitempty"`
	Active          bool            `json:"ativo"`
	Stock           int             `json:"estoque"`
	Colors          []string        `json:"cores"`
	Sizes           []string        `json:"tamanhos"`
	StockByVariant  map[string]int  `json:"estoquePorVariante,omitempty"`
	AvailableColors []string        `json:"coresDisponiveis"`
	AvailableSizes  []string        `json:"tamanhosDisponiveis"`
	Images          []string        `json:"imagens"`
	PrimaryImage    string          `json:"imagemPrincipal,omitempty"`
	CreatedAt       time.Time       `json:"criadoEm"`
	UpdatedAt       time.Time       `json:"atualizadoEm"`
}

// RegisterProductRequest is the payload of products/register.
type RegisterProductRequest struct {
	UserID         uuid.UUID       `json:"usuarioId" validate:"required"`
	Name           string          `json:"nome" validate:"required"`
	Price          decimal.Decimal `json:"preco"`
	CategoryID     uuid.UUID       `json:"categoriaId" validate:"required"`
	Description    *string         `json:"descricao,omitempty"`
	Images         []string        `json:"imagens,omitempty"`
	Colors         []string        `json:"cores,omitempty"`
	Sizes          []string        `json:"tamanhos,omitempty"`
	StockByVariant map[string]int  `json:"estoquePorVariante,omitempty"`
	Stock          *int            `json:"estoque,omitempty"`
}

// UpdateProductRequest is the partial payload of products/update. Nil fields
// are left untouched; Images replaces the whole gallery when present.
type UpdateProductRequest struct {
	UserID         uuid.UUID        `json:"usuarioId" validate:"required"`
	ProductID      uuid.UUID        `json:"produtoId" validate:"required"`
	Name           *string          `json:"nome,omitempty"`
	Price          *decimal.Decimal `json:"preco,omitempty"`
	CategoryID     *uuid.UUID       `json:"categoriaId,omitempty"`
	Description    *string          `json:"descricao,omitempty"`
	Images         *[]string        `json:"imagens,omitempty"`
	Colors         *[]string        `json:"cores,omitempty"`
	Sizes          *[]string        `json:"tamanhos,omitempty"`
	StockByVariant *map[string]int  `json:"estoquePorVariante,omitempty"`
	Stock          *int             `json:"estoque,omitempty"`
	Active         *bool            `json:"ativo,omitempty"`
}

// DeleteProductRequest is the payload of products/delete.
type DeleteProductRequest struct {
	UserID    uuid.UUID `json:"usuarioId" validate:"required"`
	ProductID uuid.UUID `json:"produtoId" validate:"required"`
}

// DeleteProductResult reports what the soft delete touched.
type DeleteProductResult struct {
	ProductID        uuid.UUID `json:"produtoId"`
	CartItemsRemoved int64     `json:"itensCarrinhoRemovidos"`
}

// NewProductDTO maps a product row with its images and category preloaded.
func NewProductDTO(p *models.Product) *ProductDTO {
	resolver := variants.New(p.Colors, p.Sizes, p.StockByVariant)
	dto := &ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Price:           p.Price,
		CategoryID:      p.CategoryID,
		MerchantID:      p.MerchantID,
		Description:     p.Description,
		Active:          p.Active,
		Stock:           p.Stock,
		Colors:          append([]string{}, p.Colors...),
		Sizes:           append([]string{}, p.Sizes...),
		AvailableColors: resolver.AvailableColors(""),
		AvailableSizes:  resolver.AvailableSizes(""),
		Images:          make([]string, 0, len(p.Images)),
		PrimaryImage:    p.PrimaryImage(),
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if len(p.StockByVariant) > 0 {
		dto.StockByVariant = map[string]int(p.StockByVariant)
	}
	if p.Category != nil {
		dto.CategoryName = p.Category.Name
	}
	for _, img := range sortedImages(p.Images) {
		dto.Images = append(dto.Images, img.URL)
	}
	return dto
}

func sortedImages(images []models.ProductImage) []models.ProductImage {
	out := append([]models.ProductImage(nil), images...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Position < out[j-1].Position; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
