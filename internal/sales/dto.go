package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HistoryQuery selects the orders a merchant report covers.
type HistoryQuery struct {
	UserID     uuid.UUID
	CategoryID *uuid.UUID
	Range      DateRange
}

// VariantSales is the quantity sold of one color/size pair.
type VariantSales struct {
	Color    string `json:"cor"`
	Size     string `json:"tamanho"`
	Quantity int    `json:"quantidade"`
}

// ProductSales is the per-product line of the report.
type ProductSales struct {
	ProductID    uuid.UUID       `json:"produtoId"`
	Name         string          `json:"nome"`
	CategoryID   uuid.UUID       `json:"categoriaId"`
	CategoryName string          `json:"categoria,omitempty"`
	ImageURL     string          `json:"imagem,omitempty"`
	UnitsSold    int             `json:"unidadesVendidas"`
	Revenue      decimal.Decimal `json:"receita"`
	OrderCount   int             `json:"pedidos"`
	AveragePrice decimal.Decimal `json:"precoMedio"`
	LastSoldAt   time.Time       `json:"ultimaVenda"`
	TopVariants  []VariantSales  `json:"variantesMaisVendidas"`
}

// Summary totals the whole report.
type Summary struct {
	UnitsSold  int             `json:"unidadesVendidas"`
	Revenue    decimal.Decimal `json:"receita"`
	OrderCount int             `json:"pedidos"`
}

// History is the sales report of a merchant.
type History struct {
	Products []ProductSales `json:"produtos"`
	Summary  Summary        `json:"resumo"`
}
