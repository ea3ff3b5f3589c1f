package sales

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

// XLSXContentType is the media type of WriteXLSX output.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"Produto", "Categoria", "Unidades", "Receita", "Pedidos", "Preço médio", "Última venda", "Variantes",
}

// WriteXLSX renders the report as a spreadsheet with one row per product and a
// closing summary row.
func WriteXLSX(w io.Writer, history *History) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Vendas")
	if err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range history.Products {
		row := sheet.AddRow()
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.CategoryName)
		row.AddCell().SetInt(p.UnitsSold)
		row.AddCell().SetFloat(p.Revenue.InexactFloat64())
		row.AddCell().SetInt(p.OrderCount)
		row.AddCell().SetFloat(p.AveragePrice.InexactFloat64())
		row.AddCell().SetString(p.LastSoldAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(variantsLabel(p.TopVariants))
	}

	total := sheet.AddRow()
	total.AddCell().SetString("Total")
	total.AddCell().SetString("")
	total.AddCell().SetInt(history.Summary.UnitsSold)
	total.AddCell().SetFloat(history.Summary.Revenue.InexactFloat64())
	total.AddCell().SetInt(history.Summary.OrderCount)

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func variantsLabel(variants []VariantSales) string {
	label := ""
	for i, v := range variants {
		if i > 0 {
			label += ", "
		}
		label += fmt.Sprintf("%s/%s: %d", v.Color, v.Size, v.Quantity)
	}
	return label
}
