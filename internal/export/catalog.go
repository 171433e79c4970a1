// Package export renders the catalog as a spreadsheet.
package export

import (
	"fmt"
	"io"
	"strings"

	"storefront/internal/models"

	"github.com/tealeg/xlsx"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	FileName    = "products.xlsx"
	sheetName   = "Products"
	timeLayout  = "2006-01-02 15:04:05"
)

var headers = []string{
	"ID", "Name", "Category", "Price", "AvailableUnits",
	"Colors", "Sizes", "Images", "Description", "CreatedAt", "UpdatedAt",
}

// WriteProducts writes one header row and one row per product to w.
func WriteProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Category.Label())
		row.AddCell().SetValue(p.Price)
		row.AddCell().SetValue(p.AvailableUnits)
		row.AddCell().SetValue(strings.Join(p.Colors, ","))
		row.AddCell().SetValue(strings.Join(p.Sizes, ","))
		row.AddCell().SetValue(strings.Join(p.Images, ","))
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.CreatedAt.Format(timeLayout))
		row.AddCell().SetValue(p.UpdatedAt.Format(timeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
