// Package export renders extracted products as CSV or XLSX downloads.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/Mbelalia/facture-engine/internal/domain/invoice"
	"github.com/Mbelalia/facture-engine/pkg/price"
)

// productRow is the flat shape written to spreadsheets. Prices are
// pre-formatted so the cells read the way the invoice does.
type productRow struct {
	Name        string `csv:"name"`
	Description string `csv:"description"`
	Reference   string `csv:"reference"`
	Quantity    int    `csv:"quantity"`
	PriceTTC    string `csv:"price_ttc"`
	PriceHT     string `csv:"price_ht"`
	LineTotal   string `csv:"line_total"`
}

func toRows(products []invoice.Product) []productRow {
	rows := make([]productRow, 0, len(products))
	for _, p := range products {
		row := productRow{
			Name:        p.Name,
			Description: p.Description,
			Reference:   p.Reference,
			Quantity:    p.Quantity,
		}
		if p.PriceTTC != nil {
			row.PriceTTC = price.FormatEUR(*p.PriceTTC)
			row.LineTotal = price.FormatEUR(price.Round2(*p.PriceTTC * float64(p.Quantity)))
		}
		if p.PriceHT != nil {
			row.PriceHT = price.FormatEUR(*p.PriceHT)
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteCSV writes products as a headed CSV document.
func WriteCSV(w io.Writer, products []invoice.Product) error {
	if err := gocsv.Marshal(toRows(products), w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

const sheetName = "Products"

// WriteXLSX writes products as a single-sheet workbook.
func WriteXLSX(w io.Writer, products []invoice.Product) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := []any{"Name", "Description", "Reference", "Quantity", "Price TTC", "Price HT", "Line total"}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range toRows(products) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		values := []any{row.Name, row.Description, row.Reference, row.Quantity, row.PriceTTC, row.PriceHT, row.LineTotal}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
