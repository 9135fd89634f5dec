// Package export writes extracted purchase lines to the flat formats the
// downstream reception and pricing steps ingest: CSV and XLSX. One row per
// canonical line, stable column order, dates in ISO form.
package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/epicier/invoice-extract/internal/domain/extraction/record"
)

// row is the flat CSV/XLSX projection of a canonical line. The pointer date
// collapses to an empty cell when the invoice never declared one.
type row struct {
	InvoiceID           string  `csv:"invoice_id"`
	InvoiceDate         string  `csv:"invoice_date"`
	Name                string  `csv:"name"`
	Barcode             string  `csv:"barcode"`
	ArticleNumber       string  `csv:"article_number"`
	Section             string  `csv:"section"`
	Regie               string  `csv:"regie"`
	VolumeLiter         float64 `csv:"volume_liter"`
	VAP                 float64 `csv:"vap"`
	UnitWeight          float64 `csv:"unit_weight"`
	QuantityPackages    int     `csv:"quantity_packages"`
	PackagingFactor     int     `csv:"packaging_factor"`
	TotalUnits          int     `csv:"total_units"`
	PurchasePrice       float64 `csv:"purchase_price"`
	SalePrice           float64 `csv:"sale_price"`
	SalePriceMinimum    float64 `csv:"sale_price_minimum"`
	VATCode             string  `csv:"vat_code"`
	VATRate             float64 `csv:"vat_rate"`
	AmountExclTax       float64 `csv:"amount_excl_tax"`
	AmountVAT           float64 `csv:"amount_vat"`
	AmountInclTax       float64 `csv:"amount_incl_tax"`
	TotalAmountInvoiced float64 `csv:"total_amount_invoiced"`
}

func toRow(l record.CanonicalLine) row {
	date := ""
	if l.InvoiceDate != nil {
		date = l.InvoiceDate.Format("2006-01-02")
	}
	return row{
		InvoiceID:           l.InvoiceID,
		InvoiceDate:         date,
		Name:                l.Name,
		Barcode:             l.Barcode,
		ArticleNumber:       l.ArticleNumber,
		Section:             l.Section,
		Regie:               l.Regie,
		VolumeLiter:         l.VolumeLiter,
		VAP:                 l.VAP,
		UnitWeight:          l.UnitWeight,
		QuantityPackages:    l.QuantityPackages,
		PackagingFactor:     l.PackagingFactor,
		TotalUnits:          l.TotalUnits,
		PurchasePrice:       l.PurchasePrice,
		SalePrice:           l.SalePrice,
		SalePriceMinimum:    l.SalePriceMinimum,
		VATCode:             l.VATCode,
		VATRate:             l.VATRate,
		AmountExclTax:       l.AmountExclTax,
		AmountVAT:           l.AmountVAT,
		AmountInclTax:       l.AmountInclTax,
		TotalAmountInvoiced: l.TotalAmountInvoiced,
	}
}

// WriteCSV writes the lines as a headered CSV document.
func WriteCSV(w io.Writer, lines []record.CanonicalLine) error {
	rows := make([]row, 0, len(lines))
	for _, l := range lines {
		rows = append(rows, toRow(l))
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// xlsxHeader is the column order of the spreadsheet export, matching the
// csv tags of row.
var xlsxHeader = []interface{}{
	"invoice_id", "invoice_date", "name", "barcode", "article_number",
	"section", "regie", "volume_liter", "vap", "unit_weight",
	"quantity_packages", "packaging_factor", "total_units",
	"purchase_price", "sale_price", "sale_price_minimum",
	"vat_code", "vat_rate", "amount_excl_tax", "amount_vat",
	"amount_incl_tax", "total_amount_invoiced",
}

// WriteXLSX writes the lines as a single-sheet workbook.
func WriteXLSX(w io.Writer, lines []record.CanonicalLine) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Lines"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &xlsxHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, l := range lines {
		r := toRow(l)
		cells := []interface{}{
			r.InvoiceID, r.InvoiceDate, r.Name, r.Barcode, r.ArticleNumber,
			r.Section, r.Regie, r.VolumeLiter, r.VAP, r.UnitWeight,
			r.QuantityPackages, r.PackagingFactor, r.TotalUnits,
			r.PurchasePrice, r.SalePrice, r.SalePriceMinimum,
			r.VATCode, r.VATRate, r.AmountExclTax, r.AmountVAT,
			r.AmountInclTax, r.TotalAmountInvoiced,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+2, err)
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
