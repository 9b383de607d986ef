// Package report exports transfer lists as PDF and XLSX documents.
package report

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/erazemk/transferlog/internal/model"
)

// Title prefixes for the two export formats.
const (
	PDFTitle  = "Inventory Transfers Report"
	XLSXTitle = "Inventory Transfers"
)

// Columns heads every exported table.
var Columns = []string{"Date", "Driver", "From", "To", "Stock #", "Brand/Model"}

// Rows maps transfers onto Columns.
func Rows(transfers []model.Transfer) [][]string {
	rows := make([][]string, 0, len(transfers))
	for _, t := range transfers {
		rows = append(rows, []string{
			t.TransferDate,
			t.DriverName,
			t.FromLocation,
			t.ToLocation,
			t.StockNumber,
			t.Brand + " " + t.Model,
		})
	}
	return rows
}

// Title describes the filter behind an export, e.g.
// "Inventory Transfers Report - Driver: John".
func Title(prefix string, f model.TransferFilter) string {
	var what string
	switch f.Kind {
	case model.FilterDate:
		what = f.Start + " to " + f.End
	case model.FilterDriver:
		what = "Driver: " + f.Driver
	case model.FilterLocation:
		dir := "To"
		if f.IsFrom {
			dir = "From"
		}
		what = fmt.Sprintf("Location: %s (%s)", f.Location, dir)
	default:
		what = "All"
	}
	return prefix + " - " + what
}

// Filename builds a download name such as
// "inventory-transfers-report-all_2024-05-01.pdf".
func Filename(title, ext string, now time.Time) string {
	return slug.Make(title) + "_" + now.Format(model.DateLayout) + ext
}
