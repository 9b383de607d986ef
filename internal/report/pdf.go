package report

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/erazemk/transferlog/internal/chart"
	"github.com/erazemk/transferlog/internal/model"
)

// Page geometry in millimetres (A4 portrait).
const (
	pageHeight   = 297.0
	marginLeft   = 14.0
	marginBottom = 15.0
	rowHeight    = 8.0
	tableTop     = 35.0

	// Charts move to a new page once the cursor passes this line.
	chartBreakY = 180.0
	chartWidth  = 180.0
	chartHeight = 80.0
	chartStep   = 95.0
)

var columnWidths = []float64{24, 28, 28, 28, 30, 44}

// pdfCompression is switched off in tests so the content stream is readable.
var pdfCompression = true

// Charts renders the dashboard charts for transfers. The PDF export embeds
// these so it shows the same data as the filtered dashboard.
func Charts(transfers []model.Transfer) ([]chart.Image, error) {
	return chart.RenderAll(model.ComputeStats(transfers))
}

// WritePDF renders transfers as a titled table followed by the given charts.
func WritePDF(w io.Writer, transfers []model.Transfer, title string, charts []chart.Image, now time.Time) error {
	doc, err := buildPDF(transfers, title, charts, now)
	if err != nil {
		return err
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

func buildPDF(transfers []model.Transfer, title string, charts []chart.Image, now time.Time) (*fpdf.Fpdf, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCompression(pdfCompression)
	doc.SetAutoPageBreak(false, marginBottom)
	doc.SetTitle(title, true)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "", 18)
	doc.Text(marginLeft, 22, tr(title))
	doc.SetFont("Helvetica", "", 11)
	doc.Text(marginLeft, 30, "Generated: "+now.Format("1/2/2006"))

	doc.SetXY(marginLeft, tableTop)
	tableHeader(doc)
	doc.SetFont("Helvetica", "", 10)
	for i, row := range Rows(transfers) {
		if doc.GetY()+rowHeight > pageHeight-marginBottom {
			doc.AddPage()
			doc.SetXY(marginLeft, 20)
			tableHeader(doc)
			doc.SetFont("Helvetica", "", 10)
		}
		fill := i%2 == 1
		doc.SetFillColor(242, 242, 242)
		doc.SetTextColor(0, 0, 0)
		doc.SetX(marginLeft)
		for j, cell := range row {
			doc.CellFormat(columnWidths[j], rowHeight, tr(cell), "1", 0, "L", fill, 0, "")
		}
		doc.Ln(rowHeight)
	}

	if len(charts) > 0 {
		chartSection(doc, charts, tr)
	}

	if err := doc.Error(); err != nil {
		return nil, fmt.Errorf("building PDF: %w", err)
	}
	return doc, nil
}

func tableHeader(doc *fpdf.Fpdf) {
	doc.SetFont("Helvetica", "B", 10)
	doc.SetFillColor(41, 128, 185)
	doc.SetTextColor(255, 255, 255)
	doc.SetDrawColor(44, 62, 80)
	doc.SetLineWidth(0.25)
	doc.SetX(marginLeft)
	for i, col := range Columns {
		doc.CellFormat(columnWidths[i], rowHeight, col, "1", 0, "L", true, 0, "")
	}
	doc.Ln(rowHeight)
}

func chartSection(doc *fpdf.Fpdf, charts []chart.Image, tr func(string) string) {
	finalY := doc.GetY()
	headingY := finalY + 10
	if finalY > chartBreakY {
		doc.AddPage()
		headingY = 20
	}
	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 14)
	doc.Text(marginLeft, headingY, "Charts")

	y := headingY + 10
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	for i, c := range charts {
		if i > 0 && y > chartBreakY {
			doc.AddPage()
			y = 20
		}
		name := "chart-" + c.Name
		doc.RegisterImageOptionsReader(name, opts, bytes.NewReader(c.PNG))
		doc.SetFont("Helvetica", "", 12)
		doc.Text(marginLeft, y, tr(c.Title))
		doc.ImageOptions(name, marginLeft, y+5, chartWidth, chartHeight, false, opts, 0, "")
		y += chartStep
	}
}
