package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/lossdesk/lossdesk/internal/events"
)

// PDFOptions carries the presentation settings for the loss report.
type PDFOptions struct {
	StoreName string
	Footer    string
	From      time.Time
	To        time.Time
}

// WriteEventsPDF renders the exported loss events as a tabular PDF report.
func WriteEventsPDF(w io.Writer, items []events.LossEvent, opts PDFOptions) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFooterFunc(func() {
		if opts.Footer == "" {
			return
		}
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, opts.Footer, "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	title := "Loss Report"
	if opts.StoreName != "" {
		title = opts.StoreName + " - Loss Report"
	}
	pdf.Cell(0, 10, title)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	if !opts.From.IsZero() || !opts.To.IsZero() {
		pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", opts.From.Format("2006-01-02"), opts.To.Format("2006-01-02")))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", time.Now().UTC().Format("2006-01-02 15:04 MST")))
	pdf.Ln(10)

	headers := []string{"Occurred", "Type", "Qty", "Unit", "Cost Price", "Cost Impact", "Reason"}
	widths := []float64{28, 25, 18, 15, 25, 28, 130}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	var total float64
	for _, ev := range items {
		cells := []string{
			ev.OccurredAt.Format("2006-01-02"),
			string(ev.Type),
			fmt.Sprintf("%.2f", ev.Quantity),
			ev.Unit,
			fmt.Sprintf("%.2f", ev.CostPrice),
			fmt.Sprintf("%.2f", ev.CostImpact()),
			ev.Reason,
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
		total += ev.CostImpact()
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3]+widths[4], 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 8, fmt.Sprintf("%.2f", total), "1", 0, "L", false, 0, "")
	pdf.Ln(-1)

	return pdf.Output(w)
}
