package payout

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"

	"staffclock/internal/domain/core"
)

// RenderStatement writes a one-page PDF listing the payout's period groups
// and their total.
func RenderStatement(w io.Writer, employee core.Employee, req Request, result Result, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payout Statement")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s (%s)", employee.FullName(), employee.EmployeeNo))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Payout: %s", describe(req)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", generatedAt.UTC().Format("2006-01-02 15:04 UTC")))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "B", 11)
	widths := []float64{70, 30, 40, 30}
	for i, title := range []string{"Period", "Hours", "Amount", "Status"} {
		pdf.CellFormat(widths[i], 8, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 11)
	total := decimal.Zero
	for _, g := range result.GroupedRecords {
		total = total.Add(g.PayAmount)
		pdf.CellFormat(widths[0], 8, g.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 8, fmt.Sprintf("%.2f", g.Duration), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 8, g.PayAmount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 8, string(g.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(widths[0]+widths[1], 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[2], 8, total.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[3], 8, "", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)

	return pdf.Output(w)
}

func describe(req Request) string {
	if req.Method == MethodManual && req.DateRange != nil {
		return fmt.Sprintf("Manual, %s to %s", req.DateRange.StartDate, req.DateRange.EndDate)
	}
	return fmt.Sprintf("%s, %s", req.Method, req.Frequency)
}
