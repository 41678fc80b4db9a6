package timesheet

import (
	"context"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Timesheet"

var exportHeader = []any{"Name", "Date", "Total Time", "Time Span"}

// ExportSummaries writes every daily summary of the employee, newest first,
// as an XLSX workbook.
func (s *Service) ExportSummaries(ctx context.Context, employeeID string, w io.Writer) error {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return err
	}
	summaries, err := s.store.ListSummaries(ctx, employeeID, 0, 0)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close export workbook failed", "err", err)
		}
	}()
	f.SetSheetName(f.GetSheetName(0), exportSheet)

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return err
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		if err := f.SetCellStyle(exportSheet, "A1", "D1", style); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "D", 22); err != nil {
		return err
	}

	for i, summary := range summaries {
		row := s.summaryRow(emp, summary)
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []any{row.FullName, row.Date, row.TotalTime, row.TimeSpan}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
