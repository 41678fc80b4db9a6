package logimport

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads Date/Type/Time rows from the first sheet. Headers are
// matched case-insensitively; cells are read raw so date serials and day
// fractions stay numeric.
func ReadWorkbook(r io.Reader) ([]RawLog, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("close workbook failed", "err", err)
		}
	}()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrEmptyWorkbook
	}

	columns := map[string]int{}
	for i, header := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, name := range []string{"date", "type", "time"} {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	logs := make([]RawLog, 0, len(rows)-1)
	for _, row := range rows[1:] {
		date := cellAt(row, columns["date"])
		typ := cellAt(row, columns["type"])
		clock := cellAt(row, columns["time"])
		if strings.TrimSpace(date+typ+clock) == "" {
			continue
		}
		logs = append(logs, RawLog{
			Date: cellFromText(date),
			Type: typ,
			Time: cellFromText(clock),
		})
	}
	return logs, nil
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
