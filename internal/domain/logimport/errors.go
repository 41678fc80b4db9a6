package logimport

import "errors"

var (
	ErrAmbiguousDate = errors.New("ambiguous date")
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyWorkbook = errors.New("workbook has no rows")
)
