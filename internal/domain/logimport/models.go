package logimport

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Cell holds a spreadsheet-sourced value that arrives either as a number
// (date serial or day fraction) or as text.
type Cell struct {
	num   float64
	str   string
	isNum bool
}

func NumberCell(v float64) Cell {
	return Cell{num: v, isNum: true}
}

func StringCell(v string) Cell {
	return Cell{str: v}
}

func (c Cell) Number() (float64, bool) {
	return c.num, c.isNum
}

func (c Cell) String() string {
	if c.isNum {
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	}
	return c.str
}

func (c Cell) MarshalJSON() ([]byte, error) {
	if c.isNum {
		return json.Marshal(c.num)
	}
	return json.Marshal(c.str)
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = Cell{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = StringCell(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = NumberCell(f)
	return nil
}

// RawLog is one uploaded row before normalization.
type RawLog struct {
	Date Cell   `json:"Date"`
	Type string `json:"Type"`
	Time Cell   `json:"Time"`
}

// Entry is a normalized row: Date as YYYY-MM-DD and Time as HH:MM:SS when
// the source was recognizable, otherwise the source text unchanged.
type Entry struct {
	Date string `json:"date"`
	Type string `json:"type"`
	Time string `json:"time"`
}

// cellFromText keeps numeric spreadsheet values numeric.
func cellFromText(value string) Cell {
	trimmed := strings.TrimSpace(value)
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return NumberCell(f)
	}
	return StringCell(value)
}
