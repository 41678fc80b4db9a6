package logimport

import (
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	OrderMDY    = "MDY"
	OrderDMY    = "DMY"
	OrderStrict = "strict"
)

var (
	serialEpoch   = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
	shortDateExpr = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	clockExpr     = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?\s*([AaPp][Mm])?$`)
)

// Normalizer turns spreadsheet-flavoured dates and times into ISO strings.
// Order decides how NN-NN-YYYY dates are read.
type Normalizer struct {
	Order  string
	Logger *slog.Logger
}

func NewNormalizer(order string, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{Order: order, Logger: logger}
}

func (n *Normalizer) Normalize(logs []RawLog) ([]Entry, error) {
	entries := make([]Entry, 0, len(logs))
	for i, log := range logs {
		date, err := n.NormalizeDate(log.Date)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		entries = append(entries, Entry{
			Date: date,
			Type: strings.TrimSpace(log.Type),
			Time: n.NormalizeTime(log.Time),
		})
	}
	return entries, nil
}

// NormalizeDate maps a serial day number (day 1 is 1899-12-31) or an
// NN-NN-YYYY / NN/NN/YYYY string to YYYY-MM-DD. Other strings pass through.
func (n *Normalizer) NormalizeDate(c Cell) (string, error) {
	if v, ok := c.Number(); ok {
		return serialEpoch.AddDate(0, 0, int(math.Floor(v))).Format("2006-01-02"), nil
	}

	value := strings.ReplaceAll(strings.TrimSpace(c.String()), "/", "-")
	m := shortDateExpr.FindStringSubmatch(value)
	if m == nil {
		return value, nil
	}
	first, _ := strconv.Atoi(m[1])
	second, _ := strconv.Atoi(m[2])

	month, day := first, second
	switch n.Order {
	case OrderDMY:
		month, day = second, first
	case OrderStrict:
		if first <= 12 && second <= 12 && first != second {
			return "", fmt.Errorf("%w: %q could be month-day or day-month", ErrAmbiguousDate, c.String())
		}
		if first > 12 {
			month, day = second, first
		}
	}
	return fmt.Sprintf("%s-%02d-%02d", m[3], month, day), nil
}

// NormalizeTime maps a day fraction or an H:MM[:SS][ AM|PM] string to
// 24-hour HH:MM:SS. Unrecognized values are logged and returned unchanged.
func (n *Normalizer) NormalizeTime(c Cell) string {
	if v, ok := c.Number(); ok {
		total := int(math.Round(v * 86400))
		return fmt.Sprintf("%02d:%02d:%02d", (total/3600)%24, (total%3600)/60, total%60)
	}

	value := strings.TrimSpace(c.String())
	m := clockExpr.FindStringSubmatch(value)
	if m == nil {
		n.logger().Warn("unrecognized time format", "time", value)
		return value
	}

	hour, _ := strconv.Atoi(m[1])
	seconds := m[3]
	if seconds == "" {
		seconds = "00"
	}
	switch strings.ToUpper(m[4]) {
	case "PM":
		if hour < 12 {
			hour += 12
		}
	case "AM":
		if hour == 12 {
			hour = 0
		}
	}
	return fmt.Sprintf("%02d:%s:%s", hour, m[2], seconds)
}

func (n *Normalizer) logger() *slog.Logger {
	if n.Logger == nil {
		return slog.Default()
	}
	return n.Logger
}
