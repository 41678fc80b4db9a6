package payments

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	LabelDay       = "Mon, Jan 2, 2006"
	LabelPayoutDay = "Jan 2, 2006"
	labelWeekDay   = "Jan 2"
)

type bucket struct {
	start   time.Time
	end     time.Time
	label   string
	records []PaymentRecord
}

// GroupDaily makes one always-complete group per record, newest first.
func GroupDaily(records []PaymentRecord, layout string) []PeriodGroup {
	groups := make([]PeriodGroup, 0, len(records))
	for _, rec := range records {
		day := civil(rec.Date)
		g := summarize(bucket{start: day, end: day, label: day.Format(layout), records: []PaymentRecord{rec}})
		g.IsComplete = true
		groups = append(groups, g)
	}
	sortDescending(groups)
	return groups
}

// GroupWeekly walks records in date order. A window runs Monday to Sunday
// from the Monday on or before the record that opened it; the first record
// outside the window opens the next one.
func GroupWeekly(records []PaymentRecord) []PeriodGroup {
	sorted := sortedByDate(records)
	var buckets []*bucket
	var current *bucket
	for _, rec := range sorted {
		day := civil(rec.Date)
		if current == nil || day.Before(current.start) || day.After(current.end) {
			monday := mondayOf(day)
			sunday := monday.AddDate(0, 0, 6)
			current = &bucket{
				start: monday,
				end:   sunday,
				label: fmt.Sprintf("%s to %s", monday.Format(labelWeekDay), sunday.Format(labelWeekDay)),
			}
			buckets = append(buckets, current)
		}
		current.records = append(current.records, rec)
	}
	return finish(buckets, latestDate(sorted))
}

// GroupMonthly buckets by calendar month, labelled with the nominal 30th.
func GroupMonthly(records []PaymentRecord) []PeriodGroup {
	sorted := sortedByDate(records)
	index := map[time.Time]*bucket{}
	var buckets []*bucket
	for _, rec := range sorted {
		day := civil(rec.Date)
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		b, ok := index[first]
		if !ok {
			end := thirtiethOf(first)
			b = &bucket{start: first, end: end, label: periodLabel(first, 30)}
			index[first] = b
			buckets = append(buckets, b)
		}
		b.records = append(b.records, rec)
	}
	return finish(buckets, latestDate(sorted))
}

// GroupBiMonthly splits each month into days 1-15 and 16-end. Only halves
// holding records are returned.
func GroupBiMonthly(records []PaymentRecord) []PeriodGroup {
	sorted := sortedByDate(records)
	index := map[time.Time]*bucket{}
	var buckets []*bucket
	for _, rec := range sorted {
		day := civil(rec.Date)
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)

		start, end, label := first, first.AddDate(0, 0, 14), periodLabel(first, 15)
		if day.Day() > 15 {
			start, end, label = first.AddDate(0, 0, 15), thirtiethOf(first), periodLabel(first, 30)
		}
		b, ok := index[start]
		if !ok {
			b = &bucket{start: start, end: end, label: label}
			index[start] = b
			buckets = append(buckets, b)
		}
		b.records = append(b.records, rec)
	}
	return finish(buckets, latestDate(sorted))
}

// GroupManual returns exactly one complete group for [start, end], labelled
// with end, even when no record falls inside.
func GroupManual(records []PaymentRecord, start, end time.Time) PeriodGroup {
	from, to := civil(start), civil(end)
	b := bucket{start: from, end: to, label: to.Format(LabelPayoutDay)}
	for _, rec := range sortedByDate(records) {
		day := civil(rec.Date)
		if day.Before(from) || day.After(to) {
			continue
		}
		b.records = append(b.records, rec)
	}
	g := summarize(b)
	g.IsComplete = true
	return g
}

// finish turns ascending buckets into groups, newest first. Only the last
// period can be open: it is complete once the latest record reaches its
// nominal end.
func finish(buckets []*bucket, latest time.Time) []PeriodGroup {
	groups := make([]PeriodGroup, 0, len(buckets))
	for i, b := range buckets {
		g := summarize(*b)
		g.IsComplete = i < len(buckets)-1 || !b.end.After(latest)
		groups = append(groups, g)
	}
	sortDescending(groups)
	return groups
}

func summarize(b bucket) PeriodGroup {
	total := decimal.Zero
	var seconds int64
	paid := len(b.records) > 0
	for _, rec := range b.records {
		total = total.Add(rec.PayAmount)
		seconds += rec.TotalTimeSeconds
		if rec.Status != StatusPaid {
			paid = false
		}
	}
	status := StatusUnpaid
	if paid {
		status = StatusPaid
	}
	return PeriodGroup{
		Date:      b.label,
		PayAmount: total,
		Duration:  float64(seconds) / 3600,
		Status:    status,
		start:     b.start,
	}
}

func sortDescending(groups []PeriodGroup) {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].start.After(groups[j].start)
	})
}

func sortedByDate(records []PaymentRecord) []PaymentRecord {
	sorted := append([]PaymentRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return civil(sorted[i].Date).Before(civil(sorted[j].Date))
	})
	return sorted
}

func latestDate(sorted []PaymentRecord) time.Time {
	if len(sorted) == 0 {
		return time.Time{}
	}
	return civil(sorted[len(sorted)-1].Date)
}

// civil drops the clock part; record dates are civil days carried as UTC.
func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mondayOf(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// thirtiethOf is the nominal end of a month: the 30th, or the last day of
// shorter months.
func thirtiethOf(first time.Time) time.Time {
	last := first.AddDate(0, 1, -1)
	if last.Day() < 30 {
		return last
	}
	return time.Date(first.Year(), first.Month(), 30, 0, 0, 0, 0, time.UTC)
}

func periodLabel(first time.Time, day int) string {
	return fmt.Sprintf("%s %d, %d", first.Month(), day, first.Year())
}
