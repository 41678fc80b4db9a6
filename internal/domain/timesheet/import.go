package timesheet

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"staffclock/internal/domain/logimport"
)

var instantLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04"}

type importDay struct {
	date   time.Time
	label  string
	events []ClockEvent
}

// ImportLogs writes a whole batch of normalized log rows or nothing. Every
// row is checked for a known action and a parseable instant, every day must
// be new for the employee and form a complete TIME_IN ... TIME_OUT sequence.
func (s *Service) ImportLogs(ctx context.Context, employeeID string, entries []logimport.Entry) (ImportResult, error) {
	result, err := s.importLogs(ctx, employeeID, entries)
	if err != nil {
		s.metrics.Import("rejected", 0)
		return ImportResult{}, err
	}
	s.metrics.Import("success", result.Events)
	return result, nil
}

func (s *Service) importLogs(ctx context.Context, employeeID string, entries []logimport.Entry) (ImportResult, error) {
	if len(entries) == 0 {
		return ImportResult{}, invalidLog("", "no logs provided")
	}
	if len(entries) > s.maxImportRows {
		return ImportResult{}, fmt.Errorf("%w: %d rows, at most %d allowed", ErrTooManyLogs, len(entries), s.maxImportRows)
	}

	days, err := s.groupEntries(employeeID, entries)
	if err != nil {
		return ImportResult{}, err
	}

	var result ImportResult
	err = s.store.InTx(ctx, func(tx TxStoreAPI) error {
		for _, day := range days {
			if err := tx.LockEmployeeDay(ctx, employeeID, day.date); err != nil {
				return err
			}
		}
		for _, day := range days {
			exists, err := tx.SummaryExists(ctx, employeeID, day.date)
			if err != nil {
				return err
			}
			if exists {
				return &LogError{Date: day.label, Reason: "logs already exist", err: ErrDuplicateDay}
			}
		}
		for _, day := range days {
			if err := validateDaySequence(day); err != nil {
				return err
			}
		}

		for _, day := range days {
			if err := tx.InsertEvents(ctx, employeeID, day.events); err != nil {
				return err
			}
			err := tx.InsertSummary(ctx, DailySummary{
				EmployeeID:       employeeID,
				Date:             day.date,
				TotalTimeSeconds: ElapsedSeconds(day.events),
				FirstEventAt:     day.events[0].OccurredAt,
				LastEventAt:      day.events[len(day.events)-1].OccurredAt,
			})
			if errors.Is(err, ErrDuplicateDay) {
				return &LogError{Date: day.label, Reason: "logs already exist", err: ErrDuplicateDay}
			}
			if err != nil {
				return err
			}
			result.Days++
			result.Events += len(day.events)
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// groupEntries parses rows in source order and buckets them by civil day,
// each day's events sorted by time. Days come back in ascending order.
func (s *Service) groupEntries(employeeID string, entries []logimport.Entry) ([]importDay, error) {
	byDay := map[time.Time]*importDay{}
	for _, entry := range entries {
		action, err := ParseAction(entry.Type)
		if err != nil {
			return nil, invalidLog(entry.Date, fmt.Sprintf("invalid type '%s' in logs", entry.Type))
		}
		at, err := s.parseInstant(entry.Date, entry.Time)
		if err != nil {
			return nil, invalidLog(entry.Date, "invalid date or time format")
		}

		date := CivilDay(at, s.loc)
		day, ok := byDay[date]
		if !ok {
			day = &importDay{date: date, label: date.Format(dateLayout)}
			byDay[date] = day
		}
		day.events = append(day.events, ClockEvent{EmployeeID: employeeID, Action: action, OccurredAt: at.UTC()})
	}

	days := make([]importDay, 0, len(byDay))
	for _, day := range byDay {
		sort.SliceStable(day.events, func(i, j int) bool {
			return day.events[i].OccurredAt.Before(day.events[j].OccurredAt)
		})
		days = append(days, *day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date.Before(days[j].date) })
	return days, nil
}

func (s *Service) parseInstant(date, clock string) (time.Time, error) {
	value := strings.TrimSpace(date) + " " + strings.TrimSpace(clock)
	var lastErr error
	for _, layout := range instantLayouts {
		at, err := time.ParseInLocation(layout, value, s.loc)
		if err == nil {
			return at, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// validateDaySequence applies the batch ordering rules to one day.
func validateDaySequence(day importDay) error {
	events := day.events
	if events[0].Action != ActionTimeIn {
		return invalidLog(day.label, "first action must be TIME_IN")
	}
	for i := 1; i < len(events); i++ {
		prev, cur := events[i-1].Action, events[i].Action
		if prev == ActionTimeOut && cur != ActionTimeIn {
			return invalidLog(day.label, fmt.Sprintf("incorrect ordering: TIME_OUT cannot be followed by %s", cur))
		}
		if prev == ActionBreak && cur == ActionBreak {
			return invalidLog(day.label, "incorrect ordering: consecutive BREAK actions not allowed")
		}
	}
	if events[len(events)-1].Action != ActionTimeOut {
		return invalidLog(day.label, "last action must be TIME_OUT")
	}
	return nil
}
