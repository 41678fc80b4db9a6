package timesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staffclock/internal/domain/core"
)

const (
	displayDateLayout = "Mon, Jan 2, 2006"
	displayTimeLayout = "03:04 PM"
	defaultPageSize   = 10
	defaultMaxRows    = 5000
)

type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

// Recorder receives domain counters; *metrics.Collector satisfies it.
type Recorder interface {
	ClockEvent(action string)
	RejectedTransition()
	Import(outcome string, events int)
}

type noopRecorder struct{}

func (noopRecorder) ClockEvent(string) {}

func (noopRecorder) RejectedTransition() {}

func (noopRecorder) Import(string, int) {}

type Service struct {
	store         StoreAPI
	employees     EmployeeDirectory
	loc           *time.Location
	now           func() time.Time
	metrics       Recorder
	maxImportRows int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithMetrics(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.metrics = r
		}
	}
}

func WithMaxImportRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxImportRows = n
		}
	}
}

func NewService(store StoreAPI, employees EmployeeDirectory, loc *time.Location, opts ...Option) *Service {
	if loc == nil {
		loc = time.UTC
	}
	s := &Service{
		store:         store,
		employees:     employees,
		loc:           loc,
		now:           time.Now,
		metrics:       noopRecorder{},
		maxImportRows: defaultMaxRows,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Location() *time.Location {
	return s.loc
}

// Today is the civil day of the current instant in the reference timezone.
func (s *Service) Today() time.Time {
	return CivilDay(s.now(), s.loc)
}

// RecordEvent validates action against the employee's day and stores it
// together with the recomputed daily summary, all in one transaction.
func (s *Service) RecordEvent(ctx context.Context, employeeID string, action Action, at time.Time) (ClockEvent, error) {
	if !action.Valid() {
		return ClockEvent{}, fmt.Errorf("%w: %d", ErrInvalidAction, uint8(action))
	}
	at = at.UTC().Truncate(time.Microsecond)
	day := CivilDay(at, s.loc)
	start, end := DayBounds(day, s.loc)

	var recorded ClockEvent
	err := s.store.InTx(ctx, func(tx TxStoreAPI) error {
		if err := tx.LockEmployeeDay(ctx, employeeID, day); err != nil {
			return err
		}
		events, err := tx.ListEvents(ctx, employeeID, start, end)
		if err != nil {
			return err
		}

		last := ActionNone
		if len(events) > 0 {
			latest := events[len(events)-1]
			last = latest.Action
			if at.Before(latest.OccurredAt) {
				return fmt.Errorf("%w: %s is before %s", ErrEventOutOfOrder, at.Format(time.RFC3339), latest.OccurredAt.UTC().Format(time.RFC3339))
			}
		}
		if _, err := Next(StateAfter(last), action); err != nil {
			return err
		}

		recorded, err = tx.InsertEvent(ctx, employeeID, action, at)
		if err != nil {
			return err
		}
		events = append(events, recorded)

		return tx.UpsertSummary(ctx, DailySummary{
			EmployeeID:       employeeID,
			Date:             day,
			TotalTimeSeconds: ElapsedSeconds(events),
			FirstEventAt:     events[0].OccurredAt,
			LastEventAt:      recorded.OccurredAt,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrEventOutOfOrder) {
			s.metrics.RejectedTransition()
		}
		return ClockEvent{}, err
	}

	s.metrics.ClockEvent(action.String())
	return recorded, nil
}

// DayState reads an employee's day without locking.
func (s *Service) DayState(ctx context.Context, employeeID string, day time.Time) (DayView, error) {
	start, end := DayBounds(day, s.loc)
	events, err := s.store.ListEvents(ctx, employeeID, start, end)
	if err != nil {
		return DayView{}, err
	}
	summary, err := s.store.GetSummary(ctx, employeeID, CivilDay(start, s.loc))
	if err != nil {
		return DayView{}, err
	}

	view := DayView{LastAction: ActionNone, Events: events, Summary: summary}
	if len(events) > 0 {
		view.LastAction = events[len(events)-1].Action
	}
	return view, nil
}

func (s *Service) TodayView(ctx context.Context, employeeID string) (TodayView, error) {
	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return TodayView{}, err
	}
	today := s.Today()
	view, err := s.DayState(ctx, employeeID, today)
	if err != nil {
		return TodayView{}, err
	}
	if len(view.Events) == 0 {
		return TodayView{LastAction: ActionNone}, nil
	}

	total := ElapsedSeconds(view.Events)
	if view.Summary != nil {
		total = view.Summary.TotalTimeSeconds
	}
	first := view.Events[0]
	last := view.Events[len(view.Events)-1]

	summary := &TodaySummary{
		FullName:  emp.FullName(),
		TotalTime: FormatDuration(total),
		TimeIn:    s.displayTime(first.OccurredAt),
		TimeSpan:  s.displayTime(first.OccurredAt),
		Date:      today.Format(displayDateLayout),
	}
	if len(view.Events) > 1 {
		timeOut := s.displayTime(last.OccurredAt)
		summary.TimeOut = &timeOut
		summary.TimeSpan = summary.TimeIn + " to " + timeOut
	}
	return TodayView{LastAction: view.LastAction, DailySummary: summary}, nil
}

// ListSummaries returns one page of daily summaries, newest first, plus the
// last action recorded today.
func (s *Service) ListSummaries(ctx context.Context, employeeID string, page, limit int) (SummaryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageSize
	}

	emp, err := s.employees.GetEmployee(ctx, employeeID)
	if err != nil {
		return SummaryPage{}, err
	}
	total, err := s.store.CountSummaries(ctx, employeeID)
	if err != nil {
		return SummaryPage{}, err
	}
	summaries, err := s.store.ListSummaries(ctx, employeeID, limit, (page-1)*limit)
	if err != nil {
		return SummaryPage{}, err
	}
	today, err := s.DayState(ctx, employeeID, s.Today())
	if err != nil {
		return SummaryPage{}, err
	}

	rows := make([]SummaryRow, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, s.summaryRow(emp, summary))
	}

	return SummaryPage{
		LastAction:     today.LastAction,
		DailySummaries: rows,
		TotalPages:     (total + limit - 1) / limit,
		CurrentPage:    page,
	}, nil
}

func (s *Service) summaryRow(emp core.Employee, summary DailySummary) SummaryRow {
	return SummaryRow{
		FullName:  emp.FullName(),
		Date:      summary.Date.Format(displayDateLayout),
		TotalTime: FormatDuration(summary.TotalTimeSeconds),
		TimeSpan:  s.displayTime(summary.FirstEventAt) + " - " + s.displayTime(summary.LastEventAt),
	}
}

func (s *Service) displayTime(t time.Time) string {
	return t.In(s.loc).Format(displayTimeLayout)
}
