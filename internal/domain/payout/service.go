package payout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"staffclock/internal/domain/payments"
)

const dateLayout = "2006-01-02"

// RecordStore is the slice of the payments store a payout needs;
// *payments.Store satisfies it.
type RecordStore interface {
	ListRecords(ctx context.Context, employeeID string, q payments.RecordQuery) ([]payments.PaymentRecord, error)
	MarkPaid(ctx context.Context, employeeID string, ids []int64, paidAt time.Time) (int64, error)
}

// Recorder receives domain counters; *metrics.Collector satisfies it.
type Recorder interface {
	Payout(method, frequency string)
	MarkedPaid(n int64)
}

type noopRecorder struct{}

func (noopRecorder) Payout(string, string) {}

func (noopRecorder) MarkedPaid(int64) {}

type Service struct {
	records RecordStore
	metrics Recorder
	now     func() time.Time
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

func NewService(records RecordStore, opts ...Option) *Service {
	s := &Service{records: records, metrics: noopRecorder{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputePayout groups the employee's Unpaid records for the requested
// payout. A manual range is moved forward one day on both ends before it is
// applied.
func (s *Service) ComputePayout(ctx context.Context, employeeID string, req Request) (Result, error) {
	switch req.Method {
	case MethodManual:
		return s.manual(ctx, employeeID, req)
	case MethodAutomatic:
		return s.automatic(ctx, employeeID, req)
	default:
		return Result{}, fmt.Errorf("%w: payoutMethod must be Manual or Automatic", ErrInvalidRequest)
	}
}

func (s *Service) manual(ctx context.Context, employeeID string, req Request) (Result, error) {
	if req.DateRange == nil {
		return Result{}, fmt.Errorf("%w: dateRange is required for Manual payouts", ErrInvalidRequest)
	}
	start, err := parseDate("dateRange.startDate", req.DateRange.StartDate)
	if err != nil {
		return Result{}, err
	}
	end, err := parseDate("dateRange.endDate", req.DateRange.EndDate)
	if err != nil {
		return Result{}, err
	}
	if end.Before(start) {
		return Result{}, fmt.Errorf("%w: dateRange.endDate must be on or after dateRange.startDate", ErrInvalidRequest)
	}
	start = start.AddDate(0, 0, 1)
	end = end.AddDate(0, 0, 1)

	records, err := s.records.ListRecords(ctx, employeeID, payments.RecordQuery{
		Status: payments.StatusUnpaid,
		From:   start,
		To:     end,
	})
	if err != nil {
		return Result{}, err
	}
	s.metrics.Payout(MethodManual, "")
	return Result{
		GroupedRecords: []payments.PeriodGroup{payments.GroupManual(records, start, end)},
		PaymentRecords: nonNil(records),
	}, nil
}

func (s *Service) automatic(ctx context.Context, employeeID string, req Request) (Result, error) {
	var group func([]payments.PaymentRecord) []payments.PeriodGroup
	switch req.Frequency {
	case FrequencyDaily:
		group = func(records []payments.PaymentRecord) []payments.PeriodGroup {
			return payments.GroupDaily(records, payments.LabelPayoutDay)
		}
	case FrequencyBiMonthly:
		group = payments.GroupBiMonthly
	case FrequencyMonthly:
		group = payments.GroupMonthly
	default:
		return Result{}, fmt.Errorf("%w: payoutFrequency must be Daily, Bi-Monthly or Monthly", ErrInvalidRequest)
	}

	records, err := s.records.ListRecords(ctx, employeeID, payments.RecordQuery{Status: payments.StatusUnpaid})
	if err != nil {
		return Result{}, err
	}
	s.metrics.Payout(MethodAutomatic, req.Frequency)
	return Result{GroupedRecords: group(records), PaymentRecords: nonNil(records)}, nil
}

// MarkPaid moves the employee's listed Unpaid records to Paid in one
// statement and returns how many changed.
func (s *Service) MarkPaid(ctx context.Context, employeeID string, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoRecords
	}
	n, err := s.records.MarkPaid(ctx, employeeID, ids, s.now().UTC())
	if err != nil {
		return 0, err
	}
	s.metrics.MarkedPaid(n)
	return n, nil
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: %s is required", ErrInvalidRequest, field)
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date in YYYY-MM-DD format", ErrInvalidRequest, field)
	}
	return t, nil
}

func nonNil(records []payments.PaymentRecord) []payments.PaymentRecord {
	if records == nil {
		return []payments.PaymentRecord{}
	}
	return records
}
