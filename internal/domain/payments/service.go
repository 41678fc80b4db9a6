package payments

import (
	"context"
	"fmt"
)

// Recorder receives domain counters; *metrics.Collector satisfies it.
type Recorder interface {
	Materialized(n int64)
}

type noopRecorder struct{}

func (noopRecorder) Materialized(int64) {}

type Service struct {
	store   StoreAPI
	metrics Recorder
}

func NewService(store StoreAPI, metrics Recorder) *Service {
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &Service{store: store, metrics: metrics}
}

// GetPayRate returns nil when the employee has no rate yet.
func (s *Service) GetPayRate(ctx context.Context, employeeID string) (*PayRate, error) {
	return s.store.GetPayRate(ctx, employeeID)
}

// SetPayRate stores the rate and re-prices every open day from its
// effective date in the same transaction. It returns how many payment
// records were created or re-priced.
func (s *Service) SetPayRate(ctx context.Context, rate PayRate) (PayRate, int64, error) {
	if err := validatePayRate(rate); err != nil {
		return PayRate{}, 0, err
	}
	rate.EffectiveDate = civil(rate.EffectiveDate)
	rate.PayRate = rate.PayRate.Round(2)

	var changed int64
	err := s.store.InTx(ctx, func(tx TxStoreAPI) error {
		if err := tx.LockEmployee(ctx, rate.EmployeeID); err != nil {
			return err
		}
		if err := tx.UpsertPayRate(ctx, rate); err != nil {
			return err
		}
		n, err := materialize(ctx, tx, rate)
		changed = n
		return err
	})
	if err != nil {
		return PayRate{}, 0, err
	}
	s.metrics.Materialized(changed)
	return rate, changed, nil
}

// Materialize derives payment records from the stored rate. Paid records
// are never touched.
func (s *Service) Materialize(ctx context.Context, employeeID string) (int64, error) {
	var changed int64
	err := s.store.InTx(ctx, func(tx TxStoreAPI) error {
		if err := tx.LockEmployee(ctx, employeeID); err != nil {
			return err
		}
		rate, err := tx.GetPayRate(ctx, employeeID)
		if err != nil {
			return err
		}
		if rate == nil {
			return ErrNoPayRate
		}
		n, err := materialize(ctx, tx, *rate)
		changed = n
		return err
	})
	if err != nil {
		return 0, err
	}
	s.metrics.Materialized(changed)
	return changed, nil
}

func materialize(ctx context.Context, tx TxStoreAPI, rate PayRate) (int64, error) {
	refs, err := tx.ListBillableSummaries(ctx, rate.EmployeeID, rate.EffectiveDate)
	if err != nil {
		return 0, err
	}
	var changed int64
	for _, ref := range refs {
		amount := Price(rate, ref.TotalTimeSeconds)
		switch {
		case ref.RecordID == 0:
			rec := PaymentRecord{
				EmployeeID:     rate.EmployeeID,
				Date:           ref.Date,
				PayAmount:      amount,
				Status:         StatusUnpaid,
				DailySummaryID: ref.SummaryID,
			}
			if err := tx.InsertRecord(ctx, rec); err != nil {
				return changed, err
			}
			changed++
		case ref.RecordStatus == StatusUnpaid && !ref.RecordAmount.Equal(amount):
			if err := tx.UpdateUnpaidAmount(ctx, ref.RecordID, amount); err != nil {
				return changed, err
			}
			changed++
		}
	}
	return changed, nil
}

// Grouped returns the stored rate and every record grouped by filter;
// unknown filters fall back to daily.
func (s *Service) Grouped(ctx context.Context, employeeID, filter string) (GroupedView, error) {
	rate, err := s.store.GetPayRate(ctx, employeeID)
	if err != nil {
		return GroupedView{}, err
	}
	records, err := s.store.ListRecords(ctx, employeeID, RecordQuery{})
	if err != nil {
		return GroupedView{}, err
	}

	view := GroupedView{GroupedRecords: []PeriodGroup{}}
	if rate != nil {
		amount := rate.PayRate
		effective := rate.EffectiveDate.Format(dateLayout)
		view.PayRate = &amount
		view.PayRateSchedule = rate.PayRateSchedule
		view.EffectiveDate = &effective
	}

	switch filter {
	case FilterWeekly:
		view.GroupedRecords = GroupWeekly(records)
	case FilterMonthly:
		view.GroupedRecords = GroupMonthly(records)
	default:
		view.GroupedRecords = GroupDaily(records, LabelDay)
	}
	return view, nil
}

func validatePayRate(rate PayRate) error {
	if rate.EmployeeID == "" {
		return fmt.Errorf("%w: employee is required", ErrInvalidPayRate)
	}
	if !rate.PayRate.IsPositive() {
		return fmt.Errorf("%w: payRate must be greater than zero", ErrInvalidPayRate)
	}
	switch rate.PayRateSchedule {
	case ScheduleHourly, ScheduleDaily:
	default:
		return fmt.Errorf("%w: payRateSchedule must be Hourly or Daily", ErrInvalidPayRate)
	}
	if rate.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: effectiveDate is required", ErrInvalidPayRate)
	}
	return nil
}
