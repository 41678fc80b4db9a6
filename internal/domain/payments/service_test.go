package payments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

type memSummary struct {
	id      int64
	date    time.Time
	seconds int64
}

type memStore struct {
	rate      *PayRate
	summaries []memSummary
	records   []PaymentRecord
	nextID    int64
	locks     int
}

func (m *memStore) InTx(ctx context.Context, fn func(tx TxStoreAPI) error) error {
	rate := m.rate
	records := append([]PaymentRecord(nil), m.records...)
	if err := fn(m); err != nil {
		m.rate = rate
		m.records = records
		return err
	}
	return nil
}

func (m *memStore) LockEmployee(context.Context, string) error {
	m.locks++
	return nil
}

func (m *memStore) GetPayRate(context.Context, string) (*PayRate, error) {
	if m.rate == nil {
		return nil, nil
	}
	rate := *m.rate
	return &rate, nil
}

func (m *memStore) UpsertPayRate(_ context.Context, rate PayRate) error {
	m.rate = &rate
	return nil
}

func (m *memStore) ListBillableSummaries(_ context.Context, _ string, from time.Time) ([]SummaryRef, error) {
	var refs []SummaryRef
	for _, s := range m.summaries {
		if s.date.Before(from) || s.seconds <= 0 {
			continue
		}
		ref := SummaryRef{SummaryID: s.id, Date: s.date, TotalTimeSeconds: s.seconds}
		for _, rec := range m.records {
			if rec.DailySummaryID == s.id {
				ref.RecordID = rec.ID
				ref.RecordStatus = rec.Status
				ref.RecordAmount = rec.PayAmount
			}
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (m *memStore) InsertRecord(_ context.Context, rec PaymentRecord) error {
	m.nextID++
	rec.ID = m.nextID
	for _, s := range m.summaries {
		if s.id == rec.DailySummaryID {
			rec.TotalTimeSeconds = s.seconds
		}
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memStore) UpdateUnpaidAmount(_ context.Context, id int64, amount decimal.Decimal) error {
	for i := range m.records {
		if m.records[i].ID == id && m.records[i].Status == StatusUnpaid {
			m.records[i].PayAmount = amount
		}
	}
	return nil
}

func (m *memStore) ListRecords(_ context.Context, _ string, q RecordQuery) ([]PaymentRecord, error) {
	var out []PaymentRecord
	for _, rec := range m.records {
		if q.Status != "" && rec.Status != q.Status {
			continue
		}
		if !q.From.IsZero() && rec.Date.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && rec.Date.After(q.To) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (m *memStore) MarkPaid(_ context.Context, _ string, ids []int64, _ time.Time) (int64, error) {
	var n int64
	for i := range m.records {
		for _, id := range ids {
			if m.records[i].ID == id && m.records[i].Status == StatusUnpaid {
				m.records[i].Status = StatusPaid
				n++
			}
		}
	}
	return n, nil
}

type countingRecorder struct{ total int64 }

func (c *countingRecorder) Materialized(n int64) { c.total += n }

func seededStore() *memStore {
	return &memStore{summaries: []memSummary{
		{id: 1, date: day("2024-02-28"), seconds: 28800},
		{id: 2, date: day("2024-03-01"), seconds: 25200},
		{id: 3, date: day("2024-03-02"), seconds: 0},
		{id: 4, date: day("2024-03-04"), seconds: 3600},
	}}
}

func TestSetPayRateMaterializesFromEffectiveDate(t *testing.T) {
	store := seededStore()
	rec := &countingRecorder{}
	svc := NewService(store, rec)

	rate, changed, err := svc.SetPayRate(context.Background(), PayRate{
		EmployeeID:      "emp-1",
		PayRate:         decimal.RequireFromString("100"),
		PayRateSchedule: ScheduleHourly,
		EffectiveDate:   day("2024-03-01"),
	})
	if err != nil {
		t.Fatalf("set pay rate: %v", err)
	}
	if changed != 2 || rec.total != 2 || store.locks != 1 {
		t.Fatalf("expected 2 records and 1 lock, got %d/%d/%d", changed, rec.total, store.locks)
	}
	if rate.EffectiveDate != day("2024-03-01") {
		t.Fatalf("unexpected effective date %v", rate.EffectiveDate)
	}
	if !store.records[0].PayAmount.Equal(decimal.RequireFromString("700")) {
		t.Fatalf("expected 700, got %s", store.records[0].PayAmount)
	}
	if !store.records[1].PayAmount.Equal(decimal.RequireFromString("100")) {
		t.Fatalf("expected 100, got %s", store.records[1].PayAmount)
	}
}

func TestSetPayRateRepricesOnlyUnpaid(t *testing.T) {
	store := seededStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	base := PayRate{
		EmployeeID:      "emp-1",
		PayRate:         decimal.RequireFromString("100"),
		PayRateSchedule: ScheduleHourly,
		EffectiveDate:   day("2024-03-01"),
	}
	if _, _, err := svc.SetPayRate(ctx, base); err != nil {
		t.Fatalf("set pay rate: %v", err)
	}
	if n, err := store.MarkPaid(ctx, "emp-1", []int64{1}, time.Now()); err != nil || n != 1 {
		t.Fatalf("mark paid: %d %v", n, err)
	}

	base.PayRate = decimal.RequireFromString("800")
	base.PayRateSchedule = ScheduleDaily
	_, changed, err := svc.SetPayRate(ctx, base)
	if err != nil {
		t.Fatalf("set pay rate: %v", err)
	}
	if changed != 1 {
		t.Fatalf("expected 1 re-priced record, got %d", changed)
	}
	if !store.records[0].PayAmount.Equal(decimal.RequireFromString("700")) || store.records[0].Status != StatusPaid {
		t.Fatalf("paid record changed: %+v", store.records[0])
	}
	if !store.records[1].PayAmount.Equal(decimal.RequireFromString("800")) {
		t.Fatalf("expected 800, got %s", store.records[1].PayAmount)
	}

	again, err := svc.Materialize(ctx, "emp-1")
	if err != nil || again != 0 {
		t.Fatalf("expected idempotent materialize, got %d %v", again, err)
	}
}

func TestSetPayRateValidation(t *testing.T) {
	svc := NewService(seededStore(), nil)
	cases := []PayRate{
		{EmployeeID: "emp-1", PayRate: decimal.Zero, PayRateSchedule: ScheduleHourly, EffectiveDate: day("2024-03-01")},
		{EmployeeID: "emp-1", PayRate: decimal.NewFromInt(-5), PayRateSchedule: ScheduleHourly, EffectiveDate: day("2024-03-01")},
		{EmployeeID: "emp-1", PayRate: decimal.NewFromInt(5), PayRateSchedule: "Weekly", EffectiveDate: day("2024-03-01")},
		{EmployeeID: "emp-1", PayRate: decimal.NewFromInt(5), PayRateSchedule: ScheduleDaily},
	}
	for _, rate := range cases {
		if _, _, err := svc.SetPayRate(context.Background(), rate); !errors.Is(err, ErrInvalidPayRate) {
			t.Fatalf("expected ErrInvalidPayRate for %+v, got %v", rate, err)
		}
	}
}

func TestMaterializeWithoutRate(t *testing.T) {
	svc := NewService(seededStore(), nil)
	if _, err := svc.Materialize(context.Background(), "emp-1"); !errors.Is(err, ErrNoPayRate) {
		t.Fatalf("expected ErrNoPayRate, got %v", err)
	}
}

func TestGroupedFallsBackToDaily(t *testing.T) {
	store := seededStore()
	svc := NewService(store, nil)
	ctx := context.Background()

	view, err := svc.Grouped(ctx, "emp-1", "daily")
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	if view.PayRate != nil || view.EffectiveDate != nil || len(view.GroupedRecords) != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}

	if _, _, err := svc.SetPayRate(ctx, PayRate{
		EmployeeID:      "emp-1",
		PayRate:         decimal.RequireFromString("10"),
		PayRateSchedule: ScheduleHourly,
		EffectiveDate:   day("2024-02-01"),
	}); err != nil {
		t.Fatalf("set pay rate: %v", err)
	}

	view, err = svc.Grouped(ctx, "emp-1", "yearly")
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	if len(view.GroupedRecords) != 3 || view.GroupedRecords[0].Date != "Mon, Mar 4, 2024" {
		t.Fatalf("unexpected daily fallback: %+v", view.GroupedRecords)
	}
	if *view.EffectiveDate != "2024-02-01" || view.PayRateSchedule != ScheduleHourly {
		t.Fatalf("unexpected rate fields: %+v", view)
	}

	weekly, err := svc.Grouped(ctx, "emp-1", FilterWeekly)
	if err != nil {
		t.Fatalf("grouped: %v", err)
	}
	if len(weekly.GroupedRecords) != 2 || weekly.GroupedRecords[1].Date != "Feb 26 to Mar 3" {
		t.Fatalf("unexpected weekly groups: %+v", weekly.GroupedRecords)
	}
}
