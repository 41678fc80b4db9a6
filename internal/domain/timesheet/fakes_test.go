package timesheet

import (
	"context"
	"sort"
	"time"

	"staffclock/internal/domain/core"
)

type memStore struct {
	events    []ClockEvent
	summaries map[string]DailySummary
	nextID    int64
	locks     []string
	failWith  error
}

func newMemStore() *memStore {
	return &memStore{summaries: map[string]DailySummary{}}
}

func summaryKey(employeeID string, day time.Time) string {
	return employeeID + "|" + day.Format(dateLayout)
}

func (m *memStore) InTx(ctx context.Context, fn func(tx TxStoreAPI) error) error {
	events := append([]ClockEvent(nil), m.events...)
	summaries := make(map[string]DailySummary, len(m.summaries))
	for k, v := range m.summaries {
		summaries[k] = v
	}
	nextID := m.nextID

	if err := fn(&memTx{m}); err != nil {
		m.events, m.summaries, m.nextID = events, summaries, nextID
		return err
	}
	return nil
}

func (m *memStore) ListEvents(_ context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error) {
	var out []ClockEvent
	for _, evt := range m.events {
		if evt.EmployeeID == employeeID && !evt.OccurredAt.Before(from) && evt.OccurredAt.Before(to) {
			out = append(out, evt)
		}
	}
	sortEvents(out)
	return out, nil
}

func (m *memStore) GetSummary(_ context.Context, employeeID string, day time.Time) (*DailySummary, error) {
	summary, ok := m.summaries[summaryKey(employeeID, day)]
	if !ok {
		return nil, nil
	}
	return &summary, nil
}

func (m *memStore) CountSummaries(_ context.Context, employeeID string) (int, error) {
	total := 0
	for _, summary := range m.summaries {
		if summary.EmployeeID == employeeID {
			total++
		}
	}
	return total, nil
}

func (m *memStore) ListSummaries(_ context.Context, employeeID string, limit, offset int) ([]DailySummary, error) {
	var out []DailySummary
	for _, summary := range m.summaries {
		if summary.EmployeeID == employeeID {
			out = append(out, summary)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit <= 0 {
		return out, nil
	}
	if offset >= len(out) {
		return nil, nil
	}
	end := min(offset+limit, len(out))
	return out[offset:end], nil
}

type memTx struct {
	m *memStore
}

func (t *memTx) LockEmployeeDay(_ context.Context, employeeID string, day time.Time) error {
	t.m.locks = append(t.m.locks, summaryKey(employeeID, day))
	return nil
}

func (t *memTx) ListEvents(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error) {
	return t.m.ListEvents(ctx, employeeID, from, to)
}

func (t *memTx) InsertEvent(_ context.Context, employeeID string, action Action, at time.Time) (ClockEvent, error) {
	t.m.nextID++
	evt := ClockEvent{ID: t.m.nextID, EmployeeID: employeeID, Action: action, OccurredAt: at}
	t.m.events = append(t.m.events, evt)
	return evt, nil
}

func (t *memTx) InsertEvents(_ context.Context, employeeID string, events []ClockEvent) error {
	for _, evt := range events {
		t.m.nextID++
		evt.ID = t.m.nextID
		evt.EmployeeID = employeeID
		t.m.events = append(t.m.events, evt)
	}
	return nil
}

func (t *memTx) SummaryExists(_ context.Context, employeeID string, day time.Time) (bool, error) {
	_, ok := t.m.summaries[summaryKey(employeeID, day)]
	return ok, nil
}

func (t *memTx) UpsertSummary(_ context.Context, summary DailySummary) error {
	key := summaryKey(summary.EmployeeID, summary.Date)
	if existing, ok := t.m.summaries[key]; ok {
		summary.ID = existing.ID
	} else {
		t.m.nextID++
		summary.ID = t.m.nextID
	}
	t.m.summaries[key] = summary
	return nil
}

func (t *memTx) InsertSummary(_ context.Context, summary DailySummary) error {
	if t.m.failWith != nil {
		return t.m.failWith
	}
	key := summaryKey(summary.EmployeeID, summary.Date)
	if _, ok := t.m.summaries[key]; ok {
		return ErrDuplicateDay
	}
	t.m.nextID++
	summary.ID = t.m.nextID
	t.m.summaries[key] = summary
	return nil
}

type directory map[string]core.Employee

func (d directory) GetEmployee(_ context.Context, employeeID string) (core.Employee, error) {
	emp, ok := d[employeeID]
	if !ok {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	return emp, nil
}

type countingRecorder struct {
	events   map[string]int
	rejected int
	imports  map[string]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{events: map[string]int{}, imports: map[string]int{}}
}

func (c *countingRecorder) ClockEvent(action string) { c.events[action]++ }

func (c *countingRecorder) RejectedTransition() { c.rejected++ }

func (c *countingRecorder) Import(outcome string, _ int) { c.imports[outcome]++ }

const testEmployee = "emp-1"

func newTestService(store *memStore, loc *time.Location, now time.Time, opts ...Option) *Service {
	dir := directory{testEmployee: {ID: testEmployee, EmployeeNo: "E-001", FirstName: "Juan", LastName: "Dela Cruz"}}
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewService(store, dir, loc, opts...)
}

// sortEvents mirrors the store's ORDER BY occurred_at, id.
func sortEvents(events []ClockEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].OccurredAt.Equal(events[j].OccurredAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].OccurredAt.Before(events[j].OccurredAt)
	})
}
