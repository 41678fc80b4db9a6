package timesheet

import (
	"context"
	"time"
)

type StoreAPI interface {
	InTx(ctx context.Context, fn func(tx TxStoreAPI) error) error
	ListEvents(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error)
	GetSummary(ctx context.Context, employeeID string, day time.Time) (*DailySummary, error)
	CountSummaries(ctx context.Context, employeeID string) (int, error)
	ListSummaries(ctx context.Context, employeeID string, limit, offset int) ([]DailySummary, error)
}

// TxStoreAPI is the store as seen from inside a single transaction.
type TxStoreAPI interface {
	LockEmployeeDay(ctx context.Context, employeeID string, day time.Time) error
	ListEvents(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error)
	InsertEvent(ctx context.Context, employeeID string, action Action, at time.Time) (ClockEvent, error)
	InsertEvents(ctx context.Context, employeeID string, events []ClockEvent) error
	SummaryExists(ctx context.Context, employeeID string, day time.Time) (bool, error)
	UpsertSummary(ctx context.Context, summary DailySummary) error
	InsertSummary(ctx context.Context, summary DailySummary) error
}
