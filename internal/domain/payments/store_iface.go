package payments

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type StoreAPI interface {
	InTx(ctx context.Context, fn func(tx TxStoreAPI) error) error
	GetPayRate(ctx context.Context, employeeID string) (*PayRate, error)
	ListRecords(ctx context.Context, employeeID string, q RecordQuery) ([]PaymentRecord, error)
}

type TxStoreAPI interface {
	LockEmployee(ctx context.Context, employeeID string) error
	GetPayRate(ctx context.Context, employeeID string) (*PayRate, error)
	UpsertPayRate(ctx context.Context, rate PayRate) error
	ListBillableSummaries(ctx context.Context, employeeID string, from time.Time) ([]SummaryRef, error)
	InsertRecord(ctx context.Context, rec PaymentRecord) error
	UpdateUnpaidAmount(ctx context.Context, id int64, amount decimal.Decimal) error
}
