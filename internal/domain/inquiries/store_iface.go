package inquiries

import "context"

type StoreAPI interface {
	Create(ctx context.Context, inquiry Inquiry) (Inquiry, error)
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, limit, offset int) ([]Inquiry, error)
	GetByTransactionNo(ctx context.Context, transactionNo string) (Inquiry, error)
	Update(ctx context.Context, transactionNo string, in Input) (Inquiry, error)
}
