package inquiries

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"staffclock/internal/platform/querier"
)

const inquiryColumns = `id::text, transaction_no, first_name, last_name, contact_no, email_address,
           subject, message, status, created_at, updated_at`

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, inquiry Inquiry) (Inquiry, error) {
	row := s.DB.QueryRow(ctx, `
    INSERT INTO inquiries (transaction_no, first_name, last_name, contact_no, email_address, subject, message, status)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    RETURNING `+inquiryColumns,
		inquiry.TransactionNo, inquiry.FirstName, inquiry.LastName, inquiry.ContactNo,
		inquiry.EmailAddress, inquiry.Subject, inquiry.Message, inquiry.Status)
	created, err := scanInquiry(row)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return Inquiry{}, ErrTransactionNoTaken
	}
	return created, err
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM inquiries").Scan(&total)
	return total, err
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]Inquiry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+inquiryColumns+`
    FROM inquiries
    ORDER BY created_at, id
    LIMIT $1 OFFSET $2
  `, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		inquiry, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inquiry)
	}
	return out, rows.Err()
}

func (s *Store) GetByTransactionNo(ctx context.Context, transactionNo string) (Inquiry, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT `+inquiryColumns+`
    FROM inquiries
    WHERE transaction_no = $1
  `, transactionNo)
	return scanInquiry(row)
}

func (s *Store) Update(ctx context.Context, transactionNo string, in Input) (Inquiry, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE inquiries
    SET first_name = $2, last_name = $3, contact_no = $4, email_address = $5,
        subject = $6, message = $7, status = $8, updated_at = NOW()
    WHERE transaction_no = $1
    RETURNING `+inquiryColumns,
		transactionNo, in.FirstName, in.LastName, in.ContactNo, in.EmailAddress, in.Subject, in.Message, in.Status)
	return scanInquiry(row)
}

func scanInquiry(row pgx.Row) (Inquiry, error) {
	var i Inquiry
	err := row.Scan(&i.ID, &i.TransactionNo, &i.FirstName, &i.LastName, &i.ContactNo, &i.EmailAddress,
		&i.Subject, &i.Message, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Inquiry{}, ErrNotFound
	}
	return i, err
}
