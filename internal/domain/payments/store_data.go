package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"staffclock/internal/platform/querier"
)

const dateLayout = "2006-01-02"

type Store struct {
	DB querier.TxBeginner
}

func NewStore(db querier.TxBeginner) *Store {
	return &Store{DB: db}
}

func (s *Store) InTx(ctx context.Context, fn func(tx TxStoreAPI) error) error {
	tx, err := s.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Warn("payments rollback failed", "err", err)
		}
	}()

	if err := fn(&txStore{DB: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetPayRate(ctx context.Context, employeeID string) (*PayRate, error) {
	return getPayRate(ctx, s.DB, employeeID)
}

// ListRecords returns records oldest first. Zero bounds are open.
func (s *Store) ListRecords(ctx context.Context, employeeID string, q RecordQuery) ([]PaymentRecord, error) {
	query := `
    SELECT p.id, p.employee_id::text, p.work_date, p.pay_amount::text, p.status,
           p.daily_summary_id, d.total_time_seconds
    FROM payment_records p
    JOIN daily_summaries d ON d.id = p.daily_summary_id
    WHERE p.employee_id = $1`
	args := []any{employeeID}
	if q.Status != "" {
		args = append(args, string(q.Status))
		query += fmt.Sprintf(" AND p.status = $%d", len(args))
	}
	if !q.From.IsZero() {
		args = append(args, q.From.Format(dateLayout))
		query += fmt.Sprintf(" AND p.work_date >= $%d::date", len(args))
	}
	if !q.To.IsZero() {
		args = append(args, q.To.Format(dateLayout))
		query += fmt.Sprintf(" AND p.work_date <= $%d::date", len(args))
	}
	query += " ORDER BY p.work_date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PaymentRecord
	for rows.Next() {
		var rec PaymentRecord
		var amount, status string
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &rec.Date, &amount, &status, &rec.DailySummaryID, &rec.TotalTimeSeconds); err != nil {
			return nil, err
		}
		if rec.PayAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		rec.Status = Status(status)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkPaid flips the employee's Unpaid records among ids to Paid and
// reports how many changed.
func (s *Store) MarkPaid(ctx context.Context, employeeID string, ids []int64, paidAt time.Time) (int64, error) {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payment_records
    SET status = 'Paid', paid_at = $3
    WHERE employee_id = $1 AND id = ANY($2::bigint[]) AND status = 'Unpaid'
  `, employeeID, ids, paidAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type txStore struct {
	DB querier.Querier
}

func (t *txStore) LockEmployee(ctx context.Context, employeeID string) error {
	_, err := t.DB.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended('payrate:' || $1::text, 0))", employeeID)
	return err
}

func (t *txStore) GetPayRate(ctx context.Context, employeeID string) (*PayRate, error) {
	return getPayRate(ctx, t.DB, employeeID)
}

func (t *txStore) UpsertPayRate(ctx context.Context, rate PayRate) error {
	_, err := t.DB.Exec(ctx, `
    INSERT INTO pay_rates (employee_id, pay_rate, pay_rate_schedule, effective_date, updated_at)
    VALUES ($1, $2::numeric, $3, $4::date, NOW())
    ON CONFLICT (employee_id) DO UPDATE
    SET pay_rate = EXCLUDED.pay_rate,
        pay_rate_schedule = EXCLUDED.pay_rate_schedule,
        effective_date = EXCLUDED.effective_date,
        updated_at = NOW()
  `, rate.EmployeeID, rate.PayRate.StringFixed(2), string(rate.PayRateSchedule), rate.EffectiveDate.Format(dateLayout))
	return err
}

func (t *txStore) ListBillableSummaries(ctx context.Context, employeeID string, from time.Time) ([]SummaryRef, error) {
	rows, err := t.DB.Query(ctx, `
    SELECT d.id, d.work_date, d.total_time_seconds,
           COALESCE(p.id, 0), COALESCE(p.status, ''), COALESCE(p.pay_amount, 0)::text
    FROM daily_summaries d
    LEFT JOIN payment_records p ON p.daily_summary_id = d.id
    WHERE d.employee_id = $1 AND d.work_date >= $2::date AND d.total_time_seconds > 0
    ORDER BY d.work_date
  `, employeeID, from.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []SummaryRef
	for rows.Next() {
		var ref SummaryRef
		var status, amount string
		if err := rows.Scan(&ref.SummaryID, &ref.Date, &ref.TotalTimeSeconds, &ref.RecordID, &status, &amount); err != nil {
			return nil, err
		}
		if ref.RecordAmount, err = decimal.NewFromString(amount); err != nil {
			return nil, err
		}
		ref.RecordStatus = Status(status)
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

func (t *txStore) InsertRecord(ctx context.Context, rec PaymentRecord) error {
	_, err := t.DB.Exec(ctx, `
    INSERT INTO payment_records (employee_id, daily_summary_id, work_date, pay_amount, status)
    VALUES ($1, $2, $3::date, $4::numeric, $5)
    ON CONFLICT (employee_id, work_date) DO NOTHING
  `, rec.EmployeeID, rec.DailySummaryID, rec.Date.Format(dateLayout), rec.PayAmount.StringFixed(2), string(StatusUnpaid))
	return err
}

func (t *txStore) UpdateUnpaidAmount(ctx context.Context, id int64, amount decimal.Decimal) error {
	_, err := t.DB.Exec(ctx, `
    UPDATE payment_records SET pay_amount = $2::numeric
    WHERE id = $1 AND status = 'Unpaid'
  `, id, amount.StringFixed(2))
	return err
}

func getPayRate(ctx context.Context, db querier.Querier, employeeID string) (*PayRate, error) {
	var rate PayRate
	var amount, schedule string
	err := db.QueryRow(ctx, `
    SELECT employee_id::text, pay_rate::text, pay_rate_schedule, effective_date
    FROM pay_rates
    WHERE employee_id = $1
  `, employeeID).Scan(&rate.EmployeeID, &amount, &schedule, &rate.EffectiveDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rate.PayRate, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	rate.PayRateSchedule = Schedule(schedule)
	return &rate, nil
}
