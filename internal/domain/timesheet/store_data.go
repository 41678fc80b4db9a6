package timesheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

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
			slog.Warn("timesheet rollback failed", "err", err)
		}
	}()

	if err := fn(&txStore{DB: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) ListEvents(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error) {
	return listEvents(ctx, s.DB, employeeID, from, to)
}

func (s *Store) GetSummary(ctx context.Context, employeeID string, day time.Time) (*DailySummary, error) {
	var summary DailySummary
	err := s.DB.QueryRow(ctx, `
    SELECT id, employee_id::text, work_date, total_time_seconds, first_event_at, last_event_at
    FROM daily_summaries
    WHERE employee_id = $1 AND work_date = $2::date
  `, employeeID, day.Format(dateLayout)).Scan(&summary.ID, &summary.EmployeeID, &summary.Date, &summary.TotalTimeSeconds, &summary.FirstEventAt, &summary.LastEventAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (s *Store) CountSummaries(ctx context.Context, employeeID string) (int, error) {
	var total int
	err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM daily_summaries WHERE employee_id = $1", employeeID).Scan(&total)
	return total, err
}

// ListSummaries returns summaries newest first; limit <= 0 means all.
func (s *Store) ListSummaries(ctx context.Context, employeeID string, limit, offset int) ([]DailySummary, error) {
	query := `
    SELECT id, employee_id::text, work_date, total_time_seconds, first_event_at, last_event_at
    FROM daily_summaries
    WHERE employee_id = $1
    ORDER BY work_date DESC`
	args := []any{employeeID}
	if limit > 0 {
		query += " LIMIT $2 OFFSET $3"
		args = append(args, limit, offset)
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []DailySummary
	for rows.Next() {
		var summary DailySummary
		if err := rows.Scan(&summary.ID, &summary.EmployeeID, &summary.Date, &summary.TotalTimeSeconds, &summary.FirstEventAt, &summary.LastEventAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

type txStore struct {
	DB querier.Querier
}

// LockEmployeeDay serializes writers of one employee-day until the
// surrounding transaction ends.
func (t *txStore) LockEmployeeDay(ctx context.Context, employeeID string, day time.Time) error {
	_, err := t.DB.Exec(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1::text || ':' || $2::text, 0))", employeeID, day.Format(dateLayout))
	return err
}

func (t *txStore) ListEvents(ctx context.Context, employeeID string, from, to time.Time) ([]ClockEvent, error) {
	return listEvents(ctx, t.DB, employeeID, from, to)
}

func (t *txStore) InsertEvent(ctx context.Context, employeeID string, action Action, at time.Time) (ClockEvent, error) {
	evt := ClockEvent{EmployeeID: employeeID, Action: action}
	err := t.DB.QueryRow(ctx, `
    INSERT INTO clock_events (employee_id, action, occurred_at)
    VALUES ($1, $2, $3)
    RETURNING id, occurred_at
  `, employeeID, action.String(), at).Scan(&evt.ID, &evt.OccurredAt)
	if err != nil {
		return ClockEvent{}, err
	}
	return evt, nil
}

func (t *txStore) InsertEvents(ctx context.Context, employeeID string, events []ClockEvent) error {
	if len(events) == 0 {
		return nil
	}
	actions := make([]string, len(events))
	times := make([]time.Time, len(events))
	for i, evt := range events {
		actions[i] = evt.Action.String()
		times[i] = evt.OccurredAt
	}
	_, err := t.DB.Exec(ctx, `
    INSERT INTO clock_events (employee_id, action, occurred_at)
    SELECT $1::uuid, a.action, a.occurred_at
    FROM unnest($2::text[], $3::timestamptz[]) WITH ORDINALITY AS a(action, occurred_at, ord)
    ORDER BY a.ord
  `, employeeID, actions, times)
	return err
}

func (t *txStore) SummaryExists(ctx context.Context, employeeID string, day time.Time) (bool, error) {
	var exists bool
	err := t.DB.QueryRow(ctx, `
    SELECT EXISTS (SELECT 1 FROM daily_summaries WHERE employee_id = $1 AND work_date = $2::date)
  `, employeeID, day.Format(dateLayout)).Scan(&exists)
	return exists, err
}

func (t *txStore) UpsertSummary(ctx context.Context, summary DailySummary) error {
	_, err := t.DB.Exec(ctx, `
    INSERT INTO daily_summaries (employee_id, work_date, total_time_seconds, first_event_at, last_event_at)
    VALUES ($1, $2::date, $3, $4, $5)
    ON CONFLICT (employee_id, work_date) DO UPDATE
    SET total_time_seconds = EXCLUDED.total_time_seconds,
        first_event_at = EXCLUDED.first_event_at,
        last_event_at = EXCLUDED.last_event_at
  `, summary.EmployeeID, summary.Date.Format(dateLayout), summary.TotalTimeSeconds, summary.FirstEventAt, summary.LastEventAt)
	return err
}

func (t *txStore) InsertSummary(ctx context.Context, summary DailySummary) error {
	_, err := t.DB.Exec(ctx, `
    INSERT INTO daily_summaries (employee_id, work_date, total_time_seconds, first_event_at, last_event_at)
    VALUES ($1, $2::date, $3, $4, $5)
  `, summary.EmployeeID, summary.Date.Format(dateLayout), summary.TotalTimeSeconds, summary.FirstEventAt, summary.LastEventAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w for %s", ErrDuplicateDay, summary.Date.Format(dateLayout))
	}
	return err
}

func listEvents(ctx context.Context, db querier.Querier, employeeID string, from, to time.Time) ([]ClockEvent, error) {
	rows, err := db.Query(ctx, `
    SELECT id, employee_id::text, action, occurred_at
    FROM clock_events
    WHERE employee_id = $1 AND occurred_at >= $2 AND occurred_at < $3
    ORDER BY occurred_at, id
  `, employeeID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ClockEvent
	for rows.Next() {
		var evt ClockEvent
		var action string
		if err := rows.Scan(&evt.ID, &evt.EmployeeID, &action, &evt.OccurredAt); err != nil {
			return nil, err
		}
		if evt.Action, err = ParseAction(action); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
