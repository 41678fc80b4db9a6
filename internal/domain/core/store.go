package core

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"staffclock/internal/platform/querier"
)

type StoreAPI interface {
	GetEmployee(ctx context.Context, employeeID string) (Employee, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	var emp Employee
	err := s.DB.QueryRow(ctx, `
    SELECT id::text, employee_no, first_name, last_name
    FROM employees
    WHERE id = $1
  `, employeeID).Scan(&emp.ID, &emp.EmployeeNo, &emp.FirstName, &emp.LastName)
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrEmployeeNotFound
	}
	if err != nil {
		return Employee{}, err
	}
	return emp, nil
}
