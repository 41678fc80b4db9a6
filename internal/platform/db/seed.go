package db

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"staffclock/internal/platform/config"
)

// Seed makes sure the configured development employee exists. It is a no-op
// when no employee number is configured.
func Seed(ctx context.Context, pool *Pool, cfg config.Config) error {
	if strings.TrimSpace(cfg.SeedEmployeeNo) == "" {
		return nil
	}
	_, err := ensureEmployee(ctx, pool, cfg.SeedEmployeeNo, cfg.SeedFirstName, cfg.SeedLastName)
	return err
}

func ensureEmployee(ctx context.Context, pool *Pool, employeeNo, firstName, lastName string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM employees WHERE employee_no = $1", employeeNo).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", err
	}

	if strings.TrimSpace(firstName) == "" {
		firstName = "Seed"
	}
	if strings.TrimSpace(lastName) == "" {
		lastName = "Employee"
	}
	err = pool.QueryRow(ctx, `
    INSERT INTO employees (employee_no, first_name, last_name)
    VALUES ($1, $2, $3)
    ON CONFLICT (employee_no) DO UPDATE SET employee_no = EXCLUDED.employee_no
    RETURNING id
  `, employeeNo, firstName, lastName).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}
