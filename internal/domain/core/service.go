package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

// GetEmployee resolves the employee row behind an authenticated identity.
func (s *Service) GetEmployee(ctx context.Context, employeeID string) (Employee, error) {
	id, err := uuid.Parse(strings.TrimSpace(employeeID))
	if err != nil {
		return Employee{}, ErrEmployeeNotFound
	}
	return s.store.GetEmployee(ctx, id.String())
}
