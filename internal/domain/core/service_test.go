package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeStore map[string]Employee

func (f fakeStore) GetEmployee(_ context.Context, employeeID string) (Employee, error) {
	emp, ok := f[employeeID]
	if !ok {
		return Employee{}, ErrEmployeeNotFound
	}
	return emp, nil
}

const adaID = "7b0e3c52-1f4a-4c8e-9d2b-5a6f0e1c3d49"

func TestGetEmployee(t *testing.T) {
	svc := NewService(fakeStore{adaID: {ID: adaID, FirstName: "Ada", LastName: "Lovelace"}})

	emp, err := svc.GetEmployee(context.Background(), adaID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emp.FullName() != "Ada Lovelace" {
		t.Fatalf("unexpected full name %q", emp.FullName())
	}

	if _, err := svc.GetEmployee(context.Background(), " "+strings.ToUpper(adaID)+" "); err != nil {
		t.Fatalf("expected padded upper-case id to resolve, got %v", err)
	}
	if _, err := svc.GetEmployee(context.Background(), "0d8f6a2e-3b1c-4e5d-8a7f-9c0b1d2e3f4a"); !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestGetEmployeeRejectsMalformedIDs(t *testing.T) {
	store := &countingStore{}
	svc := NewService(store)

	for _, id := range []string{"", "  ", "e1", "not-a-uuid", "7b0e3c52-1f4a-4c8e-9d2b"} {
		if _, err := svc.GetEmployee(context.Background(), id); !errors.Is(err, ErrEmployeeNotFound) {
			t.Fatalf("id %q: expected ErrEmployeeNotFound, got %v", id, err)
		}
	}
	if store.calls != 0 {
		t.Fatalf("malformed ids should not reach the store, got %d calls", store.calls)
	}
}

type countingStore struct{ calls int }

func (c *countingStore) GetEmployee(context.Context, string) (Employee, error) {
	c.calls++
	return Employee{}, nil
}

func TestFullNameHandlesMissingParts(t *testing.T) {
	cases := []struct {
		emp  Employee
		want string
	}{
		{Employee{FirstName: "Ada"}, "Ada"},
		{Employee{LastName: "Lovelace"}, "Lovelace"},
		{Employee{}, ""},
	}
	for _, tc := range cases {
		if got := tc.emp.FullName(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}
