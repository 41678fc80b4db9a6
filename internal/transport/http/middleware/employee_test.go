package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"staffclock/internal/domain/auth"
	"staffclock/internal/domain/core"
)

type directory map[string]core.Employee

func (d directory) GetEmployee(_ context.Context, employeeID string) (core.Employee, error) {
	if employeeID == "broken" {
		return core.Employee{}, errors.New("connection reset")
	}
	employee, ok := d[employeeID]
	if !ok {
		return core.Employee{}, core.ErrEmployeeNotFound
	}
	return employee, nil
}

func TestRequireEmployee(t *testing.T) {
	dir := directory{"e1": {ID: "e1", FirstName: "Juan", LastName: "Dela Cruz"}}
	handler := RequireEmployee(dir)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		employee, ok := GetEmployee(r.Context())
		if !ok || employee.ID != "e1" {
			t.Fatalf("expected employee in context, got %+v", employee)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	cases := []struct {
		name       string
		employeeID string
		anonymous  bool
		want       int
	}{
		{"anonymous", "", true, http.StatusUnauthorized},
		{"known employee", "e1", false, http.StatusNoContent},
		{"unknown employee", "e404", false, http.StatusNotFound},
		{"lookup failure", "broken", false, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if !tc.anonymous {
				req = req.WithContext(WithUser(req.Context(), auth.UserContext{UserID: "u", EmployeeID: tc.employeeID, Role: auth.RoleEmployee}))
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}
