package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"staffclock/internal/domain/core"
	"staffclock/internal/transport/http/api"
)

const ctxKeyEmployee ctxKey = "employee"

type EmployeeDirectory interface {
	GetEmployee(ctx context.Context, employeeID string) (core.Employee, error)
}

// RequireEmployee resolves the caller's employee row. An identity with no
// employee behind it is answered with 404.
func RequireEmployee(dir EmployeeDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())
			user, ok := GetUser(r.Context())
			if !ok {
				api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
				return
			}
			employee, err := dir.GetEmployee(r.Context(), user.EmployeeID)
			if errors.Is(err, core.ErrEmployeeNotFound) {
				api.Fail(w, http.StatusNotFound, "employee_not_found", "employee not found", requestID)
				return
			}
			if err != nil {
				slog.Error("employee lookup failed", "err", err, "requestId", requestID)
				api.Fail(w, http.StatusInternalServerError, "employee_lookup_failed", "failed to load employee", requestID)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithEmployee(r.Context(), employee)))
		})
	}
}

func WithEmployee(ctx context.Context, employee core.Employee) context.Context {
	return context.WithValue(ctx, ctxKeyEmployee, employee)
}

func GetEmployee(ctx context.Context) (core.Employee, bool) {
	employee, ok := ctx.Value(ctxKeyEmployee).(core.Employee)
	return employee, ok
}
