package corehandler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"staffclock/internal/domain/auth"
	"staffclock/internal/domain/core"
	"staffclock/internal/transport/http/api"
	"staffclock/internal/transport/http/middleware"
)

type Handler struct {
	Employees middleware.EmployeeDirectory
}

func NewHandler(employees middleware.EmployeeDirectory) *Handler {
	return &Handler{Employees: employees}
}

type meUser struct {
	ID          string   `json:"id"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

type meResponse struct {
	User     meUser        `json:"user"`
	Employee core.Employee `json:"employee"`
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(auth.PermTimesheetRead), middleware.RequireEmployee(h.Employees)).Get("/me", h.handleMe)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	employee, _ := middleware.GetEmployee(r.Context())

	perms := auth.RolePermissions[user.Role]
	if perms == nil {
		perms = []string{}
	}
	api.Success(w, meResponse{
		User:     meUser{ID: user.UserID, Role: user.Role, Permissions: perms},
		Employee: employee,
	}, middleware.GetRequestID(r.Context()))
}
