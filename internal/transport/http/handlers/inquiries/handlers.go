package inquirieshandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"staffclock/internal/domain/audit"
	"staffclock/internal/domain/auth"
	"staffclock/internal/domain/inquiries"
	"staffclock/internal/transport/http/api"
	"staffclock/internal/transport/http/middleware"
	"staffclock/internal/transport/http/shared"
)

type Service interface {
	Create(ctx context.Context, in inquiries.Input) (inquiries.Inquiry, error)
	List(ctx context.Context, limit, offset int) ([]inquiries.Inquiry, int, error)
	Get(ctx context.Context, transactionNo string) (inquiries.Inquiry, error)
	Update(ctx context.Context, transactionNo string, in inquiries.Input) (inquiries.Inquiry, error)
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error
}

type Handler struct {
	Service         Service
	Audit           Auditor
	DefaultPageSize int
	MaxPageSize     int
}

func NewHandler(service Service, auditor Auditor, defaultPageSize, maxPageSize int) *Handler {
	return &Handler{Service: service, Audit: auditor, DefaultPageSize: defaultPageSize, MaxPageSize: maxPageSize}
}

// RegisterRoutes mounts the public submission endpoint and the
// permission-guarded management endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/inquiries", h.handleCreate)

	manage := r.With(middleware.RequirePermission(auth.PermInquiriesManage))
	manage.Get("/inquiries", h.handleList)
	manage.Get("/inquiries/{transactionNo}", h.handleGet)
	manage.Put("/inquiries/{transactionNo}", h.handleUpdate)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	created, err := h.Service.Create(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, h.DefaultPageSize, h.MaxPageSize)

	items, total, err := h.Service.List(r.Context(), page.Limit, page.Offset)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	api.Success(w, items, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	inquiry, err := h.Service.Get(r.Context(), chi.URLParam(r, "transactionNo"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, inquiry, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	transactionNo := chi.URLParam(r, "transactionNo")

	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	before, err := h.Service.Get(r.Context(), transactionNo)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	updated, err := h.Service.Update(r.Context(), transactionNo, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if h.Audit != nil {
		if err := h.Audit.Record(r.Context(), user.UserID, audit.ActionInquiryUpdate, "inquiry", updated.TransactionNo, requestID, shared.ClientIP(r), before, updated); err != nil {
			slog.Warn("audit inquiries.update failed", "err", err, "requestId", requestID)
		}
	}
	api.Success(w, updated, requestID)
}

func decodeInput(w http.ResponseWriter, r *http.Request) (inquiries.Input, bool) {
	var in inquiries.Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid JSON payload", middleware.GetRequestID(r.Context()))
		return inquiries.Input{}, false
	}
	return in, true
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var invalid *inquiries.ValidationError
	switch {
	case errors.As(err, &invalid):
		issues := make([]shared.ValidationIssue, 0, len(invalid.Fields))
		for _, f := range invalid.Fields {
			issues = append(issues, shared.ValidationIssue{Field: f.Field, Reason: f.Reason})
		}
		shared.FailValidation(w, requestID, issues)
	case errors.Is(err, inquiries.ErrInvalidInquiry):
		api.Fail(w, http.StatusBadRequest, "validation_error", err.Error(), requestID)
	case errors.Is(err, inquiries.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "inquiry not found", requestID)
	default:
		slog.Error("inquiries request failed", "err", err, "requestId", requestID, "path", r.URL.Path)
		api.Fail(w, http.StatusInternalServerError, "inquiries_failed", "internal error", requestID)
	}
}
