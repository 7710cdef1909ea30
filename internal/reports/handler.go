package reports

import (
	"bytes"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/events"
	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/reports/export"
	"github.com/lossdesk/lossdesk/internal/shared"
)

// Handler serves the dashboard and report export endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler constructs a reports Handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw, validate: validator.New()}
}

// MountRoutes attaches the report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermReportsView))
		r.Get("/reports/dashboard", h.dashboard)
		r.Get("/reports/batches", h.batches)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermReportsExport))
		r.Get("/reports/dashboard/export", h.dashboardCSV)
		r.Post("/reports/export/csv", h.exportCSV)
		r.Post("/reports/export/pdf", h.exportPDF)
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	req, ok := parseDashboardRequest(w, r)
	if !ok {
		return
	}
	role, _ := rbac.RoleFromRequest(r)
	dash, err := h.service.Dashboard(r.Context(), req, role)
	if err != nil {
		h.logger.Error("dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dash)
}

func (h *Handler) dashboardCSV(w http.ResponseWriter, r *http.Request) {
	req, ok := parseDashboardRequest(w, r)
	if !ok {
		return
	}
	role, _ := rbac.RoleFromRequest(r)
	dash, err := h.service.Dashboard(r.Context(), req, role)
	if err != nil {
		h.logger.Error("dashboard export", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := WriteDashboardCSV(&buf, dash); err != nil {
		h.logger.Error("render dashboard csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	streamFile(w, buf.Bytes(), "loss-dashboard-"+dash.From.Format("20060102")+"-"+dash.To.Format("20060102")+".csv", "text/csv")
}

func parseDashboardRequest(w http.ResponseWriter, r *http.Request) (DashboardRequest, bool) {
	var req DashboardRequest
	q := r.URL.Query()
	if v := q.Get("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return req, false
		}
		req.From = t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return req, false
		}
		req.To = t
	}
	return req, true
}

func (h *Handler) batches(w http.ResponseWriter, r *http.Request) {
	limit, offset := 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	role, _ := rbac.RoleFromRequest(r)
	items, total, err := h.service.ListBatches(r.Context(), limit, offset, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	batch, items, ok := h.runExport(w, r, BatchCSV)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.WriteEventsCSV(&buf, items); err != nil {
		h.logger.Error("render csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	streamFile(w, buf.Bytes(), "loss-report-"+batch.CreatedAt.Format("20060102-150405")+".csv", "text/csv")
}

func (h *Handler) exportPDF(w http.ResponseWriter, r *http.Request) {
	batch, items, ok := h.runExport(w, r, BatchPDF)
	if !ok {
		return
	}
	storeName, footer := h.service.PDFOptions(r.Context())
	var buf bytes.Buffer
	opts := export.PDFOptions{StoreName: storeName, Footer: footer}
	if len(items) > 0 {
		opts.From, opts.To = dateRange(items)
	}
	if err := export.WriteEventsPDF(&buf, items, opts); err != nil {
		h.logger.Error("render pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	streamFile(w, buf.Bytes(), "loss-report-"+batch.CreatedAt.Format("20060102-150405")+".pdf", "application/pdf")
}

func (h *Handler) runExport(w http.ResponseWriter, r *http.Request, kind BatchKind) (ExportBatch, []events.LossEvent, bool) {
	var body ExportRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed export payload")
		return ExportBatch{}, nil, false
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return ExportBatch{}, nil, false
	}
	ids := make([]uuid.UUID, 0, len(body.EventIDs))
	for _, raw := range body.EventIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid event id "+raw)
			return ExportBatch{}, nil, false
		}
		ids = append(ids, id)
	}
	batch, items, err := h.service.Export(r.Context(), ids, actorFromRequest(r), kind)
	if err != nil {
		h.logger.Error("export", slog.Any("error", err), slog.String("kind", string(kind)))
		httpx.RespondError(w, err)
		return ExportBatch{}, nil, false
	}
	w.Header().Set("X-Export-Batch", batch.ID.String())
	return batch, items, true
}

func streamFile(w http.ResponseWriter, body []byte, filename, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func dateRange(items []events.LossEvent) (from, to time.Time) {
	from, to = items[0].OccurredAt, items[0].OccurredAt
	for _, ev := range items[1:] {
		if ev.OccurredAt.Before(from) {
			from = ev.OccurredAt
		}
		if ev.OccurredAt.After(to) {
			to = ev.OccurredAt
		}
	}
	return from, to
}

func actorFromRequest(r *http.Request) events.Actor {
	actor := events.Actor{}
	if role, ok := rbac.RoleFromRequest(r); ok {
		actor.Role = role
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		actor.ID, _ = strconv.ParseInt(sess.User(), 10, 64)
	}
	return actor
}
