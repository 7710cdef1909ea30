package events

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/shared"
)

// Handler serves the loss event endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler constructs an events Handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw, validate: validator.New()}
}

// MountRoutes attaches the event routes. Every group re-checks permissions
// in the service layer as well; middleware handles the common case cheaply.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermEventsViewOwn, rbac.PermEventsViewAll))
		r.Get("/events", h.list)
		r.Get("/events/{id}", h.show)
		r.Get("/events/{id}/history", h.history)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEventsCreate))
		r.Post("/events", h.create)
		r.Post("/events/batch", h.createBatch)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEventsSubmit))
		r.Post("/events/{id}/submit", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEventsApprove))
		r.Post("/events/{id}/approve", h.approve)
		r.Post("/events/{id}/reject", h.reject)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEventsEdit))
		r.Put("/events/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEventsDelete))
		r.Delete("/events/{id}", h.remove)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEventsExport))
		r.Post("/events/export", h.export)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	items, total, err := h.service.List(r.Context(), req, actorFromRequest(r))
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": items,
		"total": total,
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	ev, err := h.service.Get(r.Context(), id, actorFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ev)
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Get(r.Context(), id, actorFromRequest(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	logs, err := h.service.History(r.Context(), id)
	if err != nil {
		h.logger.Error("event history", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, logs)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var body CreateEventRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed event payload")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ev, err := h.service.Create(r.Context(), body, actorFromRequest(r))
	if err != nil {
		h.logger.Error("create event", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, ev)
}

func (h *Handler) createBatch(w http.ResponseWriter, r *http.Request) {
	var body BatchCreateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed batch payload")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	result, err := h.service.CreateBatch(r.Context(), body, actorFromRequest(r))
	if err != nil {
		h.logger.Error("batch create events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	httpx.JSON(w, status, result)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var body UpdateEventRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed event payload")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ev, err := h.service.Update(r.Context(), id, body, actorFromRequest(r))
	if err != nil {
		h.logger.Error("update event", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ev)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id, actorFromRequest(r)); err != nil {
		h.logger.Error("delete event", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	ev, err := h.service.Submit(r.Context(), id, actorFromRequest(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ev)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusApproved)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, to EventStatus) {
	id, ok := eventID(w, r)
	if !ok {
		return
	}
	var body DecisionRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &body); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed decision payload")
			return
		}
		if err := h.validate.Struct(body); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
	}
	actor := actorFromRequest(r)
	var (
		ev  LossEvent
		err error
	)
	if to == StatusApproved {
		ev, err = h.service.Approve(r.Context(), id, body.Note, actor)
	} else {
		ev, err = h.service.Reject(r.Context(), id, body.Note, actor)
	}
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, ev)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	var body ExportRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed export payload")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	ids := make([]uuid.UUID, 0, len(body.EventIDs))
	for _, raw := range body.EventIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid event id "+raw)
			return
		}
		ids = append(ids, id)
	}
	exported, err := h.service.Export(r.Context(), ids, actorFromRequest(r))
	if err != nil {
		h.logger.Error("export events", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"exported": exported})
}

func eventID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid event id")
		return uuid.Nil, false
	}
	return id, true
}

func actorFromRequest(r *http.Request) Actor {
	actor := Actor{}
	if role, ok := rbac.RoleFromRequest(r); ok {
		actor.Role = role
	}
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		actor.ID, _ = strconv.ParseInt(sess.User(), 10, 64)
	}
	return actor
}

func parseListRequest(r *http.Request) (ListEventsRequest, error) {
	q := r.URL.Query()
	req := ListEventsRequest{Limit: 50}

	if v := q.Get("status"); v != "" {
		st := EventStatus(v)
		req.Status = &st
	}
	if v := q.Get("type"); v != "" {
		t := EventType(v)
		req.Type = &t
	}
	if v := q.Get("created_by"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, err
		}
		req.CreatedBy = &id
	}
	if v := q.Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, err
		}
		req.DateFrom = &t
	}
	if v := q.Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return req, err
		}
		req.DateTo = &t
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, err
		}
		if n > 0 && n <= 1000 {
			req.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, err
		}
		if n >= 0 {
			req.Offset = n
		}
	}
	return req, nil
}
