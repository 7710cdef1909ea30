package evidence

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lossdesk/lossdesk/internal/platform/httpx"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/shared"
)

// Handler serves the evidence gallery endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	rbac     rbac.Middleware
	validate *validator.Validate
}

// NewHandler constructs an evidence Handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw, validate: validator.New()}
}

// MountRoutes attaches the evidence routes. The gallery route is gated by
// evidence:view only; the per-role employee flag is enforced in the service.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEvidenceView))
		r.Get("/evidence", h.gallery)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEvidenceUpload))
		r.Post("/evidence", h.register)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.PermEvidenceDelete))
		r.Delete("/evidence/{id}", h.remove)
	})
}

func (h *Handler) gallery(w http.ResponseWriter, r *http.Request) {
	req, err := parseListRequest(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, _ := rbac.RoleFromRequest(r)
	photos, total, err := h.service.Gallery(r.Context(), req, role)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"items": photos,
		"total": total,
	})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var body RegisterPhotoRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed evidence payload")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, _ := rbac.RoleFromRequest(r)
	photo, err := h.service.Register(r.Context(), body, actorID(r), role)
	if err != nil {
		h.logger.Error("register evidence", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, photo)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid photo id")
		return
	}
	role, _ := rbac.RoleFromRequest(r)
	if err := h.service.Remove(r.Context(), id, actorID(r), role); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actorID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}

func parseListRequest(r *http.Request) (ListPhotosRequest, error) {
	q := r.URL.Query()
	req := ListPhotosRequest{Limit: 50}

	if v := q.Get("event_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return req, err
		}
		req.EventID = &id
	}
	if v := q.Get("product_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, err
		}
		req.ProductID = &id
	}
	req.Unlinked = q.Get("unlinked") == "true"
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
