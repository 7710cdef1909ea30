package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lossdesk/lossdesk/internal/audit"
	"github.com/lossdesk/lossdesk/internal/auth"
	"github.com/lossdesk/lossdesk/internal/catalog/categories"
	"github.com/lossdesk/lossdesk/internal/catalog/products"
	"github.com/lossdesk/lossdesk/internal/events"
	"github.com/lossdesk/lossdesk/internal/evidence"
	"github.com/lossdesk/lossdesk/internal/invoices"
	"github.com/lossdesk/lossdesk/internal/observability"
	"github.com/lossdesk/lossdesk/internal/reports"
	"github.com/lossdesk/lossdesk/internal/settings"
	"github.com/lossdesk/lossdesk/internal/shared"
	"github.com/lossdesk/lossdesk/internal/users"
	"github.com/lossdesk/lossdesk/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler       *auth.Handler
	UsersHandler      *users.Handler
	CategoriesHandler *categories.Handler
	ProductsHandler   *products.Handler
	EventsHandler     *events.Handler
	EvidenceHandler   *evidence.Handler
	InvoicesHandler   *invoices.Handler
	ReportsHandler    *reports.Handler
	SettingsHandler   *settings.Handler
	AuditHandler      *audit.Handler
	JobHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router for the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(api)
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(api)
		}
		if params.CategoriesHandler != nil {
			params.CategoriesHandler.MountRoutes(api)
		}
		if params.ProductsHandler != nil {
			params.ProductsHandler.MountRoutes(api)
		}
		if params.EventsHandler != nil {
			params.EventsHandler.MountRoutes(api)
		}
		if params.EvidenceHandler != nil {
			params.EvidenceHandler.MountRoutes(api)
		}
		if params.InvoicesHandler != nil {
			params.InvoicesHandler.MountRoutes(api)
		}
		if params.ReportsHandler != nil {
			params.ReportsHandler.MountRoutes(api)
		}
		if params.SettingsHandler != nil {
			params.SettingsHandler.MountRoutes(api)
		}
		if params.AuditHandler != nil {
			params.AuditHandler.MountRoutes(api)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				params.JobHandler.MountRoutes(jr)
			})
		}
	})

	return r
}
