package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/lossdesk/lossdesk/internal/app"
	"github.com/lossdesk/lossdesk/internal/audit"
	"github.com/lossdesk/lossdesk/internal/auth"
	"github.com/lossdesk/lossdesk/internal/catalog/categories"
	"github.com/lossdesk/lossdesk/internal/catalog/products"
	"github.com/lossdesk/lossdesk/internal/events"
	"github.com/lossdesk/lossdesk/internal/evidence"
	"github.com/lossdesk/lossdesk/internal/invoices"
	"github.com/lossdesk/lossdesk/internal/observability"
	"github.com/lossdesk/lossdesk/internal/platform/cache"
	"github.com/lossdesk/lossdesk/internal/platform/db"
	"github.com/lossdesk/lossdesk/internal/rbac"
	"github.com/lossdesk/lossdesk/internal/reports"
	"github.com/lossdesk/lossdesk/internal/settings"
	"github.com/lossdesk/lossdesk/internal/shared"
	"github.com/lossdesk/lossdesk/internal/users"
	"github.com/lossdesk/lossdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "lossdesk_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	approvalRecorder := shared.NewApprovalRecorder(dbpool, logger)

	rbacMiddleware := rbac.Middleware{Logger: logger}

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)

	usersService := users.NewService(users.NewRepository(dbpool), auditLogger)
	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	settingsService := settings.NewService(settings.NewRepository(dbpool), redisClient, 5*time.Minute)
	settingsHandler := settings.NewHandler(logger, settingsService, rbacMiddleware)

	categoriesService := categories.NewService(categories.NewRepository(dbpool))
	categoriesHandler := categories.NewHandler(logger, categoriesService, rbacMiddleware)

	productsService := products.NewService(products.NewRepository(dbpool))
	productsHandler := products.NewHandler(logger, productsService, rbacMiddleware)

	reportsCache := reports.NewCache(redisClient, cfg.DashboardCacheTTL)
	if err := reportsCache.ListenForInvalidation(ctx, ""); err != nil {
		logger.Warn("reports cache subscribe", slog.Any("error", err))
	}

	eventsService := events.NewService(
		events.NewRepository(dbpool),
		productsService,
		settingsService,
		approvalRecorder,
		auditLogger,
		nil,
	)

	reportsService := reports.NewService(reports.NewRepository(dbpool), reportsCache, eventsService, settingsService)
	eventsService.SetBumper(reportsService)
	reportsHandler := reports.NewHandler(logger, reportsService, rbacMiddleware)

	eventsHandler := events.NewHandler(logger, eventsService, rbacMiddleware)

	evidenceService := evidence.NewService(evidence.NewRepository(dbpool), settingsService, auditLogger)
	eventsService.SetEvidenceDetacher(evidenceService)
	evidenceHandler := evidence.NewHandler(logger, evidenceService, rbacMiddleware)

	invoicesService := invoices.NewService(invoices.NewRepository(dbpool), auditLogger)
	invoicesHandler := invoices.NewHandler(logger, invoicesService, rbacMiddleware)

	auditHandler := audit.NewHandler(logger, audit.NewRepository(dbpool), rbacMiddleware)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, jobClient, rbacMiddleware, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		SessionManager:    sessionManager,
		CSRFManager:       csrfManager,
		AuthHandler:       authHandler,
		UsersHandler:      usersHandler,
		CategoriesHandler: categoriesHandler,
		ProductsHandler:   productsHandler,
		EventsHandler:     eventsHandler,
		EvidenceHandler:   evidenceHandler,
		InvoicesHandler:   invoicesHandler,
		ReportsHandler:    reportsHandler,
		SettingsHandler:   settingsHandler,
		AuditHandler:      auditHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
