package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/amexing/amexing-ops/cmd/amexing/cli"
	"github.com/amexing/amexing-ops/internal/app"
	"github.com/amexing/amexing-ops/internal/auth"
	"github.com/amexing/amexing-ops/internal/catalog/crud"
	"github.com/amexing/amexing-ops/internal/catalog/experiences"
	"github.com/amexing/amexing-ops/internal/catalog/pois"
	"github.com/amexing/amexing-ops/internal/catalog/rates"
	"github.com/amexing/amexing-ops/internal/catalog/services"
	"github.com/amexing/amexing-ops/internal/catalog/vehicles"
	"github.com/amexing/amexing-ops/internal/catalog/vehicletypes"
	"github.com/amexing/amexing-ops/internal/observability"
	"github.com/amexing/amexing-ops/internal/platform/cache"
	"github.com/amexing/amexing-ops/internal/platform/db"
	"github.com/amexing/amexing-ops/internal/pricing"
	"github.com/amexing/amexing-ops/internal/rbac"
	"github.com/amexing/amexing-ops/internal/sales/clients"
	"github.com/amexing/amexing-ops/internal/sales/invoices"
	"github.com/amexing/amexing-ops/internal/sales/quotes"
	"github.com/amexing/amexing-ops/internal/shared"
	"github.com/amexing/amexing-ops/internal/view"
	"github.com/amexing/amexing-ops/jobs"
	"github.com/amexing/amexing-ops/report"
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
	metrics := observability.NewMetrics()

	queue := jobs.NewClient(app.AsynqRedisOpt(cfg), metrics.Jobs())
	defer func() {
		if err := queue.Close(); err != nil {
			logger.Warn("queue close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(app.AsynqRedisOpt(cfg))
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(cli.NewJobsCLI(queue, inspector, os.Stdout, os.Stderr).Run(ctx, os.Args[2:]))
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "amexing_session", cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		logger.Warn("JWT_SECRET not set, deriving API tokens from SESSION_SECRET")
		jwtSecret = cfg.SessionSecret
	}
	tokens, err := auth.NewTokens(jwtSecret, cfg.JWTTTL)
	if err != nil {
		logger.Error("init tokens", slog.Any("error", err))
		os.Exit(1)
	}

	respond := app.NewResponder(cfg, logger)
	auditLogger := shared.NewAuditLogger(dbpool)
	rbacMiddleware := rbac.Middleware{
		Service: rbac.NewService(rbac.NewPGStore(dbpool)),
		Tokens:  tokens,
		Logger:  logger,
	}

	authService := auth.NewService(auth.NewRepository(dbpool), tokens)
	authHandler := auth.NewHandler(logger, authService, templates, sessionManager, csrfManager, respond)

	pricingService := pricing.NewService(
		pricing.NewRepository(dbpool),
		pricing.NewCache(redisClient, cfg.PricingCacheTTL, logger),
		auditLogger,
		pricing.NewMetrics(metrics.Registerer()),
		logger,
	)

	notifier := jobs.NewEmailNotifier(queue, cfg.NotifyEmail, logger)
	gotenberg := report.NewClient(cfg.GotenbergURL)

	quoteService := quotes.NewService(
		quotes.NewRepository(dbpool),
		quotes.NewPDFReceipts(templates, gotenberg),
		quotes.Config{
			IVARate: cfg.IVA(),
			Payment: quotes.PaymentInfo{
				BankName:      cfg.BankName,
				AccountHolder: cfg.BankAccountHolder,
				AccountNumber: cfg.BankAccountNumber,
				CLABE:         cfg.BankCLABE,
			},
		},
		auditLogger,
		notifier,
		quotes.NewMetrics(metrics.Registerer()),
		logger,
	)
	invoiceService := invoices.NewService(invoices.NewRepository(dbpool), auditLogger, notifier, logger)

	clientService := clients.NewService(clients.NewRepository(dbpool), auditLogger, logger)
	poiService := pois.NewService(pois.NewRepository(dbpool), auditLogger, logger)
	vehicleTypeService := vehicletypes.NewService(vehicletypes.NewRepository(dbpool), auditLogger, logger)
	rateService := rates.NewService(rates.NewRepository(dbpool), auditLogger, logger)
	vehicleService := vehicles.NewService(vehicles.NewRepository(dbpool), auditLogger, logger)
	serviceCatalog := services.NewCatalog(services.NewRepository(dbpool), auditLogger, logger)
	experienceService := experiences.NewService(experiences.NewRepository(dbpool), auditLogger, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Templates:      templates,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		RBACMiddleware: rbacMiddleware,
		API: []app.APIRoute{
			{Path: "/price-adjustments", Handler: pricing.NewHandler(logger, pricingService, rbacMiddleware, respond)},
			{Path: "/quotes", Handler: quotes.NewHandler(logger, quoteService, rbacMiddleware, respond)},
			{Path: "/invoices", Handler: invoices.NewHandler(logger, invoiceService, rbacMiddleware, respond)},
			{Path: "/clients", Handler: crud.NewHandler[clients.Client, clients.CreateRequest, clients.UpdateRequest](logger, clientService, rbacMiddleware, rbac.ResourceClient, respond)},
			{Path: "/pois", Handler: crud.NewHandler[pois.POI, pois.CreateRequest, pois.UpdateRequest](logger, poiService, rbacMiddleware, rbac.ResourceCatalog, respond)},
			{Path: "/vehicle-types", Handler: crud.NewHandler[vehicletypes.VehicleType, vehicletypes.CreateRequest, vehicletypes.UpdateRequest](logger, vehicleTypeService, rbacMiddleware, rbac.ResourceCatalog, respond)},
			{Path: "/rates", Handler: crud.NewHandler[rates.Rate, rates.CreateRequest, rates.UpdateRequest](logger, rateService, rbacMiddleware, rbac.ResourceCatalog, respond)},
			{Path: "/vehicles", Handler: crud.NewHandler[vehicles.Vehicle, vehicles.CreateRequest, vehicles.UpdateRequest](logger, vehicleService, rbacMiddleware, rbac.ResourceCatalog, respond)},
			{Path: "/services", Handler: crud.NewHandler[services.Service, services.CreateRequest, services.UpdateRequest](logger, serviceCatalog, rbacMiddleware, rbac.ResourceCatalog, respond)},
			{Path: "/experiences", Handler: crud.NewHandler[experiences.Experience, experiences.CreateRequest, experiences.UpdateRequest](logger, experienceService, rbacMiddleware, rbac.ResourceCatalog, respond)},
		},
		ReportHandler: report.NewHandler(gotenberg, logger),
		JobHandler:    jobs.NewHandler(inspector, logger),
		Metrics:       metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
