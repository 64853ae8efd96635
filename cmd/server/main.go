package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	approvalapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/approval"
	auditapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/audit"
	eventapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/event"
	evidenceapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/evidence"
	exportapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/export"
	identityapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/identity"
	importapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/import"
	organizationapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/organization"
	registerapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/register"
	remediationapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/remediation"
	reportingapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/reporting"
	rolloverapp "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/application/rollover"
	domainstrategy "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/domain/shared/strategy"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/auth"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/cache"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/config"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/event"
	exportinfra "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/export"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/logger"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/persistence"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/scheduler"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/storage"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/strategy"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/infrastructure/telemetry"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/interfaces/http/handler"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/interfaces/http/middleware"
	"github.com/SebastianDabkowski/ESG-Report-Studio-sub003/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/SebastianDabkowski/ESG-Report-Studio-sub003/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			ESG Report Studio API
//	@version		1.0
//	@description	Administration backend for ESG disclosure reporting: reporting periods, disclosure data points, evidence, assumption and gap registers, approvals, period rollover, and report export.

//	@contact.name	API Support
//	@contact.url	https://github.com/SebastianDabkowski/ESG-Report-Studio-sub003

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting ESG Report Studio",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// OpenTelemetry tracing and metrics
	tracerProvider, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	meterProvider, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down meter provider", zap.Error(err))
		}
	}()

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Database query tracing (otelgorm)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	// Initialize repositories
	organizationRepo := persistence.NewGormOrganizationRepository(db.DB)
	periodRepo := persistence.NewGormReportingPeriodRepository(db.DB)
	sectionRepo := persistence.NewGormReportSectionRepository(db.DB)
	dataPointRepo := persistence.NewGormDataPointRepository(db.DB)
	snapshotRepo := persistence.NewGormCompletenessSnapshotRepository(db.DB)
	evidenceRepo := persistence.NewGormEvidenceRepository(db.DB)
	assumptionRepo := persistence.NewGormAssumptionRepository(db.DB)
	decisionRepo := persistence.NewGormDecisionRepository(db.DB)
	gapRepo := persistence.NewGormGapRepository(db.DB)
	planRepo := persistence.NewGormRemediationPlanRepository(db.DB)
	approvalRepo := persistence.NewGormApprovalRequestRepository(db.DB)
	rolloverRunRepo := persistence.NewGormRolloverRunRepository(db.DB)
	auditEntryRepo := persistence.NewGormAuditEntryRepository(db.DB)
	exportJobRepo := persistence.NewGormExportJobRepository(db.DB)
	templateRepo := persistence.NewGormReportTemplateRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	roleRepo := persistence.NewGormRoleRepository(db.DB)
	importHistoryRepo := persistence.NewGormImportHistoryRepository(db.DB)
	outboxRepo := event.NewGormOutboxRepository(db.DB)

	// Initialize event serializer and register all event types
	eventSerializer := event.NewEventSerializer()
	event.RegisterAllEvents(eventSerializer)

	// Create outbox publisher for transactional event saving
	outboxPublisher := event.NewOutboxPublisher(eventSerializer)

	// Inject outbox publisher into repositories that save events with the aggregate
	periodRepo.SetOutboxEventSaver(outboxPublisher)
	sectionRepo.SetOutboxEventSaver(outboxPublisher)
	dataPointRepo.SetOutboxEventSaver(outboxPublisher)
	evidenceRepo.SetOutboxEventSaver(outboxPublisher)
	assumptionRepo.SetOutboxEventSaver(outboxPublisher)
	decisionRepo.SetOutboxEventSaver(outboxPublisher)
	gapRepo.SetOutboxEventSaver(outboxPublisher)
	planRepo.SetOutboxEventSaver(outboxPublisher)
	approvalRepo.SetOutboxEventSaver(outboxPublisher)
	rolloverRunRepo.SetOutboxEventSaver(outboxPublisher)
	exportJobRepo.SetOutboxEventSaver(outboxPublisher)
	templateRepo.SetOutboxEventSaver(outboxPublisher)

	// Completeness scoring strategies
	strategyRegistry, err := strategy.NewRegistryWithDefaults()
	if err != nil {
		log.Fatal("Failed to initialize scoring strategies", zap.Error(err))
	}
	if cfg.Completeness.Strategy != "" {
		if err := strategyRegistry.SetDefault(domainstrategy.StrategyTypeScoring, cfg.Completeness.Strategy); err != nil {
			log.Warn("Unknown completeness strategy, keeping default",
				zap.String("strategy", cfg.Completeness.Strategy), zap.Error(err))
		}
	}

	// Evidence object storage (S3-compatible; stub when no bucket is configured)
	var objectStorage evidenceapp.ObjectStorageService
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		objectStorage = s3Storage
		log.Info("S3 object storage configured",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		objectStorage = storage.NewStubObjectStorage()
		log.Warn("No storage bucket configured, using stub object storage")
	}

	// Report export infrastructure
	templateEngine := exportinfra.NewTemplateEngine()
	pdfRenderer, err := exportinfra.NewChromedpRenderer(&exportinfra.ChromedpConfig{
		DefaultTimeout: cfg.Export.RenderTimeout,
		RemoteURL:      cfg.Export.ChromeRemoteURL,
		NoSandbox:      true,
		Logger:         log,
	})
	if err != nil {
		log.Fatal("Failed to initialize PDF renderer", zap.Error(err))
	}
	defer func() {
		if err := pdfRenderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()
	exportStorage, err := exportinfra.NewFileSystemStorage(&exportinfra.FileSystemStorageConfig{
		Logger: log,
	})
	if err != nil {
		log.Fatal("Failed to initialize export storage", zap.Error(err))
	}

	// Initialize application services
	organizationService := organizationapp.NewOrganizationService(organizationRepo)
	periodService := reportingapp.NewPeriodService(periodRepo, sectionRepo)
	sectionService := reportingapp.NewSectionService(sectionRepo, periodRepo, dataPointRepo)
	dataPointService := reportingapp.NewDataPointService(dataPointRepo, sectionRepo, periodRepo, gapRepo, decisionRepo)
	completenessService := reportingapp.NewCompletenessService(periodRepo, sectionRepo, dataPointRepo, snapshotRepo, strategyRegistry)
	evidenceService := evidenceapp.NewEvidenceService(evidenceRepo, dataPointRepo, periodRepo, objectStorage, log)
	assumptionService := registerapp.NewAssumptionService(assumptionRepo, dataPointRepo)
	decisionService := registerapp.NewDecisionService(decisionRepo, dataPointRepo)
	gapService := registerapp.NewGapService(gapRepo, periodRepo, sectionRepo, dataPointRepo, planRepo)
	planService := remediationapp.NewPlanService(planRepo, gapRepo, log)
	approvalService := approvalapp.NewApprovalService(approvalRepo, sectionRepo, periodRepo, log)
	sectionService.SetApprovalSweeper(approvalService)
	periodService.SetApprovalSweeper(approvalService)
	rolloverService := rolloverapp.NewRolloverService(rolloverRunRepo, periodRepo, sectionRepo, dataPointRepo, assumptionRepo, gapRepo, planRepo, log)
	auditService := auditapp.NewAuditService(auditEntryRepo, log)
	templateService := exportapp.NewTemplateService(templateRepo, log)
	reportDataAssembler := exportapp.NewReportDataAssembler(organizationRepo, periodRepo, sectionRepo, dataPointRepo, gapRepo, assumptionRepo)
	exportService := exportapp.NewExportService(
		exportJobRepo, templateRepo, periodRepo, sectionRepo, dataPointRepo,
		reportDataAssembler, templateEngine, pdfRenderer, exportStorage, auditService, log,
	)
	outboxService := eventapp.NewOutboxService(outboxRepo, log)
	dataPointImportService := importapp.NewDataPointImportService(periodRepo, dataPointRepo, log)
	assumptionImportService := importapp.NewAssumptionImportService(assumptionRepo, log)
	importHistoryService := importapp.NewImportHistoryService(importHistoryRepo)

	// Rollover idempotency keys live in Redis so a re-trigger cannot start twice
	idempotencyFactory := cache.NewIdempotencyStoreFactory(cfg.Redis, cache.WithLogger(log))
	idempotencyStore, err := idempotencyFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}
	rolloverService.SetIdempotencyStore(idempotencyStore)

	// Identity services (auth, user, role)
	jwtService := auth.NewJWTService(cfg.JWT)
	authService := identityapp.NewAuthService(userRepo, roleRepo, jwtService, identityapp.DefaultAuthServiceConfig(), log)
	userService := identityapp.NewUserService(userRepo, roleRepo, log)
	roleService := identityapp.NewRoleService(roleRepo, userRepo, log)
	sectionScopeService := identityapp.NewSectionScopeService(userRepo, roleRepo, log)
	dataPointService.SetSectionScope(sectionScopeService)

	// Initialize event bus and handlers
	eventBus := event.NewInMemoryEventBus(log)

	// Every domain event becomes an immutable audit trail entry
	auditProjector := auditapp.NewProjector(auditEntryRepo, log)
	eventBus.Subscribe(auditProjector)

	// New organizations get the built-in report templates
	templateSeeder := exportapp.NewTemplateSeeder(templateService, log)
	eventBus.Subscribe(templateSeeder)

	log.Info("Event handlers registered",
		zap.Strings("template_seeder_events", templateSeeder.EventTypes()),
	)

	// Start event bus
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Outbox processor: reads events from the outbox table and publishes them to the event bus
	if cfg.Event.ProcessorEnabled {
		outboxProcessorConfig := event.DefaultOutboxProcessorConfig()
		if cfg.Event.BatchSize > 0 {
			outboxProcessorConfig.BatchSize = cfg.Event.BatchSize
		}
		if cfg.Event.PollInterval > 0 {
			outboxProcessorConfig.PollInterval = cfg.Event.PollInterval
		}
		outboxProcessorConfig.CleanupEnabled = cfg.Event.CleanupEnabled
		if cfg.Event.CleanupRetention > 0 {
			outboxProcessorConfig.CleanupRetention = cfg.Event.CleanupRetention
		}
		outboxProcessor := event.NewOutboxProcessor(outboxRepo, eventBus, eventSerializer, outboxProcessorConfig, log)
		if err := outboxProcessor.Start(context.Background()); err != nil {
			log.Fatal("Failed to start outbox processor", zap.Error(err))
		}
		defer func() {
			if err := outboxProcessor.Stop(context.Background()); err != nil {
				log.Error("Error stopping outbox processor", zap.Error(err))
			}
		}()
		log.Info("Outbox processor started",
			zap.Int("batch_size", outboxProcessorConfig.BatchSize),
			zap.Duration("poll_interval", outboxProcessorConfig.PollInterval),
		)
	}

	// Inject event bus into services that publish events
	organizationService.SetEventPublisher(eventBus)
	periodService.SetEventPublisher(eventBus)
	sectionService.SetEventPublisher(eventBus)
	dataPointService.SetEventPublisher(eventBus)
	evidenceService.SetEventPublisher(eventBus)
	assumptionService.SetEventPublisher(eventBus)
	decisionService.SetEventPublisher(eventBus)
	gapService.SetEventPublisher(eventBus)
	planService.SetEventPublisher(eventBus)
	approvalService.SetEventPublisher(eventBus)
	rolloverService.SetEventPublisher(eventBus)
	templateService.SetEventPublisher(eventBus)
	exportService.SetEventPublisher(eventBus)

	// Business metrics (gauges and counters for disclosure progress)
	if cfg.Telemetry.Enabled {
		meter := meterProvider.Meter("esg-report-studio")
		businessMetrics, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
			Meter:          meter,
			Logger:         log,
			ReportProvider: telemetry.NewGormReportMetricsProvider(db.DB),
		})
		if err != nil {
			log.Warn("Failed to initialize business metrics", zap.Error(err))
		} else {
			businessMetrics.StartPeriodicCollection(context.Background(), telemetry.NewGormOrganizationProvider(db.DB), 5*time.Minute)
			defer businessMetrics.Stop()
			periodService.SetBusinessMetrics(businessMetrics)
			sectionService.SetBusinessMetrics(businessMetrics)
			dataPointService.SetBusinessMetrics(businessMetrics)
			completenessService.SetBusinessMetrics(businessMetrics)
			assumptionService.SetBusinessMetrics(businessMetrics)
			approvalService.SetBusinessMetrics(businessMetrics)
			rolloverService.SetBusinessMetrics(businessMetrics)
		}
	}

	// Daily maintenance scheduler: completeness snapshots, deadline reminders,
	// and overdue remediation plan sweeps, per organization
	if cfg.Scheduler.Enabled {
		maintenanceExecutor := scheduler.NewMaintenanceExecutor(completenessService, periodService, planService, log)
		schedulerJobRepo := scheduler.NewSchedulerJobRepository(db.DB)
		maintenanceScheduler := scheduler.NewMaintenanceCronScheduler(scheduler.MaintenanceCronSchedulerConfig{
			Enabled:           cfg.Scheduler.Enabled,
			DailyCronSchedule: cfg.Scheduler.DailyCronSchedule,
			JobTimeout:        cfg.Scheduler.JobTimeout,
			MaxConcurrentJobs: cfg.Scheduler.MaxConcurrentJobs,
			RetryAttempts:     cfg.Scheduler.RetryAttempts,
			RetryDelay:        cfg.Scheduler.RetryDelay,
		}, maintenanceExecutor, organizationRepo, schedulerJobRepo, log)
		if err := maintenanceScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start maintenance scheduler", zap.Error(err))
		}
		defer func() {
			if err := maintenanceScheduler.Stop(context.Background()); err != nil {
				log.Error("Error stopping maintenance scheduler", zap.Error(err))
			}
		}()
		log.Info("Maintenance scheduler started",
			zap.String("schedule", cfg.Scheduler.DailyCronSchedule),
			zap.Int("max_concurrent_jobs", cfg.Scheduler.MaxConcurrentJobs),
		)
	}

	// Initialize HTTP handlers
	organizationHandler := handler.NewOrganizationHandler(organizationService)
	periodHandler := handler.NewPeriodHandler(periodService)
	sectionHandler := handler.NewSectionHandler(sectionService)
	dataPointHandler := handler.NewDataPointHandler(dataPointService)
	completenessHandler := handler.NewCompletenessHandler(completenessService)
	evidenceHandler := handler.NewEvidenceHandler(evidenceService)
	assumptionHandler := handler.NewAssumptionHandler(assumptionService)
	decisionHandler := handler.NewDecisionHandler(decisionService)
	gapHandler := handler.NewGapHandler(gapService)
	remediationHandler := handler.NewRemediationHandler(planService)
	approvalHandler := handler.NewApprovalHandler(approvalService)
	rolloverHandler := handler.NewRolloverHandler(rolloverService)
	auditHandler := handler.NewAuditHandler(auditService)
	exportHandler := handler.NewExportHandler(exportService)
	templateHandler := handler.NewTemplateHandler(templateService)
	importHandler := handler.NewImportHandler(dataPointImportService, assumptionImportService, importHistoryService)
	importHistoryHandler := handler.NewImportHistoryHandler(importHistoryService)
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Tracing - OpenTelemetry spans per request
	// 4. Logger - Log requests
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. RateLimit - Apply rate limiting (if enabled)
	// 9. HTTPMetrics - OpenTelemetry HTTP metrics
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Rate limiting (if enabled)
	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		ServiceName:   cfg.Telemetry.ServiceName,
		Enabled:       cfg.Telemetry.Enabled,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Swagger documentation endpoint with configurable protection
	jwtAuth := middleware.JWTAuthMiddleware(jwtService)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, jwtAuth),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/ping",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		Logger: log,
	}
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	// Organization scoping: every authenticated request carries the caller's
	// organization from the JWT claims
	r.Use(middleware.OrganizationMiddleware())

	// Organization domain
	organizationRoutes := router.NewDomainGroup("organization", "/organizations")
	organizationRoutes.POST("", organizationHandler.Create)
	organizationRoutes.GET("", organizationHandler.List)
	organizationRoutes.GET("/current", organizationHandler.GetCurrent)
	organizationRoutes.GET("/sectors", organizationHandler.ListSectors)
	organizationRoutes.GET("/code/:code", organizationHandler.GetByCode)
	organizationRoutes.GET("/:id", organizationHandler.GetByID)
	organizationRoutes.PUT("/:id", organizationHandler.Update)
	organizationRoutes.PUT("/:id/framework", organizationHandler.SetFramework)
	organizationRoutes.PUT("/:id/config", organizationHandler.UpdateConfig)
	organizationRoutes.POST("/:id/activate", organizationHandler.Activate)
	organizationRoutes.POST("/:id/deactivate", organizationHandler.Deactivate)
	organizationRoutes.POST("/:id/suspend", organizationHandler.Suspend)

	// Reporting domain (periods, section tree, data points, completeness)
	reportingRoutes := router.NewDomainGroup("reporting", "/reporting")
	reportingRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "reporting service ready"})
	})

	// Period routes
	reportingRoutes.POST("/periods", periodHandler.Create)
	reportingRoutes.GET("/periods", periodHandler.List)
	reportingRoutes.GET("/periods/open", periodHandler.GetOpen)
	reportingRoutes.GET("/periods/:id", periodHandler.GetByID)
	reportingRoutes.PUT("/periods/:id", periodHandler.Update)
	reportingRoutes.DELETE("/periods/:id", periodHandler.Delete)
	reportingRoutes.POST("/periods/:id/open", periodHandler.Open)
	reportingRoutes.POST("/periods/:id/start-review", periodHandler.StartReview)
	reportingRoutes.POST("/periods/:id/back-to-open", periodHandler.BackToOpen)
	reportingRoutes.POST("/periods/:id/close", periodHandler.Close)
	reportingRoutes.POST("/periods/:id/archive", periodHandler.Archive)
	reportingRoutes.POST("/periods/:id/reopen", periodHandler.Reopen)

	// Section routes
	reportingRoutes.POST("/sections", sectionHandler.Create)
	reportingRoutes.GET("/sections", sectionHandler.List)
	reportingRoutes.GET("/sections/:id", sectionHandler.GetByID)
	reportingRoutes.GET("/periods/:id/sections/tree", sectionHandler.GetTree)
	reportingRoutes.PUT("/sections/:id", sectionHandler.Update)
	reportingRoutes.POST("/sections/:id/move", sectionHandler.Move)
	reportingRoutes.PUT("/sections/:id/owner", sectionHandler.AssignOwner)
	reportingRoutes.DELETE("/sections/:id/owner", sectionHandler.ClearOwner)
	reportingRoutes.POST("/sections/:id/start", sectionHandler.Start)
	reportingRoutes.POST("/sections/:id/submit", sectionHandler.SubmitForReview)
	reportingRoutes.POST("/sections/:id/send-back", sectionHandler.SendBack)
	reportingRoutes.POST("/sections/:id/deactivate", sectionHandler.Deactivate)
	reportingRoutes.POST("/sections/:id/reactivate", sectionHandler.Reactivate)
	reportingRoutes.POST("/sections/:id/reopen", sectionHandler.Reopen)
	reportingRoutes.DELETE("/sections/:id", sectionHandler.Delete)

	// Data point routes
	reportingRoutes.POST("/data-points", dataPointHandler.Create)
	reportingRoutes.GET("/data-points", dataPointHandler.List)
	reportingRoutes.GET("/data-points/:id", dataPointHandler.GetByID)
	reportingRoutes.GET("/sections/:id/data-points", dataPointHandler.ListBySection)
	reportingRoutes.GET("/periods/:id/data-points/mandatory-incomplete", dataPointHandler.ListMandatoryIncomplete)
	reportingRoutes.GET("/periods/:id/data-points/estimated", dataPointHandler.ListEstimated)
	reportingRoutes.PUT("/data-points/:id", dataPointHandler.Update)
	reportingRoutes.PUT("/data-points/:id/value", dataPointHandler.RecordValue)
	reportingRoutes.DELETE("/data-points/:id/value", dataPointHandler.ClearValue)
	reportingRoutes.PUT("/data-points/:id/targets", dataPointHandler.SetTargets)
	reportingRoutes.POST("/data-points/:id/complete", dataPointHandler.MarkComplete)
	reportingRoutes.POST("/data-points/:id/back-to-draft", dataPointHandler.BackToDraft)
	reportingRoutes.PUT("/data-points/:id/estimated", dataPointHandler.MarkEstimated)
	reportingRoutes.DELETE("/data-points/:id/estimated", dataPointHandler.ClearEstimated)
	reportingRoutes.PUT("/data-points/:id/owner", dataPointHandler.AssignOwner)
	reportingRoutes.DELETE("/data-points/:id/owner", dataPointHandler.ClearOwner)
	reportingRoutes.POST("/data-points/:id/deactivate", dataPointHandler.Deactivate)
	reportingRoutes.POST("/data-points/:id/reactivate", dataPointHandler.Reactivate)
	reportingRoutes.DELETE("/data-points/:id", dataPointHandler.Delete)

	// Completeness routes
	reportingRoutes.GET("/periods/:id/completeness", completenessHandler.ScorePeriod)
	reportingRoutes.GET("/sections/:id/completeness", completenessHandler.ScoreSection)
	reportingRoutes.POST("/periods/:id/completeness/snapshot", completenessHandler.Snapshot)
	reportingRoutes.GET("/periods/:id/completeness/history", completenessHandler.GetHistory)

	// Evidence nested under reporting resources
	reportingRoutes.GET("/data-points/:id/evidence", evidenceHandler.ListByDataPoint)
	reportingRoutes.GET("/periods/:id/evidence", evidenceHandler.ListByPeriod)

	// Register entries nested under data points
	reportingRoutes.GET("/data-points/:id/assumptions", assumptionHandler.ListByDataPoint)
	reportingRoutes.GET("/data-points/:id/decisions", decisionHandler.ListByDataPoint)
	reportingRoutes.GET("/data-points/:id/gaps", gapHandler.ListByDataPoint)

	// Evidence domain
	evidenceRoutes := router.NewDomainGroup("evidence", "/evidence")
	evidenceRoutes.POST("", evidenceHandler.Register)
	evidenceRoutes.GET("/:id", evidenceHandler.GetByID)
	evidenceRoutes.GET("/:id/download-url", evidenceHandler.GetDownloadURL)
	evidenceRoutes.POST("/:id/finalize", evidenceHandler.Finalize)
	evidenceRoutes.POST("/:id/relink", evidenceHandler.Relink)
	evidenceRoutes.PUT("/:id", evidenceHandler.UpdateDescription)
	evidenceRoutes.DELETE("/:id", evidenceHandler.Delete)

	// Register domain (assumptions, estimation decisions, gaps)
	registerRoutes := router.NewDomainGroup("register", "/register")
	registerRoutes.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "register service ready"})
	})

	// Assumption routes
	registerRoutes.POST("/assumptions", assumptionHandler.Create)
	registerRoutes.GET("/assumptions", assumptionHandler.List)
	registerRoutes.GET("/assumptions/:id", assumptionHandler.GetByID)
	registerRoutes.PUT("/assumptions/:id", assumptionHandler.Update)
	registerRoutes.PUT("/assumptions/:id/owner", assumptionHandler.SetOwner)
	registerRoutes.PUT("/assumptions/:id/review-by", assumptionHandler.SetReviewBy)
	registerRoutes.DELETE("/assumptions/:id/review-by", assumptionHandler.ClearReviewBy)
	registerRoutes.POST("/assumptions/:id/retire", assumptionHandler.Retire)
	registerRoutes.POST("/assumptions/:id/reactivate", assumptionHandler.Reactivate)
	registerRoutes.PUT("/assumptions/:id/data-points/:dataPointId", assumptionHandler.LinkDataPoint)
	registerRoutes.DELETE("/assumptions/:id/data-points/:dataPointId", assumptionHandler.UnlinkDataPoint)
	registerRoutes.DELETE("/assumptions/:id", assumptionHandler.Delete)

	// Estimation decision routes
	registerRoutes.POST("/decisions", decisionHandler.Create)
	registerRoutes.GET("/decisions", decisionHandler.List)
	registerRoutes.GET("/decisions/:id", decisionHandler.GetByID)
	registerRoutes.PUT("/decisions/:id", decisionHandler.Update)
	registerRoutes.PUT("/decisions/:id/approver", decisionHandler.SetApprover)
	registerRoutes.PUT("/decisions/:id/data-points/:dataPointId", decisionHandler.LinkDataPoint)
	registerRoutes.DELETE("/decisions/:id/data-points/:dataPointId", decisionHandler.UnlinkDataPoint)
	registerRoutes.DELETE("/decisions/:id", decisionHandler.Delete)

	// Gap routes
	registerRoutes.POST("/gaps", gapHandler.Create)
	registerRoutes.GET("/gaps", gapHandler.List)
	registerRoutes.GET("/gaps/:id", gapHandler.GetByID)
	registerRoutes.GET("/gaps/:id/plans", remediationHandler.ListByGap)
	registerRoutes.PUT("/gaps/:id", gapHandler.Update)
	registerRoutes.POST("/gaps/:id/acknowledge", gapHandler.Acknowledge)
	registerRoutes.POST("/gaps/:id/start-remediation", gapHandler.StartRemediation)
	registerRoutes.POST("/gaps/:id/resolve", gapHandler.Resolve)
	registerRoutes.POST("/gaps/:id/accept", gapHandler.Accept)
	registerRoutes.DELETE("/gaps/:id", gapHandler.Delete)

	// Remediation domain
	remediationRoutes := router.NewDomainGroup("remediation", "/remediation")
	remediationRoutes.POST("/plans", remediationHandler.Create)
	remediationRoutes.GET("/plans", remediationHandler.List)
	remediationRoutes.GET("/plans/:id", remediationHandler.GetByID)
	remediationRoutes.PUT("/plans/:id", remediationHandler.Update)
	remediationRoutes.PUT("/plans/:id/owner", remediationHandler.SetOwner)
	remediationRoutes.DELETE("/plans/:id/owner", remediationHandler.ClearOwner)
	remediationRoutes.PUT("/plans/:id/due-date", remediationHandler.SetDueDate)
	remediationRoutes.DELETE("/plans/:id/due-date", remediationHandler.ClearDueDate)
	remediationRoutes.PUT("/plans/:id/gaps/:gapId", remediationHandler.AttachGap)
	remediationRoutes.DELETE("/plans/:id/gaps/:gapId", remediationHandler.DetachGap)
	remediationRoutes.POST("/plans/:id/items", remediationHandler.AddItem)
	remediationRoutes.PUT("/plans/:id/items/:itemId", remediationHandler.UpdateItem)
	remediationRoutes.PUT("/plans/:id/items/:itemId/assignee", remediationHandler.AssignItem)
	remediationRoutes.DELETE("/plans/:id/items/:itemId/assignee", remediationHandler.UnassignItem)
	remediationRoutes.POST("/plans/:id/items/:itemId/start", remediationHandler.StartItem)
	remediationRoutes.POST("/plans/:id/items/:itemId/reopen", remediationHandler.ReopenItem)
	remediationRoutes.POST("/plans/:id/items/:itemId/complete", remediationHandler.CompleteItem)
	remediationRoutes.DELETE("/plans/:id/items/:itemId", remediationHandler.RemoveItem)
	remediationRoutes.POST("/plans/:id/activate", remediationHandler.Activate)
	remediationRoutes.POST("/plans/:id/complete", remediationHandler.Complete)
	remediationRoutes.POST("/plans/:id/cancel", remediationHandler.Cancel)
	remediationRoutes.DELETE("/plans/:id", remediationHandler.Delete)

	// Approval domain
	approvalRoutes := router.NewDomainGroup("approval", "/approvals")
	approvalRoutes.POST("", approvalHandler.Request)
	approvalRoutes.GET("", approvalHandler.List)
	approvalRoutes.GET("/pending", approvalHandler.GetPendingForApprover)
	approvalRoutes.GET("/pending/count", approvalHandler.CountPending)
	approvalRoutes.GET("/targets/:targetKind/:targetId", approvalHandler.ListByTarget)
	approvalRoutes.GET("/targets/:targetKind/:targetId/pending", approvalHandler.GetPendingByTarget)
	approvalRoutes.GET("/:id", approvalHandler.GetByID)
	approvalRoutes.POST("/:id/reassign", approvalHandler.Reassign)
	approvalRoutes.POST("/:id/approve", approvalHandler.Approve)
	approvalRoutes.POST("/:id/reject", approvalHandler.Reject)
	approvalRoutes.POST("/:id/cancel", approvalHandler.Cancel)

	// Rollover domain
	rolloverRoutes := router.NewDomainGroup("rollover", "/rollover")
	rolloverRoutes.POST("/runs", rolloverHandler.Trigger)
	rolloverRoutes.GET("/runs", rolloverHandler.ListRuns)
	rolloverRoutes.GET("/runs/:id", rolloverHandler.GetRun)
	rolloverRoutes.POST("/runs/:id/resume", rolloverHandler.Resume)
	rolloverRoutes.GET("/runs/:id/reconciliation", rolloverHandler.GetReconciliation)
	rolloverRoutes.GET("/runs/:id/items", rolloverHandler.ListItems)

	// Audit domain
	auditRoutes := router.NewDomainGroup("audit", "/audit")
	auditRoutes.GET("/entries", auditHandler.List)
	auditRoutes.GET("/entries/export", auditHandler.DownloadTrailCSV)
	auditRoutes.GET("/entries/:id", auditHandler.GetByID)
	auditRoutes.GET("/timeline/:aggregateType/:aggregateId", auditHandler.GetTimeline)
	auditRoutes.GET("/data-points/:dataPointId/value-history", auditHandler.GetValueHistory)

	// Export domain (report templates and export jobs)
	exportRoutes := router.NewDomainGroup("export", "/exports")
	exportRoutes.POST("/templates", templateHandler.Create)
	exportRoutes.GET("/templates", templateHandler.List)
	exportRoutes.GET("/templates/default", templateHandler.GetDefault)
	exportRoutes.GET("/templates/:id", templateHandler.GetByID)
	exportRoutes.PUT("/templates/:id", templateHandler.Update)
	exportRoutes.PUT("/templates/:id/margins", templateHandler.SetMargins)
	exportRoutes.POST("/templates/:id/default", templateHandler.SetDefault)
	exportRoutes.POST("/templates/:id/activate", templateHandler.Activate)
	exportRoutes.POST("/templates/:id/deactivate", templateHandler.Deactivate)
	exportRoutes.DELETE("/templates/:id", templateHandler.Delete)
	exportRoutes.POST("", exportHandler.Create)
	exportRoutes.GET("", exportHandler.List)
	exportRoutes.GET("/:id", exportHandler.GetByID)
	exportRoutes.GET("/:id/download", exportHandler.Download)
	exportRoutes.DELETE("/:id", exportHandler.Delete)

	// CSV import (data point values, assumptions)
	importRoutes := router.NewDomainGroup("import", "/import")
	importRoutes.POST("/validate", importHandler.Validate)
	importRoutes.POST("/apply", importHandler.Apply)
	importRoutes.GET("/sessions/:id", importHandler.GetSession)
	importRoutes.GET("/history", importHistoryHandler.ListHistory)
	importRoutes.GET("/history/:id", importHistoryHandler.GetHistory)
	importRoutes.GET("/history/:id/errors", importHistoryHandler.GetErrors)
	importRoutes.DELETE("/history/:id", importHistoryHandler.DeleteHistory)

	// Identity domain (authentication, users, roles) - public routes
	authRoutes := router.NewDomainGroup("auth", "/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.RefreshToken)

	// Identity domain - protected routes
	identityRoutes := router.NewDomainGroup("identity", "/identity")

	// Auth routes requiring authentication
	identityRoutes.POST("/auth/logout", authHandler.Logout)
	identityRoutes.GET("/auth/me", authHandler.GetCurrentUser)
	identityRoutes.PUT("/auth/password", authHandler.ChangePassword)

	// User management routes
	identityRoutes.POST("/users", userHandler.Create)
	identityRoutes.GET("/users", userHandler.List)
	identityRoutes.GET("/users/stats/count", userHandler.Count)
	identityRoutes.GET("/users/:id", userHandler.GetByID)
	identityRoutes.PUT("/users/:id", userHandler.Update)
	identityRoutes.DELETE("/users/:id", userHandler.Delete)
	identityRoutes.POST("/users/:id/activate", userHandler.Activate)
	identityRoutes.POST("/users/:id/deactivate", userHandler.Deactivate)
	identityRoutes.POST("/users/:id/lock", userHandler.Lock)
	identityRoutes.POST("/users/:id/unlock", userHandler.Unlock)
	identityRoutes.POST("/users/:id/reset-password", userHandler.ResetPassword)
	identityRoutes.GET("/users/:id/roles", userHandler.GetRoles)
	identityRoutes.PUT("/users/:id/roles", userHandler.AssignRoles)

	// Role management routes
	identityRoutes.POST("/roles", roleHandler.Create)
	identityRoutes.GET("/roles", roleHandler.List)
	identityRoutes.GET("/roles/system", roleHandler.GetSystemRoles)
	identityRoutes.GET("/roles/stats/count", roleHandler.Count)
	identityRoutes.GET("/roles/:id", roleHandler.GetByID)
	identityRoutes.GET("/roles/code/:code", roleHandler.GetByCode)
	identityRoutes.PUT("/roles/:id", roleHandler.Update)
	identityRoutes.DELETE("/roles/:id", roleHandler.Delete)
	identityRoutes.POST("/roles/:id/enable", roleHandler.Enable)
	identityRoutes.POST("/roles/:id/disable", roleHandler.Disable)
	identityRoutes.PUT("/roles/:id/permissions", roleHandler.SetPermissions)

	// Permission catalog
	identityRoutes.GET("/permissions", roleHandler.GetPermissions)

	// Register all domain groups
	r.Register(organizationRoutes).
		Register(reportingRoutes).
		Register(evidenceRoutes).
		Register(registerRoutes).
		Register(remediationRoutes).
		Register(approvalRoutes).
		Register(rolloverRoutes).
		Register(auditRoutes).
		Register(exportRoutes).
		Register(importRoutes).
		Register(authRoutes).
		Register(identityRoutes)

	// Register system routes with swagger-documented handlers
	systemHandler := handler.NewSystemHandler()
	outboxHandler := handler.NewOutboxHandler(outboxService)
	strategyHandler := handler.NewStrategyHandler(strategyRegistry)
	systemRoutes := router.NewDomainGroup("system", "/system")
	systemRoutes.GET("/info", systemHandler.GetSystemInfo)
	systemRoutes.GET("/ping", systemHandler.Ping)
	systemRoutes.GET("/strategies", strategyHandler.ListStrategies)
	systemRoutes.GET("/strategies/scoring", strategyHandler.GetScoringStrategies)
	systemRoutes.GET("/strategies/validation", strategyHandler.GetValidationStrategies)
	systemRoutes.GET("/outbox/dead", outboxHandler.GetDeadLetterEntries)
	systemRoutes.POST("/outbox/dead/retry-all", outboxHandler.RetryAllDeadEntries)
	systemRoutes.GET("/outbox/stats", outboxHandler.GetStats)
	systemRoutes.GET("/outbox/:id", outboxHandler.GetEntry)
	systemRoutes.POST("/outbox/:id/retry", outboxHandler.RetryDeadEntry)
	r.Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
