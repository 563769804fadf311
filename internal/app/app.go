package app

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"hpicpulse/internal/config"
	"hpicpulse/internal/dataset"
	"hpicpulse/internal/errors"
	"hpicpulse/internal/infrastructure"
	customMiddleware "hpicpulse/internal/middleware"
	"hpicpulse/internal/services"
	handlers "hpicpulse/internal/transport/http"
	"hpicpulse/internal/validation"
)

var (
	// BuildTime is set at compile time
	BuildTime = time.Now().Format(time.RFC3339)
	// BuildID is a unique identifier for this build
	BuildID = generateBuildID()
)

func generateBuildID() string {
	// Generate a deterministic build ID based on version and time
	h := sha256.New()
	h.Write([]byte(config.AppVersion))
	h.Write([]byte(time.Now().Format("2006-01-02")))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// Application represents the main application container
type Application struct {
	Config           *config.Config
	Router           *chi.Mux
	Server           *http.Server
	Store            *dataset.Store
	DashboardService *services.DashboardService
	HealthService    *services.HealthService
	InfoService      *services.InfoService
	Logger           *slog.Logger
	OTelProviders    *infrastructure.OTelProviders
	BusinessMetrics  *infrastructure.BusinessMetrics
	WebFS            fs.FS

	otelMiddleware *customMiddleware.OTelMiddleware
	systemMetrics  *infrastructure.SystemMetricsCollector
	dashboardPage  http.HandlerFunc
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(webFS fs.FS) (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize single infrastructure logger
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Log startup information
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("build_id", BuildID))

	// Validate and log all paths at startup for debugging
	paths, err := config.GetPaths()
	if err != nil {
		return nil, fmt.Errorf("failed to get paths: %w", err)
	}

	// Ensure all required directories exist
	logger.Info("Ensuring required directories exist")
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	// Log all resolved paths at startup for debugging
	paths.LogPathResolution()

	// Validate the snapshot files exist (non-fatal: the page reports a
	// loader problem if a file appears later or never)
	if err := paths.ValidateDatasetFiles(); err != nil {
		logger.Warn("Snapshot validation failed at startup",
			slog.String("error", err.Error()),
			slog.String("action", "dashboard will report the missing file until it appears"))
	}

	// Initialize OpenTelemetry
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	// Create application
	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		WebFS:         webFS,
	}

	// Initialize services in order
	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// Setup router
	app.setupRouter()

	// Create HTTP server
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	// Initialize OTel middleware first: its metrics instruments are shared
	// with the store and the compute pipeline so HTTP, loader and compute
	// counters come from one meter
	otelMW, err := customMiddleware.NewOTelMiddleware(a.OTelProviders)
	if err != nil {
		return fmt.Errorf("failed to initialize OTel middleware: %w", err)
	}
	a.otelMiddleware = otelMW
	a.BusinessMetrics = otelMW.Metrics()

	// System metrics collector feeds the liveness endpoint; losing it is
	// not fatal
	if collector, err := infrastructure.NewSystemMetricsCollector(a.OTelProviders.Meter, 30*time.Second); err != nil {
		a.Logger.Warn("System metrics collector unavailable", slog.String("error", err.Error()))
	} else {
		a.systemMetrics = collector
	}

	// Initialize dataset loader and TTL cache
	loader := dataset.NewLoader(paths, infrastructure.WithComponent(a.Logger, "dataset"))
	a.Store = dataset.NewStore(
		loader,
		a.Config.Data.CacheTTL,
		a.Config.Data.CacheSweepInterval,
		infrastructure.WithComponent(a.Logger, "dataset"),
		a.BusinessMetrics,
	)

	// Initialize the compute pipeline
	a.DashboardService = services.NewDashboardService(
		a.Store,
		a.BusinessMetrics,
		a.Config.Data.MilestoneStep,
		infrastructure.WithComponent(a.Logger, "dashboard"),
	)

	// Initialize health service; the nil check keeps the interface nil
	// when the collector failed to build
	var systemStats services.SystemStatsProvider
	if a.systemMetrics != nil {
		systemStats = a.systemMetrics
	}
	a.HealthService = services.NewHealthService(config.AppVersion, a.Store, systemStats,
		infrastructure.WithComponent(a.Logger, "health"))

	// Initialize info service
	a.InfoService = services.NewInfoService(a.Store, infrastructure.WithComponent(a.Logger, "info"))

	// Parse the embedded dashboard page up front so a broken build fails
	// at startup, not on first request
	if a.WebFS != nil {
		page, err := handlers.ServeDashboardPage(a.WebFS)
		if err != nil {
			return fmt.Errorf("failed to load dashboard page: %w", err)
		}
		a.dashboardPage = page
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID and RealIP run for every route, including /metrics
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Route group with the full middleware chain:
	// RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders →
	// CORS → RateLimiter → Timeout (per group)
	r.Group(func(r chi.Router) {
		r.Use(a.otelMiddleware.Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		// CORS middleware - configured for same-origin plus any
		// explicitly allowed origins
		corsConfig := a.getCORSConfig()
		r.Use(customMiddleware.CORS(corsConfig))

		// Rate limiting
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	// Prometheus metrics endpoint stays outside the middleware group
	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		// Shared error handling and validation
		errorHandler := errors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
		validator := customMiddleware.NewValidationMiddleware(a.Logger)

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		// Health handler
		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		// Dashboard handler
		dashboardHandler := handlers.NewDashboardHandler(a.DashboardService, validator, a.Logger, errorHandler)
		r.Get("/dashboard", dashboardHandler.GetDashboard)
		r.Get("/membership/timeline", dashboardHandler.GetTimeline)
		r.Get("/revenue/breakdown", dashboardHandler.GetRevenueBreakdown)

		// Info handler
		infoHandler := handlers.NewInfoHandler(a.InfoService, a.Logger, errorHandler)
		r.Get("/info", infoHandler.GetInfo)

		// Export handler. Exports get their own named span because they
		// run the full pipeline plus serialization in one request.
		exportHandler := handlers.NewExportHandler(a.DashboardService, validator, a.BusinessMetrics, a.Logger, errorHandler)
		r.With(customMiddleware.TraceMiddleware("export")).Mount("/export", exportHandler.Routes())
	})
}

// setupHTMLRoutes serves the embedded dashboard page and its assets
func (a *Application) setupHTMLRoutes(r chi.Router) {
	if a.dashboardPage == nil {
		return
	}

	r.Get("/", a.dashboardPage)

	// Anything shipped alongside the page (favicon, logos)
	r.Route("/assets", func(r chi.Router) {
		r.Use(customMiddleware.Compress(5))
		r.Handle("/*", http.StripPrefix("/assets", handlers.ServeStaticAssets(a.WebFS)))
	})
}

// getCORSConfig builds the CORS policy: same-origin by default, plus any
// origins the deployment explicitly allows
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	cfg := customMiddleware.CORSConfig{
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		AllowCredentials: false,
		MaxAge:           300,
		Logger:           a.Logger,
	}

	cfg.AllowedOrigins = []string{
		fmt.Sprintf("http://localhost:%d", a.Config.Server.Port),
		fmt.Sprintf("http://127.0.0.1:%d", a.Config.Server.Port),
	}
	if a.Config.Security.EnableCORS && len(a.Config.Security.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, a.Config.Security.AllowedOrigins...)
	}

	a.Logger.Info("CORS configured",
		slog.Any("allowed_origins", cfg.AllowedOrigins))

	return cfg
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	// Log important paths for debugging
	paths, _ := config.GetPaths()
	a.Logger.InfoContext(ctx, "Application paths",
		slog.String("executable_dir", paths.ExecutableDir),
		slog.String("public_data_dir", paths.PublicDataDir),
		slog.String("data_dir", paths.DataDir),
		slog.String("logs_dir", paths.LogsDir))

	// Start background collection for the liveness endpoint
	if a.systemMetrics != nil {
		go a.systemMetrics.Start(ctx)
	}

	// Start server
	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			// Signal shutdown through context instead of os.Exit
			cancel()
		}
	}()

	// Perform health check on critical paths
	if err := a.performStartupHealthCheck(ctx); err != nil {
		a.Logger.WarnContext(ctx, "Startup health check warnings", slog.String("warnings", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Stop server
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	// Stop background services
	if a.systemMetrics != nil {
		a.systemMetrics.Stop()
	}
	if a.Store != nil {
		a.Store.Stop()
	}

	// Shutdown OpenTelemetry providers
	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Start application
	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	// Wait for interrupt or server failure
	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.InfoContext(ctx, "Server stopped, shutting down")
	}

	// Graceful shutdown
	return a.Stop(context.Background())
}

// performStartupHealthCheck verifies the working directories are usable and
// reports the snapshot situation. Failures are warnings: the dashboard can
// start and serve problem responses until the files appear.
func (a *Application) performStartupHealthCheck(ctx context.Context) error {
	paths, err := config.GetPaths()
	if err != nil {
		return fmt.Errorf("failed to get paths: %w", err)
	}

	var warnings []string

	// Every directory the process writes to must take a probe file
	validator := validation.NewFileValidator(a.Logger)
	directories := map[string]string{
		"Data":    paths.DataDir,
		"Reports": paths.ReportsDir,
		"Cache":   paths.CacheDir,
		"Logs":    paths.LogsDir,
	}
	for name, dir := range directories {
		if err := validator.ValidateOutputDirectory(dir); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s directory not usable: %v", name, err))
		}
	}

	// Report which snapshot files resolved and where
	if err := paths.ValidateDatasetFiles(); err != nil {
		warnings = append(warnings, err.Error())
	} else {
		a.Logger.InfoContext(ctx, "Snapshot files resolved",
			slog.String("membership", paths.GetMembershipCSVPath()),
			slog.String("revenue", paths.GetRevenueCSVPath()))
	}

	if len(warnings) > 0 {
		return fmt.Errorf("startup health check warnings: %s", strings.Join(warnings, "; "))
	}

	a.Logger.InfoContext(ctx, "Startup health check passed")
	return nil
}
