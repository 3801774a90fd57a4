package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"

	"github.com/sjperalta/fintera-ops/internal/config"
	"github.com/sjperalta/fintera-ops/internal/database"
	"github.com/sjperalta/fintera-ops/internal/handlers"
	"github.com/sjperalta/fintera-ops/internal/jobs"
	"github.com/sjperalta/fintera-ops/internal/middleware"
	"github.com/sjperalta/fintera-ops/internal/repository"
	"github.com/sjperalta/fintera-ops/internal/services"
	"github.com/sjperalta/fintera-ops/pkg/logger"

	"github.com/gin-gonic/gin"
)

// @title Fintera Ops API
// @version 1.0
// @description Recurring obligations, invoices and payroll for multi-tenant finance teams
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry (GlitchTip) when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	if !cfg.EmailConfigured() {
		logger.Warn("Resend email disabled: payment links will not be emailed. Set RESEND_API_KEY and FROM_EMAIL to enable it.")
	}
	if cfg.PaymentProviderURL == "" {
		logger.Warn("PAYMENT_PROVIDER_URL not set: payment link requests will fail")
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to migrate database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, worker, cfg, services.DefaultDependencies(cfg))

	// Schedule the finance ticks
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Throttle the public payment callback
	callbackLimiter, err := middleware.NewMemoryLimiter(cfg.CallbackRateLimit)
	if err != nil {
		logger.Error("Invalid CALLBACK_RATE_LIMIT", "error", err)
		os.Exit(1)
	}

	// Setup router
	router := setupRouter(h, cfg, callbackLimiter)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stops the tick loops and waits for in-flight runs
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, callbackLimiter *limiter.Limiter) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// Redirect root to swagger
	router.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	h.RegisterRoutes(router, cfg.JWTSecret, callbackLimiter)

	return router
}

// scheduleJobs starts the three finance ticks. The recurring tick runs at startup and then
// every RECURRING_TICK_INTERVAL; the invoice and payroll ticks run daily at DAILY_TICK_HOUR.
func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	worker.ScheduleEveryImmediate(services.JobRecurringObligations, cfg.RecurringTickInterval, svcs.Recurring.Tick)
	worker.ScheduleDaily(services.JobInvoiceLifecycle, cfg.DailyTickHour, cfg.Location, true, svcs.InvoiceMonitor.Tick)
	worker.ScheduleDaily(services.JobPayrollScheduling, cfg.DailyTickHour, cfg.Location, true, svcs.PayrollScheduler.Tick)

	logger.Info("Scheduled finance jobs",
		"recurring_interval", cfg.RecurringTickInterval.String(),
		"daily_hour", cfg.DailyTickHour,
		"timezone", cfg.Timezone)
}
