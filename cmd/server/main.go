package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayabid/license-admin-api/internal/config"
	"github.com/ayabid/license-admin-api/internal/handler"
	"github.com/ayabid/license-admin-api/internal/handler/middleware"
	"github.com/ayabid/license-admin-api/internal/ierr"
	"github.com/ayabid/license-admin-api/internal/service"
	"github.com/ayabid/license-admin-api/internal/storage/clientdb"
	"github.com/ayabid/license-admin-api/internal/storage/memstorage"
	"github.com/ayabid/license-admin-api/internal/storage/postgres"
	"github.com/ayabid/license-admin-api/internal/storage/redis"
	"github.com/ayabid/license-admin-api/internal/worker"
	"github.com/ayabid/license-admin-api/pkg/logger"
)

func main() {
	configPath := flag.String("config", "./configs/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	sugarLogger := appLogger.Sugar()
	sugarLogger.Info("Starting application...")

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := postgres.NewPgxPool(appCtx, &cfg.Database, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer dbPool.Close()

	if err := postgres.RunMigrations(appCtx, dbPool, appLogger); err != nil {
		sugarLogger.Fatalf("Failed to run database migrations: %v", err)
	}

	redisClient, err := redis.NewRedisClient(appCtx, &cfg.Redis, appLogger)
	if err != nil {
		sugarLogger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	clientDBs := clientdb.NewManager(&cfg.ClientDB, appLogger)
	defer clientDBs.Close()

	licenseRepo := postgres.NewLicenseRepository(dbPool, appLogger)
	auditRepo := postgres.NewAuditRepository(dbPool, appLogger)
	sessionRepo := postgres.NewSessionRepository(dbPool, appLogger)
	reportRepo := postgres.NewReportRepository(dbPool, appLogger)
	apiKeyRepo := postgres.NewAPIKeyRepository(dbPool, appLogger)
	userRepo := memstorage.NewUserRepository(os.Getenv("ADMIN_PASSWORD"))
	txManager := postgres.NewTxManager(dbPool, appLogger)
	statsCache := redis.NewStatsCache(redisClient, cfg.Dashboard.StatsCacheTTL, appLogger)

	licenseService := service.NewLicenseService(licenseRepo, sessionRepo, auditRepo, txManager, clientDBs, appLogger)
	accessService := service.NewAccessService(licenseRepo, sessionRepo, auditRepo, appLogger)
	reportService := service.NewReportService(reportRepo, licenseRepo, auditRepo, statsCache, cfg.Dashboard, appLogger)
	monitorService := service.NewMonitorService(licenseRepo, clientDBs, reportRepo, appLogger)
	authService := service.NewAuthService(userRepo, &cfg.JWT, appLogger)
	apiKeyService := service.NewAPIKeyService(apiKeyRepo, appLogger)

	healthHandler := handler.NewHealthHandler(dbPool, redisClient, appLogger)
	licenseHandler := handler.NewLicenseHandler(licenseService, appLogger)
	accessHandler := handler.NewAccessHandler(accessService, appLogger)
	dashboardHandler := handler.NewDashboardHandler(reportService, appLogger)
	auditHandler := handler.NewAuditHandler(reportService, appLogger)
	monitorHandler := handler.NewMonitorHandler(monitorService, appLogger)
	authHandler := handler.NewAuthHandler(authService, appLogger)
	apiKeyHandler := handler.NewAPIKeyHandler(apiKeyService, appLogger)

	authMiddleware := middleware.AuthMiddleware(authService, appLogger)
	apiKeyAuthMiddleware := middleware.APIKeyAuthMiddleware(apiKeyService, appLogger)
	errorMiddleware := middleware.ErrorHandlerMiddleware(appLogger)

	router := gin.New()
	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
			param.ClientIP,
			param.TimeStamp.Format(time.RFC1123),
			param.Method,
			param.Path,
			param.Request.Proto,
			param.StatusCode,
			param.Latency,
			param.Request.UserAgent(),
			param.ErrorMessage,
		)
	}))
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logMsg := "Panic recovered"
		if err, ok := recovered.(string); ok {
			logMsg = fmt.Sprintf("%s: %s", logMsg, err)
		} else if err, ok := recovered.(error); ok {
			logMsg = fmt.Sprintf("%s: %v", logMsg, err)
		}
		appLogger.Error(logMsg, zap.Stack("stack"))

		_ = c.Error(ierr.ErrInternalServer)
		c.Abort()
	}))

	corsConfig := cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			"X-API-Key",
		},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))
	router.Use(errorMiddleware)

	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRoutes := router.Group("/api/v1/auth")
	{
		authRoutes.POST("/login", authHandler.Login)
	}

	apiV1 := router.Group("/api/v1")
	{
		accessRoutes := apiV1.Group("/access")
		accessRoutes.Use(apiKeyAuthMiddleware)
		{
			accessRoutes.POST("/validate", accessHandler.Validate)
			accessRoutes.POST("/sessions/end", accessHandler.EndSession)
		}

		licenseRoutes := apiV1.Group("/licenses")
		licenseRoutes.Use(authMiddleware)
		{
			licenseRoutes.POST("", licenseHandler.Create)
			licenseRoutes.GET("", licenseHandler.List)
			licenseRoutes.GET("/:id", licenseHandler.GetByID)
			licenseRoutes.PATCH("/:id", licenseHandler.Update)
			licenseRoutes.DELETE("/:id", licenseHandler.Delete)
			licenseRoutes.POST("/:id/renew", licenseHandler.Renew)
			licenseRoutes.PATCH("/:id/status", licenseHandler.UpdateStatus)
			licenseRoutes.GET("/:id/status-history", auditHandler.StatusHistory)
			licenseRoutes.GET("/:id/renewals", auditHandler.RenewalHistory)
		}

		dashboardRoutes := apiV1.Group("/dashboard")
		dashboardRoutes.Use(authMiddleware)
		{
			dashboardRoutes.GET("/summary", dashboardHandler.GetSummary)
			dashboardRoutes.GET("/statistics", dashboardHandler.GetStatistics)
			dashboardRoutes.GET("/activities", dashboardHandler.GetRecentActivities)
			dashboardRoutes.GET("/expiring", dashboardHandler.GetExpiringLicenses)
		}

		auditRoutes := apiV1.Group("/audit")
		auditRoutes.Use(authMiddleware)
		{
			auditRoutes.GET("/actions", auditHandler.ListAdminActions)
		}

		monitorRoutes := apiV1.Group("/monitor")
		monitorRoutes.Use(authMiddleware)
		{
			monitorRoutes.GET("/databases", monitorHandler.Statuses)
			monitorRoutes.POST("/probe", monitorHandler.ProbeAll)
			monitorRoutes.POST("/databases/:db/test", monitorHandler.TestDatabase)
			monitorRoutes.GET("/auth-history", monitorHandler.AuthHistory)
			monitorRoutes.GET("/auth-stats", monitorHandler.FleetStats)
		}

		apiKeyRoutes := apiV1.Group("/apikeys")
		apiKeyRoutes.Use(authMiddleware)
		{
			apiKeyRoutes.POST("", apiKeyHandler.Create)
			apiKeyRoutes.GET("", apiKeyHandler.List)
			apiKeyRoutes.DELETE("/:id", apiKeyHandler.Revoke)
		}
	}

	g, groupCtx := errgroup.WithContext(appCtx)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g.Go(func() error {
		sugarLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		sugarLogger.Info("Shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownPeriod)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown error: %w", err)
		}
		sugarLogger.Info("HTTP server shutdown complete.")
		return nil
	})

	g.Go(func() error {
		if err := worker.RunWorkers(groupCtx, cfg, sessionRepo, monitorService, appLogger); err != nil {
			return fmt.Errorf("asynq worker error: %w", err)
		}
		sugarLogger.Info("Asynq workers finished gracefully.")
		return nil
	})

	sugarLogger.Info("Application started. Waiting for interrupt signal or component error...")

	waitErr := g.Wait()
	if waitErr != nil && !errors.Is(waitErr, context.Canceled) {
		sugarLogger.Errorf("Application shutdown finished with error: %v", waitErr)
	} else {
		sugarLogger.Info("Application shutdown successfully.")
	}
}
