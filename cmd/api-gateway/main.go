package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/dayflow-app/dayflow-api/api/swagger"
	"github.com/dayflow-app/dayflow-api/internal/handler"
	"github.com/dayflow-app/dayflow-api/internal/middleware"
	"github.com/dayflow-app/dayflow-api/internal/models"
	"github.com/dayflow-app/dayflow-api/internal/repository"
	"github.com/dayflow-app/dayflow-api/internal/service"
	"github.com/dayflow-app/dayflow-api/pkg/cache"
	"github.com/dayflow-app/dayflow-api/pkg/config"
	"github.com/dayflow-app/dayflow-api/pkg/database"
	"github.com/dayflow-app/dayflow-api/pkg/logger"
	corsmiddleware "github.com/dayflow-app/dayflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/dayflow-app/dayflow-api/pkg/middleware/requestid"
	"github.com/dayflow-app/dayflow-api/pkg/storage"
)

// @title Dayflow API
// @version 1.0.0
// @description Day-plan scheduling service: timeline generation, habit streaks and exports
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo service.CacheRepository
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	prefRepo := repository.NewPreferenceRepository(db)
	eventRepo := repository.NewCalendarEventRepository(db)
	mealRepo := repository.NewMealPlanRepository(db)
	timelineRepo := repository.NewTimelineRepository(db)
	streakRepo := repository.NewStreakRepository(db)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Planner.CacheTTL, logr, cfg.Planner.CacheOn)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "dayflow-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	prefSvc := service.NewPreferenceService(prefRepo, validate, logr)
	mealSvc := service.NewMealPlanService(mealRepo, eventRepo, validate, logr)
	plannerSvc := service.NewPlannerService(
		timelineRepo, eventRepo, mealRepo, prefRepo,
		cacheSvc, metricsSvc, db, validate, logr,
		service.PlannerConfig{PreviewTTL: cfg.Planner.PreviewTTL, CacheTTL: cfg.Planner.CacheTTL},
	)
	streakSvc := service.NewStreakService(streakRepo, logr, 1)
	streakSvc.Start(ctx)
	defer streakSvc.Stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		store, storeErr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if storeErr != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", storeErr)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(plannerSvc, store, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
		go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	prefHandler := handler.NewPreferenceHandler(prefSvc)
	mealHandler := handler.NewMealPlanHandler(mealSvc)
	plannerHandler := handler.NewPlannerHandler(plannerSvc, streakSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/forgot-password", authHandler.ForgotPassword)
		auth.POST("/reset-password", authHandler.ResetPassword)
	}

	// Download links carry their own signed token; no session required.
	if exportSvc != nil {
		api.GET("/export/:token", exportHandler.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.POST("/auth/logout", authHandler.Logout)
		authed.POST("/auth/change-password", authHandler.ChangePassword)
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/preferences", prefHandler.Get)
		authed.PUT("/preferences", prefHandler.Update)

		inputs := authed.Group("/inputs")
		{
			inputs.GET("/:date", mealHandler.ListDay)
			inputs.POST("/meals", mealHandler.AddMeal)
			inputs.DELETE("/meals/:id", mealHandler.RemoveMeal)
			inputs.PUT("/workout", mealHandler.SetWorkout)
			inputs.DELETE("/workout/:date", mealHandler.ClearWorkout)
			inputs.POST("/events", mealHandler.AddEvent)
			inputs.DELETE("/events/:id", mealHandler.RemoveEvent)
		}

		planner := authed.Group("/planner")
		{
			planner.POST("/generate", plannerHandler.Generate)
			planner.POST("/save", plannerHandler.Save)
			planner.GET("/days", plannerHandler.List)
			planner.GET("/days/:date", plannerHandler.Day)
			planner.PATCH("/timelines/:id/blocks/:blockId", plannerHandler.MarkBlock)
			planner.DELETE("/timelines/:id", plannerHandler.DeleteTimeline)
			planner.GET("/streaks", plannerHandler.Streaks)
			if exportSvc != nil {
				planner.POST("/days/:date/export", exportHandler.Export)
			}
		}

		authed.GET("/system/metrics", middleware.RBAC(string(models.RoleAdmin)), metricsHandler.System)

		users := authed.Group("/users")
		users.Use(middleware.RBAC(string(models.RoleAdmin), "SELF"))
		{
			users.GET("", userHandler.List)
			users.POST("", middleware.Audit(userRepo, models.AuditActionCreate, "users"), userHandler.Create)
			users.GET("/:id", userHandler.Get)
			users.PUT("/:id", middleware.Audit(userRepo, models.AuditActionUpdate, "users"), userHandler.Update)
			users.DELETE("/:id", middleware.Audit(userRepo, models.AuditActionDelete, "users"), userHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("export cleanup removed files", zap.Int("count", len(removed)))
			}
		}
	}
}
