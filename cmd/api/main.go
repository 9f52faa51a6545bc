package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hifzhub/tahfiz-enrollment-api/api/swagger"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/handler"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/middleware"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/repository"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/service"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/cache"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/config"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/database"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/logger"
	corsmiddleware "github.com/hifzhub/tahfiz-enrollment-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hifzhub/tahfiz-enrollment-api/pkg/middleware/requestid"
	"github.com/hifzhub/tahfiz-enrollment-api/pkg/storage"
)

// @title Tahfiz Enrollment API
// @version 1.0.0
// @description Role-based enrollment service for mosque memorization programs
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	mediaStore, err := storage.NewMediaStore(cfg.Media.StorageDir, cfg.Media.Bucket, cfg.Media.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init media store", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	mosqueRepo := repository.NewMosqueRepository(db)
	programRepo := repository.NewProgramRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	authSvc := service.NewAuthService(userRepo, profileRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	programSvc := service.NewProgramService(programRepo, mosqueRepo, profileRepo, enrollmentRepo, mediaStore, cacheSvc, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, programRepo, cacheSvc, logr)
	userAdminSvc := service.NewUserAdminService(profileRepo, userRepo, cacheSvc, validate, logr)
	profileSvc := service.NewProfileService(profileRepo, userRepo, authSvc, mediaStore, cacheSvc, logr)
	dashboardSvc := service.NewDashboardService(programRepo, profileRepo, enrollmentRepo, mosqueRepo, mediaStore, cacheSvc, logr)
	exportSvc := service.NewExportService(programSvc, cfg.Export.Enabled, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	programHandler := handler.NewProgramHandler(programSvc, exportSvc, cfg.Media.MaxUploadSize)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	adminUserHandler := handler.NewAdminUserHandler(userAdminSvc)
	profileHandler := handler.NewProfileHandler(profileSvc, cfg.Media.MaxUploadSize)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	directoryHandler := handler.NewDirectoryHandler(mosqueRepo, profileRepo)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Stored media is served from the same process in development; any CDN
	// or reverse proxy can take this over without URL changes.
	r.Static(mediaRoutePrefix(cfg.Media.PublicBaseURL), cfg.Media.StorageDir)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	}

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))
	protected.Use(middleware.ResolveRole(authSvc))
	{
		protected.GET("/dashboard", dashboardHandler.Get)
		protected.GET("/profile", profileHandler.Get)
		protected.PUT("/profile", profileHandler.Update)
		protected.GET("/mosques", directoryHandler.Mosques)
		protected.GET("/teachers", middleware.RequireRoles(models.RoleAdmin), directoryHandler.Teachers)

		programs := protected.Group("/programs")
		{
			programs.GET("", programHandler.List)
			programs.POST("", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), programHandler.Create)
			programs.GET("/options", middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), programHandler.CreationOptions)
			programs.GET("/:id", programHandler.Detail)
			programs.POST("/:id/enroll", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.Enroll)
			programs.DELETE("/:id/enroll", middleware.RequireRoles(models.RoleStudent), enrollmentHandler.Withdraw)
			programs.GET("/:id/roster", programHandler.Roster)
			programs.GET("/:id/roster/export", programHandler.ExportRoster)
		}

		admin := protected.Group("/admin")
		admin.Use(middleware.RequireRoles(models.RoleAdmin))
		{
			admin.GET("/users", adminUserHandler.List)
			admin.PATCH("/users", adminUserHandler.UpdateRole)
			admin.DELETE("/users", adminUserHandler.Delete)
			admin.GET("/system", metricsHandler.Snapshot)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// mediaRoutePrefix extracts the local route path from the configured public
// base URL, falling back to /media for absolute URLs pointing elsewhere.
func mediaRoutePrefix(baseURL string) string {
	trimmed := strings.TrimSuffix(baseURL, "/")
	if idx := strings.Index(trimmed, "://"); idx >= 0 {
		rest := trimmed[idx+3:]
		if slash := strings.Index(rest, "/"); slash >= 0 {
			return rest[slash:]
		}
		return "/media"
	}
	if strings.HasPrefix(trimmed, "/") && trimmed != "" {
		return trimmed
	}
	return "/media"
}
