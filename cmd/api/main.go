package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/skyprep/aviation-exam-api/api/swagger"
	"github.com/skyprep/aviation-exam-api/internal/handler"
	"github.com/skyprep/aviation-exam-api/internal/middleware"
	"github.com/skyprep/aviation-exam-api/internal/models"
	"github.com/skyprep/aviation-exam-api/internal/repository"
	"github.com/skyprep/aviation-exam-api/internal/service"
	"github.com/skyprep/aviation-exam-api/pkg/cache"
	"github.com/skyprep/aviation-exam-api/pkg/config"
	"github.com/skyprep/aviation-exam-api/pkg/database"
	"github.com/skyprep/aviation-exam-api/pkg/export"
	"github.com/skyprep/aviation-exam-api/pkg/logger"
	corsmiddleware "github.com/skyprep/aviation-exam-api/pkg/middleware/cors"
	reqidmiddleware "github.com/skyprep/aviation-exam-api/pkg/middleware/requestid"
)

// @title Aviation Exam API
// @version 0.1.0
// @description Trainee enrollment and exam scheduling for flight school theory courses
// @BasePath /
// @schemes http

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

	if err := database.Migrate(database.URL(cfg.Database)); err != nil {
		logr.Sugar().Fatalw("migration failed", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	validate := validator.New()

	accountRepo := repository.NewAccountRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	traineeRepo := repository.NewTraineeRepository(db)
	calendarRepo := repository.NewCalendarRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	denylist := repository.NewSessionDenylist(redisClient, logr)

	enrollmentSvc := service.NewEnrollmentService(traineeRepo, accountRepo, validate, logr)
	authSvc := service.NewAuthService(accountRepo, adminRepo, enrollmentSvc, denylist, auditRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	scheduleSvc := service.NewScheduleService(calendarRepo, traineeRepo, auditRepo, validate, logr)
	dashboardSvc := service.NewDashboardService(traineeRepo, logr)
	rosterSvc := service.NewRosterService(traineeRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr, service.RosterConfig{
		FilenamePrefix: cfg.Export.FilenamePrefix,
		DateFormat:     cfg.Export.DateFormat,
	})
	metricsSvc := service.NewMetricsService()

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler()
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.POST("/admin/login", authHandler.AdminLogin)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
	}

	api.GET("/catalog/:group", catalogHandler.Courses)

	me := api.Group("/me", middleware.JWT(authSvc))
	{
		me.GET("/profile", enrollmentHandler.Profile)
		me.GET("/selection", enrollmentHandler.GetSelection)
		me.PUT("/selection", enrollmentHandler.SaveSelection)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin))
	{
		admin.GET("/dashboard", dashboardHandler.Overview)
		admin.GET("/trainees", rosterHandler.List)
		admin.GET("/trainees/export", rosterHandler.Export)
		admin.GET("/calendar", scheduleHandler.List)
		admin.POST("/calendar", scheduleHandler.Create)
		admin.DELETE("/calendar/:id", scheduleHandler.Delete)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
