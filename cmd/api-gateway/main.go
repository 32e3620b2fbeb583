package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/opendms/dms-api/api/swagger"
	"github.com/opendms/dms-api/internal/handler"
	"github.com/opendms/dms-api/internal/middleware"
	"github.com/opendms/dms-api/internal/repository"
	"github.com/opendms/dms-api/internal/service"
	"github.com/opendms/dms-api/pkg/cache"
	"github.com/opendms/dms-api/pkg/config"
	"github.com/opendms/dms-api/pkg/database"
	"github.com/opendms/dms-api/pkg/logger"
	corsmiddleware "github.com/opendms/dms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/opendms/dms-api/pkg/middleware/requestid"
	"github.com/opendms/dms-api/pkg/storage"
)

// @title DMS API
// @version 1.0.0
// @description Document management backend with OTP login and access-filtered catalog
// @BasePath /api
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.Bootstrap(bootCtx, db); err != nil {
		logr.Sugar().Fatalw("failed to bootstrap schema", "error", err)
	}
	if err := database.Seed(bootCtx, db, cfg.Seed); err != nil {
		logr.Sugar().Fatalw("failed to seed data", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close() //nolint:errcheck

	store, err := storage.NewLocalStorage(cfg.Storage.UploadsDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init storage", "error", err)
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	headRepo := repository.NewHeadRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	otpRepo := repository.NewOTPRepository(redisClient, cfg.OTP.TTL)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, otpRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
		Audience:    cfg.JWT.Audience,
	})
	headSvc := service.NewHeadService(headRepo, validate, logr)
	documentSvc := service.NewDocumentService(documentRepo, headRepo, userRepo, store, logr, service.DocumentServiceConfig{
		MaxFileSize: cfg.Storage.MaxFileSizeBytes,
	})

	authHandler := handler.NewAuthHandler(authSvc, metricsSvc)
	headHandler := handler.NewHeadHandler(headSvc)
	documentHandler := handler.NewDocumentHandler(documentSvc, metricsSvc)
	adminHandler := handler.NewAdminHandler(authSvc, metricsSvc)

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
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "postgres": err.Error()})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "redis": err.Error()})
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
		auth.POST("/request-otp", authHandler.RequestOTP)
		auth.POST("/validate-otp", authHandler.ValidateOTP)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)
	}

	documents := api.Group("/documents", middleware.JWT(authSvc))
	{
		documents.GET("", documentHandler.List)
		documents.GET("/search", documentHandler.Search)
		documents.GET("/tags", documentHandler.Tags)
		documents.GET("/export", middleware.AdminOnly(), documentHandler.Export)
		documents.GET("/:id", documentHandler.Get)
		documents.GET("/download/:fileName", documentHandler.Download)
		documents.POST("/download/zip", documentHandler.DownloadZip)
		documents.POST("/upload", middleware.AdminOnly(), documentHandler.Upload)
		documents.DELETE("/:fileName", middleware.AdminOnly(), documentHandler.Delete)
	}

	heads := api.Group("/heads", middleware.JWT(authSvc))
	{
		heads.GET("/major", headHandler.ListMajor)
		heads.POST("/major", middleware.AdminOnly(), headHandler.CreateMajor)
		heads.GET("/minor/:majorHeadId", headHandler.ListMinor)
		heads.POST("/minor", middleware.AdminOnly(), headHandler.CreateMinor)
		heads.DELETE("/minor/:id", middleware.AdminOnly(), headHandler.DeleteMinor)
	}

	admin := api.Group("/admin", middleware.JWT(authSvc), middleware.AdminOnly())
	{
		admin.POST("/create-user", adminHandler.CreateAdmin)
		admin.GET("/stats", adminHandler.Stats)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
