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

	_ "github.com/mycad-io/fleet-api/api/swagger"
	"github.com/mycad-io/fleet-api/internal/folio"
	"github.com/mycad-io/fleet-api/internal/handler"
	"github.com/mycad-io/fleet-api/internal/middleware"
	"github.com/mycad-io/fleet-api/internal/models"
	"github.com/mycad-io/fleet-api/internal/repository"
	"github.com/mycad-io/fleet-api/internal/service"
	"github.com/mycad-io/fleet-api/pkg/cache"
	"github.com/mycad-io/fleet-api/pkg/config"
	"github.com/mycad-io/fleet-api/pkg/database"
	"github.com/mycad-io/fleet-api/pkg/jobs"
	"github.com/mycad-io/fleet-api/pkg/logger"
	corsmiddleware "github.com/mycad-io/fleet-api/pkg/middleware/cors"
	reqidmiddleware "github.com/mycad-io/fleet-api/pkg/middleware/requestid"
	"github.com/mycad-io/fleet-api/pkg/storage"
)

// @title Fleet Back-Office API
// @version 1.0.0
// @description Vehicle fleet, rental and maintenance management API
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, list cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.ListTTL, logr, true)
		}
	}

	// Repositories.
	userRepo := repository.NewUserRepository(db)
	vehicleRepo := repository.NewVehicleRepository(db)
	modelRepo := repository.NewVehicleModelRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	typeRepo := repository.NewVehicleTypeRepository(db)
	conditionRepo := repository.NewConditionRepository(db)
	clientRepo := repository.NewClientRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	repairRepo := repository.NewRepairReportRepository(db)
	serviceRepo := repository.NewServiceReportRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	folioRepo := repository.NewFolioRepository(db)
	exportJobRepo := repository.NewExportJobRepository(db)

	// Storage.
	uploadStore, err := storage.NewLocalStorage(cfg.Uploads.StorageDir)
	if err != nil {
		logr.Fatal("failed to init upload storage", zap.Error(err))
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	uploadSigner := storage.NewSignedURLSigner(cfg.Uploads.SignedURLSecret, cfg.Uploads.SignedURLTTL)
	exportSigner := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	// Services.
	folioGen := folio.NewGenerator(folioRepo, folio.Config{RandomMaxAttempts: cfg.Folio.RandomMaxAttempts})
	folioSvc := service.NewFolioService(folioGen, logr)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	vehicleSvc := service.NewVehicleService(vehicleRepo, modelRepo, attachmentRepo, cacheSvc, validate, logr)
	catalogSvc := service.NewCatalogService(brandRepo, typeRepo, conditionRepo, modelRepo, cacheSvc, validate, logr)
	clientSvc := service.NewClientService(clientRepo, validate, logr)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, uploadStore, uploadSigner, service.AttachmentConfig{
		MaxFileSizeBytes: cfg.Uploads.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Uploads.AllowedMIMEs,
	}, logr)
	rentalSvc := service.NewRentalService(rentalRepo, vehicleRepo, clientRepo, attachmentRepo, folioSvc, cacheSvc, validate, logr)
	repairSvc := service.NewRepairReportService(repairRepo, vehicleRepo, attachmentRepo, folioSvc, validate, logr)
	serviceSvc := service.NewServiceReportService(serviceRepo, vehicleRepo, attachmentRepo, folioSvc, validate, logr)

	exportSvc := service.NewExportService(service.ExportSources{
		Vehicles:       vehicleRepo,
		Rentals:        rentalRepo,
		RepairReports:  repairRepo,
		ServiceReports: serviceRepo,
	}, exportStore, exportSigner, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	exportWorker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
	exportQueue := jobs.NewQueue("exports", exportWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr,
	})
	exportQueue.Start(ctx)
	defer exportQueue.Stop()

	exportJobSvc := service.NewExportJobService(exportJobRepo, exportQueue, exportSvc, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
		MaxRetries:      cfg.Exports.WorkerRetries,
	})
	exportJobSvc.RecoverPendingJobs(ctx)
	exportJobSvc.StartCleanup(ctx)

	router := buildRouter(cfg, logr, routerDeps{
		auth:        authSvc,
		metrics:     metricsSvc,
		audit:       userRepo,
		users:       handler.NewUserHandler(userSvc),
		authH:       handler.NewAuthHandler(authSvc),
		vehicles:    handler.NewVehicleHandler(vehicleSvc),
		catalogs:    handler.NewCatalogHandler(catalogSvc),
		clients:     handler.NewClientHandler(clientSvc),
		rentals:     handler.NewRentalHandler(rentalSvc),
		repairs:     handler.NewRepairReportHandler(repairSvc),
		services:    handler.NewServiceReportHandler(serviceSvc),
		attachments: handler.NewAttachmentHandler(attachmentSvc),
		exports:     handler.NewExportHandler(exportJobSvc),
		metricsH:    handler.NewMetricsHandler(metricsSvc),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("forced shutdown", zap.Error(err))
	}
}

type routerDeps struct {
	auth    *service.AuthService
	metrics *service.MetricsService
	audit   *repository.UserRepository

	authH       *handler.AuthHandler
	users       *handler.UserHandler
	vehicles    *handler.VehicleHandler
	catalogs    *handler.CatalogHandler
	clients     *handler.ClientHandler
	rentals     *handler.RentalHandler
	repairs     *handler.RepairReportHandler
	services    *handler.ServiceReportHandler
	attachments *handler.AttachmentHandler
	exports     *handler.ExportHandler
	metricsH    *handler.MetricsHandler
}

func buildRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.metricsH.Health)
	r.GET("/ready", deps.metricsH.Health)
	r.GET("/metrics", deps.metricsH.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", deps.authH.Login)
		auth.POST("/refresh", deps.authH.Refresh)
		auth.POST("/forgot-password", deps.authH.ForgotPassword)
		auth.POST("/reset-password", deps.authH.ResetPassword)

		authed := auth.Group("", middleware.JWT(deps.auth))
		authed.GET("/me", deps.authH.Me)
		authed.POST("/logout", deps.authH.Logout)
		authed.POST("/change-password", deps.authH.ChangePassword)
	}

	// Signed-token downloads carry their own authentication.
	api.GET("/attachments/download/:token", deps.attachments.Download)
	api.GET("/exports/download/:token", deps.exports.Download)

	protected := api.Group("", middleware.JWT(deps.auth))

	admin := middleware.RequireRoles(models.RoleRoot, models.RoleAdministrator)
	writer := middleware.RequireRoles(models.RoleRoot, models.RoleAdministrator, models.RoleUser)

	users := protected.Group("/users")
	{
		users.GET("", admin, deps.users.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleRoot), string(models.RoleAdministrator), "SELF"), deps.users.Get)
		users.POST("", admin, deps.users.Create)
		users.PUT("/:id", admin, deps.users.Update)
		users.DELETE("/:id", admin, deps.users.Delete)
	}

	vehicles := protected.Group("/vehicles")
	{
		vehicles.GET("", deps.vehicles.List)
		vehicles.GET("/:id", deps.vehicles.Get)
		vehicles.POST("", writer, deps.vehicles.Create)
		vehicles.PUT("/:id", writer, deps.vehicles.Update)
		vehicles.PATCH("/:id/status", writer, deps.vehicles.UpdateStatus)
		vehicles.DELETE("/:id", admin, deps.vehicles.Delete)
	}

	catalogs := protected.Group("/catalogs")
	{
		for path, kind := range map[string]service.CatalogKind{
			"/brands":     service.CatalogBrands,
			"/types":      service.CatalogTypes,
			"/conditions": service.CatalogConditions,
		} {
			catalogs.GET(path, deps.catalogs.List(kind))
			catalogs.POST(path, admin, deps.catalogs.Create(kind))
			catalogs.PUT(path+"/:id", admin, deps.catalogs.Update(kind))
			catalogs.DELETE(path+"/:id", admin, deps.catalogs.Delete(kind))
		}
		catalogs.GET("/models", deps.catalogs.ListModels)
		catalogs.POST("/models", admin, deps.catalogs.CreateModel)
		catalogs.PUT("/models/:id", admin, deps.catalogs.UpdateModel)
		catalogs.DELETE("/models/:id", admin, deps.catalogs.DeleteModel)
	}

	clients := protected.Group("/clients")
	{
		clients.GET("", deps.clients.List)
		clients.GET("/:id", deps.clients.Get)
		clients.POST("", writer, deps.clients.Create)
		clients.PUT("/:id", writer, deps.clients.Update)
		clients.DELETE("/:id", admin, deps.clients.Delete)
	}

	rentals := protected.Group("/rentals")
	{
		rentals.GET("", deps.rentals.List)
		rentals.GET("/:id", deps.rentals.Get)
		rentals.POST("", writer, deps.rentals.Create)
		rentals.PUT("/:id", writer, deps.rentals.Update)
		rentals.POST("/:id/activate", writer, deps.rentals.Activate)
		rentals.POST("/:id/complete", writer, deps.rentals.Complete)
		rentals.POST("/:id/cancel", writer, deps.rentals.Cancel)
		rentals.DELETE("/:id", admin, deps.rentals.Delete)
	}

	repairs := protected.Group("/repair-reports")
	{
		repairs.GET("", deps.repairs.List)
		repairs.GET("/:id", deps.repairs.Get)
		repairs.POST("", writer, deps.repairs.Create)
		repairs.PUT("/:id", writer, deps.repairs.Update)
		repairs.DELETE("/:id", admin, deps.repairs.Delete)
	}

	services := protected.Group("/service-reports")
	{
		services.GET("", deps.services.List)
		services.GET("/:id", deps.services.Get)
		services.POST("", writer, deps.services.Create)
		services.PUT("/:id", writer, deps.services.Update)
		services.DELETE("/:id", admin, deps.services.Delete)
	}

	attachments := protected.Group("/attachments")
	{
		attachments.GET("", deps.attachments.ListByOwner)
		attachments.GET("/:id/url", deps.attachments.SignedURL)
		attachments.POST("", writer, deps.attachments.Upload)
		attachments.DELETE("/:id", admin, middleware.Audit(deps.audit, "ATTACHMENT_DELETE", "attachments"), deps.attachments.Delete)
	}

	exports := protected.Group("/exports")
	{
		exports.POST("", writer, middleware.Audit(deps.audit, "EXPORT_CREATE", "exports"), deps.exports.Create)
		exports.GET("/:id", deps.exports.Status)
	}

	return r
}
