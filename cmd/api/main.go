package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edutrack-mx/sira-api/api/swagger"
	"github.com/edutrack-mx/sira-api/internal/handler"
	"github.com/edutrack-mx/sira-api/internal/middleware"
	"github.com/edutrack-mx/sira-api/internal/repository"
	"github.com/edutrack-mx/sira-api/internal/service"
	"github.com/edutrack-mx/sira-api/pkg/cache"
	"github.com/edutrack-mx/sira-api/pkg/config"
	"github.com/edutrack-mx/sira-api/pkg/database"
	"github.com/edutrack-mx/sira-api/pkg/export"
	"github.com/edutrack-mx/sira-api/pkg/logger"
	corsmiddleware "github.com/edutrack-mx/sira-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edutrack-mx/sira-api/pkg/middleware/requestid"
)

// @title SIRA API
// @version 0.1.0
// @description Academic record and dropout risk tracking service
// @BasePath /api/v1
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
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var refCache *service.ReferenceCache
	if cfg.ReferenceCache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, reference cache disabled", "error", err)
		} else {
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			refCache = service.NewReferenceCache(cacheRepo, cfg.ReferenceCache.TTL, metricsSvc, logr)
		}
	}

	validate := validator.New()

	programRepo := repository.NewProgramRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	riskRepo := repository.NewRiskRepository(db)

	evaluator := service.NewEvaluator(cfg.Grading.PassThreshold)

	programSvc := service.NewProgramService(programRepo, refCache, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, programRepo, refCache, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	recordSvc := service.NewRecordService(recordRepo, studentRepo, subjectRepo, riskRepo, evaluator, validate, logr)
	riskSvc := service.NewRiskService(riskRepo, refCache, validate, logr)
	exportSvc := service.NewExportService(recordRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	programHandler := handler.NewProgramHandler(programSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	recordHandler := handler.NewRecordHandler(recordSvc, exportSvc)
	riskHandler := handler.NewRiskHandler(riskSvc)
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

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/programs", programHandler.List)
		api.POST("/programs", programHandler.Create)
		api.DELETE("/programs/:id", programHandler.Delete)

		api.GET("/subjects", subjectHandler.List)
		api.POST("/subjects", subjectHandler.Create)
		api.DELETE("/subjects/:id", subjectHandler.Delete)

		api.GET("/students", studentHandler.List)
		api.PUT("/students", studentHandler.Upsert)
		api.GET("/students/:id", studentHandler.Get)

		api.GET("/records", recordHandler.List)
		api.POST("/records", recordHandler.Submit)
		api.GET("/records/export", recordHandler.Export)
		api.GET("/records/:id", recordHandler.Get)
		api.POST("/records/:id/withdraw", recordHandler.Withdraw)
		api.GET("/records/:id/risk-factors", riskHandler.ListRecordAssociations)

		api.GET("/risk-categories", riskHandler.ListCategories)
		api.POST("/risk-categories", riskHandler.CreateCategory)
		api.DELETE("/risk-categories/:id", riskHandler.DeleteCategory)
		api.GET("/risk-factors", riskHandler.ListFactors)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
