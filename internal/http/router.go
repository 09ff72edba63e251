package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/dayplanner/backend/internal/config"
	"github.com/dayplanner/backend/internal/http/handlers"
	"github.com/dayplanner/backend/internal/http/middleware"
	"github.com/dayplanner/backend/internal/metrics"
	"github.com/dayplanner/backend/internal/service"

	_ "github.com/dayplanner/backend/docs"
)

func Router(cfg config.Config, svc *service.PlanningService, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader, handlers.UserIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	h := &handlers.Handler{
		Service:   svc,
		Store:     svc.Store,
		Zone:      svc.Zone,
		Validator: validator.New(),
		Logger:    logger,
		MaxUpload: cfg.MaxUploadSizeMB << 20,
	}

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	if cfg.RequestTimeout > 0 {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	{
		api.GET("/tasks", h.TasksList)
		api.POST("/tasks", h.TaskCreate)
		api.DELETE("/tasks/:id", h.TaskDelete)
		api.POST("/schedule/build", h.ScheduleBuild)

		api.GET("/profile", h.ProfileGet)
		api.PUT("/profile", h.ProfilePut)

		api.POST("/optimize", h.Optimize)
		api.POST("/reoptimize", h.Reoptimize)
		api.POST("/suggest", h.Suggest)

		api.GET("/locations", h.LocationsList)
		api.GET("/locations/statistics/:district", h.LocationStats)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/catalog/import", h.CatalogImport)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
