package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"

	"github.com/naufalhakm/timetable-api/internal/handler"
	"github.com/naufalhakm/timetable-api/internal/middleware"
	"github.com/naufalhakm/timetable-api/internal/repository"
	"github.com/naufalhakm/timetable-api/internal/service"
	"github.com/naufalhakm/timetable-api/pkg/cache"
	"github.com/naufalhakm/timetable-api/pkg/config"
	"github.com/naufalhakm/timetable-api/pkg/database"
	"github.com/naufalhakm/timetable-api/pkg/logger"
	corsmiddleware "github.com/naufalhakm/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/naufalhakm/timetable-api/pkg/middleware/requestid"
)

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

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
			redisClient = nil
		}
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	catalogRepo := repository.NewCatalogRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	metricsSvc := service.NewMetricsService()
	catalogSvc := service.NewCatalogService(catalogRepo)
	preferenceSvc := service.NewPreferenceService(preferenceRepo, validate)
	timetableSvc := service.NewTimetableService(timetableRepo, redisClient, metricsSvc, logr, cfg.Timetable.CacheTTL)
	optimizerSvc := service.NewOptimizerService(
		catalogRepo,
		preferenceRepo,
		timetableRepo,
		timetableSvc,
		metricsSvc,
		validate,
		logr,
		service.OptimizerServiceConfig{
			Workers:               cfg.Optimizer.Workers,
			DefaultPopulationSize: cfg.Optimizer.DefaultPopulationSize,
			DefaultIterations:     cfg.Optimizer.DefaultIterations,
			RestartProbability:    cfg.Optimizer.RestartProbability,
			RelaxedGapMinutes:     cfg.Optimizer.RelaxedGapMinutes,
			ProgressBufferSize:    cfg.Optimizer.ProgressBufferSize,
		},
	)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	optimizerSvc.Start(rootCtx)
	defer optimizerSvc.Stop()

	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc)
	optimizerHandler := handler.NewOptimizerHandler(optimizerSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
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

	api := r.Group(cfg.APIPrefix)
	{
		data := api.Group("/data")
		{
			data.GET("/days", catalogHandler.Days)
			data.GET("/rooms", catalogHandler.Rooms)
			data.GET("/time-bins", catalogHandler.TimeBins)
			data.GET("/teachers", catalogHandler.Teachers)
			data.GET("/courses", catalogHandler.Courses)
			data.GET("/sections", catalogHandler.Sections)
		}

		prefs := api.Group("/preferences")
		{
			prefs.GET("/teachers", preferenceHandler.ListTeacherPreferences)
			prefs.PUT("/teachers", preferenceHandler.UpsertTeacherPreference)
			prefs.GET("/program", preferenceHandler.GetProgramPreference)
			prefs.PUT("/program", preferenceHandler.SetProgramPreference)
		}

		optimizer := api.Group("/optimizer")
		{
			optimizer.POST("/runs", optimizerHandler.StartRun)
			optimizer.GET("/runs", optimizerHandler.ListRuns)
			optimizer.GET("/runs/:id", optimizerHandler.GetRun)
			optimizer.GET("/runs/:id/result", optimizerHandler.GetResult)
			optimizer.GET("/runs/:id/progress", optimizerHandler.Progress)
		}

		timetables := api.Group("/timetables")
		{
			timetables.GET("/latest", timetableHandler.Latest)
			timetables.GET("", timetableHandler.Versions)
			timetables.GET("/:id", timetableHandler.Get)
			timetables.GET("/:id/stats", timetableHandler.Stats)
			timetables.GET("/:id/export", timetableHandler.Export)
			timetables.POST("/:id/publish", timetableHandler.Publish)
		}
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
