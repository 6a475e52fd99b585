package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"houseprice/internal/config"
	"houseprice/internal/handler"
	"houseprice/internal/logger"
	"houseprice/internal/regressor"
	"houseprice/internal/repository"
	"houseprice/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("Failed to load configuration", zap.Error(err))
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		zap.NewExample().Fatal("Failed to initialize logger", zap.Error(err))
	}
	defer log.Sync()

	log.Info("House Price Inference Service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("git_commit", GitCommit),
	)

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Load the model once; the service must not start without it
	reg, err := regressor.Load(cfg.Model.Path)
	if err != nil {
		log.Fatal("Failed to load model", zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	if err := service.CheckModel(reg); err != nil {
		log.Fatal("Model is incompatible with the feature transform", zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	info := reg.Info()
	log.Info("✅ Model loaded",
		zap.String("path", cfg.Model.Path),
		zap.String("type", info.Type),
		zap.String("version", info.Version),
		zap.Int("trees", info.Trees),
	)

	cache, err := service.NewPredictionCache(cfg.Cache.Size)
	if err != nil {
		log.Fatal("Failed to create prediction cache", zap.Error(err))
	}

	// Optional prediction log
	var (
		repo          *repository.PredictionRepository
		sink          service.PredictionLogger
		predictionLog *handler.PredictionLogHandler
	)
	if cfg.PredictionLogEnabled() {
		repo, err = repository.NewPredictionRepository(
			cfg.PredictionLog.Driver,
			cfg.PredictionLog.DSN,
			cfg.PredictionLog.MaxConnections,
			cfg.PredictionLog.MaxIdleConnections,
		)
		if err != nil {
			log.Fatal("Failed to connect to prediction log database", zap.Error(err))
		}
		defer repo.Close()
		sink = repo
		predictionLog = handler.NewPredictionLogHandler(repo, 20, 100)
		log.Info("✅ Prediction log enabled", zap.String("driver", cfg.PredictionLog.Driver))
	} else {
		log.Info("⚠️  Prediction log disabled - set PREDICTION_LOG_DRIVER to persist predictions")
	}

	predictionService := service.NewPredictionService(reg, cache, sink, log)
	defer predictionService.Close()

	router := handler.NewRouter(handler.RouterConfig{
		AllowedOrigin: cfg.Server.AllowedOrigin,
		Build: handler.BuildInfo{
			Version:   Version,
			BuildTime: BuildTime,
			GitCommit: GitCommit,
		},
		Predict:       handler.NewPredictHandler(predictionService, log),
		PredictionLog: predictionLog,
		Logger:        log,
	})

	// Serve static files (frontend)
	// This function is implemented in embed.go (production) or static_dev.go (development)
	setupStaticFiles(router, log)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	log.Info("🚀 Starting server",
		zap.String("addr", cfg.Addr()),
		zap.String("cors_origin", cfg.Server.AllowedOrigin),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("🛑 Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("✅ Server stopped")
}
