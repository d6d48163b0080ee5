package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/adapter/client"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/adapter/detector/onnx"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/adapter/http/router"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/adapter/repository/redis"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/cache"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/config"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/labels"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/logger"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/metrics"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	gin.SetMode(cfg.Server.Mode)

	// Label table
	table, err := labels.Load(cfg.Labels.Path)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}
	log.Info("Loaded label table", zap.Int("entries", table.Len()), zap.String("path", cfg.Labels.Path))

	// Detector
	detector, err := newDetector(&cfg.Detector, log)
	if err != nil {
		return fmt.Errorf("failed to initialize detector: %w", err)
	}
	defer func() { _ = detector.Close() }()

	m := metrics.New()
	opts := []usecase.Option{
		usecase.WithObserver(m),
		usecase.WithLogger(log),
	}

	// Initialize Redis (optional, continue without it)
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", zap.Error(err))
			redisClient = nil
		} else {
			log.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr()))
			opts = append(opts, usecase.WithCache(redis.NewPredictionCache(redisClient, cfg.Redis.TTL)))
			defer func() { _ = redisClient.Close() }()
		}
	}

	detectionUC := usecase.NewDetectionUsecase(detector, table, opts...)

	r := router.Setup(detectionUC, detector, redisClient, m, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Server forced to shutdown", zap.Error(err))
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("Server exited")
	return nil
}

// newDetector builds the configured backend. An unreachable inference server
// is logged but not fatal; /ready reports it instead.
func newDetector(cfg *config.DetectorConfig, log *zap.Logger) (service.Detector, error) {
	switch cfg.Backend {
	case config.BackendONNX:
		det, err := onnx.New(onnx.OptionsFromConfig(*cfg))
		if err != nil {
			return nil, err
		}
		log.Info("Loaded onnx model", zap.String("model_path", cfg.ModelPath))
		return det, nil
	default:
		det := client.NewInferenceDetector(client.NewInferenceClient(cfg.URL, cfg.Timeout))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := det.Ready(ctx); err != nil {
			log.Warn("Inference server not reachable, continuing", zap.String("url", cfg.URL), zap.Error(err))
		} else {
			log.Info("Inference server reachable", zap.String("url", cfg.URL))
		}
		return det, nil
	}
}
