package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/adapter/http/handler"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/adapter/http/middleware"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/metrics"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/usecase"
)

// Setup creates and configures the Gin router
func Setup(detectionUC usecase.DetectionUsecase, detector service.Detector, redisClient *redis.Client, m *metrics.Metrics, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(m))

	// Health endpoints
	healthHandler := handler.NewHealthHandler(detector, redisClient)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	// Initialize handlers
	detectionHandler := handler.NewDetectionHandler(detectionUC, logger)
	streamHandler := handler.NewStreamHandler(detectionUC, logger)

	// Detection routes; both spellings so POST is never redirected
	router.POST("/predict/", detectionHandler.Predict)
	router.POST("/predict", detectionHandler.Predict)
	router.GET("/labels/", detectionHandler.Labels)
	router.GET("/labels", detectionHandler.Labels)
	router.GET("/ws", streamHandler.Stream)

	return router
}
