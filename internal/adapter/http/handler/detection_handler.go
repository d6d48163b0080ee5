package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/usecase"
)

// UploadField is the multipart form field holding the image
const UploadField = "file"

// DetectionHandler handles detection-related HTTP requests
type DetectionHandler struct {
	detectionUC usecase.DetectionUsecase
	logger      *zap.Logger
}

// NewDetectionHandler creates a new detection handler
func NewDetectionHandler(detectionUC usecase.DetectionUsecase, logger *zap.Logger) *DetectionHandler {
	return &DetectionHandler{
		detectionUC: detectionUC,
		logger:      logger,
	}
}

// Predict handles POST /predict/
func (h *DetectionHandler) Predict(c *gin.Context) {
	fileHeader, err := c.FormFile(UploadField)
	if err != nil {
		HandleInvalidRequest(c, fmt.Sprintf("missing form field %q: %v", UploadField, err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	output, err := h.detectionUC.Predict(c.Request.Context(), data)
	if err != nil {
		HandleUsecaseError(c, h.logger, err)
		return
	}

	h.logger.Debug("Prediction served",
		zap.String("filename", fileHeader.Filename),
		zap.Int64("size", fileHeader.Size),
		zap.Int("detections", len(output.Detections)),
		zap.String("request_id", c.GetString("request_id")),
	)

	respondSuccess(c, http.StatusOK, output)
}

// Labels handles GET /labels/
func (h *DetectionHandler) Labels(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{
		"labels": h.detectionUC.Labels(c.Request.Context()),
	})
}
