package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse represents a structured error response
type ErrorResponse struct {
	StatusCode int
	Message    string
}

// MapUsecaseError maps usecase errors to HTTP error responses.
// Every failure surfaces as 500 with the error text; the status code does not
// distinguish causes.
func MapUsecaseError(err error) ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Message:    err.Error(),
	}
}

// HandleUsecaseError logs err and sends the matching error response
func HandleUsecaseError(c *gin.Context, logger *zap.Logger, err error) {
	errResp := MapUsecaseError(err)
	logger.Error("Prediction failed",
		zap.Error(err),
		zap.String("request_id", c.GetString("request_id")),
	)
	respondError(c, errResp.StatusCode, errResp.Message)
}

// HandleInvalidRequest handles a malformed request
func HandleInvalidRequest(c *gin.Context, message string) {
	respondError(c, http.StatusUnprocessableEntity, message)
}
