package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/usecase"
)

const (
	maxFrameSize = 32 << 20
	writeWait    = 10 * time.Second
)

// StreamHandler serves detection over a WebSocket: every binary message is
// one image, answered by one JSON detection response in the same order.
type StreamHandler struct {
	detectionUC usecase.DetectionUsecase
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(detectionUC usecase.DetectionUsecase, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{
		detectionUC: detectionUC,
		logger:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 << 10,
			WriteBufferSize: 16 << 10,
			// Camera clients run as native apps without a meaningful Origin
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Stream handles GET /ws
func (h *StreamHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxFrameSize)
	requestID := c.GetString("request_id")
	ctx := c.Request.Context()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("WebSocket closed unexpectedly", zap.Error(err), zap.String("request_id", requestID))
			}
			return
		}

		var reply interface{}
		if msgType != websocket.BinaryMessage {
			reply = ErrorBody{Error: "expected a binary image frame"}
		} else if output, err := h.detectionUC.Predict(ctx, data); err != nil {
			h.logger.Error("Stream prediction failed", zap.Error(err), zap.String("request_id", requestID))
			reply = ErrorBody{Error: MapUsecaseError(err).Message}
		} else {
			reply = output
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			h.logger.Warn("WebSocket write failed", zap.Error(err), zap.String("request_id", requestID))
			return
		}
	}
}
