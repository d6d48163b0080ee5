package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveHealth(t *testing.T, h *HealthHandler, path string) *httptest.ResponseRecorder {
	t.Helper()

	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	req, _ := http.NewRequest("GET", path, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("healthy without redis", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(&fakeDetector{}, nil), "/health")

		assert.Equal(t, http.StatusOK, w.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "healthy", status.Status)
		assert.Equal(t, "ok", status.Components["detector"])
		assert.Equal(t, "not configured", status.Components["redis"])
	})

	t.Run("healthy with redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()

		w := serveHealth(t, NewHealthHandler(&fakeDetector{}, client), "/health")

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", status.Components["redis"])
	})

	t.Run("redis outage only degrades", func(t *testing.T) {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer client.Close()
		mr.Close()

		w := serveHealth(t, NewHealthHandler(&fakeDetector{}, client), "/health")

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, status.Components["redis"], "error")
	})

	t.Run("unhealthy when detector is down", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(&fakeDetector{err: errors.New("connection refused")}, nil), "/health")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "unhealthy", status.Status)
		assert.Equal(t, "error: connection refused", status.Components["detector"])
	})
}

// describingDetector also reports the model it serves
type describingDetector struct {
	fakeDetector
	version    string
	versionErr error
}

func (d *describingDetector) ModelVersion(context.Context) (string, error) {
	return d.version, d.versionErr
}

func TestHealthHandler_ModelVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("reports model version", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(&describingDetector{version: "yolov8-lab-v3"}, nil), "/health")

		assert.Equal(t, http.StatusOK, w.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Equal(t, "yolov8-lab-v3", status.ModelVersion)
		assert.Equal(t, "ok", status.Components["model"])
	})

	t.Run("version lookup failure keeps service healthy", func(t *testing.T) {
		det := &describingDetector{versionErr: errors.New("no model loaded")}
		w := serveHealth(t, NewHealthHandler(det, nil), "/health")

		assert.Equal(t, http.StatusOK, w.Code)

		var status HealthStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
		assert.Empty(t, status.ModelVersion)
		assert.Equal(t, "error: no model loaded", status.Components["model"])
	})

	t.Run("omitted for detectors without a version", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(&fakeDetector{}, nil), "/health")

		assert.NotContains(t, w.Body.String(), "model_version")
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("ready when detector is ready", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(&fakeDetector{}, nil), "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ready")
	})

	t.Run("not ready when detector fails", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(&fakeDetector{err: errors.New("loading")}, nil), "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "not ready")
	})

	t.Run("not ready without detector", func(t *testing.T) {
		w := serveHealth(t, NewHealthHandler(nil, nil), "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}
