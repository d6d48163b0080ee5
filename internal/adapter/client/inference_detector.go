package client

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/imaging"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/requestid"
)

// InferenceDetector adapts InferenceClient to the Detector interface
type InferenceDetector struct {
	client *InferenceClient
}

// NewInferenceDetector creates a new InferenceDetector
func NewInferenceDetector(client *InferenceClient) service.Detector {
	return &InferenceDetector{client: client}
}

// Detect sends img to the inference service and converts its answer
func (d *InferenceDetector) Detect(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Predict(ctx, data, "image.png", requestid.FromContext(ctx))
	if err != nil {
		return nil, err
	}

	detections := make([]entity.RawDetection, len(resp.Detections))
	for i, r := range resp.Detections {
		if len(r.BBox) != 4 {
			return nil, fmt.Errorf("detection %d: bbox has %d coordinates, want 4", i, len(r.BBox))
		}
		box := entity.BoundingBox{r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3]}
		if !box.Finite() {
			return nil, fmt.Errorf("detection %d: non-finite bbox", i)
		}
		detections[i] = entity.RawDetection{
			ClassID:    r.ClassID,
			Confidence: r.Confidence,
			Box:        box,
		}
	}

	return detections, nil
}

// Ready checks that the inference service is ready
func (d *InferenceDetector) Ready(ctx context.Context) error {
	return d.client.Ready(ctx)
}

// ModelVersion asks the inference service which model it has loaded
func (d *InferenceDetector) ModelVersion(ctx context.Context) (string, error) {
	health, err := d.client.Health(ctx)
	if err != nil {
		return "", err
	}
	if !health.ModelLoaded {
		return "", errors.New("inference service has no model loaded")
	}
	return health.ModelVersion, nil
}

// Close drops idle keep-alive connections to the inference service
func (d *InferenceDetector) Close() error {
	d.client.httpClient.CloseIdleConnections()
	return nil
}
