package service

import (
	"context"
	"image"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
)

// Detector defines the interface for pretrained object detectors
type Detector interface {
	// Detect returns the objects found in img, in the detector's own order.
	// Boxes are in img's pixel coordinates.
	Detect(ctx context.Context, img image.Image) ([]entity.RawDetection, error)

	// Ready reports whether the detector can serve requests
	Ready(ctx context.Context) error

	// Close releases any resources held by the detector
	Close() error
}

// ModelDescriber is implemented by detectors that can name the model they serve
type ModelDescriber interface {
	ModelVersion(ctx context.Context) (string, error)
}
