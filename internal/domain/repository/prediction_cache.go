package repository

import (
	"context"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
)

// PredictionCache stores detector output keyed by image content digest
type PredictionCache interface {
	// Get returns the cached detections for key. A miss returns (nil, false, nil).
	Get(ctx context.Context, key string) ([]entity.RawDetection, bool, error)

	// Set stores detections for key
	Set(ctx context.Context, key string, detections []entity.RawDetection) error
}
