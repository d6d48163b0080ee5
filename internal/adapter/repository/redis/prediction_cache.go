package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/repository"
)

const keyPrefix = "recobj:predict:"

type predictionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPredictionCache creates a Redis-backed prediction cache.
// Entries expire after ttl; a zero ttl keeps them until evicted.
func NewPredictionCache(client *redis.Client, ttl time.Duration) repository.PredictionCache {
	return &predictionCache{client: client, ttl: ttl}
}

func (c *predictionCache) Get(ctx context.Context, key string) ([]entity.RawDetection, bool, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached prediction: %w", err)
	}

	var detections []entity.RawDetection
	if err := json.Unmarshal(data, &detections); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached prediction: %w", err)
	}

	return detections, true, nil
}

func (c *predictionCache) Set(ctx context.Context, key string, detections []entity.RawDetection) error {
	if detections == nil {
		detections = []entity.RawDetection{}
	}

	data, err := json.Marshal(detections)
	if err != nil {
		return fmt.Errorf("failed to encode prediction: %w", err)
	}

	if err := c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache prediction: %w", err)
	}
	return nil
}
