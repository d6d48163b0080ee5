package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/repository"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/imaging"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/metrics"
)

// Error definitions for detection usecase
var (
	ErrDecodeImage = errors.New("cannot decode image")
	ErrInference   = errors.New("inference failed")
)

// PredictOutput is the success variant of a detection response
type PredictOutput struct {
	Detections []entity.Detection `json:"detections"`
}

// LabelOutput represents one entry of the label table
type LabelOutput struct {
	ClassID     int    `json:"class_id"`
	Name        string `json:"nombre"`
	Description string `json:"descripcion"`
}

// Observer receives prediction telemetry
type Observer interface {
	ObservePrediction(outcome string)
	ObserveDetection(classID int)
	ObserveInference(d time.Duration)
}

// DetectionUsecase defines the interface for detection business logic
type DetectionUsecase interface {
	Predict(ctx context.Context, data []byte) (*PredictOutput, error)
	Labels(ctx context.Context) []LabelOutput
}

type detectionUsecase struct {
	detector service.Detector
	labels   *entity.LabelTable
	cache    repository.PredictionCache
	observer Observer
	logger   *zap.Logger
}

// Option configures optional collaborators of the detection usecase
type Option func(*detectionUsecase)

// WithCache enables the prediction cache
func WithCache(cache repository.PredictionCache) Option {
	return func(u *detectionUsecase) {
		u.cache = cache
	}
}

// WithObserver sets the telemetry observer
func WithObserver(observer Observer) Option {
	return func(u *detectionUsecase) {
		u.observer = observer
	}
}

// WithLogger sets the logger used for non-fatal cache failures
func WithLogger(logger *zap.Logger) Option {
	return func(u *detectionUsecase) {
		u.logger = logger
	}
}

// NewDetectionUsecase creates a new detection usecase
func NewDetectionUsecase(detector service.Detector, labels *entity.LabelTable, opts ...Option) DetectionUsecase {
	u := &detectionUsecase{
		detector: detector,
		labels:   labels,
		observer: noopObserver{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *detectionUsecase) Predict(ctx context.Context, data []byte) (*PredictOutput, error) {
	key := digest(data)

	if raw, ok := u.cached(ctx, key); ok {
		u.observer.ObservePrediction(metrics.OutcomeCacheHit)
		return u.enrich(raw), nil
	}

	img, _, err := imaging.Decode(data)
	if err != nil {
		u.observer.ObservePrediction(metrics.OutcomeDecodeError)
		return nil, fmt.Errorf("%w: %v", ErrDecodeImage, err)
	}

	start := time.Now()
	raw, err := u.detector.Detect(ctx, img)
	u.observer.ObserveInference(time.Since(start))
	if err == nil {
		err = validate(raw)
	}
	if err != nil {
		u.observer.ObservePrediction(metrics.OutcomeInferError)
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	u.store(ctx, key, raw)
	u.observer.ObservePrediction(metrics.OutcomeSuccess)

	return u.enrich(raw), nil
}

func (u *detectionUsecase) Labels(_ context.Context) []LabelOutput {
	entries := u.labels.Entries()

	out := make([]LabelOutput, 0, len(entries))
	for id, entry := range entries {
		out = append(out, LabelOutput{
			ClassID:     id,
			Name:        entry.Name,
			Description: entry.Description,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ClassID < out[j].ClassID
	})

	return out
}

// enrich attaches label metadata, keeping the detector's order
func (u *detectionUsecase) enrich(raw []entity.RawDetection) *PredictOutput {
	detections := make([]entity.Detection, len(raw))
	for i, r := range raw {
		detections[i] = entity.NewDetection(r, u.labels)
		u.observer.ObserveDetection(r.ClassID)
	}
	return &PredictOutput{Detections: detections}
}

// validate rejects boxes that cannot be rendered as JSON numbers
func validate(raw []entity.RawDetection) error {
	for i, r := range raw {
		if !r.Box.Finite() {
			return fmt.Errorf("detection %d: non-finite bbox %v", i, r.Box)
		}
	}
	return nil
}

func (u *detectionUsecase) cached(ctx context.Context, key string) ([]entity.RawDetection, bool) {
	if u.cache == nil {
		return nil, false
	}
	raw, ok, err := u.cache.Get(ctx, key)
	if err != nil {
		u.logger.Warn("Prediction cache read failed", zap.Error(err))
		return nil, false
	}
	return raw, ok
}

func (u *detectionUsecase) store(ctx context.Context, key string, raw []entity.RawDetection) {
	if u.cache == nil {
		return
	}
	if err := u.cache.Set(ctx, key, raw); err != nil {
		u.logger.Warn("Prediction cache write failed", zap.Error(err))
	}
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type noopObserver struct{}

func (noopObserver) ObservePrediction(string)       {}
func (noopObserver) ObserveDetection(int)           {}
func (noopObserver) ObserveInference(time.Duration) {}
