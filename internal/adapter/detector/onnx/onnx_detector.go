//go:build gocv

package onnx

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"gocv.io/x/gocv"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
)

// Detector runs a YOLOv8 ONNX export through the OpenCV DNN module.
// cv::dnn::Net is not safe for concurrent Forward calls, so inference is serialized.
type Detector struct {
	mu   sync.Mutex
	net  gocv.Net
	opts Options
}

// New loads the model at opts.ModelPath
func New(opts Options) (service.Detector, error) {
	net := gocv.ReadNetFromONNX(opts.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load onnx model %q", opts.ModelPath)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		_ = net.Close()
		return nil, fmt.Errorf("failed to set dnn backend: %w", err)
	}
	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		_ = net.Close()
		return nil, fmt.Errorf("failed to set dnn target: %w", err)
	}

	return &Detector{net: net, opts: opts}, nil
}

// Detect runs the network on img and applies per-class NMS
func (d *Detector) Detect(ctx context.Context, img image.Image) ([]entity.RawDetection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("failed to convert image: %w", err)
	}
	defer src.Close()

	size := image.Pt(d.opts.InputSize, d.opts.InputSize)
	blob := gocv.BlobFromImage(src, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	d.mu.Unlock()
	defer out.Close()

	dims := out.Size()
	if len(dims) != 3 {
		return nil, fmt.Errorf("unexpected output dims: %v", dims)
	}
	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("failed to read output tensor: %w", err)
	}

	bounds := img.Bounds()
	candidates, err := decodeOutput(data, dims[1], dims[2], d.opts.InputSize, bounds.Dx(), bounds.Dy(), d.opts.Confidence)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []entity.RawDetection{}, nil
	}

	rects := make([]image.Rectangle, len(candidates))
	scores := make([]float32, len(candidates))
	for i, c := range candidates {
		rects[i] = c.rect()
		scores[i] = c.score
	}

	keep := gocv.NMSBoxes(rects, scores, d.opts.Confidence, d.opts.IoU)

	detections := make([]entity.RawDetection, 0, len(keep))
	for _, idx := range keep {
		c := candidates[idx]
		detections = append(detections, entity.RawDetection{
			ClassID:    c.classID,
			Confidence: float64(c.score),
			Box:        c.box,
		})
	}

	return detections, nil
}

// Ready reports whether a model is loaded
func (d *Detector) Ready(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.net.Empty() {
		return errors.New("onnx model not loaded")
	}
	return nil
}

// ModelVersion returns the model file name
func (d *Detector) ModelVersion(_ context.Context) (string, error) {
	return filepath.Base(d.opts.ModelPath), nil
}

// Close releases the network
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.net.Close()
}
