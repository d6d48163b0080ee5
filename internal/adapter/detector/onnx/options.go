package onnx

import (
	"fmt"
	"image"
	"math"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/entity"
	"github.com/AngellyC07/ReconocimientoOBJ/internal/infrastructure/config"
)

// Options configures the local ONNX detector
type Options struct {
	ModelPath  string
	Confidence float32
	IoU        float32
	InputSize  int
}

// OptionsFromConfig builds Options from the detector section of the config
func OptionsFromConfig(cfg config.DetectorConfig) Options {
	return Options{
		ModelPath:  cfg.ModelPath,
		Confidence: float32(cfg.Confidence),
		IoU:        float32(cfg.IoU),
		InputSize:  cfg.InputSize,
	}
}

// candidate is one pre-NMS prediction in source image pixels
type candidate struct {
	classID int
	score   float32
	box     entity.BoundingBox
}

// rect returns the box as an integer rectangle, shifted by class so that
// class-agnostic NMS never suppresses boxes of different classes
func (c candidate) rect() image.Rectangle {
	offset := c.classID * 8192
	return image.Rect(
		int(math.Floor(c.box[0]))+offset,
		int(math.Floor(c.box[1])),
		int(math.Ceil(c.box[2]))+offset,
		int(math.Ceil(c.box[3])),
	)
}

// decodeOutput reads a YOLOv8 head laid out as [4+classes, anchors], where
// the first four rows are cx, cy, w, h in network input pixels. Boxes are
// rescaled to a width x height image and clipped to it. A kept anchor with a
// NaN coordinate fails the whole tensor.
func decodeOutput(data []float32, rows, anchors int, inputSize, width, height int, minScore float32) ([]candidate, error) {
	if rows <= 4 {
		return nil, fmt.Errorf("unexpected output shape: %d rows", rows)
	}
	if len(data) != rows*anchors {
		return nil, fmt.Errorf("unexpected output size: got %d values, want %d", len(data), rows*anchors)
	}

	sx := float64(width) / float64(inputSize)
	sy := float64(height) / float64(inputSize)

	var out []candidate
	for i := 0; i < anchors; i++ {
		best, bestScore := -1, float32(0)
		for c := 4; c < rows; c++ {
			if s := data[c*anchors+i]; s > bestScore {
				best, bestScore = c-4, s
			}
		}
		if best < 0 || bestScore < minScore {
			continue
		}

		cx := float64(data[i])
		cy := float64(data[anchors+i])
		w := float64(data[2*anchors+i])
		h := float64(data[3*anchors+i])

		box := entity.BoundingBox{
			clip((cx-w/2)*sx, width),
			clip((cy-h/2)*sy, height),
			clip((cx+w/2)*sx, width),
			clip((cy+h/2)*sy, height),
		}
		if !box.Finite() {
			return nil, fmt.Errorf("anchor %d: non-finite box coordinates", i)
		}

		out = append(out, candidate{
			classID: best,
			score:   bestScore,
			box:     box,
		})
	}

	return out, nil
}

func clip(v float64, limit int) float64 {
	return math.Max(0, math.Min(v, float64(limit)))
}
