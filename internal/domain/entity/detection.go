package entity

import "math"

// BoundingBox is an axis-aligned box in image pixel coordinates,
// ordered [x_min, y_min, x_max, y_max]
type BoundingBox [4]float64

// Finite reports whether every coordinate is a finite number
func (b BoundingBox) Finite() bool {
	for _, v := range b {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// RawDetection is a single object reported by a detector, before label enrichment
type RawDetection struct {
	ClassID    int         `json:"class_id"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bbox"`
}

// Detection is a detected object enriched with its label metadata
type Detection struct {
	ClassID     int         `json:"class_id"`
	Name        string      `json:"nombre"`
	Description string      `json:"descripcion"`
	Confidence  float64     `json:"confidence"`
	Box         BoundingBox `json:"bbox"`
}

// NewDetection enriches a raw detection using the given label table.
// Classes missing from the table get the placeholder label. Confidence is
// clamped to [0, 1] with NaN mapped to 0; the box is passed through untouched.
func NewDetection(raw RawDetection, labels *LabelTable) Detection {
	label := labels.Resolve(raw.ClassID)
	return Detection{
		ClassID:     raw.ClassID,
		Name:        label.Name,
		Description: label.Description,
		Confidence:  clampUnit(raw.Confidence),
		Box:         raw.Box,
	}
}

func clampUnit(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
