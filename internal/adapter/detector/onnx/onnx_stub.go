//go:build !gocv

package onnx

import (
	"errors"

	"github.com/AngellyC07/ReconocimientoOBJ/internal/domain/service"
)

// ErrUnavailable is returned when the binary was built without OpenCV support
var ErrUnavailable = errors.New("onnx backend unavailable: rebuild with -tags gocv")

// New always fails; the ONNX backend needs the gocv build tag
func New(_ Options) (service.Detector, error) {
	return nil, ErrUnavailable
}
