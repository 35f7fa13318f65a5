//go:build !gocv
// +build !gocv

package processing

import (
	"errors"
	"image"

	"facedetect/internal/models"
)

var errNoGoCV = errors.New("gocv build tag is not enabled")

type CascadeDetector struct{}

// NewCascadeDetector always fails when built without the gocv tag.
func NewCascadeDetector(path string, scaleFactor float64, minNeighbors int) (*CascadeDetector, error) {
	if err := checkModelFile(path); err != nil {
		return nil, err
	}
	return nil, models.ErrModelLoad.WithError(errNoGoCV)
}

func (d *CascadeDetector) Detect(gray *image.Gray) ([]image.Rectangle, error) {
	return nil, models.ErrInference.WithError(errNoGoCV)
}

func (d *CascadeDetector) Close() error {
	return nil
}

type GenderNet struct{}

// NewGenderNet always fails when built without the gocv tag.
func NewGenderNet(proto, weights string) (*GenderNet, error) {
	return nil, models.ErrModelLoad.WithError(errNoGoCV)
}

func (g *GenderNet) Classify(face *image.RGBA) ([]float32, error) {
	return nil, models.ErrInference.WithError(errNoGoCV)
}

func (g *GenderNet) Close() error {
	return nil
}
