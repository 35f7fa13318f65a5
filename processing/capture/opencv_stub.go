//go:build !gocv
// +build !gocv

package capture

import (
	"errors"
	"image"

	"facedetect/internal/models"
)

type OpenCVCamera struct{}

// NewOpenCVCamera always fails when built without the gocv tag.
func NewOpenCVCamera(device string) (*OpenCVCamera, error) {
	return nil, models.ErrCameraOpen.WithError(errors.New("gocv build tag is not enabled"))
}

func (c *OpenCVCamera) Read() (*image.RGBA, bool) {
	return nil, false
}

func (c *OpenCVCamera) Close() error {
	return nil
}
