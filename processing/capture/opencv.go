//go:build gocv
// +build gocv

package capture

import (
	"errors"
	"image"
	"image/draw"
	"sync"

	"gocv.io/x/gocv"

	"facedetect/internal/models"
)

type OpenCVCamera struct {
	mu sync.Mutex

	device  string
	capture *gocv.VideoCapture
	mat     gocv.Mat
	closed  bool
}

// NewOpenCVCamera opens a capture device. A numeric device string selects
// the system camera with that index.
func NewOpenCVCamera(device string) (*OpenCVCamera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, models.ErrCameraOpen.WithError(err)
	}

	if !capture.IsOpened() {
		capture.Close()
		return nil, models.ErrCameraOpen.WithError(errors.New("device " + device + " is not available"))
	}

	return &OpenCVCamera{
		device:  device,
		capture: capture,
		mat:     gocv.NewMat(),
	}, nil
}

func (c *OpenCVCamera) Read() (*image.RGBA, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, false
	}

	if ok := c.capture.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, false
	}

	// ToImage converts OpenCV's BGR layout into RGBA
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, false
	}

	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, true
	}

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)

	return rgba, true
}

func (c *OpenCVCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	c.mat.Close()
	return c.capture.Close()
}
